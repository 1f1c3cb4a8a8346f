package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CredentialStore persists at most one credential per location.
type CredentialStore interface {
	// Load returns ErrCredentialNotFound when nothing is stored and
	// ErrCorruptCredential when the record cannot be decoded.
	Load(ctx context.Context) (*Credential, error)
	// Save overwrites the stored record.
	Save(ctx context.Context, cred *Credential) error
	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context) error
	// Location identifies the record for logs and messages.
	Location() string
}

// FileStore keeps the credential as a JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements CredentialStore.
func (s *FileStore) Load(_ context.Context) (*Credential, error) {
	return LoadCredential(s.path)
}

// Save implements CredentialStore.
func (s *FileStore) Save(_ context.Context, cred *Credential) error {
	return SaveCredential(s.path, cred)
}

// Delete implements CredentialStore.
func (s *FileStore) Delete(_ context.Context) error {
	return DeleteCredential(s.path)
}

// Location implements CredentialStore.
func (s *FileStore) Location() string {
	return s.path
}

// LoadCredential reads the credential stored at path.
func LoadCredential(path string) (*Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}
	return decodeCredential(data)
}

// SaveCredential writes cred to path. The record is written to a temporary
// file in the same directory and renamed over path, so readers never observe
// a partial record. The file is created with mode 0600 and missing parent
// directories with 0700.
func SaveCredential(path string, cred *Credential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary credential file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set credential file mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace credential file: %w", err)
	}
	return nil
}

// DeleteCredential removes the credential file at path.
func DeleteCredential(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete credential file: %w", err)
	}
	return nil
}

func decodeCredential(data []byte) (*Credential, error) {
	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCredential, err)
	}
	if cred.AccessToken == "" && cred.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no token present", ErrCorruptCredential)
	}
	return &cred, nil
}

// Store drivers accepted by NewStore.
const (
	DriverFile  = "file"
	DriverRedis = "redis"
)

// StoreOptions selects and configures a CredentialStore.
type StoreOptions struct {
	Driver string
	// Path is the file path, or the Redis key suffix.
	Path string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
}

// NewStore builds the CredentialStore selected by opts.Driver. An empty
// driver selects the file store.
func NewStore(ctx context.Context, opts StoreOptions) (CredentialStore, error) {
	switch opts.Driver {
	case "", DriverFile:
		return NewFileStore(opts.Path), nil
	case DriverRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Prefix:   opts.RedisKeyPrefix,
			Path:     opts.Path,
		})
	default:
		return nil, fmt.Errorf("unknown credential store driver %q", opts.Driver)
	}
}
