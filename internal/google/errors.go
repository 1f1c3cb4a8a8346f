package google

import "errors"

var (
	// ErrCredentialNotFound is returned when the store holds no credential.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrCorruptCredential is returned when the stored record does not parse
	// as a credential.
	ErrCorruptCredential = errors.New("credential record is corrupt")

	// ErrRefreshFailed is returned when the token endpoint rejects a refresh.
	ErrRefreshFailed = errors.New("credential refresh failed")

	// ErrClientConfig is returned when the OAuth client configuration cannot
	// be used. The stored credential is left untouched.
	ErrClientConfig = errors.New("invalid OAuth client configuration")

	// ErrGrantFailed is the terminal authentication failure. It is the only
	// error that leaves the Authenticator without having been reported as a
	// notification first.
	ErrGrantFailed = errors.New("authorization grant failed")
)
