package google

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// expirySkew treats tokens that expire within this window as already expired.
const expirySkew = 10 * time.Second

// Credential is the persisted OAuth2 credential.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitzero"`
	Scopes       []string  `json:"scopes,omitempty"`
}

// Expired reports whether the access token is past its expiry at now.
// A zero expiry never expires.
func (c *Credential) Expired(now time.Time) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return !now.Add(expirySkew).Before(c.Expiry)
}

// Valid reports whether the credential carries an access token that has not
// expired at now.
func (c *Credential) Valid(now time.Time) bool {
	return c != nil && c.AccessToken != "" && !c.Expired(now)
}

// CoversScopes reports whether every requested scope was granted. A
// credential that does not record its scopes is assumed to cover them.
func (c *Credential) CoversScopes(requested []string) bool {
	if len(c.Scopes) == 0 {
		return true
	}
	granted := make(map[string]struct{}, len(c.Scopes))
	for _, s := range c.Scopes {
		granted[s] = struct{}{}
	}
	for _, s := range requested {
		if _, ok := granted[s]; !ok {
			return false
		}
	}
	return true
}

// Token converts the credential into an oauth2.Token.
func (c *Credential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
	}
}

// CredentialFromToken builds a Credential from a token endpoint response.
// Scopes are taken from the response's scope field when present, otherwise
// from fallback.
func CredentialFromToken(tok *oauth2.Token, fallback []string) *Credential {
	scopes := fallback
	if raw, ok := tok.Extra("scope").(string); ok && strings.TrimSpace(raw) != "" {
		scopes = strings.Fields(raw)
	}
	return &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		Scopes:       append([]string(nil), scopes...),
	}
}
