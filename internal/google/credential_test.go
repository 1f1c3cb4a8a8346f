package google

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

func TestCredential_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{"zero expiry never expires", time.Time{}, false},
		{"future", now.Add(time.Hour), false},
		{"past", now.Add(-time.Minute), true},
		{"inside skew window", now.Add(5 * time.Second), true},
		{"just outside skew window", now.Add(11 * time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Credential{AccessToken: "a", Expiry: tt.expiry}
			assert.Equal(t, tt.want, c.Expired(now))
			assert.Equal(t, !tt.want, c.Valid(now))
		})
	}
}

func TestCredential_ValidRequiresAccessToken(t *testing.T) {
	var nilCred *Credential
	assert.False(t, nilCred.Valid(time.Now()))
	assert.False(t, (&Credential{RefreshToken: "r"}).Valid(time.Now()))
}

func TestCredential_CoversScopes(t *testing.T) {
	c := &Credential{Scopes: []string{CalendarReadonlyScope, "openid"}}
	assert.True(t, c.CoversScopes([]string{CalendarReadonlyScope}))
	assert.True(t, c.CoversScopes(nil))
	assert.False(t, c.CoversScopes([]string{"https://www.googleapis.com/auth/calendar"}))

	unknown := &Credential{}
	assert.True(t, unknown.CoversScopes([]string{CalendarReadonlyScope}))
}

func TestCredentialFromToken(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", Expiry: expiry}

	c := CredentialFromToken(tok, CalendarScopes)
	assert.Equal(t, "a", c.AccessToken)
	assert.Equal(t, "r", c.RefreshToken)
	assert.Equal(t, "Bearer", c.TokenType)
	assert.Equal(t, expiry, c.Expiry)
	assert.Equal(t, CalendarScopes, c.Scopes)

	withScope := tok.WithExtra(map[string]any{"scope": "openid " + CalendarReadonlyScope})
	c = CredentialFromToken(withScope, nil)
	assert.Equal(t, []string{"openid", CalendarReadonlyScope}, c.Scopes)

	back := c.Token()
	assert.Equal(t, "a", back.AccessToken)
	assert.Equal(t, expiry, back.Expiry)
}
