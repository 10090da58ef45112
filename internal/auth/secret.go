// Package auth implements the advisory per-player secret check described in
// SPEC_FULL.md: an HMAC-SHA256 token derived from a player's declared
// secret, adapted from the teacher's HMACTokenVerifier. Unlike that
// verifier this check never blocks a join — spec.md's Non-goals exclude
// authentication beyond an advisory check, so a mismatch is logged by the
// caller, not rejected.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// ErrEmptySecret is returned when a player declares an empty secret; the
// engine treats this as "no secret declared" rather than a token mismatch.
var ErrEmptySecret = errors.New("auth: secret must not be empty")

// SecretToken issues and checks advisory HMAC tokens binding a player name
// to the secret they declared on join, so a reconnecting player can be told
// apart from an unrelated name collision.
type SecretToken struct {
	key []byte
}

// NewSecretToken constructs a token issuer keyed by the game's prefix, so
// tokens from one game instance never validate against another.
func NewSecretToken(gamePrefix string) *SecretToken {
	return &SecretToken{key: []byte(strings.TrimSpace(gamePrefix))}
}

// Issue derives an advisory token for (name, secret). The token is opaque
// and stored alongside the player record; it is never transmitted back to
// the client.
func (t *SecretToken) Issue(name, secret string) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", ErrEmptySecret
	}
	mac := hmac.New(sha256.New, t.key)
	mac.Write([]byte(name))
	mac.Write([]byte{0})
	mac.Write([]byte(secret))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Matches reports whether secret reproduces the previously issued token for
// name. A mismatch is advisory only: callers log it but still honor the
// join, per spec.md's Non-goals ("authentication beyond an advisory
// per-player secret" is explicitly out of scope).
func (t *SecretToken) Matches(name, secret, issuedToken string) bool {
	candidate, err := t.Issue(name, secret)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(candidate), []byte(issuedToken))
}
