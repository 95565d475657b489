/*
Package randx provides identifier generation and validation helpers.

It generates user IDs and secret session tokens, validates room slugs against
the allowed charset, and derives gravatar hashes for users who do not supply
one.
*/
package randx

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxSlugLength bounds room slugs.
const MaxSlugLength = 64

var (
	slugPattern     = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	gravatarPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)
)

// NewUserID generates a UUID v4 string identifying a room member.
func NewUserID() string {
	return uuid.New().String()
}

// NewSessionToken generates the secret session capability handed out at
// join/create time. UUID v4, backed by crypto/rand.
func NewSessionToken() string {
	return uuid.New().String()
}

// IsValidSlug reports whether the given string is a valid room slug:
// alphanumeric plus hyphen and underscore, 1 to MaxSlugLength characters.
func IsValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// IsGravatarHash reports whether the given string is a lowercase sha256 hex digest.
func IsGravatarHash(hash string) bool {
	return gravatarPattern.MatchString(strings.ToLower(hash))
}

// GravatarHash derives a gravatar-style sha256 hash from an email or display
// name, trimmed and lowercased.
func GravatarHash(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
