package pkg

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt work factor used for new digests.
var PasswordHashCost = 14

var (
	bcryptDigestRegex = regexp.MustCompile(`^\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}$`)
	legacyDigestRegex = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	return BytesToString(bytes), err
}

// CheckPasswordHash verifies password against a bcrypt digest, or against an
// unsalted SHA-256 hex digest written by the old admin panel.
func CheckPasswordHash(password, hash string) bool {
	if IsLegacyPasswordHash(hash) {
		sum := sha256.Sum256([]byte(password))
		want := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(hash))) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsPasswordHashed tells apart digests (bcrypt or legacy) from plaintext values.
func IsPasswordHashed(value string) bool {
	return bcryptDigestRegex.MatchString(value) || IsLegacyPasswordHash(value)
}

// IsLegacyPasswordHash reports a SHA-256 hex digest, which is upgraded to bcrypt
// on the next successful login.
func IsLegacyPasswordHash(value string) bool {
	return legacyDigestRegex.MatchString(value)
}
