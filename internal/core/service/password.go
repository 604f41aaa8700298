package service

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/securebank/portal-api/internal/core/domain"
)

const (
	defaultBcryptCost = 12
	minPasswordLength = 12
)

// commonPrefixes are rejected case-insensitively at the start of a password.
var commonPrefixes = []string{"password", "123456", "qwerty", "admin"}

const specialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// CheckPasswordStrength evaluates the banking password policy and reports the
// result of each individual check.
func CheckPasswordStrength(password string) domain.PasswordRequirements {
	req := domain.PasswordRequirements{
		MinLength:           len(password) >= minPasswordLength,
		HasNoCommonPatterns: true,
	}

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			req.HasUppercase = true
		case unicode.IsLower(r):
			req.HasLowercase = true
		case unicode.IsDigit(r):
			req.HasNumbers = true
		case strings.ContainsRune(specialChars, r):
			req.HasSpecialChars = true
		}
	}

	lower := strings.ToLower(password)
	for _, prefix := range commonPrefixes {
		if strings.HasPrefix(lower, prefix) {
			req.HasNoCommonPatterns = false
			break
		}
	}

	return req
}

// PasswordHasher wraps bcrypt with a configurable cost factor.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = defaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt digest of plaintext. The plaintext is never logged.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A mismatch is a normal
// negative result, not an error.
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
