package auth

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[^a-zA-Z0-9]`)
	emailRe   = regexp.MustCompile(`^[\w\.-]+@[a-zA-Z\d\.-]+\.[a-zA-Z]{2,}$`)
)

// HashPassword hashes a plaintext password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether the candidate matches the stored bcrypt hash.
func VerifyPassword(candidate, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(candidate)) == nil
}

// IsValidPassword checks the signup password policy: at least 8 characters
// with at least one uppercase letter, one lowercase letter, one digit, and
// one special character.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	if !upperRe.MatchString(password) {
		return false
	}
	if !lowerRe.MatchString(password) {
		return false
	}
	if !digitRe.MatchString(password) {
		return false
	}
	if !specialRe.MatchString(password) {
		return false
	}
	return true
}

// IsValidEmail performs a basic shape check on an email address.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}
