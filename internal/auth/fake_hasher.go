package auth

import "strings"

// FakeInsecureHasher implements PasswordHasher with zero crypto overhead.
// Stores passwords as "$fake$<username>:<plaintext>" and verifies by string comparison.
// For use in tests ONLY — never in production.
type FakeInsecureHasher struct{}

func (FakeInsecureHasher) HashPassword(username, password string) (string, error) {
	return "$fake$" + username + ":" + password, nil
}

func (FakeInsecureHasher) VerifyPassword(username, password, encodedHash string) bool {
	return strings.TrimPrefix(encodedHash, "$fake$") == username+":"+password
}
