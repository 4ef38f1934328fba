package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/kuitang/notekeeper/internal/obs"
)

// PasswordHasher turns a username/password pair into a stored digest and checks
// candidates against it.
type PasswordHasher interface {
	HashPassword(username, password string) (string, error)
	VerifyPassword(username, password, encodedHash string) bool
}

// SHA256Hasher stores hex(sha256(username + password)).
// The username is the only salt, so equal credentials always produce equal
// digests. Kept for compatibility with existing digests; use Argon2Hasher for
// anything that matters.
type SHA256Hasher struct{}

// Digest returns the hex SHA-256 of username+password.
func Digest(username, password string) string {
	sum := sha256.Sum256([]byte(username + password))
	return hex.EncodeToString(sum[:])
}

func (SHA256Hasher) HashPassword(username, password string) (string, error) {
	return Digest(username, password), nil
}

func (SHA256Hasher) VerifyPassword(username, password, encodedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(Digest(username, password)), []byte(encodedHash)) == 1
}

// Argon2id parameters (OWASP second recommendation: m=19456, t=2, p=1)
const (
	argon2Time    = 2
	argon2Memory  = 19 * 1024
	argon2Threads = 1
	argon2KeyLen  = 32
	argon2SaltLen = 16

	// Upper bounds accepted from a stored digest.
	argon2MaxMemory = 256 * 1024
	argon2MaxTime   = 10
)

// Argon2Hasher hashes with Argon2id and a random per-user salt. The username is
// not mixed in; the salt already makes digests unique.
type Argon2Hasher struct{}

func (Argon2Hasher) HashPassword(_, password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	start := time.Now()
	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	obs.Pkg("auth").Debug("argon2 hash", "memory_kib", argon2Memory, "time", argon2Time, "took", time.Since(start))

	// Encode as: $argon2id$v=19$m=19456,t=2,p=1$<salt>$<hash>
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

func (Argon2Hasher) VerifyPassword(_, password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return false
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false
	}
	if memory == 0 || memory > argon2MaxMemory || iterations == 0 || iterations > argon2MaxTime || threads == 0 {
		return false
	}

	saltBytes, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	hashBytes, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}
	hashLen := len(hashBytes)
	if hashLen <= 0 || hashLen > argon2KeyLen*2 {
		return false
	}

	computed := argon2.IDKey([]byte(password), saltBytes, iterations, memory, threads, uint32(hashLen))
	return subtle.ConstantTimeCompare(hashBytes, computed) == 1
}

// HasherByName returns the hasher selected by PASSWORD_HASHER.
func HasherByName(name string) (PasswordHasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sha256":
		return SHA256Hasher{}, nil
	case "argon2", "argon2id":
		return Argon2Hasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}
