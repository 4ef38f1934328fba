package auth

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

var testHashers = map[string]PasswordHasher{
	"fake":   FakeInsecureHasher{},
	"sha256": SHA256Hasher{},
}

// TestPassword_HashVerify_Roundtrip tests that hashed passwords can be verified.
func TestPassword_HashVerify_Roundtrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.SampledFrom([]string{"fake", "sha256"}).Draw(t, "hasher")
		hasher := testHashers[name]
		username := rapid.StringMatching(`[a-z_]{1,20}`).Draw(t, "username")
		password := rapid.StringN(5, 100, 200).Draw(t, "password")

		hash, err := hasher.HashPassword(username, password)
		if err != nil {
			t.Fatalf("HashPassword failed: %v", err)
		}
		if hash == password {
			t.Fatalf("%s hasher stored the plaintext", name)
		}
		if !hasher.VerifyPassword(username, password, hash) {
			t.Fatalf("VerifyPassword failed for password %q", password)
		}
	})
}

// TestPassword_WrongPassword_FailsVerify tests that wrong passwords don't verify.
func TestPassword_WrongPassword_FailsVerify(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.SampledFrom([]string{"fake", "sha256"}).Draw(t, "hasher")
		hasher := testHashers[name]
		username := rapid.StringMatching(`[a-z_]{1,20}`).Draw(t, "username")
		password1 := rapid.StringN(5, 50, 100).Draw(t, "password1")
		password2 := rapid.StringN(5, 50, 100).Filter(func(s string) bool {
			return s != password1
		}).Draw(t, "password2")

		hash, err := hasher.HashPassword(username, password1)
		if err != nil {
			t.Fatalf("HashPassword failed: %v", err)
		}
		if hasher.VerifyPassword(username, password2, hash) {
			t.Fatalf("VerifyPassword should fail for wrong password")
		}
	})
}

func FuzzPassword_WrongPassword_FailsVerify(f *testing.F) {
	f.Add([]byte{0x00})
	f.Fuzz(rapid.MakeFuzz(func(t *rapid.T) {
		username := rapid.StringMatching(`[a-z_]{1,20}`).Draw(t, "username")
		password1 := rapid.StringN(5, 50, 100).Draw(t, "password1")
		password2 := rapid.StringN(5, 50, 100).Filter(func(s string) bool {
			return s != password1
		}).Draw(t, "password2")

		hash, _ := SHA256Hasher{}.HashPassword(username, password1)
		if (SHA256Hasher{}).VerifyPassword(username, password2, hash) {
			t.Fatalf("VerifyPassword should fail for wrong password")
		}
	}))
}

// TestDigest_KnownVector pins the digest format: hex(sha256(username + password)).
func TestDigest_KnownVector(t *testing.T) {
	t.Parallel()
	const want = "9fae22f5c59fb7a3c1ad9ccda3baa103a74002646c29de47490e81dc859a5016"
	if got := Digest("capn_Book", "12345"); got != want {
		t.Fatalf("Digest mismatch: got %s want %s", got, want)
	}
	if len(Digest("", "")) != 64 {
		t.Fatal("digest should always be 64 hex characters")
	}
}

// TestPassword_Argon2_NonDeterministic verifies that Argon2 hashing uses a random salt.
// Single call, not rapid — Argon2 is deliberately slow.
func TestPassword_Argon2_NonDeterministic(t *testing.T) {
	t.Parallel()
	var hasher Argon2Hasher
	hash1, err := hasher.HashPassword("alice", "test-password")
	if err != nil {
		t.Fatalf("first HashPassword failed: %v", err)
	}
	hash2, err := hasher.HashPassword("alice", "test-password")
	if err != nil {
		t.Fatalf("second HashPassword failed: %v", err)
	}
	if hash1 == hash2 {
		t.Fatalf("hashing is deterministic - salt is not random")
	}
	if !strings.HasPrefix(hash1, "$argon2id$v=19$") {
		t.Fatalf("unexpected encoding: %s", hash1)
	}
	if !hasher.VerifyPassword("alice", "test-password", hash1) {
		t.Fatal("Argon2 hash should verify")
	}
	if hasher.VerifyPassword("alice", "wrong-password", hash1) {
		t.Fatal("Argon2 hash should reject a wrong password")
	}
	if hasher.VerifyPassword("alice", "test-password", "not-a-hash") {
		t.Fatal("malformed hash should not verify")
	}
}

func TestPassword_Argon2_RejectsOutOfRangeParams(t *testing.T) {
	t.Parallel()
	var hasher Argon2Hasher
	good, err := hasher.HashPassword("alice", "test-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	parts := strings.Split(good, "$")

	for _, params := range []string{
		"m=19456,t=2,p=0",
		"m=19456,t=0,p=1",
		"m=0,t=2,p=1",
		"m=4294967295,t=2,p=1",
		"m=19456,t=4000000000,p=1",
	} {
		tampered := strings.Join([]string{"", parts[1], parts[2], params, parts[4], parts[5]}, "$")
		if hasher.VerifyPassword("alice", "test-password", tampered) {
			t.Fatalf("digest with %s should not verify", params)
		}
	}
}

func TestHasherByName(t *testing.T) {
	t.Parallel()
	for name, want := range map[string]PasswordHasher{
		"":       SHA256Hasher{},
		"sha256": SHA256Hasher{},
		"Argon2": Argon2Hasher{},
	} {
		got, err := HasherByName(name)
		if err != nil {
			t.Fatalf("HasherByName(%q) failed: %v", name, err)
		}
		if got != want {
			t.Fatalf("HasherByName(%q) = %T, want %T", name, got, want)
		}
	}
	if _, err := HasherByName("md5"); err == nil {
		t.Fatal("HasherByName should reject unknown hashers")
	}
}
