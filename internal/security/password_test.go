package security

import (
	"strings"
	"testing"
)

func TestCreateSaltAndHash(t *testing.T) {
	salt, hash, err := CreateSaltAndHash("correct horse battery staple")

	if err != nil {
		t.Fatalf("CreateSaltAndHash returned error: %v", err)
	}

	if salt == "" {
		t.Fatal("expected a non-empty salt")
	}

	// 16 random bytes hex encoded
	if len(salt) != 32 {
		t.Fatalf("expected 32 char salt, got %d", len(salt))
	}

	if hash == "correct horse battery staple" || strings.Contains(hash, "correct horse") {
		t.Fatal("hash must never contain the plaintext")
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", hash)
	}
}

func TestSaltsAreUnique(t *testing.T) {
	a, _, err := CreateSaltAndHash("pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, _, err := CreateSaltAndHash("pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a == b {
		t.Fatal("two users must never share a salt")
	}
}

func TestVerifyPassword(t *testing.T) {
	salt, hash, err := CreateSaltAndHash("hunter2hunter2")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		password string
		salt     string
		hash     string
		want     bool
	}{
		{name: "correct_password", password: "hunter2hunter2", salt: salt, hash: hash, want: true},
		{name: "wrong_password", password: "hunter3hunter3", salt: salt, hash: hash, want: false},
		{name: "wrong_salt", password: "hunter2hunter2", salt: "deadbeefdeadbeefdeadbeefdeadbeef", hash: hash, want: false},
		{name: "garbage_hash", password: "hunter2hunter2", salt: salt, hash: "not-a-bcrypt-hash", want: false},
		{name: "empty_everything", password: "", salt: "", hash: "", want: false},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := VerifyPassword(tt.password, tt.salt, tt.hash)

			if got != tt.want {
				t.Fatalf("VerifyPassword = %v, want %v", got, tt.want)
			}
		})
	}
}
