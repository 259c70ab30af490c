package security_test

import (
	"strings"
	"testing"

	"github.com/agrogas/agrogas-backend/pkg/config"
	"github.com/agrogas/agrogas-backend/pkg/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	hash, err := security.HashPassword("very-secure-password", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestVerifyPasswordLegacyDigest(t *testing.T) {
	// hex sha256 of "mypassword", as stored by the first deployment
	const legacy = "89e01536ac207279409d4de1e5253e01f4a1769e696db0d6062ca9b8f56767c8"

	ok, err := security.VerifyPassword("mypassword", legacy)
	if err != nil || !ok {
		t.Fatalf("expected legacy digest to verify, ok=%v err=%v", ok, err)
	}
	ok, err = security.VerifyPassword("mypassword", strings.ToUpper(legacy))
	if err != nil || !ok {
		t.Fatalf("expected upper-case legacy digest to verify, ok=%v err=%v", ok, err)
	}
	ok, err = security.VerifyPassword("wrong", legacy)
	if err != nil || ok {
		t.Fatalf("expected wrong password to fail, ok=%v err=%v", ok, err)
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	strong := config.PasswordConfig{ArgonMemoryKB: 32768, ArgonTime: 2, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}

	hash, err := security.HashPassword("pw", weak)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	tests := []struct {
		name    string
		encoded string
		cfg     config.PasswordConfig
		want    bool
	}{
		{"legacy digest", "89e01536ac207279409d4de1e5253e01f4a1769e696db0d6062ca9b8f56767c8", weak, true},
		{"current params", hash, weak, false},
		{"params raised", hash, strong, true},
		{"garbage", "not-a-hash", strong, false},
	}
	for _, tt := range tests {
		if got := security.NeedsRehash(tt.encoded, tt.cfg); got != tt.want {
			t.Fatalf("%s: NeedsRehash = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestVerifyPasswordRejectsTamperedParams(t *testing.T) {
	for _, encoded := range []string{
		"$argon2id$v=16$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5",
	} {
		if _, err := security.VerifyPassword("pw", encoded); err == nil {
			t.Fatalf("expected error for %q", encoded)
		}
	}
}

func TestGenerateNumericCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := security.GenerateNumericCode(6)
		if err != nil {
			t.Fatalf("GenerateNumericCode returned error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("expected only digits, got %q", code)
			}
		}
	}
	if _, err := security.GenerateNumericCode(0); err == nil {
		t.Fatal("expected error for zero digits")
	}
}
