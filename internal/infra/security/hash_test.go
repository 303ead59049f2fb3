package security

import (
	"strings"
	"testing"
)

func mustHash(t *testing.T, password string) string {
	t.Helper()
	encoded, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword(%q): %v", password, err)
	}
	return encoded
}

func TestPasswordHashRoundtrip(t *testing.T) {
	const password = "correct horse battery staple"
	encoded := mustHash(t, password)

	if parts := strings.Split(encoded, ":"); len(parts) != 2 {
		t.Fatalf("stored form should be salt:hash, got %q", encoded)
	}

	ok, err := VerifyPassword(password, encoded)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatalf("correct password did not verify")
	}

	ok, err = VerifyPassword("Tr0ub4dor&3", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Fatalf("wrong password verified")
	}
}

func TestPasswordHashUsesFreshSalt(t *testing.T) {
	if mustHash(t, "same-password") == mustHash(t, "same-password") {
		t.Fatalf("two hashes of the same password should differ")
	}
}

func TestVerifyPasswordMalformedStored(t *testing.T) {
	for _, stored := range []string{"no-separator", "a:b:c", "!!!:???"} {
		if _, err := VerifyPassword("password", stored); err == nil {
			t.Errorf("expected an error for stored value %q", stored)
		}
	}
}

func TestVerifyPasswordEmptyInputs(t *testing.T) {
	ok, err := VerifyPassword("", "")
	if err != nil {
		t.Fatalf("empty inputs should not error: %v", err)
	}
	if ok {
		t.Fatalf("empty inputs should not verify")
	}
}
