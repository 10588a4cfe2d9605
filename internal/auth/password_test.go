package auth

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash must not equal the plaintext")
	}
	if err := VerifyPassword(hash, "secret123"); err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if err := VerifyPassword(hash, "secret124"); err == nil {
		t.Fatal("expected mismatch")
	}
}

func TestPasswordFailClosed(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("empty password must not hash")
	}
	if err := VerifyPassword("", "whatever"); err == nil {
		t.Fatal("empty hash must not verify")
	}
	if err := VerifyPassword("not-a-bcrypt-hash", "whatever"); err == nil {
		t.Fatal("corrupt hash must not verify")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ")
	}
}
