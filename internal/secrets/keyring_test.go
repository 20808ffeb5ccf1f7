package secrets

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestSigningSecretRoundtrip(t *testing.T) {
	keyring.MockInit()
	s := NewStore("zoltaran-speaks-test", "")

	if _, err := s.SigningSecret(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before set, got %v", err)
	}

	if err := s.SetSigningSecret("super-secret"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.SigningSecret()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "super-secret" {
		t.Fatalf("got %q", got)
	}

	if err := s.Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.SigningSecret(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSetRejectsEmptySecret(t *testing.T) {
	keyring.MockInit()
	s := NewStore("zoltaran-speaks-test", "")

	if err := s.SetSigningSecret("  "); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestEnsureGeneratesOnce(t *testing.T) {
	keyring.MockInit()
	s := NewStore("zoltaran-speaks-test", "")

	first, err := s.EnsureSigningSecret()
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if len(first) != 64 {
		t.Fatalf("generated secret length = %d, want 64 hex chars", len(first))
	}

	second, err := s.EnsureSigningSecret()
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if second != first {
		t.Fatal("ensure regenerated an existing secret")
	}
}
