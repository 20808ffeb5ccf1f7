package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	j := JWT{Secret: []byte("test-secret"), TokenTTL: time.Hour}

	token, expiresAt, err := j.Sign("alice", RolePlayer)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("Token already expired: %v", expiresAt)
	}

	claims, err := j.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.Subject != "alice" || claims.Role != RolePlayer {
		t.Errorf("Claims = %+v", claims)
	}
	if claims.ID == "" {
		t.Errorf("Token missing jti")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer := JWT{Secret: []byte("secret-a"), TokenTTL: time.Hour}
	verifier := JWT{Secret: []byte("secret-b"), TokenTTL: time.Hour}

	token, _, err := signer.Sign("alice", RolePlayer)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Errorf("Verify accepted a token signed with another secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	j := JWT{Secret: []byte("test-secret"), TokenTTL: -time.Minute}

	token, _, err := j.Sign("alice", RolePlayer)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := j.Verify(token); err == nil {
		t.Errorf("Verify accepted an expired token")
	}
}

func TestMiddleware(t *testing.T) {
	j := JWT{Secret: []byte("test-secret"), TokenTTL: time.Hour}

	var gotClaims Claims
	handler := Middleware(j)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Errorf("Claims missing from context")
		}
		gotClaims = c
		w.WriteHeader(http.StatusNoContent)
	}))

	// No token
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("No-token status = %d, want 401", rec.Code)
	}

	// Garbage token
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Bad-token status = %d, want 401", rec.Code)
	}

	// Valid token
	token, _, err := j.Sign("admin1", RoleAdmin)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("Valid-token status = %d, want 204", rec.Code)
	}
	if gotClaims.Subject != "admin1" || gotClaims.Role != RoleAdmin {
		t.Errorf("Claims = %+v", gotClaims)
	}
}
