package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// Test OAuth2 password grant using golang.org/x/oauth2
func TestOAuth2_PasswordGrant(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "application/x-www-form-urlencoded") {
			t.Errorf("expected form content-type, got %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "password" {
			t.Errorf("expected grant_type=password, got %s", got)
		}
		if r.PostForm.Get("username") != "admin" || r.PostForm.Get("password") != "admin" {
			t.Errorf("username/password missing in form: %v", r.PostForm)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc123","token_type":"Bearer","expires_in":300}`))
	}))
	defer srv.Close()

	m, err := Build("oauth2", map[string]interface{}{
		"client_id": "occaccept",
		"username":  "admin",
		"password":  "admin",
		"token_url": srv.URL + "/konnect/v1/token",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i := 0; i < 2; i++ {
		v, err := m.Acquire(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "Bearer abc123" {
			t.Fatalf("unexpected token value: %s", v)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected the token to be reused, got %d token requests", n)
	}
}

func TestOAuth2_MissingTokenURL(t *testing.T) {
	m, err := Build("OAuth2", map[string]interface{}{"client_id": "x", "username": "u", "password": "p"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := m.Acquire(context.Background()); err == nil {
		t.Fatalf("expected error without token_url")
	}
}
