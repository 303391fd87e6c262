package auth

import (
	"context"
	"encoding/base64"
	"testing"
)

func TestBasicValue(t *testing.T) {
	v, err := BasicValue("admin", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:admin"))
	if v != want {
		t.Fatalf("want %q got %q", want, v)
	}

	if _, err := BasicValue("  ", "x"); err == nil {
		t.Fatalf("expected error for empty username")
	}
}

func TestBuildBasic(t *testing.T) {
	m, err := Build(" basic ", map[string]interface{}{"username": "Alice", "password": " 1234 "})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	v, err := m.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("Alice: 1234 "))
	if v != want {
		t.Fatalf("password must be kept verbatim: want %q got %q", want, v)
	}
}

func TestBuildUnknown(t *testing.T) {
	if _, err := Build("kerberos", nil); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
}

func TestRegisterAndStatic(t *testing.T) {
	Register("", nil)
	Register("fixed", func(map[string]interface{}) (Method, error) { return Static("Bearer t"), nil })
	m, err := Build("FIXED", nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	v, _ := m.Acquire(context.Background())
	if v != "Bearer t" {
		t.Fatalf("unexpected value %q", v)
	}
}
