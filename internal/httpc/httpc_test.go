package httpc

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClient_Insecure_AllowsSelfSigned(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != UserAgent {
			t.Errorf("unexpected user agent %q", ua)
		}
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	h := &Httpc{TlsConfig: TLSConfig(true, "", "")}
	resp, err := h.New().R().Get(srv.URL)
	if err != nil {
		t.Fatalf("expected success with insecure client, got %v", err)
	}
	if resp.StatusCode() != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode())
	}
}

func TestHTTPClient_Secure_RejectsSelfSigned(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer srv.Close()

	h := &Httpc{TlsConfig: TLSConfig(false, "1.2", "")}
	if _, err := h.New().R().Get(srv.URL); err == nil {
		t.Fatalf("expected certificate verification error")
	}
}

func TestParseTLSVersion(t *testing.T) {
	cases := map[string]uint16{
		"1.2":    tls.VersionTLS12,
		"TLS13":  tls.VersionTLS13,
		" 10 ":   tls.VersionTLS10,
		"tls1.1": tls.VersionTLS11,
		"bogus":  0,
		"":       0,
	}
	for in, want := range cases {
		if got := ParseTLSVersion(in); got != want {
			t.Fatalf("%q: want %d got %d", in, want, got)
		}
	}
}

func TestNew_DefaultsMinVersion(t *testing.T) {
	cfg := &tls.Config{}
	h := &Httpc{TlsConfig: cfg}
	_ = h.New()
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Fatalf("expected TLS1.2 default, got %d", cfg.MinVersion)
	}
}
