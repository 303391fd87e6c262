package auth

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/oauth2"
)

// PasswordConfig configures the resource owner password credentials grant,
// used when the server under test sits behind an OpenID Connect provider.
type PasswordConfig struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	TokenURL     string   `mapstructure:"token_url"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	Scopes       []string `mapstructure:"scopes"`
	Insecure     bool     `mapstructure:"insecure"`
}

type passwordMethod struct {
	c PasswordConfig

	mu  sync.Mutex
	src oauth2.TokenSource
}

// Acquire returns "Bearer <token>", reusing the token until it expires.
func (m *passwordMethod) Acquire(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.src == nil {
		tokenURL := strings.TrimSpace(m.c.TokenURL)
		if tokenURL == "" {
			return "", errors.New("oauth2: token_url is required for password grant")
		}
		if strings.TrimSpace(m.c.ClientID) == "" || strings.TrimSpace(m.c.Username) == "" || m.c.Password == "" {
			return "", errors.New("oauth2: client_id, username and password are required for password grant")
		}
		if ctx == nil {
			ctx = context.Background()
		}
		if m.c.Insecure {
			// #nosec G402 -- test servers commonly run with self-signed certificates
			hc := &http.Client{Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}}
			ctx = context.WithValue(ctx, oauth2.HTTPClient, hc)
		}
		cfg := &oauth2.Config{
			ClientID:     strings.TrimSpace(m.c.ClientID),
			ClientSecret: strings.TrimSpace(m.c.ClientSecret),
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams},
			Scopes:       m.c.Scopes,
		}
		tok, err := cfg.PasswordCredentialsToken(ctx, strings.TrimSpace(m.c.Username), m.c.Password)
		if err != nil {
			return "", err
		}
		m.src = cfg.TokenSource(context.Background(), tok)
	}

	tok, err := m.src.Token()
	if err != nil {
		return "", err
	}
	if tok == nil || strings.TrimSpace(tok.AccessToken) == "" {
		return "", errors.New("oauth2: received invalid token")
	}
	return "Bearer " + tok.AccessToken, nil
}
