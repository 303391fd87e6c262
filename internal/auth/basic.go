package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
)

// BasicConfig holds credentials for HTTP Basic authentication.
type BasicConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Acquire returns the Basic Authorization header value.
func (c BasicConfig) Acquire(context.Context) (string, error) {
	return BasicValue(c.Username, c.Password)
}

// BasicValue builds "Basic base64(user:password)". The password is not
// trimmed; test users may carry significant whitespace.
func BasicValue(username, password string) (string, error) {
	u := strings.TrimSpace(username)
	if u == "" {
		return "", errors.New("basic: username is required")
	}
	cred := base64.StdEncoding.EncodeToString([]byte(u + ":" + password))
	return "Basic " + cred, nil
}
