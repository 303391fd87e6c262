package httpc

import (
	"crypto/tls"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// UserAgent is sent with every request so server logs can tell test traffic apart.
const UserAgent = "occaccept"

type Httpc struct {
	TlsConfig *tls.Config
	// Timeout bounds a single request; zero leaves resty's default (none).
	Timeout time.Duration
}

// New returns a resty.Client configured according to the receiver's settings.
// Defaults: MinVersion TLS1.2 when MinVersion is zero.
func (h *Httpc) New() *resty.Client {
	c := resty.New().SetHeader("User-Agent", UserAgent)
	if h == nil {
		return c
	}
	if h.Timeout > 0 {
		c.SetTimeout(h.Timeout)
	}
	cfg := h.TlsConfig
	if cfg == nil {
		return c
	}
	if cfg.MinVersion == 0 {
		cfg.MinVersion = tls.VersionTLS12
	}
	c.SetTLSClientConfig(cfg)
	return c
}

// ParseTLSVersion converts "1.2", "12", "tls1.2" ... to a crypto/tls constant.
// Returns 0 if the version string is not recognized.
func ParseTLSVersion(version string) uint16 {
	switch strings.TrimSpace(strings.ToLower(version)) {
	case "1.0", "10", "tls1.0", "tls10":
		return tls.VersionTLS10
	case "1.1", "11", "tls1.1", "tls11":
		return tls.VersionTLS11
	case "1.2", "12", "tls1.2", "tls12":
		return tls.VersionTLS12
	case "1.3", "13", "tls1.3", "tls13":
		return tls.VersionTLS13
	default:
		return 0
	}
}

// TLSConfig builds a client TLS config from loosely typed options.
func TLSConfig(insecure bool, minVersion, maxVersion string) *tls.Config {
	cfg := &tls.Config{MinVersion: ParseTLSVersion(minVersion), MaxVersion: ParseTLSVersion(maxVersion)}
	if insecure {
		// #nosec G402 -- test servers commonly run with self-signed certificates
		cfg.InsecureSkipVerify = true
	}
	return cfg
}
