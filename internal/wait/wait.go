// Package wait polls the server's status.php until it reports an installed
// instance. It runs once before a suite; steps never wait or retry.
package wait

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/loykin/occaccept/internal/common"
	"github.com/loykin/occaccept/internal/constants"
	"github.com/loykin/occaccept/internal/httpc"
	"github.com/tidwall/gjson"
)

// Config is the `wait` section of the configuration.
type Config struct {
	// Enabled turns the readiness check on.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// URL overrides {base_url}/status.php.
	URL string `mapstructure:"url" yaml:"url"`
	// Status is the expected HTTP status, 200 by default.
	Status   int    `mapstructure:"status" yaml:"status"`
	Timeout  string `mapstructure:"timeout" yaml:"timeout"`
	Interval string `mapstructure:"interval" yaml:"interval"`
	// AllowMaintenance accepts an instance that is in maintenance mode.
	AllowMaintenance bool `mapstructure:"allow_maintenance" yaml:"allow_maintenance"`
}

type params struct {
	url              string
	expected         int
	timeout          time.Duration
	interval         time.Duration
	allowMaintenance bool
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s = strings.TrimSpace(s); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func parse(c Config, baseURL string) params {
	url := strings.TrimSpace(c.URL)
	if url == "" {
		url = strings.TrimRight(baseURL, "/") + constants.DefaultWaitPath
	}
	expected := c.Status
	if expected == 0 {
		expected = constants.DefaultWaitStatus
	}
	return params{
		url:              url,
		expected:         expected,
		timeout:          parseDuration(c.Timeout, constants.DefaultWaitTimeout),
		interval:         parseDuration(c.Interval, constants.DefaultWaitInterval),
		allowMaintenance: c.AllowMaintenance,
	}
}

// checkReady reports whether the server is ready, with a short reason when not.
func checkReady(ctx context.Context, h *httpc.Httpc, p params) (bool, string) {
	resp, err := h.New().R().SetContext(ctx).Get(p.url)
	if err != nil {
		return false, err.Error()
	}
	if resp.StatusCode() != p.expected {
		return false, fmt.Sprintf("status %d", resp.StatusCode())
	}
	body := resp.String()
	if !gjson.Get(body, "installed").Bool() {
		return false, "not installed"
	}
	if !p.allowMaintenance && gjson.Get(body, "maintenance").Bool() {
		return false, "in maintenance mode"
	}
	return true, ""
}

// Until polls until the server is ready or the timeout elapses. A disabled
// config returns immediately.
func Until(ctx context.Context, h *httpc.Httpc, baseURL string, c Config) error {
	if !c.Enabled {
		return nil
	}
	p := parse(c, baseURL)
	logger := common.GetLogger().WithComponent("wait").WithRequest("GET", p.url)
	deadline := time.Now().Add(p.timeout)
	for {
		ok, reason := checkReady(ctx, h, p)
		if ok {
			logger.Info("server is ready")
			return nil
		}
		logger.Debug("server not ready", "reason", reason)
		if time.Now().After(deadline) {
			return fmt.Errorf("wait: timeout waiting for %s to be ready (last: %s)", p.url, reason)
		}

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
