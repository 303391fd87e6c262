// Package retry re-runs journal statements that failed for a transient
// reason such as a busy SQLite file or a PostgreSQL serialization failure.
// Steps never use it: an occ invocation is never repeated.
package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/loykin/occaccept/internal/common"
)

const (
	defaultRetries      = 3
	defaultInitialDelay = 100 * time.Millisecond
	defaultMaxDelay     = 2 * time.Second
)

// Config is the `journal.retry` section. Zero values take the defaults; a
// negative MaxRetries disables retrying.
type Config struct {
	MaxRetries   int    `mapstructure:"max_retries" yaml:"max_retries"`
	InitialDelay string `mapstructure:"initial_delay" yaml:"initial_delay"`
	MaxDelay     string `mapstructure:"max_delay" yaml:"max_delay"`
}

type policy struct {
	retries int
	initial time.Duration
	max     time.Duration
}

func duration(s string, fallback time.Duration) time.Duration {
	if s = strings.TrimSpace(s); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func (c Config) policy() policy {
	p := policy{
		retries: c.MaxRetries,
		initial: duration(c.InitialDelay, defaultInitialDelay),
		max:     duration(c.MaxDelay, defaultMaxDelay),
	}
	switch {
	case p.retries == 0:
		p.retries = defaultRetries
	case p.retries < 0:
		p.retries = 0
	}
	if p.max < p.initial {
		p.max = p.initial
	}
	return p
}

// delay doubles per attempt starting at initial, capped at max.
func (p policy) delay(attempt int) time.Duration {
	d := p.initial
	for i := 0; i < attempt && d < p.max; i++ {
		d *= 2
	}
	if d > p.max {
		d = p.max
	}
	return d
}

// SQLSTATE classes worth another attempt: serialization failure, deadlock,
// lock not available, server starting up or shutting down, lost connection.
var transientStates = map[string]bool{
	"40001": true,
	"40P01": true,
	"55P03": true,
	"57P01": true,
	"57P03": true,
	"08000": true,
	"08003": true,
	"08006": true,
}

var transientMessages = []string{
	"database is locked",
	"database table is locked",
	"sqlite_busy",
	"connection refused",
	"connection reset",
	"broken pipe",
}

// Transient reports whether err is worth retrying.
func Transient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return transientStates[pgErr.Code]
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range transientMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// Do runs op until it succeeds, fails permanently, runs out of attempts or
// ctx is done.
func Do[T any](ctx context.Context, c Config, op func() (T, error)) (T, error) {
	p := c.policy()
	logger := common.GetLogger().WithComponent("journal")

	var zero T
	for attempt := 0; ; attempt++ {
		v, err := op()
		if err == nil {
			if attempt > 0 {
				logger.Debug("journal statement succeeded after retry", "attempts", attempt+1)
			}
			return v, nil
		}
		if !Transient(err) {
			return zero, err
		}
		if attempt >= p.retries {
			return zero, fmt.Errorf("gave up after %d attempts: %w", attempt+1, err)
		}

		d := p.delay(attempt)
		logger.Warn("journal statement failed, retrying", "error", err, "attempt", attempt+1, "retry_delay", d)
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// Run is Do for operations without a result.
func Run(ctx context.Context, c Config, op func() error) error {
	_, err := Do(ctx, c, func() (struct{}, error) { return struct{}{}, op() })
	return err
}
