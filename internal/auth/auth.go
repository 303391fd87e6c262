package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
)

// Method acquires the Authorization header value for administrative
// requests (e.g. "Basic ..." or "Bearer ...").
type Method interface {
	Acquire(ctx context.Context) (value string, err error)
}

// Factory builds a Method from a loosely-typed spec map.
type Factory func(spec map[string]interface{}) (Method, error)

var (
	mu        sync.RWMutex
	providers = map[string]Factory{}
)

func normalizeKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Register registers a provider factory under a type key. Empty keys and
// nil factories are ignored.
func Register(typ string, f Factory) {
	key := normalizeKey(typ)
	if key == "" || f == nil {
		return
	}
	mu.Lock()
	providers[key] = f
	mu.Unlock()
}

// Build returns the Method registered for typ configured from spec.
func Build(typ string, spec map[string]interface{}) (Method, error) {
	mu.RLock()
	f, ok := providers[normalizeKey(typ)]
	mu.RUnlock()
	if !ok {
		return nil, errors.New("auth: unsupported provider type: " + typ)
	}
	return f(spec)
}

// Static returns a Method that always yields value.
func Static(value string) Method { return staticMethod(value) }

type staticMethod string

func (s staticMethod) Acquire(context.Context) (string, error) { return string(s), nil }

func init() {
	Register("basic", func(spec map[string]interface{}) (Method, error) {
		var c BasicConfig
		if err := mapstructure.Decode(spec, &c); err != nil {
			return nil, err
		}
		return c, nil
	})
	Register("oauth2", func(spec map[string]interface{}) (Method, error) {
		var c PasswordConfig
		if err := mapstructure.Decode(spec, &c); err != nil {
			return nil, err
		}
		return &passwordMethod{c: c}, nil
	})
}
