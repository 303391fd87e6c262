// Package occaccept runs ownCloud acceptance features through occ and the
// OCS API. The occaccept command covers the usual workflow; this package
// is for suites that want to drive godog themselves.
package occaccept

import (
	"context"

	"github.com/cucumber/godog"
	"github.com/loykin/occaccept/internal/auth"
	"github.com/loykin/occaccept/internal/config"
	"github.com/loykin/occaccept/internal/steps"
	"github.com/loykin/occaccept/internal/suite"
)

// Re-export commonly used types for public API

// Config is the decoded configuration file.
type Config = config.ConfigDoc

// AuthMethod acquires the Authorization header value for admin requests.
type AuthMethod = auth.Method

type AuthFactory = auth.Factory

// RegisterAuthProvider exposes custom auth provider registration for library users.
func RegisterAuthProvider(typ string, f AuthFactory) { auth.Register(typ, f) }

// LoadConfig reads the YAML file at path and fills in defaults.
func LoadConfig(path string) (*Config, error) {
	var c Config
	if err := c.Load(path); err != nil {
		return nil, err
	}
	if err := c.ApplyDefaults(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Run waits for the server when configured and runs the features of cfg.
// It returns godog's exit status.
func Run(ctx context.Context, cfg *Config) (int, error) {
	return suite.Run(ctx, cfg)
}

// RunFile loads the config at path, sets up logging from it and runs.
func RunFile(ctx context.Context, path string) (int, error) {
	var c Config
	if err := c.Load(path); err != nil {
		return 1, err
	}
	if err := c.SetupLogging(); err != nil {
		return 1, err
	}
	if err := c.ApplyDefaults(); err != nil {
		return 1, err
	}
	return suite.Run(ctx, &c)
}

// ScenarioInitializer returns a godog ScenarioInitializer bound to cfg,
// for use in a caller's own godog.TestSuite. Call the returned close
// function once the suite has finished.
func ScenarioInitializer(ctx context.Context, cfg *Config) (func(*godog.ScenarioContext), func(), error) {
	s, closer, err := suite.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return s.InitializeScenario, closer, nil
}

// StepPatterns lists every step pattern a feature can use.
func StepPatterns() []string { return steps.Patterns() }
