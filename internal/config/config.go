// Package config decodes the occaccept YAML configuration and turns it into
// the collaborators a suite needs: OCS client, occ runner, journal and the
// global inline codes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/loykin/occaccept/internal/auth"
	"github.com/loykin/occaccept/internal/common"
	"github.com/loykin/occaccept/internal/constants"
	"github.com/loykin/occaccept/internal/env"
	"github.com/loykin/occaccept/internal/httpc"
	"github.com/loykin/occaccept/internal/ocs"
	"github.com/loykin/occaccept/internal/scenario"
	"github.com/loykin/occaccept/internal/store"
	"github.com/loykin/occaccept/internal/util"
	"github.com/loykin/occaccept/internal/wait"
	"github.com/loykin/occaccept/pkg/occ"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	BaseURL       string `mapstructure:"base_url" yaml:"base_url"`
	RemoteBaseURL string `mapstructure:"remote_base_url" yaml:"remote_base_url"`
	AdminUsername string `mapstructure:"admin_username" yaml:"admin_username"`
	AdminPassword string `mapstructure:"admin_password" yaml:"admin_password"`
	OCSAPIVersion int    `mapstructure:"ocs_api_version" yaml:"ocs_api_version"`
	// CapabilitySeparator splits capability paths, "@@@" by default.
	CapabilitySeparator string `mapstructure:"capability_separator" yaml:"capability_separator"`
}

type OccConfig struct {
	// Mode is "remote" (testing app endpoint) or "local" (child process).
	Mode       string `mapstructure:"mode" yaml:"mode"`
	PHP        string `mapstructure:"php" yaml:"php"`
	ServerRoot string `mapstructure:"server_root" yaml:"server_root"`
}

type UsersConfig struct {
	DefaultPassword string            `mapstructure:"default_password" yaml:"default_password"`
	Passwords       map[string]string `mapstructure:"passwords" yaml:"passwords"`
}

type AuthConfig struct {
	// Type is a registered auth provider ("basic", "oauth2"). Empty means
	// basic auth with the server admin credentials.
	Type   string                 `mapstructure:"type" yaml:"type"`
	Config map[string]interface{} `mapstructure:"config" yaml:"config"`
}

type ClientConfig struct {
	Insecure      bool   `mapstructure:"insecure" yaml:"insecure"`
	MinTLSVersion string `mapstructure:"min_tls_version" yaml:"min_tls_version"`
	MaxTLSVersion string `mapstructure:"max_tls_version" yaml:"max_tls_version"`
	Timeout       string `mapstructure:"timeout" yaml:"timeout"`
}

type SuiteConfig struct {
	Paths  []string `mapstructure:"paths" yaml:"paths"`
	Tags   string   `mapstructure:"tags" yaml:"tags"`
	Format string   `mapstructure:"format" yaml:"format"`
	Strict *bool    `mapstructure:"strict" yaml:"strict"`
	// StopOnFailure ends the run at the first failed scenario.
	StopOnFailure bool `mapstructure:"stop_on_failure" yaml:"stop_on_failure"`
}

type JournalConfig struct {
	Disabled     bool `mapstructure:"disabled" yaml:"disabled"`
	store.Config `mapstructure:",squash" yaml:",inline"`
}

type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`                   // error, warn, info, debug
	Format        string `mapstructure:"format" yaml:"format"`                 // text, json, color
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive"` // enable/disable sensitive data masking
	Color         *bool  `mapstructure:"color" yaml:"color"`                   // enable/disable colorized output
}

type ConfigDoc struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Occ     OccConfig     `mapstructure:"occ" yaml:"occ"`
	Users   UsersConfig   `mapstructure:"users" yaml:"users"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth"`
	Client  ClientConfig  `mapstructure:"client" yaml:"client"`
	Wait    wait.Config   `mapstructure:"wait" yaml:"wait"`
	Suite   SuiteConfig   `mapstructure:"suite" yaml:"suite"`
	Journal JournalConfig `mapstructure:"journal" yaml:"journal"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	// Env adds inline codes usable as %name% in step text.
	Env env.Env `mapstructure:"-" yaml:"env"`

	// dir is the directory of the loaded file; relative paths resolve
	// against it.
	dir string
}

func (c *ConfigDoc) Load(path string) error {
	clean := filepath.Clean(path)
	// Ensure path points to a regular file to avoid opening directories/special files
	if info, statErr := os.Stat(clean); statErr != nil || !info.Mode().IsRegular() {
		if statErr != nil {
			return statErr
		}
		return fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- config path is provided intentionally by the user/CI; cleaned and validated above
	f, err := os.Open(clean)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode %s: %w", clean, err)
	}
	c.dir = filepath.Dir(clean)
	return nil
}

// resolve makes p relative to the config file directory.
func (c *ConfigDoc) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// ApplyDefaults fills unset values and validates the rest.
func (c *ConfigDoc) ApplyDefaults() error {
	base, ok := util.TrimEmptyCheck(c.Server.BaseURL)
	if !ok {
		return fmt.Errorf("server.base_url is required")
	}
	c.Server.BaseURL = strings.TrimRight(base, "/")
	c.Server.AdminUsername = util.TrimWithDefault(c.Server.AdminUsername, constants.DefaultAdminUsername)
	if c.Server.AdminPassword == "" {
		c.Server.AdminPassword = constants.DefaultAdminPassword
	}
	if c.Server.OCSAPIVersion == 0 {
		c.Server.OCSAPIVersion = constants.DefaultOCSAPIVersion
	}
	if c.Server.OCSAPIVersion != 1 && c.Server.OCSAPIVersion != 2 {
		return fmt.Errorf("server.ocs_api_version must be 1 or 2, got %d", c.Server.OCSAPIVersion)
	}
	if c.Server.CapabilitySeparator == "" {
		c.Server.CapabilitySeparator = constants.DefaultCapabilitySeparator
	}

	c.Occ.Mode = util.TrimWithDefault(util.TrimAndLower(c.Occ.Mode), constants.OccModeRemote)
	switch c.Occ.Mode {
	case constants.OccModeRemote:
	case constants.OccModeLocal:
		if strings.TrimSpace(c.Occ.ServerRoot) == "" {
			return fmt.Errorf("occ.server_root is required in local mode")
		}
		c.Occ.ServerRoot = c.resolve(c.Occ.ServerRoot)
	default:
		return fmt.Errorf("occ.mode must be %q or %q, got %q", constants.OccModeRemote, constants.OccModeLocal, c.Occ.Mode)
	}

	if c.Users.DefaultPassword == "" {
		c.Users.DefaultPassword = constants.DefaultUserPassword
	}
	if len(c.Suite.Paths) == 0 {
		c.Suite.Paths = []string{"features"}
	}
	for i, p := range c.Suite.Paths {
		c.Suite.Paths[i] = c.resolve(p)
	}
	if c.Suite.Format == "" {
		c.Suite.Format = "pretty"
	}
	if c.Journal.SQLite.Path == "" {
		c.Journal.SQLite.Path = constants.DefaultJournalFile
	}
	if c.Journal.SQLite.Path != ":memory:" {
		c.Journal.SQLite.Path = c.resolve(c.Journal.SQLite.Path)
	}
	return nil
}

// Strict reports whether undefined or pending steps fail the run.
func (c *ConfigDoc) Strict() bool {
	return c.Suite.Strict == nil || *c.Suite.Strict
}

// HTTP returns the HTTP client settings.
func (c *ConfigDoc) HTTP() (*httpc.Httpc, error) {
	timeout := constants.DefaultRequestTimeout
	if s, ok := util.TrimEmptyCheck(c.Client.Timeout); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("client.timeout: %w", err)
		}
		timeout = d
	}
	return &httpc.Httpc{
		TlsConfig: httpc.TLSConfig(c.Client.Insecure, c.Client.MinTLSVersion, c.Client.MaxTLSVersion),
		Timeout:   timeout,
	}, nil
}

// AdminAuth returns the method authorizing administrative requests.
func (c *ConfigDoc) AdminAuth() (auth.Method, error) {
	typ, ok := util.TrimEmptyCheck(c.Auth.Type)
	if !ok {
		return auth.BasicConfig{Username: c.Server.AdminUsername, Password: c.Server.AdminPassword}, nil
	}
	spec, _ := util.SubstituteAny(c.Auth.Config, c.BaseEnv()).(map[string]interface{})
	m, err := auth.Build(typ, spec)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	return m, nil
}

// OCSClient builds the OCS client for the server under test.
func (c *ConfigDoc) OCSClient() (*ocs.Client, error) {
	h, err := c.HTTP()
	if err != nil {
		return nil, err
	}
	admin, err := c.AdminAuth()
	if err != nil {
		return nil, err
	}
	return ocs.New(c.Server.BaseURL, c.Server.OCSAPIVersion, admin, h), nil
}

// Runner returns the occ runner selected by occ.mode.
func (c *ConfigDoc) Runner(client *ocs.Client) occ.Runner {
	if c.Occ.Mode == constants.OccModeLocal {
		return occ.NewLocalRunner(c.Occ.PHP, c.Occ.ServerRoot)
	}
	return occ.NewRemoteRunner(client)
}

// BaseEnv returns the run-wide inline codes: the server codes plus the
// configured env entries, which may override them.
func (c *ConfigDoc) BaseEnv() *env.Env {
	e := env.New()
	for k, v := range env.ServerCodes(c.Server.BaseURL, c.Server.RemoteBaseURL, c.Server.AdminUsername, c.Server.AdminPassword) {
		e.Global[k] = v
	}
	for k, v := range c.Env.Global {
		e.Global[k] = v
	}
	return e
}

// ScenarioUsers returns the credentials table handed to every scenario.
func (c *ConfigDoc) ScenarioUsers() scenario.Users {
	passwords := make(map[string]string, len(c.Users.Passwords))
	for k, v := range c.Users.Passwords {
		passwords[k] = v
	}
	return scenario.Users{
		Admin:           c.Server.AdminUsername,
		AdminPassword:   c.Server.AdminPassword,
		DefaultPassword: c.Users.DefaultPassword,
		Passwords:       passwords,
	}
}

func (c *ConfigDoc) parseLogLevel() (common.LogLevel, error) {
	level := util.TrimAndLower(c.Logging.Level)
	switch level {
	case "error":
		return common.LogLevelError, nil
	case "warn", "warning":
		return common.LogLevelWarn, nil
	case "info", "":
		return common.LogLevelInfo, nil
	case "debug":
		return common.LogLevelDebug, nil
	default:
		return common.LogLevelInfo, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", c.Logging.Level)
	}
}

// SetupLogging configures the global logger based on config settings
func (c *ConfigDoc) SetupLogging() error {
	level, err := c.parseLogLevel()
	if err != nil {
		return err
	}

	var logger *common.Logger
	format := util.TrimAndLower(c.Logging.Format)

	useColor := false
	if c.Logging.Color != nil {
		useColor = *c.Logging.Color
	} else if format == "color" || format == "colour" {
		useColor = true
	}

	switch format {
	case "json":
		logger = common.NewJSONLogger(level)
	case "color", "colour":
		logger = common.NewColorLogger(level)
	case "text", "":
		if useColor {
			logger = common.NewColorLogger(level)
		} else {
			logger = common.NewLogger(level)
		}
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json, color)", c.Logging.Format)
	}

	maskingEnabled := true
	if c.Logging.MaskSensitive != nil {
		maskingEnabled = *c.Logging.MaskSensitive
	}
	logger.EnableMasking(maskingEnabled)
	common.SetDefaultLogger(logger)
	common.EnableMasking(maskingEnabled)

	logger.Debug("logging configured",
		"level", util.TrimWithDefault(util.TrimAndLower(c.Logging.Level), "info"),
		"format", format,
		"color", useColor,
		"mask_sensitive", maskingEnabled)
	return nil
}
