package commands

import (
	"fmt"
	"path/filepath"

	"github.com/loykin/occaccept/internal/config"
	"github.com/loykin/occaccept/internal/util"
	"github.com/spf13/viper"
)

// ExitError carries a non-zero process status without an error message,
// e.g. the godog status of a failed suite.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// loadConfig reads the file named by --config, applies command-line
// overrides, configures logging and fills in defaults.
func loadConfig(v *viper.Viper) (*config.ConfigDoc, error) {
	path, ok := util.TrimEmptyCheck(v.GetString("config"))
	if !ok {
		return nil, fmt.Errorf("no config file given (use --config or OCCACCEPT_CONFIG)")
	}
	var c config.ConfigDoc
	if err := c.Load(path); err != nil {
		return nil, err
	}
	if s, ok := util.TrimEmptyCheck(v.GetString("base_url")); ok {
		c.Server.BaseURL = s
	}
	if s, ok := util.TrimEmptyCheck(v.GetString("tags")); ok {
		c.Suite.Tags = s
	}
	if s, ok := util.TrimEmptyCheck(v.GetString("format")); ok {
		c.Suite.Format = s
	}
	if v.GetBool("stop_on_failure") {
		c.Suite.StopOnFailure = true
	}
	if v.GetBool("no_journal") {
		c.Journal.Disabled = true
	}
	if err := c.SetupLogging(); err != nil {
		return nil, err
	}
	if err := c.ApplyDefaults(); err != nil {
		return nil, err
	}
	return &c, nil
}

// absPaths makes feature paths given on the command line absolute so they
// are not re-based onto the config file directory.
func absPaths(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		p, err := filepath.Abs(a)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
