package commands

import (
	"context"

	"github.com/loykin/occaccept/internal/suite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var RunCmd = &cobra.Command{
	Use:   "run [feature paths...]",
	Short: "Run acceptance features against the configured server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFeatures(commandContext(cmd), viper.GetViper(), args)
	},
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runFeatures(ctx context.Context, v *viper.Viper, args []string) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		paths, err := absPaths(args)
		if err != nil {
			return err
		}
		cfg.Suite.Paths = paths
	}
	status, err := suite.Run(ctx, cfg)
	if err != nil {
		return err
	}
	if status != 0 {
		return &ExitError{Code: status}
	}
	return nil
}
