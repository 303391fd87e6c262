package commands

import (
	"context"

	"github.com/loykin/occaccept/internal/wait"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var WaitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait until the server reports an installed instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return waitForServer(commandContext(cmd), viper.GetViper())
	},
}

// waitForServer polls even when the wait section is disabled in the file.
func waitForServer(ctx context.Context, v *viper.Viper) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	h, err := cfg.HTTP()
	if err != nil {
		return err
	}
	wc := cfg.Wait
	wc.Enabled = true
	if s := v.GetString("wait_timeout"); s != "" {
		wc.Timeout = s
	}
	return wait.Until(ctx, h, cfg.Server.BaseURL, wc)
}
