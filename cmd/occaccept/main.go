package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/loykin/occaccept/cmd/occaccept/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "occaccept",
	Short:         "Run ownCloud acceptance features through occ and the OCS API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.RunCmd.RunE(cmd, args)
	},
}

func init() {
	v := viper.GetViper()
	v.SetDefault("config", "./config.yaml")
	v.SetDefault("stop_on_failure", false)
	v.SetDefault("no_journal", false)

	// Environment variables support: OCCACCEPT_CONFIG, OCCACCEPT_BASE_URL, ...
	v.SetEnvPrefix("OCCACCEPT")
	v.AutomaticEnv()

	rootCmd.PersistentFlags().String("config", v.GetString("config"), "path to a config yaml (like examples/config.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "override server.base_url")
	rootCmd.PersistentFlags().Bool("no-journal", v.GetBool("no_journal"), "do not record runs in the journal")
	commands.RunCmd.Flags().String("tags", "", "godog tag expression, e.g. \"@occ && ~@skip\"")
	commands.RunCmd.Flags().String("format", "", "godog formatter (pretty, progress, cucumber, junit)")
	commands.RunCmd.Flags().Bool("stop-on-failure", v.GetBool("stop_on_failure"), "stop at the first failed scenario")
	commands.WaitCmd.Flags().String("timeout", "", "override wait.timeout")

	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = v.BindPFlag("no_journal", rootCmd.PersistentFlags().Lookup("no-journal"))
	_ = v.BindPFlag("tags", commands.RunCmd.Flags().Lookup("tags"))
	_ = v.BindPFlag("format", commands.RunCmd.Flags().Lookup("format"))
	_ = v.BindPFlag("stop_on_failure", commands.RunCmd.Flags().Lookup("stop-on-failure"))
	_ = v.BindPFlag("wait_timeout", commands.WaitCmd.Flags().Lookup("timeout"))

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.WaitCmd)
	rootCmd.AddCommand(commands.StepsCmd)
	rootCmd.AddCommand(commands.HistoryCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	handleResult(exitHandler, err)
}
