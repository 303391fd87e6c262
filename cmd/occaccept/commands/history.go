package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/loykin/occaccept/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tidwall/pretty"
)

var (
	historyLimit    int
	historyCommands bool
	historyJSON     bool
)

var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded scenario runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printHistory(commandContext(cmd), viper.GetViper(), cmd.OutOrStdout(), historyOptions{
			limit:    historyLimit,
			commands: historyCommands,
			json:     historyJSON,
		})
	},
}

func init() {
	HistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "show up to N latest runs (0 = all)")
	HistoryCmd.Flags().BoolVar(&historyCommands, "commands", false, "include the occ commands of every run")
	HistoryCmd.Flags().BoolVar(&historyJSON, "json", false, "print runs as JSON")
}

type historyOptions struct {
	limit    int
	commands bool
	json     bool
}

type runEntry struct {
	store.Run
	Commands []store.Command `json:"commands,omitempty"`
}

func printHistory(ctx context.Context, v *viper.Viper, w io.Writer, o historyOptions) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	if cfg.Journal.Disabled {
		_, err := fmt.Fprintln(w, "Journal is disabled - no run history available")
		return err
	}
	j, err := store.Open(ctx, cfg.Journal.Config)
	if err != nil {
		return err
	}
	defer func() { _ = j.Close() }()

	runs, err := j.ListRuns(ctx, o.limit)
	if err != nil {
		return err
	}
	entries := make([]runEntry, 0, len(runs))
	for _, r := range runs {
		e := runEntry{Run: r}
		if o.commands {
			if e.Commands, err = j.ListCommands(ctx, r.ID); err != nil {
				return err
			}
		}
		entries = append(entries, e)
	}

	if o.json {
		b, err := json.Marshal(entries)
		if err != nil {
			return err
		}
		_, err = w.Write(pretty.Pretty(b))
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s  %-7s  %s: %s\n", e.StartedAt, e.Status, e.Feature, e.Scenario); err != nil {
			return err
		}
		if e.Error != "" {
			if _, err := fmt.Fprintf(w, "    error: %s\n", e.Error); err != nil {
				return err
			}
		}
		for _, c := range e.Commands {
			if _, err := fmt.Fprintf(w, "    [%d] occ %s\n", c.ExitCode, c.Command); err != nil {
				return err
			}
		}
	}
	return nil
}
