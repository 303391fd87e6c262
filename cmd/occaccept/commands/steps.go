package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/loykin/occaccept/internal/steps"
	"github.com/spf13/cobra"
)

var StepsCmd = &cobra.Command{
	Use:   "steps [filter]",
	Short: "List the step patterns features can use",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ""
		if len(args) == 1 {
			filter = args[0]
		}
		return printSteps(cmd.OutOrStdout(), filter)
	},
}

// printSteps writes the patterns containing filter, case-insensitively.
func printSteps(w io.Writer, filter string) error {
	filter = strings.ToLower(filter)
	for _, p := range steps.Patterns() {
		if filter != "" && !strings.Contains(strings.ToLower(p), filter) {
			continue
		}
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}
