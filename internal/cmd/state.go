package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/saltview/internal/output"
)

// NewStateCommand creates the state command: render a state.apply return
// object from a payload file.
func NewStateCommand(flags *rootFlags) *cobra.Command {
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "state <payload-file>",
		Short: "Render a state run report",
		Long: `Render the return object of a state.apply execution as one table per
minion. The payload file may be JSON or YAML.

Examples:
  saltview state highstate.json
  saltview state --failed-only --time-unit s highstate.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, opts, log, err := flags.setup()
			if err != nil {
				return err
			}
			if failedOnly {
				opts.Filter = output.FilterFailuresOnly
			}

			payload, err := loadPayload(args[0])
			if err != nil {
				return err
			}

			log.Debugf("rendering state report from %s", args[0])
			text, err := output.StateReport(payload, opts)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&failedOnly, "failed-only", false, "only include states that did not succeed")
	return cmd
}
