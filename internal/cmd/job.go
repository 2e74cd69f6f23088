package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/saltview/internal/normalize"
	"github.com/harrison/saltview/internal/output"
	"github.com/harrison/saltview/internal/salt"
)

// NewJobCommand creates the job command: fetch a job return object from
// the salt-api server and render it.
func NewJobCommand(flags *rootFlags) *cobra.Command {
	var (
		clientKind string
		failedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "job <jid>",
		Short: "Fetch a job from salt-api and render it",
		Long: `Look up a job by ID on the salt-api server configured in the config
file and render it. Use --client to say which payload shape the job
carries: local for state runs, runner for orchestrations.

Examples:
  saltview job 20260829120000123456
  saltview job --client runner 20260829120000123456`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, log, err := flags.setup()
			if err != nil {
				return err
			}
			if failedOnly {
				opts.Filter = output.FilterFailuresOnly
			}

			client := salt.NewClient(cfg.API, log)
			payload, err := client.LookupJob(args[0])
			if err != nil {
				return err
			}

			text, err := output.Render(normalize.ClientKind(clientKind), payload, client, opts)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&clientKind, "client", string(normalize.ClientLocal), "payload shape: local or runner")
	cmd.Flags().BoolVar(&failedOnly, "failed-only", false, "only include rows that did not succeed")
	return cmd
}
