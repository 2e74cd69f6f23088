package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/saltview/internal/normalize"
	"github.com/harrison/saltview/internal/output"
	"github.com/harrison/saltview/internal/salt"
)

// NewOrchCommand creates the orch command: render an orchestration return
// object from a payload file.
func NewOrchCommand(flags *rootFlags) *cobra.Command {
	var (
		failedOnly bool
		fetch      bool
	)

	cmd := &cobra.Command{
		Use:   "orch <payload-file>",
		Short: "Render an orchestration summary",
		Long: `Render the return object of a state.orch execution as a step summary
table with nested sub-tables for wrapped state runs.

Failed steps carry their sub-results by job ID instead of embedding them.
With --fetch, those are retrieved from the salt-api server configured in
the config file.

Examples:
  saltview orch orch.json
  saltview orch --failed-only orch.json
  saltview orch --fetch orch.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, log, err := flags.setup()
			if err != nil {
				return err
			}
			if failedOnly {
				opts.Filter = output.FilterFailuresOnly
			}

			var fetcher normalize.JobFetcher
			if fetch {
				fetcher = salt.NewClient(cfg.API, log)
			}

			payload, err := loadPayload(args[0])
			if err != nil {
				return err
			}

			log.Debugf("rendering orchestration summary from %s", args[0])
			text, err := output.OrchestrationSummary(payload, fetcher, opts)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&failedOnly, "failed-only", false, "only include steps that did not succeed")
	cmd.Flags().BoolVar(&fetch, "fetch", false, "fetch job-referenced sub-results from the salt-api server")
	return cmd
}
