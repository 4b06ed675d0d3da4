package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// runDeadline caps one full pass so a hung provider cannot exceed the
// external scheduler's window. Individual requests time out sooner.
const runDeadline = 5 * time.Minute

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Run one inspection pass and push the results",
	Long:  `Polls every enabled provider once, prints a summary, and pushes the gathered metrics to the configured Pushgateway.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), runDeadline)
		defer cancel()

		batch := rt.orchestrator.Run(ctx)

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			if err := PrintJSON(batch); err != nil {
				return err
			}
		} else {
			PrintTable(batch)
		}

		// Provider failures are not fatal to the process; only a failed
		// push makes the run exit non-zero so the scheduler flags it.
		if res := rt.emitter.Emit(ctx, batch); res.Err != nil {
			return fmt.Errorf("emit: %w", res.Err)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().BoolP("json", "j", false, "Output the batch as JSON")
}
