package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/cordialsys/icetest/cmd/icetest/setup"
	"github.com/cordialsys/icetest/harness"
	"github.com/spf13/cobra"
)

func CmdRun() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: fmt.Sprintf("Run scenarios in order, all of them by default (%s).", strings.Join(harness.ScenarioNames(), ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup.UnwrapConfig(cmd.Context())
			stepTimeout, _ := cmd.Flags().GetDuration("step-timeout")
			if stepTimeout > 0 {
				cfg.StepTimeout = stepTimeout
			}
			// validate names before spawning anything
			for _, name := range args {
				if _, err := harness.GetScenario(name); err != nil {
					return err
				}
			}

			h, err := harness.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer h.Cleanup()

			results, err := harness.Run(cmd.Context(), h.Env(), cfg.StepTimeout, args...)
			if err != nil {
				return err
			}
			failed := 0
			for _, result := range results {
				PrintResult(cmd, result)
				if result.Failed() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().Duration("step-timeout", 0, "Override the timeout of each step.")
	return cmd
}

func PrintResult(cmd *cobra.Command, result *harness.Result) {
	out := cmd.OutOrStdout()
	for _, step := range result.Steps {
		line := fmt.Sprintf("%-8s %s/%s (%s)", step.Status, result.Scenario, step.Name, step.Duration.Round(time.Millisecond))
		if step.Err != nil {
			line += ": " + step.Err.Error()
		}
		fmt.Fprintln(out, line)
	}
}
