package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aescanero/tripplanner/pkg/domain"
	"github.com/spf13/cobra"
)

var planReq domain.Request

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build one plan and print it as JSON",
	Long: `Build a single trip plan and print the composite result as JSON.

Examples:
  tripplanner plan --destination "Jaipur, India" --dates "2025-12-10 to 2025-12-15" --budget 50000 --mood adventure
  tripplanner plan --example`,
	RunE: runPlan,
}

var planExample bool

func init() {
	planCmd.Flags().StringVar(&planReq.Destination, "destination", "", "Destination city or region")
	planCmd.Flags().StringVar(&planReq.Dates, "dates", "", `Trip dates, "YYYY-MM-DD to YYYY-MM-DD"`)
	planCmd.Flags().StringVar(&planReq.Budget, "budget", "", "Total budget")
	planCmd.Flags().StringVar(&planReq.Mood, "mood", "", "Trip mood (default relax)")
	planCmd.Flags().BoolVar(&planExample, "example", false, "Plan the example request")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := requireCredentials(cfg); err != nil {
		return err
	}

	req := planReq
	if planExample {
		req = domain.ExampleRequest()
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.shutdown(ctx)

	result, err := a.manager.Plan(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to build plan: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
