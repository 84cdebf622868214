// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/libapps/bulkill/internal/history"
	"github.com/libapps/bulkill/internal/illiad"
	"github.com/libapps/bulkill/internal/ingest"
	"github.com/libapps/bulkill/internal/pipeline"
	"github.com/libapps/bulkill/pkg/types"
)

var submitCmd = &cobra.Command{
	Use:   "submit <email> <file>",
	Short: "Create loan transactions for every citation in a file",
	Long: `Submit reads citations from a CSV or RIS file and creates one interlibrary
loan transaction per entry on behalf of the given requester. The requester
must already have a cleared account in the loan system.

A results file with one row per entry is written whatever the outcome;
entries with errors are recorded there and skipped, never aborting the
rest of the batch.`,
	Args: cobra.ExactArgs(2),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringP("pickup", "p", "", "pickup library for physical materials (loan requests only)")
	submitCmd.Flags().BoolP("test", "t", false, "validate and record transactions without submitting them")
	submitCmd.Flags().Bool("dev", false, "developer mode: deterministic results filename, no submissions")
	submitCmd.Flags().Bool("strict", false, "also require the title field during validation")
	submitCmd.Flags().String("results-dir", "", "directory for the results file (default from config)")
	submitCmd.Flags().String("history-dir", "", "record the run in a SQLite history database under this directory")

	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	email, inputPath := args[0], args[1]

	svcCfg, err := serviceConfig()
	if err != nil {
		return &configError{err}
	}
	table, err := typeMapping()
	if err != nil {
		return &configError{err}
	}
	locations := pickupLocations()
	if len(locations) == 0 {
		return &configError{fmt.Errorf("no pickup locations configured; set pickup_locations in bulkill.yaml or BULKILL_PICKUP_LOCATIONS")}
	}

	run := types.RunConfig{
		Requester:       email,
		PickupLocations: locations,
		ResultsDir:      viper.GetString("results_dir"),
	}
	run.Pickup, _ = cmd.Flags().GetString("pickup")
	run.TestMode, _ = cmd.Flags().GetBool("test")
	run.DevMode, _ = cmd.Flags().GetBool("dev")
	run.Strict, _ = cmd.Flags().GetBool("strict")
	run.HistoryDir, _ = cmd.Flags().GetString("history-dir")
	if dir, _ := cmd.Flags().GetString("results-dir"); dir != "" {
		run.ResultsDir = dir
	}

	if run.Pickup != "" && !slices.Contains(run.PickupLocations, run.Pickup) {
		return &configError{fmt.Errorf("unknown pickup location %q; valid locations: %v", run.Pickup, run.PickupLocations)}
	}

	enc, records, err := ingest.ReadFile(inputPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s file confirmed: %d entries\n", formatName(enc), len(records))

	ctx := cmd.Context()
	client := illiad.NewClient(svcCfg)
	if err := client.CheckUser(ctx, email); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "User %s confirmed.\n", email)

	started := time.Now()
	batch, runErr := pipeline.Run(ctx, table, enc, records, run, client, os.Stderr)

	// Results are written even when the batch aborted partway: every
	// entry processed so far gets its row.
	resultsPath := ""
	if len(batch.Results) > 0 || runErr == nil {
		name := pipeline.ResultsFilename(inputPath, run.DevMode, started)
		resultsPath = filepath.Join(run.ResultsDir, name)
		if err := pipeline.WriteResults(resultsPath, batch.Results); err != nil {
			return err
		}
		batch.Messages = append(batch.Messages, "Results saved to "+resultsPath)
	}

	if run.HistoryDir != "" {
		if err := recordHistory(cmd, batch, run, inputPath, started); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not record history: %v\n", err)
		}
	}

	for _, msg := range batch.Messages {
		fmt.Fprintln(cmd.OutOrStdout(), msg)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Processed %d entries: %d submitted, %d recorded, %d rejected.\n",
		len(batch.Results), batch.Submitted, batch.Recorded, batch.Rejected)

	if runErr != nil {
		return runErr
	}
	if batch.HasFailures() {
		return &entryErrors{count: batch.Rejected}
	}
	return nil
}

func recordHistory(cmd *cobra.Command, batch *pipeline.BatchResult, run types.RunConfig, inputPath string, started time.Time) error {
	store, err := history.Open(run.HistoryDir)
	if err != nil {
		return err
	}
	defer store.Close()

	meta := history.RunMeta{
		InputFile: inputPath,
		Requester: run.Requester,
		Pickup:    run.Pickup,
		TestMode:  run.Testing(),
		StartedAt: started,
	}
	_, err = store.RecordRun(cmd.Context(), meta, batch.Submitted, batch.Recorded, batch.Rejected, batch.Results)
	return err
}

func formatName(enc types.Encoding) string {
	if enc == types.EncodingRIS {
		return "RIS"
	}
	return "CSV"
}
