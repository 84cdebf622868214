// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/libapps/bulkill/pkg/types"
)

// resultsHeader is the fixed column layout of the results file.
var resultsHeader = []string{
	"Entry number",
	"Title",
	"Author",
	"Error",
	"Transaction",
	"Transaction number",
}

// ResultsFilename derives the results filename from the input file:
// timestamped for normal and test runs, deterministic in dev mode so
// fixture comparisons work.
func ResultsFilename(inputPath string, dev bool, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	if dev {
		return base + "_results.csv"
	}
	return fmt.Sprintf("%s_%s_results.csv", base, now.Format("2006-01-02_15.04.05"))
}

// WriteResults writes one CSV row per ProcessingResult, in slice order.
// Row order mirrors input order; that is a correctness property the
// orchestrator already guarantees, and the writer preserves it by never
// reordering.
func WriteResults(path string, results []types.ProcessingResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(resultsHeader); err != nil {
		return fmt.Errorf("writing results header: %w", err)
	}
	for _, r := range results {
		row := []string{
			fmt.Sprintf("%d", r.Entry),
			r.Title,
			r.Author,
			r.Error,
			r.Payload.String(),
			r.TransactionNumber,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing results row %d: %w", r.Entry, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing results file: %w", err)
	}
	return nil
}
