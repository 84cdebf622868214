// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/libapps/bulkill/internal/citation"
	"github.com/libapps/bulkill/internal/illiad"
	"github.com/libapps/bulkill/pkg/types"
)

// stubSubmitter returns canned outcomes keyed by call sequence.
type stubSubmitter struct {
	calls int
	fail  map[int]error // 1-based call number to error
}

func (s *stubSubmitter) Submit(ctx context.Context, payload types.TransactionPayload) (string, error) {
	s.calls++
	if err, ok := s.fail[s.calls]; ok {
		return "", err
	}
	return fmt.Sprintf("%d", 1000+s.calls), nil
}

func csvRecord(rawType, title, author string) types.CitationRecord {
	return types.CitationRecord{
		Fields: map[string]string{
			"Item Type": rawType,
			"Title":     title,
			"Author":    author,
		},
		RawType: rawType,
	}
}

func runConfig() types.RunConfig {
	return types.RunConfig{
		Requester: "patron@example.edu",
		Pickup:    "Main Library",
	}
}

func TestRunSubmitsInOrder(t *testing.T) {
	records := []types.CitationRecord{
		csvRecord("journalArticle", "First", "A"),
		csvRecord("book", "Second", "B"),
		csvRecord("journalArticle", "Third", "C"),
	}
	sub := &stubSubmitter{}

	batch, err := Run(context.Background(), citation.Default(), types.EncodingCSV, records, runConfig(), sub, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if batch.Submitted != 3 || batch.Rejected != 0 {
		t.Fatalf("Submitted = %d, Rejected = %d", batch.Submitted, batch.Rejected)
	}
	if len(batch.Results) != len(records) {
		t.Fatalf("len(Results) = %d, want %d", len(batch.Results), len(records))
	}
	for i, r := range batch.Results {
		if r.Entry != i+1 {
			t.Errorf("Results[%d].Entry = %d, want %d", i, r.Entry, i+1)
		}
		if r.Error != types.NoErrors {
			t.Errorf("Results[%d].Error = %q", i, r.Error)
		}
		if r.Outcome != types.OutcomeSubmitted {
			t.Errorf("Results[%d].Outcome = %q", i, r.Outcome)
		}
	}
	if batch.Results[0].TransactionNumber != "1001" {
		t.Errorf("first transaction number = %q", batch.Results[0].TransactionNumber)
	}
	if batch.HasFailures() {
		t.Error("HasFailures() = true")
	}
}

func TestRunUnsupportedType(t *testing.T) {
	records := []types.CitationRecord{
		csvRecord("journalArticle", "Fine", "A"),
		csvRecord("webpage", "Unsupported", "B"),
		csvRecord("book", "Also Fine", "C"),
	}
	sub := &stubSubmitter{}

	batch, err := Run(context.Background(), citation.Default(), types.EncodingCSV, records, runConfig(), sub, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if batch.Submitted != 2 || batch.Rejected != 1 {
		t.Fatalf("Submitted = %d, Rejected = %d", batch.Submitted, batch.Rejected)
	}
	bad := batch.Results[1]
	if bad.Error != "unsupported citation type" {
		t.Errorf("Error = %q", bad.Error)
	}
	if bad.Title != "Unsupported" {
		t.Errorf("Title = %q", bad.Title)
	}
	if bad.Outcome != types.OutcomeRejected {
		t.Errorf("Outcome = %q", bad.Outcome)
	}
	if !batch.HasFailures() {
		t.Error("HasFailures() = false")
	}
}

func TestRunValidationFailure(t *testing.T) {
	// Loan entry with an empty pickup location fails validation before any
	// submission attempt.
	records := []types.CitationRecord{csvRecord("book", "The Big Book", "B")}
	run := runConfig()
	run.Pickup = ""
	sub := &stubSubmitter{}

	batch, err := Run(context.Background(), citation.Default(), types.EncodingCSV, records, run, sub, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sub.calls != 0 {
		t.Errorf("Submit called %d times, want 0", sub.calls)
	}
	if batch.Rejected != 1 {
		t.Fatalf("Rejected = %d", batch.Rejected)
	}
	want := "The following required fields are missing from the transaction: Pickup Location."
	if batch.Results[0].Error != want {
		t.Errorf("Error = %q\nwant  %q", batch.Results[0].Error, want)
	}
}

func TestRunClientErrorContinues(t *testing.T) {
	records := make([]types.CitationRecord, 5)
	for i := range records {
		records[i] = csvRecord("journalArticle", fmt.Sprintf("Title %d", i+1), "A")
	}
	sub := &stubSubmitter{fail: map[int]error{
		3: &illiad.ClientError{Status: 400, Message: "bad payload"},
	}}

	batch, err := Run(context.Background(), citation.Default(), types.EncodingCSV, records, runConfig(), sub, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sub.calls != 5 {
		t.Errorf("Submit called %d times, want 5", sub.calls)
	}
	if batch.Submitted != 4 || batch.Rejected != 1 {
		t.Fatalf("Submitted = %d, Rejected = %d", batch.Submitted, batch.Rejected)
	}
	if len(batch.Results) != 5 {
		t.Fatalf("len(Results) = %d", len(batch.Results))
	}
	if batch.Results[2].Outcome != types.OutcomeRejected {
		t.Errorf("entry 3 outcome = %q", batch.Results[2].Outcome)
	}
	if batch.Results[3].Outcome != types.OutcomeSubmitted {
		t.Errorf("entry 4 outcome = %q", batch.Results[3].Outcome)
	}
	if !batch.HasFailures() {
		t.Error("HasFailures() = false")
	}
}

func TestRunServerErrorContinues(t *testing.T) {
	records := []types.CitationRecord{
		csvRecord("journalArticle", "First", "A"),
		csvRecord("journalArticle", "Second", "B"),
	}
	sub := &stubSubmitter{fail: map[int]error{
		1: &illiad.ServerError{Status: 503, Message: "maintenance"},
	}}

	batch, err := Run(context.Background(), citation.Default(), types.EncodingCSV, records, runConfig(), sub, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if batch.Submitted != 1 || batch.Rejected != 1 {
		t.Fatalf("Submitted = %d, Rejected = %d", batch.Submitted, batch.Rejected)
	}
}

func TestRunInvalidKeyAborts(t *testing.T) {
	records := []types.CitationRecord{
		csvRecord("journalArticle", "First", "A"),
		csvRecord("journalArticle", "Second", "B"),
		csvRecord("journalArticle", "Third", "C"),
	}
	sub := &stubSubmitter{fail: map[int]error{
		2: illiad.ErrInvalidAPIKey,
	}}

	batch, err := Run(context.Background(), citation.Default(), types.EncodingCSV, records, runConfig(), sub, io.Discard)
	if err != illiad.ErrInvalidAPIKey {
		t.Fatalf("err = %v, want ErrInvalidAPIKey", err)
	}
	if sub.calls != 2 {
		t.Errorf("Submit called %d times, want 2", sub.calls)
	}
	// The partial batch includes the entry that hit the fatal error.
	if len(batch.Results) != 2 {
		t.Errorf("len(Results) = %d, want 2", len(batch.Results))
	}
}

func TestRunTestMode(t *testing.T) {
	records := []types.CitationRecord{csvRecord("journalArticle", "Recorded Only", "A")}
	run := runConfig()
	run.TestMode = true
	sub := &stubSubmitter{}

	batch, err := Run(context.Background(), citation.Default(), types.EncodingCSV, records, run, sub, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sub.calls != 0 {
		t.Errorf("Submit called %d times, want 0", sub.calls)
	}
	if batch.Recorded != 1 || batch.Submitted != 0 {
		t.Fatalf("Recorded = %d, Submitted = %d", batch.Recorded, batch.Submitted)
	}
	r := batch.Results[0]
	if r.TransactionNumber != types.PlaceholderTransactionNumber {
		t.Errorf("TransactionNumber = %q, want %q", r.TransactionNumber, types.PlaceholderTransactionNumber)
	}
	if r.Error != types.NoErrors {
		t.Errorf("Error = %q", r.Error)
	}
	if r.Outcome != types.OutcomeRecorded {
		t.Errorf("Outcome = %q", r.Outcome)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []types.CitationRecord{csvRecord("journalArticle", "Never", "A")}
	_, err := Run(ctx, citation.Default(), types.EncodingCSV, records, runConfig(), &stubSubmitter{}, io.Discard)
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunMessageLog(t *testing.T) {
	records := []types.CitationRecord{csvRecord("journalArticle", "Logged", "A")}
	run := runConfig()
	run.DevMode = true

	batch, err := Run(context.Background(), citation.Default(), types.EncodingCSV, records, run, &stubSubmitter{}, io.Discard)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(batch.Messages) != 2 {
		t.Fatalf("len(Messages) = %d: %v", len(batch.Messages), batch.Messages)
	}
	if batch.Messages[0] != "Running in developer mode. Transactions will not be submitted." {
		t.Errorf("Messages[0] = %q", batch.Messages[0])
	}
}
