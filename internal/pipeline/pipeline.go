// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives citation entries through classification,
// templating, validation and submission, one entry at a time in input
// order. A failed entry is recorded and the loop moves on; only global
// conditions (a bad credential, a cancelled context) abort the batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/libapps/bulkill/internal/citation"
	"github.com/libapps/bulkill/internal/illiad"
	"github.com/libapps/bulkill/internal/transaction"
	"github.com/libapps/bulkill/pkg/types"
)

// errUnsupportedType is the per-entry error for a citation type absent
// from the type-mapping table.
const errUnsupportedType = "unsupported citation type"

// Submitter is the one outbound operation the loop needs. Satisfied by
// *illiad.Client; tests substitute a stub.
type Submitter interface {
	Submit(ctx context.Context, payload types.TransactionPayload) (string, error)
}

// BatchResult is the outcome of one processed batch: one ProcessingResult
// per input entry in input order, the ordered human-readable message log,
// and per-outcome counters.
type BatchResult struct {
	Results   []types.ProcessingResult
	Messages  []string
	Submitted int
	Recorded  int
	Rejected  int
}

// HasFailures reports whether any entry ended rejected. A batch that ran
// to completion with failures is a distinct condition from total success
// and from a fatal abort; callers map it to its own exit code.
func (r *BatchResult) HasFailures() bool {
	return r.Rejected > 0
}

func (r *BatchResult) addMessage(format string, args ...any) {
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

// Run processes every record sequentially. Entries are strictly ordered:
// the destination service enforces per-account rate limits and the
// results file must mirror input order, so there is no concurrent
// submission. Per-entry failures never abort the batch; Run returns an
// error only for batch-fatal conditions, alongside the results collected
// so far.
func Run(ctx context.Context, table citation.TypeMapping, enc types.Encoding, records []types.CitationRecord, run types.RunConfig, submitter Submitter, w io.Writer) (*BatchResult, error) {
	batch := &BatchResult{}

	if run.DevMode {
		batch.addMessage("Running in developer mode. Transactions will not be submitted.")
	} else if run.TestMode {
		batch.addMessage("Running in test mode. Transactions will be included in the results file but not submitted.")
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		entry := i + 1
		result := types.ProcessingResult{Entry: entry}

		cl, ok := table.Classify(rec.RawType)
		if !ok {
			result.Title = titleOf(rec, enc)
			result.Author = rec.AuthorDisplay()
			reject(batch, &result, errUnsupportedType)
			fmt.Fprintf(w, "entry %d: %s (%q)\n", entry, errUnsupportedType, rec.RawType)
			continue
		}

		payload, title, author := transaction.Build(cl, rec, enc, run.Requester, run.Pickup)
		result.Title = title
		result.Author = author
		result.Payload = payload

		if msg := transaction.Validate(payload, run.Strict); msg != "" {
			reject(batch, &result, msg)
			fmt.Fprintf(w, "entry %d: %s\n", entry, msg)
			continue
		}

		if run.Testing() {
			result.Error = types.NoErrors
			result.TransactionNumber = types.PlaceholderTransactionNumber
			result.Outcome = types.OutcomeRecorded
			batch.Recorded++
			batch.Results = append(batch.Results, result)
			batch.addMessage("Entry %d: Created the following transaction data: %s", entry, payload)
			continue
		}

		number, err := submitter.Submit(ctx, payload)
		if err != nil {
			if fatal := submitFailure(batch, &result, err); fatal != nil {
				batch.Results = append(batch.Results, result)
				return batch, fatal
			}
			fmt.Fprintf(w, "entry %d: submission failed: %v\n", entry, err)
			continue
		}

		result.Error = types.NoErrors
		result.TransactionNumber = number
		result.Outcome = types.OutcomeSubmitted
		batch.Submitted++
		batch.Results = append(batch.Results, result)
		batch.addMessage("Entry %d: Created transaction number %s", entry, number)
		fmt.Fprintf(w, "entry %d: transaction %s\n", entry, number)
	}

	return batch, nil
}

// reject records a per-entry failure and keeps the batch going.
func reject(batch *BatchResult, result *types.ProcessingResult, msg string) {
	result.Error = msg
	result.Outcome = types.OutcomeRejected
	batch.Rejected++
	batch.Results = append(batch.Results, *result)
	batch.addMessage("Entry %d: %s", result.Entry, msg)
}

// submitFailure sorts a submission error into the per-entry or
// batch-fatal bucket. Client rejections and service-side errors are
// recorded on the entry; an invalid credential or cancelled context
// returns non-nil and aborts the batch.
func submitFailure(batch *BatchResult, result *types.ProcessingResult, err error) error {
	var clientErr *illiad.ClientError
	var serverErr *illiad.ServerError
	switch {
	case errors.As(err, &clientErr):
		reject(batch, result, fmt.Sprintf("Error on entry %d: %s", result.Entry, clientErr))
	case errors.As(err, &serverErr):
		// Service-side failure: recorded per entry but called out so an
		// operator can tell an outage from bad data.
		result.Error = serverErr.Error()
		result.Outcome = types.OutcomeRejected
		batch.Rejected++
		batch.Results = append(batch.Results, *result)
		batch.addMessage("Entry %d: loan service unavailable: %s", result.Entry, serverErr)
	case errors.Is(err, illiad.ErrInvalidAPIKey),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		result.Error = err.Error()
		result.Outcome = types.OutcomeRejected
		batch.Rejected++
		batch.addMessage("Entry %d: %s", result.Entry, err)
		return err
	default:
		reject(batch, result, fmt.Sprintf("Error on entry %d: %v", result.Entry, err))
	}
	return nil
}

// titleOf extracts a display title for entries rejected before templating.
func titleOf(rec types.CitationRecord, enc types.Encoding) string {
	if enc == types.EncodingRIS {
		return rec.Value("primary_title")
	}
	return rec.Value("Title")
}
