// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"sort"
	"strings"
)

// TransactionPayload is the destination-system request body built from one
// citation record. Every field declared by the archetype's mapping table is
// present, possibly with an empty value. Payloads are built once and never
// mutated afterward.
type TransactionPayload map[string]string

// String renders the payload as compact JSON with sorted keys, for the
// results file and status messages.
func (p TransactionPayload) String() string {
	if len(p) == 0 {
		return ""
	}
	// json.Marshal sorts map keys, which keeps results rows deterministic.
	b, err := json.Marshal(map[string]string(p))
	if err != nil {
		// A map[string]string cannot fail to marshal; fall back anyway.
		keys := make([]string, 0, len(p))
		for k := range p {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k + "=" + p[k])
		}
		return sb.String()
	}
	return string(b)
}

// EntryOutcome is the terminal state of one processed entry.
type EntryOutcome string

const (
	// OutcomeSubmitted means the transaction was accepted by the remote
	// service and a transaction number was returned.
	OutcomeSubmitted EntryOutcome = "submitted"

	// OutcomeRecorded means the entry validated cleanly but the run was in
	// test mode, so no network call was made.
	OutcomeRecorded EntryOutcome = "recorded"

	// OutcomeRejected means classification, validation, or submission
	// failed for this entry. The batch continues regardless.
	OutcomeRejected EntryOutcome = "rejected"
)

// NoErrors is the Error value of a ProcessingResult whose entry succeeded.
const NoErrors = "No errors"

// PlaceholderTransactionNumber marks results recorded in test mode.
const PlaceholderTransactionNumber = "n/a"

// ProcessingResult is one results-file row. Exactly one is produced per
// input entry, in input order, whatever the entry's outcome.
type ProcessingResult struct {
	// Entry is the 1-based ordinal of the entry within the input file.
	Entry int

	// Title and Author identify the citation in the results file.
	Title  string
	Author string

	// Error is NoErrors on success, otherwise a human-readable failure
	// description.
	Error string

	// Payload is the built transaction, or nil when classification failed.
	Payload TransactionPayload

	// TransactionNumber is the identifier returned by the remote service,
	// PlaceholderTransactionNumber in test mode, or empty on rejection.
	TransactionNumber string

	// Outcome is the entry's terminal state.
	Outcome EntryOutcome
}
