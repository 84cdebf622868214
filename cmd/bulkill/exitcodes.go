package main

import (
	"errors"
	"io/fs"

	"github.com/libapps/bulkill/internal/illiad"
	"github.com/libapps/bulkill/internal/ingest"
)

// Exit codes indicate failure categories for scripting integration.
const (
	ExitSuccess     = 0 // No per-entry errors
	ExitError       = 1 // Unexpected error
	ExitUserError   = 2 // Requester account not found or not cleared
	ExitFileError   = 3 // Input file missing, empty, or malformed
	ExitAPIError    = 4 // Loan service unavailable or rejecting the batch
	ExitEntryErrors = 5 // Ran to completion, but entries need attention
	ExitConfigError = 6 // Configuration missing or invalid
)

// configError wraps fatal configuration problems so exitCodeFor can map
// them to ExitConfigError.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// entryErrors signals a batch that completed with per-entry failures.
type entryErrors struct{ count int }

func (e *entryErrors) Error() string {
	if e.count == 1 {
		return "completed with 1 entry error; see the results file"
	}
	return "completed with entry errors; see the results file"
}

// exitCodeFor maps an error unwound to the top level onto its exit code.
func exitCodeFor(err error) int {
	var userErr *illiad.UserError
	var serverErr *illiad.ServerError
	var cfgErr *configError
	var perEntry *entryErrors
	var parseErr *ingest.ParseError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.As(err, &userErr):
		return ExitUserError
	case errors.Is(err, illiad.ErrInvalidAPIKey), errors.As(err, &serverErr):
		return ExitAPIError
	case errors.Is(err, ingest.ErrEmptyFile),
		errors.Is(err, ingest.ErrUnknownFormat),
		errors.Is(err, ingest.ErrMissingTypeColumn),
		errors.Is(err, fs.ErrNotExist),
		errors.As(err, &parseErr):
		return ExitFileError
	case errors.As(err, &perEntry):
		return ExitEntryErrors
	default:
		return ExitError
	}
}
