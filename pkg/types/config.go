// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ServiceConfig holds settings for the remote loan-request service.
type ServiceConfig struct {
	// BaseURL is the root of the service's REST API, without a trailing
	// slash (e.g. "https://ill.example.edu/ILLiadWebPlatform").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey authenticates every request. Required.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "bulkill/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// UserTimeout bounds the requester-verification call (default 10s).
	UserTimeout time.Duration `json:"user_timeout" yaml:"user_timeout"`

	// SubmitTimeout bounds a transaction submission (default 15s). Longer
	// than UserTimeout because the remote side performs a write.
	SubmitTimeout time.Duration `json:"submit_timeout" yaml:"submit_timeout"`

	// SubmitRate caps submissions per second (default 1). The remote
	// service enforces per-account limits; staying under them keeps runs
	// from tripping 429 responses.
	SubmitRate float64 `json:"submit_rate" yaml:"submit_rate"`
}

// RunConfig holds per-batch settings supplied on the command line.
type RunConfig struct {
	// Requester is the email address of the person receiving the
	// materials. Must already have a cleared account in the remote system.
	Requester string `json:"requester" yaml:"requester"`

	// Pickup is the library where physical materials are picked up.
	// Required for loan-kind requests only.
	Pickup string `json:"pickup" yaml:"pickup"`

	// PickupLocations enumerates the valid Pickup values. Required
	// configuration; an empty list is a fatal startup error.
	PickupLocations []string `json:"pickup_locations" yaml:"pickup_locations"`

	// TestMode validates and records entries without submitting them.
	TestMode bool `json:"test_mode" yaml:"test_mode"`

	// DevMode implies TestMode and gives the results file a deterministic
	// name so fixture comparisons work.
	DevMode bool `json:"dev_mode" yaml:"dev_mode"`

	// Strict additionally requires the title field of each request kind
	// during validation, catching empty citations before submission.
	Strict bool `json:"strict" yaml:"strict"`

	// ResultsDir is where the per-batch results CSV is written.
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// HistoryDir, when set, enables the SQLite submission-history store.
	HistoryDir string `json:"history_dir,omitempty" yaml:"history_dir,omitempty"`
}

// Testing reports whether submissions are suppressed for this run.
func (c RunConfig) Testing() bool {
	return c.TestMode || c.DevMode
}
