// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest reads citation input files. It detects the file format
// (tabular CSV export or tag-based RIS bibliography), parses each entry
// into a CitationRecord, and normalizes RIS tag synonyms onto canonical
// field names so downstream stages see a single vocabulary per encoding.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/libapps/bulkill/pkg/types"
)

// risStartTag is the reference-start pattern that identifies an RIS file:
// two-character tag, two spaces, hyphen.
const risStartTag = "TY  -"

// itemTypeColumn is the header column a CSV export must carry.
const itemTypeColumn = "Item Type"

var (
	// ErrEmptyFile reports a file with no content. Distinct from an
	// unrecognized format so the operator knows which file was wrong and how.
	ErrEmptyFile = errors.New("file is empty")

	// ErrUnknownFormat reports a first line that is neither RIS nor CSV.
	ErrUnknownFormat = errors.New("not a recognized CSV or RIS file")

	// ErrMissingTypeColumn reports a CSV file without the required
	// "Item Type" header column.
	ErrMissingTypeColumn = errors.New(`CSV file must contain a column called "Item Type"`)
)

// DetectFormat identifies the encoding of an input stream by its first
// non-blank line: the RIS start tag wins, otherwise a comma means CSV
// (whose header is then re-validated), otherwise the format is unknown.
// The reader is rewound to the start before returning so the caller can
// parse from the beginning.
func DetectFormat(r io.ReadSeeker) (types.Encoding, error) {
	scanner := bufio.NewScanner(r)
	var first string
	for scanner.Scan() {
		first = strings.TrimSpace(scanner.Text())
		if first != "" {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	if first == "" {
		return "", ErrEmptyFile
	}

	var enc types.Encoding
	switch {
	case strings.Contains(first, risStartTag):
		enc = types.EncodingRIS
	case strings.Contains(first, ","):
		enc = types.EncodingCSV
	default:
		return "", ErrUnknownFormat
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewinding input: %w", err)
	}

	if enc == types.EncodingCSV {
		if err := checkCSVHeader(r); err != nil {
			return "", err
		}
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return "", fmt.Errorf("rewinding input: %w", err)
		}
	}
	return enc, nil
}

// DetectFile opens path and detects its encoding.
func DetectFile(path string) (types.Encoding, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	enc, err := DetectFormat(f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return enc, nil
}

// ReadFile detects the encoding of path and parses every entry.
func ReadFile(path string) (types.Encoding, []types.CitationRecord, error) {
	enc, err := DetectFile(path)
	if err != nil {
		return "", nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []types.CitationRecord
	switch enc {
	case types.EncodingRIS:
		records, err = ParseRIS(f)
	case types.EncodingCSV:
		records, err = ReadCSV(f)
	}
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	return enc, records, nil
}
