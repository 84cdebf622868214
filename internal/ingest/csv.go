// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/libapps/bulkill/pkg/types"
)

// checkCSVHeader reads just the header row and verifies the required
// "Item Type" column is present.
func checkCSVHeader(r io.Reader) error {
	header, err := csv.NewReader(r).Read()
	if err == io.EOF {
		return ErrEmptyFile
	}
	if err != nil {
		return fmt.Errorf("reading CSV header: %w", err)
	}
	if !slices.Contains(trimAll(header), itemTypeColumn) {
		return ErrMissingTypeColumn
	}
	return nil
}

// ReadCSV parses a tabular citation export. The first row is the header;
// every subsequent row becomes one CitationRecord with column name → cell
// value fields. Columns the templates never look at are carried along
// unchanged. A malformed file is a batch-fatal error, not a per-entry one.
func ReadCSV(r io.Reader) ([]types.CitationRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	header = trimAll(header)
	if !slices.Contains(header, itemTypeColumn) {
		return nil, ErrMissingTypeColumn
	}

	var records []types.CitationRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				fields[col] = row[i]
			} else {
				fields[col] = ""
			}
		}
		records = append(records, types.CitationRecord{
			Fields:  fields,
			RawType: fields[itemTypeColumn],
		})
	}
	return records, nil
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	}
	return out
}
