// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"errors"
	"strings"
	"testing"
)

const sampleRIS = `TY  - JOUR
AU  - Smith, Jane
AU  - Jones, Bob
TI  - A Study of Things
JF  - Journal of Thing Studies
PY  - 2020
VL  - 14
IS  - 2
SP  - 101
EP  - 115
DO  - 10.1000/thing.2020
SN  - 1234-5678
ER  -
TY  - BOOK
A1  - Brown, Pat
T1  - The Big Book
PB  - Example Press
Y1  - 1999
ER  -
`

func TestParseRIS(t *testing.T) {
	records, err := ParseRIS(strings.NewReader(sampleRIS))
	if err != nil {
		t.Fatalf("ParseRIS: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	jour := records[0]
	if jour.RawType != "JOUR" {
		t.Errorf("RawType = %q, want JOUR", jour.RawType)
	}
	if got := jour.Value("primary_title"); got != "A Study of Things" {
		t.Errorf("primary_title = %q", got)
	}
	if got := jour.Value("secondary_title"); got != "Journal of Thing Studies" {
		t.Errorf("secondary_title = %q", got)
	}
	if got := jour.Value("doi"); got != "10.1000/thing.2020" {
		t.Errorf("doi = %q", got)
	}
	if len(jour.Authors) != 2 || jour.Authors[0] != "Smith, Jane" || jour.Authors[1] != "Jones, Bob" {
		t.Errorf("Authors = %v", jour.Authors)
	}

	book := records[1]
	if book.RawType != "BOOK" {
		t.Errorf("RawType = %q, want BOOK", book.RawType)
	}
	if got := book.Value("year"); got != "1999" {
		t.Errorf("year = %q", got)
	}
}

// Tag synonyms normalize to the same field: an entry tagged A1/T1/Y1
// parses identically to one tagged AU/TI/PY.
func TestParseRISTagSynonyms(t *testing.T) {
	variantA := "TY  - JOUR\nAU  - Smith, Jane\nTI  - Title\nPY  - 2020\nDOI  - 10.1/x\nT2  - Venue\nER  -\n"
	variantB := "TY  - JOUR\nA1  - Smith, Jane\nT1  - Title\nY1  - 2020\nDO  - 10.1/x\nJF  - Venue\nER  -\n"

	a, err := ParseRIS(strings.NewReader(variantA))
	if err != nil {
		t.Fatalf("ParseRIS(variantA): %v", err)
	}
	b, err := ParseRIS(strings.NewReader(variantB))
	if err != nil {
		t.Fatalf("ParseRIS(variantB): %v", err)
	}

	for _, key := range []string{"primary_title", "secondary_title", "year", "doi"} {
		if a[0].Value(key) != b[0].Value(key) {
			t.Errorf("%s: %q != %q", key, a[0].Value(key), b[0].Value(key))
		}
	}
	if len(a[0].Authors) != 1 || len(b[0].Authors) != 1 || a[0].Authors[0] != b[0].Authors[0] {
		t.Errorf("authors differ: %v vs %v", a[0].Authors, b[0].Authors)
	}
}

func TestParseRISContinuationLines(t *testing.T) {
	in := "TY  - JOUR\nTI  - A Title That\nWraps Onto Two Lines\nER  -\n"
	records, err := ParseRIS(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseRIS: %v", err)
	}
	if got := records[0].Value("primary_title"); got != "A Title That Wraps Onto Two Lines" {
		t.Errorf("primary_title = %q", got)
	}
}

func TestParseRISUnknownTagPreserved(t *testing.T) {
	in := "TY  - JOUR\nC1  - custom value\nER  -\n"
	records, err := ParseRIS(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseRIS: %v", err)
	}
	if got := records[0].Value("c1"); got != "custom value" {
		t.Errorf("c1 = %q", got)
	}
}

func TestParseRISRepeatedKeywords(t *testing.T) {
	in := "TY  - JOUR\nKW  - one\nKW  - two\nER  -\n"
	records, err := ParseRIS(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseRIS: %v", err)
	}
	if got := records[0].Value("keywords"); got != "one; two" {
		t.Errorf("keywords = %q", got)
	}
}

func TestParseRISMissingTrailingER(t *testing.T) {
	in := "TY  - BOOK\nT1  - Unterminated\n"
	records, err := ParseRIS(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseRIS: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("len(records) = %d, want 1", len(records))
	}
}

func TestParseRISTagBeforeStart(t *testing.T) {
	in := "AU  - Smith, Jane\nTY  - JOUR\nER  -\n"
	_, err := ParseRIS(strings.NewReader(in))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if parseErr.Line != 1 {
		t.Errorf("Line = %d, want 1", parseErr.Line)
	}
}

// A TY inside an open reference must not merge two references into one
// record; the batch fails rather than silently losing an entry.
func TestParseRISUnterminatedBeforeNewReference(t *testing.T) {
	in := "TY  - JOUR\nTI  - First\nAU  - One\nTY  - BOOK\nTI  - Second\nAU  - Two\nER  -\n"
	records, err := ParseRIS(strings.NewReader(in))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if parseErr.Line != 4 {
		t.Errorf("Line = %d, want 4", parseErr.Line)
	}
	if records != nil {
		t.Errorf("records = %v, want nil", records)
	}
}

func TestParseRISStrayER(t *testing.T) {
	in := "ER  -\n"
	_, err := ParseRIS(strings.NewReader(in))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
}
