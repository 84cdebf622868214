// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared across pipeline stages.
package types

import "strings"

// Encoding identifies the input file format a citation was parsed from.
// The encoding decides which field vocabulary a CitationRecord uses:
// CSV records carry export-tool column names ("Title", "Publication Year"),
// RIS records carry normalized tag keys ("primary_title", "year").
type Encoding string

const (
	EncodingCSV Encoding = "csv"
	EncodingRIS Encoding = "ris"
)

// Archetype is one of the five canonical transaction kinds. The values are
// the canonical template tags used by the field-mapping tables.
type Archetype string

const (
	JournalArticle  Archetype = "JOUR"
	BookChapter     Archetype = "CHAP"
	Book            Archetype = "BOOK"
	Thesis          Archetype = "THES"
	ConferencePaper Archetype = "CONF"
)

// Valid reports whether a is one of the five canonical archetypes.
func (a Archetype) Valid() bool {
	switch a {
	case JournalArticle, BookChapter, Book, Thesis, ConferencePaper:
		return true
	}
	return false
}

// RequestKind is the destination-system request enumeration. Article-kind
// requests are fulfilled as document deliveries; Loan-kind requests are
// physical loans and need a pickup location.
type RequestKind string

const (
	RequestArticle RequestKind = "Article"
	RequestLoan    RequestKind = "Loan"
)

// CitationRecord is one parsed bibliographic entry. Fields holds scalar
// values keyed by the encoding's vocabulary; Authors holds the author list
// for RIS records (CSV rows carry a single "Author" column in Fields).
// Unknown keys are preserved but unused downstream.
type CitationRecord struct {
	// Fields maps field name to value. No key is guaranteed present.
	Fields map[string]string

	// Authors lists authors in insertion order. Only populated for RIS
	// records; empty for CSV rows.
	Authors []string

	// RawType is the source-specific type label ("journalArticle", "JOUR").
	RawType string
}

// Get returns the value for key and whether the field is present.
// A present-but-empty field is distinct from an absent one.
func (r CitationRecord) Get(key string) (string, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// Value returns the value for key, or the empty string when absent.
func (r CitationRecord) Value(key string) string {
	return r.Fields[key]
}

// AuthorDisplay returns the record's authors as a single display string:
// the joined author list for RIS records, the Author column for CSV rows.
func (r CitationRecord) AuthorDisplay() string {
	if len(r.Authors) > 0 {
		return strings.Join(r.Authors, ", ")
	}
	return r.Fields["Author"]
}
