// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation maps source-specific citation type labels onto the
// canonical transaction archetypes and their destination enumerations.
package citation

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/libapps/bulkill/pkg/types"
)

// Classification is the result of recognizing a citation type: the
// canonical archetype plus the two destination-system enumerations the
// template engine and validator need.
type Classification struct {
	Archetype    types.Archetype
	RequestKind  types.RequestKind
	DocumentKind string
}

// Entry associates source-system type labels with one archetype. RISTypes
// holds RIS reference-type codes ("JOUR"), SourceTypes holds export-tool
// labels ("journalArticle"). Lookup against either list is
// case-insensitive.
type Entry struct {
	RISTypes     []string          `yaml:"ris_types"`
	SourceTypes  []string          `yaml:"source_types"`
	Archetype    types.Archetype   `yaml:"archetype"`
	RequestKind  types.RequestKind `yaml:"request_kind"`
	DocumentKind string            `yaml:"document_kind"`
}

// TypeMapping is the ordered type-mapping table. Entries are mutually
// exclusive by construction, but Classify still honors first-match
// semantics so a misconfigured table degrades predictably.
type TypeMapping []Entry

// Default returns the compiled-in type-mapping table, used when no table
// file is configured.
func Default() TypeMapping {
	return TypeMapping{
		{
			RISTypes:     []string{"JOUR", "EJOUR", "MGZN", "NEWS"},
			SourceTypes:  []string{"journalArticle", "magazineArticle", "newspaperArticle", "encyclopediaArticle"},
			Archetype:    types.JournalArticle,
			RequestKind:  types.RequestArticle,
			DocumentKind: "Article",
		},
		{
			RISTypes:     []string{"CHAP"},
			SourceTypes:  []string{"bookSection"},
			Archetype:    types.BookChapter,
			RequestKind:  types.RequestArticle,
			DocumentKind: "Book Chapter",
		},
		{
			RISTypes:     []string{"BOOK"},
			SourceTypes:  []string{"book"},
			Archetype:    types.Book,
			RequestKind:  types.RequestLoan,
			DocumentKind: "Book",
		},
		{
			RISTypes:     []string{"THES"},
			SourceTypes:  []string{"thesis"},
			Archetype:    types.Thesis,
			RequestKind:  types.RequestLoan,
			DocumentKind: "Thesis",
		},
		{
			RISTypes:     []string{"CONF", "CPAPER"},
			SourceTypes:  []string{"conferencePaper"},
			Archetype:    types.ConferencePaper,
			RequestKind:  types.RequestArticle,
			DocumentKind: "Article",
		},
	}
}

// Load reads a type-mapping table from a YAML file and validates it.
// Loaded once at startup; the table is read-only afterward.
func Load(path string) (TypeMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading type mapping %s: %w", path, err)
	}
	var m TypeMapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing type mapping %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("type mapping %s: %w", path, err)
	}
	return m, nil
}

// Validate checks every entry for a canonical archetype, a known request
// kind, and a document kind. An invalid table is a configuration error.
func (m TypeMapping) Validate() error {
	if len(m) == 0 {
		return fmt.Errorf("no entries")
	}
	for i, e := range m {
		if !e.Archetype.Valid() {
			return fmt.Errorf("entry %d: unknown archetype %q", i, e.Archetype)
		}
		if e.RequestKind != types.RequestArticle && e.RequestKind != types.RequestLoan {
			return fmt.Errorf("entry %d: unknown request kind %q", i, e.RequestKind)
		}
		if e.DocumentKind == "" {
			return fmt.Errorf("entry %d: missing document kind", i)
		}
		if len(e.RISTypes) == 0 && len(e.SourceTypes) == 0 {
			return fmt.Errorf("entry %d: no type labels", i)
		}
	}
	return nil
}

// Classify resolves a raw type label to its archetype. The comparison is
// case-insensitive and the first matching entry in table order wins. The
// second return value is false when no entry matches; there is no default
// archetype, so the caller can reject the entry and keep the batch going.
func (m TypeMapping) Classify(raw string) (Classification, bool) {
	label := strings.ToLower(strings.TrimSpace(raw))
	if label == "" {
		return Classification{}, false
	}
	for _, e := range m {
		if matches(label, e.RISTypes) || matches(label, e.SourceTypes) {
			return Classification{
				Archetype:    e.Archetype,
				RequestKind:  e.RequestKind,
				DocumentKind: e.DocumentKind,
			}, true
		}
	}
	return Classification{}, false
}

func matches(label string, candidates []string) bool {
	for _, c := range candidates {
		if label == strings.ToLower(c) {
			return true
		}
	}
	return false
}
