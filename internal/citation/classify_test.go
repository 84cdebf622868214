// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libapps/bulkill/pkg/types"
)

func TestClassifyDefaultTable(t *testing.T) {
	table := Default()

	tests := []struct {
		raw       string
		archetype types.Archetype
		kind      types.RequestKind
		document  string
	}{
		{"JOUR", types.JournalArticle, types.RequestArticle, "Article"},
		{"EJOUR", types.JournalArticle, types.RequestArticle, "Article"},
		{"journalArticle", types.JournalArticle, types.RequestArticle, "Article"},
		{"magazineArticle", types.JournalArticle, types.RequestArticle, "Article"},
		{"CHAP", types.BookChapter, types.RequestArticle, "Book Chapter"},
		{"bookSection", types.BookChapter, types.RequestArticle, "Book Chapter"},
		{"BOOK", types.Book, types.RequestLoan, "Book"},
		{"book", types.Book, types.RequestLoan, "Book"},
		{"THES", types.Thesis, types.RequestLoan, "Thesis"},
		{"thesis", types.Thesis, types.RequestLoan, "Thesis"},
		{"CONF", types.ConferencePaper, types.RequestArticle, "Article"},
		{"CPAPER", types.ConferencePaper, types.RequestArticle, "Article"},
		{"conferencePaper", types.ConferencePaper, types.RequestArticle, "Article"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			cl, ok := table.Classify(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.archetype, cl.Archetype)
			assert.Equal(t, tt.kind, cl.RequestKind)
			assert.Equal(t, tt.document, cl.DocumentKind)
		})
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	table := Default()

	upper, ok := table.Classify("JOURNALARTICLE")
	require.True(t, ok)
	lower, ok := table.Classify("journalarticle")
	require.True(t, ok)
	assert.Equal(t, upper, lower)
}

func TestClassifyUnknown(t *testing.T) {
	table := Default()

	for _, raw := range []string{"webpage", "podcast", "", "   "} {
		_, ok := table.Classify(raw)
		assert.False(t, ok, "raw=%q", raw)
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	table := TypeMapping{
		{RISTypes: []string{"GEN"}, Archetype: types.Book, RequestKind: types.RequestLoan, DocumentKind: "Book"},
		{RISTypes: []string{"GEN"}, Archetype: types.JournalArticle, RequestKind: types.RequestArticle, DocumentKind: "Article"},
	}
	cl, ok := table.Classify("gen")
	require.True(t, ok)
	assert.Equal(t, types.Book, cl.Archetype)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.yaml")
	doc := `- ris_types: [JOUR]
  source_types: [journalArticle]
  archetype: JOUR
  request_kind: Article
  document_kind: Article
- ris_types: [BOOK]
  archetype: BOOK
  request_kind: Loan
  document_kind: Book
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	table, err := Load(path)
	require.NoError(t, err)
	require.Len(t, table, 2)

	cl, ok := table.Classify("journalArticle")
	require.True(t, ok)
	assert.Equal(t, types.JournalArticle, cl.Archetype)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		doc  string
	}{
		{"empty table", "[]\n"},
		{"unknown archetype", "- ris_types: [JOUR]\n  archetype: ZINE\n  request_kind: Article\n  document_kind: Article\n"},
		{"unknown request kind", "- ris_types: [JOUR]\n  archetype: JOUR\n  request_kind: Borrow\n  document_kind: Article\n"},
		{"missing document kind", "- ris_types: [JOUR]\n  archetype: JOUR\n  request_kind: Article\n"},
		{"no type labels", "- archetype: JOUR\n  request_kind: Article\n  document_kind: Article\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
