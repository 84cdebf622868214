// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transaction builds and validates loan-request payloads. Each
// archetype carries a fixed field-mapping table per encoding; building a
// payload copies whichever source fields are present and falls back to
// empty values, so every declared destination field is always populated.
package transaction

import (
	"strings"

	"github.com/libapps/bulkill/internal/citation"
	"github.com/libapps/bulkill/pkg/types"
)

// processBorrowing is the fixed process kind for every request this tool
// creates.
const processBorrowing = "Borrowing"

// Build produces a transaction payload for a classified citation, plus the
// title and author used for results reporting. The archetype selects the
// field-mapping table; the encoding selects the source vocabulary. Build
// cannot fail per entry: a recognized archetype always yields a complete
// payload, with absent source fields mapped to empty strings.
func Build(cl citation.Classification, rec types.CitationRecord, enc types.Encoding, requester, pickup string) (types.TransactionPayload, string, string) {
	p := types.TransactionPayload{
		"ExternalUserId": requester,
		"RequestType":    string(cl.RequestKind),
		"ProcessType":    processBorrowing,
		"DocumentType":   cl.DocumentKind,
	}

	var title, author string
	switch enc {
	case types.EncodingRIS:
		title = rec.Value("primary_title")
		author = strings.Join(rec.Authors, ", ")
		fillRIS(p, cl.Archetype, rec, pickup)
	default:
		title = rec.Value("Title")
		author = rec.Value("Author")
		fillCSV(p, cl.Archetype, rec, pickup)
	}
	return p, title, author
}

// fillCSV populates archetype-specific fields from export-tool column
// names. The switch is exhaustive over the five archetypes.
func fillCSV(p types.TransactionPayload, a types.Archetype, rec types.CitationRecord, pickup string) {
	switch a {
	case types.JournalArticle:
		p["PhotoJournalTitle"] = rec.Value("Publication Title")
		p["PhotoArticleTitle"] = rec.Value("Title")
		p["PhotoArticleAuthor"] = rec.Value("Author")
		p["PhotoJournalVolume"] = rec.Value("Volume")
		p["PhotoJournalIssue"] = rec.Value("Issue")
		p["PhotoJournalYear"] = rec.Value("Publication Year")
		p["PhotoJournalInclusivePages"] = rec.Value("Pages")
		p["DOI"] = rec.Value("DOI")
		p["ISSN"] = rec.Value("ISSN")
	case types.BookChapter:
		p["PhotoJournalTitle"] = rec.Value("Publication Title")
		p["PhotoArticleTitle"] = rec.Value("Title")
		p["PhotoArticleAuthor"] = rec.Value("Author")
		p["PhotoJournalVolume"] = rec.Value("Volume")
		p["PhotoJournalIssue"] = rec.Value("Issue")
		p["PhotoJournalYear"] = rec.Value("Publication Year")
		p["PhotoJournalInclusivePages"] = rec.Value("Pages")
		p["DOI"] = rec.Value("DOI")
		p["ISSN"] = rec.Value("ISBN")
	case types.ConferencePaper:
		p["PhotoJournalTitle"] = rec.Value("Conference Name")
		p["PhotoArticleTitle"] = rec.Value("Title")
		p["PhotoArticleAuthor"] = rec.Value("Author")
		p["PhotoJournalVolume"] = rec.Value("Volume")
		p["PhotoJournalIssue"] = rec.Value("Issue")
		p["PhotoJournalYear"] = rec.Value("Publication Year")
		p["PhotoJournalInclusivePages"] = rec.Value("Pages")
		p["DOI"] = rec.Value("DOI")
		p["ISSN"] = rec.Value("ISSN")
	case types.Book, types.Thesis:
		p["ItemInfo4"] = pickup
		p["LoanTitle"] = rec.Value("Title")
		p["LoanAuthor"] = rec.Value("Author")
		p["LoanDate"] = rec.Value("Publication Year")
		p["LoanPublisher"] = rec.Value("Publisher")
		p["ISSN"] = rec.Value("ISBN")
	}
}

// fillRIS populates archetype-specific fields from normalized RIS keys.
func fillRIS(p types.TransactionPayload, a types.Archetype, rec types.CitationRecord, pickup string) {
	authors := strings.Join(rec.Authors, ", ")
	switch a {
	case types.JournalArticle, types.BookChapter, types.ConferencePaper:
		p["PhotoJournalTitle"] = rec.Value("secondary_title")
		p["PhotoArticleTitle"] = rec.Value("primary_title")
		p["PhotoArticleAuthor"] = authors
		p["PhotoJournalVolume"] = rec.Value("volume")
		p["PhotoJournalIssue"] = rec.Value("number")
		p["PhotoJournalYear"] = rec.Value("year")
		p["PhotoJournalInclusivePages"] = pageRange(rec)
		p["PhotoItemPublisher"] = rec.Value("publisher")
		p["PhotoItemPlace"] = rec.Value("place_published")
		p["DOI"] = rec.Value("doi")
		p["ISSN"] = rec.Value("issn")
	case types.Book, types.Thesis:
		p["ItemInfo4"] = pickup
		p["LoanTitle"] = rec.Value("primary_title")
		p["LoanAuthor"] = authors
		p["LoanDate"] = rec.Value("year")
		p["LoanPublisher"] = rec.Value("publisher")
		p["ISSN"] = rec.Value("issn")
	}
}

// pageRange joins the start and end page into an inclusive range. Both
// absent yields an empty string, not a bare hyphen.
func pageRange(rec types.CitationRecord) string {
	start := rec.Value("start_page")
	end := rec.Value("end_page")
	if start == "" && end == "" {
		return ""
	}
	return start + "-" + end
}
