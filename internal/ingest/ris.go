// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/libapps/bulkill/pkg/types"
)

// tagKeys maps RIS tags to the canonical field names the transaction
// templates use. The entries for AU/A1, DO/DOI, T1/TI, T2/JF and PY/Y1
// fold tag synonyms onto one key: different export tools emit the same
// data under different tags, and the fold absorbs that variance before
// any downstream code sees the record.
var tagKeys = map[string]string{
	"TY": "type_of_reference",
	"AU": "authors",
	"A1": "authors",
	"A2": "secondary_authors",
	"A3": "tertiary_authors",
	"AB": "abstract",
	"CY": "place_published",
	"DA": "date",
	"DO": "doi",
	"DOI": "doi",
	"EP": "end_page",
	"ET": "edition",
	"IS": "number",
	"JF": "secondary_title",
	"KW": "keywords",
	"LA": "language",
	"N1": "notes",
	"PB": "publisher",
	"PY": "year",
	"SN": "issn",
	"SP": "start_page",
	"ST": "short_title",
	"T1": "primary_title",
	"T2": "secondary_title",
	"T3": "tertiary_title",
	"TI": "primary_title",
	"UR": "url",
	"VL": "volume",
	"Y1": "year",
	"Y2": "access_date",
}

// tagLine matches one RIS tag line: tag, two spaces, hyphen, optional
// space, value. Tags are two characters, except the nonstandard DOI tag
// some export tools emit.
var tagLine = regexp.MustCompile(`^([A-Z][A-Z0-9]{1,2})  - ?(.*)$`)

// endTag terminates a reference.
const endTag = "ER"

// ParseError reports malformed RIS syntax with the offending line number.
// There is no reliable per-entry recovery boundary inside a corrupt tag
// stream, so parse errors abort the whole batch.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("RIS parse error at line %d: %s", e.Line, e.Msg)
}

// ParseRIS parses a tag-delimited bibliography into one CitationRecord per
// reference, in file order. Repeated author tags accumulate in order;
// other repeated tags keep the last value. Lines that carry no tag inside
// a reference are continuations of the previous value. Unknown two-letter
// tags are preserved under their lowercase tag name. A reference left
// unterminated at end of input is tolerated; an unterminated reference
// followed by another TY is an error, never a merge.
func ParseRIS(r io.Reader) ([]types.CitationRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		records []types.CitationRecord
		current *types.CitationRecord
		lastKey string
		lineNo  int
	)

	flush := func() {
		if current != nil {
			records = append(records, *current)
			current = nil
			lastKey = ""
		}
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		m := tagLine.FindStringSubmatch(line)
		if m == nil {
			// Untagged line: continuation of the previous value.
			if current == nil || lastKey == "" {
				return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("unexpected line %q outside a reference", line)}
			}
			appendContinuation(current, lastKey, strings.TrimSpace(line))
			continue
		}
		tag, value := m[1], strings.TrimSpace(m[2])

		if tag == endTag {
			if current == nil {
				return nil, &ParseError{Line: lineNo, Msg: "end-of-reference tag outside a reference"}
			}
			flush()
			continue
		}

		if current == nil {
			if tag != "TY" {
				return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("tag %s before reference start (TY)", tag)}
			}
			current = &types.CitationRecord{Fields: map[string]string{}}
		} else if tag == "TY" {
			// A new reference opened before the previous one was closed.
			// Merging them would silently lose an entry, so fail instead.
			return nil, &ParseError{Line: lineNo, Msg: "reference not terminated (ER) before new reference start (TY)"}
		}

		key, ok := tagKeys[tag]
		if !ok {
			key = strings.ToLower(tag)
		}

		switch {
		case tag == "TY":
			current.RawType = value
			current.Fields[key] = value
		case key == "authors":
			current.Authors = append(current.Authors, value)
		case key == "keywords" && current.Fields[key] != "":
			current.Fields[key] += "; " + value
		default:
			current.Fields[key] = value
		}
		lastKey = key
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading RIS input: %w", err)
	}

	// A trailing reference without ER is tolerated.
	flush()

	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	return records, nil
}

// appendContinuation extends the most recently written value with a
// wrapped line.
func appendContinuation(rec *types.CitationRecord, key, text string) {
	if key == "authors" && len(rec.Authors) > 0 {
		rec.Authors[len(rec.Authors)-1] += " " + text
		return
	}
	if rec.Fields[key] == "" {
		rec.Fields[key] = text
		return
	}
	rec.Fields[key] += " " + text
}
