// SPDX-License-Identifier: MPL-2.0

package secrets

import (
	"strings"

	"github.com/charmbracelet/log"
)

const (
	// Scheme is the reference scheme understood by the resolver.
	Scheme = "op://"

	openDelim  = "{{"
	closeDelim = "}}"
)

type (
	// RefSyntax distinguishes how a reference was written.
	RefSyntax int

	// Reference is one secret-reference span found in a value. Spans are
	// ordered and non-overlapping within the owning value.
	Reference struct {
		// Start and End are byte offsets into the scanned value. For
		// delimited references they include the {{ }} markers.
		Start, End int
		// Syntax records whether the span was delimited or bare.
		Syntax RefSyntax
		// Text is the reference handed to the backend, markers excluded.
		Text string
	}
)

const (
	// SyntaxBare is a raw op:// reference terminated by heuristics.
	// Retained for backward compatibility; ambiguous when embedded in
	// URLs or other slash-separated text.
	SyntaxBare RefSyntax = iota
	// SyntaxDelimited is a {{op://...}} reference. The delimiters make the
	// span exact, so this is the syntax of record.
	SyntaxDelimited
)

// ParseReferences returns the ordered secret-reference spans in value.
// A value with no references yields a nil slice and no error.
//
// Delimited references win: if the value contains any {{op:// opener, only
// delimited parsing is applied and bare op:// text outside delimiters is
// left alone. Bare parsing of a string that mixes both syntaxes cannot be
// made unambiguous, so it is not attempted.
func ParseReferences(value string) ([]Reference, error) {
	if strings.Contains(value, openDelim+Scheme) {
		return parseDelimited(value)
	}
	return parseBare(value), nil
}

// parseDelimited matches each {{op:// opener to the nearest following }}.
// An opener with no closer, or another opener before the closer, is a
// ParseError for the whole value rather than a partial match.
func parseDelimited(value string) ([]Reference, error) {
	var refs []Reference
	offset := 0

	for {
		rel := strings.Index(value[offset:], openDelim+Scheme)
		if rel < 0 {
			break
		}
		start := offset + rel
		textStart := start + len(openDelim)

		rel = strings.Index(value[textStart:], closeDelim)
		if rel < 0 {
			return nil, &ParseError{Pos: start, Reason: "unterminated " + openDelim + " delimiter"}
		}
		textEnd := textStart + rel

		text := value[textStart:textEnd]
		if strings.Contains(text, openDelim) {
			return nil, &ParseError{Pos: start, Reason: "nested " + openDelim + " delimiter"}
		}

		end := textEnd + len(closeDelim)
		refs = append(refs, Reference{Start: start, End: end, Syntax: SyntaxDelimited, Text: text})
		offset = end
	}

	return refs, nil
}

// parseBare scans for raw op:// references using the legacy termination
// heuristics. This is best-effort: a bare reference concatenated into a URL
// path is ambiguous by construction and may be cut at the wrong segment.
// New configurations should use the delimited syntax instead.
func parseBare(value string) []Reference {
	var refs []Reference
	offset := 0

	for {
		rel := strings.Index(value[offset:], Scheme)
		if rel < 0 {
			break
		}
		start := offset + rel
		text := extractBareReference(value[start:])
		if text == "" {
			break
		}

		// Embedded after '/' or '=' the heuristics can only guess; flag it
		// so the user can switch to the delimited syntax.
		if start > 0 && (value[start-1] == '/' || value[start-1] == '=') && strings.Contains(text, " ") {
			log.Warn("ambiguous bare secret reference in URL context; use the {{...}} syntax",
				"reference", text)
		}

		refs = append(refs, Reference{
			Start:  start,
			End:    start + len(text),
			Syntax: SyntaxBare,
			Text:   text,
		})
		offset = start + len(text)
	}

	return refs
}

// extractBareReference takes the reference at the start of text.
// The canonical shape is op://vault/item/field (five '/'-separated fields
// counting the scheme's "op:" and empty field), optionally with a section
// segment. Termination rules, in order: a space after at least five fields
// ends the reference; a later "op://" begins a new reference; a sixth field
// that looks like a lowercase URL path component is treated as outer text.
func extractBareReference(text string) string {
	if !strings.HasPrefix(text, Scheme) {
		return ""
	}

	if ref, ok := splitAtSpace(text); ok {
		return ref
	}

	fields := strings.Split(text, "/")
	if len(fields) <= 5 {
		return text
	}

	if end := nestedReferenceStart(fields); end > 0 {
		return strings.Join(fields[:end], "/")
	}

	if isURLPathComponent(fields[5]) {
		return strings.Join(fields[:5], "/")
	}

	return text
}

// splitAtSpace cuts the reference at the first space, provided enough
// fields precede it to form a complete reference.
func splitAtSpace(text string) (string, bool) {
	before, _, found := strings.Cut(text, " ")
	if !found {
		return "", false
	}
	if strings.Count(before, "/") < 4 {
		return "", false
	}
	return before, true
}

// nestedReferenceStart finds where a second op:// reference begins inside
// the field list (the concatenated-URL case), or 0 if there is none.
func nestedReferenceStart(fields []string) int {
	for i := 5; i < len(fields)-1; i++ {
		if fields[i] == "op:" && fields[i+1] == "" {
			return i
		}
	}
	return 0
}

// isURLPathComponent reports whether a field reads like an outer URL path
// segment: all-lowercase ASCII with dashes or underscores. Secret field
// names in practice carry uppercase or spaces, so this casing check is the
// tie-break for where a reference embedded in a URL ends.
func isURLPathComponent(field string) bool {
	if field == "" {
		return false
	}
	for _, c := range field {
		if (c < 'a' || c > 'z') && c != '-' && c != '_' {
			return false
		}
	}
	return true
}
