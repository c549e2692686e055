package pipeline

import (
	"regexp"
	"strings"

	"github.com/moolen/templatematch/internal/catalog"
	"github.com/moolen/templatematch/internal/ingest"
)

// placeholderPattern recognises the placeholder syntax used to split a
// generated pattern into literal fragments: `<*>`, named captures like
// `<ip>`, and bare regex metacharacter runs are all treated as variable
// content and are not carried into the fragment list.
var placeholderPattern = regexp.MustCompile(`<[^>]*>|\{[^}]*\}|%[a-zA-Z]|\.\*|\\d\+|\[[^\]]*\]`)

// deriveFragments splits pattern on placeholder syntax, returning the
// non-empty literal runs between placeholders (§4.7 Validation step a).
func deriveFragments(pattern string) []string {
	parts := placeholderPattern.Split(pattern, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// qualifyingFragments reports whether fragments has at least one
// fragment meeting minFragmentLength (§4.7 Validation step b, I2).
func qualifyingFragments(fragments []string, minFragmentLength int) bool {
	for _, f := range fragments {
		if len(f) >= minFragmentLength {
			return true
		}
	}
	return false
}

// orderedSubsequence reports whether fragments occur in line, in order,
// with strictly increasing positions — the same rule §4.1 step 2 uses
// to verify a match, reused here to validate a generated candidate
// against the line it was derived from (§4.7 Validation step c).
func orderedSubsequence(fragments []string, line string) bool {
	pos := 0
	for _, f := range fragments {
		idx := strings.Index(line[pos:], f)
		if idx < 0 {
			return false
		}
		pos += idx + len(f)
	}
	return true
}

// Validator checks generated candidates before they are installed.
type Validator struct {
	minFragmentLength int
	catalog           *catalog.Catalog
}

// NewValidator builds a Validator enforcing minFragmentLength (I2) and
// deduplicating against cat by canonical pattern.
func NewValidator(cat *catalog.Catalog, minFragmentLength int) *Validator {
	return &Validator{minFragmentLength: minFragmentLength, catalog: cat}
}

// Validate runs the full §4.7 Validation chain for one candidate
// against the line that produced it. Returns the canonical (masked)
// pattern, its derived fragments, and true if the candidate should be
// installed.
func (v *Validator) Validate(candidate GeneratedTemplate, originatingLine string) (string, []string, bool) {
	pattern := ingest.MaskDynamicValues(candidate.Pattern)

	if v.catalog.HasPattern(pattern) {
		return pattern, nil, false
	}

	fragments := candidate.Fragments
	if len(fragments) == 0 {
		fragments = deriveFragments(pattern)
	}

	if !qualifyingFragments(fragments, v.minFragmentLength) {
		return pattern, nil, false
	}
	if !orderedSubsequence(fragments, originatingLine) {
		return pattern, nil, false
	}
	return pattern, fragments, true
}
