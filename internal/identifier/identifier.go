// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identifier extracts canonical DOIs from free text and derives the
// filenames records are written under.
package identifier

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/doi-metadata/pkg/types"
)

// doiPattern finds a DOI anywhere in the input: "10." + a 4-9 digit
// registrant code + "/" + suffix.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[-._;()/:A-Za-z0-9]+`)

// trailingPunct is trimmed from the end of a match. Citation text and URLs
// routinely glue these onto the identifier.
const trailingPunct = ".,;)"

// Normalize extracts the first DOI from text. It trims whitespace,
// percent-decodes the input (malformed escapes are kept as-is), and strips
// trailing punctuation from the match. The boolean is false when no DOI is
// present; callers must not query any source in that case.
func Normalize(text string) (string, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", false
	}
	s = unescape(s)

	m := doiPattern.FindString(s)
	if m == "" {
		return "", false
	}
	doi := strings.TrimRight(m, trailingPunct)
	if !doiPattern.MatchString(doi) {
		return "", false
	}
	return doi, true
}

// unescape decodes each valid %XX escape and leaves malformed ones in place.
func unescape(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// HasPrefix reports whether doi belongs to the registrant prefix
// (e.g. "10.1101").
func HasPrefix(doi, prefix string) bool {
	return strings.HasPrefix(doi, strings.TrimSuffix(prefix, "/")+"/")
}

// Slug returns a filesystem-safe stem for a DOI: path separators become
// underscores.
func Slug(doi string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(doi)
}

// RecordStem is the file stem a record is written under: the PMID when one is
// known, otherwise the slugged DOI.
func RecordStem(rec types.MetadataRecord) string {
	if rec.PMID != "" {
		return "metadata_" + rec.PMID
	}
	return "metadata_doi_" + Slug(rec.DOI)
}

// RecordFilename returns RecordStem with the .json extension.
func RecordFilename(rec types.MetadataRecord) string {
	return RecordStem(rec) + ".json"
}
