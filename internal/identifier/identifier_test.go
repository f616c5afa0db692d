// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/doi-metadata/pkg/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		// Bare and embedded DOIs.
		{"bare DOI", "10.1038/nature12373", "10.1038/nature12373", true},
		{"surrounding whitespace", "  10.1038/nature12373\n", "10.1038/nature12373", true},
		{"resolver URL", "https://doi.org/10.1038/nature12373", "10.1038/nature12373", true},
		{"free text", "see doi:10.1101/2020.01.01.123456 for details", "10.1101/2020.01.01.123456", true},
		{"first of several", "10.1000/first and 10.1000/second", "10.1000/first", true},

		// Trailing punctuation is stripped.
		{"trailing period", "10.1038/nature12373.", "10.1038/nature12373", true},
		{"trailing run", "(10.1038/nature12373).,;", "10.1038/nature12373", true},
		{"inner parentheses kept", "10.1002/(SICI)1097-4636(199601)30:1<1::AID>", "10.1002/(SICI)1097-4636(199601)30:1", true},

		// Percent-encoding.
		{"percent-encoded slash", "10.1038%2Fnature12373", "10.1038/nature12373", true},
		{"bad escape keeps input", "10.1038/nature12373%zz", "10.1038/nature12373", true},
		{"valid escapes decoded beside a truncated one", "10.1000%2Fabc%2", "10.1000/abc", true},
		{"sign in escape is not hex", "10.1000%2Fabc%+1", "10.1000/abc", true},

		// Negative.
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"no DOI", "hello world", "", false},
		{"registrant too short", "10.123/abc", "", false},
		{"registrant too long", "10.1234567890/abc", "", false},
		{"no suffix", "10.1038/", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"https://doi.org/10.5281/zenodo.123456.",
		"10.48550/arXiv.2101.00001",
		"doi: 10.1101/2021.03.04.433900;",
	}
	for _, in := range inputs {
		first, ok := Normalize(in)
		assert.True(t, ok, in)
		second, ok := Normalize(first)
		assert.True(t, ok, first)
		assert.Equal(t, first, second)
	}
}

func TestRecordFilename(t *testing.T) {
	tests := []struct {
		name string
		rec  types.MetadataRecord
		want string
	}{
		{"pmid wins", types.MetadataRecord{PMID: "12345", DOI: "10.1/x"}, "metadata_12345.json"},
		{"doi slug", types.MetadataRecord{DOI: "10.1101/2020.01.01.123456"}, "metadata_doi_10.1101_2020.01.01.123456.json"},
		{"nested slashes", types.MetadataRecord{DOI: "10.1000/a/b"}, "metadata_doi_10.1000_a_b.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecordFilename(tt.rec))
		})
	}
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, HasPrefix("10.1101/2020.01.01", "10.1101"))
	assert.True(t, HasPrefix("10.1101/2020.01.01", "10.1101/"))
	assert.False(t, HasPrefix("10.11012/x", "10.1101"))
}
