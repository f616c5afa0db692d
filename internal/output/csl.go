package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/doi-metadata/internal/identifier"
	"github.com/pdiddy/doi-metadata/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-YAML schema so that
// output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	PMID           string    `yaml:"PMID,omitempty"`
	PMCID          string    `yaml:"PMCID,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes rec as a one-item CSL-YAML list to w.
func FormatCSL(rec types.MetadataRecord, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode([]CSLItem{ToCSLItem(rec)})
}

// WriteCSL writes the CSL-YAML rendering of rec next to its JSON record and
// returns the path.
func WriteCSL(dir string, rec types.MetadataRecord) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, identifier.RecordStem(rec)+".yaml")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := FormatCSL(rec, f); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, f.Close()
}

// ToCSLItem converts a MetadataRecord to a CSLItem.
func ToCSLItem(rec types.MetadataRecord) CSLItem {
	item := CSLItem{
		ID:             rec.DOI,
		Type:           cslType(rec.Journal),
		Title:          rec.Title,
		Author:         parseAuthors(rec.Authors),
		ContainerTitle: rec.Journal,
		DOI:            rec.DOI,
		PMID:           rec.PMID,
		PMCID:          rec.PMCID,
	}
	if y, err := strconv.Atoi(rec.Year); err == nil && y > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{y}}}
	}
	return item
}

func cslType(venue string) string {
	switch {
	case strings.HasSuffix(venue, "(Preprint)"):
		return "article"
	case venue == "Zenodo":
		return "dataset"
	default:
		return "article-journal"
	}
}

// parseAuthors splits a formatted author string into CSL names. Strings using
// ";" separate "Family, Given" entries (the preprint servers' style);
// otherwise entries are ", "-separated "Family Given" pairs.
func parseAuthors(s string) []CSLName {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var names []CSLName
	if strings.Contains(s, ";") {
		for _, part := range strings.Split(s, ";") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			family, given, ok := strings.Cut(part, ",")
			if !ok {
				names = append(names, CSLName{Literal: part})
				continue
			}
			names = append(names, CSLName{Family: strings.TrimSpace(family), Given: strings.TrimSpace(given)})
		}
		return names
	}

	for _, part := range strings.Split(s, ", ") {
		names = append(names, parseAuthorName(part))
	}
	return names
}

// parseAuthorName splits "Family Given" on the first space. Single-token
// names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.Index(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Family: name[:idx],
		Given:  strings.TrimSpace(name[idx+1:]),
	}
}
