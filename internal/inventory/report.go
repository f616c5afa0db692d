// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inventory

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Comparison is one source-versus-target coverage report.
type Comparison struct {
	Label       string
	TargetName  string
	SourceTotal int
	TargetTotal int
	Matches     int

	// Coverage is Matches as a percentage of SourceTotal (0 when the source
	// is empty).
	Coverage float64

	// Missing are in the source but not the target; Extra the reverse.
	Missing []string
	Extra   []string
}

// Compare builds a Comparison of target against source.
func Compare(label, targetName string, source, target Set) Comparison {
	c := Comparison{
		Label:       label,
		TargetName:  targetName,
		SourceTotal: len(source),
		TargetTotal: len(target),
		Matches:     len(source.Intersect(target)),
		Missing:     source.Minus(target),
		Extra:       target.Minus(source),
	}
	if c.SourceTotal > 0 {
		c.Coverage = float64(c.Matches) / float64(c.SourceTotal) * 100
	}
	return c
}

// WriteReport prints comparisons in order to w.
func WriteReport(w io.Writer, comparisons []Comparison) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "COMPARISON REPORT")
	fmt.Fprintln(w, rule)

	for i, c := range comparisons {
		if i > 0 {
			fmt.Fprintf(w, "\n%s\n", strings.Repeat("-", 60))
		}
		fmt.Fprintf(w, "\n--- %s ---\n", c.Label)
		fmt.Fprintf(w, "Total source PMCIDs: %d\n", c.SourceTotal)
		fmt.Fprintf(w, "Total %s: %d\n", c.TargetName, c.TargetTotal)
		fmt.Fprintf(w, "Matches: %d\n", c.Matches)
		fmt.Fprintf(w, "Coverage: %.2f%%\n", c.Coverage)

		fmt.Fprintf(w, "\n[MISSING] in source but not in %s (%d):\n", c.TargetName, len(c.Missing))
		fmt.Fprintln(w, listOrNone(c.Missing))
		fmt.Fprintf(w, "\n[EXTRA] in %s but not in source (%d):\n", c.TargetName, len(c.Extra))
		fmt.Fprintln(w, listOrNone(c.Extra))
	}
	fmt.Fprintf(w, "\n%s\n", rule)
}

func listOrNone(ids []string) string {
	if len(ids) == 0 {
		return "None"
	}
	return strings.Join(ids, ", ")
}

// MissingFolders returns the JSON stems in jsonDir that have no folder of the
// same name in foldersDir, sorted.
func MissingFolders(jsonDir, foldersDir string) ([]string, error) {
	stems, err := JSONStems(jsonDir)
	if err != nil {
		return nil, err
	}
	folders, err := Folders(foldersDir)
	if err != nil {
		return nil, err
	}
	return stems.Minus(folders), nil
}

// CreatePlaceholders creates <dest>/<prefix><id> for each id, writing one
// line per folder to w. dest must already exist. Folders that already exist
// are reported and left alone.
func CreatePlaceholders(dest, prefix string, ids []string, w io.Writer) (created, existing []string, err error) {
	info, err := os.Stat(dest)
	if err != nil {
		return nil, nil, fmt.Errorf("target directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("target %s is not a directory", dest)
	}

	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		name := prefix + id
		path := filepath.Join(dest, name)
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(w, "Folder already exists: %s\n", name)
			existing = append(existing, name)
			continue
		}
		if err := os.Mkdir(path, 0o755); err != nil {
			return created, existing, fmt.Errorf("creating folder %s: %w", name, err)
		}
		fmt.Fprintf(w, "Created folder: %s\n", name)
		created = append(created, name)
	}
	return created, existing, nil
}
