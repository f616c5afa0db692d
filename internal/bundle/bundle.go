// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bundle packages configured files and directories into one zip
// archive and adds a CSV manifest recording which sources mention each PMCID.
package bundle

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/doi-metadata/internal/inventory"
	"github.com/pdiddy/doi-metadata/pkg/types"
)

// Defaults for an empty PackageConfig.
const (
	DefaultRoot     = "doi-metadata-package"
	DefaultManifest = "manifest.csv"
)

var pmcidPattern = regexp.MustCompile(`PMC\d+`)

// Manifest maps each PMCID to the set of source names that mention it.
type Manifest struct {
	Columns []string
	Rows    map[string]map[string]bool
}

func newManifest(cols []string) *Manifest {
	return &Manifest{Columns: cols, Rows: make(map[string]map[string]bool)}
}

func (m *Manifest) mark(pmcid, source string) {
	if m.Rows[pmcid] == nil {
		m.Rows[pmcid] = make(map[string]bool)
	}
	m.Rows[pmcid][source] = true
}

// PMCIDs returns the manifest rows in sorted order.
func (m *Manifest) PMCIDs() []string {
	ids := make([]string, 0, len(m.Rows))
	for id := range m.Rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WriteCSV writes the manifest with a PMCID column followed by one Yes/No
// column per source.
func (m *Manifest) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"PMCID"}, m.Columns...)); err != nil {
		return err
	}
	for _, id := range m.PMCIDs() {
		row := []string{id}
		for _, col := range m.Columns {
			cell := "No"
			if m.Rows[id][col] {
				cell = "Yes"
			}
			row = append(row, cell)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Build writes the archive described by cfg to output and returns the
// manifest. Missing sources are reported to w and skipped; their column still
// appears in the manifest.
func Build(cfg types.PackageConfig, output string, w io.Writer) (*Manifest, error) {
	root := cfg.Root
	if root == "" {
		root = DefaultRoot
	}
	manifestName := cfg.Manifest
	if manifestName == "" {
		manifestName = DefaultManifest
	}
	if !strings.HasSuffix(strings.ToLower(manifestName), ".csv") {
		manifestName += ".csv"
	}

	cols := make([]string, len(cfg.Sources))
	for i, s := range cfg.Sources {
		cols[i] = s.Name
	}
	m := newManifest(cols)

	f, err := os.Create(output)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", output, err)
	}
	zw := zip.NewWriter(f)

	buildErr := func() error {
		// The archive may sit inside a source directory; it must not be
		// added to itself.
		self, err := f.Stat()
		if err != nil {
			return err
		}
		for _, src := range cfg.Sources {
			if err := addSource(zw, m, root, src, self, w); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "Writing manifest with %d PMCIDs\n", len(m.Rows))
		mw, err := zw.CreateHeader(&zip.FileHeader{Name: path.Join(root, manifestName), Method: zip.Deflate})
		if err != nil {
			return err
		}
		return m.WriteCSV(mw)
	}()

	if err := zw.Close(); err != nil && buildErr == nil {
		buildErr = err
	}
	if err := f.Close(); err != nil && buildErr == nil {
		buildErr = err
	}
	if buildErr != nil {
		os.Remove(output)
		return nil, fmt.Errorf("building %s: %w", output, buildErr)
	}
	fmt.Fprintf(w, "Created %s\n", output)
	return m, nil
}

func addSource(zw *zip.Writer, m *Manifest, root string, src types.PackageSource, self os.FileInfo, w io.Writer) error {
	info, err := os.Stat(src.Path)
	if err != nil {
		fmt.Fprintf(w, "warning: source not found: %s\n", src.Path)
		return nil
	}
	fmt.Fprintf(w, "Adding %s -> %s\n", src.Path, src.Name)

	if !info.IsDir() {
		if os.SameFile(info, self) {
			return nil
		}
		if err := addFile(zw, src.Path, path.Join(root, src.Name), info); err != nil {
			return err
		}
		if src.Registry {
			ids, err := inventory.RegistryPMCIDs(src.Path, true)
			if err != nil {
				fmt.Fprintf(w, "warning: %v\n", err)
				return nil
			}
			for id := range ids {
				m.mark(id, src.Name)
			}
		}
		return nil
	}

	return filepath.WalkDir(src.Path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == src.Path {
			return nil
		}
		if id := pmcidPattern.FindString(d.Name()); id != "" {
			m.mark(id, src.Name)
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src.Path, p)
		if err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		if os.SameFile(fi, self) {
			return nil
		}
		return addFile(zw, p, path.Join(root, src.Name, filepath.ToSlash(rel)), fi)
	})
}

func addFile(zw *zip.Writer, srcPath, name string, info os.FileInfo) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()
	if _, err := io.Copy(dst, in); err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	return nil
}
