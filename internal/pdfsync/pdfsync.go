// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfsync copies main-text PDFs from a flat source directory into a
// per-PMCID folder layout, replacing same-size copies already present.
package pdfsync

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Action describes what happened to one source PDF.
type Action string

const (
	// ActionCreated means the PMCID folder did not exist and was created.
	ActionCreated Action = "created"

	// ActionReplaced means one or more same-size PDFs were removed first.
	ActionReplaced Action = "replaced"

	// ActionCopied means the folder existed and nothing matched by size.
	ActionCopied Action = "copied"

	// ActionFailed means the file could not be synchronized.
	ActionFailed Action = "failed"
)

// FileResult is the outcome for one source PDF.
type FileResult struct {
	Source  string
	PMCID   string
	Dest    string
	Action  Action
	Removed []string

	// RemoveErrs lists same-size PDFs that could not be deleted. The copy
	// still goes ahead.
	RemoveErrs []error

	Err error
}

// Summary holds per-file results in source-name order.
type Summary struct {
	Files []FileResult
}

// Count returns how many files ended with action a.
func (s Summary) Count(a Action) int {
	n := 0
	for _, f := range s.Files {
		if f.Action == a {
			n++
		}
	}
	return n
}

// PMCIDFromFilename derives the PMCID folder name from a PDF file name:
// everything before "_main" when present, otherwise the stem.
func PMCIDFromFilename(name string) string {
	if i := strings.Index(name, "_main"); i >= 0 {
		return name[:i]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Sync copies every *.pdf (case-insensitive) in srcDir to
// destDir/<PMCID>/<PMCID>_main.pdf, writing one progress line per file to w.
// A per-file failure is recorded in the summary and does not stop the run.
func Sync(srcDir, destDir string, w io.Writer) (Summary, error) {
	var sum Summary

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return sum, fmt.Errorf("reading source directory %s: %w", srcDir, err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return sum, fmt.Errorf("creating destination %s: %w", destDir, err)
	}

	var pdfs []string
	for _, e := range entries {
		if !e.IsDir() && isPDF(e.Name()) {
			pdfs = append(pdfs, e.Name())
		}
	}
	sort.Strings(pdfs)
	fmt.Fprintf(w, "Found %d PDF files in %s\n", len(pdfs), srcDir)

	for _, name := range pdfs {
		res := syncOne(filepath.Join(srcDir, name), destDir)
		sum.Files = append(sum.Files, res)
		if res.Err != nil {
			fmt.Fprintf(w, "  %s: error: %v\n", name, res.Err)
			continue
		}
		for _, rerr := range res.RemoveErrs {
			fmt.Fprintf(w, "  %s: warning: %v\n", name, rerr)
		}
		fmt.Fprintf(w, "  %s -> %s (%s)\n", name, res.Dest, res.Action)
	}

	fmt.Fprintf(w, "Synced %d files: %d created, %d replaced, %d copied, %d failed\n",
		len(sum.Files), sum.Count(ActionCreated), sum.Count(ActionReplaced),
		sum.Count(ActionCopied), sum.Count(ActionFailed))
	return sum, nil
}

func syncOne(srcPath, destDir string) FileResult {
	pmcid := PMCIDFromFilename(filepath.Base(srcPath))
	folder := filepath.Join(destDir, pmcid)
	res := FileResult{
		Source: srcPath,
		PMCID:  pmcid,
		Dest:   filepath.Join(folder, pmcid+"_main.pdf"),
	}
	fail := func(err error) FileResult {
		res.Action = ActionFailed
		res.Err = err
		return res
	}

	info, err := os.Stat(srcPath)
	if err != nil {
		return fail(err)
	}

	if _, err := os.Stat(folder); os.IsNotExist(err) {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return fail(fmt.Errorf("creating folder: %w", err))
		}
		res.Action = ActionCreated
	} else if err != nil {
		return fail(err)
	} else {
		removed, errs, err := removeSameSize(folder, info.Size())
		res.Removed = removed
		res.RemoveErrs = errs
		if err != nil {
			return fail(err)
		}
		res.Action = ActionCopied
		if len(removed) > 0 {
			res.Action = ActionReplaced
		}
	}

	if err := copyFile(srcPath, res.Dest, info); err != nil {
		return fail(err)
	}
	return res
}

// removeFile is os.Remove; tests replace it.
var removeFile = os.Remove

// removeSameSize deletes PDFs in folder whose size equals size. Files that
// cannot be deleted are reported in errs and skipped.
func removeSameSize(folder string, size int64) (removed []string, errs []error, err error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", folder, err)
	}
	for _, e := range entries {
		if e.IsDir() || !isPDF(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.Size() != size {
			continue
		}
		p := filepath.Join(folder, e.Name())
		if err := removeFile(p); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", p, err))
			continue
		}
		removed = append(removed, e.Name())
	}
	return removed, errs, nil
}

// copyFile copies src to dst, preserving the modification time.
func copyFile(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
