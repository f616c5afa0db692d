// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output renders resolved records: the JSON record file and an
// optional CSL-YAML bibliography entry.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/doi-metadata/internal/identifier"
	"github.com/pdiddy/doi-metadata/pkg/types"
)

// MarshalRecord serializes rec with a 4-space indent and a trailing newline.
// Keys follow the struct field order, so output is byte-stable.
func MarshalRecord(rec types.MetadataRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("marshaling record: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteRecord writes rec to dir under identifier.RecordFilename and returns
// the path. The file is written to a temporary name first and renamed, so a
// failed run never leaves a partial record behind.
func WriteRecord(dir string, rec types.MetadataRecord) (string, error) {
	data, err := MarshalRecord(rec)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, identifier.RecordFilename(rec))
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// ReadRecord loads a record file written by WriteRecord.
func ReadRecord(path string) (types.MetadataRecord, error) {
	var rec types.MetadataRecord
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, fmt.Errorf("reading record: %w", err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("parsing record %s: %w", path, err)
	}
	return rec, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".record-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}
