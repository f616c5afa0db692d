// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// Recognized key files: contact-email, ncbi-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key file names.
const (
	// KeyContactEmail is the address sent to CrossRef (mailto) and NCBI (email).
	KeyContactEmail = "contact-email"

	// KeyNCBIAPIKey raises the NCBI E-utilities allowance.
	KeyNCBIAPIKey = "ncbi-api-key"
)

// DefaultDir is the directory read by the CLI.
const DefaultDir = ".secrets/"

// Credentials holds the recognized secrets.
type Credentials struct {
	ContactEmail string
	NCBIAPIKey   string
}

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error; Load returns an empty map.
// Unreadable files are reported in skipped and do not abort.
func Load(dir string) (secrets map[string]string, skipped []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil, nil
		}
		return nil, nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets = make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, skipped, nil
}

// FromMap picks the recognized keys out of a Load result.
func FromMap(m map[string]string) Credentials {
	return Credentials{
		ContactEmail: m[KeyContactEmail],
		NCBIAPIKey:   m[KeyNCBIAPIKey],
	}
}
