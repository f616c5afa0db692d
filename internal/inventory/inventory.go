// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inventory compares the PMCIDs known to a registry file, a directory
// of processed JSON records, and a directory of per-PMCID folders.
package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Set is a set of identifiers.
type Set map[string]struct{}

// NewSet returns a set holding ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id after trimming; blank ids are ignored.
func (s Set) Add(id string) {
	if id = strings.TrimSpace(id); id != "" {
		s[id] = struct{}{}
	}
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Minus returns the sorted ids in s but not in other.
func (s Set) Minus(other Set) []string {
	var out []string
	for id := range s {
		if !other.Has(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Intersect returns the sorted ids in both sets.
func (s Set) Intersect(other Set) []string {
	var out []string
	for id := range s {
		if other.Has(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Sorted returns the ids in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// JSONStems returns the stems of *.json files (case-insensitive) in dir.
func JSONStems(dir string) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading JSON directory %s: %w", dir, err)
	}
	s := make(Set)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		s.Add(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	return s, nil
}

// Folders returns the names of the immediate subdirectories of dir.
func Folders(dir string) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading folders directory %s: %w", dir, err)
	}
	s := make(Set)
	for _, e := range entries {
		if e.IsDir() {
			s.Add(e.Name())
		}
	}
	return s, nil
}

type registryEntry struct {
	Publication *struct {
		PMCID json.RawMessage `json:"pmcid"`
	} `json:"publication"`
}

// RegistryPMCIDs reads a registry file (a JSON array of entries carrying
// publication.pmcid) and returns its PMCIDs. Only non-blank string values
// count unless normalize is set, in which case numeric values are accepted
// too and every ID gains a "PMC" prefix when missing.
func RegistryPMCIDs(path string, normalize bool) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing registry %s: %w", path, err)
	}

	s := make(Set)
	for _, raw := range entries {
		var e registryEntry
		if json.Unmarshal(raw, &e) != nil || e.Publication == nil {
			continue
		}
		id, ok := pmcidValue(e.Publication.PMCID, normalize)
		if !ok {
			continue
		}
		if normalize && !strings.HasPrefix(id, "PMC") {
			id = "PMC" + id
		}
		s.Add(id)
	}
	return s, nil
}

func pmcidValue(raw json.RawMessage, allowNumber bool) (string, bool) {
	var str string
	if json.Unmarshal(raw, &str) == nil {
		str = strings.TrimSpace(str)
		return str, str != ""
	}
	if !allowNumber {
		return "", false
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		if i, err := n.Int64(); err == nil && i > 0 {
			return strconv.FormatInt(i, 10), true
		}
	}
	return "", false
}
