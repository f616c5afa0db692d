// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records and configuration shared by the
// doi-metadata resolver, its sources, and its file collaborators.
package types

// MetadataRecord is the normalized bibliographic record produced by one
// source and written as the run's output. Field order is the serialization
// order; every field is a string and unknown values stay empty.
type MetadataRecord struct {
	// Title is required: a record without one is never a successful resolution.
	Title string `json:"publication/title" yaml:"title"`

	// Authors is a single formatted string, entries joined with ", " in source order.
	Authors string `json:"publication/authors" yaml:"authors"`

	// Journal is the venue: a journal name, a repository label, or a
	// synthesized preprint label such as "BioRxiv (Preprint)".
	Journal string `json:"publication/journal" yaml:"journal"`

	// Year is a 4-digit year or empty.
	Year string `json:"publication/year" yaml:"year"`

	PMID  string `json:"publication/pmid" yaml:"pmid"`
	PMCID string `json:"publication/pmcid" yaml:"pmcid"`

	// DOI is always the canonical identifier the run was keyed on.
	DOI string `json:"publication/doi" yaml:"doi"`
}

// Valid reports whether the record can count as a resolution.
func (r *MetadataRecord) Valid() bool {
	return r != nil && r.Title != ""
}

// AuxiliaryIDs holds the literature-index identifiers discovered for a DOI.
// Both are optional.
type AuxiliaryIDs struct {
	PMID  string `json:"pmid" yaml:"pmid"`
	PMCID string `json:"pmcid" yaml:"pmcid"`
}

// IsEmpty reports whether neither identifier is known.
func (ids AuxiliaryIDs) IsEmpty() bool {
	return ids.PMID == "" && ids.PMCID == ""
}
