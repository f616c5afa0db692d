// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/doi-metadata/internal/httputil"
	"github.com/pdiddy/doi-metadata/internal/identifier"
	"github.com/pdiddy/doi-metadata/pkg/types"
)

// DefaultCrossRefURL is the public CrossRef REST API.
const DefaultCrossRefURL = "https://api.crossref.org"

// umbrellaPrefix is the DOI prefix shared by bioRxiv and medRxiv.
const (
	umbrellaPrefix    = "10.1101"
	umbrellaPublisher = "Cold Spring Harbor Laboratory"
)

// CrossRef queries the registry of record for most DOIs.
type CrossRef struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string

	// Mailto is appended to the User-Agent so CrossRef routes requests to
	// its polite pool.
	Mailto  string
	Timeout time.Duration
}

// CrossRef API JSON structures.
type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	Title           []string              `json:"title"`
	Author          []crossrefAuthor      `json:"author"`
	ContainerTitle  []string              `json:"container-title"`
	Institution     []crossrefInstitution `json:"institution"`
	Publisher       string                `json:"publisher"`
	PublishedPrint  crossrefDate          `json:"published-print"`
	PublishedOnline crossrefDate          `json:"published-online"`
	Created         crossrefDate          `json:"created"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefInstitution struct {
	Name string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

// Name implements Adapter.
func (c *CrossRef) Name() string { return "crossref" }

// Fetch implements Adapter.
func (c *CrossRef) Fetch(ctx context.Context, req Request) (out Outcome) {
	defer guard(c.Name(), &out)

	ctx, cancel := bounded(ctx, c.Timeout)
	defer cancel()

	base := c.BaseURL
	if base == "" {
		base = DefaultCrossRefURL
	}

	var cr crossrefResponse
	err := httputil.GetJSON(ctx, clientOrDefault(c.Client), strings.TrimSuffix(base, "/")+"/works/"+req.DOI, c.header(), &cr)
	if isStatus(err, http.StatusNotFound) {
		return notFound(c.Name(), "DOI %s is not registered", req.DOI)
	}
	if err != nil {
		return failure(c.Name(), err)
	}

	w := cr.Message
	if len(w.Title) == 0 || strings.TrimSpace(w.Title[0]) == "" {
		return notFound(c.Name(), "record for %s has no title", req.DOI)
	}

	venue := crossrefVenue(w)
	if identifier.HasPrefix(req.DOI, umbrellaPrefix) && (venue == "" || venue == umbrellaPublisher) {
		return ambiguous(c.Name(), "cannot tell bioRxiv from medRxiv for %s", req.DOI)
	}

	return found(c.Name(), types.MetadataRecord{
		Title:   w.Title[0],
		Authors: crossrefAuthors(w.Author),
		Journal: venue,
		Year:    crossrefYear(w),
		DOI:     req.DOI,
	})
}

func (c *CrossRef) header() http.Header {
	ua := c.UserAgent
	if ua == "" {
		ua = httputil.DefaultUserAgent
	}
	if c.Mailto != "" {
		ua += " (mailto:" + c.Mailto + ")"
	}
	h := http.Header{}
	h.Set("User-Agent", ua)
	return h
}

// crossrefAuthors formats authors as "Family Given", skipping entries with
// neither part.
func crossrefAuthors(authors []crossrefAuthor) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		if a.Family == "" && a.Given == "" {
			continue
		}
		names = append(names, strings.TrimSpace(a.Family+" "+a.Given))
	}
	return strings.Join(names, ", ")
}

// crossrefVenue resolves container title, then a preprint server named in
// the institution list, then the publisher.
func crossrefVenue(w crossrefWork) string {
	if len(w.ContainerTitle) > 0 && w.ContainerTitle[0] != "" {
		return w.ContainerTitle[0]
	}
	for _, inst := range w.Institution {
		name := strings.ToLower(inst.Name)
		switch {
		case strings.Contains(name, "biorxiv"):
			return BioRxivLabel + " (Preprint)"
		case strings.Contains(name, "medrxiv"):
			return MedRxivLabel + " (Preprint)"
		}
	}
	return w.Publisher
}

// crossrefYear takes the first element of the first non-empty date-parts
// among print, online, and created dates.
func crossrefYear(w crossrefWork) string {
	for _, d := range []crossrefDate{w.PublishedPrint, w.PublishedOnline, w.Created} {
		if len(d.DateParts) == 0 {
			continue
		}
		if len(d.DateParts[0]) == 0 || d.DateParts[0][0] == 0 {
			return ""
		}
		return strconv.Itoa(d.DateParts[0][0])
	}
	return ""
}
