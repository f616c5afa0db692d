// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/doi-metadata/internal/httputil"
	"github.com/pdiddy/doi-metadata/internal/identifier"
	"github.com/pdiddy/doi-metadata/pkg/types"
)

// DefaultArxivURL is the arXiv export query endpoint.
const DefaultArxivURL = "https://export.arxiv.org/api/query"

// arxivDOIPrefix is the prefix of DOIs minted by arXiv.
const arxivDOIPrefix = "10.48550"

// ArxivLabel is the venue reported for arXiv entries.
const ArxivLabel = "arXiv (Preprint)"

// Arxiv queries the arXiv export API.
type Arxiv struct {
	Client  *http.Client
	BaseURL string
	Timeout time.Duration
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// Name implements Adapter.
func (a *Arxiv) Name() string { return "arxiv" }

// Fetch implements Adapter.
func (a *Arxiv) Fetch(ctx context.Context, req Request) (out Outcome) {
	defer guard(a.Name(), &out)

	ctx, cancel := bounded(ctx, a.Timeout)
	defer cancel()

	base := a.BaseURL
	if base == "" {
		base = DefaultArxivURL
	}

	params := url.Values{}
	if id := ArxivID(req.DOI); id != "" {
		params.Set("id_list", id)
	} else {
		params.Set("search_query", "doi:"+req.DOI)
	}
	params.Set("start", "0")
	params.Set("max_results", "1")

	var feed arxivFeed
	if err := httputil.GetXML(ctx, clientOrDefault(a.Client), base+"?"+params.Encode(), nil, &feed); err != nil {
		return failure(a.Name(), err)
	}
	if len(feed.Entries) == 0 {
		return notFound(a.Name(), "no entry for %s", req.DOI)
	}

	entry := feed.Entries[0]
	if isArxivError(entry) {
		zerolog.Ctx(ctx).Debug().Str("source", a.Name()).Str("summary", strings.TrimSpace(entry.Summary)).Msg("API returned an error entry")
		return notFound(a.Name(), "API error: %s", strings.TrimSpace(entry.Summary))
	}

	names := make([]string, 0, len(entry.Authors))
	for _, au := range entry.Authors {
		names = append(names, au.Name)
	}

	return found(a.Name(), types.MetadataRecord{
		Title:   strings.ReplaceAll(strings.TrimSpace(entry.Title), "\n", " "),
		Authors: joinNonEmpty(names),
		Journal: ArxivLabel,
		Year:    firstN(strings.TrimSpace(entry.Published), 4),
		DOI:     req.DOI,
	})
}

// ArxivID extracts the arXiv identifier embedded in an arXiv-minted DOI,
// dropping an optional "arXiv." namespace segment. It returns "" for other
// DOIs.
func ArxivID(doi string) string {
	if !identifier.HasPrefix(doi, arxivDOIPrefix) {
		return ""
	}
	suffix := doi[len(arxivDOIPrefix)+1:]
	if len(suffix) >= 6 && strings.EqualFold(suffix[:6], "arxiv.") {
		return suffix[6:]
	}
	return suffix
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// isArxivError reports whether entry is the error entry arXiv returns in place
// of a result. Its id points at /api/errors and its title is "Error".
func isArxivError(e arxivEntry) bool {
	return strings.Contains(e.ID, "Error") ||
		strings.Contains(e.ID, "/api/errors") ||
		strings.TrimSpace(e.Title) == "Error"
}
