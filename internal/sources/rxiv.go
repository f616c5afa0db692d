// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/doi-metadata/internal/httputil"
	"github.com/pdiddy/doi-metadata/pkg/types"
)

// DefaultRxivURL serves both bioRxiv and medRxiv details.
const DefaultRxivURL = "https://api.biorxiv.org"

// Server labels used when synthesizing "<Label> (Preprint)" venues.
const (
	BioRxivLabel = "BioRxiv"
	MedRxivLabel = "MedRxiv"
)

// Rxiv queries one of the Cold Spring Harbor preprint servers. The same type
// serves bioRxiv and medRxiv, parameterized by Server.
type Rxiv struct {
	Client  *http.Client
	BaseURL string
	Timeout time.Duration

	// Server is the path slug: "biorxiv" or "medrxiv".
	Server string

	// Label is the display name used in the venue.
	Label string
}

// NewBioRxiv returns the bioRxiv adapter.
func NewBioRxiv(client *http.Client, baseURL string, timeout time.Duration) *Rxiv {
	return &Rxiv{Client: client, BaseURL: baseURL, Timeout: timeout, Server: "biorxiv", Label: BioRxivLabel}
}

// NewMedRxiv returns the medRxiv adapter.
func NewMedRxiv(client *http.Client, baseURL string, timeout time.Duration) *Rxiv {
	return &Rxiv{Client: client, BaseURL: baseURL, Timeout: timeout, Server: "medrxiv", Label: MedRxivLabel}
}

type rxivResponse struct {
	Messages []struct {
		Status string `json:"status"`
	} `json:"messages"`
	Collection []struct {
		Title   string `json:"title"`
		Authors string `json:"authors"`
		Date    string `json:"date"`
		Version string `json:"version"`
	} `json:"collection"`
}

// Name implements Adapter.
func (r *Rxiv) Name() string { return r.Server }

// Fetch implements Adapter. The last element of the collection is the most
// recent revision.
func (r *Rxiv) Fetch(ctx context.Context, req Request) (out Outcome) {
	defer guard(r.Name(), &out)

	ctx, cancel := bounded(ctx, r.Timeout)
	defer cancel()

	base := r.BaseURL
	if base == "" {
		base = DefaultRxivURL
	}

	var res rxivResponse
	u := strings.TrimSuffix(base, "/") + "/details/" + r.Server + "/" + req.DOI
	if err := httputil.GetJSON(ctx, clientOrDefault(r.Client), u, nil, &res); err != nil {
		return failure(r.Name(), err)
	}

	status := ""
	if len(res.Messages) > 0 {
		status = res.Messages[0].Status
	}
	if status != "ok" {
		return notFound(r.Name(), "status %q for %s", status, req.DOI)
	}
	if len(res.Collection) == 0 {
		return notFound(r.Name(), "empty collection for %s", req.DOI)
	}

	item := res.Collection[len(res.Collection)-1]
	return found(r.Name(), types.MetadataRecord{
		Title:   strings.TrimSpace(item.Title),
		Authors: item.Authors,
		Journal: r.Label + " (Preprint)",
		Year:    yearPrefix(item.Date),
		DOI:     req.DOI,
	})
}
