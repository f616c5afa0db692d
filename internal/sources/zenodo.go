// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/doi-metadata/internal/httputil"
	"github.com/pdiddy/doi-metadata/pkg/types"
)

// DefaultZenodoURL is the public Zenodo REST API.
const DefaultZenodoURL = "https://zenodo.org/api"

// ZenodoLabel is the venue reported for every Zenodo record.
const ZenodoLabel = "Zenodo"

// zenodoDOIPattern extracts the record ID from a Zenodo-minted DOI.
var zenodoDOIPattern = regexp.MustCompile(`10\.5281/zenodo\.(\d+)`)

// Zenodo queries the Zenodo repository for datasets and software.
type Zenodo struct {
	Client  *http.Client
	BaseURL string
	Timeout time.Duration
}

type zenodoRecord struct {
	Metadata struct {
		Title    string `json:"title"`
		Creators []struct {
			Name string `json:"name"`
		} `json:"creators"`
		PublicationDate string `json:"publication_date"`
	} `json:"metadata"`
}

type zenodoSearch struct {
	Hits struct {
		Hits []zenodoRecord `json:"hits"`
	} `json:"hits"`
}

// Name implements Adapter.
func (z *Zenodo) Name() string { return "zenodo" }

// Fetch implements Adapter. A Zenodo-minted DOI is looked up by record ID
// first; a 404 there falls through to search, any other failure ends the
// attempt. Search runs a loose free-text query and, when that has no hits,
// a strict doi:"..." query.
func (z *Zenodo) Fetch(ctx context.Context, req Request) (out Outcome) {
	defer guard(z.Name(), &out)

	ctx, cancel := bounded(ctx, z.Timeout)
	defer cancel()

	client := clientOrDefault(z.Client)
	base := z.BaseURL
	if base == "" {
		base = DefaultZenodoURL
	}
	base = strings.TrimSuffix(base, "/")
	log := zerolog.Ctx(ctx)

	if m := zenodoDOIPattern.FindStringSubmatch(req.DOI); m != nil {
		var rec zenodoRecord
		err := httputil.GetJSON(ctx, client, base+"/records/"+m[1], nil, &rec)
		switch {
		case err == nil:
			return found(z.Name(), z.toRecord(rec, req.DOI))
		case isStatus(err, http.StatusNotFound):
			log.Debug().Str("source", z.Name()).Str("record", m[1]).Msg("direct lookup returned 404, falling back to search")
		default:
			return failure(z.Name(), err)
		}
	}

	for _, q := range []string{req.DOI, `doi:"` + req.DOI + `"`} {
		var res zenodoSearch
		if err := httputil.GetJSON(ctx, client, base+"/records?q="+url.QueryEscape(q), nil, &res); err != nil {
			return failure(z.Name(), err)
		}
		if len(res.Hits.Hits) > 0 {
			return found(z.Name(), z.toRecord(res.Hits.Hits[0], req.DOI))
		}
		log.Debug().Str("source", z.Name()).Str("query", q).Msg("no hits")
	}
	return notFound(z.Name(), "no hits for %s", req.DOI)
}

func (z *Zenodo) toRecord(r zenodoRecord, doi string) types.MetadataRecord {
	names := make([]string, 0, len(r.Metadata.Creators))
	for _, c := range r.Metadata.Creators {
		names = append(names, c.Name)
	}
	return types.MetadataRecord{
		Title:   r.Metadata.Title,
		Authors: joinNonEmpty(names),
		Journal: ZenodoLabel,
		Year:    yearPrefix(r.Metadata.PublicationDate),
		DOI:     doi,
	}
}
