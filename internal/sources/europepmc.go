// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/doi-metadata/internal/httputil"
	"github.com/pdiddy/doi-metadata/pkg/types"
)

// DefaultEuropePMCURL is the Europe PMC REST API.
const DefaultEuropePMCURL = "https://www.ebi.ac.uk/europepmc/webservices/rest"

// EuropePMC looks a record up by PMID. It is the last resort of the cascade.
type EuropePMC struct {
	Client  *http.Client
	BaseURL string
	Timeout time.Duration
}

type europePMCResponse struct {
	ResultList struct {
		Result []europePMCResult `json:"result"`
	} `json:"resultList"`
}

type europePMCResult struct {
	PMID         string `json:"pmid"`
	PMCID        string `json:"pmcid"`
	Title        string `json:"title"`
	AuthorString string `json:"authorString"`
	PubYear      string `json:"pubYear"`
	AuthorList   struct {
		Author []struct {
			FirstName string `json:"firstName"`
			LastName  string `json:"lastName"`
		} `json:"author"`
	} `json:"authorList"`
	JournalInfo struct {
		Journal struct {
			Title string `json:"title"`
		} `json:"journal"`
	} `json:"journalInfo"`
}

// Name implements Adapter.
func (e *EuropePMC) Name() string { return "europepmc" }

// Fetch implements Adapter. Without a PMID the adapter is skipped and makes
// no request.
func (e *EuropePMC) Fetch(ctx context.Context, req Request) (out Outcome) {
	defer guard(e.Name(), &out)

	pmid := strings.TrimSpace(req.IDs.PMID)
	if pmid == "" {
		return skipped(e.Name(), "no PMID")
	}

	ctx, cancel := bounded(ctx, e.Timeout)
	defer cancel()

	base := e.BaseURL
	if base == "" {
		base = DefaultEuropePMCURL
	}

	params := url.Values{}
	params.Set("query", "ext_id:"+pmid+" src:med")
	params.Set("format", "json")
	params.Set("resultType", "core")

	var res europePMCResponse
	u := strings.TrimSuffix(base, "/") + "/search?" + params.Encode()
	if err := httputil.GetJSON(ctx, clientOrDefault(e.Client), u, nil, &res); err != nil {
		return failure(e.Name(), err)
	}
	if len(res.ResultList.Result) == 0 {
		return notFound(e.Name(), "no results for PMID %s", pmid)
	}

	item := res.ResultList.Result[0]
	authors := item.AuthorString
	if len(item.AuthorList.Author) > 0 {
		names := make([]string, 0, len(item.AuthorList.Author))
		for _, a := range item.AuthorList.Author {
			names = append(names, strings.TrimSpace(a.LastName+" "+a.FirstName))
		}
		authors = joinNonEmpty(names)
	}

	return found(e.Name(), types.MetadataRecord{
		Title:   item.Title,
		Authors: authors,
		Journal: item.JournalInfo.Journal.Title,
		Year:    item.PubYear,
		PMID:    item.PMID,
		PMCID:   item.PMCID,
		DOI:     req.DOI,
	})
}
