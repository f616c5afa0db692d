// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package idconv translates a DOI into PubMed identifiers using the NCBI PMC
// ID converter. Lookups never fail the caller: any problem yields empty IDs
// and a warning.
package idconv

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/doi-metadata/internal/httputil"
	"github.com/pdiddy/doi-metadata/pkg/types"
)

// DefaultURL is the NCBI PMC ID converter endpoint.
const DefaultURL = "https://www.ncbi.nlm.nih.gov/pmc/utils/idconv/v1.0/"

// DefaultTool is reported in the tool parameter NCBI asks callers to send.
const DefaultTool = "doi-metadata"

// DefaultTimeout bounds one lookup when Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Client queries the ID converter.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Tool    string
	Email   string
	APIKey  string
	Timeout time.Duration
}

type response struct {
	Status  string `json:"status"`
	Records []struct {
		PMID   flexString `json:"pmid"`
		PMCID  flexString `json:"pmcid"`
		Status string     `json:"status"`
		ErrMsg string     `json:"errmsg"`
	} `json:"records"`
}

// flexString accepts a JSON string or number. The converter has served PMIDs
// in both shapes.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// Resolve returns the PMID and PMCID registered for doi. Transport errors,
// non-200 statuses, undecodable bodies, and empty record lists all produce
// empty IDs.
func (c *Client) Resolve(ctx context.Context, doi string) types.AuxiliaryIDs {
	log := zerolog.Ctx(ctx)

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	base := c.BaseURL
	if base == "" {
		base = DefaultURL
	}
	tool := c.Tool
	if tool == "" {
		tool = DefaultTool
	}

	params := url.Values{}
	params.Set("tool", tool)
	if c.Email != "" {
		params.Set("email", c.Email)
	}
	if c.APIKey != "" {
		params.Set("api_key", c.APIKey)
	}
	params.Set("ids", doi)
	params.Set("format", "json")

	client := c.HTTP
	if client == nil {
		client = httputil.NewClient(types.HTTPConfig{})
	}

	var res response
	if err := httputil.GetJSON(ctx, client, base+"?"+params.Encode(), nil, &res); err != nil {
		log.Warn().Err(err).Str("doi", doi).Msg("PMC ID converter failed")
		return types.AuxiliaryIDs{}
	}
	if len(res.Records) == 0 {
		log.Debug().Str("doi", doi).Msg("PMC ID converter returned no records")
		return types.AuxiliaryIDs{}
	}

	rec := res.Records[0]
	return types.AuxiliaryIDs{
		PMID:  strings.TrimSpace(string(rec.PMID)),
		PMCID: strings.TrimSpace(string(rec.PMCID)),
	}
}
