// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve runs the resolution cascade: normalize the input, look up
// PubMed identifiers, try each source in order until one returns a record,
// fall back to Europe PMC when a PMID is known, and backfill identifiers.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/doi-metadata/internal/idconv"
	"github.com/pdiddy/doi-metadata/internal/identifier"
	"github.com/pdiddy/doi-metadata/internal/observability"
	"github.com/pdiddy/doi-metadata/internal/sources"
	"github.com/pdiddy/doi-metadata/pkg/types"
)

var (
	// ErrMalformedInput indicates no DOI could be extracted. No network call
	// is made.
	ErrMalformedInput = errors.New("no DOI found in input")

	// ErrExhaustedSources indicates every source, including the fallback,
	// reported nothing usable.
	ErrExhaustedSources = errors.New("no source returned metadata")
)

// Resolution outcomes used in logs and metrics.
const (
	outcomeSucceeded = "succeeded"
	outcomeMalformed = "malformed"
	outcomeExhausted = "exhausted"
)

// IDResolver looks up auxiliary identifiers for a DOI. Implementations never
// fail; unknown IDs come back empty.
type IDResolver interface {
	Resolve(ctx context.Context, doi string) types.AuxiliaryIDs
}

// Attempt is one entry of the cascade trace.
type Attempt struct {
	Source   string
	Status   sources.Status
	Err      error
	Duration time.Duration
}

// Result is the full account of one run.
type Result struct {
	Input string
	DOI   string
	IDs   types.AuxiliaryIDs

	// Record is nil unless the run succeeded.
	Record *types.MetadataRecord

	// Source names the adapter that produced Record.
	Source string

	Attempts []Attempt
}

// Resolver holds the cascade configuration.
type Resolver struct {
	// Normalize extracts the canonical DOI. Defaults to identifier.Normalize.
	Normalize func(string) (string, bool)

	// IDs is consulted once per run. Nil skips cross-referencing.
	IDs IDResolver

	// Sources are tried in order; the first Found wins.
	Sources []sources.Adapter

	// Fallback runs only after every source failed and a PMID is known.
	Fallback sources.Adapter

	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

// New returns a Resolver wired to the public services described by cfg.
func New(cfg types.ResolveConfig, client *http.Client, logger zerolog.Logger, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		Normalize: identifier.Normalize,
		IDs: &idconv.Client{
			HTTP:    client,
			BaseURL: cfg.Sources.IDConv.BaseURL,
			Tool:    cfg.NCBITool,
			Email:   cfg.ContactEmail,
			APIKey:  cfg.NCBIAPIKey,
			Timeout: cfg.SourceTimeout,
		},
		Sources: DefaultSources(cfg, client),
		Fallback: &sources.EuropePMC{
			Client:  client,
			BaseURL: cfg.Sources.EuropePMC.BaseURL,
			Timeout: cfg.SourceTimeout,
		},
		Logger:  logger,
		Metrics: metrics,
	}
}

// DefaultSources returns the fixed cascade: CrossRef, Zenodo, arXiv, bioRxiv,
// medRxiv.
func DefaultSources(cfg types.ResolveConfig, client *http.Client) []sources.Adapter {
	t := cfg.SourceTimeout
	return []sources.Adapter{
		&sources.CrossRef{
			Client:    client,
			BaseURL:   cfg.Sources.CrossRef.BaseURL,
			UserAgent: cfg.UserAgent,
			Mailto:    cfg.ContactEmail,
			Timeout:   t,
		},
		&sources.Zenodo{Client: client, BaseURL: cfg.Sources.Zenodo.BaseURL, Timeout: t},
		&sources.Arxiv{Client: client, BaseURL: cfg.Sources.Arxiv.BaseURL, Timeout: t},
		sources.NewBioRxiv(client, cfg.Sources.Rxiv.BaseURL, t),
		sources.NewMedRxiv(client, cfg.Sources.Rxiv.BaseURL, t),
	}
}

// Run resolves input into a metadata record. It returns ErrMalformedInput or
// ErrExhaustedSources on failure; per-source problems only appear in the
// attempt trace.
func (r *Resolver) Run(ctx context.Context, input string) (Result, error) {
	res := Result{Input: input}
	log := r.Logger
	ctx = log.WithContext(ctx)

	normalize := r.Normalize
	if normalize == nil {
		normalize = identifier.Normalize
	}
	doi, ok := normalize(input)
	if !ok {
		r.Metrics.ObserveResolution(outcomeMalformed)
		log.Error().Str("input", input).Msg("could not extract a DOI")
		return res, fmt.Errorf("%w: %q", ErrMalformedInput, input)
	}
	res.DOI = doi
	log.Info().Str("doi", doi).Msg("normalized")

	if r.IDs != nil {
		res.IDs = r.IDs.Resolve(ctx, doi)
		r.Metrics.ObserveIDs(res.IDs.PMID, res.IDs.PMCID)
		log.Info().Str("pmid", res.IDs.PMID).Str("pmcid", res.IDs.PMCID).Msg("cross-referenced")
	}

	req := sources.Request{DOI: doi, IDs: res.IDs}
	for _, a := range r.Sources {
		if out := r.try(ctx, &res, a, req); out.Found() {
			return r.succeed(res, a.Name(), out.Record), nil
		}
	}

	if r.Fallback != nil {
		if res.IDs.PMID == "" {
			r.record(&res, Attempt{
				Source: r.Fallback.Name(),
				Status: sources.StatusSkipped,
				Err:    errors.New("no PMID from cross-reference"),
			})
		} else if out := r.try(ctx, &res, r.Fallback, req); out.Found() {
			return r.succeed(res, r.Fallback.Name(), out.Record), nil
		}
	}

	r.Metrics.ObserveResolution(outcomeExhausted)
	log.Error().Str("doi", doi).Int("attempts", len(res.Attempts)).Msg("no source returned metadata")
	return res, fmt.Errorf("%w for %s", ErrExhaustedSources, doi)
}

// try runs one adapter and appends its attempt to the trace.
func (r *Resolver) try(ctx context.Context, res *Result, a sources.Adapter, req sources.Request) sources.Outcome {
	start := time.Now()
	out := a.Fetch(ctx, req)
	elapsed := time.Since(start)

	status := out.Status
	if status == sources.StatusFound && !out.Found() {
		status = sources.StatusNotFound
		out = sources.Outcome{Status: status, Err: fmt.Errorf("%s: record has no title: %w", a.Name(), sources.ErrNotFound)}
	}
	r.record(res, Attempt{Source: a.Name(), Status: status, Err: out.Err, Duration: elapsed})
	return out
}

func (r *Resolver) record(res *Result, at Attempt) {
	res.Attempts = append(res.Attempts, at)
	r.Metrics.ObserveAttempt(at.Source, at.Status.String(), at.Duration)

	ev := r.Logger.Info()
	if at.Status == sources.StatusUnavailable {
		ev = r.Logger.Warn()
	}
	ev = ev.Str("source", at.Source).Str("outcome", at.Status.String()).Dur("elapsed", at.Duration)
	if at.Err != nil {
		ev = ev.Str("reason", at.Err.Error())
	}
	ev.Msg("source attempt")
}

func (r *Resolver) succeed(res Result, source string, rec *types.MetadataRecord) Result {
	out := *rec
	out.DOI = res.DOI
	Backfill(&out, res.IDs)
	res.Record = &out
	res.Source = source
	r.Metrics.ObserveResolution(outcomeSucceeded)
	r.Logger.Info().Str("source", source).Str("title", out.Title).Msg("resolved")
	return res
}

// Backfill copies PMID and PMCID from ids into rec where rec has none. It
// never overwrites a value the source supplied.
func Backfill(rec *types.MetadataRecord, ids types.AuxiliaryIDs) {
	if rec == nil {
		return
	}
	if rec.PMID == "" {
		rec.PMID = ids.PMID
	}
	if rec.PMCID == "" {
		rec.PMCID = ids.PMCID
	}
}
