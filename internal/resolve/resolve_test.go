// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/doi-metadata/internal/observability"
	"github.com/pdiddy/doi-metadata/internal/sources"
	"github.com/pdiddy/doi-metadata/pkg/types"
)

// fakeAdapter returns a fixed outcome and counts calls.
type fakeAdapter struct {
	name  string
	out   sources.Outcome
	calls int
	got   sources.Request
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(_ context.Context, req sources.Request) sources.Outcome {
	f.calls++
	f.got = req
	return f.out
}

func foundAdapter(name string, rec types.MetadataRecord) *fakeAdapter {
	return &fakeAdapter{name: name, out: sources.Outcome{Status: sources.StatusFound, Record: &rec}}
}

func missAdapter(name string) *fakeAdapter {
	return &fakeAdapter{name: name, out: sources.Outcome{
		Status: sources.StatusNotFound,
		Err:    fmt.Errorf("%s: %w", name, sources.ErrNotFound),
	}}
}

type fakeIDs struct {
	ids   types.AuxiliaryIDs
	calls int
}

func (f *fakeIDs) Resolve(_ context.Context, _ string) types.AuxiliaryIDs {
	f.calls++
	return f.ids
}

func chain() []*fakeAdapter {
	return []*fakeAdapter{
		missAdapter("crossref"),
		missAdapter("zenodo"),
		missAdapter("arxiv"),
		missAdapter("biorxiv"),
		missAdapter("medrxiv"),
	}
}

func newResolver(adapters []*fakeAdapter, ids *fakeIDs, fallback *fakeAdapter) *Resolver {
	srcs := make([]sources.Adapter, len(adapters))
	for i, a := range adapters {
		srcs[i] = a
	}
	r := &Resolver{IDs: ids, Sources: srcs, Logger: zerolog.Nop()}
	if fallback != nil {
		r.Fallback = fallback
	}
	return r
}

func TestRun_MalformedInputMakesNoCalls(t *testing.T) {
	adapters := chain()
	ids := &fakeIDs{}
	fb := missAdapter("europepmc")
	r := newResolver(adapters, ids, fb)

	res, err := r.Run(context.Background(), "not a doi at all")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedInput))
	assert.Nil(t, res.Record)
	assert.Empty(t, res.Attempts)
	assert.Equal(t, 0, ids.calls)
	assert.Equal(t, 0, fb.calls)
	for _, a := range adapters {
		assert.Equal(t, 0, a.calls, a.name)
	}
}

func TestRun_ShortCircuits(t *testing.T) {
	adapters := chain()
	adapters[1] = foundAdapter("zenodo", types.MetadataRecord{Title: "Dataset", Journal: "Zenodo", DOI: "10.5281/zenodo.1"})
	r := newResolver(adapters, &fakeIDs{}, missAdapter("europepmc"))

	res, err := r.Run(context.Background(), "https://doi.org/10.5281/zenodo.1")
	require.NoError(t, err)
	require.NotNil(t, res.Record)

	assert.Equal(t, "zenodo", res.Source)
	assert.Equal(t, "Dataset", res.Record.Title)
	assert.Equal(t, 1, adapters[0].calls)
	assert.Equal(t, 1, adapters[1].calls)
	for _, a := range adapters[2:] {
		assert.Equal(t, 0, a.calls, a.name)
	}
	require.Len(t, res.Attempts, 2)
	assert.Equal(t, "crossref", res.Attempts[0].Source)
	assert.Equal(t, sources.StatusNotFound, res.Attempts[0].Status)
	assert.Equal(t, sources.StatusFound, res.Attempts[1].Status)
}

func TestRun_PassesCanonicalDOIAndIDs(t *testing.T) {
	adapters := chain()
	adapters[0] = foundAdapter("crossref", types.MetadataRecord{Title: "T"})
	ids := &fakeIDs{ids: types.AuxiliaryIDs{PMID: "1", PMCID: "PMC2"}}
	r := newResolver(adapters, ids, nil)

	res, err := r.Run(context.Background(), " doi:10.1038/abc. ")
	require.NoError(t, err)
	assert.Equal(t, "10.1038/abc", adapters[0].got.DOI)
	assert.Equal(t, ids.ids, adapters[0].got.IDs)
	assert.Equal(t, "10.1038/abc", res.Record.DOI)
	assert.Equal(t, 1, ids.calls)
}

func TestRun_UmbrellaTriesBothPreprintServers(t *testing.T) {
	adapters := chain()
	adapters[0].out = sources.Outcome{Status: sources.StatusAmbiguous, Err: sources.ErrSourceAmbiguous}
	adapters[4] = foundAdapter("medrxiv", types.MetadataRecord{Title: "Clinical preprint", Journal: "MedRxiv (Preprint)"})
	r := newResolver(adapters, &fakeIDs{}, nil)

	res, err := r.Run(context.Background(), "10.1101/2020.05.05.20091234")
	require.NoError(t, err)
	assert.Equal(t, "medrxiv", res.Source)
	assert.Equal(t, 1, adapters[3].calls)
	assert.Equal(t, sources.StatusAmbiguous, res.Attempts[0].Status)
	assert.Len(t, res.Attempts, 5)
}

func TestRun_FallbackOnlyWithPMID(t *testing.T) {
	t.Run("no PMID skips fallback", func(t *testing.T) {
		fb := foundAdapter("europepmc", types.MetadataRecord{Title: "T"})
		r := newResolver(chain(), &fakeIDs{ids: types.AuxiliaryIDs{PMCID: "PMC1"}}, fb)

		res, err := r.Run(context.Background(), "10.1000/x")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrExhaustedSources))
		assert.Equal(t, 0, fb.calls)
		require.Len(t, res.Attempts, 6)
		assert.Equal(t, sources.StatusSkipped, res.Attempts[5].Status)
	})

	t.Run("PMID runs fallback", func(t *testing.T) {
		fb := foundAdapter("europepmc", types.MetadataRecord{Title: "T", PMID: "42", PMCID: "PMC9"})
		r := newResolver(chain(), &fakeIDs{ids: types.AuxiliaryIDs{PMID: "42"}}, fb)

		res, err := r.Run(context.Background(), "10.1000/x")
		require.NoError(t, err)
		assert.Equal(t, 1, fb.calls)
		assert.Equal(t, "europepmc", res.Source)
		assert.Equal(t, "PMC9", res.Record.PMCID)
	})

	t.Run("fallback miss is exhausted", func(t *testing.T) {
		fb := missAdapter("europepmc")
		r := newResolver(chain(), &fakeIDs{ids: types.AuxiliaryIDs{PMID: "42"}}, fb)

		res, err := r.Run(context.Background(), "10.1000/x")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrExhaustedSources))
		assert.Nil(t, res.Record)
		assert.Len(t, res.Attempts, 6)
	})
}

func TestRun_UntitledFoundIsTreatedAsMiss(t *testing.T) {
	adapters := chain()
	adapters[0] = &fakeAdapter{name: "crossref", out: sources.Outcome{Status: sources.StatusFound, Record: &types.MetadataRecord{}}}
	adapters[2] = foundAdapter("arxiv", types.MetadataRecord{Title: "T"})
	r := newResolver(adapters, &fakeIDs{}, nil)

	res, err := r.Run(context.Background(), "10.1000/x")
	require.NoError(t, err)
	assert.Equal(t, "arxiv", res.Source)
	assert.Equal(t, sources.StatusNotFound, res.Attempts[0].Status)
}

func TestRun_BackfillsIDs(t *testing.T) {
	adapters := chain()
	adapters[0] = foundAdapter("crossref", types.MetadataRecord{Title: "T"})
	r := newResolver(adapters, &fakeIDs{ids: types.AuxiliaryIDs{PMID: "1", PMCID: "PMC2"}}, nil)

	res, err := r.Run(context.Background(), "10.1000/x")
	require.NoError(t, err)
	assert.Equal(t, "1", res.Record.PMID)
	assert.Equal(t, "PMC2", res.Record.PMCID)
}

func TestRun_RecordsMetricsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	m := observability.NewMetrics()
	adapters := chain()
	adapters[1] = foundAdapter("zenodo", types.MetadataRecord{Title: "T"})
	r := newResolver(adapters, &fakeIDs{}, nil)
	r.Logger = zerolog.New(&buf)
	r.Metrics = m

	_, err := r.Run(context.Background(), "10.1000/x")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceAttempts.WithLabelValues("crossref", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceAttempts.WithLabelValues("zenodo", "found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("succeeded")))

	logs := buf.String()
	assert.Equal(t, 2, strings.Count(logs, `"message":"source attempt"`))
	assert.Contains(t, logs, `"outcome":"not_found"`)
	assert.Contains(t, logs, `"reason":"crossref: record not found"`)
}

func TestBackfill(t *testing.T) {
	tests := []struct {
		name string
		rec  types.MetadataRecord
		ids  types.AuxiliaryIDs
		want types.MetadataRecord
	}{
		{
			name: "fills empty fields",
			rec:  types.MetadataRecord{Title: "T"},
			ids:  types.AuxiliaryIDs{PMID: "1", PMCID: "PMC1"},
			want: types.MetadataRecord{Title: "T", PMID: "1", PMCID: "PMC1"},
		},
		{
			name: "never overwrites",
			rec:  types.MetadataRecord{Title: "T", PMID: "9", PMCID: "PMC9"},
			ids:  types.AuxiliaryIDs{PMID: "1", PMCID: "PMC1"},
			want: types.MetadataRecord{Title: "T", PMID: "9", PMCID: "PMC9"},
		},
		{
			name: "partial",
			rec:  types.MetadataRecord{Title: "T", PMID: "9"},
			ids:  types.AuxiliaryIDs{PMID: "1", PMCID: "PMC1"},
			want: types.MetadataRecord{Title: "T", PMID: "9", PMCID: "PMC1"},
		},
		{
			name: "empty ids leave record alone",
			rec:  types.MetadataRecord{Title: "T"},
			want: types.MetadataRecord{Title: "T"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			Backfill(&rec, tt.ids)
			assert.Equal(t, tt.want, rec)
		})
	}
	assert.NotPanics(t, func() { Backfill(nil, types.AuxiliaryIDs{PMID: "1"}) })
}

func TestDefaultSources_Order(t *testing.T) {
	srcs := DefaultSources(types.ResolveConfig{}, http.DefaultClient)
	names := make([]string, len(srcs))
	for i, s := range srcs {
		names[i] = s.Name()
	}
	assert.Equal(t, []string{"crossref", "zenodo", "arxiv", "biorxiv", "medrxiv"}, names)
}

// TestNew_EndToEnd wires the real adapters against one stub server: CrossRef
// misses, arXiv answers, and the converter supplies a PMCID for backfill.
func TestNew_EndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/idconv/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"records":[{"pmcid":"PMC123"}]}`))
	})
	mux.HandleFunc("/crossref/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/zenodo/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"hits":{"hits":[]}}`))
	})
	mux.HandleFunc("/arxiv", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"><entry><id>http://arxiv.org/abs/2101.00001</id><title>Paper</title><published>2021-01-01T00:00:00Z</published><author><name>A B</name></author></entry></feed>`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	cfg := types.ResolveConfig{
		HTTPConfig: types.HTTPConfig{RateLimit: -1},
		Sources: types.SourcesConfig{
			IDConv:   types.Endpoint{BaseURL: ts.URL + "/idconv/"},
			CrossRef: types.Endpoint{BaseURL: ts.URL + "/crossref"},
			Zenodo:   types.Endpoint{BaseURL: ts.URL + "/zenodo"},
			Arxiv:    types.Endpoint{BaseURL: ts.URL + "/arxiv"},
		},
	}
	r := New(cfg, ts.Client(), zerolog.Nop(), nil)

	res, err := r.Run(context.Background(), "https://doi.org/10.48550/arXiv.2101.00001")
	require.NoError(t, err)
	assert.Equal(t, "arxiv", res.Source)
	assert.Equal(t, types.MetadataRecord{
		Title:   "Paper",
		Authors: "A B",
		Journal: "arXiv (Preprint)",
		Year:    "2021",
		PMCID:   "PMC123",
		DOI:     "10.48550/arXiv.2101.00001",
	}, *res.Record)
	require.Len(t, res.Attempts, 3)
}
