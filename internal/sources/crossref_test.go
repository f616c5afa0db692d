// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crossrefServer(t *testing.T, status int, body string) (*httptest.Server, *string, *string) {
	t.Helper()
	var path, ua string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		ua = r.Header.Get("User-Agent")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, &path, &ua
}

func TestCrossRef_Found(t *testing.T) {
	body := `{"message":{
		"title":["Deep learning for proteins"],
		"author":[{"given":"Ada","family":"Lovelace"},{"given":"","family":""},{"family":"Turing"}],
		"container-title":["Nature"],
		"publisher":"Springer",
		"published-print":{"date-parts":[[2021,5,1]]},
		"created":{"date-parts":[[2020,1,1]]}
	}}`
	ts, path, ua := crossrefServer(t, http.StatusOK, body)

	c := &CrossRef{Client: testClient(), BaseURL: ts.URL, UserAgent: "doi-metadata/test", Mailto: "me@example.com"}
	out := c.Fetch(context.Background(), Request{DOI: "10.1038/abc"})

	require.Equal(t, StatusFound, out.Status, "%v", out.Err)
	assert.Equal(t, "/works/10.1038/abc", *path)
	assert.Equal(t, "doi-metadata/test (mailto:me@example.com)", *ua)
	assert.Equal(t, "Deep learning for proteins", out.Record.Title)
	assert.Equal(t, "Lovelace Ada, Turing", out.Record.Authors)
	assert.Equal(t, "Nature", out.Record.Journal)
	assert.Equal(t, "2021", out.Record.Year)
	assert.Equal(t, "10.1038/abc", out.Record.DOI)
	assert.Empty(t, out.Record.PMID)
}

func TestCrossRef_MissingTitle(t *testing.T) {
	ts, _, _ := crossrefServer(t, http.StatusOK, `{"message":{"title":[],"publisher":"X"}}`)
	c := &CrossRef{Client: testClient(), BaseURL: ts.URL}
	out := c.Fetch(context.Background(), Request{DOI: "10.1038/abc"})
	assert.Equal(t, StatusNotFound, out.Status)
	assert.Nil(t, out.Record)
}

func TestCrossRef_NotRegistered(t *testing.T) {
	ts, _, _ := crossrefServer(t, http.StatusNotFound, `Resource not found.`)
	c := &CrossRef{Client: testClient(), BaseURL: ts.URL}
	out := c.Fetch(context.Background(), Request{DOI: "10.1038/abc"})
	assert.Equal(t, StatusNotFound, out.Status)
	assert.True(t, errors.Is(out.Err, ErrNotFound))
}

func TestCrossRef_ServerError(t *testing.T) {
	ts, _, _ := crossrefServer(t, http.StatusInternalServerError, ``)
	c := &CrossRef{Client: testClient(), BaseURL: ts.URL}
	out := c.Fetch(context.Background(), Request{DOI: "10.1038/abc"})
	assert.Equal(t, StatusUnavailable, out.Status)
	var se *StatusError
	require.True(t, errors.As(out.Err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
}

func TestCrossRef_MalformedBody(t *testing.T) {
	ts, _, _ := crossrefServer(t, http.StatusOK, `{"message":`)
	c := &CrossRef{Client: testClient(), BaseURL: ts.URL}
	out := c.Fetch(context.Background(), Request{DOI: "10.1038/abc"})
	assert.Equal(t, StatusUnavailable, out.Status)
}

func TestCrossRef_Venue(t *testing.T) {
	tests := []struct {
		name      string
		doi       string
		body      string
		want      string
		wantState Status
	}{
		{
			name:      "institution biorxiv",
			doi:       "10.1101/2020.01.01.111111",
			body:      `{"message":{"title":["T"],"institution":[{"name":"bioRxiv"}],"publisher":"Cold Spring Harbor Laboratory"}}`,
			want:      "BioRxiv (Preprint)",
			wantState: StatusFound,
		},
		{
			name:      "institution medrxiv",
			doi:       "10.1101/2020.01.01.222222",
			body:      `{"message":{"title":["T"],"institution":[{"name":"MedRxiv"}]}}`,
			want:      "MedRxiv (Preprint)",
			wantState: StatusFound,
		},
		{
			name:      "umbrella publisher only is ambiguous",
			doi:       "10.1101/2020.01.01.333333",
			body:      `{"message":{"title":["T"],"publisher":"Cold Spring Harbor Laboratory"}}`,
			wantState: StatusAmbiguous,
		},
		{
			name:      "umbrella with no venue is ambiguous",
			doi:       "10.1101/2020.01.01.444444",
			body:      `{"message":{"title":["T"]}}`,
			wantState: StatusAmbiguous,
		},
		{
			name:      "publisher fallback outside umbrella",
			doi:       "10.5555/abc",
			body:      `{"message":{"title":["T"],"publisher":"Cold Spring Harbor Laboratory"}}`,
			want:      "Cold Spring Harbor Laboratory",
			wantState: StatusFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _, _ := crossrefServer(t, http.StatusOK, tt.body)
			c := &CrossRef{Client: testClient(), BaseURL: ts.URL}
			out := c.Fetch(context.Background(), Request{DOI: tt.doi})
			require.Equal(t, tt.wantState, out.Status, "%v", out.Err)
			if tt.wantState == StatusFound {
				assert.Equal(t, tt.want, out.Record.Journal)
			} else {
				assert.True(t, errors.Is(out.Err, ErrSourceAmbiguous))
				assert.Nil(t, out.Record)
			}
		})
	}
}

func TestCrossRefYear(t *testing.T) {
	tests := []struct {
		name string
		w    crossrefWork
		want string
	}{
		{"print wins", crossrefWork{PublishedPrint: crossrefDate{[][]int{{2019}}}, Created: crossrefDate{[][]int{{2018}}}}, "2019"},
		{"online next", crossrefWork{PublishedOnline: crossrefDate{[][]int{{2020, 2}}}, Created: crossrefDate{[][]int{{2018}}}}, "2020"},
		{"created last", crossrefWork{Created: crossrefDate{[][]int{{2018, 1, 1}}}}, "2018"},
		{"none", crossrefWork{}, ""},
		{"null part", crossrefWork{Created: crossrefDate{[][]int{{0}}}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, crossrefYear(tt.w))
		})
	}
}
