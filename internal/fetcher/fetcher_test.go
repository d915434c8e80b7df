package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAlexSearchSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sources", r.URL.Path)
		assert.Equal(t, "NATURE MEDICINE", r.URL.Query().Get("search"))
		assert.Equal(t, "1", r.URL.Query().Get("per-page"))
		assert.Equal(t, "ops@example.org", r.URL.Query().Get("mailto"))
		w.Write([]byte(`{"results":[{"id":"https://openalex.org/S1","display_name":"Nature Medicine",
			"summary_stats":{"2yr_mean_citedness":58.7,"h_index":560,"i10_index":null}}]}`))
	}))
	defer srv.Close()

	f := NewOpenAlexFetcherWithBaseURL(srv.URL, "ops@example.org")
	rec, err := f.SearchSource(context.Background(), "NATURE MEDICINE")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Nature Medicine", rec.DisplayName)

	v, ok := rec.Stat("2yr_mean_citedness")
	assert.True(t, ok)
	assert.InDelta(t, 58.7, v, 1e-9)

	_, ok = rec.Stat("i10_index")
	assert.False(t, ok)
	_, ok = rec.Stat("missing")
	assert.False(t, ok)
}

func TestOpenAlexEmptyAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search") == "BOOM" {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("down"))
			return
		}
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	f := NewOpenAlexFetcherWithBaseURL(srv.URL, "")
	rec, err := f.SearchSource(context.Background(), "NOTHING")
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = f.SearchSource(context.Background(), "BOOM")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Contains(t, err.Error(), "openalex returned status 503")
}

func TestTavilyFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		var req tavilyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "key", req.APIKey)
		assert.True(t, req.IncludeAnswer)
		w.Write([]byte(`{"answer":"The impact factor is 12.3.","results":[{"title":"Journal X","url":"https://x","content":"IF 2023: 12.3"}]}`))
	}))
	defer srv.Close()

	page, err := NewTavilyFetcherWithBaseURL("key", srv.URL).FetchPage(context.Background(), "X journal impact factor")
	require.NoError(t, err)
	assert.Contains(t, page, "The impact factor is 12.3.")
	assert.Contains(t, page, "Journal X")
}

func TestTavilyStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewTavilyFetcherWithBaseURL("bad", srv.URL).FetchPage(context.Background(), "q")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
}

func TestFirecrawlFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/scrape", r.URL.Path)
		assert.Equal(t, "Bearer fc", r.Header.Get("Authorization"))
		var req firecrawlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, strings.HasPrefix(req.URL, "https://search.test/?q=NATURE+journal"))
		w.Write([]byte(`{"success":true,"data":{"markdown":"# Nature\nImpact Factor: 48.5"}}`))
	}))
	defer srv.Close()

	f := NewFirecrawlFetcherWithBaseURL("fc", srv.URL).WithSearchURL("https://search.test/?q=%s")
	page, err := f.FetchPage(context.Background(), "NATURE journal impact factor")
	require.NoError(t, err)
	assert.Contains(t, page, "Impact Factor: 48.5")
}

func TestFirecrawlFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"quota exceeded"}`))
	}))
	defer srv.Close()

	_, err := NewFirecrawlFetcherWithBaseURL("fc", srv.URL).FetchPage(context.Background(), "q")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestWebSearchFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "THE LANCET journal impact factor", r.URL.Query().Get("q"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Write([]byte("<html><body><p>Impact Factor</p><p>168.9</p></body></html>"))
	}))
	defer srv.Close()

	page, err := NewWebSearchFetcher(srv.URL+"/?q=%s").FetchPage(context.Background(), "THE LANCET journal impact factor")
	require.NoError(t, err)
	assert.Equal(t, "Impact Factor 168.9", PageText(page))
}

func TestPageText(t *testing.T) {
	html := `<!DOCTYPE html><html><head><title>t</title><style>.x{}</style></head>
<body><script>var a = 1;</script><div>Journal</div><table><tr><td>Impact Factor</td><td>9.1</td></tr></table></body></html>`
	assert.Equal(t, "Journal Impact Factor 9.1", PageText(html))

	assert.Equal(t, "# plain markdown", PageText("# plain markdown"))
}

const scholarHTML = `<html><body>
<div class="gs_r gs_or gs_scl"><div class="gs_ri">
  <h3 class="gs_rt"><span class="gs_ctc"><span class="gs_ct1">[HTML]</span></span>
    <a href="https://example.org/a">Deep learning for <b>imaging</b></a></h3>
  <div class="gs_a">J Smith, A Doe - Nature medicine, 2020 - nature.com</div>
  <div class="gs_fl"><a href="#">Save</a><a href="/scholar?cites=1">Cited by 1234</a></div>
</div></div>
<div class="gs_r gs_or gs_scl"><div class="gs_ri">
  <h3 class="gs_rt">A book without link</h3>
  <div class="gs_a">K Lee - 2019 - Springer</div>
</div></div>
<div class="gs_r"><div class="gs_ri"><h3 class="gs_rt"></h3></div></div>
</body></html>`

func TestScholarParser(t *testing.T) {
	records, err := NewScholarParser().Parse(strings.NewReader(scholarHTML))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Deep learning for imaging", first.Title)
	assert.Equal(t, "https://example.org/a", first.URL)
	assert.Equal(t, []string{"J Smith", "A Doe"}, first.Authors)
	assert.Equal(t, "Nature medicine", first.Venue)
	assert.Equal(t, 2020, first.Year)
	assert.Equal(t, 1234, first.Citations)

	second := records[1]
	assert.Equal(t, "", second.Venue)
	assert.Equal(t, 2019, second.Year)
	assert.Equal(t, 0, second.Citations)
}

func TestParseByline(t *testing.T) {
	authors, venue, year := parseByline("A Author and B Author - Proceedings of the …, 2021 - ieeexplore.ieee.org")
	assert.Equal(t, []string{"A Author", "B Author"}, authors)
	assert.Equal(t, "Proceedings of the", venue)
	assert.Equal(t, 2021, year)
}
