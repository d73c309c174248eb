package photos

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anoixa/gphotos-grid/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Success(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		_, _ = w.Write([]byte(albumBody("u1")))
	}))
	defer srv.Close()

	latency := metrics.NewLatencyTracker(0.01)
	f := NewHTTPFetcher(FetcherConfig{Timeout: time.Second, UserAgent: "gphotos-grid/test"}, latency)

	body, ok := f.Fetch(context.Background(), srv.URL)
	require.True(t, ok)
	assert.Equal(t, albumBody("u1"), body)
	assert.Equal(t, "gphotos-grid/test", gotUA)

	stats, err := latency.GetStats("fetch")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Count)
}

func TestHTTPFetcher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(FetcherConfig{Timeout: time.Second}, nil)
	body, ok := f.Fetch(context.Background(), srv.URL)
	assert.False(t, ok)
	assert.Empty(t, body)
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := NewHTTPFetcher(FetcherConfig{Timeout: 50 * time.Millisecond}, nil)
	start := time.Now()
	_, ok := f.Fetch(context.Background(), srv.URL)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHTTPFetcher_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewHTTPFetcher(FetcherConfig{Timeout: time.Second}, nil)
	_, ok := f.Fetch(ctx, srv.URL)
	assert.False(t, ok)
}

func TestHTTPFetcher_TruncatesLargeBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(FetcherConfig{Timeout: time.Second, MaxBodyBytes: 10}, nil)
	body, ok := f.Fetch(context.Background(), srv.URL)
	require.True(t, ok)
	assert.Len(t, body, 10)
}

func TestHTTPFetcher_InvalidURL(t *testing.T) {
	f := NewHTTPFetcher(FetcherConfig{Timeout: time.Second}, nil)
	_, ok := f.Fetch(context.Background(), "://bad")
	assert.False(t, ok)
}

func TestHTTPFetcher_RefusesRedirectToPlainHTTP(t *testing.T) {
	var plainHits int
	plain := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		plainHits++
		_, _ = w.Write([]byte(albumBody("u1")))
	}))
	defer plain.Close()

	secure := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, plain.URL+"/latest/meta-data/", http.StatusFound)
	}))
	defer secure.Close()

	f := NewHTTPFetcher(FetcherConfig{Timeout: time.Second}, nil)
	f.client.Transport = secure.Client().Transport

	body, ok := f.Fetch(context.Background(), secure.URL)
	assert.False(t, ok)
	assert.Empty(t, body)
	assert.Zero(t, plainHits)
}

func TestHTTPFetcher_FollowsHTTPSRedirect(t *testing.T) {
	var target string
	secure := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/share/album" {
			_, _ = w.Write([]byte(albumBody("u1")))
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}))
	defer secure.Close()
	target = secure.URL + "/share/album"

	f := NewHTTPFetcher(FetcherConfig{Timeout: time.Second}, nil)
	f.client.Transport = secure.Client().Transport

	body, ok := f.Fetch(context.Background(), secure.URL+"/short")
	require.True(t, ok)
	assert.Equal(t, albumBody("u1"), body)
}

func TestCheckRedirect(t *testing.T) {
	httpsReq := httptest.NewRequest(http.MethodGet, "https://photos.google.com/share/x", nil)
	plainReq := httptest.NewRequest(http.MethodGet, "http://169.254.169.254/", nil)

	assert.NoError(t, checkRedirect(httpsReq, []*http.Request{httpsReq}))
	assert.True(t, errors.Is(checkRedirect(plainReq, []*http.Request{httpsReq}), ErrInsecureRedirect))

	via := make([]*http.Request, maxRedirects)
	assert.Error(t, checkRedirect(httpsReq, via))
}
