package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/quill/internal/adapters/fetcher"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/oauth.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"clientId":"abc"}`))
	}))
	defer srv.Close()

	body, err := fetcher.New().Fetch(context.Background(), srv.URL+"/oauth.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"clientId":"abc"}`, string(body))
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	url := srv.URL + "/oauth.json"
	_, err := fetcher.New().Fetch(context.Background(), url)
	require.ErrorIs(t, err, domain.ErrFetchFailed)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, url, zErr.Metadata()[domain.MetaURL])
	assert.Equal(t, http.StatusNotFound, zErr.Metadata()[domain.MetaStatus])
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	f := fetcher.NewWithClient(&http.Client{Timeout: 50 * time.Millisecond})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, domain.ErrFetchFailed)
}

func TestFetch_InvalidURL(t *testing.T) {
	_, err := fetcher.New().Fetch(context.Background(), "://missing-scheme")
	require.ErrorIs(t, err, domain.ErrFetchFailed)
}

func TestFetch_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.New().Fetch(ctx, srv.URL)
	require.ErrorIs(t, err, domain.ErrFetchFailed)
	require.ErrorIs(t, err, context.Canceled)
}
