// Package fetcher downloads remote resources over HTTP.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/quill/internal/core/ports"
)

const httpClientTimeout = 30 * time.Second

var _ ports.Fetcher = (*Fetcher)(nil)

// Fetcher implements ports.Fetcher with net/http.
type Fetcher struct {
	httpClient *http.Client
}

// New creates a Fetcher with the default timeout.
func New() *Fetcher {
	return NewWithClient(&http.Client{Timeout: httpClientTimeout})
}

// NewWithClient creates a Fetcher using client.
func NewWithClient(client *http.Client) *Fetcher {
	return &Fetcher{httpClient: client}
}

// Fetch returns the body of url. Any status outside 2xx is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, domain.Annotate(errors.Join(domain.ErrFetchFailed, err), domain.MetaURL, url)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, domain.Annotate(errors.Join(domain.ErrFetchFailed, err), domain.MetaURL, url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.Annotate(
			errors.Join(domain.ErrFetchFailed, fmt.Errorf("unexpected status %s", resp.Status)),
			domain.MetaURL, url,
			domain.MetaStatus, resp.StatusCode,
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.Annotate(errors.Join(domain.ErrFetchFailed, err), domain.MetaURL, url)
	}
	return body, nil
}
