// Package fetch provides the HTTP retrieval collaborator for URL inputs
package fetch

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/docchunk/docchunk/pkg/errors"
	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/logger"
	"github.com/docchunk/docchunk/pkg/types"
)

// FetcherConfig holds HTTP client settings
type FetcherConfig struct {
	// Timeout bounds a single request; zero means no client-side timeout
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	// UserAgent is sent on every request
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DefaultFetcherConfig returns the default fetcher configuration
func DefaultFetcherConfig() *FetcherConfig {
	return &FetcherConfig{
		Timeout:   30 * time.Second,
		UserAgent: "DocChunk/1.0",
	}
}

// HTTPFetcher retrieves remote documents over HTTP(S). A request is
// attempted exactly once; failures and non-success responses surface
// to the caller as fetch errors.
type HTTPFetcher struct {
	client *resty.Client
	logger interfaces.Logger
}

// NewHTTPFetcher creates a fetcher with the given configuration
func NewHTTPFetcher(config *FetcherConfig, log interfaces.Logger) *HTTPFetcher {
	if config == nil {
		config = DefaultFetcherConfig()
	}
	if log == nil {
		log = logger.NewLogger()
	}

	client := resty.New()
	client.SetTimeout(config.Timeout)
	client.SetHeader("User-Agent", config.UserAgent)
	client.SetRetryCount(0)

	return &HTTPFetcher{
		client: client,
		logger: log,
	}
}

// Fetch retrieves the body of a URL as text
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, err := f.FetchBytes(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchBytes retrieves the raw body of a URL
func (f *HTTPFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	f.logger.Debug("fetching document", map[string]interface{}{"url": url})

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, requestScoped(ctx, errors.NewFetchError(url, err))
	}
	if resp.IsError() {
		return nil, requestScoped(ctx, errors.NewBadStatusError(url, resp.StatusCode()))
	}

	f.logger.Debug("fetched document", map[string]interface{}{
		"url":   url,
		"bytes": len(resp.Body()),
	})
	return resp.Body(), nil
}

// requestScoped attaches the caller's request ID to a fetch error when
// the context carries one
func requestScoped(ctx context.Context, err *errors.DocChunkError) error {
	if reqCtx := types.GetRequestContext(ctx); reqCtx.RequestID != "" {
		return err.WithRequestID(reqCtx.RequestID)
	}
	return err
}

var _ interfaces.Fetcher = (*HTTPFetcher)(nil)
