package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchunk/docchunk/pkg/errors"
	"github.com/docchunk/docchunk/pkg/logger"
	"github.com/docchunk/docchunk/pkg/types"
)

func TestHTTPFetcher(t *testing.T) {
	t.Run("returns the response body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html><body>hello</body></html>"))
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(nil, logger.NewNopLogger())
		body, err := fetcher.Fetch(t.Context(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><body>hello</body></html>", body)
	})

	t.Run("FetchBytes returns raw bytes", func(t *testing.T) {
		payload := []byte{0x25, 0x50, 0x44, 0x46, 0x00}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(payload)
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(nil, logger.NewNopLogger())
		body, err := fetcher.FetchBytes(t.Context(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, payload, body)
	})

	t.Run("sends the configured user agent", func(t *testing.T) {
		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("User-Agent")
		}))
		defer server.Close()

		config := DefaultFetcherConfig()
		config.UserAgent = "pipeline/2.0"
		fetcher := NewHTTPFetcher(config, logger.NewNopLogger())
		_, err := fetcher.Fetch(t.Context(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "pipeline/2.0", got)
	})

	t.Run("non-success status is a fetch error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(nil, logger.NewNopLogger())
		_, err := fetcher.Fetch(t.Context(), server.URL)
		require.Error(t, err)
		assert.True(t, errors.IsFetchError(err))

		structured := errors.GetDocChunkError(err)
		require.NotNil(t, structured)
		assert.Equal(t, errors.ErrCodeBadStatus, structured.Code)
		assert.Equal(t, http.StatusNotFound, structured.Details["status"])
	})

	t.Run("request id from the context lands on the error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		ctx := context.WithValue(t.Context(), types.ContextKeyRequestID, "req-42")
		fetcher := NewHTTPFetcher(nil, logger.NewNopLogger())
		_, err := fetcher.Fetch(ctx, server.URL)
		require.Error(t, err)

		structured := errors.GetDocChunkError(err)
		require.NotNil(t, structured)
		assert.Equal(t, "req-42", structured.RequestID)
	})

	t.Run("error carries no request id without one", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(nil, logger.NewNopLogger())
		_, err := fetcher.Fetch(t.Context(), server.URL)
		require.Error(t, err)

		structured := errors.GetDocChunkError(err)
		require.NotNil(t, structured)
		assert.Empty(t, structured.RequestID)
	})

	t.Run("unreachable host is a fetch error", func(t *testing.T) {
		config := DefaultFetcherConfig()
		config.Timeout = 200 * time.Millisecond
		fetcher := NewHTTPFetcher(config, logger.NewNopLogger())

		_, err := fetcher.Fetch(t.Context(), "http://127.0.0.1:1")
		require.Error(t, err)
		assert.True(t, errors.IsFetchError(err))
	})
}
