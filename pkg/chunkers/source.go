package chunkers

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/docchunk/docchunk/pkg/errors"
	"github.com/docchunk/docchunk/pkg/fetch"
	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/logger"
	"github.com/docchunk/docchunk/pkg/metrics"
	"github.com/docchunk/docchunk/pkg/types"
)

// sourceResolver turns the raw Chunk input into document text. Input
// starting with an HTTP(S) scheme is fetched, input naming an existing
// file with a matching extension is read (through the extraction
// collaborator for binary formats), anything else is literal content.
// Resolution blocks the caller; fetch failures are never retried.
type sourceResolver struct {
	format    types.DocumentFormat
	fetcher   interfaces.Fetcher
	extractor interfaces.Extractor
	logger    interfaces.Logger
	metrics   interfaces.Metrics
}

// newSourceResolver builds a resolver for one document format. A nil
// fetcher gets the default HTTP client; binary formats require an
// extractor.
func newSourceResolver(format types.DocumentFormat, fetcher interfaces.Fetcher, extractor interfaces.Extractor, log interfaces.Logger, m interfaces.Metrics) (*sourceResolver, error) {
	if log == nil {
		log = logger.NewLogger()
	}
	if m == nil {
		m = metrics.NewNoOpMetrics()
	}
	if fetcher == nil {
		fetcher = fetch.NewHTTPFetcher(nil, log)
	}
	if format.IsBinary() && extractor == nil {
		return nil, errors.NewConfigInvalidError("binary format " + string(format) + " requires an extraction collaborator")
	}

	return &sourceResolver{
		format:    format,
		fetcher:   fetcher,
		extractor: extractor,
		logger:    log,
		metrics:   m,
	}, nil
}

// isURL reports whether data names a remote document
func isURL(data string) bool {
	return strings.HasPrefix(data, "http://") || strings.HasPrefix(data, "https://")
}

// isMatchingFile reports whether data names an existing regular file
// with one of the format's extensions
func (r *sourceResolver) isMatchingFile(data string) bool {
	if !r.format.MatchesExtension(data) {
		return false
	}
	info, err := os.Stat(data)
	return err == nil && info.Mode().IsRegular()
}

// Resolve produces the document a splitter operates on
func (r *sourceResolver) Resolve(ctx context.Context, data string) (*types.Document, error) {
	switch {
	case isURL(data):
		return r.resolveURL(ctx, data)
	case r.isMatchingFile(data):
		return r.resolveFile(ctx, data)
	default:
		return types.NewDocument(types.SourceLiteral, "", r.format, data), nil
	}
}

// resolveURL fetches the document body, extracting text first for
// binary formats
func (r *sourceResolver) resolveURL(ctx context.Context, url string) (*types.Document, error) {
	start := time.Now()

	var content string
	if r.format.IsBinary() {
		body, err := r.fetcher.FetchBytes(ctx, url)
		if err != nil {
			return nil, err
		}
		content, err = r.extractor.Extract(ctx, body)
		if err != nil {
			return nil, err
		}
	} else {
		body, err := r.fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		content = body
	}

	r.metrics.Timer("chunkers.resolve_duration_ms", float64(time.Since(start).Milliseconds()), map[string]string{
		"source": string(types.SourceURL),
		"format": string(r.format),
	})

	doc := types.NewDocument(types.SourceURL, url, r.format, content)
	r.logger.Debug("resolved remote document", r.logFields(ctx, map[string]interface{}{
		"document_id": doc.ID,
		"url":         url,
		"chars":       len(content),
	}))
	return doc, nil
}

// resolveFile reads a local document, extracting text first for binary
// formats
func (r *sourceResolver) resolveFile(ctx context.Context, path string) (*types.Document, error) {
	start := time.Now()

	var content string
	if r.format.IsBinary() {
		extracted, err := r.extractor.ExtractFile(ctx, path)
		if err != nil {
			return nil, err
		}
		content = extracted
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewFileError(path, err)
		}
		content = string(data)
	}

	r.metrics.Timer("chunkers.resolve_duration_ms", float64(time.Since(start).Milliseconds()), map[string]string{
		"source": string(types.SourceFile),
		"format": string(r.format),
	})

	doc := types.NewDocument(types.SourceFile, path, r.format, content)
	r.logger.Debug("resolved local document", r.logFields(ctx, map[string]interface{}{
		"document_id": doc.ID,
		"path":        path,
		"chars":       len(content),
	}))
	return doc, nil
}

// logFields adds the caller's request ID to resolver log fields when
// the context carries one
func (r *sourceResolver) logFields(ctx context.Context, fields map[string]interface{}) map[string]interface{} {
	if reqCtx := types.GetRequestContext(ctx); reqCtx.RequestID != "" {
		fields["request_id"] = reqCtx.RequestID
	}
	return fields
}
