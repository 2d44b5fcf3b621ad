// Package types defines the core shared types for DocChunk
package types

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentFormat represents the markup or file format of a source document
type DocumentFormat string

const (
	FormatPlain    DocumentFormat = "text"
	FormatHTML     DocumentFormat = "html"
	FormatMarkdown DocumentFormat = "markdown"
	FormatPDF      DocumentFormat = "pdf"
	FormatDOCX     DocumentFormat = "docx"
	FormatDOC      DocumentFormat = "doc"
)

// SupportedDocumentFormats returns all formats the library can resolve
func SupportedDocumentFormats() []DocumentFormat {
	return []DocumentFormat{
		FormatPlain,
		FormatHTML,
		FormatMarkdown,
		FormatPDF,
		FormatDOCX,
		FormatDOC,
	}
}

// IsBinary reports whether the format requires byte-level text extraction
// before any splitting can happen
func (f DocumentFormat) IsBinary() bool {
	switch f {
	case FormatPDF, FormatDOCX, FormatDOC:
		return true
	default:
		return false
	}
}

// Extensions returns the file extensions recognized for the format,
// including the leading dot
func (f DocumentFormat) Extensions() []string {
	switch f {
	case FormatHTML:
		return []string{".html", ".htm"}
	case FormatMarkdown:
		return []string{".md", ".markdown"}
	case FormatPDF:
		return []string{".pdf"}
	case FormatDOCX:
		return []string{".docx"}
	case FormatDOC:
		return []string{".doc"}
	case FormatPlain:
		return []string{".txt"}
	default:
		return nil
	}
}

// MatchesExtension reports whether the path ends with one of the
// format's recognized extensions
func (f DocumentFormat) MatchesExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range f.Extensions() {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// SourceKind represents how input data was interpreted during resolution
type SourceKind string

const (
	SourceLiteral SourceKind = "literal"
	SourceFile    SourceKind = "file"
	SourceURL     SourceKind = "url"
)

// Document represents a resolved input: raw or extracted text plus
// provenance for logging and downstream metadata
type Document struct {
	ID         string                 `json:"id"`
	Source     SourceKind             `json:"source"`
	Origin     string                 `json:"origin,omitempty"` // URL or file path; empty for literal input
	Format     DocumentFormat         `json:"format"`
	Content    string                 `json:"content"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	ResolvedAt time.Time              `json:"resolved_at"`
}

// NewDocument creates a resolved document with a generated ID
func NewDocument(source SourceKind, origin string, format DocumentFormat, content string) *Document {
	return &Document{
		ID:         uuid.New().String(),
		Source:     source,
		Origin:     origin,
		Format:     format,
		Content:    content,
		Metadata:   make(map[string]interface{}),
		ResolvedAt: time.Now(),
	}
}

// SegmentResult represents the output of a segmentation backend.
// Flat sentence output fills Spans; paragraph segmentation fills Groups,
// one inner slice of sentences per detected paragraph. Exactly one of the
// two is populated.
type SegmentResult struct {
	Spans  []string   `json:"spans,omitempty"`
	Groups [][]string `json:"groups,omitempty"`
}

// IsGrouped reports whether the result carries nested paragraph groups
func (r *SegmentResult) IsGrouped() bool {
	return len(r.Groups) > 0
}

// Flatten returns every span in document order regardless of nesting.
// No span is dropped: ungrouped results are returned as-is and grouped
// results are concatenated group by group.
func (r *SegmentResult) Flatten() []string {
	if !r.IsGrouped() {
		return r.Spans
	}
	total := 0
	for _, group := range r.Groups {
		total += len(group)
	}
	flat := make([]string, 0, total)
	for _, group := range r.Groups {
		flat = append(flat, group...)
	}
	return flat
}

// Error types for better error handling
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeInternal    ErrorType = "internal"
	ErrorTypeExternal    ErrorType = "external"
	ErrorTypeDegradation ErrorType = "degradation"
)

// Context keys for request context
type ContextKey string

const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyTraceID   ContextKey = "trace_id"
)

// RequestContext holds request-specific context information
type RequestContext struct {
	RequestID string
	TraceID   string
}

// GetRequestContext extracts request context from Go context
func GetRequestContext(ctx context.Context) *RequestContext {
	return &RequestContext{
		RequestID: getStringFromContext(ctx, ContextKeyRequestID),
		TraceID:   getStringFromContext(ctx, ContextKeyTraceID),
	}
}

// helper function to extract string from context
func getStringFromContext(ctx context.Context, key ContextKey) string {
	if value := ctx.Value(key); value != nil {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return ""
}

// NewRequestContext creates a new request context with generated IDs
func NewRequestContext() *RequestContext {
	return &RequestContext{
		RequestID: uuid.New().String(),
		TraceID:   uuid.New().String(),
	}
}
