// Package interfaces defines the core interfaces for DocChunk components
package interfaces

import (
	"context"

	"github.com/docchunk/docchunk/pkg/types"
)

// Fetcher defines the interface for retrieving remote document content.
// Fetching blocks the caller; implementations never retry internally.
type Fetcher interface {
	// Fetch retrieves the body of a URL as text
	Fetch(ctx context.Context, url string) (string, error)

	// FetchBytes retrieves the raw body of a URL
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Extractor defines the interface for converting binary document bytes
// into plain text
type Extractor interface {
	// Extract converts raw document bytes into plain text
	Extract(ctx context.Context, data []byte) (string, error)

	// ExtractFile converts a document file into plain text
	ExtractFile(ctx context.Context, filePath string) (string, error)

	// Format returns the document format this extractor handles
	Format() types.DocumentFormat
}

// SegmentationBackend defines the interface for model-backed boundary
// detection
type SegmentationBackend interface {
	// Segment splits text into sentence spans; when doParagraphSegmentation
	// is true the spans are additionally grouped into paragraphs
	Segment(ctx context.Context, text string, doParagraphSegmentation bool) (*types.SegmentResult, error)

	// Model returns the identifier of the loaded model
	Model() string

	// Close releases the backend's model resources
	Close() error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	// Load loads configuration from a file
	Load(ctx context.Context, path string) error

	// Get retrieves a configuration value
	Get(key string) interface{}

	// Set sets a configuration value
	Set(key string, value interface{}) error

	// Save saves configuration to a file
	Save(ctx context.Context, path string) error

	// Watch watches for configuration changes
	Watch(ctx context.Context, callback func(key string, value interface{})) error
}

// Logger defines the interface for logging implementations
type Logger interface {
	// Debug logs debug level messages
	Debug(msg string, fields ...map[string]interface{})

	// Info logs info level messages
	Info(msg string, fields ...map[string]interface{})

	// Warn logs warning level messages
	Warn(msg string, fields ...map[string]interface{})

	// Error logs error level messages
	Error(msg string, err error, fields ...map[string]interface{})

	// Fatal logs fatal level messages and exits
	Fatal(msg string, err error, fields ...map[string]interface{})

	// WithFields returns a logger with additional fields
	WithFields(fields map[string]interface{}) Logger
}

// Metrics defines the interface for metrics collection
type Metrics interface {
	// Counter increments a counter metric
	Counter(name string, value float64, labels map[string]string)

	// Gauge sets a gauge metric
	Gauge(name string, value float64, labels map[string]string)

	// Histogram records a histogram metric
	Histogram(name string, value float64, labels map[string]string)

	// Timer records timing metrics
	Timer(name string, duration float64, labels map[string]string)
}
