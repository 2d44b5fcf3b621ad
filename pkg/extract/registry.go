// Package extract provides text extraction collaborators for binary
// document formats
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/types"
)

// ExtractorRegistry maps document formats and file extensions to
// extractor implementations
type ExtractorRegistry struct {
	// extractors maps document formats to extractor instances
	extractors map[types.DocumentFormat]interfaces.Extractor

	// extensionMap maps file extensions to document formats
	extensionMap map[string]types.DocumentFormat
}

// NewExtractorRegistry creates a new registry with all default extractors
func NewExtractorRegistry() *ExtractorRegistry {
	registry := &ExtractorRegistry{
		extractors:   make(map[types.DocumentFormat]interfaces.Extractor),
		extensionMap: make(map[string]types.DocumentFormat),
	}

	registry.registerDefaultExtractors()

	return registry
}

// registerDefaultExtractors registers all built-in extractor implementations
func (r *ExtractorRegistry) registerDefaultExtractors() {
	r.RegisterExtractor(NewPDFExtractor())
	r.RegisterExtractor(NewDOCXExtractor())
	r.RegisterExtractor(NewDOCExtractor())
	r.RegisterExtractor(NewPlainTextExtractor())
}

// RegisterExtractor registers an extractor for its format and the
// format's file extensions
func (r *ExtractorRegistry) RegisterExtractor(extractor interfaces.Extractor) error {
	if extractor == nil {
		return fmt.Errorf("extractor cannot be nil")
	}

	format := extractor.Format()
	r.extractors[format] = extractor

	for _, ext := range format.Extensions() {
		r.extensionMap[strings.ToLower(ext)] = format
	}

	return nil
}

// GetExtractor retrieves an extractor by document format
func (r *ExtractorRegistry) GetExtractor(format types.DocumentFormat) (interfaces.Extractor, error) {
	extractor, exists := r.extractors[format]
	if !exists {
		return nil, fmt.Errorf("no extractor registered for format: %s", format)
	}
	return extractor, nil
}

// GetExtractorForFile retrieves an extractor by file extension
func (r *ExtractorRegistry) GetExtractorForFile(filePath string) (interfaces.Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	format, exists := r.extensionMap[ext]
	if !exists {
		return nil, fmt.Errorf("no extractor registered for extension: %s", ext)
	}
	return r.GetExtractor(format)
}

// SupportedFormats returns all formats with a registered extractor
func (r *ExtractorRegistry) SupportedFormats() []types.DocumentFormat {
	var formats []types.DocumentFormat
	for format := range r.extractors {
		formats = append(formats, format)
	}
	return formats
}

// SupportedExtensions returns all file extensions with a registered extractor
func (r *ExtractorRegistry) SupportedExtensions() []string {
	var extensions []string
	for ext := range r.extensionMap {
		extensions = append(extensions, ext)
	}
	return extensions
}

// IsFormatSupported checks if a document format has a registered extractor
func (r *ExtractorRegistry) IsFormatSupported(format types.DocumentFormat) bool {
	_, exists := r.extractors[format]
	return exists
}

// IsExtensionSupported checks if a file extension has a registered extractor
func (r *ExtractorRegistry) IsExtensionSupported(extension string) bool {
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	_, exists := r.extensionMap[strings.ToLower(extension)]
	return exists
}
