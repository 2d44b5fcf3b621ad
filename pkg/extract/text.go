package extract

import (
	"context"
	"os"

	"github.com/docchunk/docchunk/pkg/errors"
	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/types"
)

// PlainTextExtractor passes text documents through unchanged
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates a new plain text extractor
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// Format returns the document format this extractor handles
func (e *PlainTextExtractor) Format() types.DocumentFormat {
	return types.FormatPlain
}

// Extract returns the bytes as text
func (e *PlainTextExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	return string(data), nil
}

// ExtractFile reads a text file
func (e *PlainTextExtractor) ExtractFile(ctx context.Context, filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", errors.NewFileError(filePath, err)
	}
	return string(data), nil
}

var _ interfaces.Extractor = (*PlainTextExtractor)(nil)
