package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docchunk/docchunk/pkg/errors"
	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/types"
)

// PDFExtractor extracts plain text from PDF documents
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDF extractor
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Format returns the document format this extractor handles
func (e *PDFExtractor) Format() types.DocumentFormat {
	return types.FormatPDF
}

// Extract converts raw PDF bytes into plain text
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if !isPDFContent(data) {
		return "", errors.NewParseFailedError("content does not appear to be a valid PDF", nil)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewExtractionError(string(types.FormatPDF), err)
	}

	text, err := readPlainText(reader)
	if err != nil {
		return "", errors.NewExtractionError(string(types.FormatPDF), err)
	}
	return text, nil
}

// ExtractFile converts a PDF file into plain text
func (e *PDFExtractor) ExtractFile(ctx context.Context, filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", errors.NewFileError(filePath, err)
	}
	return e.Extract(ctx, data)
}

// readPlainText pulls text from the whole document, falling back to
// page-by-page extraction when the document-level reader fails
func readPlainText(reader *pdf.Reader) (string, error) {
	if textReader, err := reader.GetPlainText(); err == nil {
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(textReader); err == nil {
			return buf.String(), nil
		}
	}

	var sb strings.Builder
	var lastErr error
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			lastErr = err
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	if sb.Len() == 0 && lastErr != nil {
		return "", fmt.Errorf("failed to extract text from any page: %w", lastErr)
	}
	return sb.String(), nil
}

// isPDFContent checks for the PDF magic bytes
func isPDFContent(content []byte) bool {
	return len(content) >= 5 && string(content[:5]) == "%PDF-"
}

var _ interfaces.Extractor = (*PDFExtractor)(nil)
