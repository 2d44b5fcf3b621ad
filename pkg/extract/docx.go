package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/docchunk/docchunk/pkg/errors"
	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/types"
)

// DOCXExtractor extracts plain text from Office Open XML documents.
// The document text lives in word/document.xml inside the zip container.
type DOCXExtractor struct{}

// NewDOCXExtractor creates a new DOCX extractor
func NewDOCXExtractor() *DOCXExtractor {
	return &DOCXExtractor{}
}

// Format returns the document format this extractor handles
func (e *DOCXExtractor) Format() types.DocumentFormat {
	return types.FormatDOCX
}

// Extract converts raw DOCX bytes into plain text
func (e *DOCXExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewParseFailedError("content is not a valid docx container", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.NewParseFailedError("docx container has no word/document.xml", nil)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", errors.NewExtractionError(string(types.FormatDOCX), err)
	}
	defer rc.Close()

	text, err := decodeDocumentXML(rc)
	if err != nil {
		return "", errors.NewExtractionError(string(types.FormatDOCX), err)
	}
	return text, nil
}

// ExtractFile converts a DOCX file into plain text
func (e *DOCXExtractor) ExtractFile(ctx context.Context, filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", errors.NewFileError(filePath, err)
	}
	return e.Extract(ctx, data)
}

// decodeDocumentXML walks the WordprocessingML token stream collecting
// run text. Paragraph ends become blank lines so downstream block
// splitting sees one block per paragraph; explicit breaks and tabs
// become single separators.
func decodeDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	var para strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to decode document xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "br", "cr":
				para.WriteString("\n")
			case "tab":
				para.WriteString("\t")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if para.Len() > 0 {
					sb.WriteString(para.String())
					para.Reset()
				}
				sb.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}

	if para.Len() > 0 {
		sb.WriteString(para.String())
	}

	return strings.TrimSpace(sb.String()), nil
}

var _ interfaces.Extractor = (*DOCXExtractor)(nil)
