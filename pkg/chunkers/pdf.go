package chunkers

import (
	"github.com/docchunk/docchunk/pkg/extract"
	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/types"
)

// Ensure the PDF splitters implement the Chunker interface
var (
	_ Chunker = (*PDFParagraphSplitter)(nil)
	_ Chunker = (*PDFSentenceSplitter)(nil)
)

// PDFParagraphSplitter splits PDF documents into paragraph chunks.
// Input may be an HTTP(S) URL, a path to a .pdf file, or literal text
// already extracted elsewhere.
type PDFParagraphSplitter struct {
	extractedParagraphSplitter
}

// NewPDFParagraphSplitter creates a paragraph splitter over the PDF
// extraction collaborator
func NewPDFParagraphSplitter(config *ChunkerConfig, fetcher interfaces.Fetcher, log interfaces.Logger, m interfaces.Metrics) (*PDFParagraphSplitter, error) {
	base, err := newExtractedParagraphSplitter(FamilyPDF, types.FormatPDF, config, fetcher, extract.NewPDFExtractor(), log, m)
	if err != nil {
		return nil, err
	}
	return &PDFParagraphSplitter{base}, nil
}

// PDFSentenceSplitter splits PDF documents into sentence-sized lines.
// It owns a paragraph splitter of the same family and re-splits its
// output.
type PDFSentenceSplitter struct {
	extractedSentenceSplitter
}

// NewPDFSentenceSplitter creates a sentence splitter over the PDF
// extraction collaborator
func NewPDFSentenceSplitter(config *ChunkerConfig, fetcher interfaces.Fetcher, log interfaces.Logger, m interfaces.Metrics) (*PDFSentenceSplitter, error) {
	paragraphs, err := NewPDFParagraphSplitter(config, fetcher, log, m)
	if err != nil {
		return nil, err
	}
	return &PDFSentenceSplitter{newExtractedSentenceSplitter(&paragraphs.extractedParagraphSplitter)}, nil
}
