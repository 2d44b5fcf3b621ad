package chunkers

import (
	"github.com/docchunk/docchunk/pkg/extract"
	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/types"
)

// Ensure the DOCX splitters implement the Chunker interface
var (
	_ Chunker = (*DOCXParagraphSplitter)(nil)
	_ Chunker = (*DOCXSentenceSplitter)(nil)
)

// DOCXParagraphSplitter splits Office Open XML documents into paragraph
// chunks. Input may be an HTTP(S) URL, a path to a .docx file, or
// literal text already extracted elsewhere.
type DOCXParagraphSplitter struct {
	extractedParagraphSplitter
}

// NewDOCXParagraphSplitter creates a paragraph splitter over the DOCX
// extraction collaborator
func NewDOCXParagraphSplitter(config *ChunkerConfig, fetcher interfaces.Fetcher, log interfaces.Logger, m interfaces.Metrics) (*DOCXParagraphSplitter, error) {
	base, err := newExtractedParagraphSplitter(FamilyDOCX, types.FormatDOCX, config, fetcher, extract.NewDOCXExtractor(), log, m)
	if err != nil {
		return nil, err
	}
	return &DOCXParagraphSplitter{base}, nil
}

// DOCXSentenceSplitter splits Office Open XML documents into
// sentence-sized lines. It owns a paragraph splitter of the same family
// and re-splits its output.
type DOCXSentenceSplitter struct {
	extractedSentenceSplitter
}

// NewDOCXSentenceSplitter creates a sentence splitter over the DOCX
// extraction collaborator
func NewDOCXSentenceSplitter(config *ChunkerConfig, fetcher interfaces.Fetcher, log interfaces.Logger, m interfaces.Metrics) (*DOCXSentenceSplitter, error) {
	paragraphs, err := NewDOCXParagraphSplitter(config, fetcher, log, m)
	if err != nil {
		return nil, err
	}
	return &DOCXSentenceSplitter{newExtractedSentenceSplitter(&paragraphs.extractedParagraphSplitter)}, nil
}
