package chunkers

import (
	"github.com/docchunk/docchunk/pkg/extract"
	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/types"
)

// Ensure the DOC splitters implement the Chunker interface
var (
	_ Chunker = (*DOCParagraphSplitter)(nil)
	_ Chunker = (*DOCSentenceSplitter)(nil)
)

// DOCParagraphSplitter splits legacy Word documents into paragraph
// chunks. Extraction goes through the external antiword tool, so a
// missing binary surfaces as an extraction error at chunk time.
type DOCParagraphSplitter struct {
	extractedParagraphSplitter
}

// NewDOCParagraphSplitter creates a paragraph splitter over the legacy
// Word extraction collaborator
func NewDOCParagraphSplitter(config *ChunkerConfig, fetcher interfaces.Fetcher, log interfaces.Logger, m interfaces.Metrics) (*DOCParagraphSplitter, error) {
	base, err := newExtractedParagraphSplitter(FamilyDOC, types.FormatDOC, config, fetcher, extract.NewDOCExtractor(), log, m)
	if err != nil {
		return nil, err
	}
	return &DOCParagraphSplitter{base}, nil
}

// DOCSentenceSplitter splits legacy Word documents into sentence-sized
// lines. It owns a paragraph splitter of the same family and re-splits
// its output.
type DOCSentenceSplitter struct {
	extractedSentenceSplitter
}

// NewDOCSentenceSplitter creates a sentence splitter over the legacy
// Word extraction collaborator
func NewDOCSentenceSplitter(config *ChunkerConfig, fetcher interfaces.Fetcher, log interfaces.Logger, m interfaces.Metrics) (*DOCSentenceSplitter, error) {
	paragraphs, err := NewDOCParagraphSplitter(config, fetcher, log, m)
	if err != nil {
		return nil, err
	}
	return &DOCSentenceSplitter{newExtractedSentenceSplitter(&paragraphs.extractedParagraphSplitter)}, nil
}
