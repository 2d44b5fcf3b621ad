// Package chunkers provides document chunking functionality for DocChunk
package chunkers

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ChunkStream is a lazy, finite, single-pass sequence of chunk strings.
// Ranging over a stream a second time yields nothing.
type ChunkStream = iter.Seq[string]

// newChunkStream wraps a sequence so it can be consumed only once
func newChunkStream(seq iter.Seq[string]) ChunkStream {
	consumed := false
	return func(yield func(string) bool) {
		if consumed {
			return
		}
		consumed = true
		seq(yield)
	}
}

// CollectChunks drains a stream into a slice
func CollectChunks(stream ChunkStream) []string {
	var chunks []string
	for chunk := range stream {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// CollectChunksWithStats drains a stream and reports statistics over
// the collected chunks
func CollectChunksWithStats(stream ChunkStream, originalLength int) ([]string, *ChunkingStats) {
	start := time.Now()
	chunks := CollectChunks(stream)
	return chunks, CalculateStats(chunks, originalLength, time.Since(start))
}

// Chunk represents a materialized text chunk with metadata
type Chunk struct {
	// Text content of the chunk
	Text string `json:"text"`

	// Index is the position of the chunk within its stream
	Index int `json:"index"`

	// WordCount is the number of whitespace-delimited words
	WordCount int `json:"word_count"`

	// DocumentID identifies the resolved source document
	DocumentID string `json:"document_id,omitempty"`

	// Metadata contains additional information about the chunk
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// CreatedAt is when this chunk was materialized
	CreatedAt time.Time `json:"created_at"`
}

// MaterializeChunks drains a stream into indexed Chunk values carrying
// word counts and provenance, for consumers that need more than the
// raw text
func MaterializeChunks(stream ChunkStream, documentID string) []Chunk {
	var chunks []Chunk
	now := time.Now()
	for text := range stream {
		chunks = append(chunks, Chunk{
			Text:       text,
			Index:      len(chunks),
			WordCount:  countWords(text),
			DocumentID: documentID,
			CreatedAt:  now,
		})
	}
	return chunks
}

// Chunker defines the interface for all document chunking implementations.
// Input resolution (file reads, URL fetches, binary extraction and model
// inference) happens inside Chunk, so those failures surface as the
// returned error; splitting of the resolved text stays lazy.
type Chunker interface {
	// Chunk resolves data and returns a lazy stream of chunks
	Chunk(ctx context.Context, data string) (ChunkStream, error)

	// Family returns the splitter family of this chunker
	Family() SplitterFamily

	// Granularity returns the kind of spans the stream yields
	Granularity() Granularity

	// GetConfig returns the current chunker configuration
	GetConfig() *ChunkerConfig

	// SetConfig updates the chunker configuration
	SetConfig(config *ChunkerConfig) error
}

// SplitterFamily represents different splitting strategies
type SplitterFamily string

const (
	// FamilyRegex splits plain text with boundary regexes
	FamilyRegex SplitterFamily = "regex"

	// FamilyPunkt splits plain text with locale punctuation rules
	FamilyPunkt SplitterFamily = "punkt"

	// FamilySaT splits plain text with segment-any-text models
	FamilySaT SplitterFamily = "sat"

	// FamilyWtP splits plain text with where-the-punctuation models
	FamilyWtP SplitterFamily = "wtp"

	// FamilyHTML denoises web pages before splitting
	FamilyHTML SplitterFamily = "html"

	// FamilyMarkdown walks the heading tree of markdown documents
	FamilyMarkdown SplitterFamily = "markdown"

	// FamilyPDF extracts PDF text before splitting
	FamilyPDF SplitterFamily = "pdf"

	// FamilyDOCX extracts Office Open XML text before splitting
	FamilyDOCX SplitterFamily = "docx"

	// FamilyDOC extracts legacy Word text before splitting
	FamilyDOC SplitterFamily = "doc"

	// FamilyRecursive re-splits text to a character budget
	FamilyRecursive SplitterFamily = "recursive"
)

// SupportedSplitterFamilies returns all supported splitter families
func SupportedSplitterFamilies() []SplitterFamily {
	return []SplitterFamily{
		FamilyRegex,
		FamilyPunkt,
		FamilySaT,
		FamilyWtP,
		FamilyHTML,
		FamilyMarkdown,
		FamilyPDF,
		FamilyDOCX,
		FamilyDOC,
		FamilyRecursive,
	}
}

// IsValidSplitterFamily checks if a splitter family is supported
func IsValidSplitterFamily(family SplitterFamily) bool {
	for _, supported := range SupportedSplitterFamilies() {
		if supported == family {
			return true
		}
	}
	return false
}

// Granularity represents the kind of spans a chunker yields
type Granularity string

const (
	// GranularitySentence yields one chunk per sentence
	GranularitySentence Granularity = "sentence"

	// GranularityParagraph yields one chunk per paragraph
	GranularityParagraph Granularity = "paragraph"
)

// SupportedGranularities returns all supported granularities
func SupportedGranularities() []Granularity {
	return []Granularity{
		GranularitySentence,
		GranularityParagraph,
	}
}

// IsValidGranularity checks if a granularity is supported
func IsValidGranularity(granularity Granularity) bool {
	for _, supported := range SupportedGranularities() {
		if supported == granularity {
			return true
		}
	}
	return false
}

// DefaultSaTModel is the segment-any-text checkpoint used when none is set
const DefaultSaTModel = "sat-3l-sm"

// DefaultWtPModel is the where-the-punctuation checkpoint used when none is set
const DefaultWtPModel = "wtp-bert-mini"

// SaTModels returns the segment-any-text checkpoints the sat family accepts
func SaTModels() []string {
	return []string{
		"sat-1l",
		"sat-3l",
		"sat-3l-sm",
		"sat-3l-lora",
		"sat-6l",
		"sat-6l-sm",
		"sat-9l",
		"sat-9l-sm",
		"sat-12l",
		"sat-12l-sm",
		"sat-12l-lora",
	}
}

// WtPModels returns the where-the-punctuation checkpoints the wtp family accepts
func WtPModels() []string {
	return []string{
		"wtp-bert-tiny",
		"wtp-bert-mini",
		"wtp-canine-s-1l",
		"wtp-canine-s-1l-no-adapters",
		"wtp-canine-s-3l",
		"wtp-canine-s-3l-no-adapters",
		"wtp-canine-s-6l",
		"wtp-canine-s-6l-no-adapters",
		"wtp-canine-s-9l",
		"wtp-canine-s-9l-no-adapters",
		"wtp-canine-s-12l",
		"wtp-canine-s-12l-no-adapters",
	}
}

// IsValidSaTModel checks if a model is a known segment-any-text checkpoint
func IsValidSaTModel(model string) bool {
	for _, valid := range SaTModels() {
		if valid == model {
			return true
		}
	}
	return false
}

// IsValidWtPModel checks if a model is a known where-the-punctuation checkpoint
func IsValidWtPModel(model string) bool {
	for _, valid := range WtPModels() {
		if valid == model {
			return true
		}
	}
	return false
}

// DefaultHTMLStopWords returns the stop words excluded from word counts
// when filtering denoised web page lines
func DefaultHTMLStopWords() []string {
	return []string{"the", "a", "an", "to", "of", "for", "as", "and", "it", "in", "we", "i"}
}

// DefaultHTMLBadWords returns the substrings that drop a denoised web
// page line outright
func DefaultHTMLBadWords() []string {
	return []string{"cookie"}
}

// ChunkerConfig represents base configuration for document chunkers
type ChunkerConfig struct {
	// Model is the checkpoint identifier for model-backed families;
	// empty selects the family default
	Model string `json:"model,omitempty"`

	// ModelPath overrides the directory model files are loaded from
	ModelPath string `json:"model_path,omitempty"`

	// UseCUDA requests GPU placement when the runtime supports it
	UseCUDA bool `json:"use_cuda,omitempty"`

	// DisableONNX opts out of the ONNX runtime for wtp bert checkpoints
	DisableONNX bool `json:"disable_onnx,omitempty"`

	// Lang selects the locale for rule-based sentence splitting
	Lang string `json:"lang,omitempty"`

	// StopWords are excluded from word counts during quality filtering;
	// nil selects the family default, an empty slice disables the exclusion
	StopWords []string `json:"stop_words,omitempty"`

	// BadWords drop a whole line or block on case-insensitive substring
	// match; nil selects the family default
	BadWords []string `json:"bad_words,omitempty"`

	// MinWords is the count below which a line or block is filtered out;
	// zero selects the default of 5
	MinWords int `json:"min_words,omitempty"`

	// OmitTitle drops the heading path prefix from markdown chunks
	OmitTitle bool `json:"omit_title,omitempty"`

	// IncludeLists walks markdown list items instead of skipping them
	IncludeLists bool `json:"include_lists,omitempty"`

	// UseDOM denoises HTML through a DOM traversal instead of the
	// regex rewrite chain
	UseDOM bool `json:"use_dom,omitempty"`

	// MaxChunkChars is the character budget for the recursive family
	MaxChunkChars int `json:"max_chunk_chars,omitempty"`

	// ChunkOverlap is the character overlap for the recursive family
	ChunkOverlap int `json:"chunk_overlap,omitempty"`
}

// DefaultMinWords is the word count threshold applied when none is set
const DefaultMinWords = 5

// DefaultChunkerConfig returns a sensible default configuration
func DefaultChunkerConfig() *ChunkerConfig {
	return &ChunkerConfig{
		Lang:          "en",
		MinWords:      DefaultMinWords,
		MaxChunkChars: 1000,
		ChunkOverlap:  200,
	}
}

// minWordsOrDefault resolves the configured threshold
func (c *ChunkerConfig) minWordsOrDefault() int {
	if c.MinWords > 0 {
		return c.MinWords
	}
	return DefaultMinWords
}

// defaultModelPath resolves where model files are cached when no
// explicit path is configured
func defaultModelPath(model string) string {
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, "docchunk", "models", model)
	}
	return filepath.Join("models", model)
}

// countWords counts whitespace-delimited words
func countWords(text string) int {
	return len(strings.Fields(text))
}

// ChunkingStats provides statistics about a chunking run
type ChunkingStats struct {
	// OriginalTextLength is the length of the resolved document text
	OriginalTextLength int `json:"original_text_length"`

	// TotalChunks is the number of chunks produced
	TotalChunks int `json:"total_chunks"`

	// AverageChunkWords is the average chunk size in words
	AverageChunkWords float64 `json:"average_chunk_words"`

	// MinChunkWords is the size of the smallest chunk in words
	MinChunkWords int `json:"min_chunk_words"`

	// MaxChunkWords is the size of the largest chunk in words
	MaxChunkWords int `json:"max_chunk_words"`

	// TotalWords is the total word count across all chunks
	TotalWords int `json:"total_words"`

	// ProcessingTime is the time taken to produce the chunks
	ProcessingTime time.Duration `json:"processing_time"`
}

// CalculateStats computes statistics for a set of materialized chunks
func CalculateStats(chunks []string, originalLength int, processingTime time.Duration) *ChunkingStats {
	if len(chunks) == 0 {
		return &ChunkingStats{
			OriginalTextLength: originalLength,
			ProcessingTime:     processingTime,
		}
	}

	stats := &ChunkingStats{
		OriginalTextLength: originalLength,
		TotalChunks:        len(chunks),
		ProcessingTime:     processingTime,
	}

	totalWords := 0
	minWords := countWords(chunks[0])
	maxWords := minWords

	for _, chunk := range chunks {
		words := countWords(chunk)
		totalWords += words
		if words < minWords {
			minWords = words
		}
		if words > maxWords {
			maxWords = words
		}
	}

	stats.TotalWords = totalWords
	stats.MinChunkWords = minWords
	stats.MaxChunkWords = maxWords
	stats.AverageChunkWords = float64(totalWords) / float64(len(chunks))

	return stats
}
