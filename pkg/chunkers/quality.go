package chunkers

import (
	"strings"
)

// FilterVerdict classifies what the quality filter decided about a span
type FilterVerdict int

const (
	// VerdictKeep passes the span through unchanged
	VerdictKeep FilterVerdict = iota

	// VerdictDrop removes the span entirely
	VerdictDrop

	// VerdictSeparate replaces the span with a block boundary
	VerdictSeparate
)

// QualityFilter drops or separates low-signal spans. A bad word anywhere
// in a span drops it; a span whose counted words fall below the minimum
// is either dropped or turned into a boundary depending on the mode it
// was built with. Word counting excludes stop words, and in block mode
// also words of three characters or fewer.
type QualityFilter struct {
	stopWords    map[string]struct{}
	badWords     []string
	minWords     int
	minWordLen   int
	shortVerdict FilterVerdict
}

// NewLineQualityFilter builds a filter for denoised web page lines:
// short lines become block boundaries instead of disappearing
func NewLineQualityFilter(stopWords, badWords []string, minWords int) *QualityFilter {
	return newQualityFilter(stopWords, badWords, minWords, 0, VerdictSeparate)
}

// NewBlockQualityFilter builds a filter for extracted document blocks:
// short blocks are dropped, and only words longer than three characters
// count toward the minimum
func NewBlockQualityFilter(stopWords, badWords []string, minWords int) *QualityFilter {
	return newQualityFilter(stopWords, badWords, minWords, 3, VerdictDrop)
}

func newQualityFilter(stopWords, badWords []string, minWords, minWordLen int, shortVerdict FilterVerdict) *QualityFilter {
	stopSet := make(map[string]struct{}, len(stopWords))
	for _, word := range stopWords {
		stopSet[strings.ToLower(word)] = struct{}{}
	}

	loweredBad := make([]string, 0, len(badWords))
	for _, word := range badWords {
		loweredBad = append(loweredBad, strings.ToLower(word))
	}

	if minWords <= 0 {
		minWords = DefaultMinWords
	}

	return &QualityFilter{
		stopWords:    stopSet,
		badWords:     loweredBad,
		minWords:     minWords,
		minWordLen:   minWordLen,
		shortVerdict: shortVerdict,
	}
}

// Judge classifies a span
func (f *QualityFilter) Judge(span string) FilterVerdict {
	if f.HasBadWord(span) {
		return VerdictDrop
	}
	if f.CountWords(span) < f.minWords {
		return f.shortVerdict
	}
	return VerdictKeep
}

// HasBadWord reports whether any bad word occurs in the span,
// case-insensitively
func (f *QualityFilter) HasBadWord(span string) bool {
	lowered := strings.ToLower(span)
	for _, bad := range f.badWords {
		if strings.Contains(lowered, bad) {
			return true
		}
	}
	return false
}

// CountWords counts the words of a span that survive the stop word and
// length exclusions
func (f *QualityFilter) CountWords(span string) int {
	count := 0
	for _, word := range strings.Fields(span) {
		if len(word) <= f.minWordLen {
			continue
		}
		if _, stopped := f.stopWords[strings.ToLower(word)]; stopped {
			continue
		}
		count++
	}
	return count
}

// MinWords returns the configured word count threshold
func (f *QualityFilter) MinWords() int {
	return f.minWords
}
