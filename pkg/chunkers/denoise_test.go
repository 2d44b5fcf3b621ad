package chunkers

import (
	"strings"
	"testing"

	"github.com/docchunk/docchunk/pkg/logger"
)

func newTestDenoiser(t *testing.T, config *ChunkerConfig) *MarkupDenoiser {
	t.Helper()
	denoiser, err := NewMarkupDenoiser(config, logger.NewNopLogger())
	if err != nil {
		t.Fatalf("Failed to create denoiser: %v", err)
	}
	return denoiser
}

func TestDenoiseStripsScriptsAndStyles(t *testing.T) {
	denoiser := newTestDenoiser(t, nil)

	input := `<script type="text/javascript">
var tracking = analytics.load("everything");
</script><STYLE>body { color: red; }</STYLE><p>Visible paragraph content with enough meaningful words to survive filtering</p>`

	blocks := denoiser.Denoise(input)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d: %v", len(blocks), blocks)
	}
	if strings.Contains(blocks[0], "tracking") || strings.Contains(blocks[0], "color") {
		t.Errorf("Script or style content leaked into output: %q", blocks[0])
	}
}

func TestDenoiseDropsNonWhitelistedTags(t *testing.T) {
	denoiser := newTestDenoiser(t, nil)

	input := `<p><span class="x">Paragraph</span> content mentions several important findings about migration patterns</p><table><tr><td>cell</td></tr></table>`

	blocks := denoiser.Denoise(input)
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d: %v", len(blocks), blocks)
	}
	if strings.Contains(blocks[0], "<") {
		t.Errorf("Tag survived denoising: %q", blocks[0])
	}
	if !strings.Contains(blocks[0], "Paragraph content") {
		t.Errorf("Inner text of stripped tags was lost: %q", blocks[0])
	}
}

func TestDenoiseHeadingsKeepInnerText(t *testing.T) {
	denoiser := newTestDenoiser(t, nil)

	input := `<h2 id="top">Detailed findings about seasonal bird migration patterns</h2><div>Researchers counted thousands upon thousands of migrating birds there</div>`

	blocks := denoiser.Denoise(input)
	joined := strings.Join(blocks, "\n\n")
	if !strings.Contains(joined, "Detailed findings about seasonal bird migration patterns") {
		t.Errorf("Heading text was lost: %v", blocks)
	}
	if !strings.Contains(joined, "Researchers counted thousands") {
		t.Errorf("Division text was lost: %v", blocks)
	}
}

func TestDenoiseBadWordRejection(t *testing.T) {
	config := DefaultChunkerConfig()
	config.BadWords = []string{"cookie"}
	config.MinWords = 5
	denoiser := newTestDenoiser(t, config)

	input := `<p>We use cookie tracking across the entire site for analytics purposes</p><p>Meaningful editorial content continues here with several additional informative sentences</p>`

	blocks := denoiser.Denoise(input)
	for _, block := range blocks {
		if strings.Contains(strings.ToLower(block), "cookie") {
			t.Errorf("Bad word paragraph was not dropped: %q", block)
		}
	}
	if len(blocks) != 1 {
		t.Errorf("Expected 1 surviving block, got %d: %v", len(blocks), blocks)
	}
}

func TestDenoiseShortLineBecomesSeparator(t *testing.T) {
	config := DefaultChunkerConfig()
	config.MinWords = 5
	denoiser := newTestDenoiser(t, config)

	input := `<p>short line here</p>`

	blocks := denoiser.Denoise(input)
	if len(blocks) != 0 {
		t.Errorf("Expected short line to vanish into separators, got %v", blocks)
	}
}

func TestDenoiseShortLineSeparatesNeighbors(t *testing.T) {
	denoiser := newTestDenoiser(t, nil)

	input := `<div>First block holds enough meaningful words to clear filtering</div><div>menu label</div><div>Second block also holds enough meaningful words to clear filtering</div>`

	blocks := denoiser.Denoise(input)
	if len(blocks) != 2 {
		t.Fatalf("Expected the short line to split neighbors into 2 blocks, got %d: %v", len(blocks), blocks)
	}
	if !strings.HasPrefix(blocks[0], "First block") || !strings.HasPrefix(blocks[1], "Second block") {
		t.Errorf("Blocks out of order: %v", blocks)
	}
}

func TestDenoiseIdempotentOnPlainOutput(t *testing.T) {
	denoiser := newTestDenoiser(t, nil)

	input := `<h1>Comprehensive annual report on renewable energy installations worldwide</h1><p>Wind and solar capacity additions broke records again according to analysts</p><p>Grid storage deployments doubled compared with the previous reporting year</p>`

	first := denoiser.Denoise(input)
	if len(first) == 0 {
		t.Fatal("Expected blocks from first pass")
	}

	second := denoiser.Denoise(strings.Join(first, "\n\n\n"))
	if len(second) != len(first) {
		t.Fatalf("Second pass changed block count: %d vs %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Block %d changed on second pass:\nfirst:  %q\nsecond: %q", i, first[i], second[i])
		}
	}
}

func TestDenoiseOrderPreserved(t *testing.T) {
	denoiser := newTestDenoiser(t, nil)

	input := `<p>Alpha section text contains plenty of meaningful descriptive words</p><p>Bravo section text contains plenty of meaningful descriptive words</p><p>Charlie section text contains plenty of meaningful descriptive words</p>`

	blocks := denoiser.Denoise(input)
	if len(blocks) != 3 {
		t.Fatalf("Expected 3 blocks, got %d: %v", len(blocks), blocks)
	}
	for i, prefix := range []string{"Alpha", "Bravo", "Charlie"} {
		if !strings.HasPrefix(blocks[i], prefix) {
			t.Errorf("Block %d = %q, want prefix %q", i, blocks[i], prefix)
		}
	}
}

func TestDenoiseDOMModeMatchesRegexOnWellFormedInput(t *testing.T) {
	input := `<html><body><h1>Quarterly engineering update covering infrastructure and tooling</h1><p>The platform team migrated every remaining service without downtime</p><div>Incident response drills ran smoothly across all three regions</div></body></html>`

	regexDenoiser := newTestDenoiser(t, nil)

	domConfig := DefaultChunkerConfig()
	domConfig.UseDOM = true
	domDenoiser := newTestDenoiser(t, domConfig)

	regexBlocks := regexDenoiser.Denoise(input)
	domBlocks := domDenoiser.Denoise(input)

	if len(regexBlocks) != len(domBlocks) {
		t.Fatalf("Block counts differ: regex %v vs dom %v", regexBlocks, domBlocks)
	}
	for i := range regexBlocks {
		if regexBlocks[i] != domBlocks[i] {
			t.Errorf("Block %d differs:\nregex: %q\ndom:   %q", i, regexBlocks[i], domBlocks[i])
		}
	}
}

func TestDenoiseDOMModeHandlesUnclosedTags(t *testing.T) {
	config := DefaultChunkerConfig()
	config.UseDOM = true
	denoiser := newTestDenoiser(t, config)

	// The opening div is never closed inside the paragraph
	input := `<p>Opening statement describes the overall situation in broad terms<div>Nested unclosed division holds its own complete descriptive sentence</p>`

	blocks := denoiser.Denoise(input)
	joined := strings.Join(blocks, "\n\n")
	if !strings.Contains(joined, "Opening statement describes") {
		t.Errorf("Text before the unclosed tag was lost: %v", blocks)
	}
	if !strings.Contains(joined, "Nested unclosed division holds") {
		t.Errorf("Text inside the unclosed tag was lost: %v", blocks)
	}
}
