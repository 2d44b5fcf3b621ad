package chunkers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/logger"
)

// MarkupDenoiser reduces raw HTML to filtered text blocks. The rewrite
// keeps only structural tags (div, h1-h6, p, br), turns them into line
// and block separators, then filters the resulting lines by quality.
// Steps run in a fixed order; each consumes the previous step's output.
type MarkupDenoiser struct {
	config *ChunkerConfig
	filter *QualityFilter
	logger interfaces.Logger

	scriptRe *regexp.Regexp
	styleRe  *regexp.Regexp
	tokenRe  *regexp.Regexp
	allowRe  *regexp.Regexp
	attrRe   *regexp.Regexp
	divRe    *regexp.Regexp
	brRe     *regexp.Regexp
	headRes  []*regexp.Regexp
	paraRe   *regexp.Regexp
}

// NewMarkupDenoiser creates a denoiser for the given configuration
func NewMarkupDenoiser(config *ChunkerConfig, log interfaces.Logger) (*MarkupDenoiser, error) {
	if config == nil {
		config = DefaultChunkerConfig()
	}
	if log == nil {
		log = logger.NewLogger()
	}

	stopWords := config.StopWords
	if stopWords == nil {
		stopWords = DefaultHTMLStopWords()
	}
	badWords := config.BadWords
	if badWords == nil {
		badWords = DefaultHTMLBadWords()
	}

	d := &MarkupDenoiser{
		config: config,
		filter: NewLineQualityFilter(stopWords, badWords, config.minWordsOrDefault()),
		logger: log,
	}

	patterns := []struct {
		target  **regexp.Regexp
		pattern string
	}{
		{&d.scriptRe, `(?is)<script[^>]*>.*?</script>`},
		{&d.styleRe, `(?is)<style[^>]*>.*?</style>`},
		{&d.tokenRe, `</?[^>]*>`},
		{&d.allowRe, `(?i)^</?(div|h[1-6]|p|br)\b[^>]*>`},
		{&d.attrRe, `(?i)<(/?\w+)[^>]*>`},
		{&d.divRe, `(?i)</?div[^>]*>`},
		{&d.brRe, `(?i)<br\s*/?>`},
		{&d.paraRe, `(?i)<p[^>]*>(.*?)</p>`},
	}
	for _, p := range patterns {
		re, err := regexp.Compile(p.pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile denoiser pattern %q: %w", p.pattern, err)
		}
		*p.target = re
	}

	d.headRes = make([]*regexp.Regexp, 0, 6)
	for level := 1; level <= 6; level++ {
		re, err := regexp.Compile(fmt.Sprintf(`(?i)<h%d[^>]*>(.*?)</h%d>`, level, level))
		if err != nil {
			return nil, fmt.Errorf("failed to compile heading pattern for level %d: %w", level, err)
		}
		d.headRes = append(d.headRes, re)
	}

	return d, nil
}

// Denoise rewrites HTML into filtered text blocks
func (d *MarkupDenoiser) Denoise(content string) []string {
	var text string
	if d.config.UseDOM {
		rendered, err := d.domRewrite(content)
		if err != nil {
			d.logger.Warn("DOM parse failed, falling back to regex rewrite", map[string]interface{}{
				"error": err.Error(),
			})
			text = d.regexRewrite(content)
		} else {
			text = rendered
		}
	} else {
		text = d.regexRewrite(content)
	}

	return d.assembleBlocks(d.linePass(text))
}

// regexRewrite strips noise tags and converts structural tags into
// separators entirely through regular expressions
func (d *MarkupDenoiser) regexRewrite(content string) string {
	// Scripts and styles go first, with their contents
	content = d.scriptRe.ReplaceAllString(content, "")
	content = d.styleRe.ReplaceAllString(content, "")

	// Every tag outside the whitelist disappears
	content = d.tokenRe.ReplaceAllStringFunc(content, func(tag string) string {
		if d.allowRe.MatchString(tag) {
			return tag
		}
		return ""
	})

	// Surviving tags lose their attributes
	content = d.attrRe.ReplaceAllString(content, "<${1}>")

	// Divs and breaks become line separators
	content = d.divRe.ReplaceAllString(content, "\n")
	content = d.brRe.ReplaceAllString(content, "\n")

	// Headings and paragraphs become block separators keeping their inner text
	for _, headRe := range d.headRes {
		content = headRe.ReplaceAllString(content, "\n\n${1}")
	}
	content = d.paraRe.ReplaceAllString(content, "\n\n${1}")

	return content
}

// domRewrite renders the parsed node tree with the same structural
// separators the regex rewrite produces
func (d *MarkupDenoiser) domRewrite(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", err
	}

	doc.Find("script, style").Remove()

	var sb strings.Builder
	for _, root := range doc.Nodes {
		renderNode(root, &sb)
	}
	return sb.String(), nil
}

// renderNode walks a node emitting text content, with divs and breaks
// starting lines and headings and paragraphs starting blocks
func renderNode(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
	case html.ElementNode:
		switch n.Data {
		case "div":
			sb.WriteString("\n")
		case "br":
			sb.WriteString("\n")
			return
		case "h1", "h2", "h3", "h4", "h5", "h6", "p":
			sb.WriteString("\n\n")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(c, sb)
	}

	if n.Type == html.ElementNode && n.Data == "div" {
		sb.WriteString("\n")
	}
}

// linePass filters rewritten lines: bad words drop a line, lines below
// the word count threshold become block separators
func (d *MarkupDenoiser) linePass(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		switch d.filter.Judge(line) {
		case VerdictDrop:
			continue
		case VerdictSeparate:
			lines = append(lines, "\n")
		default:
			lines = append(lines, line)
		}
	}
	return lines
}

// assembleBlocks joins filtered lines and cuts them at block boundaries
func (d *MarkupDenoiser) assembleBlocks(lines []string) []string {
	joined := strings.Join(lines, "\n")

	var blocks []string
	for _, block := range strings.Split(joined, "\n\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}
