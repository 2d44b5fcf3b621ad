package chunkers

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// sectionNode is one node of the parsed heading tree. A node carries the
// literal text found directly under its heading, the bullet lists found
// there, and its nested subsections, all in document order.
type sectionNode struct {
	heading  string
	content  []string
	lists    [][]string
	children []*sectionNode
}

// MarkdownTreeWalker flattens the heading structure of a Markdown document
// into (heading path, content) pairs. Heading paths accumulate from the
// document root joined by " - ". Bullet lists are skipped unless the
// configuration includes them; collapsible <details> wrappers in leaf
// content split the leaf into independent chunks sharing one heading path.
type MarkdownTreeWalker struct {
	includeLists bool
	detailsRe    *regexp.Regexp
}

// NewMarkdownTreeWalker creates a walker for the given configuration
func NewMarkdownTreeWalker(config *ChunkerConfig) (*MarkdownTreeWalker, error) {
	if config == nil {
		config = DefaultChunkerConfig()
	}

	detailsRe, err := regexp.Compile(`(?i)</?details[^>]*>`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile details wrapper pattern: %w", err)
	}

	return &MarkdownTreeWalker{
		includeLists: config.IncludeLists,
		detailsRe:    detailsRe,
	}, nil
}

// Walk parses data as Markdown and returns a lazy sequence of
// (heading path, content) pairs in document order
func (w *MarkdownTreeWalker) Walk(data string) iter.Seq2[string, string] {
	root := buildSectionTree([]byte(data))

	return func(yield func(string, string) bool) {
		// Content before the first heading has no path
		if len(root.content) > 0 {
			for _, piece := range w.splitLeaf(strings.Join(root.content, "\n\n")) {
				if !yield("", piece) {
					return
				}
			}
		}
		for _, child := range root.children {
			if !w.walkNode("", child, yield) {
				return
			}
		}
	}
}

// walkNode emits the pairs rooted at one section. The emitted path is the
// incoming prefix joined to the paths produced below this node, so the
// top-level call leaves a leading " - " on every path.
func (w *MarkdownTreeWalker) walkNode(prefix string, n *sectionNode, yield func(string, string) bool) bool {
	if len(n.content) > 0 {
		for _, piece := range w.splitLeaf(strings.Join(n.content, "\n\n")) {
			if !yield(prefix+" - "+n.heading, piece) {
				return false
			}
		}
	}

	if w.includeLists {
		for _, list := range n.lists {
			for i, item := range list {
				for _, piece := range w.splitLeaf(item) {
					if !yield(prefix+" - "+n.heading+" - "+strconv.Itoa(i), piece) {
						return false
					}
				}
			}
		}
	}

	for _, child := range n.children {
		ok := w.walkNode(n.heading, child, func(subPath, chunk string) bool {
			return yield(prefix+" - "+subPath, chunk)
		})
		if !ok {
			return false
		}
	}
	return true
}

// splitLeaf breaks leaf content at collapsible wrapper boundaries and
// strips bracket characters, trimming each resulting piece
func (w *MarkdownTreeWalker) splitLeaf(content string) []string {
	content = strings.NewReplacer("[", "", "]", "").Replace(content)

	var pieces []string
	for _, piece := range w.detailsRe.Split(content, -1) {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			pieces = append(pieces, piece)
		}
	}
	return pieces
}

// buildSectionTree parses Markdown source into a heading tree. Headings
// open sections nested by level; every other top-level block attaches to
// the innermost open section.
func buildSectionTree(source []byte) *sectionNode {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	root := &sectionNode{}
	stack := []*sectionNode{root}
	levels := []int{0}

	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Heading:
			node := &sectionNode{heading: strings.TrimSpace(blockText(n, source))}
			for len(levels) > 1 && levels[len(levels)-1] >= n.Level {
				stack = stack[:len(stack)-1]
				levels = levels[:len(levels)-1]
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, node)
			stack = append(stack, node)
			levels = append(levels, n.Level)

		case *ast.List:
			if items := listItems(n, source); len(items) > 0 {
				cur := stack[len(stack)-1]
				cur.lists = append(cur.lists, items)
			}

		default:
			if txt := strings.TrimSpace(blockText(c, source)); txt != "" {
				cur := stack[len(stack)-1]
				cur.content = append(cur.content, txt)
			}
		}
	}
	return root
}

// listItems collects the text of each list item. Nested lists flatten
// into the parent list as additional items.
func listItems(list *ast.List, source []byte) []string {
	var items []string
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		var parts []string
		var nested []string
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				nested = append(nested, listItems(sub, source)...)
				continue
			}
			if txt := strings.TrimSpace(blockText(c, source)); txt != "" {
				parts = append(parts, txt)
			}
		}
		if len(parts) > 0 {
			items = append(items, strings.Join(parts, " "))
		}
		items = append(items, nested...)
	}
	return items
}

// blockText returns the source text covered by a leaf block node.
// Container nodes carry no line segments and yield an empty string.
func blockText(n ast.Node, source []byte) string {
	lines := n.Lines()
	if lines.Len() == 0 {
		return ""
	}
	start := lines.At(0).Start
	stop := lines.At(0).Stop
	for i := 1; i < lines.Len(); i++ {
		if seg := lines.At(i); seg.Stop > stop {
			stop = seg.Stop
		}
	}
	return string(source[start:stop])
}
