package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/docchunk/docchunk/pkg/errors"
	"github.com/docchunk/docchunk/pkg/interfaces"
	"github.com/docchunk/docchunk/pkg/types"
)

// antiwordTool is the external command used to read legacy Word documents
const antiwordTool = "antiword"

// DOCExtractor extracts plain text from legacy Word documents by invoking
// the antiword command line tool. The tool is located on PATH at
// extraction time, so a missing binary surfaces only when a .doc input
// is actually processed.
type DOCExtractor struct{}

// NewDOCExtractor creates a new DOC extractor
func NewDOCExtractor() *DOCExtractor {
	return &DOCExtractor{}
}

// Format returns the document format this extractor handles
func (e *DOCExtractor) Format() types.DocumentFormat {
	return types.FormatDOC
}

// Extract converts raw DOC bytes into plain text via a temporary file
func (e *DOCExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "docchunk-*.doc")
	if err != nil {
		return "", errors.NewExtractionError(string(types.FormatDOC), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.NewExtractionError(string(types.FormatDOC), err)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.NewExtractionError(string(types.FormatDOC), err)
	}

	return e.ExtractFile(ctx, tmp.Name())
}

// ExtractFile converts a DOC file into plain text
func (e *DOCExtractor) ExtractFile(ctx context.Context, filePath string) (string, error) {
	tool, err := exec.LookPath(antiwordTool)
	if err != nil {
		return "", errors.NewToolMissingError(antiwordTool)
	}

	cmd := exec.CommandContext(ctx, tool, filePath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", errors.NewExtractionError(string(types.FormatDOC),
			fmt.Errorf("%s failed: %w: %s", antiwordTool, err, strings.TrimSpace(stderr.String())))
	}

	return stdout.String(), nil
}

var _ interfaces.Extractor = (*DOCExtractor)(nil)
