package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchunk/docchunk/pkg/errors"
	"github.com/docchunk/docchunk/pkg/types"
)

// buildDOCX assembles a minimal Office Open XML container in memory.
func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractorRegistry(t *testing.T) {
	registry := NewExtractorRegistry()

	t.Run("default formats registered", func(t *testing.T) {
		for _, format := range []types.DocumentFormat{
			types.FormatPDF, types.FormatDOCX, types.FormatDOC, types.FormatPlain,
		} {
			assert.True(t, registry.IsFormatSupported(format), "format %s", format)
			extractor, err := registry.GetExtractor(format)
			require.NoError(t, err)
			assert.Equal(t, format, extractor.Format())
		}
	})

	t.Run("unknown format rejected", func(t *testing.T) {
		_, err := registry.GetExtractor(types.DocumentFormat("epub"))
		assert.Error(t, err)
	})

	t.Run("lookup by file extension", func(t *testing.T) {
		extractor, err := registry.GetExtractorForFile("/tmp/report.PDF")
		require.NoError(t, err)
		assert.Equal(t, types.FormatPDF, extractor.Format())

		_, err = registry.GetExtractorForFile("/tmp/archive.tar.gz")
		assert.Error(t, err)
	})

	t.Run("extension support checks normalize the dot", func(t *testing.T) {
		assert.True(t, registry.IsExtensionSupported(".docx"))
		assert.True(t, registry.IsExtensionSupported("docx"))
		assert.False(t, registry.IsExtensionSupported(".xlsx"))
	})

	t.Run("nil extractor rejected", func(t *testing.T) {
		assert.Error(t, registry.RegisterExtractor(nil))
	})
}

func TestPlainTextExtractor(t *testing.T) {
	extractor := NewPlainTextExtractor()

	t.Run("bytes pass through", func(t *testing.T) {
		text, err := extractor.Extract(t.Context(), []byte("line one\nline two"))
		require.NoError(t, err)
		assert.Equal(t, "line one\nline two", text)
	})

	t.Run("file contents pass through", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("file body"), 0644))

		text, err := extractor.ExtractFile(t.Context(), path)
		require.NoError(t, err)
		assert.Equal(t, "file body", text)
	})

	t.Run("missing file surfaces an error", func(t *testing.T) {
		_, err := extractor.ExtractFile(t.Context(), "/no/such/file.txt")
		assert.Error(t, err)
	})
}

func TestDOCXExtractor(t *testing.T) {
	extractor := NewDOCXExtractor()

	t.Run("paragraphs become blocks", func(t *testing.T) {
		docXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph of the report.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second paragraph with a </w:t></w:r><w:r><w:t>split run.</w:t></w:r></w:p>
  </w:body>
</w:document>`
		text, err := extractor.Extract(t.Context(), buildDOCX(t, docXML))
		require.NoError(t, err)

		blocks := []string{
			"First paragraph of the report.",
			"Second paragraph with a split run.",
		}
		assert.Equal(t, blocks[0]+"\n\n"+blocks[1], text)
	})

	t.Run("breaks and tabs become separators", func(t *testing.T) {
		docXML := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>before</w:t><w:br/><w:t>after</w:t><w:tab/><w:t>tabbed</w:t></w:r></w:p></w:body></w:document>`
		text, err := extractor.Extract(t.Context(), buildDOCX(t, docXML))
		require.NoError(t, err)
		assert.Equal(t, "before\nafter\ttabbed", text)
	})

	t.Run("invalid container is a parse failure", func(t *testing.T) {
		_, err := extractor.Extract(t.Context(), []byte("not a zip archive"))
		require.Error(t, err)
		assert.True(t, errors.IsExtractionError(err))

		structured := errors.GetDocChunkError(err)
		require.NotNil(t, structured)
		assert.Equal(t, errors.ErrCodeParseFailed, structured.Code)
	})

	t.Run("container without document xml is a parse failure", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, err := zw.Create("word/styles.xml")
		require.NoError(t, err)
		_, err = w.Write([]byte("<styles/>"))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		_, err = extractor.Extract(t.Context(), buf.Bytes())
		require.Error(t, err)
		assert.True(t, errors.IsExtractionError(err))
	})
}

func TestPDFExtractorRejectsGarbage(t *testing.T) {
	extractor := NewPDFExtractor()

	_, err := extractor.Extract(t.Context(), []byte("this is not a pdf"))
	require.Error(t, err)
	assert.True(t, errors.IsExtractionError(err))
}

func TestDOCExtractorReportsMissingTool(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	extractor := NewDOCExtractor()
	_, err := extractor.Extract(t.Context(), []byte{0xd0, 0xcf, 0x11, 0xe0})
	require.Error(t, err)

	structured := errors.GetDocChunkError(err)
	require.NotNil(t, structured)
	assert.Equal(t, errors.ErrCodeToolMissing, structured.Code)
}
