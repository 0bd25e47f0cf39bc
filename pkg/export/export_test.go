package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Dataset {
	return Dataset{
		Title:   "Notes",
		Headers: []string{"title", "downloads"},
		Rows: [][]string{
			{"Graph theory, part 1", "12"},
			{"Operating systems", "3"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sample())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "title,downloads", lines[0])
	assert.Equal(t, `"Graph theory, part 1",12`, lines[1])
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sample())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestDatasetValidation(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewCSVExporter().Render(Dataset{Headers: []string{"a", "b"}, Rows: [][]string{{"1"}}})
	assert.Error(t, err)
}

func TestForFormat(t *testing.T) {
	e, err := ForFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", e.ContentType())
	_, err = ForFormat("xlsx")
	assert.Error(t, err)
	assert.Equal(t, 48, len([]rune(truncate(strings.Repeat("x", 100)))))
}
