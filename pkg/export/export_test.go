package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "REQ-20250101-0001 timeline",
		Headers: []string{"created_at", "action", "notes"},
		Rows: []map[string]string{
			{"created_at": "2025-01-01T08:00:00Z", "action": "assigned", "notes": ""},
			{"created_at": "2025-01-01T09:00:00Z", "action": "note_added", "notes": strings.Repeat("checked belt tension, ", 20)},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "created_at,action,notes", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "2025-01-01T08:00:00Z,assigned,"))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{Title: "empty"})
	require.Error(t, err)
}
