package drift

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/intentdrift/internal/goalgraph"
)

func scoredScorer(t *testing.T) *Scorer {
	t.Helper()
	s := New(DefaultConfig())
	ctx := context.Background()
	_, _, err := s.Update(ctx, "search flights from SFO to NYC", "book_flight", 1, 1, goalgraph.Unbounded())
	require.NoError(t, err)
	_, _, err = s.Update(ctx, "book hotel near Times Square", "book_hotel", 2, 5, goalgraph.NewWindow(2, 4))
	require.NoError(t, err)
	return s
}

func TestExportTrace_InMemory(t *testing.T) {
	s := scoredScorer(t)
	r, err := s.ExportTrace("")
	require.NoError(t, err)
	assert.Equal(t, s.Total(), r.TotalIDS)
	assert.Len(t, r.Steps, 2)
}

func TestExportTrace_EmptyTraceEncodesArray(t *testing.T) {
	r, err := New(DefaultConfig()).ExportTrace("")
	require.NoError(t, err)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_ids": 0, "steps": []}`, string(data))
}

func TestExportTrace_WritesFile(t *testing.T) {
	s := scoredScorer(t)
	path := filepath.Join(t.TempDir(), "out", "ids_trace.json")

	r, err := s.ExportTrace(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"total_ids\": "), "expected two-space indent, got:\n%s", data)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "total_ids")
	steps, ok := raw["steps"].([]any)
	require.True(t, ok)
	require.Len(t, steps, 2)

	first, ok := steps[0].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"t", "step", "goal", "delta", "total_ids"} {
		assert.Contains(t, first, key)
	}
	assert.Len(t, first, 5)
	assert.Equal(t, "search flights from SFO to NYC", first["step"])

	back, err := ReadReport(path)
	require.NoError(t, err)
	assert.Equal(t, r, back)
}

func TestExportTrace_WriteFailureSurfaced(t *testing.T) {
	s := scoredScorer(t)
	dir := t.TempDir()

	r, err := s.ExportTrace(dir)
	require.Error(t, err, "writing to a directory path must fail")
	assert.Len(t, r.Steps, 2, "report is still returned")
}
