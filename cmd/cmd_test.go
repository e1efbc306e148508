package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/intentdrift/internal/drift"
)

func isolate(t *testing.T) string {
	t.Helper()
	for _, env := range []string{
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
		"IDS_DB", "IDS_LLM_PROVIDER", "NO_COLOR",
	} {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

// resetFlags restores every flag in the command tree to its default so
// values set by one execute call do not leak into the next.
func resetFlags(t *testing.T, c *cobra.Command) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			require.NoError(t, sv.Replace(nil))
		} else {
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(t, sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t, rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	isolate(t)

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ids (devel)\n", out)
}

func TestRunTravelAndTrace(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "ids.db")
	trace := filepath.Join(dir, "trace.json")

	out, err := execute(t, "run", "--db", db, "--out", trace, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "t=01 action='search flights from SFO to NYC' goal='book_flight'")
	assert.Contains(t, out, "Final IDS:")
	assert.Contains(t, out, "Trace:     "+trace)

	r, err := drift.ReadReport(trace)
	require.NoError(t, err)
	require.Len(t, r.Steps, 5)
	assert.InDelta(t, r.Steps[4].Total, r.TotalIDS, 1e-12)

	id := regexp.MustCompile(`Run:\s+(\S+)`).FindStringSubmatch(out)
	require.Len(t, id, 2)

	out, err = execute(t, "trace", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, id[1])
	assert.Contains(t, out, "travel")

	out, err = execute(t, "trace", "view", id[1], "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Selector:  first")
	assert.Contains(t, out, "create a 3-day itinerary")

	exported := filepath.Join(dir, "exported.json")
	_, err = execute(t, "trace", "export", id[1], "--db", db, "--out", exported)
	require.NoError(t, err)
	again, err := drift.ReadReport(exported)
	require.NoError(t, err)
	assert.Equal(t, r, again)

	_, err = execute(t, "trace", "rm", id[1], "--db", db)
	require.NoError(t, err)
	_, err = execute(t, "trace", "view", id[1], "--db", db)
	assert.ErrorContains(t, err, "not found")
}

func TestGraph(t *testing.T) {
	isolate(t)

	out, err := execute(t, "graph")
	require.NoError(t, err)
	assert.Regexp(t, `book_flight\s+1\s`, out)
	assert.Regexp(t, `book_hotel\s+2\s+\[2, 4\]\s+book_flight`, out)
	assert.Regexp(t, `plan_activity\s+3\s+\[4, 6\]\s+book_hotel`, out)
}

func TestCostIdentical(t *testing.T) {
	isolate(t)

	out, err := execute(t, "cost", "--a", "book flight", "--b", "book flight", "--reg", "1")
	require.NoError(t, err)
	assert.Regexp(t, `^\d+\.\d{6}\n$`, out)
}

func TestCostNeedsBothClouds(t *testing.T) {
	isolate(t)

	_, err := execute(t, "cost", "--a", "only one side")
	assert.ErrorContains(t, err, "--a and --b")
}

func TestFlagsDoNotLeakBetweenRuns(t *testing.T) {
	isolate(t)

	_, err := execute(t, "cost", "--a", "x", "--b", "y", "--reg", "1")
	require.NoError(t, err)

	_, err = execute(t, "cost", "--a", "x")
	assert.ErrorContains(t, err, "--a and --b")
}

func TestTraceWithoutTerminalLists(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "ids.db")

	_, err := execute(t, "run", "--db", db, "--out", "")
	require.NoError(t, err)

	out, err := execute(t, "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "travel")
	assert.Contains(t, out, "Scenario")
}

func TestResetNeedsConfirmation(t *testing.T) {
	dir := isolate(t)

	_, err := execute(t, "reset", "--db", filepath.Join(dir, "ids.db"))
	assert.ErrorContains(t, err, "--yes")
}

func TestLLMStatsEmpty(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, "llm", "stats", "--db", filepath.Join(dir, "ids.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "No LLM usage recorded yet.")
}
