package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/athenaworks/orgharvest/internal/config"
	"github.com/athenaworks/orgharvest/internal/harvest"
	"github.com/athenaworks/orgharvest/internal/output"
	"github.com/athenaworks/orgharvest/internal/progress"
)

func withTestRuntime(t *testing.T, cfg config.Config) {
	t.Helper()
	orig := newRuntime
	newRuntime = func() (*runtime, error) {
		return &runtime{cfg: cfg, logger: zap.NewNop()}, nil
	}
	t.Cleanup(func() { newRuntime = orig })
}

func baseConfig() config.Config {
	return config.Config{
		UserAgent:      "orgharvest-test/1.0",
		TimeoutSeconds: 1,
		StrictRobots:   true,
	}
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func TestHarvestCommandWithLocalCSVSource(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "orgs.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"name,website\nAcme,acme.io\nAcme,acme.io\n"), 0o644))

	cfg := baseConfig()
	cfg.Sources = []harvest.SourceConfig{
		{Name: "feed", Type: harvest.TypeCSV, Path: csvPath},
	}
	withTestRuntime(t, cfg)

	outPath := filepath.Join(dir, "out", "orgs.jsonl")
	csvOut := filepath.Join(dir, "out", "orgs.csv")
	require.NoError(t, runCommand(t,
		"harvest", "--output", outPath, "--csv-output", csvOut, "--no-enrich"))

	records, err := output.ReadJSONL(outPath)
	require.NoError(t, err)
	require.Len(t, records, 1, "duplicate rows collapse to one record")
	assert.Equal(t, "https://acme.io", records[0].Website)
	assert.NotEmpty(t, records[0].CollectedAt)

	raw, err := os.ReadFile(csvOut)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "name,website,info,careers_url,source,source_url,collected_at"))
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "orgs.jsonl")
	require.NoError(t, output.WriteJSONL(inPath, []harvest.Record{
		{Name: "Acme", Website: "https://acme.io"},
	}))
	withTestRuntime(t, baseConfig())

	csvOut := filepath.Join(dir, "orgs.csv")
	require.NoError(t, runCommand(t, "export", "--input", inPath, "--csv-output", csvOut))

	raw, err := os.ReadFile(csvOut)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Acme,https://acme.io")
}

func TestEnrichResumeAppendsAndAdvancesCursor(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "orgs.jsonl")
	// No websites, so no lookups are attempted.
	require.NoError(t, output.WriteJSONL(inPath, []harvest.Record{
		{Name: "A"}, {Name: "B"}, {Name: "C"},
	}))
	outPath := filepath.Join(dir, "enriched.jsonl")
	progressPath := filepath.Join(dir, "progress.json")
	require.NoError(t, progress.Save(progressPath, 1))

	withTestRuntime(t, baseConfig())
	require.NoError(t, runCommand(t, "enrich",
		"--input", inPath,
		"--output", outPath,
		"--resume",
		"--progress-file", progressPath,
		"--max", "1"))

	records, err := output.ReadJSONL(outPath)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "B", records[0].Name)
	assert.Equal(t, 2, progress.Load(progressPath))

	// A second resumed run picks up the next record.
	require.NoError(t, runCommand(t, "enrich",
		"--input", inPath,
		"--output", outPath,
		"--resume",
		"--progress-file", progressPath))

	records, err = output.ReadJSONL(outPath)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "C", records[1].Name)
	assert.Equal(t, 3, progress.Load(progressPath))
}
