package harvest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVFromLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orgs.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"company,homepage,about\nAcme, acme.io ,Rocket skates\nGlobex,,\n"), 0o644))

	records := collect(t, SourceConfig{
		Name: "feed",
		Type: TypeCSV,
		Path: path,
		Columns: map[string]string{
			"name":    "company",
			"website": "homepage",
			"info":    "about",
		},
	}, &fakeFetcher{})

	require.Len(t, records, 2)
	assert.Equal(t, "Acme", records[0].Name)
	assert.Equal(t, "https://acme.io", records[0].Website)
	assert.Equal(t, "Rocket skates", records[0].Info)
	assert.Equal(t, path, records[0].SourceURL)

	// Empty fields still emit a record; filtering is the
	// orchestrator's concern.
	assert.Equal(t, "Globex", records[1].Name)
	assert.Empty(t, records[1].Website)
}

func TestCSVFromRemoteBody(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://feed.example/orgs.csv": "name,website,info\nAcme,acme.io,skates\n",
	}}

	records := collect(t, SourceConfig{
		Name: "feed",
		Type: TypeCSV,
		URL:  "https://feed.example/orgs.csv",
	}, fetcher)

	require.Len(t, records, 1)
	assert.Equal(t, "https://feed.example/orgs.csv", records[0].SourceURL)
}

func TestCSVUnreachableYieldsNothing(t *testing.T) {
	records := collect(t, SourceConfig{
		Name: "feed",
		Type: TypeCSV,
		URL:  "https://feed.example/missing.csv",
	}, &fakeFetcher{})
	assert.Empty(t, records)
}

func TestCSVMissingColumnsReadAsEmpty(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://feed.example/orgs.csv": "name\nAcme\n",
	}}
	records := collect(t, SourceConfig{
		Name: "feed",
		Type: TypeCSV,
		URL:  "https://feed.example/orgs.csv",
	}, fetcher)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Website)
}
