package harvest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directoryConfig() SourceConfig {
	return SourceConfig{
		Name:             "dir",
		Type:             TypeDirectory,
		URL:              "https://list.example/page1",
		ItemSelector:     "div.org",
		NameSelector:     "h2",
		WebsiteSelector:  "a.site",
		InfoSelector:     "p",
		NextPageSelector: "a.next",
	}
}

func collect(t *testing.T, cfg SourceConfig, fetcher Fetcher) []Record {
	t.Helper()
	source, err := ResolveSource(cfg)
	require.NoError(t, err)
	var records []Record
	source.Extract(context.Background(), fetcher, func(rec Record) bool {
		records = append(records, rec)
		return true
	})
	return records
}

func TestDirectoryExtractsItems(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://list.example/page1": `<html><body>
			<div class="org">
				<h2>Acme</h2>
				<a class="site" href="https://acme.io">site</a>
				<p>Rocket skates</p>
			</div>
			<div class="org">
				<h2>Globex</h2>
				<a class="site" href="globex.com">site</a>
			</div>
		</body></html>`,
	}}

	records := collect(t, directoryConfig(), fetcher)
	require.Len(t, records, 2)
	assert.Equal(t, "Acme", records[0].Name)
	assert.Equal(t, "https://acme.io", records[0].Website)
	assert.Equal(t, "Rocket skates", records[0].Info)
	assert.Equal(t, "dir", records[0].Source)
	assert.Equal(t, "https://list.example/page1", records[0].SourceURL)
	assert.Equal(t, "https://globex.com", records[1].Website)
}

func TestDirectoryFollowsRelativeNextLink(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://list.example/page1": `<html><body>
			<div class="org"><h2>Acme</h2></div>
			<a class="next" href="page2">next</a>
		</body></html>`,
		"https://list.example/page2": `<html><body>
			<div class="org"><h2>Globex</h2></div>
		</body></html>`,
	}}

	records := collect(t, directoryConfig(), fetcher)
	require.Len(t, records, 2)
	assert.Equal(t, "https://list.example/page2", records[1].SourceURL)
}

func TestDirectoryStopsOnUnreachablePage(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://list.example/page1": `<html><body>
			<div class="org"><h2>Acme</h2></div>
			<a class="next" href="/page2">next</a>
		</body></html>`,
	}}

	records := collect(t, directoryConfig(), fetcher)
	assert.Len(t, records, 1)
}

func TestDirectorySkipsEmptyItems(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://list.example/page1": `<html><body>
			<div class="org"></div>
			<div class="org"><h2>Acme</h2></div>
		</body></html>`,
	}}

	records := collect(t, directoryConfig(), fetcher)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme", records[0].Name)
}

func TestDirectoryEmitStopEndsPagination(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://list.example/page1": `<html><body>
			<div class="org"><h2>Acme</h2></div>
			<div class="org"><h2>Globex</h2></div>
			<a class="next" href="/page2">next</a>
		</body></html>`,
		"https://list.example/page2": `<html><body>
			<div class="org"><h2>Initech</h2></div>
		</body></html>`,
	}}

	source, err := ResolveSource(directoryConfig())
	require.NoError(t, err)
	var records []Record
	source.Extract(context.Background(), fetcher, func(rec Record) bool {
		records = append(records, rec)
		return false
	})
	require.Len(t, records, 1)
	assert.Equal(t, []string{"https://list.example/page1"}, fetcher.calls)
}

func TestResolveSourceValidation(t *testing.T) {
	_, err := ResolveSource(SourceConfig{Type: TypeDirectory, Name: "bad"})
	assert.Error(t, err)

	_, err = ResolveSource(SourceConfig{Type: "rss", Name: "bad"})
	assert.Error(t, err)

	_, err = ResolveSource(SourceConfig{Type: TypeCSV, Name: "bad"})
	assert.Error(t, err)
}
