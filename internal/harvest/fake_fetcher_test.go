package harvest

import "context"

// fakeFetcher serves canned bodies by URL and records every request so
// tests can assert which network calls would have been made.
type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) FetchText(_ context.Context, url string) (string, bool) {
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	return body, ok
}

func (f *fakeFetcher) HeadOK(_ context.Context, url string) bool {
	f.calls = append(f.calls, url)
	_, ok := f.pages[url]
	return ok
}
