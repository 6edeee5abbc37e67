package harvest

import (
	"context"
	"encoding/json"
	"os"
)

// jsonSource reads records from a local or fetched JSON document. When
// the top-level value is an object, the configured root key selects the
// records array; anything that is not an array of objects after descent
// yields zero records.
type jsonSource struct {
	name   string
	url    string
	path   string
	fields map[string]string
	root   string
}

func (s *jsonSource) Name() string { return s.name }

func (s *jsonSource) Extract(ctx context.Context, fetcher Fetcher, emit EmitFunc) {
	var raw []byte
	switch {
	case s.url != "":
		body, ok := fetcher.FetchText(ctx, s.url)
		if !ok {
			return
		}
		raw = []byte(body)
	case s.path != "":
		data, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		raw = data
	default:
		return
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return
	}

	if obj, isObj := data.(map[string]any); isObj {
		if inner, found := obj[s.root]; found {
			data = inner
		}
	}
	items, isArray := data.([]any)
	if !isArray {
		return
	}

	nameField := mapped(s.fields, "name")
	websiteField := mapped(s.fields, "website")
	infoField := mapped(s.fields, "info")

	sourceURL := s.url
	if sourceURL == "" {
		sourceURL = s.path
	}

	for _, item := range items {
		row, isObj := item.(map[string]any)
		if !isObj {
			continue
		}
		if !emit(Record{
			Name:      coerceString(row[nameField]),
			Website:   NormalizeURL(coerceString(row[websiteField])),
			Info:      coerceString(row[infoField]),
			Source:    s.name,
			SourceURL: sourceURL,
		}) {
			return
		}
	}
}
