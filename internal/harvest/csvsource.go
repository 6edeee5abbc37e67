package harvest

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"
)

// csvSource reads rows from a local or fetched CSV document, mapping
// configured column names onto the record fields. Rows are emitted in
// file order; a row with all three fields empty is still emitted, since
// filtering is the orchestrator's concern.
type csvSource struct {
	name    string
	url     string
	path    string
	columns map[string]string
}

func (s *csvSource) Name() string { return s.name }

func (s *csvSource) Extract(ctx context.Context, fetcher Fetcher, emit EmitFunc) {
	var reader *csv.Reader
	switch {
	case s.url != "":
		body, ok := fetcher.FetchText(ctx, s.url)
		if !ok {
			return
		}
		reader = csv.NewReader(strings.NewReader(body))
	case s.path != "":
		f, err := os.Open(s.path)
		if err != nil {
			return
		}
		defer f.Close()
		reader = csv.NewReader(f)
	default:
		return
	}
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}

	nameCol := mapped(s.columns, "name")
	websiteCol := mapped(s.columns, "website")
	infoCol := mapped(s.columns, "info")

	sourceURL := s.url
	if sourceURL == "" {
		sourceURL = s.path
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			// Malformed row truncates the sequence.
			return
		}
		if !emit(Record{
			Name:      strings.TrimSpace(cell(row, index, nameCol)),
			Website:   NormalizeURL(strings.TrimSpace(cell(row, index, websiteCol))),
			Info:      strings.TrimSpace(cell(row, index, infoCol)),
			Source:    s.name,
			SourceURL: sourceURL,
		}) {
			return
		}
	}
}

func cell(row []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
