package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/athenaworks/orgharvest/internal/harvest"
)

// csvBaseFields lead every CSV projection in fixed order; extra fields
// present on any record follow, sorted by name.
var csvBaseFields = []string{
	"name",
	"website",
	"info",
	"careers_url",
	"source",
	"source_url",
	"collected_at",
}

// WriteCSV writes the tabular projection of records to path.
func WriteCSV(path string, records []harvest.Record) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	extraSet := make(map[string]struct{})
	for _, rec := range records {
		for k := range rec.Extra {
			extraSet[k] = struct{}{}
		}
	}
	extra := make([]string, 0, len(extraSet))
	for k := range extraSet {
		extra = append(extra, k)
	}
	sort.Strings(extra)

	w := csv.NewWriter(f)
	if err := w.Write(append(append([]string{}, csvBaseFields...), extra...)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Name,
			rec.Website,
			rec.Info,
			rec.CareersURL,
			rec.Source,
			rec.SourceURL,
			rec.CollectedAt,
		}
		for _, k := range extra {
			row = append(row, rec.Extra[k])
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
