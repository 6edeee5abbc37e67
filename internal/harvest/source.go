// Package harvest turns configured sources into organization records
// and enriches them with careers-page URLs.
package harvest

import (
	"context"
	"fmt"
)

// Fetcher is the polite network access used by extractors and the
// careers classifier. Both methods report failure as absence; callers
// treat a missing body as a soft failure, never fatal.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, bool)
	HeadOK(ctx context.Context, url string) bool
}

// Source type tags accepted in configuration.
const (
	TypeDirectory         = "directory"
	TypeCSV               = "csv"
	TypeJSON              = "json"
	TypeLocationDirectory = "location_directory"
)

// SourceConfig is the raw, untyped description of one source as it
// appears in configuration. ResolveSource validates it into a Source.
type SourceConfig struct {
	Name string `mapstructure:"name"`
	Type string `mapstructure:"type"`
	URL  string `mapstructure:"url"`
	Path string `mapstructure:"path"`

	// directory selectors
	ItemSelector     string `mapstructure:"item_selector"`
	NameSelector     string `mapstructure:"name_selector"`
	WebsiteSelector  string `mapstructure:"website_selector"`
	InfoSelector     string `mapstructure:"info_selector"`
	NextPageSelector string `mapstructure:"next_page_selector"`

	// csv column and json field mappings
	Columns map[string]string `mapstructure:"columns"`
	Fields  map[string]string `mapstructure:"fields"`
	Root    string            `mapstructure:"root"`

	// location directory options
	MaxPages          int  `mapstructure:"max_pages"`
	FetchCompanyPages bool `mapstructure:"fetch_company_pages"`
}

// EmitFunc receives one extracted record; returning false stops the
// extraction early.
type EmitFunc func(Record) bool

// Source is one resolved, validated harvesting source. Extract produces
// a finite sequence of partial records (no CareersURL/CollectedAt) and
// never fails: unreachable pages and malformed documents truncate or
// skip silently.
type Source interface {
	Name() string
	Extract(ctx context.Context, fetcher Fetcher, emit EmitFunc)
}

// ResolveSource validates a SourceConfig into its typed Source. An
// unknown type or missing required fields is a configuration error; the
// caller is expected to log and skip, not abort.
func ResolveSource(cfg SourceConfig) (Source, error) {
	switch cfg.Type {
	case TypeDirectory:
		if cfg.URL == "" || cfg.ItemSelector == "" {
			return nil, fmt.Errorf("directory source %q requires url and item_selector", cfg.Name)
		}
		return &directorySource{
			name:         sourceName(cfg, TypeDirectory),
			url:          cfg.URL,
			itemSelector: cfg.ItemSelector,
			nameSel:      cfg.NameSelector,
			websiteSel:   cfg.WebsiteSelector,
			infoSel:      cfg.InfoSelector,
			nextSel:      cfg.NextPageSelector,
		}, nil
	case TypeCSV:
		if cfg.URL == "" && cfg.Path == "" {
			return nil, fmt.Errorf("csv source %q requires url or path", cfg.Name)
		}
		return &csvSource{
			name:    sourceName(cfg, TypeCSV),
			url:     cfg.URL,
			path:    cfg.Path,
			columns: cfg.Columns,
		}, nil
	case TypeJSON:
		if cfg.URL == "" && cfg.Path == "" {
			return nil, fmt.Errorf("json source %q requires url or path", cfg.Name)
		}
		return &jsonSource{
			name:   sourceName(cfg, TypeJSON),
			url:    cfg.URL,
			path:   cfg.Path,
			fields: cfg.Fields,
			root:   cfg.Root,
		}, nil
	case TypeLocationDirectory:
		if cfg.URL == "" {
			return nil, fmt.Errorf("location_directory source %q requires url", cfg.Name)
		}
		return &locationDirectorySource{
			name:              sourceName(cfg, TypeLocationDirectory),
			url:               cfg.URL,
			maxPages:          cfg.MaxPages,
			fetchCompanyPages: cfg.FetchCompanyPages,
		}, nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Type)
	}
}

func sourceName(cfg SourceConfig, fallback string) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	return fallback
}

func mapped(m map[string]string, key string) string {
	if m == nil {
		return key
	}
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return key
}
