package harvest

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Record is one harvested organization. Extra holds source-specific
// metadata (batch labels, headcount, and the like) that rides along to
// the output without the core caring about it.
type Record struct {
	Name        string
	Website     string
	Info        string
	Source      string
	SourceURL   string
	CareersURL  string
	CollectedAt string
	Extra       map[string]string
}

// baseFields are the record fields with fixed positions in outputs.
// Extra keys colliding with these are ignored on marshal.
var baseFields = map[string]struct{}{
	"name":         {},
	"website":      {},
	"info":         {},
	"careers_url":  {},
	"source":       {},
	"source_url":   {},
	"collected_at": {},
}

// MarshalJSON folds Extra into the top-level object. Empty fields are
// omitted so "absent" stays distinguishable from empty string.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(baseFields)+len(r.Extra))
	if r.Name != "" {
		m["name"] = r.Name
	}
	if r.Website != "" {
		m["website"] = r.Website
	}
	if r.Info != "" {
		m["info"] = r.Info
	}
	if r.CareersURL != "" {
		m["careers_url"] = r.CareersURL
	}
	if r.Source != "" {
		m["source"] = r.Source
	}
	if r.SourceURL != "" {
		m["source_url"] = r.SourceURL
	}
	if r.CollectedAt != "" {
		m["collected_at"] = r.CollectedAt
	}
	for k, v := range r.Extra {
		if _, taken := baseFields[k]; taken {
			continue
		}
		m[k] = v
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return b, nil
}

// UnmarshalJSON splits the flat object back into base fields and Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	*r = Record{}
	for k, v := range m {
		s := coerceString(v)
		switch k {
		case "name":
			r.Name = s
		case "website":
			r.Website = s
		case "info":
			r.Info = s
		case "careers_url":
			r.CareersURL = s
		case "source":
			r.Source = s
		case "source_url":
			r.SourceURL = s
		case "collected_at":
			r.CollectedAt = s
		default:
			if s == "" {
				continue
			}
			if r.Extra == nil {
				r.Extra = make(map[string]string)
			}
			r.Extra[k] = s
		}
	}
	return nil
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// recordKey is the uniqueness key for deduplication.
type recordKey struct {
	name    string
	website string
}

// Dedupe drops later duplicates by (name, website), preserving the
// first-seen order.
func Dedupe(records []Record) []Record {
	seen := make(map[recordKey]struct{}, len(records))
	unique := make([]Record, 0, len(records))
	for _, rec := range records {
		key := recordKey{name: rec.Name, website: rec.Website}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, rec)
	}
	return unique
}

// NormalizeURL adds an https scheme to bare hostnames. It is idempotent
// and leaves already-schemed or empty values untouched.
func NormalizeURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "https://" + raw
	}
	return raw
}

// resolveRef resolves a possibly-relative href against a base URL.
// An unparsable base or ref yields the ref unchanged.
func resolveRef(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
