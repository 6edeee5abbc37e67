package harvest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"example.com", "https://example.com"},
		{"https://x.com", "https://x.com"},
		{"http://x.com", "http://x.com"},
		{"", ""},
		{"example.com/path", "https://example.com/path"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeURL(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeURLIdempotent(t *testing.T) {
	once := NormalizeURL("example.com")
	twice := NormalizeURL(once)
	assert.Equal(t, once, twice)
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	records := []Record{
		{Name: "A", Website: "w1", Info: "first"},
		{Name: "B", Website: "w2"},
		{Name: "A", Website: "w1", Info: "dup"},
	}
	unique := Dedupe(records)
	require.Len(t, unique, 2)
	assert.Equal(t, "A", unique[0].Name)
	assert.Equal(t, "first", unique[0].Info)
	assert.Equal(t, "B", unique[1].Name)
}

func TestDedupeDistinguishesWebsites(t *testing.T) {
	records := []Record{
		{Name: "A", Website: "w1"},
		{Name: "A", Website: "w2"},
	}
	assert.Len(t, Dedupe(records), 2)
}

func TestRecordJSONRoundTrip(t *testing.T) {
	rec := Record{
		Name:        "Acme",
		Website:     "https://acme.io",
		Info:        "Rocket skates",
		Source:      "csv",
		SourceURL:   "data/in.csv",
		CareersURL:  "https://acme.io/careers",
		CollectedAt: "2026-08-30T00:00:00Z",
		Extra:       map[string]string{"batch": "W26", "location": "Toronto"},
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var got Record
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, rec, got)
}

func TestRecordMarshalOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(Record{Name: "Acme"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Acme"}`, string(data))
}

func TestRecordUnmarshalCoercesNumbers(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Acme","employees":45,"careers_url":null}`), &rec))
	assert.Equal(t, "Acme", rec.Name)
	assert.Equal(t, "45", rec.Extra["employees"])
	assert.Empty(t, rec.CareersURL)
}
