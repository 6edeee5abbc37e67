// Package output persists harvested records as newline-delimited JSON
// and a tabular CSV projection.
package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf16"

	"github.com/athenaworks/orgharvest/internal/harvest"
)

// WriteJSONL writes records to path, one JSON object per line,
// replacing any existing file. Parent directories are created.
func WriteJSONL(path string, records []harvest.Record) error {
	return writeJSONL(path, records, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
}

// AppendJSONL appends records to path, creating it if needed.
func AppendJSONL(path string, records []harvest.Record) error {
	return writeJSONL(path, records, os.O_CREATE|os.O_WRONLY|os.O_APPEND)
}

func writeJSONL(path string, records []harvest.Record, flags int) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, rec := range records {
		line, err := MarshalASCII(rec)
		if err != nil {
			return err
		}
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// ReadJSONL loads records from a newline-delimited JSON file. Blank
// lines are skipped; a malformed line is an error.
func ReadJSONL(path string) ([]harvest.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var records []harvest.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec harvest.Record
		if err := rec.UnmarshalJSON([]byte(line)); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return records, nil
}

// MarshalASCII marshals a record with all non-ASCII runes escaped as
// \uXXXX sequences, so the output file stays pure ASCII.
func MarshalASCII(rec harvest.Record) ([]byte, error) {
	raw, err := rec.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return escapeNonASCII(raw), nil
}

// escapeNonASCII rewrites non-ASCII runes as JSON unicode escapes. The
// input is already valid JSON, so multi-byte runes only occur inside
// strings where an escape is always legal.
func escapeNonASCII(raw []byte) []byte {
	ascii := true
	for _, b := range raw {
		if b >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return raw
	}

	var sb strings.Builder
	sb.Grow(len(raw))
	for _, r := range string(raw) {
		if r < 0x80 {
			sb.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, `\u%04x\u%04x`, hi, lo)
			continue
		}
		fmt.Fprintf(&sb, `\u%04x`, r)
	}
	return []byte(sb.String())
}
