package urlists

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ParseText extracts page URLs from newline-separated text. Lines are
// trimmed; blank lines are dropped. Invalid lines are returned separately so
// the caller can report them.
func ParseText(text string) (valid, rejected []string) {
	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			candidates = append(candidates, line)
		}
	}
	return Validate(candidates)
}

// ParseCSV extracts page URLs from the first column of CSV data. A non-URL
// first row is treated as a header and skipped.
func ParseCSV(r io.Reader) (valid, rejected []string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var candidates []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("error reading csv: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		cell := strings.TrimSpace(record[0])
		if cell == "" {
			continue
		}
		// Header rows like "url" or "page" are not report input
		if len(candidates) == 0 && !IsValidURL(cell) {
			continue
		}
		candidates = append(candidates, cell)
	}

	valid, rejected = Validate(candidates)
	return valid, rejected, nil
}

// Validate splits candidates into usable page URLs and rejects, preserving
// order and dropping duplicates.
func Validate(candidates []string) (valid, rejected []string) {
	seen := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		if IsValidURL(candidate) {
			valid = append(valid, candidate)
		} else {
			rejected = append(rejected, candidate)
		}
	}
	return valid, rejected
}

// IsValidURL reports whether s looks like an absolute page URL. Search
// Console only accepts http(s) URLs in page filters.
func IsValidURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
