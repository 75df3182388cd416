package logs

import "strings"

// Filter selects log lines. Zero fields match everything. Matching is textual
// so it works for both the console and the JSON log formats.
type Filter struct {
	// BatchID matches lines carrying this batch_id (a prefix is enough).
	BatchID string
	// Contains matches lines containing the substring, case-insensitively.
	Contains string
}

// Match reports whether line passes every non-empty criterion.
func (f Filter) Match(line string) bool {
	if id := strings.TrimSpace(f.BatchID); id != "" {
		if !strings.Contains(line, "batch_id="+id) && !strings.Contains(line, `"batch_id":"`+id) {
			return false
		}
	}
	if needle := strings.TrimSpace(f.Contains); needle != "" {
		if !strings.Contains(strings.ToLower(line), strings.ToLower(needle)) {
			return false
		}
	}
	return true
}

// Apply returns the lines that pass f.
func (f Filter) Apply(lines []string) []string {
	if f == (Filter{}) {
		return lines
	}
	out := lines[:0:0]
	for _, line := range lines {
		if f.Match(line) {
			out = append(out, line)
		}
	}
	return out
}
