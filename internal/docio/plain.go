package docio

import (
	"bytes"
	"strings"
)

// Plain-text and Markdown documents are treated line by line: one unit per
// line, reassembled with the original newline convention.

func extractLines(data []byte) []string {
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(s, "\n")
}

func writeLines(data []byte, corrected []string) ([]byte, error) {
	lines := extractLines(data)
	if len(lines) != len(corrected) {
		return nil, &WriteError{Expected: len(lines), Actual: len(corrected)}
	}
	sep := "\n"
	if bytes.Contains(data, []byte("\r\n")) {
		sep = "\r\n"
	}
	return []byte(strings.Join(corrected, sep)), nil
}
