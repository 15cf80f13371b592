// Package docio extracts an ordered sequence of text units from a document
// container and writes corrected units back into the same structure. The
// unit sequence is the contract with the pipeline: write-back requires
// exactly as many corrected texts as were extracted, in the same order, and
// treats any mismatch as an internal invariant violation, not a user error.
package docio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a supported document container.
type Format string

const (
	FormatDocx     Format = "docx"
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
)

// DetectFormat maps a file path to its container format by extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return FormatDocx, nil
	case ".txt":
		return FormatText, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported file extension %q (want .docx, .txt, or .md)", filepath.Ext(path))
}

// ParseError reports a malformed or unsupported input document. It is
// fatal: the pipeline never runs.
type ParseError struct {
	Reason string
	Err    error
}

// Error implements error.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse error: %s", e.Reason)
}

// Unwrap supports errors.Is / errors.As.
func (e *ParseError) Unwrap() error { return e.Err }

// WriteError reports a reassembly length mismatch between the extracted
// unit count and the corrected texts. The pipeline guarantees this never
// happens; seeing one means an internal invariant was violated.
type WriteError struct {
	Expected int
	Actual   int
}

// Error implements error.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write error: document has %d units but %d corrected texts were supplied", e.Expected, e.Actual)
}

// ExtractUnits returns the ordered text units of the document: one per
// paragraph for docx, one per line for txt/md.
func ExtractUnits(data []byte, f Format) ([]string, error) {
	switch f {
	case FormatDocx:
		return extractDocx(data)
	case FormatText, FormatMarkdown:
		return extractLines(data), nil
	}
	return nil, &ParseError{Reason: fmt.Sprintf("unsupported format %q", f)}
}

// WriteUnits re-serializes the original document with the corrected unit
// texts substituted in place. len(corrected) must equal the unit count
// ExtractUnits produced for the same data.
func WriteUnits(data []byte, corrected []string, f Format) ([]byte, error) {
	switch f {
	case FormatDocx:
		return writeDocx(data, corrected)
	case FormatText, FormatMarkdown:
		return writeLines(data, corrected)
	}
	return nil, &ParseError{Reason: fmt.Sprintf("unsupported format %q", f)}
}
