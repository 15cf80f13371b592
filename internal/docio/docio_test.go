package docio

import (
	"errors"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path     string
		expected Format
		wantErr  bool
	}{
		{"report.docx", FormatDocx, false},
		{"REPORT.DOCX", FormatDocx, false},
		{"notes.txt", FormatText, false},
		{"readme.md", FormatMarkdown, false},
		{"readme.markdown", FormatMarkdown, false},
		{"archive.pdf", "", true},
		{"noextension", "", true},
	}

	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		if tt.wantErr {
			if err == nil {
				t.Errorf("DetectFormat(%q) expected error", tt.path)
			}
			continue
		}
		if err != nil {
			t.Errorf("DetectFormat(%q) unexpected error: %v", tt.path, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("DetectFormat(%q) = %v, want %v", tt.path, got, tt.expected)
		}
	}
}

func TestExtractUnitsUnsupportedFormat(t *testing.T) {
	_, err := ExtractUnits([]byte("data"), Format("pdf"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Errorf("expected ParseError, got %v", err)
	}
}

func TestWriteErrorMessage(t *testing.T) {
	err := &WriteError{Expected: 5, Actual: 3}
	want := "write error: document has 5 units but 3 corrected texts were supplied"
	if err.Error() != want {
		t.Errorf("got %q", err.Error())
	}
}
