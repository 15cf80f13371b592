package docio

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"html"
	"io"
	"regexp"
	"sort"
	"strings"
)

// A docx file is a zip container. Prose lives in <w:p> paragraph elements
// of the main document part and the header/footer parts; table cells hold
// ordinary paragraphs inside the main part, so one scan covers them too.
// Paragraphs are manipulated textually rather than through encoding/xml:
// round-tripping OOXML through Go's namespace-rewriting encoder corrupts
// the part, while targeted splicing of <w:t> runs leaves everything else
// byte-identical.
var (
	docxParagraphRe    = regexp.MustCompile(`(?s)<w:p(?: [^>]*)?/>|<w:p(?: [^>]*)?>.*?</w:p>`)
	docxTextRe         = regexp.MustCompile(`(?s)<w:t(?: [^>]*)?/>|<w:t(?: [^>]*)?>(.*?)</w:t>`)
	docxHeaderFooterRe = regexp.MustCompile(`^word/(?:header|footer)\d*\.xml$`)
)

const docxMainPart = "word/document.xml"

// textParts returns the zip entries holding prose, in deterministic order:
// the main document part first, then header parts, then footer parts, each
// group sorted by name. Extraction and write-back both rely on this order.
func textParts(zr *zip.Reader) []*zip.File {
	var main *zip.File
	var headers, footers []*zip.File
	for _, f := range zr.File {
		switch {
		case f.Name == docxMainPart:
			main = f
		case docxHeaderFooterRe.MatchString(f.Name):
			if strings.HasPrefix(f.Name, "word/header") {
				headers = append(headers, f)
			} else {
				footers = append(footers, f)
			}
		}
	}
	sort.Slice(headers, func(i, j int) bool { return headers[i].Name < headers[j].Name })
	sort.Slice(footers, func(i, j int) bool { return footers[i].Name < footers[j].Name })

	var parts []*zip.File
	if main != nil {
		parts = append(parts, main)
	}
	parts = append(parts, headers...)
	parts = append(parts, footers...)
	return parts
}

func readZipFile(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// paragraphText concatenates the text runs of one paragraph element.
func paragraphText(para string) string {
	var b strings.Builder
	for _, m := range docxTextRe.FindAllStringSubmatch(para, -1) {
		b.WriteString(html.UnescapeString(m[1]))
	}
	return b.String()
}

func extractDocx(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Reason: "not a valid docx container", Err: err}
	}

	parts := textParts(zr)
	if len(parts) == 0 || parts[0].Name != docxMainPart {
		return nil, &ParseError{Reason: "missing " + docxMainPart}
	}

	var units []string
	for _, f := range parts {
		content, err := readZipFile(f)
		if err != nil {
			return nil, &ParseError{Reason: "failed to read " + f.Name, Err: err}
		}
		for _, para := range docxParagraphRe.FindAllString(content, -1) {
			units = append(units, paragraphText(para))
		}
	}
	return units, nil
}

func writeDocx(data []byte, corrected []string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ParseError{Reason: "not a valid docx container", Err: err}
	}

	parts := textParts(zr)
	if len(parts) == 0 || parts[0].Name != docxMainPart {
		return nil, &ParseError{Reason: "missing " + docxMainPart}
	}

	contents := make([]string, len(parts))
	total := 0
	for i, f := range parts {
		content, err := readZipFile(f)
		if err != nil {
			return nil, &ParseError{Reason: "failed to read " + f.Name, Err: err}
		}
		contents[i] = content
		total += len(docxParagraphRe.FindAllString(content, -1))
	}
	if total != len(corrected) {
		return nil, &WriteError{Expected: total, Actual: len(corrected)}
	}

	rewritten := make(map[string][]byte, len(parts))
	idx := 0
	for i, f := range parts {
		out := docxParagraphRe.ReplaceAllStringFunc(contents[i], func(para string) string {
			text := corrected[idx]
			idx++
			if text == paragraphText(para) {
				return para
			}
			return replaceParagraphText(para, text)
		})
		rewritten[f.Name] = []byte(out)
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, f := range zr.File {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: f.Method, Modified: f.Modified})
		if err != nil {
			zw.Close()
			return nil, err
		}
		if content, ok := rewritten[f.Name]; ok {
			if _, err := w.Write(content); err != nil {
				zw.Close()
				return nil, err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			zw.Close()
			return nil, err
		}
		_, err = io.Copy(w, rc)
		rc.Close()
		if err != nil {
			zw.Close()
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// replaceParagraphText puts the corrected text into the paragraph's first
// text run and empties the rest, preserving run-level structure around the
// text. A paragraph with no text runs is left untouched: its extracted
// text was empty, so the pipeline skipped it.
func replaceParagraphText(para, text string) string {
	first := true
	return docxTextRe.ReplaceAllStringFunc(para, func(string) string {
		if first {
			first = false
			return `<w:t xml:space="preserve">` + escapeXML(text) + `</w:t>`
		}
		return `<w:t/>`
	})
}

func escapeXML(s string) string {
	var b bytes.Buffer
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
