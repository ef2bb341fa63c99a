package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	docxDefaultPart  = "word/document.xml"
	docxContentTypes = "[Content_Types].xml"
	docxMainType     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

var (
	// wParagraph matches a whole <w:p ...>...</w:p> element, attributes included.
	wParagraph   = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	// wText matches <w:t> runs with any attributes.
	wText        = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	// overrideTag matches one Override element in [Content_Types].xml.
	overrideTag  = regexp.MustCompile(`<Override\s[^>]*>`)
	partNameAttr = regexp.MustCompile(`PartName="([^"]+)"`)
)

// extractDOCX returns the document text with one line per paragraph.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}

	part := docxDefaultPart
	if ct, err := readZipFile(zr, docxContentTypes); err == nil {
		if p := mainPart(ct); p != "" {
			part = p
		}
	}
	body, err := readZipFile(zr, part)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: %w", err)
	}

	var lines []string
	for _, para := range wParagraph.FindAllString(string(body), -1) {
		var b strings.Builder
		for _, m := range wText.FindAllStringSubmatch(para, -1) {
			b.WriteString(m[1])
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// mainPart returns the main document part named in [Content_Types].xml, without
// the leading slash, or "" when none is declared.
func mainPart(contentTypes []byte) string {
	for _, tag := range overrideTag.FindAllString(string(contentTypes), -1) {
		if !strings.Contains(tag, `ContentType="`+docxMainType+`"`) {
			continue
		}
		if m := partNameAttr.FindStringSubmatch(tag); m != nil {
			return strings.TrimPrefix(m[1], "/")
		}
	}
	return ""
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found", name)
}
