package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/lu4p/cat"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// extractPlain returns content as a string without a leading BOM. Invalid
// UTF-8 sequences are replaced with the replacement character.
func extractPlain(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "�"), nil
	}
	return string(content), nil
}

// extractWithCat handles .rtf and .odt, detected by content type.
func extractWithCat(content []byte) (string, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
