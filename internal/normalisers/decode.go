package normalisers

import (
	"bytes"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText converts raw bytes to text, dropping invalid UTF-8 sequences,
// a leading byte order mark and carriage returns before newlines.
func DecodeText(content []byte) string {
	content = bytes.TrimPrefix(content, utf8BOM)
	s := strings.ToValidUTF8(string(content), "")
	return strings.ReplaceAll(s, "\r\n", "\n")
}
