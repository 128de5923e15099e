package fetch

import (
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// bomOverride checks the text has the BOM, and returns decoder for the encoding.
// If the text has no BOM, this functions returns defaultDecoder.
// The []byte in returns is the text that droped BOM.
func bomOverride(b []byte, defaultDecoder *encoding.Decoder) ([]byte, *encoding.Decoder) {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:], unicode.UTF8.NewDecoder()
	}
	if len(b) >= 2 {
		if b[0] == 0xFE && b[1] == 0xFF {
			return b[2:], unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		}
		if b[0] == 0xFF && b[1] == 0xFE {
			return b[2:], unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		}
	}
	return b, defaultDecoder
}

// charsetDecoder returns a decoder for the charset parameter of the Content-Type.
// It returns nil if the charset is not specified or not known.
func charsetDecoder(contentType string) *encoding.Decoder {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	cs, ok := params["charset"]
	if !ok {
		return nil
	}
	enc, err := htmlindex.Get(cs)
	if err != nil {
		return nil
	}
	return enc.NewDecoder()
}

// decode converts a response body into a UTF-8 string.
//
// The BOM has the highest priority, and then the charset in contentType.
// Otherwise the body is read as UTF-8, and invalid bytes are replaced by U+FFFD.
func decode(body []byte, contentType string) string {
	dec := charsetDecoder(contentType)
	if dec == nil {
		dec = unicode.UTF8.NewDecoder()
	}
	body, dec = bomOverride(body, dec)

	s, err := dec.Bytes(body)
	if err != nil {
		s = body
	}
	if !utf8.Valid(s) {
		s = []byte(strings.ToValidUTF8(string(s), "\uFFFD"))
	}

	return strings.ReplaceAll(strings.ReplaceAll(string(s), "\r\n", "\n"), "\r", "\n")
}
