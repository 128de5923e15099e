package parser

import (
	"mime"
	"path"
	"strings"

	api "github.com/macrat/statwatch/lib-statwatch"
)

// DetectFormat guesses the format of a page from its Content-Type header and its body.
// Unknown content types are sniffed: a body starting with a tag is HTML, otherwise text.
func DetectFormat(contentType, body string) api.PageFormat {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "text/html", "application/xhtml+xml":
			return api.FormatHTML
		case "text/plain", "text/markdown":
			return api.FormatText
		}
	}

	if strings.HasPrefix(strings.TrimSpace(strings.TrimPrefix(body, "\ufeff")), "<") {
		return api.FormatHTML
	}
	return api.FormatText
}

// FormatByName guesses the format of a page from a file name.
// It returns false if the extension is not known.
func FormatByName(name string) (api.PageFormat, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return api.FormatHTML, true
	case ".txt", ".text", ".md":
		return api.FormatText, true
	}
	return api.FormatHTML, false
}
