package fetch

import (
	"context"
	"os"

	"github.com/macrat/statwatch/internal/parser"
	"github.com/macrat/statwatch/internal/swerr"
	api "github.com/macrat/statwatch/lib-statwatch"
)

// FileFetcher reads a saved status page from a file.
type FileFetcher struct {
	Path string
}

func (f FileFetcher) Fetch(ctx context.Context) (api.Page, error) {
	if err := ctx.Err(); err != nil {
		return api.Page{}, swerr.New(api.ErrFetch, err, "%s", f.Path)
	}

	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return api.Page{}, swerr.New(api.ErrFetch, err, "")
	}

	content := decode(raw, "")

	format, ok := parser.FormatByName(f.Path)
	if !ok {
		format = parser.DetectFormat("", content)
	}

	return api.Page{Content: content, Format: format}, nil
}

func (f FileFetcher) String() string {
	return f.Path
}
