package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	api "github.com/macrat/statwatch/lib-statwatch"
)

// Console writes updates as human readable texts.
type Console struct {
	sync.Mutex
	Writer io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{Writer: w}
}

func (c *Console) Notify(ctx context.Context, s api.Snapshot, updates []api.Update) error {
	if len(updates) == 0 {
		return nil
	}

	var b strings.Builder
	for _, u := range updates {
		fmt.Fprintf(&b, "[%s] %s\n", api.Info(u).Timestamp.UTC().Format("2006-01-02T15:04:05Z"), u.Kind())
		b.WriteString(FormatUpdate(s, u))
		b.WriteString("\n\n")
	}

	c.Lock()
	defer c.Unlock()

	_, err := io.WriteString(c.Writer, b.String())
	return err
}
