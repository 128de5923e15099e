package endpoint

import (
	"bytes"
	"io"
	"net/http"
)

var (
	responseChunkSize = 1024
)

// lineFlushWriter sends the response in chunks of whole lines.
// It flushes at the end of a line once responseChunkSize bytes have been written since the last flush.
type lineFlushWriter struct {
	w http.ResponseWriter
	f http.Flusher

	count int
}

func newFlushWriter(w http.ResponseWriter) io.Writer {
	f, ok := w.(http.Flusher)
	if !ok {
		return w
	}
	return &lineFlushWriter{
		w: w,
		f: f,
	}
}

func (w *lineFlushWriter) Write(b []byte) (int, error) {
	total := 0

	for len(b) > 0 {
		line := b
		eol := bytes.IndexByte(b, '\n')
		if eol >= 0 {
			line = b[:eol+1]
		}

		n, err := w.w.Write(line)
		total += n
		w.count += n
		if err != nil {
			return total, err
		}

		if eol >= 0 && w.count >= responseChunkSize {
			w.f.Flush()
			w.count = 0
		}

		b = b[len(line):]
	}

	return total, nil
}
