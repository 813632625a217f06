package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter fans every write out to all writers. A failing writer does
// not stop the rest, its error is combined into the returned one.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		Writers: append([]io.Writer(nil), writers...),
	}
}

// Write reports len(p) as written if at least one writer took the whole
// buffer, so a broken log file does not silence stdout.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var (
		err      error
		complete bool
	)
	for _, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		if written == len(p) {
			complete = true
		}
	}

	if complete {
		return len(p), err
	}
	return 0, err
}
