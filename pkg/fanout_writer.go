package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// FanoutWriter copies every write to all of its writers. A failing writer
// does not stop the others.
type FanoutWriter struct {
	writers []io.Writer
}

func NewFanoutWriter(writers ...io.Writer) *FanoutWriter {
	return &FanoutWriter{writers: writers}
}

func (fw *FanoutWriter) Write(p []byte) (int, error) {
	var err error
	delivered := 0
	for _, w := range fw.writers {
		if _, werr := w.Write(p); werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		delivered++
	}
	if delivered == 0 && len(fw.writers) > 0 {
		return 0, err
	}
	return len(p), err
}
