package testhelpers

import (
	"bytes"
	"io"
	"sync"
	"testing"
)

// Writer forwards each written line to tb.Log so that server and worker logs only show up for failing tests.
type Writer struct {
	tb   testing.TB
	mu   sync.Mutex
	done bool
}

// NewWriter returns a Writer bound to tb. Writes after the test has finished panic, which catches goroutines
// such as the scheduler or HTTP server outliving their test.
func NewWriter(tb testing.TB) io.Writer {
	w := &Writer{tb: tb, mu: sync.Mutex{}, done: false}
	tb.Cleanup(func() {
		w.mu.Lock()
		w.done = true
		w.mu.Unlock()
	})
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		panic("testhelpers: log written after test completion, is a background goroutine missing its shutdown in t.Cleanup?")
	}
	for line := range bytes.Lines(p) {
		if line = bytes.TrimRight(line, "\r\n"); len(line) > 0 {
			w.tb.Log(string(line))
		}
	}
	return len(p), nil
}
