package rejoin

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"syscall"
)

// sink counts the bytes that reached the underlying writer.
type sink struct {
	w            io.Writer
	written      int64
	swallowEPIPE bool
	closed       bool // reader went away, discard the rest
}

func (s *sink) Write(p []byte) (int, error) {
	if s.closed {
		return len(p), nil
	}

	n, err := s.w.Write(p)
	s.written += int64(n)
	if err != nil {
		if s.swallowEPIPE && errors.Is(err, syscall.EPIPE) {
			s.closed = true
			return len(p), nil
		}
		return n, fmt.Errorf("write failed after %d bytes: %w", s.written, err)
	}
	return n, nil
}

// Emitter writes the rejoined stream.
type Emitter struct {
	sink *sink
	bw   *bufio.Writer
}

// NewEmitter returns an Emitter writing to w. With swallowEPIPE set, a
// broken pipe silently ends the output instead of failing it.
func NewEmitter(w io.Writer, swallowEPIPE bool) *Emitter {
	s := &sink{w: w, swallowEPIPE: swallowEPIPE}
	return &Emitter{
		sink: s,
		bw:   bufio.NewWriterSize(s, 64<<10),
	}
}

// Content writes a content byte that did not follow a newline run.
func (e *Emitter) Content(b byte) {
	_ = e.bw.WriteByte(b)
}

// Resolve writes the separator chosen for a newline run followed by the
// content byte that ended it. A join does not add its space in front of a
// byte that is a space already.
func (e *Emitter) Resolve(d Decision, next byte) {
	switch d.Kind {
	case Join:
		if next != ' ' {
			_ = e.bw.WriteByte(' ')
		}
	case Break:
		for i := 0; i < d.Newlines+d.Pagebreaks; i++ {
			_ = e.bw.WriteByte('\n')
		}
	}
	_ = e.bw.WriteByte(next)
}

// Finish terminates the output with a single newline and flushes it. It
// returns the number of bytes that reached the writer.
func (e *Emitter) Finish() (int64, error) {
	_ = e.bw.WriteByte('\n')
	if err := e.bw.Flush(); err != nil {
		return e.sink.written, err
	}
	return e.sink.written, nil
}
