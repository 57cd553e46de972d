// Package rejoin undoes hard line-wrapping in byte streams.
//
// Every run of newline bytes between two content bytes is classified as
// either a join, which collapses the run into a single space, or a break,
// which keeps it as one or more literal newlines. The decision depends on
// the length of the run, the length of the line it terminates and, in
// experimental mode, the last visible byte before it:
//
//   - IgnoreEmptyLines: runs of up to 1+N newlines may still be joined
//   - MinLineLength: lines shorter than this always end in a break
//   - MaxNewlines: breaks are capped at N newlines (0 keeps them as is)
//   - AddPagebreaks: N extra newlines follow every break
//   - Experimental: join only after letters, digits, ',', ';' or '%'
//
// The engine works on bytes. CR and LF are counted separately; when a run
// holds both, the LF count is its length. Output always ends with exactly
// one newline.
//
// Example usage:
//
//	n, err := rejoin.Rejoin(data, w, rejoin.Config{MinLineLength: 40})
//	if err != nil {
//		log.Fatal(err)
//	}
package rejoin

import (
	"errors"
	"fmt"
	"io"
)

// State is the per-stream scanner state. A zero State is the state at the
// start of a stream.
type State struct {
	Run             Run
	LastLineLength  int
	LastSignificant byte
}

// Event describes one scanned byte. Decision is set only for the byte that
// ended a newline run.
type Event struct {
	Offset   int
	Byte     byte
	State    State
	Decision *Decision
}

// TraceFunc receives an Event for every input byte.
type TraceFunc func(Event)

// Option configures a Rejoin call.
type Option func(*options)

type options struct {
	trace        TraceFunc
	swallowEPIPE bool
}

// WithTrace reports every scanned byte to fn.
func WithTrace(fn TraceFunc) Option {
	return func(o *options) {
		o.trace = fn
	}
}

// WithBrokenPipe makes a broken pipe end the output quietly. Use it when
// writing to a stream whose reader may exit early.
func WithBrokenPipe() Option {
	return func(o *options) {
		o.swallowEPIPE = true
	}
}

// Scanner feeds input bytes through the classifier into an Emitter.
type Scanner struct {
	cfg   Config
	state State
	emit  *Emitter
	trace TraceFunc
}

// NewScanner creates a Scanner with a fresh State.
func NewScanner(cfg Config, emit *Emitter, trace TraceFunc) *Scanner {
	return &Scanner{cfg: cfg, emit: emit, trace: trace}
}

// State returns the current scanner state.
func (s *Scanner) State() State {
	return s.state
}

// Scan processes data. It may be called repeatedly; state carries over.
func (s *Scanner) Scan(data []byte, offset int) {
	for i, b := range data {
		var decided *Decision
		switch b {
		case '\n':
			s.state.Run.LF++
		case '\r':
			s.state.Run.CR++
		default:
			if s.state.Run.Pending() {
				d := Classify(s.state.Run, s.state.LastLineLength, s.state.LastSignificant, s.cfg)
				s.emit.Resolve(d, b)
				s.state.Run = Run{}
				s.state.LastLineLength = 1
				decided = &d
			} else {
				s.emit.Content(b)
				s.state.LastLineLength++
			}
			if b != ' ' && b != '\t' {
				s.state.LastSignificant = b
			}
		}
		if s.trace != nil {
			s.trace(Event{Offset: offset + i, Byte: b, State: s.state, Decision: decided})
		}
	}
}

// Rejoin rewrites data to w and returns the number of bytes written. A
// newline run still pending at the end of data is dropped in favour of the
// single trailing newline.
func Rejoin(data []byte, w io.Writer, cfg Config, opts ...Option) (int64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("invalid config: %w", err)
	}
	if w == nil {
		return 0, errors.New("writer cannot be nil")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	emit := NewEmitter(w, o.swallowEPIPE)
	NewScanner(cfg, emit, o.trace).Scan(data, 0)
	return emit.Finish()
}
