package rejoin

import "fmt"

// Kind tells whether a newline run is collapsed or kept.
type Kind int

const (
	Join  Kind = iota // replace the run with a single space
	Break             // keep the run as literal newlines
)

func (k Kind) String() string {
	switch k {
	case Join:
		return "join"
	case Break:
		return "break"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Decision is the outcome of classifying one newline run.
type Decision struct {
	Kind       Kind
	Newlines   int // literal newlines of a break, already capped
	Pagebreaks int // extra newlines emitted after them
}

func (d Decision) String() string {
	if d.Kind == Join {
		return "join"
	}
	return fmt.Sprintf("break(%d+%d)", d.Newlines, d.Pagebreaks)
}

// Run counts the LF and CR bytes seen since the last content byte.
type Run struct {
	LF int
	CR int
}

// Pending reports whether a newline run has started.
func (r Run) Pending() bool {
	return r.LF > 0 || r.CR > 0
}

// Len is the effective length of the run. The LF count wins when both
// kinds occurred, so "\r\n\r\n" counts as two and "\r\r" counts as two.
func (r Run) Len() int {
	if r.LF > 0 {
		return r.LF
	}
	return r.CR
}

// Classify decides what a completed newline run becomes. lastLineLength is
// the length of the line the run terminates, lastSignificant the most recent
// content byte that was neither a space nor a tab.
func Classify(run Run, lastLineLength int, lastSignificant byte, cfg Config) Decision {
	n := run.Len()
	if n <= 1+cfg.IgnoreEmptyLines &&
		lastLineLength >= cfg.MinLineLength &&
		(!cfg.Experimental || continues(lastSignificant)) {
		return Decision{Kind: Join}
	}

	if cfg.MaxNewlines > 0 && n > cfg.MaxNewlines {
		n = cfg.MaxNewlines
	}
	return Decision{Kind: Break, Newlines: n, Pagebreaks: cfg.AddPagebreaks}
}

// continues reports whether a line ending in b probably runs on into the
// next one: words, numbers and list separators do, closing punctuation
// does not.
func continues(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return true
	case b == ',', b == ';', b == '%':
		return true
	}
	return false
}
