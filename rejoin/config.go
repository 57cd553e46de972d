package rejoin

import (
	"fmt"
)

// DefaultMaxSize is the default capacity of the input buffer for a single
// file or stream. Bytes past the capacity are not read.
const DefaultMaxSize = 16 << 20 // 16 MiB

// Config holds the tunables of a run. It is resolved once from the command
// line and never changes while files are processed.
type Config struct {
	IgnoreEmptyLines int  // newlines tolerated in a joined run beyond the first
	MinLineLength    int  // lines shorter than this always end in a break
	MaxNewlines      int  // cap on the newlines of a break, 0 means unlimited
	AddPagebreaks    int  // extra newlines appended after every break
	Experimental     bool // only join after a byte that looks like a continuation
	Verbosity        int
}

// Validate checks config parameters for safety
func (c Config) Validate() error {
	switch {
	case c.IgnoreEmptyLines < 0:
		return fmt.Errorf("ignore-empty-lines %d must not be negative", c.IgnoreEmptyLines)
	case c.MinLineLength < 0:
		return fmt.Errorf("min-line-length %d must not be negative", c.MinLineLength)
	case c.MaxNewlines < 0:
		return fmt.Errorf("max-newlines %d must not be negative", c.MaxNewlines)
	case c.AddPagebreaks < 0:
		return fmt.Errorf("pagebreaks %d must not be negative", c.AddPagebreaks)
	case c.Verbosity < 0:
		return fmt.Errorf("verbosity %d must not be negative", c.Verbosity)
	}
	return nil
}
