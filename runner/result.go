package runner

import (
	"errors"
	"fmt"
)

// Status is the outcome of processing one file.
type Status int

const (
	Success Status = iota
	OpenError
	ReadError
	SeekError
	WriteError
	TruncateError
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case OpenError:
		return "open error"
	case ReadError:
		return "read error"
	case SeekError:
		return "seek error"
	case WriteError:
		return "write error"
	case TruncateError:
		return "truncate error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Failed reports whether the status counts against the exit status of the
// run. A failed truncate is reported but does not.
func (s Status) Failed() bool {
	return s != Success && s != TruncateError
}

// FileError is the error of a single file operation.
type FileError struct {
	Status Status
	Name   string
	Err    error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Status, e.Name, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// StatusOf returns the Status carried by err, Success for nil and
// ReadError for errors of unknown origin.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	var fe *FileError
	if errors.As(err, &fe) {
		return fe.Status
	}
	return ReadError
}

// Result is the outcome of one file or stream.
type Result struct {
	Name    string
	Read    int64 // bytes loaded into the buffer
	Dropped int64 // bytes past the buffer capacity, if known
	Written int64
	Err     error
}

// Status returns the status of the result.
func (r Result) Status() Status {
	return StatusOf(r.Err)
}

// Summary aggregates the results of a run.
type Summary struct {
	Results []Result
}

// Failed returns the number of results that fail the run.
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Status().Failed() {
			n++
		}
	}
	return n
}
