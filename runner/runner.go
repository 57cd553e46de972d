// Package runner rewrites files in place with the rejoin engine, one file
// at a time, and keeps the tally of per-file failures.
//
// A file is handled in two phases. The read phase opens it for reading and
// writing, so that a file which could not be rewritten fails before any
// work is done, and loads at most MaxSize bytes. The write phase opens it
// again, rewinds, streams the rejoined bytes and truncates the file to the
// number of bytes written. Standard input is read the same way and written
// to standard output without truncation.
package runner

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mtitz/joinlines/rejoin"
	"github.com/spf13/afero"
)

// StdinName is the name used for the standard input stream.
const StdinName = "-"

// Target is one command line operand.
type Target struct {
	Name  string
	Stdin bool // read standard input, write standard output
}

// Targets turns command line operands into targets. A bare "-" is the
// standard input unless it comes after the "--" terminator at dashAt; a
// negative dashAt means there was none. No operands at all also select the
// standard input.
func Targets(args []string, dashAt int) []Target {
	if len(args) == 0 {
		return []Target{{Name: StdinName, Stdin: true}}
	}
	targets := make([]Target, 0, len(args))
	for i, arg := range args {
		stdin := arg == StdinName && (dashAt < 0 || i < dashAt)
		targets = append(targets, Target{Name: arg, Stdin: stdin})
	}
	return targets
}

// Runner processes targets sequentially. Its fields are not changed while
// it runs.
type Runner struct {
	Fs      afero.Fs
	Config  rejoin.Config
	MaxSize int64
	Stdin   io.Reader
	Stdout  io.Writer
	Logger  *log.Logger
}

// New returns a Runner on the OS filesystem and standard streams.
func New(cfg rejoin.Config, logger *log.Logger) *Runner {
	return &Runner{
		Fs:      afero.NewOsFs(),
		Config:  cfg,
		MaxSize: rejoin.DefaultMaxSize,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Logger:  logger,
	}
}

var discard = log.New(io.Discard)

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return discard
	}
	return r.Logger
}

func (r *Runner) maxSize() int64 {
	if r.MaxSize <= 0 {
		return rejoin.DefaultMaxSize
	}
	return r.MaxSize
}

// Run processes every target in order and returns the summary. A failing
// target never stops the run.
func (r *Runner) Run(targets []Target) Summary {
	var sum Summary
	for _, t := range targets {
		var res Result
		if t.Stdin {
			r.logger().Info("processing", "file", "stdin")
			res = r.Stream()
		} else {
			r.logger().Info("processing", "file", t.Name)
			res = r.File(t.Name)
		}
		r.report(res)
		sum.Results = append(sum.Results, res)
	}
	return sum
}

func (r *Runner) report(res Result) {
	l := r.logger()
	if res.Dropped > 0 {
		l.Debug("input exceeds buffer, tail not read",
			"file", res.Name,
			"capacity", humanize.IBytes(uint64(r.maxSize())),
			"dropped", humanize.IBytes(uint64(res.Dropped)))
	}
	if res.Err != nil {
		l.Error(res.Status().String(), "file", res.Name, "err", unwrap(res.Err))
		return
	}
	l.Info("rejoined",
		"file", res.Name,
		"read", humanize.IBytes(uint64(res.Read)),
		"written", humanize.IBytes(uint64(res.Written)))
}

func unwrap(err error) error {
	var fe *FileError
	if errors.As(err, &fe) {
		return fe.Err
	}
	return err
}

func (r *Runner) options(stream bool) []rejoin.Option {
	var opts []rejoin.Option
	if stream {
		opts = append(opts, rejoin.WithBrokenPipe())
	}
	if r.Config.Verbosity >= 2 {
		l := r.logger()
		opts = append(opts, rejoin.WithTrace(func(ev rejoin.Event) {
			kv := []interface{}{
				"offset", ev.Offset,
				"byte", fmt.Sprintf("%q", ev.Byte),
				"lf", ev.State.Run.LF,
				"cr", ev.State.Run.CR,
				"line", ev.State.LastLineLength,
			}
			if ev.Decision != nil {
				kv = append(kv, "decision", ev.Decision.String())
			}
			l.Debug("scan", kv...)
		}))
	}
	return opts
}

// Stream rejoins the standard input onto the standard output.
func (r *Runner) Stream() Result {
	res := Result{Name: "stdin"}

	data, err := io.ReadAll(io.LimitReader(r.Stdin, r.maxSize()))
	res.Read = int64(len(data))
	if err != nil {
		res.Err = &FileError{Status: ReadError, Name: res.Name, Err: err}
		return res
	}

	n, err := rejoin.Rejoin(data, r.Stdout, r.Config, r.options(true)...)
	res.Written = n
	if err != nil {
		res.Err = &FileError{Status: WriteError, Name: res.Name, Err: err}
	}
	return res
}

// File rejoins the named file in place.
func (r *Runner) File(name string) Result {
	res := Result{Name: name}

	data, dropped, err := r.load(name)
	res.Read = int64(len(data))
	res.Dropped = dropped
	if err != nil {
		res.Err = err
		return res
	}

	res.Written, res.Err = r.rewrite(name, data)
	return res
}

// load reads at most MaxSize bytes of the file.
func (r *Runner) load(name string) ([]byte, int64, error) {
	f, err := r.Fs.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, 0, &FileError{Status: OpenError, Name: name, Err: err}
	}
	defer f.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(f, r.maxSize()))
	if err != nil {
		return data, 0, &FileError{Status: ReadError, Name: name, Err: err}
	}

	var dropped int64
	if st, err := f.Stat(); err == nil && st.Size() > int64(len(data)) {
		dropped = st.Size() - int64(len(data))
	}
	return data, dropped, nil
}

// rewrite replaces the content of the file with the rejoined data.
func (r *Runner) rewrite(name string, data []byte) (int64, error) {
	f, err := r.Fs.OpenFile(name, os.O_WRONLY, 0)
	if err != nil {
		return 0, &FileError{Status: OpenError, Name: name, Err: err}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return 0, &FileError{Status: SeekError, Name: name, Err: err}
	}

	n, err := rejoin.Rejoin(data, f, r.Config, r.options(false)...)
	if err != nil {
		_ = f.Close()
		return n, &FileError{Status: WriteError, Name: name, Err: err}
	}

	if err := f.Truncate(n); err != nil {
		_ = f.Close()
		return n, &FileError{Status: TruncateError, Name: name, Err: err}
	}

	if err := f.Close(); err != nil {
		return n, &FileError{Status: WriteError, Name: name, Err: err}
	}
	return n, nil
}
