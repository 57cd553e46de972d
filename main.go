package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mtitz/joinlines/rejoin"
	"github.com/mtitz/joinlines/runner"
	"github.com/mtitz/joinlines/utils"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""
)

// usageError is a problem with the command line. Nothing has been touched
// when it is returned.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// exitError carries the exit status of a run that processed its files.
type exitError struct {
	failed int
}

func (e exitError) Error() string {
	return fmt.Sprintf("%d file(s) failed", e.failed)
}

func (e exitError) ExitCode() int { return 1 }

// app holds what a single invocation works with.
type app struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	logger *log.Logger
	viper  *viper.Viper

	configFile string
	maxSize    string
	man        bool
	usage      bool

	cfg      rejoin.Config
	maxBytes int64
	targets  []runner.Target
}

func newApp(fs afero.Fs, stdin io.Reader, stdout io.Writer, logger *log.Logger) *app {
	v := viper.New()
	v.SetFs(fs)
	return &app{
		fs:     fs,
		stdin:  stdin,
		stdout: stdout,
		logger: logger,
		viper:  v,
	}
}

func progName() string {
	return filepath.Base(os.Args[0])
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "joinlines [-eEpv] [-l N] [-m N] [FILE|-]...",
		Short: "Rejoin hard-wrapped lines, in place",
		Long: paragraph(fmt.Sprintf("\n%s lines that were broken by hard wrapping. "+
			"Every FILE is rewritten in place; with no FILE, or when FILE is -, "+
			"standard input is read and the result goes to standard output. "+
			"At most %s of each input are read.",
			keyword("Rejoin"), humanize.IBytes(rejoin.DefaultMaxSize))),
		Example: paragraph("joinlines notes.txt\n" +
			"joinlines -l 60 -m 2 chapter*.txt\n" +
			"pdftotext -layout book.pdf - | joinlines -e -p > book.txt"),
		SilenceErrors:         true,
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Args:                  cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validateOptions(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		RunE: a.execute,
	}

	f := cmd.Flags()
	f.BoolP("experimental", "e", false, "join only after letters, digits, ',', ';' or '%'")
	f.CountP("ignore-empty-lines", "E", "tolerate one more empty line inside a join (repeatable)")
	f.IntP("min-line-length", "l", 0, "never join after a line shorter than `N` bytes")
	f.IntP("max-newlines", "m", 0, "keep at most `N` newlines of a break (0 = unlimited)")
	f.CountP("pagebreaks", "p", "add an empty line after every break (repeatable)")
	f.CountP("verbose", "v", "report each file; twice traces every byte (repeatable)")
	f.BoolVarP(&a.usage, "usage", "?", false, "print usage")
	f.StringVar(&a.configFile, "config", "", "read defaults from a YAML config `file`")
	f.StringVar(&a.maxSize, "max-size", humanize.IBytes(rejoin.DefaultMaxSize), "read at most `SIZE` of each input")
	f.BoolVar(&a.man, "man", false, "print the man page")
	_ = f.MarkHidden("usage")
	_ = f.MarkHidden("man")

	for _, name := range []string{
		"experimental", "ignore-empty-lines", "min-line-length",
		"max-newlines", "pagebreaks", "verbose", "max-size",
	} {
		_ = a.viper.BindPFlag(name, f.Lookup(name))
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	if len(CommitSHA) >= 7 {
		vt := cmd.VersionTemplate()
		cmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	cmd.Version = Version

	return cmd
}

func (a *app) validateOptions(cmd *cobra.Command, args []string) error {
	if a.configFile != "" {
		if err := loadConfigFile(a.viper, a.configFile); err != nil {
			return err
		}
	}

	a.cfg = resolveConfig(a.viper)
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	n, err := utils.ParseSize(a.viper.GetString("max-size"))
	if err != nil {
		return fmt.Errorf("invalid max-size: %w", err)
	}
	a.maxBytes = n

	a.targets = runner.Targets(args, cmd.ArgsLenAtDash())
	return nil
}

func (a *app) execute(cmd *cobra.Command, _ []string) error {
	switch {
	case a.usage:
		return cmd.Help()
	case a.man:
		return printManPage(cmd, a.stdout)
	}

	a.logger.SetLevel(levelFor(a.cfg.Verbosity))

	r := &runner.Runner{
		Fs:      a.fs,
		Config:  a.cfg,
		MaxSize: a.maxBytes,
		Stdin:   a.stdin,
		Stdout:  a.stdout,
		Logger:  a.logger,
	}
	sum := r.Run(a.targets)
	if n := sum.Failed(); n > 0 {
		return exitError{failed: n}
	}
	return nil
}

// levelFor maps the verbosity count to a log level. Errors are always
// shown; -v adds per-file reports and -vv the byte trace.
func levelFor(verbosity int) log.Level {
	switch {
	case verbosity >= 2:
		return log.DebugLevel
	case verbosity == 1:
		return log.InfoLevel
	default:
		return log.WarnLevel
	}
}

// exitCode reports what a failed Execute means for the process.
func exitCode(err error) int {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

func main() {
	logger, closer, err := setupLog(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", progName(), err)
		os.Exit(1)
	}

	cmd := newRootCmd(newApp(afero.NewOsFs(), os.Stdin, os.Stdout, logger))
	if err := cmd.Execute(); err != nil {
		var ue usageError
		var ee exitError
		switch {
		case errors.As(err, &ue):
			logger.Error(ue.err)
			fmt.Fprintln(os.Stderr, "usage:", cmd.UseLine()) //nolint: errcheck
		case !errors.As(err, &ee):
			logger.Error(err)
		}
		_ = closer()
		os.Exit(exitCode(err))
	}
	_ = closer()
}
