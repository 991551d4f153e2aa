package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/tinyptr/errors"
	"github.com/wippyai/tinyptr/table"
)

func main() {
	os.Exit(mainExit())
}

func mainExit() int {
	var (
		capacity    = flag.Int("capacity", 8, "Initial table capacity")
		scriptFile  = flag.String("script", "", "Path to a command script (one command per line)")
		expr        = flag.String("e", "", "Commands to run, separated by ';'")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Log table events")
		logFile     = flag.String("log", "", "Write -v logs to this file instead of stderr (required with -i)")
		strict      = flag.Bool("strict", false, "Fail on stale handles instead of printing \"not found\"")
	)
	flag.Parse()

	if *capacity <= 0 {
		fmt.Fprintln(os.Stderr, "Usage: tinyptr [-capacity n] [-v] -e 'alloc 1; get $0'")
		fmt.Fprintln(os.Stderr, "       tinyptr [-capacity n] [-v] -script file")
		fmt.Fprintln(os.Stderr, "       tinyptr [-capacity n] [-v -log file] -i  (interactive mode)")
		return 1
	}

	log, err := newLogger(*verbose, *interactive, *logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer log.Sync()
	table.SetLogger(log)

	s := newSession(*capacity, os.Stdout)
	s.strict = *strict
	if *verbose {
		s.table.Subscribe(&eventLogger{log: log})
	}

	if err := run(s, *scriptFile, *expr, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newLogger builds the CLI logger. Interactive mode owns the terminal, so
// verbose logging there must go to a file.
func newLogger(verbose, interactive bool, path string) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	if interactive && path == "" {
		return nil, errors.InvalidInput(errors.PhaseParse, "-v with -i requires -log <file>")
	}

	cfg := zap.NewDevelopmentConfig()
	if path != "" {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}
	return cfg.Build()
}

func run(s *session, scriptFile, expr string, interactive bool) error {
	if interactive {
		return runInteractive(s)
	}

	var r io.Reader = os.Stdin
	switch {
	case expr != "":
		r = strings.NewReader(expr)
	case scriptFile != "":
		f, err := os.Open(scriptFile)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		r = f
	}
	return s.Run(r)
}

// eventLogger forwards table events to a zap logger.
type eventLogger struct {
	log *zap.Logger
}

func (l *eventLogger) OnTableEvent(e table.Event) {
	fields := []zap.Field{zap.Int("capacity", e.Capacity)}
	if e.Type != table.EventResized {
		fields = append(fields, zap.Stringer("handle", e.Handle))
	}
	l.log.Debug(e.Type.String(), fields...)
}
