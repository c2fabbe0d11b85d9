package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/vk/jigsaw/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

var (
	logFormats = []string{"text", "json"}
	logLevels  = []string{"debug", "info", "warn", "error"}
)

// pathList is a repeatable string flag.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	if v == "" {
		return errors.New("path must not be empty")
	}
	*p = append(*p, v)
	return nil
}

// options holds raw flag values before validation.
type options struct {
	defs       pathList
	logFormat  string
	logLevel   string
	workers    int
	printOrder bool
}

func (o *options) register(fs *flag.FlagSet) {
	fs.Var(&o.defs, "def", "definition `path` (file or directory); may be repeated")
	fs.Var(&o.defs, "d", "shorthand for -def")
	fs.StringVar(&o.logFormat, "log-format", "text", "log encoding on stderr: "+strings.Join(logFormats, " or "))
	fs.StringVar(&o.logLevel, "log-level", "info", "minimum log level: "+strings.Join(logLevels, ", "))
	fs.IntVar(&o.workers, "workers", 1, "nodes that may run at the same time; 1 keeps the run serial")
	fs.BoolVar(&o.printOrder, "print-order", false, "print the execution order before the results")
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "usage: jigsaw [flags] [path ...]\n\n")
	fmt.Fprintf(w, "Loads piece graphs from .hcl, .yaml and .yml files, runs them and\n")
	fmt.Fprintf(w, "prints the graph outputs as JSON. Paths given with -def and as\n")
	fmt.Fprintf(w, "arguments are combined; directories are searched recursively.\n\nflags:\n")
	fs.PrintDefaults()
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	fs := flag.NewFlagSet("jigsaw", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() { printUsage(output, fs) }

	var opts options
	opts.register(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err.Error())
	}

	paths := append(slices.Clone(opts.defs), fs.Args()...)
	if len(paths) == 0 {
		// Nothing to run; behave like -h.
		fs.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(opts.logFormat)
	if !slices.Contains(logFormats, logFormat) {
		return nil, false, usageError("invalid log-format %q: must be one of %s", opts.logFormat, strings.Join(logFormats, ", "))
	}
	logLevel := strings.ToLower(opts.logLevel)
	if !slices.Contains(logLevels, logLevel) {
		return nil, false, usageError("invalid log-level %q: must be one of %s", opts.logLevel, strings.Join(logLevels, ", "))
	}

	config, err := app.NewConfig(app.Config{
		DefinitionPaths: paths,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		Workers:         opts.workers,
		PrintOrder:      opts.printOrder,
	})
	if err != nil {
		return nil, false, usageError("%s", err.Error())
	}

	slog.Debug("Command line parsed.", "paths", paths, "workers", config.Workers)
	return config, false, nil
}
