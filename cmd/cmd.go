// Package cmd is the shared plumbing of the elfedit command line tools:
// flag handling with rc-file defaults, a leveled logger, color resolution
// and error printing.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"
)

// StrSlice is a repeatable string flag.
type StrSlice []string

func (s *StrSlice) String() string {
	return fmt.Sprintf("%v", *s)
}

func (s *StrSlice) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type Tool struct {
	Name  string
	Flags *flag.FlagSet
	Log   kitlog.Logger
	Out   io.Writer

	verbose *bool
	color   *string
	colorOn bool
}

func New(name string) *Tool {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	t := &Tool{Name: name, Flags: fs, Out: os.Stdout, Log: kitlog.NewNopLogger()}
	t.verbose = fs.Bool("v", false, "verbose output")
	t.color = fs.String("color", "auto", "colorize output (auto|always|never)")
	return t
}

// Parse applies rc-file defaults ahead of argv, then builds the logger and
// the color pipeline from the parsed flags.
func (t *Tool) Parse(argv []string) error {
	if err := t.Flags.Parse(append(t.rcArgs(), argv...)); err != nil {
		return errors.WithStack(err)
	}
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	if *t.verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}
	t.Log = kitlog.With(logger, "tool", t.Name)

	switch *t.color {
	case "always":
		t.colorOn = true
	case "never":
		t.colorOn = false
	default:
		t.colorOn = isatty.IsTerminal(os.Stdout.Fd())
	}
	if t.colorOn {
		t.Out = colorable.NewColorableStdout()
	}
	return nil
}

// rcArgs reads default arguments from the first <name>.rc found in the
// tool's config folders, one argument per line, # for comments.
func (t *Tool) rcArgs() []string {
	dirs := configdir.New("elfedit", t.Name)
	for _, config := range dirs.QueryFolders(configdir.All) {
		data, err := config.ReadFile(t.Name + ".rc")
		if err != nil {
			continue
		}
		var args []string
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "#") {
				args = append(args, line)
			}
		}
		return args
	}
	return nil
}

// Color styles s when color output is enabled.
func (t *Tool) Color(s, style string) string {
	if !t.colorOn {
		return s
	}
	return ansi.ColorCode(style) + s + ansi.Reset
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// PrintError prints an error, and a stack trace if one is attached.
func (t *Tool) PrintError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	if err, ok := err.(stackTracer); ok {
		for _, f := range err.StackTrace() {
			fmt.Fprintf(os.Stderr, "  %s:%d %n()\n", f, f, f)
			if fmt.Sprintf("%n", f) == "main.main" {
				break
			}
		}
	}
}

// Fatal prints err and exits nonzero.
func (t *Tool) Fatal(err error) {
	t.PrintError(err)
	os.Exit(1)
}
