// Command jtree parses JSON and pretty-prints the resulting value tree.
//
// Commands:
//
//	jtree print [--indent N] [--output FILE] [--verbose] [file|-]
//	    Parse JSON from file (or stdin if no file or "-") and write the
//	    indented rendering to stdout (or atomically to FILE).
//
//	jtree check [--quiet] [--verbose] [file|-]
//	    Parse only; the exit code reports the failure class.
//
// Exit codes:
//
//	0    success
//	2    usage error
//	10   I/O failure
//	200  early end of input
//	201  unexpected character
//	1    any other failure (duplicate key, allocation limit, depth bound)
//
// On failure a diagnostic line with the failure class and byte offset goes
// to stderr, followed by a context window of the surrounding input with a
// caret under the failing byte. Diagnostics never go to stdout.
//
// Environment (optionally from a .env file): JTREE_INDENT, JTREE_MAX_DEPTH,
// JTREE_ARENA_LIMIT.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/log"

	"github.com/lattice-substrate/json-tree/jterr"
	"github.com/lattice-substrate/json-tree/jtfile"
	"github.com/lattice-substrate/json-tree/jtparse"
	"github.com/lattice-substrate/json-tree/jtprint"
)

const usage = "usage: jtree <print|check> [options] [file|-]"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return jterr.CLIUsage.ExitCode()
	}

	switch args[0] {
	case "print":
		return cmdPrint(args[1:], stdin, stdout, stderr)
	case "check":
		return cmdCheck(args[1:], stdin, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", args[0])
		fmt.Fprintln(stderr, usage)
		return jterr.CLIUsage.ExitCode()
	}
}

type flags struct {
	indent  int // -1 means not set
	output  string
	verbose bool
	quiet   bool
	help    bool
}

// parseFlags parses the shared flag surface. allowed names the flags the
// subcommand accepts; anything else is rejected like an unknown option.
func parseFlags(args []string, allowed map[string]bool) (flags, []string, error) {
	f := flags{indent: -1}
	var positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--verbose", arg == "-v":
			if !allowed["verbose"] {
				return flags{}, nil, fmt.Errorf("unknown option: %s", arg)
			}
			f.verbose = true
		case arg == "--quiet", arg == "-q":
			if !allowed["quiet"] {
				return flags{}, nil, fmt.Errorf("unknown option: %s", arg)
			}
			f.quiet = true
		case arg == "--help", arg == "-h":
			f.help = true
		case arg == "--indent":
			if !allowed["indent"] {
				return flags{}, nil, fmt.Errorf("unknown option: %s", arg)
			}
			if i+1 >= len(args) {
				return flags{}, nil, errors.New("--indent requires a value")
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil || n < 0 {
				return flags{}, nil, fmt.Errorf("bad --indent value: %s", args[i])
			}
			f.indent = n
		case arg == "--output":
			if !allowed["output"] {
				return flags{}, nil, fmt.Errorf("unknown option: %s", arg)
			}
			if i+1 >= len(args) {
				return flags{}, nil, errors.New("--output requires a value")
			}
			i++
			f.output = args[i]
		case arg == "-":
			positional = append(positional, arg)
		case strings.HasPrefix(arg, "-"):
			return flags{}, nil, fmt.Errorf("unknown option: %s", arg)
		default:
			positional = append(positional, arg)
		}
	}
	return f, positional, nil
}

// openInput returns a seekable view of the input. A file argument is opened
// directly (files seek natively); stdin is drained into memory so the error
// path can re-read the context window.
func openInput(positional []string, stdin io.Reader) (io.ReadSeeker, func(), error) {
	if len(positional) == 0 || positional[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, err
		}
		return bytes.NewReader(data), func() {}, nil
	}
	fp, err := os.Open(positional[0])
	if err != nil {
		return nil, nil, err
	}
	return fp, func() { fp.Close() }, nil
}

func cmdPrint(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fl, positional, err := parseFlags(args, map[string]bool{
		"indent": true, "output": true, "verbose": true,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return jterr.CLIUsage.ExitCode()
	}
	if fl.help {
		fmt.Fprintln(stderr, "usage: jtree print [--indent N] [--output FILE] [--verbose] [file|-]")
		return 0
	}
	if len(positional) > 1 {
		fmt.Fprintln(stderr, "error: at most one input")
		return jterr.CLIUsage.ExitCode()
	}

	cfg := loadConfig()
	indent := cfg.indent
	if fl.indent >= 0 {
		indent = fl.indent
	}

	src, closeInput, err := openInput(positional, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "error: reading input: %v\n", err)
		return jterr.InternalIO.ExitCode()
	}
	defer closeInput()

	p := jtparse.NewParser(&jtparse.Options{
		MaxDepth:   cfg.maxDepth,
		ArenaLimit: cfg.arenaLimit,
	})

	started := time.Now()
	v, perr := p.Parse(src)
	if perr != nil {
		reportFailure(stderr, perr)
		return exitCodeFor(perr)
	}

	rendered, err := jtprint.Sprint(v, indent)
	if err != nil {
		fmt.Fprintf(stderr, "error: rendering output: %v\n", err)
		return jterr.InternalIO.ExitCode()
	}
	rendered += "\n"

	if fl.output != "" {
		if err := jtfile.WriteAtomic(fl.output, []byte(rendered)); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return jterr.InternalIO.ExitCode()
		}
	} else if _, err := io.WriteString(stdout, rendered); err != nil {
		fmt.Fprintf(stderr, "error: writing output: %v\n", err)
		return jterr.InternalIO.ExitCode()
	}

	if fl.verbose {
		logStats(stderr, p, started)
	}
	return 0
}

func cmdCheck(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fl, positional, err := parseFlags(args, map[string]bool{
		"quiet": true, "verbose": true,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return jterr.CLIUsage.ExitCode()
	}
	if fl.help {
		fmt.Fprintln(stderr, "usage: jtree check [--quiet] [--verbose] [file|-]")
		return 0
	}
	if len(positional) > 1 {
		fmt.Fprintln(stderr, "error: at most one input")
		return jterr.CLIUsage.ExitCode()
	}

	cfg := loadConfig()

	src, closeInput, err := openInput(positional, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "error: reading input: %v\n", err)
		return jterr.InternalIO.ExitCode()
	}
	defer closeInput()

	p := jtparse.NewParser(&jtparse.Options{
		MaxDepth:   cfg.maxDepth,
		ArenaLimit: cfg.arenaLimit,
	})

	started := time.Now()
	if _, perr := p.Parse(src); perr != nil {
		reportFailure(stderr, perr)
		return exitCodeFor(perr)
	}

	if fl.verbose {
		logStats(stderr, p, started)
	}
	if !fl.quiet {
		fmt.Fprintln(stdout, "valid")
	}
	return 0
}

// reportFailure writes the diagnostic line and, when the error captured a
// context window, the rendered window with its caret.
func reportFailure(stderr io.Writer, err error) {
	fmt.Fprintf(stderr, "error: %v\n", err)
	var je *jterr.Error
	if errors.As(err, &je) {
		if ctx := je.RenderContext(); ctx != "" {
			fmt.Fprintln(stderr, "context:")
			fmt.Fprintln(stderr, ctx)
		}
	}
}

func exitCodeFor(err error) int {
	var je *jterr.Error
	if errors.As(err, &je) {
		return je.Class.ExitCode()
	}
	return 1
}

func logStats(stderr io.Writer, p *jtparse.Parser, started time.Time) {
	logger := log.NewLogfmtLogger(stderr)
	logger.Log(
		"msg", "parse complete",
		"bytes", p.BytesConsumed(),
		"nodes", p.Nodes(),
		"arena_bytes", p.ArenaBytes(),
		"elapsed", time.Since(started).String(),
	)
}
