package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/d2718/mal/mal"
)

const (
	appName     = "mal"
	historyFile = ".mal_history"
	promptMain  = "user> "
	promptCont  = "...   "
)

var (
	banner = fmt.Sprintf("mal %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", mal.Version)

	errQuit = errors.New("quit")
)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:], os.Stdout, os.Stderr))
	case "eval":
		os.Exit(cmdEval(os.Args[2:], os.Stdout, os.Stderr))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(mal.Version)
		return
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`mal %s (built %s)

Usage:
  %s run [-log-level L] <file>            Evaluate every form of a file.
  %s eval [-log-level L] <expr>           Evaluate an expression and print the result.
  %s repl [-log-level L] [-history F]     Start the REPL.
  %s version                              Print the compiled version

Environment:
  MAL_LOG      default log level (debug, info, warn, error)
  MAL_HISTORY  REPL history file (default ~/%s)

`, mal.Version, mal.BuildDate, appName, appName, appName, appName, historyFile)
}

// -----------------------------------------------------------------------------
// shared setup
// -----------------------------------------------------------------------------

func defaultLogLevel() string {
	if lv := os.Getenv("MAL_LOG"); lv != "" {
		return lv
	}
	return "warn"
}

// newLogger builds a text logger on w at the named level.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv})), nil
}

// newInterpreter parses the flags common to every command and returns the
// remaining arguments.
func newInterpreter(fs *flag.FlagSet, args []string, stderr io.Writer) (*mal.Interpreter, []string, int) {
	level := fs.String("log-level", defaultLogLevel(), "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return nil, nil, 2
	}
	logger, err := newLogger(stderr, *level)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return nil, nil, 2
	}
	return mal.NewInterpreter(mal.WithLogger(logger)), fs.Args(), 0
}

// -----------------------------------------------------------------------------
// run / eval
// -----------------------------------------------------------------------------

func cmdRun(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	ip, rest, code := newInterpreter(fs, args, stderr)
	if ip == nil {
		return code
	}
	if len(rest) != 1 {
		fmt.Fprintf(stderr, "usage: %s run <file>\n", appName)
		return 2
	}

	file := rest[0]
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}
	if _, err := ip.EvalNamedSource(filepath.Base(file), string(src)); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	return 0
}

func cmdEval(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	fs.SetOutput(stderr)
	ip, rest, code := newInterpreter(fs, args, stderr)
	if ip == nil {
		return code
	}
	if len(rest) == 0 {
		fmt.Fprintf(stderr, "usage: %s eval <expr>\n", appName)
		return 2
	}

	v, err := ip.EvalSource(strings.Join(rest, " "))
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	fmt.Fprintln(stdout, mal.PrintStr(v, true))
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func historyPath() string {
	if p := os.Getenv("MAL_HISTORY"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, historyFile)
}

func cmdRepl(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	histFlag := fs.String("history", historyPath(), "history file")
	ip, _, code := newInterpreter(fs, args, os.Stderr)
	if ip == nil {
		return code
	}
	histPath := *histFlag

	fmt.Println(banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	var rd *mal.Reader
	rd = mal.NewReader(promptSource(ln, func() bool { return rd.InForm() }))

	ip.Loop(rd, func(v mal.Value, err error) bool {
		switch {
		case err == nil:
			fmt.Println(blue(mal.PrintStr(v, true)))
		case errors.Is(err, errQuit):
			return false
		case errors.Is(err, mal.ErrInputAborted):
			fmt.Println(green("^C"))
		case isLangError(err):
			fmt.Fprintln(os.Stderr, red(err.Error()))
		default:
			fmt.Fprintln(os.Stderr, red(fmt.Sprintf("%s: %v", appName, err)))
			return false
		}
		return true
	})
	fmt.Println()
	return 0
}

// promptSource feeds the reader one edited line at a time, switching to the
// continuation prompt while a form is open. :quit is only recognized at the
// start of a form; any other line starting with ':' is a keyword.
func promptSource(ln *liner.State, inForm func() bool) mal.LineSource {
	return mal.LineSourceFunc(func() (string, error) {
		prompt := promptMain
		if inForm() {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", mal.ErrInputAborted
		}
		if err != nil {
			return "", err
		}
		if !inForm() && strings.EqualFold(strings.TrimSpace(line), ":quit") {
			return "", errQuit
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		return line + "\n", nil
	})
}

func isLangError(err error) bool {
	_, ok := mal.KindOf(err)
	return ok
}
