// errors.go: the interpreter's error taxonomy and user-facing rendering.
//
// Every failure in the reader, the evaluator or a builtin is reported as a
// *Error value that travels back up the call chain by ordinary early return;
// nothing in the package panics on bad input. Kinds:
//
//	DiagRead        malformed syntax (unterminated string, stray ')', bad map)
//	DiagIncomplete  a read error caused only by running out of input mid-form
//	DiagArg         wrong arity or wrong argument for a form or builtin
//	DiagType        a value used where a different shape is required
//	DiagEval        unresolved symbol, call of a non-callable
//
// While an error propagates out of nested list forms, the evaluator records
// "in form ..." lines on it, innermost first. Read errors carry a 1-based
// line/column; WrapErrorWithSource turns them into a caret snippet:
//
//	READ ERROR at 2:5: unexpected ')'
//
//	   1 | (def! x 1)
//	   2 | (+ ))
//	     |     ^
package mal

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DiagKind classifies an *Error.
type DiagKind int

const (
	DiagRead DiagKind = iota
	DiagIncomplete
	DiagArg
	DiagType
	DiagEval
)

func (k DiagKind) String() string {
	switch k {
	case DiagRead, DiagIncomplete:
		return "READ ERROR"
	case DiagArg:
		return "ARGUMENT ERROR"
	case DiagType:
		return "TYPE ERROR"
	case DiagEval:
		return "EVAL ERROR"
	}
	return "ERROR"
}

// Sentinel causes, matched with errors.Is.
var (
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrNotCallable    = errors.New("not callable")
	ErrDivideByZero   = errors.New("division by zero")

	// ErrInputAborted is returned (possibly wrapped) by a LineSource whose
	// user cancelled the line being typed. Interpreter.Loop drops the
	// unfinished form and keeps reading.
	ErrInputAborted = errors.New("input aborted")
)

// MaxErrorContext bounds the number of "in form" lines kept on an error.
const MaxErrorContext = 8

// maxFormWidth truncates printed forms in context lines, in runes.
const maxFormWidth = 60

// Error is the structured error returned by every entry point of the package.
type Error struct {
	Kind DiagKind
	Msg  string
	Name string // offending symbol or primitive, when there is one
	Line int    // 1-based; 0 when the error has no source position
	Col  int    // 1-based

	Context []string
	elided  int

	Cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "%s at %d:%d: %s", e.Kind, e.Line, e.Col, e.Msg)
	} else {
		fmt.Fprintf(&b, "%s: %s", e.Kind, e.Msg)
	}
	for _, c := range e.Context {
		b.WriteString("\n  ")
		b.WriteString(c)
	}
	if e.elided > 0 {
		fmt.Fprintf(&b, "\n  ... %d more", e.elided)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind DiagKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// argError reports a bad argument to the primitive or special form name.
func argError(name, format string, args ...any) *Error {
	e := newError(DiagArg, "%s: "+format, append([]any{name}, args...)...)
	e.Name = name
	return e
}

func typeError(name, format string, args ...any) *Error {
	e := newError(DiagType, "%s: "+format, append([]any{name}, args...)...)
	e.Name = name
	return e
}

func symbolNotFound(name string) *Error {
	return &Error{Kind: DiagEval, Msg: fmt.Sprintf("'%s' not found", name), Name: name, Cause: ErrSymbolNotFound}
}

func notCallable(v Value) *Error {
	return &Error{Kind: DiagEval, Msg: "not callable: " + PrintStr(v, true), Cause: ErrNotCallable}
}

// withForm records that err surfaced while evaluating form.
func withForm(err error, form Value) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	if len(e.Context) >= MaxErrorContext {
		e.elided++
		return err
	}
	s := PrintStr(form, true)
	if utf8.RuneCountInString(s) > maxFormWidth {
		s = string([]rune(s)[:maxFormWidth-3]) + "..."
	}
	e.Context = append(e.Context, "in form "+s)
	return err
}

// IsIncomplete reports whether err is a read error caused only by reaching
// the end of input inside a form. REPLs use it to ask for another line.
func IsIncomplete(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == DiagIncomplete
}

// IsReadError reports whether err came from the reader.
func IsReadError(err error) bool {
	var e *Error
	return errors.As(err, &e) && (e.Kind == DiagRead || e.Kind == DiagIncomplete)
}

// KindOf returns the DiagKind of err, or false when err is not an *Error.
func KindOf(err error) (DiagKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

/* ===========================
   source snippets
   =========================== */

// sourceError keeps the original error reachable through errors.Is/As while
// presenting the rendered snippet as its message.
type sourceError struct {
	msg string
	err error
}

func (s *sourceError) Error() string { return s.msg }
func (s *sourceError) Unwrap() error { return s.err }

// WrapErrorWithSource returns err augmented with a caret-annotated snippet of
// src when err is a positioned read error. Other errors are returned as-is.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with a source name (file name,
// "<repl>") added to the header.
func WrapErrorWithName(err error, srcName, src string) error {
	var e *Error
	if !errors.As(err, &e) || e.Line <= 0 {
		return err
	}
	return &sourceError{
		msg: prettyErrorStringLabeled(src, e.Kind.String(), srcName, e.Line, e.Col, e.Msg),
		err: err,
	}
}

// prettyErrorStringLabeled shows at most one line of context on each side
// and clamps the coordinates to the source.
func prettyErrorStringLabeled(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
