// interpreter.go: embedding facade over the reader and the evaluator.
//
// An Interpreter owns two scopes:
//
//	Core    builtins, as built by NewRootEnv
//	Global  child of Core; top-level def! lands here
//
// so user definitions may shadow a builtin without destroying it, and two
// Interpreters in one process share nothing.
//
// The facade adds structured logging (log/slog; silent unless WithLogger is
// given) and source-aware error rendering for read errors. The evaluator
// itself stays a pair of plain functions (Eval, Apply) over explicit
// environments.
package mal

import (
	"errors"
	"io"
	"log/slog"
)

// Interpreter evaluates source text against a persistent global scope.
type Interpreter struct {
	Core   *Env
	Global *Env

	log *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger routes the interpreter's debug logging to l.
func WithLogger(l *slog.Logger) Option {
	return func(ip *Interpreter) {
		if l != nil {
			ip.log = l
		}
	}
}

// NewInterpreter constructs an interpreter with a fresh set of builtins.
func NewInterpreter(opts ...Option) *Interpreter {
	ip := &Interpreter{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, o := range opts {
		o(ip)
	}
	ip.Core = NewRootEnv()
	ip.Global = NewEnv(ip.Core)
	ip.log.Debug("interpreter ready", slog.Int("builtins", len(ip.Core.Names())))
	return ip
}

// EvalForm evaluates one already-read form in Global.
func (ip *Interpreter) EvalForm(form Value) (Value, error) {
	ip.log.Debug("eval", slog.String("form", PrintStr(form, true)))
	v, err := Eval(form, ip.Global)
	if err != nil {
		ip.log.Debug("eval failed", slog.String("err", err.Error()))
		return Nil, err
	}
	return v, nil
}

// EvalSource reads and evaluates every form of src in Global and returns the
// last value (nil when src holds no form). Evaluation stops at the first
// error; read errors come back with a caret snippet of src.
func (ip *Interpreter) EvalSource(src string) (Value, error) {
	return ip.EvalNamedSource("", src)
}

// EvalNamedSource is EvalSource with a source name (such as a file name) used
// in rendered read errors.
func (ip *Interpreter) EvalNamedSource(name, src string) (Value, error) {
	r := NewReader(NewStringSource(src))
	last := Nil
	for {
		form, ok, err := r.ReadForm()
		if err != nil {
			ip.log.Debug("read failed", slog.String("source", name), slog.String("err", err.Error()))
			return Nil, WrapErrorWithName(err, name, src)
		}
		if !ok {
			return last, nil
		}
		if last, err = ip.EvalForm(form); err != nil {
			return Nil, err
		}
	}
}

// Loop reads forms from r until its source is exhausted, evaluating each one
// and handing the outcome to emit. A read error is reported through emit and
// the rest of the offending chunk is dropped, so the loop continues with
// fresh input. An error from the source itself is passed to emit and ends
// the loop, unless it wraps ErrInputAborted: then only the pending input is
// abandoned. Loop also stops when emit returns false.
func (ip *Interpreter) Loop(r *Reader, emit func(v Value, err error) bool) {
	for {
		form, ok, err := r.ReadForm()
		if err != nil {
			if IsReadError(err) {
				r.Discard()
			} else if !errors.Is(err, ErrInputAborted) {
				ip.log.Debug("source failed", slog.String("err", err.Error()))
				emit(Nil, err)
				return
			}
			if !emit(Nil, err) {
				return
			}
			continue
		}
		if !ok {
			return
		}
		if !emit(ip.EvalForm(form)) {
			return
		}
	}
}
