package mal

import (
	"strings"
)

// NewRootEnv builds a fresh root scope holding every builtin. Each call
// returns an independent environment, so separate interpreters never share
// bindings.
func NewRootEnv() *Env {
	env := NewEnv(nil)
	registerCoreBuiltins(env)
	registerMathBuiltins(env)
	registerCollBuiltins(env)
	return env
}

// def installs a native under name with a short doc string.
func def(env *Env, name, doc string, fn NativeFn) {
	env.Set(name, FunVal(newFun(&Fun{Name: name, Doc: doc, Native: fn})))
}

/* ---------- argument checks ---------- */

func wantArgs(name string, args []Value, n int) error {
	if len(args) != n {
		return argError(name, "expected %d argument(s), got %d", n, len(args))
	}
	return nil
}

func wantAtLeast(name string, args []Value, n int) error {
	if len(args) < n {
		return argError(name, "expected at least %d argument(s), got %d", n, len(args))
	}
	return nil
}

func wantRange(name string, args []Value, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		return argError(name, "expected %d to %d arguments, got %d", lo, hi, len(args))
	}
	return nil
}

// predicate builds a one-argument native returning a Bool.
func predicate(name string, test func(Value) bool) NativeFn {
	return func(args []Value) (Value, error) {
		if err := wantArgs(name, args, 1); err != nil {
			return Nil, err
		}
		return Bool(test(args[0])), nil
	}
}

func tagIs(tags ...ValueTag) func(Value) bool {
	return func(v Value) bool {
		for _, t := range tags {
			if v.Tag == t {
				return true
			}
		}
		return false
	}
}

// ---- core built-ins ----------------------------------------------------

func registerCoreBuiltins(env *Env) {
	def(env, "=", `(= x y ...) is true when every adjacent pair is structurally equal.`,
		func(args []Value) (Value, error) {
			if err := wantAtLeast("=", args, 1); err != nil {
				return Nil, err
			}
			for i := 1; i < len(args); i++ {
				if !Equal(args[i-1], args[i]) {
					return False, nil
				}
			}
			return True, nil
		})

	def(env, "not", `(not x) is true for nil and false, false otherwise.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("not", args, 1); err != nil {
				return Nil, err
			}
			return Bool(!args[0].Truthy()), nil
		})

	preds := []struct {
		name string
		test func(Value) bool
	}{
		{"nil?", tagIs(VTNil)},
		{"true?", func(v Value) bool { return v.Tag == VTBool && v.Data.(bool) }},
		{"false?", func(v Value) bool { return v.Tag == VTBool && !v.Data.(bool) }},
		{"number?", tagIs(VTInt, VTFloat)},
		{"int?", tagIs(VTInt)},
		{"float?", tagIs(VTFloat)},
		{"string?", tagIs(VTStr)},
		{"symbol?", tagIs(VTSymbol)},
		{"keyword?", tagIs(VTKeyword)},
		{"list?", tagIs(VTList)},
		{"vector?", tagIs(VTVector)},
		{"map?", tagIs(VTMap)},
		{"fn?", tagIs(VTFun)},
		{"sequential?", tagIs(VTList, VTVector)},
	}
	for _, p := range preds {
		def(env, p.name, "("+p.name+" x) tests the kind of x.", predicate(p.name, p.test))
	}

	def(env, "str", `(str x ...) concatenates the unquoted printed forms of its arguments.`,
		func(args []Value) (Value, error) {
			var b strings.Builder
			for _, a := range args {
				b.WriteString(PrintStr(a, false))
			}
			return Str(b.String()), nil
		})

	def(env, "pr-str", `(pr-str x ...) prints its arguments readably, separated by spaces.`,
		func(args []Value) (Value, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = PrintStr(a, true)
			}
			return Str(strings.Join(parts, " ")), nil
		})

	def(env, "symbol", `(symbol s) returns the symbol named by string s.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("symbol", args, 1); err != nil {
				return Nil, err
			}
			switch args[0].Tag {
			case VTSymbol:
				return args[0], nil
			case VTStr:
				return Symbol(args[0].Data.(string)), nil
			}
			return Nil, argError("symbol", "expected a string, got %s", PrintStr(args[0], true))
		})

	def(env, "keyword", `(keyword s) returns the keyword named by string s.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("keyword", args, 1); err != nil {
				return Nil, err
			}
			switch args[0].Tag {
			case VTKeyword:
				return args[0], nil
			case VTStr:
				return Keyword(args[0].Data.(string)), nil
			}
			return Nil, argError("keyword", "expected a string, got %s", PrintStr(args[0], true))
		})

	def(env, "doc", `(doc f) returns the doc string of builtin f, or nil.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("doc", args, 1); err != nil {
				return Nil, err
			}
			if args[0].Tag != VTFun {
				return Nil, typeError("doc", "expected a function, got %s", PrintStr(args[0], true))
			}
			if d := args[0].Data.(*Fun).Doc; d != "" {
				return Str(d), nil
			}
			return Nil, nil
		})

	def(env, "apply", `(apply f x ... seq) calls f with the x's followed by the elements of seq.`,
		func(args []Value) (Value, error) {
			if err := wantAtLeast("apply", args, 1); err != nil {
				return Nil, err
			}
			if len(args) == 1 {
				return Apply(args[0], nil)
			}
			last := args[len(args)-1]
			tail, ok := seqOrNil(last)
			if !ok {
				return Nil, typeError("apply", "last argument must be a list or vector, got %s", PrintStr(last, true))
			}
			callArgs := append(append([]Value{}, args[1:len(args)-1]...), tail...)
			return Apply(args[0], callArgs)
		})

	def(env, "map", `(map f seq) returns the list of (f x) for each x in seq.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("map", args, 2); err != nil {
				return Nil, err
			}
			xs, ok := seqOrNil(args[1])
			if !ok {
				return Nil, typeError("map", "expected a list or vector, got %s", PrintStr(args[1], true))
			}
			out := make([]Value, len(xs))
			for i, x := range xs {
				v, err := Apply(args[0], []Value{x})
				if err != nil {
					return Nil, err
				}
				out[i] = v
			}
			return NewListValue(out...), nil
		})
}

// seqOrNil returns the elements of a list or vector; nil counts as empty.
func seqOrNil(v Value) ([]Value, bool) {
	if v.Tag == VTNil {
		return nil, true
	}
	return v.Seq()
}
