// eval.go: the evaluator.
//
// Eval interprets a Value as code against an environment chain:
//
//   - Non-list forms go through EvalAST: symbols are looked up, vectors and
//     maps are rebuilt from their evaluated elements (map keys are left
//     alone), everything else evaluates to itself.
//   - The empty list evaluates to itself.
//   - A non-empty list whose head is one of the special form symbols below is
//     handled by that form; any other list is an application.
//
// SPECIAL FORMS
// =============
//
//	(def! sym expr)                  bind in the current scope, yield the value
//	(let* bindings body...)          sequential bindings in one child scope
//	(do expr...)                     last value; (do) is nil
//	(if cond then [else])            nil and false are the only false values
//	(fn* params body...)             closure over the defining scope
//	(quote form)                     form, unevaluated
//	(quasiquote form)                template with unquote / splice-unquote
//
// `let` and `fn` are accepted as aliases of `let*` and `fn*`. Bindings may be
// flat (`[a 1 b 2]`) or paired (`((a 1) (b 2))`), in a list or a vector.
// Parameters may be a single symbol (all arguments as a list), nil, an empty
// list or vector, or a list/vector of symbols optionally ending in `& rest`.
//
// TAIL CALLS
// ==========
// Eval is a loop over the pair (form, env). The last form of do, the chosen
// branch of if, the let body and the body of an applied closure do not recurse:
// evalList hands them back as the next iteration's (form, env). Arguments,
// conditions, binding expressions and native calls recurse normally, so only
// non-tail recursion consumes Go stack.
//
// ERRORS
// ======
// Whenever an error leaves a list form, Eval records "in form <x>" on it
// (see withForm), giving the innermost failure first and its callers after.
package mal

// step is the outcome of evaluating one list form: either a final value or a
// tail position to continue with.
type step struct {
	val  Value
	form Value
	env  *Env
	tail bool
}

func done(v Value) (step, error) { return step{val: v}, nil }

func tailOf(form Value, env *Env) (step, error) {
	return step{form: form, env: env, tail: true}, nil
}

// Eval evaluates form in env.
func Eval(form Value, env *Env) (Value, error) {
	for {
		if form.Tag != VTList {
			return EvalAST(form, env)
		}
		l := form.Data.(*List)
		if l.Empty() {
			return form, nil
		}
		st, err := evalList(l, env)
		if err != nil {
			return Nil, withForm(err, form)
		}
		if !st.tail {
			return st.val, nil
		}
		form, env = st.form, st.env
	}
}

// EvalAST evaluates a form without treating lists as calls: symbols resolve,
// collections are rebuilt from their evaluated elements.
func EvalAST(form Value, env *Env) (Value, error) {
	switch form.Tag {
	case VTSymbol:
		return env.Get(form.Data.(string))
	case VTList:
		xs, err := evalEach(form.Data.(*List).Slice(), env)
		if err != nil {
			return Nil, err
		}
		return NewListValue(xs...), nil
	case VTVector:
		xs, err := evalEach(form.Data.(*Vector).Slice(), env)
		if err != nil {
			return Nil, err
		}
		return VectorVal(&Vector{items: xs}), nil
	case VTMap:
		out := NewMap()
		for _, e := range form.Data.(*MapObject).Entries() {
			v, err := Eval(e.Val, env)
			if err != nil {
				return Nil, err
			}
			if err := out.Put(e.Key, v); err != nil {
				return Nil, err
			}
		}
		return MapVal(out), nil
	}
	return form, nil
}

func evalEach(xs []Value, env *Env) ([]Value, error) {
	out := make([]Value, len(xs))
	for i, x := range xs {
		v, err := Eval(x, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Apply calls fn with already-evaluated arguments.
func Apply(fn Value, args []Value) (Value, error) {
	if fn.Tag != VTFun {
		return Nil, notCallable(fn)
	}
	f := fn.Data.(*Fun)
	if f.IsNative() {
		return f.Native(args)
	}
	env, err := bindArgs(f, args)
	if err != nil {
		return Nil, err
	}
	st, err := evalBody(f.Body, env)
	if err != nil {
		return Nil, err
	}
	if st.tail {
		return Eval(st.form, st.env)
	}
	return st.val, nil
}

////////////////////////////////////////////////////////////////////////////////
//                                  LIST FORMS
////////////////////////////////////////////////////////////////////////////////

func evalList(l *List, env *Env) (step, error) {
	head, _ := l.First()
	args := l.Rest()

	if head.Tag == VTSymbol {
		switch head.Data.(string) {
		case "def!":
			return evalDef(args, env)
		case "let*", "let":
			return evalLet(head.Data.(string), args, env)
		case "do":
			return evalBody(args.Slice(), env)
		case "if":
			return evalIf(args, env)
		case "fn*", "fn":
			return evalFn(head.Data.(string), args, env)
		case "quote":
			if args.Len() != 1 {
				return step{}, argError("quote", "expected 1 argument, got %d", args.Len())
			}
			x, _ := args.First()
			return done(x)
		case "quasiquote":
			if args.Len() != 1 {
				return step{}, argError("quasiquote", "expected 1 argument, got %d", args.Len())
			}
			x, _ := args.First()
			v, err := quasi(x, env)
			if err != nil {
				return step{}, err
			}
			return done(v)
		}
	}

	fv, err := Eval(head, env)
	if err != nil {
		return step{}, err
	}
	argv := make([]Value, 0, args.Len())
	for n := args; !n.Empty(); n = n.Rest() {
		x, _ := n.First()
		v, err := Eval(x, env)
		if err != nil {
			return step{}, err
		}
		argv = append(argv, v)
	}
	if fv.Tag != VTFun {
		return step{}, notCallable(fv)
	}
	f := fv.Data.(*Fun)
	if f.IsNative() {
		v, err := f.Native(argv)
		if err != nil {
			return step{}, err
		}
		return done(v)
	}
	callEnv, err := bindArgs(f, argv)
	if err != nil {
		return step{}, err
	}
	return evalBody(f.Body, callEnv)
}

// evalBody evaluates all but the last form and returns the last one as a
// tail position. An empty body is nil.
func evalBody(body []Value, env *Env) (step, error) {
	if len(body) == 0 {
		return done(Nil)
	}
	for _, x := range body[:len(body)-1] {
		if _, err := Eval(x, env); err != nil {
			return step{}, err
		}
	}
	return tailOf(body[len(body)-1], env)
}

func evalDef(args *List, env *Env) (step, error) {
	if args.Len() != 2 {
		return step{}, argError("def!", "expected a symbol and a value, got %d arguments", args.Len())
	}
	sym, _ := args.Nth(0)
	expr, _ := args.Nth(1)
	if sym.Tag != VTSymbol {
		return step{}, argError("def!", "cannot bind to %s", PrintStr(sym, true))
	}
	name := sym.Data.(string)

	// (def! f (fn ...)) names the closure at creation; closures reached
	// any other way keep the name they were made with.
	var (
		v   Value
		err error
	)
	if l, ok := fnLiteral(expr); ok {
		head, _ := l.First()
		if v, err = makeClosure(head.Data.(string), name, l.Rest(), env); err != nil {
			return step{}, withForm(err, expr)
		}
	} else if v, err = Eval(expr, env); err != nil {
		return step{}, err
	}
	env.Set(name, v)
	return done(v)
}

// fnLiteral reports whether x is a (fn ...) or (fn* ...) form.
func fnLiteral(x Value) (*List, bool) {
	if x.Tag != VTList {
		return nil, false
	}
	l := x.Data.(*List)
	head, ok := l.First()
	if !ok || !(head.IsSymbol("fn") || head.IsSymbol("fn*")) {
		return nil, false
	}
	return l, true
}

func evalIf(args *List, env *Env) (step, error) {
	n := args.Len()
	if n != 2 && n != 3 {
		return step{}, argError("if", "expected 2 or 3 arguments, got %d", n)
	}
	cond, _ := args.First()
	c, err := Eval(cond, env)
	if err != nil {
		return step{}, err
	}
	if c.Truthy() {
		then, _ := args.Nth(1)
		return tailOf(then, env)
	}
	if n == 3 {
		els, _ := args.Nth(2)
		return tailOf(els, env)
	}
	return done(Nil)
}

func evalLet(name string, args *List, env *Env) (step, error) {
	if args.Len() < 1 {
		return step{}, argError(name, "missing bindings")
	}
	bv, _ := args.First()
	bindings, ok := bv.Seq()
	if !ok {
		return step{}, argError(name, "bindings must be a list or vector, got %s", PrintStr(bv, true))
	}

	child := NewEnv(env)
	bind := func(sym, expr Value) error {
		if sym.Tag != VTSymbol {
			return argError(name, "cannot bind to %s", PrintStr(sym, true))
		}
		v, err := Eval(expr, child)
		if err != nil {
			return err
		}
		child.Set(sym.Data.(string), v)
		return nil
	}

	if len(bindings) > 0 && (bindings[0].Tag == VTList || bindings[0].Tag == VTVector) {
		for _, b := range bindings {
			pair, ok := b.Seq()
			if !ok || len(pair) != 2 {
				return step{}, argError(name, "binding must be a (symbol expr) pair, got %s", PrintStr(b, true))
			}
			if err := bind(pair[0], pair[1]); err != nil {
				return step{}, err
			}
		}
	} else {
		if len(bindings)%2 != 0 {
			return step{}, argError(name, "odd number of binding forms (%d)", len(bindings))
		}
		for i := 0; i < len(bindings); i += 2 {
			if err := bind(bindings[i], bindings[i+1]); err != nil {
				return step{}, err
			}
		}
	}
	return evalBody(args.Rest().Slice(), child)
}

func evalFn(form string, args *List, env *Env) (step, error) {
	v, err := makeClosure(form, "", args, env)
	if err != nil {
		return step{}, err
	}
	return done(v)
}

// makeClosure builds the closure for the arguments of a fn/fn* form.
func makeClosure(form, name string, args *List, env *Env) (Value, error) {
	if args.Len() < 1 {
		return Nil, argError(form, "missing parameter list")
	}
	pv, _ := args.First()
	params, rest, err := parseParams(form, pv)
	if err != nil {
		return Nil, err
	}
	return NewClosure(name, params, rest, args.Rest().Slice(), env), nil
}

func parseParams(name string, pv Value) (params []string, rest string, err error) {
	switch pv.Tag {
	case VTNil:
		return nil, "", nil
	case VTSymbol:
		return nil, pv.Data.(string), nil
	case VTList, VTVector:
	default:
		return nil, "", argError(name, "invalid parameter list %s", PrintStr(pv, true))
	}
	xs, _ := pv.Seq()
	for i, x := range xs {
		if x.Tag != VTSymbol {
			return nil, "", argError(name, "parameter must be a symbol, got %s", PrintStr(x, true))
		}
		s := x.Data.(string)
		if s != "&" {
			params = append(params, s)
			continue
		}
		if i != len(xs)-2 || xs[i+1].Tag != VTSymbol {
			return nil, "", argError(name, "'&' must be followed by exactly one symbol")
		}
		return params, xs[i+1].Data.(string), nil
	}
	return params, "", nil
}

// bindArgs creates the call scope of closure f. The closure's own captured
// scope is never written.
func bindArgs(f *Fun, args []Value) (*Env, error) {
	np := len(f.Params)
	if len(args) < np || (f.Rest == "" && len(args) > np) {
		name := f.Name
		if name == "" {
			name = "fn"
		}
		want := "%d"
		if f.Rest != "" {
			want = "at least %d"
		}
		return nil, argError(name, "expected "+want+" arguments, got %d", np, len(args))
	}
	env, err := Bind(f.Env, f.Params, args[:np])
	if err != nil {
		return nil, err
	}
	if f.Rest != "" {
		env.Set(f.Rest, NewListValue(args[np:]...))
	}
	return env, nil
}

////////////////////////////////////////////////////////////////////////////////
//                                 QUASIQUOTE
////////////////////////////////////////////////////////////////////////////////

// quasi instantiates a quasiquote template: (unquote x) is replaced by the
// value of x, (splice-unquote x) inside a list or vector by the elements of
// the value of x, and everything else is kept as written.
func quasi(tmpl Value, env *Env) (Value, error) {
	switch tmpl.Tag {
	case VTList:
		l := tmpl.Data.(*List)
		if head, ok := l.First(); ok && head.IsSymbol("unquote") {
			if l.Len() != 2 {
				return Nil, argError("unquote", "expected 1 argument, got %d", l.Len()-1)
			}
			x, _ := l.Nth(1)
			return Eval(x, env)
		}
		if head, ok := l.First(); ok && head.IsSymbol("splice-unquote") {
			return Nil, argError("splice-unquote", "used outside a list or vector")
		}
		xs, err := quasiSeq(l.Slice(), env)
		if err != nil {
			return Nil, err
		}
		return NewListValue(xs...), nil
	case VTVector:
		xs, err := quasiSeq(tmpl.Data.(*Vector).Slice(), env)
		if err != nil {
			return Nil, err
		}
		return VectorVal(&Vector{items: xs}), nil
	}
	return tmpl, nil
}

func quasiSeq(items []Value, env *Env) ([]Value, error) {
	out := make([]Value, 0, len(items))
	for _, x := range items {
		if x.Tag == VTList {
			l := x.Data.(*List)
			if head, ok := l.First(); ok && head.IsSymbol("splice-unquote") {
				if l.Len() != 2 {
					return nil, argError("splice-unquote", "expected 1 argument, got %d", l.Len()-1)
				}
				arg, _ := l.Nth(1)
				v, err := Eval(arg, env)
				if err != nil {
					return nil, err
				}
				ys, ok := v.Seq()
				if !ok {
					return nil, typeError("splice-unquote", "expected a list or vector, got %s", PrintStr(v, true))
				}
				out = append(out, ys...)
				continue
			}
		}
		v, err := quasi(x, env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
