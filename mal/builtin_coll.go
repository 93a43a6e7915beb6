package mal

import "unicode/utf8"

func asMap(name string, v Value) (*MapObject, error) {
	switch v.Tag {
	case VTMap:
		return v.Data.(*MapObject), nil
	case VTNil:
		return NewMap(), nil
	}
	return nil, typeError(name, "expected a map, got %s", PrintStr(v, true))
}

func asList(name string, v Value) (*List, error) {
	if v.Tag != VTList {
		return nil, typeError(name, "expected a list, got %s", PrintStr(v, true))
	}
	return v.Data.(*List), nil
}

func registerCollBuiltins(env *Env) {
	def(env, "list", `(list x ...) returns a list of its arguments.`,
		func(args []Value) (Value, error) { return NewListValue(args...), nil })

	def(env, "vector", `(vector x ...) returns a vector of its arguments.`,
		func(args []Value) (Value, error) { return NewVectorValue(args...), nil })

	def(env, "vec", `(vec seq) returns a new vector holding the elements of seq.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("vec", args, 1); err != nil {
				return Nil, err
			}
			xs, ok := seqOrNil(args[0])
			if !ok {
				return Nil, typeError("vec", "expected a list or vector, got %s", PrintStr(args[0], true))
			}
			return VectorVal(&Vector{items: xs}), nil
		})

	def(env, "hash-map", `(hash-map k v ...) returns a map of the given pairs.`,
		func(args []Value) (Value, error) {
			m := NewMap()
			if err := putPairs("hash-map", m, args); err != nil {
				return Nil, err
			}
			return MapVal(m), nil
		})

	def(env, "empty?", `(empty? coll) is true for nil and for an empty list, vector, map or string.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("empty?", args, 1); err != nil {
				return Nil, err
			}
			n, err := count("empty?", args[0])
			if err != nil {
				return Nil, err
			}
			return Bool(n == 0), nil
		})

	def(env, "count", `(count coll) is the number of elements of coll; (count nil) is 0.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("count", args, 1); err != nil {
				return Nil, err
			}
			n, err := count("count", args[0])
			if err != nil {
				return Nil, err
			}
			return Int(int64(n)), nil
		})

	def(env, "cons", `(cons x seq) returns a list with x in front of the elements of seq.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("cons", args, 2); err != nil {
				return Nil, err
			}
			switch args[1].Tag {
			case VTList:
				return ListVal(args[1].Data.(*List).Cons(args[0])), nil
			case VTVector, VTNil:
				xs, _ := seqOrNil(args[1])
				return ListVal(ListOf(xs...).Cons(args[0])), nil
			}
			return Nil, typeError("cons", "expected a list or vector, got %s", PrintStr(args[1], true))
		})

	def(env, "concat", `(concat seq ...) returns a list of the elements of every seq in order.`,
		func(args []Value) (Value, error) {
			var out []Value
			for _, a := range args {
				xs, ok := seqOrNil(a)
				if !ok {
					return Nil, typeError("concat", "expected a list or vector, got %s", PrintStr(a, true))
				}
				out = append(out, xs...)
			}
			return NewListValue(out...), nil
		})

	def(env, "car", `(car list) is the head of a non-empty list.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("car", args, 1); err != nil {
				return Nil, err
			}
			l, err := asList("car", args[0])
			if err != nil {
				return Nil, err
			}
			x, ok := l.First()
			if !ok {
				return Nil, argError("car", "empty list")
			}
			return x, nil
		})

	def(env, "cdr", `(cdr list) is the tail of a non-empty list.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("cdr", args, 1); err != nil {
				return Nil, err
			}
			l, err := asList("cdr", args[0])
			if err != nil {
				return Nil, err
			}
			if l.Empty() {
				return Nil, argError("cdr", "empty list")
			}
			return ListVal(l.Rest()), nil
		})

	def(env, "first", `(first seq) is the first element of seq, or nil when there is none.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("first", args, 1); err != nil {
				return Nil, err
			}
			switch args[0].Tag {
			case VTNil:
				return Nil, nil
			case VTList:
				x, _ := args[0].Data.(*List).First()
				return x, nil
			case VTVector:
				x, _ := args[0].Data.(*Vector).Nth(0)
				return x, nil
			}
			return Nil, typeError("first", "expected a list or vector, got %s", PrintStr(args[0], true))
		})

	def(env, "rest", `(rest seq) is the list of all but the first element of seq; never nil.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("rest", args, 1); err != nil {
				return Nil, err
			}
			switch args[0].Tag {
			case VTNil:
				return ListVal(EmptyList), nil
			case VTList:
				return ListVal(args[0].Data.(*List).Rest()), nil
			case VTVector:
				xs := args[0].Data.(*Vector).Slice()
				if len(xs) == 0 {
					return ListVal(EmptyList), nil
				}
				return NewListValue(xs[1:]...), nil
			}
			return Nil, typeError("rest", "expected a list or vector, got %s", PrintStr(args[0], true))
		})

	def(env, "nth", `(nth seq i) is the i-th (0-based) element of seq.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("nth", args, 2); err != nil {
				return Nil, err
			}
			if args[1].Tag != VTInt {
				return Nil, argError("nth", "index must be an int, got %s", PrintStr(args[1], true))
			}
			i := args[1].Data.(int64)
			var (
				x  Value
				ok bool
			)
			switch args[0].Tag {
			case VTList:
				x, ok = args[0].Data.(*List).Nth(int(i))
			case VTVector:
				x, ok = args[0].Data.(*Vector).Nth(int(i))
			default:
				return Nil, typeError("nth", "expected a list or vector, got %s", PrintStr(args[0], true))
			}
			if !ok {
				return Nil, argError("nth", "index %d out of range", i)
			}
			return x, nil
		})

	def(env, "get", `(get m k [default]) looks k up in map m.`,
		func(args []Value) (Value, error) {
			if err := wantRange("get", args, 2, 3); err != nil {
				return Nil, err
			}
			m, err := asMap("get", args[0])
			if err != nil {
				return Nil, err
			}
			if v, ok := m.Get(args[1]); ok {
				return v, nil
			}
			if len(args) == 3 {
				return args[2], nil
			}
			return Nil, nil
		})

	def(env, "contains?", `(contains? m k) is true when map m has key k.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("contains?", args, 2); err != nil {
				return Nil, err
			}
			m, err := asMap("contains?", args[0])
			if err != nil {
				return Nil, err
			}
			_, ok := m.Get(args[1])
			return Bool(ok), nil
		})

	def(env, "assoc", `(assoc m k v ...) returns a copy of m with the given pairs added.`,
		func(args []Value) (Value, error) {
			if err := wantAtLeast("assoc", args, 1); err != nil {
				return Nil, err
			}
			m, err := asMap("assoc", args[0])
			if err != nil {
				return Nil, err
			}
			out := m.Clone()
			if err := putPairs("assoc", out, args[1:]); err != nil {
				return Nil, err
			}
			return MapVal(out), nil
		})

	def(env, "dissoc", `(dissoc m k ...) returns a copy of m without the given keys.`,
		func(args []Value) (Value, error) {
			if err := wantAtLeast("dissoc", args, 1); err != nil {
				return Nil, err
			}
			m, err := asMap("dissoc", args[0])
			if err != nil {
				return Nil, err
			}
			out := m.Clone()
			for _, k := range args[1:] {
				out.Delete(k)
			}
			return MapVal(out), nil
		})

	def(env, "keys", `(keys m) is the list of keys of m, in key order.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("keys", args, 1); err != nil {
				return Nil, err
			}
			m, err := asMap("keys", args[0])
			if err != nil {
				return Nil, err
			}
			entries := m.Entries()
			out := make([]Value, len(entries))
			for i, e := range entries {
				out[i] = e.Key
			}
			return NewListValue(out...), nil
		})

	def(env, "vals", `(vals m) is the list of values of m, in key order.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("vals", args, 1); err != nil {
				return Nil, err
			}
			m, err := asMap("vals", args[0])
			if err != nil {
				return Nil, err
			}
			entries := m.Entries()
			out := make([]Value, len(entries))
			for i, e := range entries {
				out[i] = e.Val
			}
			return NewListValue(out...), nil
		})
}

func putPairs(name string, m *MapObject, kvs []Value) error {
	if len(kvs)%2 != 0 {
		return argError(name, "expected key/value pairs, got %d forms", len(kvs))
	}
	for i := 0; i < len(kvs); i += 2 {
		if !kvs[i].IsAtom() {
			return argError(name, "invalid map key: %s", PrintStr(kvs[i], true))
		}
		if err := m.Put(kvs[i], kvs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func count(name string, v Value) (int, error) {
	switch v.Tag {
	case VTNil:
		return 0, nil
	case VTList:
		return v.Data.(*List).Len(), nil
	case VTVector:
		return v.Data.(*Vector).Len(), nil
	case VTMap:
		return v.Data.(*MapObject).Len(), nil
	case VTStr:
		return utf8.RuneCountInString(v.Data.(string)), nil
	}
	return 0, typeError(name, "cannot count %s", PrintStr(v, true))
}
