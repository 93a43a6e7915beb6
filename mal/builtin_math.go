package mal

import "math"

// Numeric rules:
//   - int op int stays int (64-bit, wrapping on overflow);
//   - any float operand promotes the operation to float;
//   - `/` on two ints yields an int when the division is exact, else a float;
//   - a zero divisor is an argument error for `/`, div and rem, ints and
//     floats alike.

func isNumber(v Value) bool { return v.Tag == VTInt || v.Tag == VTFloat }

func asFloat(v Value) float64 {
	if v.Tag == VTInt {
		return float64(v.Data.(int64))
	}
	return v.Data.(float64)
}

func checkNumbers(name string, args []Value) error {
	for _, a := range args {
		if !isNumber(a) {
			return argError(name, "expected a number, got %s", PrintStr(a, true))
		}
	}
	return nil
}

func divideByZero(name string) error {
	e := argError(name, "division by zero")
	e.Cause = ErrDivideByZero
	return e
}

// arith applies an int and a float version of a binary operator.
func arith(a, b Value, fi func(x, y int64) int64, ff func(x, y float64) float64) Value {
	if a.Tag == VTInt && b.Tag == VTInt {
		return Int(fi(a.Data.(int64), b.Data.(int64)))
	}
	return Float(ff(asFloat(a), asFloat(b)))
}

func add(a, b Value) Value {
	return arith(a, b, func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y })
}

func sub(a, b Value) Value {
	return arith(a, b, func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y })
}

func mul(a, b Value) Value {
	return arith(a, b, func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y })
}

func quo(a, b Value) (Value, error) {
	if a.Tag == VTInt && b.Tag == VTInt {
		x, y := a.Data.(int64), b.Data.(int64)
		if y == 0 {
			return Nil, divideByZero("/")
		}
		if x%y == 0 {
			return Int(x / y), nil
		}
		return Float(float64(x) / float64(y)), nil
	}
	y := asFloat(b)
	if y == 0 {
		return Nil, divideByZero("/")
	}
	return Float(asFloat(a) / y), nil
}

// numCmp orders two numbers, comparing exactly when both are ints. NaN
// equals itself and sorts above every other number, as in Compare.
func numCmp(a, b Value) int {
	if a.Tag == VTInt && b.Tag == VTInt {
		return cmpInt(a.Data.(int64), b.Data.(int64))
	}
	return cmpFloat(asFloat(a), asFloat(b))
}

func fold(name string, unit Value, op func(a, b Value) Value) NativeFn {
	return func(args []Value) (Value, error) {
		if err := checkNumbers(name, args); err != nil {
			return Nil, err
		}
		acc := unit
		if len(args) > 0 {
			acc = args[0]
		}
		for _, a := range args[min(1, len(args)):] {
			acc = op(acc, a)
		}
		return acc, nil
	}
}

func chain(name string, ok func(c int) bool) NativeFn {
	return func(args []Value) (Value, error) {
		if err := wantAtLeast(name, args, 1); err != nil {
			return Nil, err
		}
		if err := checkNumbers(name, args); err != nil {
			return Nil, err
		}
		for i := 1; i < len(args); i++ {
			if !ok(numCmp(args[i-1], args[i])) {
				return False, nil
			}
		}
		return True, nil
	}
}

func intPair(name string, args []Value) (int64, int64, error) {
	if err := wantArgs(name, args, 2); err != nil {
		return 0, 0, err
	}
	for _, a := range args {
		if a.Tag != VTInt {
			return 0, 0, argError(name, "expected an int, got %s", PrintStr(a, true))
		}
	}
	x, y := args[0].Data.(int64), args[1].Data.(int64)
	if y == 0 {
		return 0, 0, divideByZero(name)
	}
	return x, y, nil
}

func registerMathBuiltins(env *Env) {
	def(env, "+", `(+ x ...) sums its arguments; (+) is 0.`, fold("+", Int(0), add))
	def(env, "*", `(* x ...) multiplies its arguments; (*) is 1.`, fold("*", Int(1), mul))

	def(env, "-", `(- x) negates x; (- x y ...) subtracts the rest from x.`,
		func(args []Value) (Value, error) {
			if err := wantAtLeast("-", args, 1); err != nil {
				return Nil, err
			}
			if err := checkNumbers("-", args); err != nil {
				return Nil, err
			}
			if len(args) == 1 {
				return sub(Int(0), args[0]), nil
			}
			acc := args[0]
			for _, a := range args[1:] {
				acc = sub(acc, a)
			}
			return acc, nil
		})

	def(env, "/", `(/ x) is 1/x; (/ x y ...) divides x by the rest. Exact int division stays int.`,
		func(args []Value) (Value, error) {
			if err := wantAtLeast("/", args, 1); err != nil {
				return Nil, err
			}
			if err := checkNumbers("/", args); err != nil {
				return Nil, err
			}
			if len(args) == 1 {
				return quo(Int(1), args[0])
			}
			acc := args[0]
			for _, a := range args[1:] {
				var err error
				if acc, err = quo(acc, a); err != nil {
					return Nil, err
				}
			}
			return acc, nil
		})

	def(env, "div", `(div x y) is the int quotient of x and y, truncated toward zero.`,
		func(args []Value) (Value, error) {
			x, y, err := intPair("div", args)
			if err != nil {
				return Nil, err
			}
			return Int(x / y), nil
		})

	def(env, "rem", `(rem x y) is the remainder of (div x y), with the sign of x.`,
		func(args []Value) (Value, error) {
			x, y, err := intPair("rem", args)
			if err != nil {
				return Nil, err
			}
			return Int(x % y), nil
		})

	def(env, "sqrt", `(sqrt x) is the float square root of a non-negative number.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("sqrt", args, 1); err != nil {
				return Nil, err
			}
			if err := checkNumbers("sqrt", args); err != nil {
				return Nil, err
			}
			x := asFloat(args[0])
			if x < 0 {
				return Nil, argError("sqrt", "negative argument %s", PrintStr(args[0], true))
			}
			return Float(math.Sqrt(x)), nil
		})

	def(env, "abs", `(abs x) is the absolute value of x, keeping its kind.`,
		func(args []Value) (Value, error) {
			if err := wantArgs("abs", args, 1); err != nil {
				return Nil, err
			}
			if err := checkNumbers("abs", args); err != nil {
				return Nil, err
			}
			if args[0].Tag == VTInt {
				if n := args[0].Data.(int64); n < 0 {
					return Int(-n), nil
				}
				return args[0], nil
			}
			return Float(math.Abs(args[0].Data.(float64))), nil
		})

	extreme := func(name string, better func(c int) bool) NativeFn {
		return func(args []Value) (Value, error) {
			if err := wantAtLeast(name, args, 1); err != nil {
				return Nil, err
			}
			if err := checkNumbers(name, args); err != nil {
				return Nil, err
			}
			best := args[0]
			for _, a := range args[1:] {
				if better(numCmp(a, best)) {
					best = a
				}
			}
			return best, nil
		}
	}
	def(env, "min", `(min x ...) is the smallest argument.`, extreme("min", func(c int) bool { return c < 0 }))
	def(env, "max", `(max x ...) is the largest argument.`, extreme("max", func(c int) bool { return c > 0 }))

	def(env, "<", `(< x y ...) is true when the arguments strictly increase.`, chain("<", func(c int) bool { return c < 0 }))
	def(env, "<=", `(<= x y ...) is true when the arguments never decrease.`, chain("<=", func(c int) bool { return c <= 0 }))
	def(env, ">", `(> x y ...) is true when the arguments strictly decrease.`, chain(">", func(c int) bool { return c > 0 }))
	def(env, ">=", `(>= x y ...) is true when the arguments never increase.`, chain(">=", func(c int) bool { return c >= 0 }))
}
