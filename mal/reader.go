// reader.go: recursive-descent reader: tokens in, forms out.
//
// The reader pulls one token at a time from a Lexer and assembles Values:
//
//	( ... )   list          [ ... ]   vector        { k v ... }   map
//	'x        (quote x)     `x        (quasiquote x)
//	~x        (unquote x)   ~@x       (splice-unquote x)
//	@x        (deref x)
//	atoms     int, float, nil/true/false, "string", :keyword, symbol
//
// ReadForm distinguishes three outcomes: a form, "no form" (clean end of
// input, also after only comments/whitespace), and an error. An error whose
// only cause is running out of input inside a form has kind DiagIncomplete,
// which a REPL uses to prompt for a continuation line.
package mal

import (
	"math"
	"strconv"
	"strings"
)

// Reader reads forms from a LineSource.
type Reader struct {
	lex   *Lexer
	depth int
}

// NewReader returns a reader pulling text from src.
func NewReader(src LineSource) *Reader {
	return &Reader{lex: NewLexer(src)}
}

// ReadString reads the first form of src. ok is false when src holds no form.
func ReadString(src string) (v Value, ok bool, err error) {
	return NewReader(NewStringSource(src)).ReadForm()
}

// ReadAll reads every form of src.
func ReadAll(src string) ([]Value, error) {
	r := NewReader(NewStringSource(src))
	var out []Value
	for {
		v, ok, err := r.ReadForm()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

// ReadForm reads the next top-level form. It returns ok=false with a nil
// error at the end of input.
func (r *Reader) ReadForm() (v Value, ok bool, err error) {
	defer func() {
		if err != nil {
			r.depth = 0
		}
	}()
	tok, err := r.lex.Next()
	if err != nil {
		return Nil, false, err
	}
	if tok.Type == EOF {
		return Nil, false, nil
	}
	v, err = r.readFrom(tok)
	if err != nil {
		return Nil, false, err
	}
	return v, true, nil
}

// InForm reports whether the reader is in the middle of a form, i.e. the
// next chunk it asks for continues an unfinished list, vector or map.
func (r *Reader) InForm() bool { return r.depth > 0 }

// Discard abandons the rest of the current chunk. Drivers call it after a
// read error so the next ReadForm starts on fresh input.
func (r *Reader) Discard() {
	r.depth = 0
	r.lex.Discard()
}

func (r *Reader) readFrom(tok Token) (Value, error) {
	switch tok.Type {
	case LROUND:
		xs, err := r.readSeq(tok, RROUND)
		if err != nil {
			return Nil, err
		}
		return ListVal(ListOf(xs...)), nil
	case LSQUARE:
		xs, err := r.readSeq(tok, RSQUARE)
		if err != nil {
			return Nil, err
		}
		return VectorVal(NewVector(xs...)), nil
	case LCURLY:
		return r.readMap(tok)
	case RROUND, RSQUARE, RCURLY:
		return Nil, readError(tok, "unexpected '%s'", tok.Lexeme)
	case QUOTE:
		return r.wrap("quote")
	case QUASIQUOTE:
		return r.wrap("quasiquote")
	case UNQUOTE:
		return r.wrap("unquote")
	case SPLICE_UNQUOTE:
		return r.wrap("splice-unquote")
	case DEREF:
		return r.wrap("deref")
	case META:
		return Nil, readError(tok, "metadata ('^') is not supported")
	case STRING:
		return readString(tok)
	default:
		return readAtom(tok), nil
	}
}

// readSeq reads forms up to the closing delimiter; open has been consumed.
func (r *Reader) readSeq(open Token, close TokenType) ([]Value, error) {
	r.depth++
	defer func() { r.depth-- }()

	var xs []Value
	for {
		tok, err := r.lex.Next()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case close:
			return xs, nil
		case EOF:
			e := readError(tok, "unexpected end of input")
			e.Kind = DiagIncomplete
			return nil, e
		}
		x, err := r.readFrom(tok)
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
}

func (r *Reader) readMap(open Token) (Value, error) {
	xs, err := r.readSeq(open, RCURLY)
	if err != nil {
		return Nil, err
	}
	if len(xs)%2 != 0 {
		return Nil, readError(open, "map literal needs an even number of forms, got %d", len(xs))
	}
	m := NewMap()
	for i := 0; i < len(xs); i += 2 {
		if !xs[i].IsAtom() {
			return Nil, readError(open, "invalid map key: %s", PrintStr(xs[i], true))
		}
		if err := m.Put(xs[i], xs[i+1]); err != nil {
			return Nil, err
		}
	}
	return MapVal(m), nil
}

// wrap reads the next form and returns (name form).
func (r *Reader) wrap(name string) (Value, error) {
	r.depth++
	defer func() { r.depth-- }()

	tok, err := r.lex.Next()
	if err != nil {
		return Nil, err
	}
	if tok.Type == EOF {
		e := readError(tok, "unexpected end of input")
		e.Kind = DiagIncomplete
		return Nil, e
	}
	form, err := r.readFrom(tok)
	if err != nil {
		return Nil, err
	}
	return NewListValue(Symbol(name), form), nil
}

func readError(tok Token, format string, args ...any) *Error {
	e := newError(DiagRead, format, args...)
	e.Line, e.Col = tok.Line, tok.Col
	return e
}

////////////////////////////////////////////////////////////////////////////////
//                                    ATOMS
////////////////////////////////////////////////////////////////////////////////

func readAtom(tok Token) Value {
	s := tok.Lexeme
	if looksNumeric(s) {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(n)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Float(f)
		}
	}
	switch {
	case s == "+Inf":
		return Float(math.Inf(1))
	case s == "-Inf":
		return Float(math.Inf(-1))
	case s == "NaN":
		return Float(math.NaN())
	case strings.EqualFold(s, "nil"):
		return Nil
	case strings.EqualFold(s, "true"):
		return True
	case strings.EqualFold(s, "false"):
		return False
	case len(s) > 1 && s[0] == ':':
		return Keyword(s[1:])
	}
	return Symbol(s)
}

// looksNumeric gates number parsing so that symbols such as "inf" or "nan",
// which strconv would accept, stay symbols. Only the printer's spellings
// +Inf, -Inf and NaN read as the special floats.
func looksNumeric(s string) bool {
	isDigit := func(i int) bool { return i < len(s) && s[i] >= '0' && s[i] <= '9' }
	switch {
	case isDigit(0):
		return true
	case s[0] == '.':
		return isDigit(1)
	case s[0] == '+' || s[0] == '-':
		return isDigit(1) || (len(s) > 1 && s[1] == '.' && isDigit(2))
	}
	return false
}

// readString decodes a double-quoted literal token.
func readString(tok Token) (Value, error) {
	s := tok.Lexeme
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			return Str(b.String()), nil
		case '\\':
			i++
			if i >= len(s) {
				return Nil, readError(tok, "unterminated string")
			}
			switch s[i] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				return Nil, readError(tok, "invalid escape '\\%c' in string", s[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return Nil, readError(tok, "unterminated string")
}
