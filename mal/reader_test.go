// reader_test.go
package mal

import (
	"errors"
	"io"
	"math"
	"math/rand"
	"strings"
	"testing"
)

func mustRead(t *testing.T, src string) Value {
	t.Helper()
	v, ok, err := ReadString(src)
	if err != nil {
		t.Fatalf("read error for %q: %v", src, err)
	}
	if !ok {
		t.Fatalf("no form in %q", src)
	}
	return v
}

func wantReadErr(t *testing.T, src, contains string) *Error {
	t.Helper()
	_, err := ReadAll(src)
	if err == nil {
		t.Fatalf("expected read error for %q", src)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("want *Error, got %T: %v", err, err)
	}
	if e.Kind != DiagRead && e.Kind != DiagIncomplete {
		t.Fatalf("want a read error for %q, got %v", src, e.Kind)
	}
	if !strings.Contains(e.Msg, contains) {
		t.Fatalf("error %q should contain %q", e.Msg, contains)
	}
	return e
}

func wantPrinted(t *testing.T, v Value, want string) {
	t.Helper()
	if got := PrintStr(v, true); got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func Test_Reader_Atoms(t *testing.T) {
	cases := []struct {
		src  string
		want Value
	}{
		{"42", Int(42)},
		{"-7", Int(-7)},
		{"+3", Int(3)},
		{"1.5", Float(1.5)},
		{".5", Float(0.5)},
		{"-.5", Float(-0.5)},
		{"1e3", Float(1000)},
		{"nil", Nil},
		{"NIL", Nil},
		{"Nil", Nil},
		{"true", True},
		{"TRUE", True},
		{"False", False},
		{":kw", Keyword("kw")},
		{"abc", Symbol("abc")},
		{"-", Symbol("-")},
		{"+", Symbol("+")},
		{"1abc", Symbol("1abc")},
		{"inf", Symbol("inf")},
		{"nan", Symbol("nan")},
		{"Inf", Symbol("Inf")},
		{"+Inf", Float(math.Inf(1))},
		{"-Inf", Float(math.Inf(-1))},
		{"NaN", Float(math.NaN())},
		{":", Symbol(":")},
	}
	for _, c := range cases {
		got := mustRead(t, c.src)
		if got.Tag != c.want.Tag || !Equal(got, c.want) {
			t.Fatalf("%q: want %s (%v), got %s (%v)", c.src, c.want, c.want.Tag, got, got.Tag)
		}
	}
}

func Test_Reader_Strings(t *testing.T) {
	cases := map[string]string{
		`"a\"b"`:    `a"b`,
		`""`:        ``,
		`"x\ny"`:    "x\ny",
		`"t\tr\r"`:  "t\tr\r",
		`"back\\"`:  `back\`,
		`"héllo"`:   "héllo",
	}
	for src, want := range cases {
		v := mustRead(t, src)
		if v.Tag != VTStr || v.Data.(string) != want {
			t.Fatalf("%s: want %q, got %#v", src, want, v)
		}
	}
}

func Test_Reader_StringErrors(t *testing.T) {
	e := wantReadErr(t, `"\q"`, "invalid escape")
	if e.Kind != DiagRead {
		t.Fatalf("bad escape should be a plain read error, got %v", e.Kind)
	}
	e = wantReadErr(t, `"abc`, "unterminated string")
	if e.Kind != DiagRead {
		t.Fatalf("unterminated string should be a plain read error, got %v", e.Kind)
	}
}

func Test_Reader_NoForm(t *testing.T) {
	for _, src := range []string{"", "   ", "; just a comment", ";a\n;b\n", ",,"} {
		v, ok, err := ReadString(src)
		if err != nil || ok {
			t.Fatalf("%q: want no form, got %v ok=%v err=%v", src, v, ok, err)
		}
	}
}

func Test_Reader_Collections(t *testing.T) {
	wantPrinted(t, mustRead(t, "(1 (2 3) [4 5] {})"), "(1 (2 3) [4 5] {})")
	wantPrinted(t, mustRead(t, "()"), "()")
	wantPrinted(t, mustRead(t, "[ ]"), "[]")
	wantPrinted(t, mustRead(t, "{:b 2, :a 1}"), "{:a 1 :b 2}")

	v := mustRead(t, "(a b c)")
	if v.Tag != VTList || v.Data.(*List).Len() != 3 {
		t.Fatalf("want a 3-element list, got %s", v)
	}
	if first, _ := v.Data.(*List).First(); !first.IsSymbol("a") {
		t.Fatalf("list order not preserved: %s", v)
	}
}

func Test_Reader_QuoteForms(t *testing.T) {
	wantPrinted(t, mustRead(t, "'x"), "(quote x)")
	wantPrinted(t, mustRead(t, "`(a ~b ~@c)"), "(quasiquote (a (unquote b) (splice-unquote c)))")
	wantPrinted(t, mustRead(t, "@a"), "(deref a)")
	wantPrinted(t, mustRead(t, "''x"), "(quote (quote x))")
}

func Test_Reader_DelimiterErrors(t *testing.T) {
	e := wantReadErr(t, ")", "unexpected ')'")
	if IsIncomplete(e) {
		t.Fatalf("stray ')' is not incomplete")
	}
	wantReadErr(t, "(]", "unexpected ']'")
	wantReadErr(t, "}", "unexpected '}'")
	wantReadErr(t, "^m x", "metadata")
}

func Test_Reader_Incomplete(t *testing.T) {
	for _, src := range []string{"(1 2", "[1", "{:a 1", "'", "(a (b", "`(~@"} {
		e := wantReadErr(t, src, "unexpected end of input")
		if !IsIncomplete(e) {
			t.Fatalf("%q should be incomplete, got %v", src, e.Kind)
		}
	}
}

func Test_Reader_MapErrors(t *testing.T) {
	wantReadErr(t, "{:a}", "even number")
	wantReadErr(t, "{(1) 2}", "invalid map key")
	wantReadErr(t, "{[1] 2}", "invalid map key")
}

func Test_Reader_ErrorPosition(t *testing.T) {
	e := wantReadErr(t, "(+ 1\n )  )", "unexpected ')'")
	if e.Line != 2 || e.Col != 5 {
		t.Fatalf("want 2:5, got %d:%d", e.Line, e.Col)
	}
}

func Test_Reader_ReadAll(t *testing.T) {
	forms, err := ReadAll("1 two \"three\" (4) ; trailing")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(forms) != 4 {
		t.Fatalf("want 4 forms, got %d", len(forms))
	}
	wantPrinted(t, forms[3], "(4)")
}

func Test_Reader_StreamingAcrossLines(t *testing.T) {
	chunks := []string{"(+ 1\n", "2)\n"}
	var (
		r      *Reader
		inForm []bool
	)
	r = NewReader(LineSourceFunc(func() (string, error) {
		if len(chunks) == 0 {
			return "", io.EOF
		}
		inForm = append(inForm, r.InForm())
		c := chunks[0]
		chunks = chunks[1:]
		return c, nil
	}))
	v, ok, err := r.ReadForm()
	if err != nil || !ok {
		t.Fatalf("ReadForm: %v ok=%v", err, ok)
	}
	wantPrinted(t, v, "(+ 1 2)")
	if len(inForm) != 2 || inForm[0] || !inForm[1] {
		t.Fatalf("want InForm false then true at the pulls, got %v", inForm)
	}
	if r.InForm() {
		t.Fatalf("reader should be outside any form after a complete read")
	}
	if _, ok, err := r.ReadForm(); ok || err != nil {
		t.Fatalf("want clean end of input, got ok=%v err=%v", ok, err)
	}
}

func Test_Reader_DiscardAfterError(t *testing.T) {
	var n int
	r := NewReader(lines(&n, ") 1\n", "2\n"))
	if _, _, err := r.ReadForm(); !IsReadError(err) {
		t.Fatalf("want read error, got %v", err)
	}
	r.Discard()
	v, ok, err := r.ReadForm()
	if err != nil || !ok {
		t.Fatalf("ReadForm after Discard: %v ok=%v", err, ok)
	}
	wantPrinted(t, v, "2")
}

func Test_Reader_DepthResetAfterError(t *testing.T) {
	var n int
	r := NewReader(lines(&n, "(1 (2 ]\n", "3\n"))
	if _, _, err := r.ReadForm(); err == nil {
		t.Fatalf("want read error")
	}
	if r.InForm() {
		t.Fatalf("a failed read should leave the reader outside any form")
	}
}

////////////////////////////////////////////////////////////////////////////////
//                                 ROUND TRIP
////////////////////////////////////////////////////////////////////////////////

var (
	rtSymbols  = []string{"a", "foo", "bar-baz", "x?", "+", "->", "*star*", "λ"}
	rtStrings  = []string{"", "plain", `q"uote`, `back\slash`, "new\nline", "tab\there", "ünï"}
	rtKeywords = []string{"a", "key", "with-dash", "ns.name"}
	rtFloats   = []float64{0, 1.5, -0.25, 3, 1e21, 6.02e23, 1e-7, -1000.125, math.Inf(1), math.Inf(-1), math.NaN()}
)

func randAtom(rng *rand.Rand) Value {
	switch rng.Intn(7) {
	case 0:
		return Nil
	case 1:
		return Bool(rng.Intn(2) == 0)
	case 2:
		return Int(rng.Int63n(2_000_001) - 1_000_000)
	case 3:
		return Float(rtFloats[rng.Intn(len(rtFloats))])
	case 4:
		return Str(rtStrings[rng.Intn(len(rtStrings))])
	case 5:
		return Keyword(rtKeywords[rng.Intn(len(rtKeywords))])
	default:
		return Symbol(rtSymbols[rng.Intn(len(rtSymbols))])
	}
}

func randValue(rng *rand.Rand, depth int) Value {
	if depth == 0 || rng.Intn(3) == 0 {
		return randAtom(rng)
	}
	n := rng.Intn(4)
	xs := make([]Value, n)
	for i := range xs {
		xs[i] = randValue(rng, depth-1)
	}
	switch rng.Intn(3) {
	case 0:
		return NewListValue(xs...)
	case 1:
		return NewVectorValue(xs...)
	default:
		m := NewMap()
		for _, x := range xs {
			_ = m.Put(randAtom(rng), x)
		}
		return MapVal(m)
	}
}

func Test_Reader_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		v := randValue(rng, 5)
		text := PrintStr(v, true)
		back, ok, err := ReadString(text)
		if err != nil || !ok {
			t.Fatalf("re-reading %s: ok=%v err=%v", text, ok, err)
		}
		if again := PrintStr(back, true); again != text {
			t.Fatalf("round trip changed the text:\n  %s\n  %s", text, again)
		}
		if !Equal(v, back) {
			t.Fatalf("round trip changed the value: %s", text)
		}
	}
}
