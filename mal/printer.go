package mal

import (
	"math"
	"strconv"
	"strings"
)

/* ---------- helpers ---------- */

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// formatFloat always leaves a '.' or an exponent so the text reads back as
// a float.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

/* ---------- values ---------- */

// PrintStr renders v in the reader's syntax. With readable set, strings are
// quoted and escaped; otherwise their raw contents are written.
func PrintStr(v Value, readable bool) string {
	var b strings.Builder
	writeValue(&b, v, readable)
	return b.String()
}

func writeValue(b *strings.Builder, v Value, readable bool) {
	switch v.Tag {
	case VTNil:
		b.WriteString("nil")
	case VTBool:
		if v.Data.(bool) {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case VTInt:
		b.WriteString(strconv.FormatInt(v.Data.(int64), 10))
	case VTFloat:
		b.WriteString(formatFloat(v.Data.(float64)))
	case VTStr:
		if readable {
			b.WriteString(quoteString(v.Data.(string)))
		} else {
			b.WriteString(v.Data.(string))
		}
	case VTKeyword:
		b.WriteByte(':')
		b.WriteString(v.Data.(string))
	case VTSymbol:
		b.WriteString(v.Data.(string))
	case VTList:
		writeSeq(b, "(", ")", v.Data.(*List).Slice(), readable)
	case VTVector:
		writeSeq(b, "[", "]", v.Data.(*Vector).Slice(), readable)
	case VTMap:
		b.WriteByte('{')
		for i, e := range v.Data.(*MapObject).Entries() {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeValue(b, e.Key, readable)
			b.WriteByte(' ')
			writeValue(b, e.Val, readable)
		}
		b.WriteByte('}')
	case VTFun:
		f := v.Data.(*Fun)
		if f.Name != "" {
			b.WriteString("#<fn " + f.Name + ">")
		} else {
			b.WriteString("#<fn>")
		}
	default:
		b.WriteString("#<unknown>")
	}
}

func writeSeq(b *strings.Builder, open, close string, xs []Value, readable bool) {
	b.WriteString(open)
	for i, x := range xs {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeValue(b, x, readable)
	}
	b.WriteString(close)
}
