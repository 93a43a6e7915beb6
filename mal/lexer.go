// lexer.go: lazy, regexp-driven tokenizer.
package mal

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// TokenType represents the kind of token.
type TokenType int

const (
	EOF TokenType = iota

	LROUND  // "("
	RROUND  // ")"
	LSQUARE // "["
	RSQUARE // "]"
	LCURLY  // "{"
	RCURLY  // "}"

	QUOTE          // "'"
	QUASIQUOTE     // "`"
	UNQUOTE        // "~"
	SPLICE_UNQUOTE // "~@"
	DEREF          // "@"
	META           // "^"

	STRING // double-quoted literal, possibly unterminated; Lexeme is raw
	ATOM   // any other run of non-delimiter characters
)

// Token is one lexical token. Line and Col are 1-based and point at the
// token's first character.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Col    int
}

// tokenPattern matches optional separators (whitespace and commas) followed
// by exactly one token in group 1. Group 1 is empty only when the rest of the
// input is separators.
var tokenPattern = regexp.MustCompile(
	`^[\s,]*(~@|[\[\]{}()'` + "`" + `~^@]|"(?:\\.|[^\\"])*"?|;.*|[^\s\[\]{}('"` + "`" + `,;)]*)`)

var punct = map[string]TokenType{
	"(":  LROUND,
	")":  RROUND,
	"[":  LSQUARE,
	"]":  RSQUARE,
	"{":  LCURLY,
	"}":  RCURLY,
	"'":  QUOTE,
	"`":  QUASIQUOTE,
	"~":  UNQUOTE,
	"~@": SPLICE_UNQUOTE,
	"@":  DEREF,
	"^":  META,
}

////////////////////////////////////////////////////////////////////////////////
//                                LINE SOURCES
////////////////////////////////////////////////////////////////////////////////

// LineSource supplies raw text one chunk at a time. A chunk holds zero or
// more complete or partial forms; a string literal may not span chunks.
// NextLine returns io.EOF once input is exhausted.
type LineSource interface {
	NextLine() (string, error)
}

// LineSourceFunc adapts a plain function to LineSource.
type LineSourceFunc func() (string, error)

func (f LineSourceFunc) NextLine() (string, error) { return f() }

type stringSource struct {
	s    string
	done bool
}

func (s *stringSource) NextLine() (string, error) {
	if s.done {
		return "", io.EOF
	}
	s.done = true
	return s.s, nil
}

// NewStringSource serves src as a single chunk.
func NewStringSource(src string) LineSource { return &stringSource{s: src} }

type scannerSource struct{ sc *bufio.Scanner }

func (s scannerSource) NextLine() (string, error) {
	if s.sc.Scan() {
		return s.sc.Text() + "\n", nil
	}
	if err := s.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// NewLineSource serves r line by line.
func NewLineSource(r io.Reader) LineSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return scannerSource{sc: sc}
}

////////////////////////////////////////////////////////////////////////////////
//                                    LEXER
////////////////////////////////////////////////////////////////////////////////

// Lexer produces tokens on demand, pulling a new chunk from its source only
// when the current one is used up.
type Lexer struct {
	src   LineSource
	chunk string
	pos   int
	eof   bool

	started bool
	line    int
	col     int

	peeked *Token
}

// NewLexer returns a lexer reading from src.
func NewLexer(src LineSource) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if l.peeked != nil {
		return *l.peeked, nil
	}
	tok, err := l.scan()
	if err != nil {
		return tok, err
	}
	l.peeked = &tok
	return tok, nil
}

// Next consumes and returns the next token. At end of input it keeps
// returning an EOF token.
func (l *Lexer) Next() (Token, error) {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok, nil
	}
	return l.scan()
}

// Scan drains the lexer and returns every remaining token, without the
// trailing EOF.
func (l *Lexer) Scan() ([]Token, error) {
	var out []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return out, err
		}
		if tok.Type == EOF {
			return out, nil
		}
		out = append(out, tok)
	}
}

// Discard drops whatever is left of the current chunk, including a peeked
// token.
func (l *Lexer) Discard() {
	l.peeked = nil
	l.advance(l.chunk[l.pos:])
	l.pos = len(l.chunk)
}

// Pos returns the current 1-based line and column.
func (l *Lexer) Pos() (line, col int) { return l.line, l.col }

func (l *Lexer) scan() (Token, error) {
	for {
		if l.pos < len(l.chunk) {
			rest := l.chunk[l.pos:]
			m := tokenPattern.FindStringSubmatchIndex(rest)
			if m == nil || m[1] == 0 {
				// unreachable with the pattern above; never spin
				l.Discard()
				continue
			}
			l.advance(rest[:m[2]])
			text := rest[m[2]:m[3]]
			line, col := l.line, l.col
			l.advance(text)
			l.pos += m[3]

			if text == "" || text[0] == ';' {
				continue
			}
			tok := Token{Type: ATOM, Lexeme: text, Line: line, Col: col}
			if tt, ok := punct[text]; ok {
				tok.Type = tt
			} else if text[0] == '"' {
				tok.Type = STRING
			}
			return tok, nil
		}

		if l.eof {
			return Token{Type: EOF, Line: l.line, Col: l.col}, nil
		}
		chunk, err := l.src.NextLine()
		if err == io.EOF {
			l.eof = true
			continue
		}
		if err != nil {
			return Token{}, err
		}
		l.load(chunk)
	}
}

func (l *Lexer) load(chunk string) {
	if l.started && !strings.HasSuffix(l.chunk, "\n") {
		l.line++
		l.col = 1
	}
	l.started = true
	l.chunk = chunk
	l.pos = 0
}

func (l *Lexer) advance(s string) {
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if r == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
	}
}
