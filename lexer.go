/*
 * Copyright (c) 2023.
 * all right reserved by gnodux<gnodux@gmail.com>
 */

package sqlmark

import (
	"fmt"
	"strings"
)

// SegmentKind 扫描片段类型
type SegmentKind int

const (
	// Literal 普通SQL文本
	Literal SegmentKind = iota
	// Named :name
	Named
	// BracedNamed :{name}
	BracedNamed
	// Ampersand &name
	Ampersand
	// Positional ?
	Positional
)

func (k SegmentKind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Named:
		return "named"
	case BracedNamed:
		return "braced"
	case Ampersand:
		return "ampersand"
	case Positional:
		return "positional"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// Segment is one piece of a scanned template. For Literal segments Text holds the
// output text (escapes already applied); for parameter segments Text is the raw marker.
// Start and End are byte offsets into the scanned text.
type Segment struct {
	Kind  SegmentKind
	Text  string
	Name  string
	Start int
	End   int
}

func (s Segment) IsParameter() bool {
	return s.Kind != Literal
}

type lexMode int

const (
	modeNormal lexMode = iota
	modeSingleQuote
	modeDoubleQuote
	modeBlockComment
	modeLineComment
)

type lexer struct {
	src       string
	pos       int
	mode      lexMode
	zoneStart int

	lit      strings.Builder
	litStart int
	segments []Segment
}

// Scan 扫描SQL模板，返回文本片段与参数标记片段。
//
// 支持的标记: :name, :{name}, &name, ?。
// 单引号字符串、双引号标识符、/* */ 与 -- 注释中的内容原样保留，不识别任何标记；
// \: 输出字面量冒号；??, ?|, ?& 与 :: 原样保留。
func Scan(text string) ([]Segment, error) {
	return (&lexer{src: text, litStart: -1}).run()
}

func (l *lexer) run() ([]Segment, error) {
	for l.pos < len(l.src) {
		switch l.mode {
		case modeNormal:
			if err := l.normal(); err != nil {
				return nil, err
			}
		case modeSingleQuote:
			l.quoted('\'')
		case modeDoubleQuote:
			l.quoted('"')
		case modeBlockComment:
			l.blockComment()
		case modeLineComment:
			l.lineComment()
		default:
			panic(fmt.Sprintf("sqlmark: unknown lexer mode %d", l.mode))
		}
	}
	switch l.mode {
	case modeNormal, modeLineComment:
	case modeSingleQuote:
		return nil, malformed(l.zoneStart, "unterminated quoted literal")
	case modeDoubleQuote:
		return nil, malformed(l.zoneStart, "unterminated quoted identifier")
	case modeBlockComment:
		return nil, malformed(l.zoneStart, "unterminated block comment")
	default:
		panic(fmt.Sprintf("sqlmark: unknown lexer mode %d", l.mode))
	}
	l.flush()
	return l.segments, nil
}

func (l *lexer) normal() error {
	c := l.src[l.pos]
	next := l.peek(1)
	switch {
	case c == '\'':
		l.enter(modeSingleQuote, 1)
	case c == '/' && next == '*':
		l.enter(modeBlockComment, 2)
	case c == '"':
		l.enter(modeDoubleQuote, 1)
	case c == '-' && next == '-':
		l.enter(modeLineComment, 2)
	case c == '\\' && next == ':':
		l.emit(':')
		l.pos += 2
	case c == '?' && (next == '?' || next == '|' || next == '&'):
		l.copy(2)
	case c == ':' && next == ':':
		l.copy(2)
	case c == ':' && next == '{':
		return l.braced()
	case c == ':' && isIdentStart(next):
		l.named(Named)
	case c == ':':
		// a bare colon is only accepted where it cannot be a misspelt marker: "a := b", trailing ':'
		if next != 0 && next != '=' && !isSpace(next) {
			return malformed(l.pos, "unexpected %q after ':'", next)
		}
		l.copy(1)
	case c == '&' && isIdentStart(next):
		l.named(Ampersand)
	case c == '?':
		l.param(Positional, "", l.pos, l.pos+1)
		l.pos++
	default:
		l.copy(1)
	}
	return nil
}

func (l *lexer) quoted(q byte) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		l.copy(1)
		if c != q {
			continue
		}
		// doubled quote stays inside the literal
		if l.peek(0) == q {
			l.copy(1)
			continue
		}
		l.mode = modeNormal
		return
	}
}

func (l *lexer) blockComment() {
	end := strings.Index(l.src[l.pos:], "*/")
	if end < 0 {
		l.copy(len(l.src) - l.pos)
		return
	}
	l.copy(end + 2)
	l.mode = modeNormal
}

func (l *lexer) lineComment() {
	end := strings.IndexByte(l.src[l.pos:], '\n')
	if end < 0 {
		l.copy(len(l.src) - l.pos)
	} else {
		l.copy(end + 1)
	}
	l.mode = modeNormal
}

func (l *lexer) braced() error {
	start := l.pos
	end := strings.IndexByte(l.src[start+2:], '}')
	if end < 0 {
		return malformed(start, "unterminated :{...} parameter")
	}
	name := l.src[start+2 : start+2+end]
	if !isIdent(name) {
		return malformed(start, "invalid parameter name %q", name)
	}
	l.param(BracedNamed, name, start, start+2+end+1)
	l.pos = start + 2 + end + 1
	return nil
}

func (l *lexer) named(kind SegmentKind) {
	start := l.pos
	j := start + 2
	for j < len(l.src) && isIdentChar(l.src[j]) {
		j++
	}
	l.param(kind, l.src[start+1:j], start, j)
	l.pos = j
}

func (l *lexer) enter(mode lexMode, n int) {
	l.zoneStart = l.pos
	l.copy(n)
	l.mode = mode
}

func (l *lexer) peek(k int) byte {
	if l.pos+k < len(l.src) {
		return l.src[l.pos+k]
	}
	return 0
}

// copy moves n source bytes into the current literal run.
func (l *lexer) copy(n int) {
	if l.litStart < 0 {
		l.litStart = l.pos
	}
	l.lit.WriteString(l.src[l.pos : l.pos+n])
	l.pos += n
}

func (l *lexer) emit(b byte) {
	if l.litStart < 0 {
		l.litStart = l.pos
	}
	l.lit.WriteByte(b)
}

func (l *lexer) flush() {
	if l.lit.Len() == 0 {
		return
	}
	l.segments = append(l.segments, Segment{
		Kind:  Literal,
		Text:  l.lit.String(),
		Start: l.litStart,
		End:   l.pos,
	})
	l.lit.Reset()
	l.litStart = -1
}

// param closes the current literal run (which ends at l.pos) and records a marker.
func (l *lexer) param(kind SegmentKind, name string, start, end int) {
	l.flush()
	l.segments = append(l.segments, Segment{
		Kind:  kind,
		Text:  l.src[start:end],
		Name:  name,
		Start: start,
		End:   end,
	})
}

// isIdentStart reports whether b is [A-Za-z_] .
func isIdentStart(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_'
}

// isIdentChar reports whether b is [A-Za-z0-9_] .
func isIdentChar(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}
