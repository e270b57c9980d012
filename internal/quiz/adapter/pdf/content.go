package pdf

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Kerning below this many thousandths of an em inside TJ reads as a space.
const tjSpaceThreshold = -200

type operandKind int

const (
	operandString operandKind = iota
	operandNumber
	operandArray
	operandOther
)

type operand struct {
	kind operandKind
	s    string
	n    float64
	arr  []operand
}

// ContentText returns the text drawn by the Tj, TJ, ' and " operators of
// a decoded content stream. Line moves and text object ends become
// newlines.
func ContentText(content []byte) string {
	var (
		out      strings.Builder
		operands []operand
		arrays   [][]operand
		lineOpen bool
	)
	write := func(s string) {
		if s == "" {
			return
		}
		out.WriteString(s)
		lineOpen = true
	}
	newline := func() {
		if lineOpen {
			out.WriteString("\n")
			lineOpen = false
		}
	}
	push := func(op operand) {
		if n := len(arrays); n > 0 {
			arrays[n-1] = append(arrays[n-1], op)
			return
		}
		operands = append(operands, op)
	}
	lastString := func() (string, bool) {
		if n := len(operands); n > 0 && operands[n-1].kind == operandString {
			return operands[n-1].s, true
		}
		return "", false
	}

	lx := &lexer{data: content}
	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokenArrayStart:
			arrays = append(arrays, nil)
		case tokenArrayEnd:
			if n := len(arrays); n > 0 {
				arr := arrays[n-1]
				arrays = arrays[:n-1]
				push(operand{kind: operandArray, arr: arr})
			}
		case tokenString:
			push(operand{kind: operandString, s: tok.text})
		case tokenNumber:
			push(operand{kind: operandNumber, n: tok.num})
		case tokenOther:
			push(operand{kind: operandOther})
		case tokenOperator:
			switch tok.text {
			case "Tj":
				if s, ok := lastString(); ok {
					write(s)
				}
			case "'", "\"":
				newline()
				if s, ok := lastString(); ok {
					write(s)
				}
			case "TJ":
				if n := len(operands); n > 0 && operands[n-1].kind == operandArray {
					for _, el := range operands[n-1].arr {
						switch {
						case el.kind == operandString:
							write(el.s)
						case el.kind == operandNumber && el.n < tjSpaceThreshold:
							write(" ")
						}
					}
				}
			case "Td", "TD", "T*", "Tm", "ET":
				newline()
			case "ID":
				lx.skipInlineImage()
			}
			operands = operands[:0]
			arrays = arrays[:0]
		}
	}
	return out.String()
}

type tokenKind int

const (
	tokenOperator tokenKind = iota
	tokenString
	tokenNumber
	tokenArrayStart
	tokenArrayEnd
	tokenOther
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

type lexer struct {
	data []byte
	pos  int
}

func isWhitespace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (lx *lexer) next() (token, bool) {
	lx.skipSpaceAndComments()
	if lx.pos >= len(lx.data) {
		return token{}, false
	}

	c := lx.data[lx.pos]
	switch c {
	case '(':
		lx.pos++
		return token{kind: tokenString, text: decodeText(lx.literal())}, true
	case '<':
		if lx.peek(1) == '<' {
			lx.pos += 2
			return token{kind: tokenOther}, true
		}
		lx.pos++
		return token{kind: tokenString, text: decodeText(lx.hex())}, true
	case '>':
		lx.pos++
		if lx.peek(0) == '>' {
			lx.pos++
		}
		return token{kind: tokenOther}, true
	case '[':
		lx.pos++
		return token{kind: tokenArrayStart}, true
	case ']':
		lx.pos++
		return token{kind: tokenArrayEnd}, true
	case '{', '}', ')':
		lx.pos++
		return token{kind: tokenOther}, true
	case '/':
		lx.pos++
		lx.regular()
		return token{kind: tokenOther}, true
	}

	word := lx.regular()
	if word == "" {
		lx.pos++
		return token{kind: tokenOther}, true
	}
	if first := word[0]; first == '+' || first == '-' || first == '.' || (first >= '0' && first <= '9') {
		if n, err := strconv.ParseFloat(word, 64); err == nil {
			return token{kind: tokenNumber, num: n}, true
		}
	}
	return token{kind: tokenOperator, text: word}, true
}

func (lx *lexer) peek(offset int) byte {
	if i := lx.pos + offset; i < len(lx.data) {
		return lx.data[i]
	}
	return 0
}

func (lx *lexer) skipSpaceAndComments() {
	for lx.pos < len(lx.data) {
		c := lx.data[lx.pos]
		switch {
		case isWhitespace(c):
			lx.pos++
		case c == '%':
			for lx.pos < len(lx.data) && lx.data[lx.pos] != '\n' && lx.data[lx.pos] != '\r' {
				lx.pos++
			}
		default:
			return
		}
	}
}

func (lx *lexer) regular() string {
	start := lx.pos
	for lx.pos < len(lx.data) && !isWhitespace(lx.data[lx.pos]) && !isDelimiter(lx.data[lx.pos]) {
		lx.pos++
	}
	return string(lx.data[start:lx.pos])
}

// literal reads a (string) body; the opening paren is already consumed.
func (lx *lexer) literal() []byte {
	var buf bytes.Buffer
	depth := 1
	for lx.pos < len(lx.data) {
		c := lx.data[lx.pos]
		lx.pos++
		switch c {
		case '(':
			depth++
			buf.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return buf.Bytes()
			}
			buf.WriteByte(c)
		case '\\':
			lx.escape(&buf)
		default:
			buf.WriteByte(c)
		}
	}
	return buf.Bytes()
}

func (lx *lexer) escape(buf *bytes.Buffer) {
	if lx.pos >= len(lx.data) {
		return
	}
	c := lx.data[lx.pos]
	lx.pos++
	switch c {
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case 'b':
		buf.WriteByte('\b')
	case 'f':
		buf.WriteByte('\f')
	case '\r':
		if lx.peek(0) == '\n' {
			lx.pos++
		}
	case '\n':
	default:
		if c >= '0' && c <= '7' {
			v := int(c - '0')
			for i := 0; i < 2 && lx.pos < len(lx.data); i++ {
				d := lx.data[lx.pos]
				if d < '0' || d > '7' {
					break
				}
				v = v*8 + int(d-'0')
				lx.pos++
			}
			buf.WriteByte(byte(v))
			return
		}
		buf.WriteByte(c)
	}
}

// hex reads a <hex string> body; the opening bracket is already consumed.
func (lx *lexer) hex() []byte {
	var digits []byte
	for lx.pos < len(lx.data) {
		c := lx.data[lx.pos]
		lx.pos++
		if c == '>' {
			break
		}
		if isHexDigit(c) {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		out[i] = hexValue(digits[2*i])<<4 | hexValue(digits[2*i+1])
	}
	return out
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}

// skipInlineImage moves past binary image data up to the EI operator.
func (lx *lexer) skipInlineImage() {
	for lx.pos+2 < len(lx.data) {
		if isWhitespace(lx.data[lx.pos]) && lx.data[lx.pos+1] == 'E' && lx.data[lx.pos+2] == 'I' &&
			(lx.pos+3 == len(lx.data) || isWhitespace(lx.data[lx.pos+3]) || isDelimiter(lx.data[lx.pos+3])) {
			lx.pos += 3
			return
		}
		lx.pos++
	}
	lx.pos = len(lx.data)
}

// decodeText reads UTF-16BE strings marked with a byte order mark and
// treats everything else as Latin-1.
func decodeText(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		units := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(units))
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
