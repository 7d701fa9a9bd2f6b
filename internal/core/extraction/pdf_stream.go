package extraction

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// tjWordGap is the TJ displacement (thousandths of an em) treated as a word break.
const tjWordGap = -200

// decodeContentStream pulls the shown text out of a PDF page content stream.
// It understands the text showing operators (Tj, TJ, ', ") and turns line moves
// (Td, TD, T*, ET) into line breaks. Fonts with custom encodings are not mapped.
func decodeContentStream(data []byte) string {
	var (
		sb       strings.Builder
		operands []any
	)
	newline := func() {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
	}

	lx := &pdfLexer{data: data}
	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		switch t := tok.(type) {
		case pdfOperator:
			switch t {
			case "Tj":
				writeLastString(&sb, operands)
			case "'", "\"":
				newline()
				writeLastString(&sb, operands)
			case "TJ":
				if len(operands) > 0 {
					if arr, ok := operands[len(operands)-1].([]any); ok {
						writeTJ(&sb, arr)
					}
				}
			case "T*", "ET":
				newline()
			case "Td", "TD":
				if len(operands) >= 2 {
					if ty, ok := operands[len(operands)-1].(float64); ok && ty != 0 {
						newline()
					} else {
						sb.WriteByte(' ')
					}
				}
			}
			operands = operands[:0]
		default:
			operands = append(operands, tok)
		}
	}
	return tidyLines(sb.String())
}

func writeLastString(sb *strings.Builder, operands []any) {
	if len(operands) == 0 {
		return
	}
	if s, ok := operands[len(operands)-1].(pdfString); ok {
		sb.WriteString(s.text())
	}
}

func writeTJ(sb *strings.Builder, arr []any) {
	for _, el := range arr {
		switch v := el.(type) {
		case pdfString:
			sb.WriteString(v.text())
		case float64:
			if v <= tjWordGap {
				sb.WriteByte(' ')
			}
		}
	}
}

func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

type (
	pdfOperator string
	pdfName     string
	pdfString   []byte
)

// text decodes a PDF string: UTF-16BE when it carries a byte order mark,
// otherwise one byte per character.
func (s pdfString) text() string {
	if len(s) >= 2 && s[0] == 0xFE && s[1] == 0xFF {
		units := make([]uint16, 0, len(s)/2)
		for i := 2; i+1 < len(s); i += 2 {
			units = append(units, uint16(s[i])<<8|uint16(s[i+1]))
		}
		return string(utf16.Decode(units))
	}
	r := make([]rune, len(s))
	for i, b := range s {
		r[i] = rune(b)
	}
	return string(r)
}

// pdfLexer tokenizes a content stream into operands and operators.
type pdfLexer struct {
	data []byte
	pos  int
}

func (l *pdfLexer) next() (any, bool) {
	l.skipSpaceAndComments()
	if l.pos >= len(l.data) {
		return nil, false
	}
	c := l.data[l.pos]
	switch {
	case c == '(':
		l.pos++
		return l.literalString(), true
	case c == '<' && l.peek(1) == '<':
		l.pos += 2
		return pdfOperator("<<"), true
	case c == '>' && l.peek(1) == '>':
		l.pos += 2
		return pdfOperator(">>"), true
	case c == '<':
		l.pos++
		return l.hexString(), true
	case c == '[':
		l.pos++
		return l.array(), true
	case c == ']':
		l.pos++
		return pdfOperator("]"), true
	case c == '/':
		l.pos++
		return pdfName(l.word()), true
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		w := l.word()
		if f, err := strconv.ParseFloat(w, 64); err == nil {
			return f, true
		}
		return pdfOperator(w), true
	default:
		w := l.word()
		if w == "" {
			l.pos++
			return pdfOperator(string(c)), true
		}
		if w == "BI" {
			l.skipInlineImage()
		}
		return pdfOperator(w), true
	}
}

func (l *pdfLexer) peek(off int) byte {
	if l.pos+off < len(l.data) {
		return l.data[l.pos+off]
	}
	return 0
}

func (l *pdfLexer) skipSpaceAndComments() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isPDFSpace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *pdfLexer) word() string {
	start := l.pos
	for l.pos < len(l.data) && !isPDFSpace(l.data[l.pos]) && !isPDFDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *pdfLexer) literalString() pdfString {
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '\\':
			if l.pos >= len(l.data) {
				return out
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r', '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						v = v*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, c)
		default:
			out = append(out, c)
		}
	}
	return out
}

func (l *pdfLexer) hexString() pdfString {
	var out []byte
	var hi byte
	half := false
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			break
		}
		v, ok := hexVal(c)
		if !ok {
			continue
		}
		if half {
			out = append(out, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	return out
}

func (l *pdfLexer) array() []any {
	var out []any
	for {
		tok, ok := l.next()
		if !ok {
			return out
		}
		if op, isOp := tok.(pdfOperator); isOp && op == "]" {
			return out
		}
		out = append(out, tok)
	}
}

// skipInlineImage jumps past inline image data up to the EI operator.
func (l *pdfLexer) skipInlineImage() {
	for l.pos+2 < len(l.data) {
		if isPDFSpace(l.data[l.pos]) && l.data[l.pos+1] == 'E' && l.data[l.pos+2] == 'I' &&
			(l.pos+3 == len(l.data) || isPDFSpace(l.data[l.pos+3])) {
			l.pos += 3
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}

func isPDFSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isPDFDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
