package sim

import (
	"fmt"
	"strconv"
	"strings"
)

// poolVar is one kernel pool variable. Exactly one of nums and strs is in use.
// extends marks a variable introduced with += in a kernel that did not define
// it, which appends to whatever earlier kernels hold.
type poolVar struct {
	nums    []float64
	strs    []string
	extends bool
}

func (v *poolVar) isString() bool { return len(v.strs) > 0 }

type parseError struct {
	short string
	msg   string
}

func (e *parseError) Error() string { return e.short + ": " + e.msg }

type tokenKind int

const (
	tokName tokenKind = iota
	tokAssign
	tokAppend
	tokOpen
	tokClose
	tokString
	tokNumber
	tokDate
)

type token struct {
	kind tokenKind
	text string
	num  float64
	line int
}

// parseTextKernel reads the data sections of a text kernel. Everything
// outside \begindata ... \begintext blocks is commentary.
func parseTextKernel(data []byte) (map[string]*poolVar, *parseError) {
	var body strings.Builder
	inData := false
	for _, line := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		switch strings.TrimSpace(line) {
		case `\begindata`:
			inData = true
			body.WriteString("\n")
			continue
		case `\begintext`:
			inData = false
			body.WriteString("\n")
			continue
		}
		if inData {
			body.WriteString(line)
		}
		body.WriteString("\n")
	}

	toks, perr := lex(body.String())
	if perr != nil {
		return nil, perr
	}

	vars := map[string]*poolVar{}
	for i := 0; i < len(toks); {
		name := toks[i]
		if name.kind != tokName {
			return nil, &parseError{"SPICE(BADVARASSIGN)", fmt.Sprintf("expected a variable name on line %d, found %q", name.line, name.text)}
		}
		i++
		if i >= len(toks) || (toks[i].kind != tokAssign && toks[i].kind != tokAppend) {
			return nil, &parseError{"SPICE(BADVARASSIGN)", fmt.Sprintf("missing = or += after %s on line %d", name.text, name.line)}
		}
		appendOp := toks[i].kind == tokAppend
		i++

		var values []token
		switch {
		case i < len(toks) && toks[i].kind == tokOpen:
			i++
			for i < len(toks) && toks[i].kind != tokClose {
				values = append(values, toks[i])
				i++
			}
			if i >= len(toks) {
				return nil, &parseError{"SPICE(BADVARASSIGN)", fmt.Sprintf("unterminated list for %s", name.text)}
			}
			i++
		case i < len(toks):
			values = append(values, toks[i])
			i++
		default:
			return nil, &parseError{"SPICE(BADVARASSIGN)", fmt.Sprintf("missing value for %s", name.text)}
		}

		v := &poolVar{}
		for _, t := range values {
			switch t.kind {
			case tokString:
				v.strs = append(v.strs, t.text)
			case tokNumber, tokDate:
				v.nums = append(v.nums, t.num)
			default:
				return nil, &parseError{"SPICE(BADVARASSIGN)", fmt.Sprintf("unexpected %q in value of %s", t.text, name.text)}
			}
		}
		if len(v.strs) > 0 && len(v.nums) > 0 {
			return nil, &parseError{"SPICE(TYPEMISMATCH)", fmt.Sprintf("%s mixes string and numeric values", name.text)}
		}

		prev, seen := vars[name.text]
		switch {
		case appendOp && seen:
			if prev.isString() != v.isString() && (len(prev.strs)+len(prev.nums)) > 0 {
				return nil, &parseError{"SPICE(TYPEMISMATCH)", fmt.Sprintf("+= changes the type of %s", name.text)}
			}
			prev.nums = append(prev.nums, v.nums...)
			prev.strs = append(prev.strs, v.strs...)
		case appendOp:
			v.extends = true
			vars[name.text] = v
		default:
			vars[name.text] = v
		}
	}
	return vars, nil
}

func lex(src string) ([]token, *parseError) {
	var toks []token
	line := 1
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\n':
			line++
			i++
		case c == ' ' || c == '\t' || c == ',' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{kind: tokOpen, text: "(", line: line})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokClose, text: ")", line: line})
			i++
		case c == '=':
			toks = append(toks, token{kind: tokAssign, text: "=", line: line})
			i++
		case c == '+' && i+1 < len(src) && src[i+1] == '=':
			toks = append(toks, token{kind: tokAppend, text: "+=", line: line})
			i += 2
		case c == '\'':
			var sb strings.Builder
			j := i + 1
			for {
				if j >= len(src) || src[j] == '\n' {
					return nil, &parseError{"SPICE(BADVARASSIGN)", fmt.Sprintf("unterminated string on line %d", line)}
				}
				if src[j] == '\'' {
					if j+1 < len(src) && src[j+1] == '\'' {
						sb.WriteByte('\'')
						j += 2
						continue
					}
					break
				}
				sb.WriteByte(src[j])
				j++
			}
			toks = append(toks, token{kind: tokString, text: sb.String(), line: line})
			i = j + 1
		default:
			j := i
			for j < len(src) && !strings.ContainsRune(" \t\r\n,()='", rune(src[j])) {
				if src[j] == '+' && j+1 < len(src) && src[j+1] == '=' && j > i {
					break
				}
				j++
			}
			word := src[i:j]
			i = j
			t, perr := classify(word, line)
			if perr != nil {
				return nil, perr
			}
			toks = append(toks, t)
		}
	}
	return toks, nil
}

func classify(word string, line int) (token, *parseError) {
	if strings.HasPrefix(word, "@") {
		sec, err := formalFromDate(word[1:])
		if err != nil {
			return token{}, &parseError{"SPICE(BADTIMESPEC)", fmt.Sprintf("invalid date %q on line %d", word, line)}
		}
		return token{kind: tokDate, text: word, num: sec, line: line}, nil
	}
	if c := word[0]; c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
		f, err := strconv.ParseFloat(strings.NewReplacer("D", "E", "d", "e").Replace(word), 64)
		if err != nil {
			return token{}, &parseError{"SPICE(BADVARASSIGN)", fmt.Sprintf("invalid number %q on line %d", word, line)}
		}
		return token{kind: tokNumber, text: word, num: f, line: line}, nil
	}
	return token{kind: tokName, text: word, line: line}, nil
}
