package jsonshape

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// parseState identifies a state of the character-level machine. States are
// value-comparable so suspension and end-of-input handling can dispatch on
// the state the machine was left in.
type parseState int

const (
	stateDocStart parseState = iota
	stateDocEnd
	stateFirstFieldReady
	stateNonFirstFieldReady
	stateFieldName
	stateEndFieldName
	stateFieldValueReady
	stateStringFieldValue
	stateNonStringFieldValue
	stateStringValue
	stateNonStringValue
	stateFirstArrayElementReady
	stateNonFirstArrayElementReady
	stateStringArrayElement
	stateNonStringArrayElement
	stateArrayElementEnd
	stateFieldEnd
	stateEscape
	stateUnicodeEscape
	stateCount
)

// A handler consumes characters from the current chunk starting at i and
// returns the next state together with the resume index. Returning with
// i == len(data) suspends the parse until the next chunk.
type stateHandler func(p *Parser, data []byte, i int) (parseState, int, error)

var stateHandlers = [stateCount]stateHandler{
	stateDocStart:                  docStartState,
	stateDocEnd:                    docEndState,
	stateFirstFieldReady:           firstFieldReadyState,
	stateNonFirstFieldReady:        nonFirstFieldReadyState,
	stateFieldName:                 fieldNameState,
	stateEndFieldName:              endFieldNameState,
	stateFieldValueReady:           fieldValueReadyState,
	stateStringFieldValue:          stringFieldValueState,
	stateNonStringFieldValue:       nonStringFieldValueState,
	stateStringValue:               stringValueState,
	stateNonStringValue:            nonStringValueState,
	stateFirstArrayElementReady:    firstArrayElementReadyState,
	stateNonFirstArrayElementReady: nonFirstArrayElementReadyState,
	stateStringArrayElement:        stringArrayElementState,
	stateNonStringArrayElement:     nonStringArrayElementState,
	stateArrayElementEnd:           arrayElementEndState,
	stateFieldEnd:                  fieldEndState,
	stateEscape:                    escapeState,
	stateUnicodeEscape:             unicodeEscapeState,
}

func docStartState(p *Parser, data []byte, i int) (parseState, int, error) {
	i = p.opts.hooks.SkipWhitespace(data, i)
	if i >= len(data) {
		return stateDocStart, i, nil
	}
	switch c := data[i]; c {
	case '{':
		next, err := p.beginContainer('{')
		return next, i + 1, err
	case '[':
		next, err := p.beginContainer('[')
		return next, i + 1, err
	case '"':
		p.sb = p.sb[:0]
		return stateStringValue, i + 1, nil
	case '}', ']', ',', ':':
		return 0, i, p.errorf(i, "unexpected character '%c'", c)
	default:
		p.sb = append(p.sb[:0], c)
		return stateNonStringValue, i + 1, nil
	}
}

func docEndState(p *Parser, data []byte, i int) (parseState, int, error) {
	i = p.opts.hooks.SkipWhitespace(data, i)
	if i >= len(data) {
		return stateDocEnd, i, nil
	}
	return 0, i, p.errorf(i, "unexpected character '%c' after document end", data[i])
}

func firstFieldReadyState(p *Parser, data []byte, i int) (parseState, int, error) {
	i = p.opts.hooks.SkipWhitespace(data, i)
	if i >= len(data) {
		return stateFirstFieldReady, i, nil
	}
	switch data[i] {
	case '"':
		p.sb = p.sb[:0]
		return stateFieldName, i + 1, nil
	case '}':
		next, err := p.endContainer()
		return next, i + 1, err
	}
	return 0, i, p.errorf(i, "expected '\"' or '}', found '%c'", data[i])
}

func nonFirstFieldReadyState(p *Parser, data []byte, i int) (parseState, int, error) {
	i = p.opts.hooks.SkipWhitespace(data, i)
	if i >= len(data) {
		return stateNonFirstFieldReady, i, nil
	}
	if data[i] == '"' {
		p.sb = p.sb[:0]
		return stateFieldName, i + 1, nil
	}
	return 0, i, p.errorf(i, "expected '\"', found '%c'", data[i])
}

func fieldNameState(p *Parser, data []byte, i int) (parseState, int, error) {
	return scanStringContent(p, data, i, stateFieldName, func(p *Parser) (parseState, error) {
		if err := p.commitFieldName(string(p.sb)); err != nil {
			return 0, err
		}
		return stateEndFieldName, nil
	})
}

func endFieldNameState(p *Parser, data []byte, i int) (parseState, int, error) {
	i = p.opts.hooks.SkipWhitespace(data, i)
	if i >= len(data) {
		return stateEndFieldName, i, nil
	}
	if data[i] == ':' {
		return stateFieldValueReady, i + 1, nil
	}
	return 0, i, p.errorf(i, "expected ':', found '%c'", data[i])
}

func fieldValueReadyState(p *Parser, data []byte, i int) (parseState, int, error) {
	i = p.opts.hooks.SkipWhitespace(data, i)
	if i >= len(data) {
		return stateFieldValueReady, i, nil
	}
	switch c := data[i]; c {
	case '"':
		p.sb = p.sb[:0]
		return stateStringFieldValue, i + 1, nil
	case '{':
		next, err := p.beginContainer('{')
		return next, i + 1, err
	case '[':
		next, err := p.beginContainer('[')
		return next, i + 1, err
	case '}', ']', ',', ':':
		return 0, i, p.errorf(i, "unexpected character '%c'", c)
	default:
		p.sb = append(p.sb[:0], c)
		return stateNonStringFieldValue, i + 1, nil
	}
}

func stringFieldValueState(p *Parser, data []byte, i int) (parseState, int, error) {
	return scanStringContent(p, data, i, stateStringFieldValue, func(p *Parser) (parseState, error) {
		if err := p.processScalar(string(p.sb), true); err != nil {
			return 0, err
		}
		return stateFieldEnd, nil
	})
}

func nonStringFieldValueState(p *Parser, data []byte, i int) (parseState, int, error) {
	for i < len(data) {
		switch c := data[i]; c {
		case ',':
			if err := p.finishScalar(); err != nil {
				return 0, i, err
			}
			return stateNonFirstFieldReady, i + 1, nil
		case '}':
			if err := p.finishScalar(); err != nil {
				return 0, i, err
			}
			next, err := p.endContainer()
			return next, i + 1, err
		case ' ', '\t', '\n', '\r':
			if err := p.finishScalar(); err != nil {
				return 0, i, err
			}
			return stateFieldEnd, i + 1, nil
		case '"', '{', '[', ']', ':':
			return 0, i, p.errorf(i, "unexpected character '%c'", c)
		default:
			p.sb = append(p.sb, c)
			i++
		}
	}
	return stateNonStringFieldValue, i, nil
}

func stringValueState(p *Parser, data []byte, i int) (parseState, int, error) {
	return scanStringContent(p, data, i, stateStringValue, func(p *Parser) (parseState, error) {
		if err := p.processScalar(string(p.sb), true); err != nil {
			return 0, err
		}
		return stateDocEnd, nil
	})
}

func nonStringValueState(p *Parser, data []byte, i int) (parseState, int, error) {
	for i < len(data) {
		switch c := data[i]; c {
		case ' ', '\t', '\n', '\r':
			if err := p.finishScalar(); err != nil {
				return 0, i, err
			}
			return stateDocEnd, i + 1, nil
		case '"', '{', '[', ']', '}', ',', ':':
			return 0, i, p.errorf(i, "unexpected character '%c'", c)
		default:
			p.sb = append(p.sb, c)
			i++
		}
	}
	return stateNonStringValue, i, nil
}

func firstArrayElementReadyState(p *Parser, data []byte, i int) (parseState, int, error) {
	i = p.opts.hooks.SkipWhitespace(data, i)
	if i >= len(data) {
		return stateFirstArrayElementReady, i, nil
	}
	switch c := data[i]; c {
	case '"':
		p.sb = p.sb[:0]
		return stateStringArrayElement, i + 1, nil
	case '{':
		next, err := p.beginContainer('{')
		return next, i + 1, err
	case '[':
		next, err := p.beginContainer('[')
		return next, i + 1, err
	case ']':
		next, err := p.endContainer()
		return next, i + 1, err
	case '}', ',', ':':
		return 0, i, p.errorf(i, "unexpected character '%c'", c)
	default:
		p.sb = append(p.sb[:0], c)
		return stateNonStringArrayElement, i + 1, nil
	}
}

func nonFirstArrayElementReadyState(p *Parser, data []byte, i int) (parseState, int, error) {
	i = p.opts.hooks.SkipWhitespace(data, i)
	if i >= len(data) {
		return stateNonFirstArrayElementReady, i, nil
	}
	switch c := data[i]; c {
	case '"':
		p.sb = p.sb[:0]
		return stateStringArrayElement, i + 1, nil
	case '{':
		next, err := p.beginContainer('{')
		return next, i + 1, err
	case '[':
		next, err := p.beginContainer('[')
		return next, i + 1, err
	case '}', ']', ',', ':':
		return 0, i, p.errorf(i, "expected array element, found '%c'", c)
	default:
		p.sb = append(p.sb[:0], c)
		return stateNonStringArrayElement, i + 1, nil
	}
}

func stringArrayElementState(p *Parser, data []byte, i int) (parseState, int, error) {
	return scanStringContent(p, data, i, stateStringArrayElement, func(p *Parser) (parseState, error) {
		if err := p.processScalar(string(p.sb), true); err != nil {
			return 0, err
		}
		return stateArrayElementEnd, nil
	})
}

func nonStringArrayElementState(p *Parser, data []byte, i int) (parseState, int, error) {
	for i < len(data) {
		switch c := data[i]; c {
		case ',':
			if err := p.finishScalar(); err != nil {
				return 0, i, err
			}
			return stateNonFirstArrayElementReady, i + 1, nil
		case ']':
			if err := p.finishScalar(); err != nil {
				return 0, i, err
			}
			next, err := p.endContainer()
			return next, i + 1, err
		case ' ', '\t', '\n', '\r':
			if err := p.finishScalar(); err != nil {
				return 0, i, err
			}
			return stateArrayElementEnd, i + 1, nil
		case '"', '{', '[', '}', ':':
			return 0, i, p.errorf(i, "unexpected character '%c'", c)
		default:
			p.sb = append(p.sb, c)
			i++
		}
	}
	return stateNonStringArrayElement, i, nil
}

func arrayElementEndState(p *Parser, data []byte, i int) (parseState, int, error) {
	i = p.opts.hooks.SkipWhitespace(data, i)
	if i >= len(data) {
		return stateArrayElementEnd, i, nil
	}
	switch data[i] {
	case ',':
		return stateNonFirstArrayElementReady, i + 1, nil
	case ']':
		next, err := p.endContainer()
		return next, i + 1, err
	}
	return 0, i, p.errorf(i, "expected ',' or ']', found '%c'", data[i])
}

func fieldEndState(p *Parser, data []byte, i int) (parseState, int, error) {
	i = p.opts.hooks.SkipWhitespace(data, i)
	if i >= len(data) {
		return stateFieldEnd, i, nil
	}
	switch data[i] {
	case ',':
		return stateNonFirstFieldReady, i + 1, nil
	case '}':
		next, err := p.endContainer()
		return next, i + 1, err
	}
	return 0, i, p.errorf(i, "expected ',' or '}', found '%c'", data[i])
}

// scanStringContent accumulates quoted-string content until the terminating
// quote, an escape, or chunk exhaustion. onQuote commits the accumulated
// text for the owning state.
func scanStringContent(p *Parser, data []byte, i int, self parseState, onQuote func(p *Parser) (parseState, error)) (parseState, int, error) {
	if i >= len(data) {
		return self, i, nil
	}
	if p.pendingSurrogate != 0 && data[i] != '\\' {
		return 0, i, p.errorf(i, "invalid surrogate pair in unicode escape")
	}
	quote, escape := p.opts.hooks.FindQuoteOrEscape(data, i)
	end := len(data)
	if quote >= 0 && (escape < 0 || quote < escape) {
		end = quote
	} else if escape >= 0 {
		end = escape
	}
	for at := i; at < end; at++ {
		if data[at] < 0x20 {
			return 0, at, p.errorf(at, "invalid control character in string")
		}
	}
	p.sb = append(p.sb, data[i:end]...)
	switch {
	case end == quote:
		next, err := onQuote(p)
		return next, end + 1, err
	case end == escape:
		p.escReturn = self
		return stateEscape, end + 1, nil
	}
	return self, end, nil
}

func escapeState(p *Parser, data []byte, i int) (parseState, int, error) {
	if i >= len(data) {
		return stateEscape, i, nil
	}
	c := data[i]
	if p.pendingSurrogate != 0 && c != 'u' {
		return 0, i, p.errorf(i, "invalid surrogate pair in unicode escape")
	}
	switch c {
	case '"', '\\', '/':
		p.sb = append(p.sb, c)
	case 'b':
		p.sb = append(p.sb, '\b')
	case 'f':
		p.sb = append(p.sb, '\f')
	case 'n':
		p.sb = append(p.sb, '\n')
	case 'r':
		p.sb = append(p.sb, '\r')
	case 't':
		p.sb = append(p.sb, '\t')
	case 'u':
		p.hex = p.hex[:0]
		return stateUnicodeEscape, i + 1, nil
	default:
		return 0, i, p.errorf(i, "invalid escape character '%c'", c)
	}
	return p.escReturn, i + 1, nil
}

// unicodeEscapeState collects the 4 hex digits of a \u escape, possibly
// across chunk boundaries, and folds the decoded rune into the accumulator.
// High surrogates are held until the paired low surrogate arrives.
func unicodeEscapeState(p *Parser, data []byte, i int) (parseState, int, error) {
	for i < len(data) && len(p.hex) < 4 {
		p.hex = append(p.hex, data[i])
		i++
	}
	if len(p.hex) < 4 {
		return stateUnicodeEscape, i, nil
	}
	r, ok := parseHex4(p.hex)
	if !ok {
		return 0, i, p.errorf(i, "invalid unicode escape '\\u%s'", string(p.hex))
	}
	switch {
	case p.pendingSurrogate != 0:
		decoded := utf16.DecodeRune(p.pendingSurrogate, r)
		if decoded == utf8.RuneError {
			return 0, i, p.errorf(i, "invalid surrogate pair in unicode escape")
		}
		p.pendingSurrogate = 0
		p.sb = utf8.AppendRune(p.sb, decoded)
	case utf16.IsSurrogate(r):
		if r >= 0xDC00 {
			return 0, i, p.errorf(i, "invalid surrogate pair in unicode escape")
		}
		p.pendingSurrogate = r
	default:
		p.sb = utf8.AppendRune(p.sb, r)
	}
	return p.escReturn, i, nil
}

func parseHex4(b []byte) (rune, bool) {
	if len(b) != 4 {
		return 0, false
	}
	var v rune
	for i := 0; i < 4; i++ {
		c := b[i]
		var d rune
		switch {
		case c >= '0' && c <= '9':
			d = rune(c - '0')
		case c >= 'a' && c <= 'f':
			d = rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = rune(c-'A') + 10
		default:
			return 0, false
		}
		v = (v << 4) | d
	}
	return v, true
}

func (p *Parser) errorf(i int, format string, args ...any) error {
	return fmt.Errorf(format+fmt.Sprintf(" at position %d", p.chunkBase+int64(i)), args...)
}
