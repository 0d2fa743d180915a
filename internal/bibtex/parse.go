package bibtex

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnterminated is returned when the input ends inside an entry.
// Entries parsed before the broken one are still returned.
var ErrUnterminated = errors.New("unterminated bibtex entry")

// monthMacros are the standard BibTeX month abbreviations.
var monthMacros = map[string]string{
	"jan": "January", "feb": "February", "mar": "March", "apr": "April",
	"may": "May", "jun": "June", "jul": "July", "aug": "August",
	"sep": "September", "oct": "October", "nov": "November", "dec": "December",
}

type parser struct {
	src    string
	pos    int
	macros map[string]string
}

// Parse parses BibTeX text into entries in file order.
//
// Field names and entry types are lower-cased. Braced values keep their inner
// braces verbatim; quoted values and #-concatenation are supported, and
// @string macros are expanded. @comment and @preamble blocks are skipped.
func Parse(text string) ([]Entry, error) {
	p := &parser{src: text, macros: make(map[string]string)}
	for k, v := range monthMacros {
		p.macros[k] = v
	}

	var entries []Entry
	for {
		at := strings.IndexByte(p.src[p.pos:], '@')
		if at < 0 {
			return entries, nil
		}
		p.pos += at + 1

		typ := strings.ToLower(p.readIdent())
		p.skipSpace()
		if p.eof() {
			return entries, fmt.Errorf("%w: @%s at end of input", ErrUnterminated, typ)
		}
		open := p.src[p.pos]
		if open != '{' && open != '(' {
			// Stray @ in free text between entries.
			continue
		}
		closer := byte('}')
		if open == '(' {
			closer = ')'
		}

		switch typ {
		case "comment", "preamble":
			if !p.skipBalanced() {
				return entries, fmt.Errorf("%w: @%s", ErrUnterminated, typ)
			}
		case "string":
			p.pos++
			if err := p.parseMacro(closer); err != nil {
				return entries, err
			}
		default:
			p.pos++
			entry, err := p.parseEntry(typ, closer)
			if err != nil {
				return entries, err
			}
			entries = append(entries, entry)
		}
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

// readIdent reads a run of characters allowed in types, keys and field names.
func (p *parser) readIdent() string {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if unicode.IsSpace(rune(c)) || strings.IndexByte("{}(),=#\"", c) >= 0 {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// skipBalanced skips from an opening delimiter to its matching close.
func (p *parser) skipBalanced() bool {
	open := p.src[p.pos]
	closer := byte('}')
	if open == '(' {
		closer = ')'
	}
	depth := 0
	for !p.eof() {
		switch p.src[p.pos] {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				p.pos++
				return true
			}
		}
		p.pos++
	}
	return false
}

func (p *parser) parseMacro(closer byte) error {
	p.skipSpace()
	name := strings.ToLower(p.readIdent())
	p.skipSpace()
	if p.eof() || p.src[p.pos] != '=' {
		return fmt.Errorf("%w: @string %q missing '='", ErrUnterminated, name)
	}
	p.pos++
	value, err := p.parseValue(closer)
	if err != nil {
		return err
	}
	p.macros[name] = value
	p.skipSpace()
	if p.eof() || p.src[p.pos] != closer {
		return fmt.Errorf("%w: @string %q", ErrUnterminated, name)
	}
	p.pos++
	return nil
}

func (p *parser) parseEntry(typ string, closer byte) (Entry, error) {
	entry := Entry{Type: typ, Fields: make(map[string]string)}

	p.skipSpace()
	start := p.pos
	for !p.eof() && p.src[p.pos] != ',' && p.src[p.pos] != closer {
		p.pos++
	}
	if p.eof() {
		return entry, fmt.Errorf("%w: @%s", ErrUnterminated, typ)
	}
	entry.Key = strings.TrimSpace(p.src[start:p.pos])

	for {
		p.skipSpace()
		if p.eof() {
			return entry, fmt.Errorf("%w: %s", ErrUnterminated, entry.Key)
		}
		switch p.src[p.pos] {
		case closer:
			p.pos++
			return entry, nil
		case ',':
			p.pos++
			continue
		}

		name := p.readIdent()
		if name == "" {
			// Unexpected character; skip it rather than loop forever.
			p.pos++
			continue
		}
		p.skipSpace()
		if p.eof() {
			return entry, fmt.Errorf("%w: %s", ErrUnterminated, entry.Key)
		}
		if p.src[p.pos] != '=' {
			// A bare word without a value, e.g. a trailing key fragment.
			continue
		}
		p.pos++
		value, err := p.parseValue(closer)
		if err != nil {
			return entry, fmt.Errorf("field %s in %s: %w", name, entry.Key, err)
		}
		entry.Set(name, value)
	}
}

// parseValue parses one field value, joining #-separated parts.
func (p *parser) parseValue(closer byte) (string, error) {
	var b strings.Builder
	for {
		p.skipSpace()
		if p.eof() {
			return "", ErrUnterminated
		}
		switch c := p.src[p.pos]; {
		case c == '{':
			part, ok := p.readBraced()
			if !ok {
				return "", ErrUnterminated
			}
			b.WriteString(part)
		case c == '"':
			part, ok := p.readQuoted()
			if !ok {
				return "", ErrUnterminated
			}
			b.WriteString(part)
		default:
			word := p.readIdent()
			if word == "" {
				return strings.TrimSpace(b.String()), nil
			}
			if v, ok := p.macros[strings.ToLower(word)]; ok {
				b.WriteString(v)
			} else {
				b.WriteString(word)
			}
		}

		p.skipSpace()
		if !p.eof() && p.src[p.pos] == '#' {
			p.pos++
			continue
		}
		return strings.TrimSpace(b.String()), nil
	}
}

// readBraced returns the text between a '{' and its matching '}'. Braces
// are counted as BibTeX does, backslashes included, so `{x\}` is complete.
func (p *parser) readBraced() (string, bool) {
	depth := 0
	start := p.pos + 1
	for !p.eof() {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s := p.src[start:p.pos]
				p.pos++
				return s, true
			}
		}
		p.pos++
	}
	return "", false
}

// readQuoted returns the text between double quotes; quotes inside braces
// do not terminate the value.
func (p *parser) readQuoted() (string, bool) {
	depth := 0
	p.pos++
	start := p.pos
	for !p.eof() {
		switch p.src[p.pos] {
		case '\\':
			p.pos++
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				s := p.src[start:p.pos]
				p.pos++
				return s, true
			}
		}
		p.pos++
	}
	return "", false
}
