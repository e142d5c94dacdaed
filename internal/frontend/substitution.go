package frontend

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aretw0/launchtree/pkg/domain"
	"github.com/aretw0/launchtree/pkg/launch"
)

// ParseSubstitution parses text containing "$(name arg...)" expressions.
// Arguments are separated by whitespace and may be single-quoted; both forms may
// contain nested expressions. file is recorded for dirname and filename.
func ParseSubstitution(s, file string) (domain.Substitution, error) {
	p := &substParser{src: []rune(s), file: file}
	out, err := p.parseUntil(func(rune) bool { return false })
	if err != nil {
		return nil, fmt.Errorf("%w in %q: %v", ErrSubstitutionSyntax, s, err)
	}
	return out, nil
}

type substParser struct {
	src  []rune
	pos  int
	file string
}

func (p *substParser) peek(prefix string) bool {
	return strings.HasPrefix(string(p.src[p.pos:]), prefix)
}

// parseUntil reads text and expressions until stop matches at nesting depth zero.
func (p *substParser) parseUntil(stop func(rune) bool) (domain.Substitution, error) {
	var out domain.Substitution
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			out = append(out, launch.Text(text.String()))
			text.Reset()
		}
	}
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		if stop(r) {
			break
		}
		if p.peek("$(") {
			flush()
			call, err := p.parseCall()
			if err != nil {
				return nil, err
			}
			out = append(out, call)
			continue
		}
		text.WriteRune(r)
		p.pos++
	}
	flush()
	return out, nil
}

func (p *substParser) parseCall() (launch.Call, error) {
	start := p.pos
	p.pos += 2
	p.skipSpace()

	nameStart := p.pos
	for p.pos < len(p.src) && (unicode.IsLetter(p.src[p.pos]) || unicode.IsDigit(p.src[p.pos]) || p.src[p.pos] == '-' || p.src[p.pos] == '_') {
		p.pos++
	}
	if p.pos == nameStart {
		return launch.Call{}, fmt.Errorf("missing substitution name at offset %d", start)
	}
	call := launch.Call{Name: string(p.src[nameStart:p.pos]), File: p.file}

	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return launch.Call{}, fmt.Errorf("unterminated $(%s at offset %d", call.Name, start)
		}
		switch p.src[p.pos] {
		case ')':
			p.pos++
			return call, nil
		case '\'', '"':
			quote := p.src[p.pos]
			p.pos++
			arg, err := p.parseUntil(func(r rune) bool { return r == quote })
			if err != nil {
				return launch.Call{}, err
			}
			if p.pos >= len(p.src) {
				return launch.Call{}, fmt.Errorf("unterminated quote in $(%s", call.Name)
			}
			p.pos++
			if arg == nil {
				arg = domain.Substitution{launch.Text("")}
			}
			call.Args = append(call.Args, arg)
		default:
			arg, err := p.parseUntil(func(r rune) bool { return unicode.IsSpace(r) || r == ')' })
			if err != nil {
				return launch.Call{}, err
			}
			call.Args = append(call.Args, arg)
		}
	}
}

func (p *substParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

// SplitWords splits a substitution on whitespace in its literal text.
// Expressions stay attached to the word they appear in.
func SplitWords(s domain.Substitution) []domain.Substitution {
	var words []domain.Substitution
	var cur domain.Substitution
	flush := func() {
		if len(cur) > 0 {
			words = append(words, cur)
			cur = nil
		}
	}
	for _, tok := range s {
		text, ok := tok.(launch.Text)
		if !ok {
			cur = append(cur, tok)
			continue
		}
		var word strings.Builder
		for _, r := range string(text) {
			if unicode.IsSpace(r) {
				if word.Len() > 0 {
					cur = append(cur, launch.Text(word.String()))
					word.Reset()
				}
				flush()
				continue
			}
			word.WriteRune(r)
		}
		if word.Len() > 0 {
			cur = append(cur, launch.Text(word.String()))
		}
	}
	flush()
	return words
}
