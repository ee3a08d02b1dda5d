package wdl

import "strings"

// splitFragments walks a raw TokString token's body -- the literal text the
// lexer captured between quotes, with ~{}/${} markers still intact -- and
// splits it into a sequence of literal-text and Placeholder fragments. Each
// placeholder's inner text is re-lexed and re-parsed as a full expression
// via a fresh parser rooted at the placeholder's true absolute offset in the
// file, so the resulting sub-expression's spans point at the right place
// for error messages.
//
// tok.Offset is the absolute offset of the opening quote; the body itself
// starts one byte later.
func (p *parser) splitFragments(tok Token) ([]StringFragment, *Error) {
	return splitFragmentsAt(p.file, p.dialect, tok.Text, tok.Offset+1)
}

// splitFragmentsAt is the delimiter-agnostic core shared by string literals
// (quote-delimited) and command sections (brace/heredoc-delimited): body is
// the raw text, bodyOffset its absolute file offset.
func splitFragmentsAt(file *SourceFile, dia dialect, body string, bodyOffset int) ([]StringFragment, *Error) {
	var frags []StringFragment
	i := 0
	litStart := 0
	flushLiteral := func(end int) {
		if end > litStart {
			frags = append(frags, StringFragment{Literal: unescapeLiteral(body[litStart:end])})
		}
	}
	for i < len(body) {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			i += 2
			continue
		}
		if (c == '~' || c == '$') && i+1 < len(body) && body[i+1] == '{' {
			flushLiteral(i)
			exprStart := i + 2
			depth := 1
			j := exprStart
			for j < len(body) && depth > 0 {
				switch body[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth == 0 {
					break
				}
				j++
			}
			if depth != 0 {
				return nil, NewSyntaxError(Span{File: file}, "unterminated placeholder in %q", body)
			}
			inner := body[exprStart:j]
			ph, err := parsePlaceholder(file, dia, inner, bodyOffset+exprStart)
			if err != nil {
				return nil, err
			}
			frags = append(frags, StringFragment{Placeholder: ph})
			i = j + 1
			litStart = i
			continue
		}
		i++
	}
	flushLiteral(len(body))
	return frags, nil
}

// unescapeLiteral processes the small set of backslash escapes WDL string
// literals support. Unrecognized escapes pass the following character
// through unchanged.
func unescapeLiteral(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// parsePlaceholder parses the inner text of a ~{...}/${...} placeholder,
// recognizing a leading "true=\"x\" false=\"y\"", "sep=\"x\"", or
// "default=\"x\"" directive before the expression itself, per section
// 4.2's placeholder grammar.
func parsePlaceholder(file *SourceFile, dia dialect, inner string, base int) (*Placeholder, *Error) {
	toks, _, err := tokenizeAll(file, inner, base)
	if err != nil {
		return nil, err
	}
	sp := &parser{file: file, dialect: dia, toks: toks}

	ph := &Placeholder{}
	for {
		if sp.at(TokIdent) && sp.peekNextKind() == TokAssign {
			name := sp.cur().Text
			switch name {
			case "sep", "default", "true", "false":
				sp.advance()
				sp.advance() // '='
				valTok, verr := sp.expect(TokString, "string literal")
				if verr != nil {
					return nil, verr
				}
				frags, ferr := sp.splitFragments(valTok)
				if ferr != nil {
					return nil, ferr
				}
				lit := fragmentsToLiteral(frags)
				switch name {
				case "sep":
					ph.Option = PlaceholderOption{Kind: PlaceholderSep, Sep: lit}
				case "default":
					ph.Option = PlaceholderOption{Kind: PlaceholderDefault, Default: lit}
				case "true":
					ph.Option.Kind = PlaceholderTrueFalse
					ph.Option.True = lit
				case "false":
					ph.Option.Kind = PlaceholderTrueFalse
					ph.Option.False = lit
				}
				continue
			}
		}
		break
	}
	ph.OptKind = ph.Option.Kind
	e, eerr := sp.parseExpr()
	if eerr != nil {
		return nil, eerr
	}
	ph.Expr = e
	ph.Span = e.exprSpan()
	return ph, nil
}

// parseCommandSection parses a task's "command { ... }" or
// "command <<< ... >>>" block: the lexer has already captured the whole raw
// body (brace/heredoc-aware) as a single TokCommandBlock token; here we just
// split it into literal/placeholder fragments the same way a string is
// split.
func (p *parser) parseCommandSection() (*CommandSection, *Error) {
	start := p.advance().Span // 'command'
	if !p.at(TokCommandBlock) {
		return nil, NewSyntaxError(p.cur().Span, "expected command block delimiter, found %q", p.cur().Text)
	}
	tok := p.advance()
	bodyOffset := tok.Offset + 1
	if tok.CommandDelim == CommandDelimHeredoc {
		bodyOffset = tok.Offset + 3
	}
	frags, err := splitFragmentsAt(p.file, p.dialect, tok.Text, bodyOffset)
	if err != nil {
		return nil, err
	}
	return &CommandSection{Span: start.Merge(tok.Span), Fragments: frags}, nil
}
