package wdl

import "fmt"

// parser is a hand-written recursive-descent parser driven by a dialect,
// producing Document nodes directly in their normalized (version-neutral)
// form -- see cst.go's header comment for why there is no separate
// translation pass between CST and AST.
type parser struct {
	file    *SourceFile
	dialect dialect
	toks    []Token
	pos     int
	comments CommentMap
}

// ParseDocument tokenizes and parses a WDL source file into a Document. The
// document's version is auto-detected from its leading "version" directive
// (or Draft2 if absent) and determines which dialect the parser enforces.
func ParseDocument(file *SourceFile) (*Document, *Error) {
	version := DetectVersion(file.Text)
	toks, comments, err := tokenizeAll(file, file.Text, 0)
	if err != nil {
		return nil, err
	}
	p := &parser{file: file, dialect: dialectFor(version), toks: toks, comments: comments}
	return p.parseDocument(version)
}

func (p *parser) cur() Token  { return p.toks[p.pos] }
func (p *parser) at(k TokenKind) bool { return p.cur().Kind == k }

// peekNextKind returns the kind of the token after the current one, or
// TokEOF if the current token is already the last one.
func (p *parser) peekNextKind() TokenKind {
	if p.pos+1 >= len(p.toks) {
		return TokEOF
	}
	return p.toks[p.pos+1].Kind
}

func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k TokenKind, what string) (Token, *Error) {
	if !p.at(k) {
		return Token{}, NewSyntaxError(p.cur().Span, "expected %s, found %q", what, p.cur().Text)
	}
	return p.advance(), nil
}

func (p *parser) expectIdent() (Token, *Error) {
	if !p.at(TokIdent) {
		return Token{}, NewSyntaxError(p.cur().Span, "expected identifier, found %q", p.cur().Text)
	}
	return p.advance(), nil
}

func (p *parser) parseDocument(version Version) (*Document, *Error) {
	doc := &Document{Version: version, Comments: p.comments}
	start := p.cur().Span

	if p.at(TokVersion) {
		p.advance()
		// The version number itself was already consumed by DetectVersion;
		// here we just skip over the tokens the lexer produced for it
		// ("1.0" lexes as a single Float token, "draft-2" as Ident, Minus, Int).
		for !p.eofOrNewSection() {
			p.advance()
		}
	}

	for {
		switch {
		case p.at(TokImport):
			imp, err := p.parseImport()
			if err != nil {
				return nil, err
			}
			doc.Imports = append(doc.Imports, imp)
		case p.at(TokStruct):
			s, err := p.parseStruct()
			if err != nil {
				return nil, err
			}
			doc.Structs = append(doc.Structs, s)
		case p.at(TokTask):
			t, err := p.parseTask()
			if err != nil {
				return nil, err
			}
			doc.Tasks = append(doc.Tasks, t)
		case p.at(TokWorkflow):
			if doc.Workflow != nil {
				return nil, NewSyntaxError(p.cur().Span, "a document may declare at most one workflow")
			}
			w, err := p.parseWorkflow()
			if err != nil {
				return nil, err
			}
			doc.Workflow = w
		case p.at(TokEOF):
			doc.Span = start.Merge(p.cur().Span)
			return doc, nil
		default:
			return nil, NewSyntaxError(p.cur().Span, "expected import, struct, task, or workflow, found %q", p.cur().Text)
		}
	}
}

// eofOrNewSection is used only while skipping the tail of a "version ..."
// directive: stop at EOF or at the next top-level keyword.
func (p *parser) eofOrNewSection() bool {
	switch p.cur().Kind {
	case TokEOF, TokImport, TokStruct, TokTask, TokWorkflow:
		return true
	}
	return false
}

func (p *parser) parseImport() (*ImportDecl, *Error) {
	start := p.advance().Span // 'import'
	strTok, err := p.expect(TokString, "import path string")
	if err != nil {
		return nil, err
	}
	frags, ferr := p.splitFragments(strTok)
	if ferr != nil {
		return nil, ferr
	}
	uri := fragmentsToLiteral(frags)
	imp := &ImportDecl{URI: uri}
	if p.at(TokAs) {
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		imp.Alias = name.Text
	}
	if p.at(TokAlias) {
		for p.at(TokAlias) {
			p.advance()
			orig, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokAs, "'as'"); err != nil {
				return nil, err
			}
			alias, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			imp.Structs = append(imp.Structs, ImportStructAlias{Name: orig.Text, Alias: alias.Text})
		}
	}
	imp.Span = start.Merge(p.toks[p.pos-1].Span)
	return imp, nil
}

func (p *parser) parseStruct() (*StructDecl, *Error) {
	start := p.advance().Span // 'struct'
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}
	s := &StructDecl{Name: name.Text}
	for !p.at(TokRBrace) {
		te, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		memberName, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		s.Members = append(s.Members, StructMember{Span: te.Span.Merge(memberName.Span), Type: te, Name: memberName.Text})
	}
	end, err := p.expect(TokRBrace, "'}'")
	if err != nil {
		return nil, err
	}
	s.Span = start.Merge(end.Span)
	return s, nil
}

func (p *parser) parseTypeExpr() (*TypeExpr, *Error) {
	start := p.cur().Span
	var nameTok Token
	var err *Error
	switch {
	case p.at(TokIdent):
		nameTok = p.advance()
	case p.at(TokObject):
		nameTok = p.advance()
	default:
		return nil, NewSyntaxError(p.cur().Span, "expected type name, found %q", p.cur().Text)
	}
	te := &TypeExpr{Name: nameTok.Text}
	if !p.dialect.hasDirectoryType && te.Name == "Directory" {
		return nil, NewSyntaxError(nameTok.Span, "Directory type requires WDL 1.0 or later")
	}
	if p.at(TokLBracket) {
		p.advance()
		for {
			inner, ierr := p.parseTypeExpr()
			if ierr != nil {
				return nil, ierr
			}
			te.Params = append(te.Params, inner)
			if p.at(TokComma) {
				p.advance()
				continue
			}
			break
		}
		if _, err = p.expect(TokRBracket, "']'"); err != nil {
			return nil, err
		}
	}
	if p.at(TokPlus) {
		p.advance()
		// Array[T]+ non-empty marker; stashed via a synthetic param-less flag.
		te.Params = append(te.Params, &TypeExpr{Name: "+"})
	}
	if p.at(TokQuestion) {
		p.advance()
		te.Optional = true
	}
	te.Span = start.Merge(p.toks[p.pos-1].Span)
	return te, nil
}

func (p *parser) parseDeclaration() (*Declaration, *Error) {
	te, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	d := &Declaration{Type: te, Name: name.Text}
	if p.at(TokAssign) {
		p.advance()
		e, eerr := p.parseExpr()
		if eerr != nil {
			return nil, eerr
		}
		d.Expr = e
	}
	d.Span = te.Span.Merge(p.toks[p.pos-1].Span)
	return d, nil
}

func (p *parser) parseTask() (*TaskDecl, *Error) {
	start := p.advance().Span // 'task'
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}
	t := &TaskDecl{Name: name.Text}
	for !p.at(TokRBrace) {
		switch {
		case p.at(TokInput):
			p.advance()
			if _, err := p.expect(TokLBrace, "'{'"); err != nil {
				return nil, err
			}
			for !p.at(TokRBrace) {
				d, derr := p.parseDeclaration()
				if derr != nil {
					return nil, derr
				}
				t.Inputs = append(t.Inputs, d)
			}
			p.advance() // '}'
		case p.at(TokOutput):
			p.advance()
			if _, err := p.expect(TokLBrace, "'{'"); err != nil {
				return nil, err
			}
			for !p.at(TokRBrace) {
				d, derr := p.parseDeclaration()
				if derr != nil {
					return nil, derr
				}
				t.Outputs = append(t.Outputs, d)
			}
			p.advance() // '}'
		case p.at(TokCommandKW):
			cs, cerr := p.parseCommandSection()
			if cerr != nil {
				return nil, cerr
			}
			t.Command = cs
		case p.at(TokRuntime):
			rs, rerr := p.parseRuntimeSection()
			if rerr != nil {
				return nil, rerr
			}
			t.Runtime = rs
		case p.at(TokMeta):
			ms, merr := p.parseMetaSection(TokMeta)
			if merr != nil {
				return nil, merr
			}
			t.Meta = ms
		case p.at(TokParameterMeta):
			ms, merr := p.parseMetaSection(TokParameterMeta)
			if merr != nil {
				return nil, merr
			}
			t.ParameterMeta = ms
		case p.at(TokHints):
			if !p.dialect.hasHintsSection {
				return nil, NewSyntaxError(p.cur().Span, "hints section requires WDL development version")
			}
			hs, herr := p.parseHintsSection()
			if herr != nil {
				return nil, herr
			}
			t.Hints = hs
		case p.at(TokIdent) || p.at(TokObject):
			d, derr := p.parseDeclaration()
			if derr != nil {
				return nil, derr
			}
			t.Decls = append(t.Decls, d)
		default:
			return nil, NewSyntaxError(p.cur().Span, "unexpected token %q in task body", p.cur().Text)
		}
	}
	if p.dialect.requiresInputSection == false && t.Command == nil {
		// A task without a command section is accepted here, in every
		// dialect. Neither the type checker nor EvaluateTaskCommand reports
		// it; EvaluateTaskCommand returns an empty command for such a task.
	}
	end, err := p.expect(TokRBrace, "'}'")
	if err != nil {
		return nil, err
	}
	t.Span = start.Merge(end.Span)
	return t, nil
}

func (p *parser) parseRuntimeSection() (*RuntimeSection, *Error) {
	start := p.advance().Span // 'runtime'
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}
	rs := &RuntimeSection{Entries: map[string]Expr{}}
	for !p.at(TokRBrace) {
		key, err := p.runtimeKeyToken()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon, "':'"); err != nil {
			return nil, err
		}
		e, eerr := p.parseExpr()
		if eerr != nil {
			return nil, eerr
		}
		rs.Entries[key] = e
		rs.Order = append(rs.Order, key)
	}
	end, err := p.expect(TokRBrace, "'}'")
	if err != nil {
		return nil, err
	}
	rs.Span = start.Merge(end.Span)
	return rs, nil
}

// runtimeKeyToken accepts either a bare identifier or a keyword used as a
// runtime attribute name (e.g. "memory", "cpu" are identifiers, but nothing
// stops a reserved word like "object" from validly appearing as a key in
// real-world WDL, so both are accepted).
func (p *parser) runtimeKeyToken() (string, *Error) {
	if p.at(TokString) {
		tok := p.advance()
		return tok.Text, nil
	}
	tok := p.advance()
	if tok.Text == "" {
		return "", NewSyntaxError(tok.Span, "expected runtime attribute name")
	}
	return tok.Text, nil
}

func (p *parser) parseMetaSection(kw TokenKind) (*MetaSection, *Error) {
	start := p.advance().Span
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}
	ms := &MetaSection{Entries: map[string]Expr{}}
	for !p.at(TokRBrace) {
		key, err := p.runtimeKeyToken()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon, "':'"); err != nil {
			return nil, err
		}
		e, eerr := p.parseExpr()
		if eerr != nil {
			return nil, eerr
		}
		if verr := validateMetaValue(e); verr != nil {
			return nil, verr
		}
		ms.Entries[key] = e
		ms.Order = append(ms.Order, key)
	}
	end, err := p.expect(TokRBrace, "'}'")
	if err != nil {
		return nil, err
	}
	ms.Span = start.Merge(end.Span)
	return ms, nil
}

// validateMetaValue enforces spec section 4.2's restricted MetaValue
// grammar (null | Bool | Int | Float | String | Array | Object) on a
// meta/parameter_meta entry. A reference to any identifier is rejected as a
// SyntaxError -- "null" never reaches here as an Ident since the expression
// grammar already parses it directly into a NullLit.
func validateMetaValue(e Expr) *Error {
	switch n := e.(type) {
	case *IntLit, *FloatLit, *BoolLit, *NullLit:
		return nil
	case *StringLit:
		for _, f := range n.Fragments {
			if f.Placeholder != nil {
				return NewSyntaxError(n.Span, "meta values may not contain ~{...} interpolation")
			}
		}
		return nil
	case *ArrayLit:
		for _, el := range n.Elements {
			if err := validateMetaValue(el); err != nil {
				return err
			}
		}
		return nil
	case *MapLit:
		for _, v := range n.Values {
			if err := validateMetaValue(v); err != nil {
				return err
			}
		}
		return nil
	case *ObjectLit:
		for _, v := range n.Values {
			if err := validateMetaValue(v); err != nil {
				return err
			}
		}
		return nil
	case *Unary:
		// A leading "-" on a numeric literal is common in meta blocks
		// ("version": -1); permit it only when the operand is itself a
		// literal.
		return validateMetaValue(n.Expr)
	default:
		return NewSyntaxError(e.exprSpan(), "meta values must be literals; identifiers and expressions are not allowed")
	}
}

func (p *parser) parseHintsSection() (*HintsSection, *Error) {
	start := p.advance().Span // 'hints'
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}
	hs := &HintsSection{Entries: map[string]Expr{}}
	for !p.at(TokRBrace) {
		key, err := p.runtimeKeyToken()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokColon, "':'"); err != nil {
			return nil, err
		}
		e, eerr := p.parseExpr()
		if eerr != nil {
			return nil, eerr
		}
		hs.Entries[key] = e
		hs.Order = append(hs.Order, key)
	}
	end, err := p.expect(TokRBrace, "'}'")
	if err != nil {
		return nil, err
	}
	hs.Span = start.Merge(end.Span)
	return hs, nil
}

func (p *parser) parseWorkflow() (*WorkflowDecl, *Error) {
	start := p.advance().Span // 'workflow'
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}
	w := &WorkflowDecl{Name: name.Text}
	for !p.at(TokRBrace) {
		switch {
		case p.at(TokInput):
			p.advance()
			if _, err := p.expect(TokLBrace, "'{'"); err != nil {
				return nil, err
			}
			for !p.at(TokRBrace) {
				d, derr := p.parseDeclaration()
				if derr != nil {
					return nil, derr
				}
				w.Inputs = append(w.Inputs, d)
			}
			p.advance()
		case p.at(TokOutput):
			p.advance()
			if _, err := p.expect(TokLBrace, "'{'"); err != nil {
				return nil, err
			}
			for !p.at(TokRBrace) {
				d, derr := p.parseDeclaration()
				if derr != nil {
					return nil, derr
				}
				w.Outputs = append(w.Outputs, d)
			}
			p.advance()
		case p.at(TokMeta):
			ms, merr := p.parseMetaSection(TokMeta)
			if merr != nil {
				return nil, merr
			}
			w.Meta = ms
		case p.at(TokParameterMeta):
			ms, merr := p.parseMetaSection(TokParameterMeta)
			if merr != nil {
				return nil, merr
			}
			w.ParameterMeta = ms
		default:
			elem, eerr := p.parseWorkflowElement()
			if eerr != nil {
				return nil, eerr
			}
			w.Body = append(w.Body, elem)
		}
	}
	end, err := p.expect(TokRBrace, "'}'")
	if err != nil {
		return nil, err
	}
	w.Span = start.Merge(end.Span)
	return w, nil
}

func (p *parser) parseWorkflowElement() (WorkflowElement, *Error) {
	switch {
	case p.at(TokCall):
		return p.parseCall()
	case p.at(TokScatter):
		return p.parseScatter()
	case p.at(TokIf):
		return p.parseConditional()
	case p.at(TokIdent) || p.at(TokObject):
		return p.parseDeclaration()
	default:
		return nil, NewSyntaxError(p.cur().Span, "unexpected token %q in workflow body", p.cur().Text)
	}
}

func (p *parser) parseDottedName() (string, Span, *Error) {
	tok, err := p.expectIdent()
	if err != nil {
		return "", Span{}, err
	}
	name := tok.Text
	span := tok.Span
	for p.at(TokDot) {
		p.advance()
		next, nerr := p.expectIdent()
		if nerr != nil {
			return "", Span{}, nerr
		}
		name += "." + next.Text
		span = span.Merge(next.Span)
	}
	return name, span, nil
}

func (p *parser) parseCall() (*CallStmt, *Error) {
	start := p.advance().Span // 'call'
	target, tspan, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	c := &CallStmt{Target: target}
	if p.at(TokAs) {
		p.advance()
		alias, aerr := p.expectIdent()
		if aerr != nil {
			return nil, aerr
		}
		c.Alias = alias.Text
	}
	end := tspan
	if p.at(TokLBrace) {
		p.advance()
		if p.at(TokInput) {
			p.advance()
			if _, err := p.expect(TokColon, "':'"); err != nil {
				return nil, err
			}
		}
		for !p.at(TokRBrace) {
			name, ierr := p.expectIdent()
			if ierr != nil {
				return nil, ierr
			}
			ci := CallInput{Name: name.Text}
			if p.at(TokAssign) {
				p.advance()
				e, eerr := p.parseExpr()
				if eerr != nil {
					return nil, eerr
				}
				ci.Expr = e
			}
			c.Inputs = append(c.Inputs, ci)
			if p.at(TokComma) {
				p.advance()
			}
		}
		endTok, eerr := p.expect(TokRBrace, "'}'")
		if eerr != nil {
			return nil, eerr
		}
		end = endTok.Span
	}
	c.Span = start.Merge(end)
	return c, nil
}

func (p *parser) parseScatter() (*ScatterStmt, *Error) {
	start := p.advance().Span // 'scatter'
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}
	v, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokIn, "'in'"); err != nil {
		return nil, err
	}
	e, eerr := p.parseExpr()
	if eerr != nil {
		return nil, eerr
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}
	s := &ScatterStmt{Var: v.Text, Expr: e}
	for !p.at(TokRBrace) {
		elem, eerr := p.parseWorkflowElement()
		if eerr != nil {
			return nil, eerr
		}
		s.Body = append(s.Body, elem)
	}
	end, err := p.expect(TokRBrace, "'}'")
	if err != nil {
		return nil, err
	}
	s.Span = start.Merge(end.Span)
	return s, nil
}

func (p *parser) parseConditional() (*ConditionalStmt, *Error) {
	start := p.advance().Span // 'if'
	if _, err := p.expect(TokLParen, "'('"); err != nil {
		return nil, err
	}
	e, eerr := p.parseExpr()
	if eerr != nil {
		return nil, eerr
	}
	if _, err := p.expect(TokRParen, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace, "'{'"); err != nil {
		return nil, err
	}
	c := &ConditionalStmt{Expr: e}
	for !p.at(TokRBrace) {
		elem, eerr := p.parseWorkflowElement()
		if eerr != nil {
			return nil, eerr
		}
		c.Body = append(c.Body, elem)
	}
	end, err := p.expect(TokRBrace, "'}'")
	if err != nil {
		return nil, err
	}
	c.Span = start.Merge(end.Span)
	return c, nil
}

func fragmentsToLiteral(frags []StringFragment) string {
	if len(frags) == 1 && frags[0].Placeholder == nil {
		return frags[0].Literal
	}
	out := ""
	for _, f := range frags {
		if f.Placeholder == nil {
			out += f.Literal
		}
	}
	return out
}

var _ = fmt.Sprintf
