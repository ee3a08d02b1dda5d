package wdl

import (
	"strconv"
)

// parseExpr parses a full expression, starting at the lowest precedence
// level (ternary if/then/else), matching section 4.2's grammar.
func (p *parser) parseExpr() (Expr, *Error) {
	if p.at(TokIf) {
		return p.parseIfThenElse()
	}
	return p.parseOr()
}

func (p *parser) parseIfThenElse() (Expr, *Error) {
	start := p.advance().Span // 'if'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokThen, "'then'"); err != nil {
		return nil, err
	}
	thenExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokElse, "'else'"); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &IfThenElse{Span: start.Merge(elseExpr.exprSpan()), Cond: cond, Then: thenExpr, Else: elseExpr}, nil
}

// binaryLevel describes one precedence tier of left-associative binary
// operators, from lowest to highest.
type binaryLevel struct {
	ops  []TokenKind
	next func(*parser) (Expr, *Error)
}

func (p *parser) parseOr() (Expr, *Error)   { return p.parseBinaryLevel([]TokenKind{TokOr}, (*parser).parseAnd) }
func (p *parser) parseAnd() (Expr, *Error)  { return p.parseBinaryLevel([]TokenKind{TokAnd}, (*parser).parseEquality) }
func (p *parser) parseEquality() (Expr, *Error) {
	return p.parseBinaryLevel([]TokenKind{TokEq, TokNe}, (*parser).parseRelational)
}
func (p *parser) parseRelational() (Expr, *Error) {
	return p.parseBinaryLevel([]TokenKind{TokLt, TokLe, TokGt, TokGe}, (*parser).parseAdditive)
}
func (p *parser) parseAdditive() (Expr, *Error) {
	return p.parseBinaryLevel([]TokenKind{TokPlus, TokMinus}, (*parser).parseMultiplicative)
}
func (p *parser) parseMultiplicative() (Expr, *Error) {
	return p.parseBinaryLevel([]TokenKind{TokStar, TokSlash, TokPercent}, (*parser).parseUnary)
}

func (p *parser) parseBinaryLevel(ops []TokenKind, next func(*parser) (Expr, *Error)) (Expr, *Error) {
	left, err := next(p)
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, op := range ops {
			if p.at(op) {
				opTok := p.advance()
				right, rerr := next(p)
				if rerr != nil {
					return nil, rerr
				}
				left = &Binary{Span: left.exprSpan().Merge(right.exprSpan()), Op: opTok.Kind, Left: left, Right: right}
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (Expr, *Error) {
	if p.at(TokNot) || p.at(TokMinus) {
		opTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Span: opTok.Span.Merge(operand.exprSpan()), Op: opTok.Kind, Expr: operand}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, *Error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.at(TokLBracket):
			p.advance()
			idx, ierr := p.parseExpr()
			if ierr != nil {
				return nil, ierr
			}
			end, eerr := p.expect(TokRBracket, "']'")
			if eerr != nil {
				return nil, eerr
			}
			e = &At{Span: e.exprSpan().Merge(end.Span), Collection: e, Index: idx}
		case p.at(TokDot):
			p.advance()
			name, nerr := p.expectIdent()
			if nerr != nil {
				return nil, nerr
			}
			e = &GetName{Span: e.exprSpan().Merge(name.Span), Expr: e, Name: name.Text}
		default:
			return e, nil
		}
	}
}

func (p *parser) parsePrimary() (Expr, *Error) {
	tok := p.cur()
	switch tok.Kind {
	case TokInt:
		p.advance()
		v, _ := strconv.ParseInt(tok.Text, 10, 64)
		return &IntLit{Span: tok.Span, Value: v}, nil
	case TokFloat:
		p.advance()
		v, _ := strconv.ParseFloat(tok.Text, 64)
		return &FloatLit{Span: tok.Span, Value: v}, nil
	case TokString:
		p.advance()
		frags, err := p.splitFragments(tok)
		if err != nil {
			return nil, err
		}
		return &StringLit{Span: tok.Span, Fragments: frags}, nil
	case TokLParen:
		return p.parseParenOrPair()
	case TokLBracket:
		return p.parseArrayLit()
	case TokLBrace:
		return p.parseMapOrObjectLit("")
	case TokObject:
		p.advance()
		if p.at(TokLBrace) {
			return p.parseMapOrObjectLit("")
		}
		return &Ident{Span: tok.Span, Name: tok.Text}, nil
	case TokIdent:
		p.advance()
		switch tok.Text {
		case "true":
			return &BoolLit{Span: tok.Span, Value: true}, nil
		case "false":
			return &BoolLit{Span: tok.Span, Value: false}, nil
		case "null":
			return &NullLit{Span: tok.Span}, nil
		}
		if p.at(TokLParen) {
			return p.parseApply(tok)
		}
		if p.at(TokLBrace) {
			// StructName{...} literal.
			return p.parseMapOrObjectLit(tok.Text)
		}
		return &Ident{Span: tok.Span, Name: tok.Text}, nil
	default:
		return nil, NewSyntaxError(tok.Span, "unexpected token %q in expression", tok.Text)
	}
}

func (p *parser) parseParenOrPair() (Expr, *Error) {
	start := p.advance().Span // '('
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.at(TokComma) {
		p.advance()
		second, serr := p.parseExpr()
		if serr != nil {
			return nil, serr
		}
		end, eerr := p.expect(TokRParen, "')'")
		if eerr != nil {
			return nil, eerr
		}
		return &PairLit{Span: start.Merge(end.Span), Left: first, Right: second}, nil
	}
	end, eerr := p.expect(TokRParen, "')'")
	if eerr != nil {
		return nil, eerr
	}
	_ = end
	return first, nil
}

func (p *parser) parseArrayLit() (Expr, *Error) {
	start := p.advance().Span // '['
	a := &ArrayLit{}
	for !p.at(TokRBracket) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		a.Elements = append(a.Elements, e)
		if p.at(TokComma) {
			p.advance()
			continue
		}
		break
	}
	end, err := p.expect(TokRBracket, "']'")
	if err != nil {
		return nil, err
	}
	a.Span = start.Merge(end.Span)
	return a, nil
}

// parseMapOrObjectLit parses a "{ k: v, ... }" literal, disambiguating a Map
// literal from an Object/Struct literal the way section 4.2 specifies: bare
// identifier keys with no quotes make it an Object (or, if structName != "",
// a Struct literal); any key that's a full expression (including a quoted
// string) makes it a Map.
func (p *parser) parseMapOrObjectLit(structName string) (Expr, *Error) {
	start := p.advance().Span // '{'
	var keys, valueExprs []Expr
	var objKeys []string
	var objValues []Expr
	isObject := structName != ""
	first := true
	for !p.at(TokRBrace) {
		var keyExpr Expr
		var bareName string
		isBare := p.at(TokIdent) && p.peekNextKind() == TokColon
		if isBare {
			nameTok := p.advance()
			bareName = nameTok.Text
		} else {
			ke, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			keyExpr = ke
		}
		if _, err := p.expect(TokColon, "':'"); err != nil {
			return nil, err
		}
		ve, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if first {
			isObject = isObject || isBare
			first = false
		}
		if isObject {
			if !isBare {
				return nil, NewSyntaxError(ve.exprSpan(), "object literal keys must be bare identifiers")
			}
			objKeys = append(objKeys, bareName)
			objValues = append(objValues, ve)
		} else {
			if isBare {
				keyExpr = &Ident{Span: ve.exprSpan(), Name: bareName}
			}
			keys = append(keys, keyExpr)
			valueExprs = append(valueExprs, ve)
		}
		if p.at(TokComma) {
			p.advance()
			continue
		}
		break
	}
	end, err := p.expect(TokRBrace, "'}'")
	if err != nil {
		return nil, err
	}
	span := start.Merge(end.Span)
	if isObject {
		return &ObjectLit{Span: span, StructName: structName, Keys: objKeys, Values: objValues}, nil
	}
	return &MapLit{Span: span, Keys: keys, Values: valueExprs}, nil
}

func (p *parser) parseApply(nameTok Token) (Expr, *Error) {
	p.advance() // '('
	a := &Apply{Name: nameTok.Text}
	for !p.at(TokRParen) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		a.Args = append(a.Args, e)
		if p.at(TokComma) {
			p.advance()
			continue
		}
		break
	}
	end, err := p.expect(TokRParen, "')'")
	if err != nil {
		return nil, err
	}
	a.Span = nameTok.Span.Merge(end.Span)
	return a, nil
}
