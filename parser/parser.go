// Package parser consumes a lexeme stream into a Program tree: nested
// Statements of Expressions, with identifiers resolved against a running
// symbol table and scopes recursively parsed down to their ScopeEnd.
package parser

import (
	"strconv"

	"pixelc/keydict"
	"pixelc/lexer"
)

// Parser walks a fixed lexeme slice front to back. Lexemes are consumed in
// the order the lexer produced them; calling this "reverse" anywhere would
// only describe one possible internal representation, not an observable
// behavior, so the cursor here is a plain forward index.
type Parser struct {
	tokens []lexer.Lexeme
	pos    int

	symbols map[int]SymbolKind
	line    int
}

// Parse consumes the full lexeme stream into a Program. A malformed
// sequence (unterminated quote, dangling Access, truncated scope) yields a
// *SyntaxError.
func Parse(tokens []lexer.Lexeme) (*Program, error) {
	p := &Parser{tokens: tokens, symbols: make(map[int]SymbolKind), line: 1}
	prog := &Program{}

	for {
		stmt, _, eof, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if eof {
			break
		}
		if len(stmt.Expressions) == 0 {
			continue
		}
		prog.Statements = append(prog.Statements, stmt)
		p.line++
	}
	return prog, nil
}

// next pops the next lexeme, reporting false once the stream is exhausted.
func (p *Parser) next() (lexer.Lexeme, bool) {
	if p.pos >= len(p.tokens) {
		return lexer.Lexeme{}, false
	}
	lex := p.tokens[p.pos]
	p.pos++
	return lex, true
}

// unread pushes the last-read lexeme back, for the one case where a
// dispatch needs to hand an already-popped lexeme to a different parser
// (parseInt's peek-without-consuming of its terminating lexeme).
func (p *Parser) unread() {
	p.pos--
}

// parseInt starts from 0 (any leading Zero has already been consumed by the
// caller) and folds Increment/Decrement lexemes into +1/-1 each, stopping at
// the first lexeme that is neither. That stopping
// lexeme is left unconsumed for the caller, except LineBreak, which is
// swallowed here; swallowed reports whether that happened, since in that
// case the enclosing statement is already done and must not try to read a
// terminator of its own.
func (p *Parser) parseInt() (value int, swallowedLineBreak bool) {
	for {
		lex, ok := p.next()
		if !ok {
			return value, false
		}
		switch lex.Kind {
		case keydict.Increment:
			value++
		case keydict.Decrement:
			value--
		case keydict.LineBreak:
			return value, true
		default:
			p.unread()
			return value, false
		}
	}
}

// parseQuote parses the contents of a Quote lexeme already consumed by the
// caller: an integer fold rendered in decimal, followed by the closing
// Quote lexeme.
func (p *Parser) parseQuote() (Expression, error) {
	value, swallowed := p.parseInt()
	if swallowed {
		return nil, syntaxErrorf(p.line, "string literal terminated by LineBreak before its closing quote")
	}
	closing, ok := p.next()
	if !ok {
		return nil, syntaxErrorf(p.line, "string literal truncated: expected closing quote")
	}
	if closing.Kind != keydict.Quote {
		return nil, syntaxErrorf(p.line, "string literal: expected closing quote, found %s", closing.Kind)
	}
	return StringLit(strconv.Itoa(value)), nil
}

// addVar consumes the identifier lexeme following an already-popped Access
// lexeme, declares it Undefined in the symbol table, and returns the
// reference expression.
func (p *Parser) addVar() (Expression, error) {
	lex, ok := p.next()
	if !ok {
		return nil, syntaxErrorf(p.line, "access with no following identifier")
	}
	if !lex.IsIdentifier() {
		return nil, syntaxErrorf(p.line, "access must be followed by an identifier, found %s", lex.Kind)
	}
	p.symbols[lex.Identifier] = Undefined
	return VariableRef{ID: lex.Identifier, Kind: Undefined}, nil
}

// replaceVar looks up an already-declared identifier's current kind.
func (p *Parser) replaceVar(id int) SymbolKind {
	return p.symbols[id]
}

// parseScope consumes the discriminant lexeme following an already-popped
// ScopeStart, then the signature statement, then the body recursively down
// to its ScopeEnd.
func (p *Parser) parseScope() (Scope, error) {
	discriminant, ok := p.next()
	if !ok {
		return Scope{}, syntaxErrorf(p.line, "scope truncated: expected a discriminant lexeme")
	}

	var kind ScopeType
	switch discriminant.Kind {
	case keydict.Access:
		kind = Function
	case keydict.Repeat:
		kind = Loop
	default:
		return Scope{}, syntaxErrorf(p.line, "scope discriminant must be Access or Repeat, found %s", discriminant.Kind)
	}

	signature, _, eof, err := p.parseStatement()
	if err != nil {
		return Scope{}, err
	}
	if eof {
		return Scope{}, syntaxErrorf(p.line, "scope truncated: no signature line")
	}
	p.line++

	body, err := p.parseBody()
	if err != nil {
		return Scope{}, err
	}

	return Scope{Kind: kind, Signature: &signature, Body: *body}, nil
}

// parseBody parses statements until one terminates with ScopeEnd, which
// also closes the body (its statement is still included unless it is empty,
// as it is when the ScopeEnd directly follows a LineBreak). Running out of
// lexemes before that happens is a truncated scope.
func (p *Parser) parseBody() (*Program, error) {
	prog := &Program{}
	for {
		stmt, terminator, eof, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if eof {
			return nil, syntaxErrorf(p.line, "scope truncated: missing ScopeEnd")
		}
		if terminator == keydict.ScopeEnd && len(stmt.Expressions) == 0 {
			return prog, nil
		}
		prog.Statements = append(prog.Statements, stmt)
		p.line++
		if terminator == keydict.ScopeEnd {
			return prog, nil
		}
	}
}

// parseStatement parses one statement: a run of expressions ending in
// LineBreak or ScopeEnd. A nested scope's closing ScopeEnd also ends the
// statement that holds it, which is then reported as LineBreak-terminated so
// an enclosing body keeps going. eof is true only when the stream held no more
// lexemes at all when this call began, which the top level uses to stop
// without treating it as an error.
func (p *Parser) parseStatement() (Statement, keydict.TokenKind, bool, error) {
	var stmt Statement

	for {
		lex, ok := p.next()
		if !ok {
			if len(stmt.Expressions) == 0 {
				return stmt, 0, true, nil
			}
			return Statement{}, 0, false, syntaxErrorf(p.line, "statement truncated: expected LineBreak or ScopeEnd")
		}

		switch lex.Kind {
		case keydict.Zero:
			value, swallowed := p.parseInt()
			stmt.Expressions = append(stmt.Expressions, IntLit(value))
			if swallowed {
				return stmt, keydict.LineBreak, false, nil
			}

		case keydict.Increment, keydict.Decrement, keydict.Repeat:
			return Statement{}, 0, false, syntaxErrorf(p.line, "unexpected %s outside an integer fold or scope discriminant", lex.Kind)

		case keydict.Access:
			expr, err := p.addVar()
			if err != nil {
				return Statement{}, 0, false, err
			}
			stmt.Expressions = append(stmt.Expressions, expr)

		case keydict.Variable:
			stmt.Expressions = append(stmt.Expressions, VariableRef{ID: lex.Identifier, Kind: p.replaceVar(lex.Identifier)})

		case keydict.Quote:
			expr, err := p.parseQuote()
			if err != nil {
				return Statement{}, 0, false, err
			}
			stmt.Expressions = append(stmt.Expressions, expr)

		case keydict.ScopeStart:
			scope, err := p.parseScope()
			if err != nil {
				return Statement{}, 0, false, err
			}
			stmt.Expressions = append(stmt.Expressions, ScopeExpr{Scope: scope})
			return stmt, keydict.LineBreak, false, nil

		case keydict.ScopeEnd:
			return stmt, keydict.ScopeEnd, false, nil

		case keydict.LineBreak:
			return stmt, keydict.LineBreak, false, nil
		}
	}
}
