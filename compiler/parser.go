// Package compiler implements the slang front end and the lowering
// compiler: lexing and parsing source text into arena builder calls
// (resolving every identifier to a (level, offset) address), validating
// call arities before execution, and lowering arena nodes into directly
// callable closures.
package compiler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ekinimo/slang/ast"
)

// ---------------------------------------------------------------------------
// Parser: recursive descent over slang source
// ---------------------------------------------------------------------------

// Parser parses slang source into arena nodes. Children are appended
// before parents throughout, as the arena's builder contract requires; the
// root of any parsed expression is always the most recently appended node.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	arena     *ast.Arena
	errors    []string

	// scopes is the active lexical scope stack; the slice index of a
	// scope is the absolute level recorded on ParamRef nodes (0 = the
	// enclosing top-level function's frame).
	scopes []scope

	// prefix qualifies function names when importing a file as a module;
	// localDefs holds the names defined in this compilation unit, which
	// are the only ones the prefix applies to.
	prefix    string
	localDefs map[string]bool
}

type scope struct {
	offsets map[string]int
}

// ParseProgram parses a whole program (a sequence of function definitions)
// into the arena and returns the definition node indices.
func ParseProgram(input string, arena *ast.Arena) ([]ast.AstIdx, error) {
	return parse(input, arena, "")
}

// ParseProgramPrefixed parses like ParseProgram but qualifies every
// function defined in this unit — and every reference to one — with
// "prefix::", so that imported files get their own namespace.
func ParseProgramPrefixed(input string, arena *ast.Arena, prefix string) ([]ast.AstIdx, error) {
	return parse(input, arena, prefix)
}

func parse(input string, arena *ast.Arena, prefix string) ([]ast.AstIdx, error) {
	p := &Parser{
		lexer:  NewLexer(input),
		arena:  arena,
		prefix: prefix,
	}
	if prefix != "" {
		p.localDefs = scanDefinedNames(input)
	}
	p.nextToken()
	p.nextToken()

	var defs []ast.AstIdx
	for !p.curTokenIs(TokenEOF) {
		if !p.curTokenIs(TokenFn) {
			p.errorf("expected 'fn' at top level, got %s", p.curToken.Type)
			p.nextToken()
			continue
		}
		defs = append(defs, p.parseFunctionDef())
	}

	if len(p.errors) > 0 {
		errs := make([]error, len(p.errors))
		for i, msg := range p.errors {
			errs[i] = errors.New(msg)
		}
		return defs, errors.Join(errs...)
	}
	return defs, nil
}

// scanDefinedNames runs a token-level pre-pass collecting the function
// names defined in the input, so references to them can be qualified even
// when they appear before the definition.
func scanDefinedNames(input string) map[string]bool {
	names := make(map[string]bool)
	l := NewLexer(input)
	prev := l.NextToken()
	for prev.Type != TokenEOF {
		tok := l.NextToken()
		if prev.Type == TokenFn && tok.Type == TokenIdent {
			names[tok.Literal] = true
		}
		prev = tok
	}
	return names
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// expect advances if the current token matches, otherwise records an error.
func (p *Parser) expect(t TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf("expected %s, got %s", t, p.curToken.Type)
	return false
}

// errorf records a parse error.
func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf("line %d: %s", p.curToken.Pos.Line, fmt.Sprintf(format, args...))
	p.errors = append(p.errors, msg)
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []string {
	return p.errors
}

// qualify applies the module prefix to locally defined function names.
func (p *Parser) qualify(name string) string {
	if p.prefix != "" && p.localDefs[name] {
		return p.prefix + "::" + name
	}
	return name
}

// ---------------------------------------------------------------------------
// Definitions
// ---------------------------------------------------------------------------

// parseFunctionDef parses `fn name(a, b) { expr }`.
func (p *Parser) parseFunctionDef() ast.AstIdx {
	p.expect(TokenFn)

	name := p.curToken.Literal
	if !p.expect(TokenIdent) {
		name = "<error>"
	}

	p.expect(TokenLParen)
	params := p.parseParamList(TokenRParen, TokenComma)
	p.expect(TokenRParen)

	p.pushScope(params)
	p.expect(TokenLBrace)
	body := p.parseExpr()
	p.expect(TokenRBrace)
	p.popScope()

	def := p.arena.AddFunctionDef(p.qualify(name), len(params), body)
	p.registerParamNames(def, params)
	return def
}

// parseParamList parses identifiers until the terminator, separated by sep
// (TokenEOF means no separator). Duplicate names are errors.
func (p *Parser) parseParamList(terminator, sep TokenType) []string {
	var params []string
	seen := make(map[string]int)
	for p.curTokenIs(TokenIdent) {
		name := p.curToken.Literal
		if prev, dup := seen[name]; dup {
			p.errorf("duplicate parameter name %q at positions %d and %d", name, prev+1, len(params)+1)
		}
		seen[name] = len(params)
		params = append(params, name)
		p.nextToken()

		if sep != TokenEOF {
			if !p.curTokenIs(sep) {
				break
			}
			p.nextToken()
			if !p.curTokenIs(TokenIdent) {
				p.errorf("expected parameter name after %s, got %s", sep, p.curToken.Type)
				break
			}
		}
	}
	if !p.curTokenIs(terminator) && len(params) == 0 && !p.curTokenIs(TokenIdent) {
		p.errorf("expected parameter name or %s, got %s", terminator, p.curToken.Type)
	}
	return params
}

func (p *Parser) registerParamNames(owner ast.AstIdx, params []string) {
	names := make([]ast.NameIdx, len(params))
	for i, name := range params {
		names[i] = p.arena.Intern(name)
	}
	p.arena.RegisterParamNames(owner, names)
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// parseExpr parses an additive expression.
func (p *Parser) parseExpr() ast.AstIdx {
	left := p.parseMul()
	for p.curTokenIs(TokenPlus) {
		p.nextToken()
		p.parseMul()
		left = p.arena.AddAdd()
	}
	return left
}

// parseMul parses a multiplicative expression.
func (p *Parser) parseMul() ast.AstIdx {
	left := p.parsePostfix()
	for p.curTokenIs(TokenStar) {
		p.nextToken()
		p.parsePostfix()
		left = p.arena.AddMultiply()
	}
	return left
}

// parsePostfix parses a primary expression followed by any number of call
// argument lists, so curried calls like curry(1, 2)(3, 4, 5)(6) chain.
func (p *Parser) parsePostfix() ast.AstIdx {
	expr := p.parsePrimary()
	for p.curTokenIs(TokenLParen) {
		args := p.parseArgs()
		lastArg := expr
		if len(args) > 0 {
			lastArg = args[len(args)-1]
		}
		expr = p.arena.AddCall(expr, lastArg, len(args))
	}
	return expr
}

// parseArgs parses `( expr, expr, ... )` and returns the argument roots.
func (p *Parser) parseArgs() []ast.AstIdx {
	p.expect(TokenLParen)
	var args []ast.AstIdx
	if !p.curTokenIs(TokenRParen) {
		args = append(args, p.parseExpr())
		for p.curTokenIs(TokenComma) {
			p.nextToken()
			args = append(args, p.parseExpr())
		}
	}
	p.expect(TokenRParen)
	return args
}

// parsePrimary parses an integer literal, an identifier, a lambda, or a
// parenthesized expression. On a parse error it appends a placeholder node
// so the arena stays structurally consistent while errors accumulate.
func (p *Parser) parsePrimary() ast.AstIdx {
	switch p.curToken.Type {
	case TokenInt:
		value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
		if err != nil {
			p.errorf("invalid integer literal %q", p.curToken.Literal)
		}
		p.nextToken()
		return p.arena.AddInteger(value)

	case TokenIdent:
		name := p.curToken.Literal
		p.nextToken()
		if level, offset, ok := p.resolve(name); ok {
			return p.arena.AddParamRef(p.arena.Intern(name), level, ast.ParamIdx(offset))
		}
		if prim, ok := ast.PrimitiveByName(name); ok {
			return p.arena.AddPrimitive(prim)
		}
		// Not a parameter in scope: a (possibly forward) reference to a
		// user function. The checker verifies it is actually defined.
		return p.arena.AddUserFunc(p.qualify(name))

	case TokenLambda:
		return p.parseLambda()

	case TokenLParen:
		p.nextToken()
		expr := p.parseExpr()
		p.expect(TokenRParen)
		return expr
	}

	p.errorf("expected expression, got %s", p.curToken.Type)
	p.nextToken()
	return p.arena.AddInteger(0)
}

// parseLambda parses `lambda a b c { expr }`.
func (p *Parser) parseLambda() ast.AstIdx {
	p.expect(TokenLambda)
	params := p.parseParamList(TokenLBrace, TokenEOF)

	p.pushScope(params)
	p.expect(TokenLBrace)
	body := p.parseExpr()
	p.expect(TokenRBrace)
	p.popScope()

	idx := p.arena.AddLambda(len(params), body)
	p.registerParamNames(idx, params)
	return idx
}

// ---------------------------------------------------------------------------
// Scope handling
// ---------------------------------------------------------------------------

func (p *Parser) pushScope(params []string) {
	sc := scope{offsets: make(map[string]int, len(params))}
	for i, name := range params {
		sc.offsets[name] = i
	}
	p.scopes = append(p.scopes, sc)
}

func (p *Parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

// resolve finds the innermost binding of name and returns its lexical
// address: the binding frame's absolute level and the slot within it.
func (p *Parser) resolve(name string) (level, offset int, ok bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if off, found := p.scopes[i].offsets[name]; found {
			return i, off, true
		}
	}
	return 0, 0, false
}
