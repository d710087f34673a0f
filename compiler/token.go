package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Tokens
// ---------------------------------------------------------------------------

// TokenType identifies a lexical token class.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	TokenIdent // muladd, x
	TokenInt   // 42

	TokenFn     // fn
	TokenLambda // lambda

	TokenPlus   // +
	TokenStar   // *
	TokenLParen // (
	TokenRParen // )
	TokenLBrace // {
	TokenRBrace // }
	TokenComma  // ,
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenIdent:
		return "identifier"
	case TokenInt:
		return "integer"
	case TokenFn:
		return "'fn'"
	case TokenLambda:
		return "'lambda'"
	case TokenPlus:
		return "'+'"
	case TokenStar:
		return "'*'"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenLBrace:
		return "'{'"
	case TokenRBrace:
		return "'}'"
	case TokenComma:
		return "','"
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Position is a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Token is a lexical token with its source position.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

var keywords = map[string]TokenType{
	"fn":     TokenFn,
	"lambda": TokenLambda,
}
