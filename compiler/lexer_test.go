package compiler

import "testing"

func TestLexerTokenStream(t *testing.T) {
	input := `fn muladd(a, b) { // product
    a * b + 1
}`

	want := []struct {
		typ     TokenType
		literal string
	}{
		{TokenFn, "fn"},
		{TokenIdent, "muladd"},
		{TokenLParen, "("},
		{TokenIdent, "a"},
		{TokenComma, ","},
		{TokenIdent, "b"},
		{TokenRParen, ")"},
		{TokenLBrace, "{"},
		{TokenIdent, "a"},
		{TokenStar, "*"},
		{TokenIdent, "b"},
		{TokenPlus, "+"},
		{TokenInt, "1"},
		{TokenRBrace, "}"},
		{TokenEOF, ""},
	}

	l := NewLexer(input)
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w.typ || tok.Literal != w.literal {
			t.Fatalf("token %d = (%s, %q), want (%s, %q)", i, tok.Type, tok.Literal, w.typ, w.literal)
		}
	}
}

func TestLexerModulePrefixedIdent(t *testing.T) {
	l := NewLexer("lib::double(2)")

	tok := l.NextToken()
	if tok.Type != TokenIdent || tok.Literal != "lib::double" {
		t.Fatalf("token = (%s, %q), want (identifier, lib::double)", tok.Type, tok.Literal)
	}
}

func TestLexerLinesAndIllegal(t *testing.T) {
	l := NewLexer("fn\n?")

	if tok := l.NextToken(); tok.Pos.Line != 1 || tok.Pos.Column != 1 {
		t.Errorf("fn at %d:%d, want 1:1", tok.Pos.Line, tok.Pos.Column)
	}
	tok := l.NextToken()
	if tok.Type != TokenIllegal || tok.Literal != "?" {
		t.Fatalf("token = (%s, %q), want ILLEGAL ?", tok.Type, tok.Literal)
	}
	if tok.Pos.Line != 2 || tok.Pos.Column != 1 {
		t.Errorf("? at %d:%d, want 2:1", tok.Pos.Line, tok.Pos.Column)
	}
}

func TestLexerKeywords(t *testing.T) {
	l := NewLexer("lambda lambdas")

	if tok := l.NextToken(); tok.Type != TokenLambda {
		t.Errorf("lambda lexed as %s", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != TokenIdent || tok.Literal != "lambdas" {
		t.Errorf("lambdas lexed as (%s, %q)", tok.Type, tok.Literal)
	}
}
