// Package lexer drives a frame-stepped raster sweep over a decoded source
// image, recognizing tokens by shape-matching against a keydict.Dictionary
// and recursing into nested scopes delimited by solid-rectangle fills.
package lexer

import (
	"fmt"

	"pixelc/keydict"
)

// Lexeme is one recognized unit of the lexeme stream: either a fixed token
// (Kind is anything but Variable) or a reference to a declared identifier
// (Kind == keydict.Variable, Identifier holds its position in the
// dictionary's identifier list).
type Lexeme struct {
	Kind       keydict.TokenKind
	Identifier int
}

// Token builds a Lexeme for one of the fixed token kinds.
func Token(k keydict.TokenKind) Lexeme {
	return Lexeme{Kind: k}
}

// Identifier builds a Lexeme referencing the index-th declared identifier.
func Identifier(index int) Lexeme {
	return Lexeme{Kind: keydict.Variable, Identifier: index}
}

// IsIdentifier reports whether the lexeme is an identifier reference.
func (l Lexeme) IsIdentifier() bool { return l.Kind == keydict.Variable }

func (l Lexeme) String() string {
	if l.IsIdentifier() {
		return fmt.Sprintf("Identifier(%d)", l.Identifier)
	}
	return l.Kind.String()
}
