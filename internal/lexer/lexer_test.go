// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenizeKeywordsAndOperators(t *testing.T) {
	src := `network Foo { frequencies { } } -> == != <= >= && || !`
	toks, diags := Tokenize(src, "")
	require.Empty(t, diags)

	kinds := make([]Kind, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []Kind{
		KwNetwork, Ident, LBrace, KwFrequencies, LBrace, RBrace, RBrace,
		Arrow, Eq, Neq, Lte, Gte, AndAnd, OrOr, Bang, EOF,
	}, kinds)
}

func TestTokenizeLexemesReconstructSource(t *testing.T) {
	src := "let x = 3.14 + count # a comment\nemit greeting { name: \"hi\\\"there\" }"
	toks, diags := Tokenize(src, "prog.myc")
	require.Empty(t, diags)

	for _, tok := range toks {
		if tok.Kind == EOF {
			continue
		}
		start := tok.Location
		// Re-locate the lexeme in src using line/column bookkeeping by
		// scanning again is overkill here; instead assert the lexeme is
		// a verbatim substring of src.
		require.Contains(t, src, tok.Lexeme, "token %v lexeme must reconstruct source", tok)
		_ = start
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, diags := Tokenize(`"hello\nworld"`, "")
	require.Empty(t, diags)
	require.Equal(t, String, toks[0].Kind)
	require.Equal(t, "hello\nworld", Unescape(toks[0].Lexeme))
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, diags := Tokenize(`"oops`, "")
	require.Len(t, diags, 1)
}

func TestTokenizeNumberKinds(t *testing.T) {
	toks, diags := Tokenize("42 3.14", "")
	require.Empty(t, diags)
	require.Equal(t, Number, toks[0].Kind)
	require.Equal(t, "42", toks[0].Lexeme)
	require.Equal(t, Number, toks[1].Kind)
	require.Equal(t, "3.14", toks[1].Lexeme)
}

func TestTokenizeIllegalCharacterRecovers(t *testing.T) {
	toks, diags := Tokenize("a $ b", "")
	require.Len(t, diags, 1)
	require.Equal(t, []Kind{Ident, Illegal, Ident, EOF}, []Kind{toks[0].Kind, toks[1].Kind, toks[2].Kind, toks[3].Kind})
}

func TestTokenizeLineColumnTracking(t *testing.T) {
	toks, _ := Tokenize("a\nb", "")
	require.Equal(t, 1, toks[0].Location.Line)
	require.Equal(t, 2, toks[1].Location.Line)
	require.Equal(t, 1, toks[1].Location.Column)
}

func TestTokenizeBlockComment(t *testing.T) {
	toks, diags := Tokenize("a /* skip\nme */ b", "")
	require.Empty(t, diags)
	require.Equal(t, []Kind{Ident, Ident, EOF}, []Kind{toks[0].Kind, toks[1].Kind, toks[2].Kind})
}
