/*
Copyright (C) 2024  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package cse

// Lexer and Parser are the "external collaborators" spec.md §1 carves out
// of the core: their only contract with the rest of the package is the
// raw AST shape of §3. They are hand-written recursive-descent/state-
// machine code, the same way the teacher builds its own s-expression
// reader in scm/parser.go (tokenize/readFrom) rather than reaching for a
// parser-combinator library (see DESIGN.md for why go-packrat isn't
// wired here).

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TokenKind classifies a lexical token, following
// original_source/Lexer/lexer.py's TokenType enum.
type TokenKind int

const (
	TokKeyword TokenKind = iota
	TokIdent
	TokInt
	TokString
	TokOperator
	TokPunct
	TokEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokKeyword:
		return "keyword"
	case TokIdent:
		return "identifier"
	case TokInt:
		return "integer"
	case TokString:
		return "string"
	case TokOperator:
		return "operator"
	case TokPunct:
		return "punctuation"
	case TokEOF:
		return "end of input"
	default:
		return "token"
	}
}

// Token is one lexeme along with its source position, used for
// diagnostics in the parser.
type Token struct {
	Kind  TokenKind
	Value string
	Line  int
	Col   int
}

var keywords = map[string]bool{
	"let": true, "in": true, "fn": true, "where": true, "aug": true,
	"or": true, "not": true, "gr": true, "ge": true, "ls": true, "le": true,
	"eq": true, "ne": true, "true": true, "false": true, "nil": true,
	"dummy": true, "within": true, "and": true, "rec": true,
}

// multiChar operators are tried longest-match-first ahead of the single
// character set, mirroring the lexer.py fix that orders '->' / '>=' /
// '<=' / '**' before the single-char alternatives.
var multiCharOps = []string{"->", ">=", "<=", "**"}

const singleCharOps = "+-*<>&.@/:=~|$#!%^_[]{}\"?"

// Tokenize turns RPAL source text into a token stream terminated by a
// TokEOF sentinel, tracking line/column the way the teacher's own
// scm/parser.go tokenizer does, and skipping `//` line comments and
// whitespace as original_source/Lexer/lexer.py does.
func Tokenize(src string) ([]Token, *Error) {
	var tokens []Token
	runes := []rune(src)
	n := len(runes)
	line, col := 1, 0
	i := 0

	advance := func() rune {
		ch := runes[i]
		i++
		if ch == '\n' {
			line++
			col = 0
		} else {
			col++
		}
		return ch
	}

	for i < n {
		ch := runes[i]

		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			advance()

		case ch == '/' && i+1 < n && runes[i+1] == '/':
			for i < n && runes[i] != '\n' {
				advance()
			}

		case isDigit(ch):
			startLine, startCol := line, col+1
			start := i
			for i < n && isDigit(runes[i]) {
				advance()
			}
			tokens = append(tokens, Token{TokInt, string(runes[start:i]), startLine, startCol})

		case ch == '\'':
			startLine, startCol := line, col+1
			advance() // opening quote
			var sb strings.Builder
			closed := false
			for i < n {
				c := runes[i]
				if c == '\\' && i+1 < n && runes[i+1] == '\'' {
					sb.WriteRune('\'')
					advance()
					advance()
					continue
				}
				if c == '\'' {
					advance()
					closed = true
					break
				}
				sb.WriteRune(c)
				advance()
			}
			if !closed {
				return nil, newErr(ErrLex, "%d:%d: unterminated string literal", startLine, startCol)
			}
			tokens = append(tokens, Token{TokString, norm.NFC.String(sb.String()), startLine, startCol})

		case isIdentStart(ch):
			startLine, startCol := line, col+1
			start := i
			for i < n && isIdentPart(runes[i]) {
				advance()
			}
			word := string(runes[start:i])
			if keywords[word] {
				tokens = append(tokens, Token{TokKeyword, word, startLine, startCol})
			} else {
				tokens = append(tokens, Token{TokIdent, word, startLine, startCol})
			}

		case ch == '(' || ch == ')' || ch == ',':
			startLine, startCol := line, col+1
			advance()
			tokens = append(tokens, Token{TokPunct, string(ch), startLine, startCol})

		default:
			startLine, startCol := line, col+1
			if op, ok := matchMultiChar(runes, i); ok {
				for range op {
					advance()
				}
				tokens = append(tokens, Token{TokOperator, op, startLine, startCol})
				continue
			}
			if strings.ContainsRune(singleCharOps, ch) {
				advance()
				tokens = append(tokens, Token{TokOperator, string(ch), startLine, startCol})
				continue
			}
			return nil, newErr(ErrLex, "%d:%d: unknown token %q", startLine, startCol, string(ch))
		}
	}

	tokens = append(tokens, Token{TokEOF, "$", line, col + 1})
	return tokens, nil
}

func matchMultiChar(runes []rune, at int) (string, bool) {
	for _, op := range multiCharOps {
		rl := []rune(op)
		if at+len(rl) > len(runes) {
			continue
		}
		if string(runes[at:at+len(rl)]) == op {
			return op, true
		}
	}
	return "", false
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch rune) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '_'
}
