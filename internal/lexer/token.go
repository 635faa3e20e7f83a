// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lexer turns Mycelial-Code source text into a flat token
// stream. See the core spec's lexer section for the grammar it scans.
package lexer

import "github.com/ClawedCode/Mycelial-Code/pkg/diag"

// Kind is the closed set of token kinds the lexer produces.
type Kind int

const (
	EOF Kind = iota
	Illegal

	Ident
	Number
	String
	True
	False

	// Keywords
	KwNetwork
	KwFrequencies
	KwFrequency
	KwHyphae
	KwHyphal
	KwState
	KwOn
	KwSignal
	KwEmit
	KwReport
	KwSpawn
	KwDie
	KwSocket
	KwFruitingBody
	KwTopology
	KwConfig
	KwIf
	KwElse
	KwWhere
	KwRest
	KwCycle
	KwLet
	KwU32
	KwI64
	KwF64
	KwString
	KwBinary
	KwBoolean
	KwVec
	KwQueue
	KwMap
	KwAs

	// Operators
	Arrow // ->
	Eq    // ==
	Neq   // !=
	Lte   // <=
	Gte   // >=
	Lt    // <
	Gt    // >
	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	AndAnd
	OrOr
	Bang

	// Delimiters
	LBrace
	RBrace
	LParen
	RParen
	LBracket
	RBracket
	Comma
	Colon
	Semicolon
	Dot
	At
)

var keywords = map[string]Kind{
	"network":       KwNetwork,
	"frequencies":   KwFrequencies,
	"frequency":     KwFrequency,
	"hyphae":        KwHyphae,
	"hyphal":        KwHyphal,
	"state":         KwState,
	"on":            KwOn,
	"signal":        KwSignal,
	"emit":          KwEmit,
	"report":        KwReport,
	"spawn":         KwSpawn,
	"die":           KwDie,
	"socket":        KwSocket,
	"fruiting_body": KwFruitingBody,
	"topology":      KwTopology,
	"config":        KwConfig,
	"if":            KwIf,
	"else":          KwElse,
	"where":         KwWhere,
	"rest":          KwRest,
	"cycle":         KwCycle,
	"let":           KwLet,
	"u32":           KwU32,
	"i64":           KwI64,
	"f64":           KwF64,
	"string":        KwString,
	"binary":        KwBinary,
	"boolean":       KwBoolean,
	"vec":           KwVec,
	"queue":         KwQueue,
	"map":           KwMap,
	"as":            KwAs,
}

var kindNames = map[Kind]string{
	EOF:            "EOF",
	Illegal:        "ILLEGAL",
	Ident:          "IDENT",
	Number:         "NUMBER",
	String:         "STRING",
	True:           "TRUE",
	False:          "FALSE",
	KwNetwork:      "network",
	KwFrequencies:  "frequencies",
	KwFrequency:    "frequency",
	KwHyphae:       "hyphae",
	KwHyphal:       "hyphal",
	KwState:        "state",
	KwOn:           "on",
	KwSignal:       "signal",
	KwEmit:         "emit",
	KwReport:       "report",
	KwSpawn:        "spawn",
	KwDie:          "die",
	KwSocket:       "socket",
	KwFruitingBody: "fruiting_body",
	KwTopology:     "topology",
	KwConfig:       "config",
	KwIf:           "if",
	KwElse:         "else",
	KwWhere:        "where",
	KwRest:         "rest",
	KwCycle:        "cycle",
	KwLet:          "let",
	KwU32:          "u32",
	KwI64:          "i64",
	KwF64:          "f64",
	KwString:       "string",
	KwBinary:       "binary",
	KwBoolean:      "boolean",
	KwVec:          "vec",
	KwQueue:        "queue",
	KwMap:          "map",
	KwAs:           "as",
	Arrow:          "->",
	Eq:             "==",
	Neq:            "!=",
	Lte:            "<=",
	Gte:            ">=",
	Lt:             "<",
	Gt:             ">",
	Assign:         "=",
	Plus:           "+",
	Minus:          "-",
	Star:           "*",
	Slash:          "/",
	Percent:        "%",
	AndAnd:         "&&",
	OrOr:           "||",
	Bang:           "!",
	LBrace:         "{",
	RBrace:         "}",
	LParen:         "(",
	RParen:         ")",
	LBracket:       "[",
	RBracket:       "]",
	Comma:          ",",
	Colon:          ":",
	Semicolon:      ";",
	Dot:            ".",
	At:             "@",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token is an immutable lexeme with its source location.
type Token struct {
	Kind     Kind
	Lexeme   string
	Location diag.Location
}
