// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package parser is a one-pass recursive-descent consumer of the
// lexer's token stream producing an ast.Network. It never backtracks
// beyond single-token lookahead, plus one specific
// two-token lookahead used to disambiguate "Ident {" (object
// construction) from a plain identifier.
package parser

import (
	"strconv"

	"github.com/ClawedCode/Mycelial-Code/internal/ast"
	"github.com/ClawedCode/Mycelial-Code/internal/lexer"
	"github.com/ClawedCode/Mycelial-Code/pkg/diag"
)

type parser struct {
	toks  []lexer.Token
	pos   int
	diags diag.Bag
}

// Parse tokenizes and parses src. A nil *ast.Network is returned only
// when the opening `network` keyword is missing entirely; otherwise a
// partial AST is returned alongside any diagnostics.
func Parse(src, file string) (*ast.Network, []diag.Diagnostic) {
	toks, lexDiags := lexer.Tokenize(src, file)
	p := &parser{toks: toks}
	for _, d := range lexDiags {
		p.diags.Addf(d.Severity, d.Location, "%s", d.Message)
	}
	net := p.parseNetwork()
	return net, p.diags.Diagnostics()
}

// --- token cursor helpers ---

func (p *parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *parser) peekAt(off int) lexer.Token {
	i := p.pos + off
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *parser) advance() lexer.Token {
	tok := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) check(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *parser) match(k lexer.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of kind k, or emits a diagnostic and returns
// the current (unconsumed) token so callers can still inspect it.
func (p *parser) expect(k lexer.Kind) lexer.Token {
	if p.check(k) {
		return p.advance()
	}
	tok := p.cur()
	p.diags.Errorf(tok.Location, "expected %s, found %s %q", k, tok.Kind, tok.Lexeme)
	return tok
}

// sectionKinds are top-level synchronization points.
var sectionKinds = map[lexer.Kind]bool{
	lexer.KwFrequencies: true,
	lexer.KwHyphae:      true,
	lexer.KwTopology:    true,
	lexer.KwConfig:      true,
}

// stmtStartKinds are statement-starting synchronization points.
var stmtStartKinds = map[lexer.Kind]bool{
	lexer.KwEmit:   true,
	lexer.KwIf:     true,
	lexer.KwReport: true,
	lexer.KwSpawn:  true,
	lexer.KwDie:    true,
	lexer.KwLet:    true,
}

// syncTo advances tokens until the next top-level section keyword, a
// statement-starting keyword, an opening `{`, or a `}` closing the
// enclosing block, or EOF.
func (p *parser) syncTo(extra map[lexer.Kind]bool) {
	for {
		k := p.cur().Kind
		if k == lexer.EOF || k == lexer.RBrace || k == lexer.LBrace || sectionKinds[k] || stmtStartKinds[k] || extra[k] {
			return
		}
		p.advance()
	}
}

// --- top level ---

func (p *parser) parseNetwork() *ast.Network {
	if !p.check(lexer.KwNetwork) {
		p.diags.Errorf(p.cur().Location, "expected 'network' keyword at start of program")
		return nil
	}
	start := p.advance().Location
	net := &ast.Network{Location: start, Config: ast.DefaultConfig()}

	nameTok := p.expect(lexer.Ident)
	net.Name = nameTok.Lexeme

	p.expect(lexer.LBrace)

	seen := map[lexer.Kind]bool{}
	for !p.check(lexer.RBrace) && !p.check(lexer.EOF) {
		switch p.cur().Kind {
		case lexer.KwFrequencies:
			p.advance()
			freqs := p.parseFrequencies()
			if seen[lexer.KwFrequencies] {
				p.diags.Warnf(net.Location, "duplicate 'frequencies' section; later occurrence overwrites earlier")
			}
			net.Frequencies = freqs
			seen[lexer.KwFrequencies] = true
		case lexer.KwHyphae:
			p.advance()
			hyphae := p.parseHyphae()
			if seen[lexer.KwHyphae] {
				p.diags.Warnf(net.Location, "duplicate 'hyphae' section; later occurrence overwrites earlier")
			}
			net.Hyphae = hyphae
			seen[lexer.KwHyphae] = true
		case lexer.KwTopology:
			p.advance()
			topo := p.parseTopology()
			if seen[lexer.KwTopology] {
				p.diags.Warnf(net.Location, "duplicate 'topology' section; later occurrence overwrites earlier")
			}
			net.Topology = topo
			seen[lexer.KwTopology] = true
		case lexer.KwConfig:
			p.advance()
			cfg := p.parseConfig()
			if seen[lexer.KwConfig] {
				p.diags.Warnf(net.Location, "duplicate 'config' section; later occurrence overwrites earlier")
			}
			net.Config = cfg
			seen[lexer.KwConfig] = true
		default:
			tok := p.cur()
			p.diags.Errorf(tok.Location, "expected a section keyword (frequencies, hyphae, topology, config), found %s", tok.Kind)
			p.syncTo(nil)
		}
	}
	p.expect(lexer.RBrace)
	return net
}

// --- frequencies ---

func (p *parser) parseFrequencies() []*ast.FrequencyDef {
	p.expect(lexer.LBrace)
	var defs []*ast.FrequencyDef
	for !p.check(lexer.RBrace) && !p.check(lexer.EOF) {
		if !p.check(lexer.Ident) {
			p.diags.Errorf(p.cur().Location, "expected frequency name")
			p.syncTo(nil)
			if p.check(lexer.RBrace) || p.check(lexer.EOF) {
				break
			}
			continue
		}
		defs = append(defs, p.parseFrequencyDef())
	}
	p.expect(lexer.RBrace)
	return defs
}

func (p *parser) parseFrequencyDef() *ast.FrequencyDef {
	nameTok := p.advance()
	def := &ast.FrequencyDef{Name: nameTok.Lexeme, Location: nameTok.Location}
	p.expect(lexer.LBrace)
	seen := map[string]bool{}
	for !p.check(lexer.RBrace) && !p.check(lexer.EOF) {
		fieldTok := p.expect(lexer.Ident)
		p.expect(lexer.Colon)
		typ := p.parseTypeRef()
		if seen[fieldTok.Lexeme] {
			p.diags.Errorf(fieldTok.Location, "duplicate field %q in frequency %q", fieldTok.Lexeme, def.Name)
		}
		seen[fieldTok.Lexeme] = true
		def.Fields = append(def.Fields, &ast.Field{Name: fieldTok.Lexeme, Type: typ, Location: fieldTok.Location})
		if !p.match(lexer.Comma) {
			break
		}
	}
	p.expect(lexer.RBrace)
	return def
}

func (p *parser) parseTypeRef() *ast.TypeRef {
	tok := p.cur()
	switch tok.Kind {
	case lexer.KwU32:
		p.advance()
		return &ast.TypeRef{Kind: ast.TypePrimitive, Primitive: ast.U32, Location: tok.Location}
	case lexer.KwI64:
		p.advance()
		return &ast.TypeRef{Kind: ast.TypePrimitive, Primitive: ast.I64, Location: tok.Location}
	case lexer.KwF64:
		p.advance()
		return &ast.TypeRef{Kind: ast.TypePrimitive, Primitive: ast.F64, Location: tok.Location}
	case lexer.KwString:
		p.advance()
		return &ast.TypeRef{Kind: ast.TypePrimitive, Primitive: ast.StringType, Location: tok.Location}
	case lexer.KwBinary:
		p.advance()
		return &ast.TypeRef{Kind: ast.TypePrimitive, Primitive: ast.Binary, Location: tok.Location}
	case lexer.KwBoolean:
		p.advance()
		return &ast.TypeRef{Kind: ast.TypePrimitive, Primitive: ast.Boolean, Location: tok.Location}
	case lexer.KwVec, lexer.KwQueue, lexer.KwMap:
		name := tok.Lexeme
		p.advance()
		p.expect(lexer.Lt)
		args := []*ast.TypeRef{p.parseTypeRef()}
		if p.match(lexer.Comma) {
			args = append(args, p.parseTypeRef())
		}
		p.expect(lexer.Gt)
		return &ast.TypeRef{Kind: ast.TypeGeneric, Generic: name, Args: args, Location: tok.Location}
	case lexer.Ident:
		p.advance()
		return &ast.TypeRef{Kind: ast.TypeNamed, Name: tok.Lexeme, Location: tok.Location}
	default:
		p.diags.Errorf(tok.Location, "expected a type, found %s", tok.Kind)
		return &ast.TypeRef{Kind: ast.TypeNamed, Name: "<error>", Location: tok.Location}
	}
}

// --- hyphae ---

func (p *parser) parseHyphae() []*ast.HyphalDef {
	p.expect(lexer.LBrace)
	var defs []*ast.HyphalDef
	for !p.check(lexer.RBrace) && !p.check(lexer.EOF) {
		if !p.check(lexer.Ident) {
			p.diags.Errorf(p.cur().Location, "expected hyphal name")
			p.syncTo(nil)
			if p.check(lexer.RBrace) || p.check(lexer.EOF) {
				break
			}
			continue
		}
		defs = append(defs, p.parseHyphalDef())
	}
	p.expect(lexer.RBrace)
	return defs
}

func (p *parser) parseHyphalDef() *ast.HyphalDef {
	nameTok := p.advance()
	def := &ast.HyphalDef{Name: nameTok.Lexeme, Location: nameTok.Location}
	p.expect(lexer.LBrace)
	seenState := map[string]bool{}
	for !p.check(lexer.RBrace) && !p.check(lexer.EOF) {
		switch p.cur().Kind {
		case lexer.KwState:
			p.advance()
			p.expect(lexer.LBrace)
			for !p.check(lexer.RBrace) && !p.check(lexer.EOF) {
				sf := p.parseStateField()
				if seenState[sf.Name] {
					p.diags.Errorf(sf.Location, "duplicate state field %q in hyphal %q", sf.Name, def.Name)
				}
				seenState[sf.Name] = true
				def.State = append(def.State, sf)
				if !p.match(lexer.Comma) {
					break
				}
			}
			p.expect(lexer.RBrace)
		case lexer.KwOn:
			def.Rules = append(def.Rules, p.parseRule())
		default:
			tok := p.cur()
			p.diags.Errorf(tok.Location, "expected 'state' or 'on' inside hyphal %q, found %s", def.Name, tok.Kind)
			p.syncTo(map[lexer.Kind]bool{lexer.KwState: true, lexer.KwOn: true})
		}
	}
	p.expect(lexer.RBrace)
	return def
}

func (p *parser) parseStateField() *ast.StateField {
	nameTok := p.expect(lexer.Ident)
	p.expect(lexer.Colon)
	typ := p.parseTypeRef()
	sf := &ast.StateField{Name: nameTok.Lexeme, Type: typ, Location: nameTok.Location}
	if p.match(lexer.Assign) {
		sf.Init = p.parseExpression()
	}
	return sf
}

func (p *parser) parseRule() *ast.Rule {
	onTok := p.expect(lexer.KwOn)
	trigger := p.parseTrigger()
	body := p.parseBlock()
	return &ast.Rule{Trigger: trigger, Body: body, Location: onTok.Location}
}

func (p *parser) parseTrigger() ast.Trigger {
	switch p.cur().Kind {
	case lexer.KwSignal:
		loc := p.advance().Location
		p.expect(lexer.LParen)
		// The entire parenthesized block is consumed before checking
		// for a 'where' guard, to disambiguate it from a rule's trigger.
		freqTok := p.expect(lexer.Ident)
		sm := &ast.SignalMatch{Frequency: freqTok.Lexeme, Location: loc}
		if p.match(lexer.Comma) {
			bindTok := p.expect(lexer.Ident)
			sm.Binding = bindTok.Lexeme
		}
		p.expect(lexer.RParen)
		if p.match(lexer.KwWhere) {
			sm.Guard = p.parseExpression()
		}
		return sm
	case lexer.KwCycle:
		loc := p.advance().Location
		numTok := p.expect(lexer.Number)
		period, _ := strconv.Atoi(numTok.Lexeme)
		return &ast.CycleTrigger{Period: period, Location: loc}
	case lexer.KwRest:
		loc := p.advance().Location
		return &ast.RestTrigger{Location: loc}
	default:
		tok := p.cur()
		p.diags.Errorf(tok.Location, "expected 'signal', 'cycle', or 'rest' after 'on', found %s", tok.Kind)
		return &ast.RestTrigger{Location: tok.Location}
	}
}

// --- statements ---

func (p *parser) parseBlock() []ast.Statement {
	p.expect(lexer.LBrace)
	var stmts []ast.Statement
	for !p.check(lexer.RBrace) && !p.check(lexer.EOF) {
		stmts = append(stmts, p.parseStatement())
	}
	p.expect(lexer.RBrace)
	return stmts
}

func (p *parser) parseStatement() ast.Statement {
	switch p.cur().Kind {
	case lexer.KwEmit:
		return p.parseEmit()
	case lexer.KwIf:
		return p.parseConditional()
	case lexer.KwReport:
		return p.parseReport()
	case lexer.KwSpawn:
		return p.parseSpawnStmt()
	case lexer.KwDie:
		loc := p.advance().Location
		return &ast.DieStmt{Location: loc}
	case lexer.KwLet:
		return p.parseLet()
	case lexer.Ident:
		return p.parseAssignment()
	default:
		tok := p.cur()
		p.diags.Errorf(tok.Location, "expected a statement, found %s", tok.Kind)
		p.syncTo(nil)
		return &ast.DieStmt{Location: tok.Location} // placeholder so the body stays well-formed
	}
}

func (p *parser) parseFieldValueList() []ast.FieldValue {
	p.expect(lexer.LBrace)
	var fields []ast.FieldValue
	for !p.check(lexer.RBrace) && !p.check(lexer.EOF) {
		nameTok := p.expect(lexer.Ident)
		p.expect(lexer.Colon)
		val := p.parseExpression()
		fields = append(fields, ast.FieldValue{Name: nameTok.Lexeme, Value: val, Location: nameTok.Location})
		if !p.match(lexer.Comma) {
			break
		}
		// trailing comma permitted: loop condition re-checks RBrace
	}
	p.expect(lexer.RBrace)
	return fields
}

func (p *parser) parseEmit() ast.Statement {
	loc := p.expect(lexer.KwEmit).Location
	freqTok := p.expect(lexer.Ident)
	fields := p.parseFieldValueList()
	return &ast.EmitStmt{Frequency: freqTok.Lexeme, Fields: fields, Location: loc}
}

func (p *parser) parseReport() ast.Statement {
	loc := p.expect(lexer.KwReport).Location
	metricTok := p.expect(lexer.Ident)
	p.expect(lexer.Colon)
	val := p.parseExpression()
	return &ast.ReportStmt{Metric: metricTok.Lexeme, Value: val, Location: loc}
}

func (p *parser) parseSpawnStmt() ast.Statement {
	loc := p.expect(lexer.KwSpawn).Location
	typeTok := p.expect(lexer.Ident)
	p.expect(lexer.KwAs)
	instTok := p.expect(lexer.Ident)
	return &ast.SpawnStmt{Type: typeTok.Lexeme, Instance: instTok.Lexeme, Location: loc}
}

// parseLet handles `let IDENT = expr`: a new binding is modeled as an
// AssignStmt to a fresh single-segment target (the interpreter creates
// the state slot on first assignment if it doesn't already exist).
func (p *parser) parseLet() ast.Statement {
	loc := p.expect(lexer.KwLet).Location
	nameTok := p.expect(lexer.Ident)
	p.expect(lexer.Assign)
	val := p.parseExpression()
	return &ast.AssignStmt{Target: []string{nameTok.Lexeme}, Value: val, Location: loc}
}

// parseAssignment handles `ident(.name)* = expr` (no leading 'let').
func (p *parser) parseAssignment() ast.Statement {
	nameTok := p.advance()
	loc := nameTok.Location
	target := []string{nameTok.Lexeme}
	for p.match(lexer.Dot) {
		seg := p.expect(lexer.Ident)
		target = append(target, seg.Lexeme)
	}
	p.expect(lexer.Assign)
	val := p.parseExpression()
	return &ast.AssignStmt{Target: target, Value: val, Location: loc}
}

func (p *parser) parseConditional() ast.Statement {
	loc := p.expect(lexer.KwIf).Location
	cond := p.parseExpression()
	then := p.parseBlock()
	stmt := &ast.ConditionalStmt{Cond: cond, Then: then, Location: loc}
	for p.check(lexer.KwElse) && p.peekAt(1).Kind == lexer.KwIf {
		p.advance() // else
		p.advance() // if
		elifCond := p.parseExpression()
		elifBody := p.parseBlock()
		stmt.ElseIfs = append(stmt.ElseIfs, ast.ElseIf{Cond: elifCond, Body: elifBody})
	}
	if p.match(lexer.KwElse) {
		stmt.Else = p.parseBlock()
	}
	return stmt
}

// --- expressions: logical-or -> logical-and -> equality -> comparison
// -> additive -> multiplicative -> unary -> primary ---

func (p *parser) parseExpression() ast.Expression { return p.parseOr() }

func (p *parser) parseOr() ast.Expression {
	left := p.parseAnd()
	for p.check(lexer.OrOr) {
		opTok := p.advance()
		right := p.parseAnd()
		left = &ast.BinaryOp{Left: left, Op: "||", Right: right, Location: opTok.Location}
	}
	return left
}

func (p *parser) parseAnd() ast.Expression {
	left := p.parseEquality()
	for p.check(lexer.AndAnd) {
		opTok := p.advance()
		right := p.parseEquality()
		left = &ast.BinaryOp{Left: left, Op: "&&", Right: right, Location: opTok.Location}
	}
	return left
}

func (p *parser) parseEquality() ast.Expression {
	left := p.parseComparison()
	for p.check(lexer.Eq) || p.check(lexer.Neq) {
		opTok := p.advance()
		right := p.parseComparison()
		left = &ast.BinaryOp{Left: left, Op: opTok.Lexeme, Right: right, Location: opTok.Location}
	}
	return left
}

func (p *parser) parseComparison() ast.Expression {
	left := p.parseAdditive()
	for p.check(lexer.Lt) || p.check(lexer.Gt) || p.check(lexer.Lte) || p.check(lexer.Gte) {
		opTok := p.advance()
		right := p.parseAdditive()
		left = &ast.BinaryOp{Left: left, Op: opTok.Lexeme, Right: right, Location: opTok.Location}
	}
	return left
}

func (p *parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for p.check(lexer.Plus) || p.check(lexer.Minus) {
		opTok := p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryOp{Left: left, Op: opTok.Lexeme, Right: right, Location: opTok.Location}
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expression {
	left := p.parseUnary()
	for p.check(lexer.Star) || p.check(lexer.Slash) || p.check(lexer.Percent) {
		opTok := p.advance()
		right := p.parseUnary()
		left = &ast.BinaryOp{Left: left, Op: opTok.Lexeme, Right: right, Location: opTok.Location}
	}
	return left
}

func (p *parser) parseUnary() ast.Expression {
	if p.check(lexer.Bang) || p.check(lexer.Minus) {
		opTok := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryOp{Op: opTok.Lexeme, Operand: operand, Location: opTok.Location}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() ast.Expression {
	tok := p.cur()
	switch tok.Kind {
	case lexer.Number:
		p.advance()
		if containsDot(tok.Lexeme) {
			v, _ := strconv.ParseFloat(tok.Lexeme, 64)
			return &ast.Literal{Value: v, Kind: ast.LitFloat, Location: tok.Location}
		}
		v, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
		return &ast.Literal{Value: v, Kind: ast.LitInt, Location: tok.Location}
	case lexer.String:
		p.advance()
		return &ast.Literal{Value: lexer.Unescape(tok.Lexeme), Kind: ast.LitString, Location: tok.Location}
	case lexer.True:
		p.advance()
		return &ast.Literal{Value: true, Kind: ast.LitBool, Location: tok.Location}
	case lexer.False:
		p.advance()
		return &ast.Literal{Value: false, Kind: ast.LitBool, Location: tok.Location}
	case lexer.LParen:
		p.advance()
		inner := p.parseExpression()
		p.expect(lexer.RParen)
		return inner
	case lexer.Ident:
		return p.parseIdentOrCallOrObject()
	default:
		p.diags.Errorf(tok.Location, "expected an expression, found %s", tok.Kind)
		p.advance()
		return &ast.Literal{Value: nil, Kind: ast.LitInt, Location: tok.Location}
	}
}

// parseIdentOrCallOrObject resolves the two-token lookahead ambiguity:
// `Ident {` is object construction, `Ident (` is a function call,
// otherwise it's an identifier with an optional field-access chain.
func (p *parser) parseIdentOrCallOrObject() ast.Expression {
	nameTok := p.advance()
	if p.check(lexer.LBrace) {
		fields := p.parseFieldValueList()
		return &ast.ObjectConstruction{Tag: nameTok.Lexeme, Fields: fields, Location: nameTok.Location}
	}
	if p.check(lexer.LParen) {
		p.advance()
		var args []ast.Expression
		for !p.check(lexer.RParen) && !p.check(lexer.EOF) {
			args = append(args, p.parseExpression())
			if !p.match(lexer.Comma) {
				break
			}
		}
		p.expect(lexer.RParen)
		return &ast.FunctionCall{Name: nameTok.Lexeme, Args: args, Location: nameTok.Location}
	}
	var expr ast.Expression = &ast.IdentExpr{Name: nameTok.Lexeme, Location: nameTok.Location}
	for p.match(lexer.Dot) {
		fieldTok := p.expect(lexer.Ident)
		expr = &ast.FieldAccess{Target: expr, Name: fieldTok.Lexeme, Location: fieldTok.Location}
	}
	return expr
}

func containsDot(s string) bool {
	for _, r := range s {
		if r == '.' {
			return true
		}
	}
	return false
}

// --- topology ---

func (p *parser) parseTopology() *ast.TopologyDef {
	loc := p.expect(lexer.LBrace).Location
	topo := &ast.TopologyDef{Location: loc}
	for !p.check(lexer.RBrace) && !p.check(lexer.EOF) {
		switch p.cur().Kind {
		case lexer.KwFruitingBody:
			p.advance()
			nameTok := p.expect(lexer.Ident)
			topo.FruitingBodies = append(topo.FruitingBodies, nameTok.Lexeme)
		case lexer.KwSpawn:
			spawnLoc := p.advance().Location
			typeTok := p.expect(lexer.Ident)
			p.expect(lexer.KwAs)
			instTok := p.expect(lexer.Ident)
			topo.Spawns = append(topo.Spawns, &ast.Spawn{Type: typeTok.Lexeme, Instance: instTok.Lexeme, Location: spawnLoc})
		case lexer.KwSocket:
			sockLoc := p.advance().Location
			from := p.parseEndpoint()
			p.expect(lexer.Arrow)
			to := p.parseEndpoint()
			p.expect(lexer.LParen)
			freqTok := p.expect(lexer.Ident)
			p.expect(lexer.RParen)
			topo.Sockets = append(topo.Sockets, &ast.Socket{From: from, To: to, Frequency: freqTok.Lexeme, Location: sockLoc})
		default:
			tok := p.cur()
			p.diags.Errorf(tok.Location, "expected 'fruiting_body', 'spawn', or 'socket' in topology, found %s", tok.Kind)
			p.syncTo(map[lexer.Kind]bool{lexer.KwFruitingBody: true, lexer.KwSpawn: true, lexer.KwSocket: true})
		}
	}
	p.expect(lexer.RBrace)
	return topo
}

func (p *parser) parseEndpoint() string {
	if p.check(lexer.Star) {
		p.advance()
		return "*"
	}
	tok := p.expect(lexer.Ident)
	return tok.Lexeme
}

// --- config ---

func (p *parser) parseConfig() *ast.Config {
	loc := p.expect(lexer.LBrace).Location
	cfg := ast.DefaultConfig()
	cfg.Location = loc
	for !p.check(lexer.RBrace) && !p.check(lexer.EOF) {
		keyTok := p.expect(lexer.Ident)
		p.expect(lexer.Colon)
		switch keyTok.Lexeme {
		case "cycle_period_ms":
			numTok := p.expect(lexer.Number)
			cfg.CyclePeriodMs, _ = strconv.Atoi(numTok.Lexeme)
		case "max_buffer_size":
			numTok := p.expect(lexer.Number)
			cfg.MaxBufferSize, _ = strconv.Atoi(numTok.Lexeme)
		case "enable_health_monitoring":
			if p.check(lexer.True) {
				p.advance()
				cfg.EnableHealth = true
			} else if p.check(lexer.False) {
				p.advance()
				cfg.EnableHealth = false
			} else {
				p.diags.Errorf(p.cur().Location, "expected true or false for enable_health_monitoring")
			}
		default:
			p.diags.Warnf(keyTok.Location, "unknown config key %q", keyTok.Lexeme)
			p.parseExpression() // consume and discard the value
		}
		if !p.match(lexer.Comma) {
			break
		}
	}
	p.expect(lexer.RBrace)
	return cfg
}
