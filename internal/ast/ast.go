// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ast defines the closed set of AST node variants produced by
// the parser. Nodes are immutable once built; every node records the
// SourceLocation of the first token of its production.
package ast

import "github.com/ClawedCode/Mycelial-Code/pkg/diag"

// PrimitiveKind enumerates the scalar TypeRef primitives.
type PrimitiveKind int

const (
	U32 PrimitiveKind = iota
	I64
	F64
	StringType
	Binary
	Boolean
)

var primitiveNames = map[PrimitiveKind]string{
	U32: "u32", I64: "i64", F64: "f64",
	StringType: "string", Binary: "binary", Boolean: "boolean",
}

func (p PrimitiveKind) String() string { return primitiveNames[p] }

// TypeRefKind discriminates the three TypeRef shapes.
type TypeRefKind int

const (
	TypePrimitive TypeRefKind = iota
	TypeGeneric               // vec<T> | queue<T> | map<K,V>
	TypeNamed                 // reference to a FrequencyDef
)

// TypeRef is one of: a primitive, a generic container, or a named
// reference to a frequency. Named references are resolved by the
// analyzer, not the parser.
type TypeRef struct {
	Kind      TypeRefKind
	Primitive PrimitiveKind
	Generic   string // "vec" | "queue" | "map"
	Args      []*TypeRef
	Name      string // set when Kind == TypeNamed
	Location  diag.Location
}

// Field is a named, typed member of a FrequencyDef.
type Field struct {
	Name     string
	Type     *TypeRef
	Location diag.Location
}

// FrequencyDef declares a named signal schema.
type FrequencyDef struct {
	Name     string
	Fields   []*Field
	Location diag.Location
}

// StateField is a named, typed, optionally-initialized member of a
// HyphalDef's local state.
type StateField struct {
	Name     string
	Type     *TypeRef
	Init     Expression // nil if no initializer
	Location diag.Location
}

// Trigger is the closed set of rule triggers.
type Trigger interface {
	triggerNode()
	Loc() diag.Location
}

// SignalMatch fires when a signal of Frequency arrives and, if Guard is
// set, the guard expression is truthy with Binding bound to the payload.
type SignalMatch struct {
	Frequency string
	Binding   string // "" if the rule does not bind the payload
	Guard     Expression
	Location  diag.Location
}

// CycleTrigger fires on every positive multiple of Period.
type CycleTrigger struct {
	Period   int
	Location diag.Location
}

// RestTrigger fires once per cycle during the REST phase.
type RestTrigger struct {
	Location diag.Location
}

func (*SignalMatch) triggerNode()          {}
func (*CycleTrigger) triggerNode()         {}
func (*RestTrigger) triggerNode()          {}
func (s *SignalMatch) Loc() diag.Location  { return s.Location }
func (c *CycleTrigger) Loc() diag.Location { return c.Location }
func (r *RestTrigger) Loc() diag.Location  { return r.Location }

// Rule pairs a Trigger with its ordered statement body. Rule order
// within a HyphalDef is semantically significant (first-match-wins).
type Rule struct {
	Trigger  Trigger
	Body     []Statement
	Location diag.Location
}

// HyphalDef declares an agent template: its local state and its rules.
type HyphalDef struct {
	Name     string
	State    []*StateField
	Rules    []*Rule
	Location diag.Location
}

// FieldValue is a name:expr pair used by Emit and ObjectConstruction.
type FieldValue struct {
	Name     string
	Value    Expression
	Location diag.Location
}

// Statement is the closed set of rule-body statement variants.
type Statement interface {
	stmtNode()
	Loc() diag.Location
}

type EmitStmt struct {
	Frequency string
	Fields    []FieldValue
	Location  diag.Location
}

// AssignStmt mutates an existing target (state field or field-access
// path); Target[0] is the root identifier.
type AssignStmt struct {
	Target   []string
	Value    Expression
	Location diag.Location
}

type ElseIf struct {
	Cond Expression
	Body []Statement
}

type ConditionalStmt struct {
	Cond     Expression
	Then     []Statement
	ElseIfs  []ElseIf
	Else     []Statement
	Location diag.Location
}

type ReportStmt struct {
	Metric   string
	Value    Expression
	Location diag.Location
}

type SpawnStmt struct {
	Type     string
	Instance string
	Location diag.Location
}

type DieStmt struct {
	Location diag.Location
}

func (*EmitStmt) stmtNode()                   {}
func (*AssignStmt) stmtNode()                 {}
func (*ConditionalStmt) stmtNode()            {}
func (*ReportStmt) stmtNode()                 {}
func (*SpawnStmt) stmtNode()                  {}
func (*DieStmt) stmtNode()                    {}
func (s *EmitStmt) Loc() diag.Location        { return s.Location }
func (s *AssignStmt) Loc() diag.Location      { return s.Location }
func (s *ConditionalStmt) Loc() diag.Location { return s.Location }
func (s *ReportStmt) Loc() diag.Location      { return s.Location }
func (s *SpawnStmt) Loc() diag.Location       { return s.Location }
func (s *DieStmt) Loc() diag.Location         { return s.Location }

// LitKind distinguishes how a Literal's Value should be interpreted.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitBool
)

// Expression is the closed set of expression-tree node variants.
type Expression interface {
	exprNode()
	Loc() diag.Location
}

type Literal struct {
	Value    any
	Kind     LitKind
	Location diag.Location
}

type IdentExpr struct {
	Name     string
	Location diag.Location
}

type FieldAccess struct {
	Target   Expression
	Name     string
	Location diag.Location
}

type BinaryOp struct {
	Left     Expression
	Op       string
	Right    Expression
	Location diag.Location
}

type UnaryOp struct {
	Op       string
	Operand  Expression
	Location diag.Location
}

type FunctionCall struct {
	Name     string
	Args     []Expression
	Location diag.Location
}

// ObjectConstruction is `Tag { name: expr, ... }` used both for object
// literals in expression position and, syntactically, shares its
// parse path with Emit's field-value block.
type ObjectConstruction struct {
	Tag      string
	Fields   []FieldValue
	Location diag.Location
}

func (*Literal) exprNode()                       {}
func (*IdentExpr) exprNode()                     {}
func (*FieldAccess) exprNode()                   {}
func (*BinaryOp) exprNode()                      {}
func (*UnaryOp) exprNode()                       {}
func (*FunctionCall) exprNode()                  {}
func (*ObjectConstruction) exprNode()            {}
func (e *Literal) Loc() diag.Location            { return e.Location }
func (e *IdentExpr) Loc() diag.Location          { return e.Location }
func (e *FieldAccess) Loc() diag.Location        { return e.Location }
func (e *BinaryOp) Loc() diag.Location           { return e.Location }
func (e *UnaryOp) Loc() diag.Location            { return e.Location }
func (e *FunctionCall) Loc() diag.Location       { return e.Location }
func (e *ObjectConstruction) Loc() diag.Location { return e.Location }

// Spawn is a topology directive instantiating a HyphalDef as Instance.
type Spawn struct {
	Type     string
	Instance string
	Location diag.Location
}

// Socket is a unidirectional, typed, buffered channel between two
// topology endpoints ("*", a fruiting body, or an instance id).
type Socket struct {
	From      string
	To        string
	Frequency string
	Location  diag.Location
}

// TopologyDef is the instantiated network of agents and channels.
type TopologyDef struct {
	FruitingBodies []string
	Spawns         []*Spawn
	Sockets        []*Socket
	Location       diag.Location
}

// Config carries a network's runtime knobs, with defaults
// (100ms, 1000, true) applied by the parser when a key is omitted.
type Config struct {
	CyclePeriodMs int
	MaxBufferSize int
	EnableHealth  bool
	Location      diag.Location
}

// DefaultConfig returns the defaults applied when a network's config
// block omits a key.
func DefaultConfig() *Config {
	return &Config{CyclePeriodMs: 100, MaxBufferSize: 1000, EnableHealth: true}
}

// Network is the AST root: exactly one per parsed input.
type Network struct {
	Name        string
	Frequencies []*FrequencyDef
	Hyphae      []*HyphalDef
	Topology    *TopologyDef // nil if no topology section was present
	Config      *Config
	Location    diag.Location
}
