// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package interpreter

import (
	"strings"
	"time"

	"github.com/ClawedCode/Mycelial-Code/internal/ast"
	"github.com/ClawedCode/Mycelial-Code/pkg/diag"
)

// evalContext carries everything name resolution and the builtin
// registry need while evaluating one expression tree.
// Binding/Payload are the empty string / Null when the enclosing rule's
// trigger did not bind a signal payload.
type evalContext struct {
	Binding string
	Payload Value
	State   map[string]Value
	Diags   *diag.Bag
	Now     func() time.Time
}

func newEvalContext(state map[string]Value, diags *diag.Bag) *evalContext {
	return &evalContext{State: state, Payload: Null, Diags: diags, Now: time.Now}
}

func (c *evalContext) withBinding(name string, payload Value) *evalContext {
	cp := *c
	cp.Binding = name
	cp.Payload = payload
	return &cp
}

// Eval evaluates an expression tree against ctx. It never panics: an
// unresolved identifier, a bad field access, a division by zero, or an
// unknown function all resolve to Null, and a diagnostic is recorded
// when ctx.Diags is non-nil.
func Eval(expr ast.Expression, ctx *evalContext) Value {
	switch e := expr.(type) {
	case *ast.Literal:
		return evalLiteral(e)
	case *ast.IdentExpr:
		return evalIdent(e, ctx)
	case *ast.FieldAccess:
		return evalFieldAccess(e, ctx)
	case *ast.BinaryOp:
		return evalBinary(e, ctx)
	case *ast.UnaryOp:
		return evalUnary(e, ctx)
	case *ast.FunctionCall:
		return evalCall(e, ctx)
	case *ast.ObjectConstruction:
		return evalObjectConstruction(e, ctx)
	default:
		ctx.warnf(expr.Loc(), "unsupported expression node %T", expr)
		return Null
	}
}

func (c *evalContext) warnf(loc diag.Location, format string, args ...any) {
	if c.Diags != nil {
		c.Diags.Warnf(loc, format, args...)
	}
}

func evalLiteral(l *ast.Literal) Value {
	switch l.Kind {
	case ast.LitInt:
		v, _ := l.Value.(int64)
		return IntVal(v)
	case ast.LitFloat:
		v, _ := l.Value.(float64)
		return FloatVal(v)
	case ast.LitString:
		v, _ := l.Value.(string)
		return StringVal(v)
	case ast.LitBool:
		v, _ := l.Value.(bool)
		return BoolVal(v)
	default:
		return Null
	}
}

// evalIdent resolves a bare identifier: a payload field takes
// precedence, then the binding name itself (so that `g.name` works via
// a following FieldAccess), then the agent's state map, and finally the
// bottom value.
func evalIdent(e *ast.IdentExpr, ctx *evalContext) Value {
	if ctx.Payload.Kind == KindRecord {
		if v, ok := ctx.Payload.Record[e.Name]; ok {
			return v
		}
	}
	if ctx.Binding != "" && e.Name == ctx.Binding {
		return ctx.Payload
	}
	if v, ok := ctx.State[e.Name]; ok {
		return v
	}
	ctx.warnf(e.Location, "unresolved identifier %q", e.Name)
	return Null
}

func evalFieldAccess(e *ast.FieldAccess, ctx *evalContext) Value {
	target := Eval(e.Target, ctx)
	if target.Kind != KindRecord {
		ctx.warnf(e.Location, "field access %q on non-record value", e.Name)
		return Null
	}
	v, ok := target.Record[e.Name]
	if !ok {
		ctx.warnf(e.Location, "record has no field %q", e.Name)
		return Null
	}
	return v
}

func evalUnary(e *ast.UnaryOp, ctx *evalContext) Value {
	v := Eval(e.Operand, ctx)
	switch e.Op {
	case "-":
		switch v.Kind {
		case KindInt:
			return IntVal(-v.Int)
		case KindFloat:
			return FloatVal(-v.Float)
		default:
			ctx.warnf(e.Location, "unary '-' on non-numeric value")
			return Null
		}
	case "!":
		return BoolVal(!v.Truthy())
	default:
		ctx.warnf(e.Location, "unknown unary operator %q", e.Op)
		return Null
	}
}

func evalBinary(e *ast.BinaryOp, ctx *evalContext) Value {
	// && and || short-circuit; every other operator evaluates both sides.
	switch e.Op {
	case "&&":
		l := Eval(e.Left, ctx)
		if !l.Truthy() {
			return BoolVal(false)
		}
		return BoolVal(Eval(e.Right, ctx).Truthy())
	case "||":
		l := Eval(e.Left, ctx)
		if l.Truthy() {
			return BoolVal(true)
		}
		return BoolVal(Eval(e.Right, ctx).Truthy())
	}

	l, r := Eval(e.Left, ctx), Eval(e.Right, ctx)
	switch e.Op {
	case "==":
		return BoolVal(Equal(l, r))
	case "!=":
		return BoolVal(!Equal(l, r))
	case "<", "<=", ">", ">=":
		return evalComparison(e, l, r, ctx)
	case "+":
		return evalAdd(e, l, r, ctx)
	case "-", "*", "/", "%":
		return evalArith(e, l, r, ctx)
	default:
		ctx.warnf(e.Location, "unknown binary operator %q", e.Op)
		return Null
	}
}

func evalComparison(e *ast.BinaryOp, l, r Value, ctx *evalContext) Value {
	lf, lok := l.asFloat()
	rf, rok := r.asFloat()
	if !lok || !rok {
		ctx.warnf(e.Location, "relational operator %q requires numeric operands", e.Op)
		return Null
	}
	switch e.Op {
	case "<":
		return BoolVal(lf < rf)
	case "<=":
		return BoolVal(lf <= rf)
	case ">":
		return BoolVal(lf > rf)
	case ">=":
		return BoolVal(lf >= rf)
	default:
		return Null
	}
}

// evalAdd implements "+": numeric widening addition, or string
// concatenation when either side is a string.
func evalAdd(e *ast.BinaryOp, l, r Value, ctx *evalContext) Value {
	if l.Kind == KindString || r.Kind == KindString {
		return StringVal(Stringify(l) + Stringify(r))
	}
	return evalArith(e, l, r, ctx)
}

// evalArith implements -, *, /, % with widen-to-float64 coercion:
// the result stays an Int only when both operands are Int.
func evalArith(e *ast.BinaryOp, l, r Value, ctx *evalContext) Value {
	lf, lok := l.asFloat()
	rf, rok := r.asFloat()
	if !lok || !rok {
		ctx.warnf(e.Location, "arithmetic operator %q requires numeric operands", e.Op)
		return Null
	}
	bothInt := l.Kind == KindInt && r.Kind == KindInt

	switch e.Op {
	case "+":
		if bothInt {
			return IntVal(l.Int + r.Int)
		}
		return FloatVal(lf + rf)
	case "-":
		if bothInt {
			return IntVal(l.Int - r.Int)
		}
		return FloatVal(lf - rf)
	case "*":
		if bothInt {
			return IntVal(l.Int * r.Int)
		}
		return FloatVal(lf * rf)
	case "/":
		if rf == 0 {
			ctx.warnf(e.Location, "division by zero")
			return Null
		}
		if bothInt {
			return IntVal(l.Int / r.Int)
		}
		return FloatVal(lf / rf)
	case "%":
		if bothInt {
			if r.Int == 0 {
				ctx.warnf(e.Location, "modulo by zero")
				return Null
			}
			return IntVal(l.Int % r.Int)
		}
		ctx.warnf(e.Location, "'%%' requires integer operands")
		return Null
	default:
		return Null
	}
}

func evalObjectConstruction(e *ast.ObjectConstruction, ctx *evalContext) Value {
	order := make([]string, 0, len(e.Fields))
	values := make(map[string]Value, len(e.Fields))
	for _, fv := range e.Fields {
		order = append(order, fv.Name)
		values[fv.Name] = Eval(fv.Value, ctx)
	}
	return RecordVal(order, values)
}

func evalCall(e *ast.FunctionCall, ctx *evalContext) Value {
	args := make([]Value, len(e.Args))
	for i, a := range e.Args {
		args[i] = Eval(a, ctx)
	}
	fn, ok := builtins[e.Name]
	if !ok {
		ctx.warnf(e.Location, "call to unknown function %q", e.Name)
		return Null
	}
	return fn(ctx, e.Location, args)
}

type builtinFunc func(ctx *evalContext, loc diag.Location, args []Value) Value

// builtins is the closed registry of built-in functions available to
// expressions.
var builtins = map[string]builtinFunc{
	"format": biFormat,
	"len":    biLen,
	"sum":    biSum,
	"mean":   biMean,
	"now":    biNow,
}

// biFormat substitutes "{}" placeholders, left to right, with the
// stringified form of each trailing argument.
func biFormat(ctx *evalContext, loc diag.Location, args []Value) Value {
	if len(args) == 0 || args[0].Kind != KindString {
		ctx.warnf(loc, "format() requires a string template as its first argument")
		return Null
	}
	var b strings.Builder
	tpl := args[0].Str
	ai := 1
	for {
		idx := strings.Index(tpl, "{}")
		if idx < 0 {
			b.WriteString(tpl)
			break
		}
		b.WriteString(tpl[:idx])
		if ai < len(args) {
			b.WriteString(Stringify(args[ai]))
			ai++
		}
		tpl = tpl[idx+2:]
	}
	return StringVal(b.String())
}

func biLen(ctx *evalContext, loc diag.Location, args []Value) Value {
	if len(args) != 1 {
		ctx.warnf(loc, "len() takes exactly one argument")
		return Null
	}
	n, ok := Len(args[0])
	if !ok {
		ctx.warnf(loc, "len() does not support %s", args[0].Kind)
		return Null
	}
	return IntVal(int64(n))
}

func biSum(ctx *evalContext, loc diag.Location, args []Value) Value {
	if len(args) != 1 || (args[0].Kind != KindList && args[0].Kind != KindQueue) {
		ctx.warnf(loc, "sum() requires a single vec or queue argument")
		return Null
	}
	var total float64
	allInt := true
	for _, v := range args[0].List {
		f, ok := v.asFloat()
		if !ok {
			ctx.warnf(loc, "sum() requires numeric elements")
			return Null
		}
		total += f
		if v.Kind != KindInt {
			allInt = false
		}
	}
	if allInt {
		return IntVal(int64(total))
	}
	return FloatVal(total)
}

func biMean(ctx *evalContext, loc diag.Location, args []Value) Value {
	if len(args) != 1 || (args[0].Kind != KindList && args[0].Kind != KindQueue) {
		ctx.warnf(loc, "mean() requires a single vec or queue argument")
		return Null
	}
	items := args[0].List
	if len(items) == 0 {
		return FloatVal(0)
	}
	var total float64
	for _, v := range items {
		f, ok := v.asFloat()
		if !ok {
			ctx.warnf(loc, "mean() requires numeric elements")
			return Null
		}
		total += f
	}
	return FloatVal(total / float64(len(items)))
}

func biNow(ctx *evalContext, loc diag.Location, args []Value) Value {
	if len(args) != 0 {
		ctx.warnf(loc, "now() takes no arguments")
	}
	return IntVal(ctx.Now().UnixMilli())
}
