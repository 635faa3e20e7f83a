// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package interpreter

import "fmt"

// Kind tags the dynamic value domain the evaluator operates over: a
// compact union rather than a deep class hierarchy.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindBytes
	KindList
	KindQueue
	KindMap
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindBytes:
		return "binary"
	case KindList:
		return "vec"
	case KindQueue:
		return "queue"
	case KindMap:
		return "map"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// MapEntry is one key/value pair of a Map value; Map values preserve
// insertion order rather than hashing, per the Design Notes' rule that
// every container governing observable iteration must be ordered.
type MapEntry struct {
	Key Value
	Val Value
}

// Value is the tagged runtime value every expression evaluates to.
// Null is the bottom value for unresolved identifiers, unknown
// functions, and arithmetic faults (divide-by-zero); none of those
// conditions panic.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
	Bool  bool
	Bytes []byte
	List  []Value // backs both vec (KindList) and queue (KindQueue)
	Map   []MapEntry

	// Record fields, in declaration order.
	Fields []string
	Record map[string]Value
}

// Null is the canonical bottom value.
var Null = Value{Kind: KindNull}

func IntVal(i int64) Value              { return Value{Kind: KindInt, Int: i} }
func FloatVal(f float64) Value          { return Value{Kind: KindFloat, Float: f} }
func StringVal(s string) Value          { return Value{Kind: KindString, Str: s} }
func BoolVal(b bool) Value              { return Value{Kind: KindBool, Bool: b} }
func BytesVal(b []byte) Value           { return Value{Kind: KindBytes, Bytes: b} }
func ListVal(items []Value) Value       { return Value{Kind: KindList, List: items} }
func QueueVal(items []Value) Value      { return Value{Kind: KindQueue, List: items} }
func MapValOf(entries []MapEntry) Value { return Value{Kind: KindMap, Map: entries} }

// RecordVal builds a record value with fields in the given order.
func RecordVal(order []string, values map[string]Value) Value {
	fields := append([]string(nil), order...)
	rec := make(map[string]Value, len(values))
	for k, v := range values {
		rec[k] = v
	}
	return Value{Kind: KindRecord, Fields: fields, Record: rec}
}

func (v Value) IsNull() bool { return v.Kind == KindNull }

// Truthy implements the boolean-coercion rule for guards and if
// conditions: booleans use their own value, numerics are nonzero,
// strings are nonempty, null is false, and every other kind is true.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNull:
		return false
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindString:
		return v.Str != ""
	default:
		return true
	}
}

func (v Value) asFloat() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

func isNumeric(v Value) bool { return v.Kind == KindInt || v.Kind == KindFloat }

// Stringify renders a Value for use by the format() builtin and string
// concatenation with "+"; it is not a debug Go-syntax dump.
func Stringify(v Value) string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindString:
		return v.Str
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindBytes:
		return fmt.Sprintf("%x", v.Bytes)
	case KindList, KindQueue:
		out := "["
		for i, item := range v.List {
			if i > 0 {
				out += ", "
			}
			out += Stringify(item)
		}
		return out + "]"
	case KindMap:
		out := "{"
		for i, e := range v.Map {
			if i > 0 {
				out += ", "
			}
			out += Stringify(e.Key) + ": " + Stringify(e.Val)
		}
		return out + "}"
	case KindRecord:
		out := "{"
		for i, f := range v.Fields {
			if i > 0 {
				out += ", "
			}
			out += f + ": " + Stringify(v.Record[f])
		}
		return out + "}"
	default:
		return ""
	}
}

// Native unwraps v into the closest plain Go value (int64, float64,
// string, bool, []byte, []any, map[string]any), recursively. It exists
// for handing agent state to consumers outside this package that want
// ordinary Go values rather than the tagged Value union, such as the
// expr-lang environment built by the health monitor.
func (v Value) Native() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindString:
		return v.Str
	case KindBool:
		return v.Bool
	case KindBytes:
		return v.Bytes
	case KindList, KindQueue:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = item.Native()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.Map))
		for _, e := range v.Map {
			out[Stringify(e.Key)] = e.Val.Native()
		}
		return out
	case KindRecord:
		out := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			out[f] = v.Record[f].Native()
		}
		return out
	default:
		return nil
	}
}

// Equal implements "==" / "!=" strict equality: numeric operands widen
// to float64 (consistent with the arithmetic widening rule), all other
// kinds must match exactly and compare structurally.
func Equal(a, b Value) bool {
	if isNumeric(a) && isNumeric(b) {
		af, _ := a.asFloat()
		bf, _ := b.asFloat()
		return af == bf
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindString:
		return a.Str == b.Str
	case KindBool:
		return a.Bool == b.Bool
	case KindBytes:
		return string(a.Bytes) == string(b.Bytes)
	case KindList, KindQueue:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !Equal(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.Map) != len(b.Map) {
			return false
		}
		for i := range a.Map {
			if !Equal(a.Map[i].Key, b.Map[i].Key) || !Equal(a.Map[i].Val, b.Map[i].Val) {
				return false
			}
		}
		return true
	case KindRecord:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for _, f := range a.Fields {
			av, aok := a.Record[f]
			bv, bok := b.Record[f]
			if aok != bok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func Len(v Value) (int, bool) {
	switch v.Kind {
	case KindList, KindQueue:
		return len(v.List), true
	case KindMap:
		return len(v.Map), true
	case KindString:
		return len([]rune(v.Str)), true
	default:
		return 0, false
	}
}
