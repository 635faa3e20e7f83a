// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpapi

import (
	"sort"

	"github.com/ClawedCode/Mycelial-Code/internal/interpreter"
)

// valueFromJSON converts a decoded JSON value (as produced by
// encoding/json into map[string]any/[]any/float64/string/bool/nil) into
// the interpreter's tagged Value domain, for building an injected
// Signal's payload from an HTTP request body.
func valueFromJSON(v any) interpreter.Value {
	switch t := v.(type) {
	case nil:
		return interpreter.Null
	case bool:
		return interpreter.BoolVal(t)
	case float64:
		if t == float64(int64(t)) {
			return interpreter.IntVal(int64(t))
		}
		return interpreter.FloatVal(t)
	case string:
		return interpreter.StringVal(t)
	case []any:
		items := make([]interpreter.Value, len(t))
		for i, item := range t {
			items[i] = valueFromJSON(item)
		}
		return interpreter.ListVal(items)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make(map[string]interpreter.Value, len(t))
		for _, k := range keys {
			fields[k] = valueFromJSON(t[k])
		}
		return interpreter.RecordVal(keys, fields)
	default:
		return interpreter.Null
	}
}
