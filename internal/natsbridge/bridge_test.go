// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package natsbridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitSubject(t *testing.T) {
	fb, freq, ok := splitSubject("mycelial.inject", "mycelial.inject.input.greeting")
	require.True(t, ok)
	require.Equal(t, "input", fb)
	require.Equal(t, "greeting", freq)
}

func TestSplitSubjectRejectsWrongPrefix(t *testing.T) {
	_, _, ok := splitSubject("mycelial.inject", "other.prefix.input.greeting")
	require.False(t, ok)
}

func TestSplitSubjectRejectsMissingFrequency(t *testing.T) {
	_, _, ok := splitSubject("mycelial.inject", "mycelial.inject.input")
	require.False(t, ok)
}

func TestConnectRequiresAddress(t *testing.T) {
	_, err := Connect("")
	require.Error(t, err)
}

func TestValueFromJSONBuildsRecord(t *testing.T) {
	v := valueFromJSON(map[string]any{"name": "world", "count": float64(3)})
	require.Equal(t, "world", v.Record["name"].Str)
	require.Equal(t, int64(3), v.Record["count"].Int)
}
