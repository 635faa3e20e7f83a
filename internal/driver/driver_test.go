// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package driver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ClawedCode/Mycelial-Code/internal/analyzer"
	"github.com/ClawedCode/Mycelial-Code/internal/healthmonitor"
	"github.com/ClawedCode/Mycelial-Code/internal/interpreter"
	"github.com/ClawedCode/Mycelial-Code/internal/parser"
)

const src = `
network Counter {
	hyphae {
		spore {
			state { count: u32 = 0 }
			on cycle 1 {
				count = count + 1
			}
		}
	}
	topology {
		spawn spore as S1
	}
}`

func buildInterpreter(t *testing.T) *interpreter.Interpreter {
	t.Helper()
	net, diags := parser.Parse(src, "driver_test.myc")
	require.Empty(t, diags)
	res := analyzer.Analyze(net)
	require.False(t, res.HasErrors(), "diagnostics: %v", res.Diagnostics)
	return interpreter.New(net, res)
}

func TestStartRejectsNonPositiveInterval(t *testing.T) {
	it := buildInterpreter(t)
	d, err := New(it, nil)
	require.NoError(t, err)
	require.ErrorIs(t, d.Start(0), ErrNonPositiveInterval)
}

func TestTickAdvancesCycleAndReportsFindings(t *testing.T) {
	it := buildInterpreter(t)
	mon, err := healthmonitor.Load("")
	require.NoError(t, err)

	d, err := New(it, mon)
	require.NoError(t, err)

	var got []healthmonitor.Finding
	d.OnFindings = func(f []healthmonitor.Finding) { got = f }

	require.Equal(t, int64(0), it.Cycle())
	d.tick()
	require.Equal(t, int64(1), it.Cycle())
	require.Empty(t, got)
}

func TestStartAndShutdownRunsTicks(t *testing.T) {
	it := buildInterpreter(t)
	d, err := New(it, nil)
	require.NoError(t, err)

	require.NoError(t, d.Start(10*time.Millisecond))
	require.Eventually(t, func() bool {
		return it.Cycle() > 0
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, d.Shutdown())
}
