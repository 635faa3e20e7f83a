// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package healthmonitor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ClawedCode/Mycelial-Code/internal/interpreter"
)

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadEmptyPathYieldsNoRules(t *testing.T) {
	m, err := Load("")
	require.NoError(t, err)
	require.Empty(t, m.Sweep(interpreter.Snapshot{}))
}

func TestSweepMatchesOnFailures(t *testing.T) {
	path := writeRules(t, `[
		{
			"name": "too-many-failures",
			"severity": "critical",
			"rule": "agent.failures > 2",
			"hint": "agent {{.agent.id}} has failed {{.agent.failures}} times"
		}
	]`)
	m, err := Load(path)
	require.NoError(t, err)

	snap := interpreter.Snapshot{
		Agents: []interpreter.AgentSnapshot{
			{ID: "spore-1", Vitality: "degraded", Failures: 3},
			{ID: "spore-2", Vitality: "active", Failures: 0},
		},
	}

	findings := m.Sweep(snap)
	require.Len(t, findings, 1)
	require.Equal(t, "spore-1", findings[0].AgentID)
	require.Equal(t, "too-many-failures", findings[0].Rule)
	require.Contains(t, findings[0].Hint, "failed 3 times")
}

func TestSweepHonorsRequirements(t *testing.T) {
	path := writeRules(t, `[
		{
			"name": "idle-too-long",
			"requirements": ["agent.vitality == \"idle\""],
			"rule": "agent.age > 10"
		}
	]`)
	m, err := Load(path)
	require.NoError(t, err)

	snap := interpreter.Snapshot{
		Agents: []interpreter.AgentSnapshot{
			{ID: "a", Vitality: "active", Age: 100},
			{ID: "b", Vitality: "idle", Age: 5},
			{ID: "c", Vitality: "idle", Age: 11},
		},
	}

	findings := m.Sweep(snap)
	require.Len(t, findings, 1)
	require.Equal(t, "c", findings[0].AgentID)
}
