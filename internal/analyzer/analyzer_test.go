// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package analyzer

import (
	"testing"

	"github.com/ClawedCode/Mycelial-Code/internal/parser"
	"github.com/stretchr/testify/require"
)

const helloSource = `
network Hello {
	frequencies {
		greeting { name: string }
		response { message: string }
	}
	hyphae {
		greeter {
			on signal(greeting, g) {
				emit response { message: format("Hello, {}!", g.name) }
			}
		}
	}
	topology {
		fruiting_body input
		fruiting_body output
		spawn greeter as G1
		socket input -> G1 (greeting)
		socket G1 -> output (response)
	}
}
`

func TestAnalyzeHelloProgramHasNoErrors(t *testing.T) {
	net, parseDiags := parser.Parse(helloSource, "hello.myc")
	require.Empty(t, parseDiags)
	require.NotNil(t, net)

	res := Analyze(net)
	require.False(t, res.HasErrors(), "diagnostics: %v", res.Diagnostics)
	require.Contains(t, res.Frequencies, "greeting")
	require.Contains(t, res.Frequencies, "response")
	require.Contains(t, res.Hyphae, "greeter")
	require.Contains(t, res.Instances, "G1")
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	net, _ := parser.Parse(helloSource, "hello.myc")
	r1 := Analyze(net)
	r2 := Analyze(net)
	require.Equal(t, r1.Diagnostics, r2.Diagnostics)
}

func TestAnalyzeDetectsDuplicateFrequency(t *testing.T) {
	src := `
network N {
	frequencies {
		dup { a: u32 }
		dup { b: u32 }
	}
}`
	net, _ := parser.Parse(src, "")
	res := Analyze(net)
	require.True(t, res.HasErrors())
}

func TestAnalyzeDetectsUnresolvedSocketFrequency(t *testing.T) {
	src := `
network N {
	hyphae { worker { } }
	topology {
		fruiting_body in
		fruiting_body out
		spawn worker as W
		socket in -> W (ghost)
	}
}`
	net, _ := parser.Parse(src, "")
	res := Analyze(net)
	require.True(t, res.HasErrors())
}

func TestAnalyzeDetectsUnresolvedSpawnType(t *testing.T) {
	src := `
network N {
	topology {
		spawn ghost as W
	}
}`
	net, _ := parser.Parse(src, "")
	res := Analyze(net)
	require.True(t, res.HasErrors())
}

func TestAnalyzeDetectsFromWildcardSocket(t *testing.T) {
	src := `
network N {
	frequencies { ping { } }
	hyphae { worker { } }
	topology {
		fruiting_body out
		spawn worker as W
		socket * -> out (ping)
	}
}`
	net, _ := parser.Parse(src, "")
	res := Analyze(net)
	require.True(t, res.HasErrors())
}

func TestAnalyzeDetectsUndefinedNamedType(t *testing.T) {
	src := `
network N {
	hyphae {
		worker {
			state { x: Ghost }
		}
	}
}`
	net, _ := parser.Parse(src, "")
	res := Analyze(net)
	require.True(t, res.HasErrors())
}
