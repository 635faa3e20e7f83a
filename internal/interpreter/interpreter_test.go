// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package interpreter

import (
	"testing"

	"github.com/ClawedCode/Mycelial-Code/internal/analyzer"
	"github.com/ClawedCode/Mycelial-Code/internal/parser"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, src string) *Interpreter {
	t.Helper()
	net, parseDiags := parser.Parse(src, "test.myc")
	require.Empty(t, parseDiags)
	require.NotNil(t, net)

	res := analyzer.Analyze(net)
	require.False(t, res.HasErrors(), "diagnostics: %v", res.Diagnostics)
	return New(net, res)
}

// Scenario 1: Hello.
func TestHelloScenario(t *testing.T) {
	it := build(t, `
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
}`)

	it.Inject("input", Signal{Frequency: "greeting", Payload: RecordVal([]string{"name"}, map[string]Value{"name": StringVal("world")})})

	it.Run(2)

	out := it.FruitingBody("output")
	require.Len(t, out.Inbox, 1)
	require.Equal(t, "Hello, world!", out.Inbox[0].Payload.Record["message"].Str)
}

// Scenario 2: Pipeline.
func TestPipelineScenario(t *testing.T) {
	it := build(t, `
network Pipeline {
	frequencies {
		data { v: i64 }
	}
	hyphae {
		relay {
			on signal(data, d) {
				emit data { v: d.v + 1 }
			}
		}
	}
	topology {
		fruiting_body head
		fruiting_body tail
		spawn relay as S1
		spawn relay as S2
		spawn relay as S3
		socket head -> S1 (data)
		socket S1 -> S2 (data)
		socket S2 -> S3 (data)
		socket S3 -> tail (data)
	}
}`)

	it.Inject("head", Signal{Frequency: "data", Payload: RecordVal([]string{"v"}, map[string]Value{"v": IntVal(0)})})
	it.Run(4)

	out := it.FruitingBody("tail")
	require.Len(t, out.Inbox, 1)
	require.Equal(t, int64(3), out.Inbox[0].Payload.Record["v"].Int)
}

// Scenario 3: Guard selection / first-match-wins ordering.
func TestGuardSelectionScenario(t *testing.T) {
	it := build(t, `
network Guards {
	frequencies {
		task { p: i64 }
		hi {}
		lo {}
	}
	hyphae {
		worker {
			on signal(task, t) where t.p > 5 {
				emit hi {}
			}
			on signal(task, t) {
				emit lo {}
			}
		}
	}
	topology {
		fruiting_body input
		fruiting_body output
		spawn worker as W1
		socket input -> W1 (task)
		socket W1 -> output (hi)
		socket W1 -> output (lo)
	}
}`)

	it.Inject("input", Signal{Frequency: "task", Payload: RecordVal([]string{"p"}, map[string]Value{"p": IntVal(9)})})
	it.Inject("input", Signal{Frequency: "task", Payload: RecordVal([]string{"p"}, map[string]Value{"p": IntVal(1)})})
	it.Run(2)

	out := it.FruitingBody("output")
	require.Len(t, out.Inbox, 2)
	require.Equal(t, "hi", out.Inbox[0].Frequency)
	require.Equal(t, "lo", out.Inbox[1].Frequency)
}

// Scenario 4: Backpressure.
func TestBackpressureScenario(t *testing.T) {
	it := build(t, `
network Backpressure {
	frequencies {
		burst { n: i64 }
	}
	hyphae {
		origin {
			on cycle 1 {
				emit burst { n: 1 }
				emit burst { n: 2 }
				emit burst { n: 3 }
			}
		}
	}
	topology {
		fruiting_body output
		spawn origin as O1
		socket O1 -> output (burst)
	}
	config {
		max_buffer_size: 2
	}
}`)

	it.Step()
	ag := it.Agent("O1")
	require.Equal(t, int64(1), ag.Failures)

	it.Step()
	out := it.FruitingBody("output")
	require.Len(t, out.Inbox, 2)
	require.Equal(t, int64(2), out.Inbox[0].Payload.Record["n"].Int)
	require.Equal(t, int64(3), out.Inbox[1].Payload.Record["n"].Int)
}

// Scenario 5: Broadcast.
func TestBroadcastScenario(t *testing.T) {
	it := build(t, `
network Broadcast {
	frequencies {
		ping {}
	}
	hyphae {
		listener {
			state { hits: u32 = 0 }
			on signal(ping, p) {
				hits = hits + 1
			}
		}
	}
	topology {
		fruiting_body origin
		spawn listener as A
		spawn listener as B
		spawn listener as C
		socket origin -> * (ping)
	}
}`)

	it.Inject("origin", Signal{Frequency: "ping", Payload: RecordVal(nil, nil)})
	it.Run(2)

	for _, id := range []string{"A", "B", "C"} {
		ag := it.Agent(id)
		require.Equal(t, int64(1), ag.State["hits"].Int)
	}
}

// Scenario 6: Cycle trigger.
func TestCycleTriggerScenario(t *testing.T) {
	it := build(t, `
network Ticker {
	frequencies {
		tick {}
	}
	hyphae {
		clock {
			on cycle 3 {
				emit tick {}
			}
		}
	}
	topology {
		fruiting_body output
		spawn clock as C1
		socket C1 -> output (tick)
	}
}`)

	it.Run(10)
	out := it.FruitingBody("output")
	require.Len(t, out.Inbox, 3)
}

// A capacity-1 socket never retains more than one signal: of two
// signals emitted in one cycle, only the later one is delivered.
func TestSocketCapacityOneNeverRetainsMoreThanOneSignal(t *testing.T) {
	it := build(t, `
network Cap1 {
	frequencies { x { v: i64 } }
	hyphae {
		origin {
			on cycle 1 {
				emit x { v: 1 }
				emit x { v: 2 }
			}
		}
	}
	topology {
		fruiting_body output
		spawn origin as O
		socket O -> output (x)
	}
	config { max_buffer_size: 1 }
}`)
	it.Step()
	it.Step()
	out := it.FruitingBody("output")
	require.Len(t, out.Inbox, 1)
	require.Equal(t, int64(2), out.Inbox[0].Payload.Record["v"].Int)
}

// An empty-inbox, no-trigger cycle advances only the cycle counter.
func TestStepWithNoTrafficIsIdempotentOnState(t *testing.T) {
	it := build(t, `
network Quiet {
	hyphae {
		idler {
			state { x: u32 = 5 }
		}
	}
	topology {
		spawn idler as I1
	}
}`)
	it.Step()
	before := it.Agent("I1").State["x"].Int
	it.Step()
	after := it.Agent("I1").State["x"].Int
	require.Equal(t, before, after)
	require.Equal(t, int64(2), it.Cycle())
}

// die during ACT is observed at REST; the agent's subsequent SENSE
// never occurs.
func TestDieRetiresAgentAtRest(t *testing.T) {
	it := build(t, `
network Mortal {
	frequencies { x {} }
	hyphae {
		mortal {
			on signal(x, v) {
				die
			}
		}
	}
	topology {
		fruiting_body input
		spawn mortal as M1
		socket input -> M1 (x)
	}
}`)
	it.Inject("input", Signal{Frequency: "x", Payload: RecordVal(nil, nil)})
	it.Run(2)
	require.False(t, it.Agent("M1").Alive)
}
