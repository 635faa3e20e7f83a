// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package interpreter implements the runtime: the Value domain and
// expression evaluator, the three-phase tidal-cycle scheduler, and the
// signal router. It is built directly against the
// analyzer's symbol tables rather than re-walking the raw AST, keeping
// runtime state separate from the thing that validated it.
package interpreter

import (
	"github.com/ClawedCode/Mycelial-Code/internal/analyzer"
	"github.com/ClawedCode/Mycelial-Code/internal/ast"
	"github.com/ClawedCode/Mycelial-Code/pkg/diag"
)

// Signal is one unit of traffic: a frequency name plus its payload
// record.
type Signal struct {
	Frequency string
	Payload   Value
}

// socketBuffer is a bounded FIFO queue with drop-head backpressure:
// once full, appending a new signal silently discards the oldest
// buffered one rather than blocking the sender.
type socketBuffer struct {
	items    []Signal
	capacity int
	dropped  int64
}

func newSocketBuffer(capacity int) *socketBuffer {
	return &socketBuffer{capacity: capacity}
}

// push appends s to the buffer, evicting the oldest entry first
// (drop-head) once the buffer is at capacity. A socket with capacity
// zero is disabled entirely: nothing is ever enqueued.
func (b *socketBuffer) push(s Signal) {
	if b.capacity == 0 {
		b.dropped++
		return
	}
	if len(b.items) >= b.capacity {
		b.items = b.items[1:]
		b.dropped++
	}
	b.items = append(b.items, s)
}

// drain removes and returns every buffered signal, oldest first,
// leaving the buffer empty. The scheduler calls this once per SENSE
// phase so that signals emitted during ACT are not observed until the
// following cycle.
func (b *socketBuffer) drain() []Signal {
	out := b.items
	b.items = nil
	return out
}

// Socket is a live, instantiated unidirectional channel between two
// resolved endpoints, carrying signals of exactly one frequency. From
// is always a concrete fruiting body or instance id (the analyzer
// rejects "from: *"); To may be "*" for broadcast fan-out to every
// agent in the network.
type Socket struct {
	From      string
	To        string
	Frequency string
	buffer    *socketBuffer
}

// Vitality is the coarse health classification of an agent, recomputed
// once per REST phase from its failure counter and this cycle's
// traffic.
type Vitality int

const (
	Active Vitality = iota
	Idle
	Degraded
	Failed
)

func (v Vitality) String() string {
	switch v {
	case Active:
		return "active"
	case Idle:
		return "idle"
	case Degraded:
		return "degraded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Agent is one live hypha instance: a named template plus its own
// mutable state map and vitality bookkeeping. Inbox holds signals
// routed to this agent during SENSE, for rule matching during ACT.
type Agent struct {
	ID       string
	Template string
	Def      *ast.HyphalDef
	State    map[string]Value
	Inbox    []Signal
	Outbox   []Signal

	Alive    bool
	Age      int64
	Failures int64
	Vitality Vitality

	// Metrics holds the last (name, value) pair reported by each
	// distinct metric name this agent has ever `report`ed, per the
	// Open Question decision in SPEC_FULL.md: last-value-only, no
	// history ring.
	Metrics map[string]Value

	trafficThisCycle bool
	pendingDie       bool
	pendingSpawns    []pendingSpawn
}

type pendingSpawn struct {
	template string
	instance string
}

// FruitingBody is an external I/O endpoint: a named socket attachment
// point with no agent state or rules of its own.
type FruitingBody struct {
	Name string

	// Inbox holds signals delivered to this fruiting body by the
	// router, in arrival order, for an external consumer to drain.
	Inbox []Signal
}

// Interpreter is the runtime graph for one analyzed network: every live
// agent, fruiting body, and socket, plus the deterministic iteration
// order the scheduler walks each cycle.
type Interpreter struct {
	net *ast.Network
	res *analyzer.Result

	config *ast.Config

	agentOrder []string
	agents     map[string]*Agent

	fruitingOrder []string
	fruiting      map[string]*FruitingBody

	sockets []*Socket

	cycle int64
	phase Phase
	diags diag.Bag

	healthEnabled bool
}

// Phase is the globally observable scheduler state: every agent
// advances through the same phase together, REST -> SENSE -> ACT ->
// REST.
type Phase int

const (
	PhaseRest Phase = iota
	PhaseSense
	PhaseAct
)

func (p Phase) String() string {
	switch p {
	case PhaseSense:
		return "SENSE"
	case PhaseAct:
		return "ACT"
	case PhaseRest:
		return "REST"
	default:
		return "UNKNOWN"
	}
}

// New builds an Interpreter from a network and its (already error-free)
// analysis. Callers must check res.HasErrors() before calling New.
func New(net *ast.Network, res *analyzer.Result) *Interpreter {
	cfg := net.Config
	if cfg == nil {
		cfg = ast.DefaultConfig()
	}
	it := &Interpreter{
		net:           net,
		res:           res,
		config:        cfg,
		agents:        map[string]*Agent{},
		fruiting:      map[string]*FruitingBody{},
		healthEnabled: cfg.EnableHealth,
	}

	if net.Topology != nil {
		for _, fb := range net.Topology.FruitingBodies {
			it.fruiting[fb] = &FruitingBody{Name: fb}
			it.fruitingOrder = append(it.fruitingOrder, fb)
		}
		for _, sp := range net.Topology.Spawns {
			it.spawnAgent(sp.Type, sp.Instance)
		}
		for _, sock := range net.Topology.Sockets {
			it.sockets = append(it.sockets, &Socket{
				From:      sock.From,
				To:        sock.To,
				Frequency: sock.Frequency,
				buffer:    newSocketBuffer(cfg.MaxBufferSize),
			})
		}
	}
	return it
}

// spawnAgent instantiates template as instance, initializing its state
// fields in declaration order. Called both at topology build time and,
// deferred to REST, for in-rule SpawnStmt directives.
func (it *Interpreter) spawnAgent(template, instance string) *Agent {
	def := it.res.Hyphae[template]
	ag := &Agent{
		ID:       instance,
		Template: template,
		Def:      def,
		State:    map[string]Value{},
		Metrics:  map[string]Value{},
		Alive:    true,
		Vitality: Idle,
	}
	if def != nil {
		ctx := newEvalContext(ag.State, &it.diags)
		for _, sf := range def.State {
			if sf.Init != nil {
				ag.State[sf.Name] = Eval(sf.Init, ctx)
			} else {
				ag.State[sf.Name] = zeroValueFor(sf.Type)
			}
		}
	}
	it.agents[instance] = ag
	it.agentOrder = append(it.agentOrder, instance)
	return ag
}

func zeroValueFor(t *ast.TypeRef) Value {
	if t == nil {
		return Null
	}
	switch t.Kind {
	case ast.TypePrimitive:
		switch t.Primitive {
		case ast.U32, ast.I64:
			return IntVal(0)
		case ast.F64:
			return FloatVal(0)
		case ast.StringType:
			return StringVal("")
		case ast.Binary:
			return BytesVal(nil)
		case ast.Boolean:
			return BoolVal(false)
		}
	case ast.TypeGeneric:
		switch t.Generic {
		case "vec":
			return ListVal(nil)
		case "queue":
			return QueueVal(nil)
		case "map":
			return MapValOf(nil)
		}
	}
	return Null
}

// Diagnostics returns every diagnostic accumulated by the runtime since
// construction: evaluator warnings, backpressure drops, and the like.
func (it *Interpreter) Diagnostics() []diag.Diagnostic { return it.diags.Diagnostics() }

// Cycle returns the number of completed tidal cycles.
func (it *Interpreter) Cycle() int64 { return it.cycle }

// Agent returns the live agent with the given instance id, or nil.
func (it *Interpreter) Agent(id string) *Agent { return it.agents[id] }

// FruitingBody returns the named I/O endpoint, or nil.
func (it *Interpreter) FruitingBody(name string) *FruitingBody { return it.fruiting[name] }

// Inject delivers a signal as if it arrived at the named fruiting body,
// for routing on the next SENSE phase. Used by external interfaces
// such as the NATS ingress bridge.
func (it *Interpreter) Inject(fruitingBody string, sig Signal) {
	for _, sock := range it.sockets {
		if sock.From == fruitingBody && sock.Frequency == sig.Frequency {
			sock.buffer.push(sig)
		}
	}
}
