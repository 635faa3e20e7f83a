// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package interpreter

import (
	"github.com/ClawedCode/Mycelial-Code/internal/ast"
)

// Step advances the network by exactly one tidal cycle: SENSE routes
// buffered signals into agent inboxes, ACT evaluates rules against
// every live agent in deterministic insertion order, and REST applies
// the cycle's deferred spawn/die lifecycle changes.
func (it *Interpreter) Step() {
	it.cycle++
	it.sense()
	it.act()
	it.rest()
}

// Run advances the network n cycles.
func (it *Interpreter) Run(n int) {
	for i := 0; i < n; i++ {
		it.Step()
	}
}

func (it *Interpreter) sense() {
	it.phase = PhaseSense
	for _, id := range it.agentOrder {
		it.agents[id].Inbox = nil
	}
	it.route()
}

// act evaluates, for every live agent in declaration order, its rules
// in declaration order against every signal currently in its inbox
// (oldest first), plus any cycle triggers due this tick (rest triggers
// run in rest). The first rule whose trigger matches wins; remaining
// rules are not considered for that signal.
func (it *Interpreter) act() {
	it.phase = PhaseAct
	for _, id := range it.agentOrder {
		ag := it.agents[id]
		if !ag.Alive {
			continue
		}
		ag.Outbox = nil
		if ag.Vitality == Failed {
			// A failed agent still ages and is swept at REST like any
			// other, but it no longer matches new rules.
			continue
		}

		inbox := ag.Inbox
		ag.Inbox = nil
		for _, sig := range inbox {
			it.runSignalRules(ag, sig)
		}

		for _, rule := range ag.Def.Rules {
			if ct, ok := rule.Trigger.(*ast.CycleTrigger); ok {
				if ct.Period > 0 && it.cycle%int64(ct.Period) == 0 {
					it.execRule(ag, rule, "", Null)
				}
			}
		}
	}
}

// runSignalRules finds the first rule on ag whose SignalMatch trigger
// matches sig's frequency and whose guard (if present) is truthy, and
// executes its body. No match is not an error: the signal is simply
// dropped.
func (it *Interpreter) runSignalRules(ag *Agent, sig Signal) {
	for _, rule := range ag.Def.Rules {
		sm, ok := rule.Trigger.(*ast.SignalMatch)
		if !ok || sm.Frequency != sig.Frequency {
			continue
		}
		if sm.Guard != nil {
			ctx := newEvalContext(ag.State, &it.diags)
			if sm.Binding != "" {
				ctx = ctx.withBinding(sm.Binding, sig.Payload)
			}
			if !Eval(sm.Guard, ctx).Truthy() {
				continue
			}
		}
		it.execRule(ag, rule, sm.Binding, sig.Payload)
		return
	}
}

func (it *Interpreter) execRule(ag *Agent, rule *ast.Rule, binding string, payload Value) {
	ctx := newEvalContext(ag.State, &it.diags)
	if binding != "" {
		ctx = ctx.withBinding(binding, payload)
	}
	ok := it.execStatements(ag, rule.Body, ctx)
	if !ok {
		ag.Failures++
	}
}

// execStatements runs stmts in order against ag, returning false if any
// statement failed in a way the vitality counter should record. A
// failed statement does not abort the remaining statements in the rule
// body: faults are recorded, not fatal.
func (it *Interpreter) execStatements(ag *Agent, stmts []ast.Statement, ctx *evalContext) bool {
	ok := true
	for _, stmt := range stmts {
		if !it.execStatement(ag, stmt, ctx) {
			ok = false
		}
	}
	return ok
}

func (it *Interpreter) execStatement(ag *Agent, stmt ast.Statement, ctx *evalContext) bool {
	switch s := stmt.(type) {
	case *ast.EmitStmt:
		order := make([]string, 0, len(s.Fields))
		values := make(map[string]Value, len(s.Fields))
		for _, fv := range s.Fields {
			order = append(order, fv.Name)
			values[fv.Name] = Eval(fv.Value, ctx)
		}
		it.emit(ag.ID, Signal{Frequency: s.Frequency, Payload: RecordVal(order, values)})
		return true

	case *ast.AssignStmt:
		return it.execAssign(ag, s, ctx)

	case *ast.ConditionalStmt:
		if Eval(s.Cond, ctx).Truthy() {
			return it.execStatements(ag, s.Then, ctx)
		}
		for _, ei := range s.ElseIfs {
			if Eval(ei.Cond, ctx).Truthy() {
				return it.execStatements(ag, ei.Body, ctx)
			}
		}
		if s.Else != nil {
			return it.execStatements(ag, s.Else, ctx)
		}
		return true

	case *ast.ReportStmt:
		// Metric reporting is an observability side channel: only the
		// last value per metric name per agent is kept, overwritten
		// each time report runs.
		ag.Metrics[s.Metric] = Eval(s.Value, ctx)
		return true

	case *ast.SpawnStmt:
		ag.pendingSpawns = append(ag.pendingSpawns, pendingSpawn{template: s.Type, instance: s.Instance})
		return true

	case *ast.DieStmt:
		ag.pendingDie = true
		return true

	default:
		ctx.warnf(stmt.Loc(), "unsupported statement node %T", stmt)
		return false
	}
}

// execAssign mutates ag.State for a single-segment target (the state
// field itself); multi-segment targets (field-access chains into
// nested records) assign into the leaf field of the resolved record,
// leaving every ancestor record in place.
func (it *Interpreter) execAssign(ag *Agent, s *ast.AssignStmt, ctx *evalContext) bool {
	val := Eval(s.Value, ctx)
	if len(s.Target) == 0 {
		return false
	}
	if len(s.Target) == 1 {
		ag.State[s.Target[0]] = val
		return true
	}
	root, ok := ag.State[s.Target[0]]
	if !ok || root.Kind != KindRecord {
		ctx.warnf(s.Location, "cannot assign into %q: not a record", s.Target[0])
		return false
	}
	cur := root
	for _, seg := range s.Target[1 : len(s.Target)-1] {
		next, ok := cur.Record[seg]
		if !ok || next.Kind != KindRecord {
			ctx.warnf(s.Location, "cannot assign through %q: not a record", seg)
			return false
		}
		cur = next
	}
	cur.Record[s.Target[len(s.Target)-1]] = val
	ag.State[s.Target[0]] = root
	return true
}

// rest runs each live agent's RestTrigger rule once, applies every
// deferred spawn and die directive accumulated during this cycle's ACT
// phase, ages survivors, and recomputes vitality.
// Deferring lifecycle changes to REST keeps ACT's agentOrder iteration
// stable while it runs.
func (it *Interpreter) rest() {
	it.phase = PhaseRest
	for _, id := range it.agentOrder {
		ag := it.agents[id]
		if !ag.Alive || ag.Vitality == Failed {
			continue
		}
		for _, rule := range ag.Def.Rules {
			if _, ok := rule.Trigger.(*ast.RestTrigger); ok {
				it.execRule(ag, rule, "", Null)
			}
		}
	}

	var pending []pendingSpawn
	for _, id := range it.agentOrder {
		ag := it.agents[id]
		if !ag.Alive {
			continue
		}
		pending = append(pending, ag.pendingSpawns...)
		ag.pendingSpawns = nil
		if ag.pendingDie {
			ag.Alive = false
			ag.pendingDie = false
			it.removeSocketsFor(id)
		}
	}
	for _, ps := range pending {
		it.spawnAgent(ps.template, ps.instance)
	}

	for _, id := range it.agentOrder {
		ag := it.agents[id]
		if !ag.Alive {
			continue
		}
		ag.Age++
		if it.healthEnabled {
			switch {
			case ag.Failures > 3:
				ag.Vitality = Failed
			case ag.Failures > 1:
				ag.Vitality = Degraded
			case ag.trafficThisCycle:
				ag.Vitality = Active
			default:
				ag.Vitality = Idle
			}
		}
		ag.trafficThisCycle = false
	}
}

// removeSocketsFor drops every socket directly referencing a dying
// agent so the runtime graph never holds a dangling endpoint id.
// A broadcast ("*") socket is removed only when the dying agent is its
// From endpoint; its "*" destination names no specific agent.
func (it *Interpreter) removeSocketsFor(id string) {
	kept := it.sockets[:0]
	for _, sock := range it.sockets {
		if sock.From == id || sock.To == id {
			continue
		}
		kept = append(kept, sock)
	}
	it.sockets = kept
}
