// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package analyzer performs the five-phase symbol resolution and
// topology validation sweep. It never mutates the AST; it only
// populates symbol tables internally and emits diagnostics.
package analyzer

import (
	"github.com/ClawedCode/Mycelial-Code/internal/ast"
	"github.com/ClawedCode/Mycelial-Code/pkg/diag"
)

// Result is the analyzer's output: the diagnostic list plus the
// resolved symbol tables, which the interpreter reuses to avoid
// re-walking the AST for the same lookups.
type Result struct {
	Diagnostics []diag.Diagnostic
	Frequencies map[string]*ast.FrequencyDef
	Hyphae      map[string]*ast.HyphalDef
	Instances   map[string]*ast.Spawn // instance id -> spawn directive
}

// HasErrors reports whether any diagnostic in the result is an error;
// an AST carrying one must not be executed.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}

type analyzer struct {
	net   *ast.Network
	diags diag.Bag

	frequencies map[string]*ast.FrequencyDef
	hyphae      map[string]*ast.HyphalDef
	instances   map[string]*ast.Spawn
}

// Analyze runs the fixed five-phase sweep over net and returns the
// full diagnostic list together with the resolved symbol tables.
// Analyze is idempotent: re-running it on the same AST yields the same
// diagnostics and tables.
func Analyze(net *ast.Network) *Result {
	a := &analyzer{
		net:         net,
		frequencies: map[string]*ast.FrequencyDef{},
		hyphae:      map[string]*ast.HyphalDef{},
		instances:   map[string]*ast.Spawn{},
	}
	if net == nil {
		a.diags.Errorf(diag.Location{}, "no network to analyze")
		return a.result()
	}

	a.phase1RegisterFrequencies()
	a.phase2RegisterHyphae()
	a.phase3RegisterSpawns()
	a.phase4ValidateSockets()
	a.phase5ValidateRules()

	return a.result()
}

func (a *analyzer) result() *Result {
	return &Result{
		Diagnostics: a.diags.Diagnostics(),
		Frequencies: a.frequencies,
		Hyphae:      a.hyphae,
		Instances:   a.instances,
	}
}

// resolveTypeRef checks that a TypeRef's named references resolve,
// recursing into generic container arguments.
func (a *analyzer) resolveTypeRef(t *ast.TypeRef) {
	if t == nil {
		return
	}
	switch t.Kind {
	case ast.TypeNamed:
		if _, ok := a.frequencies[t.Name]; !ok {
			a.diags.Errorf(t.Location, "undefined frequency %q used as a type", t.Name)
		}
	case ast.TypeGeneric:
		for _, arg := range t.Args {
			a.resolveTypeRef(arg)
		}
	}
}

// Phase 1: register every FrequencyDef by name; duplicate names -> error.
func (a *analyzer) phase1RegisterFrequencies() {
	for _, f := range a.net.Frequencies {
		if _, dup := a.frequencies[f.Name]; dup {
			a.diags.Errorf(f.Location, "duplicate frequency %q", f.Name)
			continue
		}
		a.frequencies[f.Name] = f
	}
	fieldNames := map[*ast.FrequencyDef]map[string]bool{}
	for _, f := range a.net.Frequencies {
		seen := fieldNames[f]
		if seen == nil {
			seen = map[string]bool{}
			fieldNames[f] = seen
		}
		for _, field := range f.Fields {
			if seen[field.Name] {
				a.diags.Errorf(field.Location, "duplicate field %q in frequency %q", field.Name, f.Name)
			}
			seen[field.Name] = true
		}
	}
}

// Phase 2: register every HyphalDef by name; duplicate names -> error.
// Named TypeRefs on state fields are resolved here too, once the
// frequency table from phase 1 is complete.
func (a *analyzer) phase2RegisterHyphae() {
	for _, h := range a.net.Hyphae {
		if _, dup := a.hyphae[h.Name]; dup {
			a.diags.Errorf(h.Location, "duplicate hyphal %q", h.Name)
			continue
		}
		a.hyphae[h.Name] = h
	}
	for _, h := range a.net.Hyphae {
		seen := map[string]bool{}
		for _, sf := range h.State {
			if seen[sf.Name] {
				a.diags.Errorf(sf.Location, "duplicate state field %q in hyphal %q", sf.Name, h.Name)
			}
			seen[sf.Name] = true
			a.resolveTypeRef(sf.Type)
		}
	}
	for _, f := range a.net.Frequencies {
		for _, field := range f.Fields {
			a.resolveTypeRef(field.Type)
		}
	}
}

// Phase 3: for each Spawn in topology, ensure its type resolves to a
// HyphalDef and register the instance id (duplicate ids -> error).
func (a *analyzer) phase3RegisterSpawns() {
	if a.net.Topology == nil {
		return
	}
	for _, s := range a.net.Topology.Spawns {
		if _, ok := a.hyphae[s.Type]; !ok {
			a.diags.Errorf(s.Location, "spawn references undefined hyphal %q", s.Type)
		}
		if _, dup := a.instances[s.Instance]; dup {
			a.diags.Errorf(s.Location, "duplicate instance id %q", s.Instance)
			continue
		}
		a.instances[s.Instance] = s
	}
}

// Phase 4: validate every Socket. from/to must be "*", a registered
// fruiting body, or a registered instance id; from may not be "*";
// frequency must resolve to a FrequencyDef.
func (a *analyzer) phase4ValidateSockets() {
	if a.net.Topology == nil {
		return
	}
	fruitingBodies := map[string]bool{}
	for _, fb := range a.net.Topology.FruitingBodies {
		fruitingBodies[fb] = true
	}

	isEndpoint := func(name string) bool {
		return name == "*" || fruitingBodies[name] || a.instances[name] != nil
	}

	for _, sock := range a.net.Topology.Sockets {
		if sock.From == "*" {
			a.diags.Errorf(sock.Location, "socket 'from' endpoint may not be '*'")
		} else if !isEndpoint(sock.From) {
			a.diags.Errorf(sock.Location, "socket 'from' endpoint %q is not a fruiting body or instance", sock.From)
		}
		if !isEndpoint(sock.To) {
			a.diags.Errorf(sock.Location, "socket 'to' endpoint %q is not a fruiting body, instance, or '*'", sock.To)
		}
		if _, ok := a.frequencies[sock.Frequency]; !ok {
			a.diags.Errorf(sock.Location, "socket references undefined frequency %q", sock.Frequency)
		}
	}
}

// Phase 5: for every HyphalDef, walk each Rule: the trigger frequency
// (if any) must resolve; each Emit statement's frequency must resolve;
// descend into Conditional branches.
func (a *analyzer) phase5ValidateRules() {
	for _, h := range a.net.Hyphae {
		for _, rule := range h.Rules {
			if sm, ok := rule.Trigger.(*ast.SignalMatch); ok {
				if _, ok := a.frequencies[sm.Frequency]; !ok {
					a.diags.Errorf(sm.Location, "rule trigger references undefined frequency %q", sm.Frequency)
				}
			}
			a.validateStatements(rule.Body)
		}
	}
}

func (a *analyzer) validateStatements(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.EmitStmt:
			if _, ok := a.frequencies[s.Frequency]; !ok {
				a.diags.Errorf(s.Location, "emit references undefined frequency %q", s.Frequency)
			}
		case *ast.ConditionalStmt:
			a.validateStatements(s.Then)
			for _, ei := range s.ElseIfs {
				a.validateStatements(ei.Body)
			}
			a.validateStatements(s.Else)
		case *ast.SpawnStmt:
			if _, ok := a.hyphae[s.Type]; !ok {
				a.diags.Errorf(s.Location, "spawn statement references undefined hyphal %q", s.Type)
			}
		}
	}
}
