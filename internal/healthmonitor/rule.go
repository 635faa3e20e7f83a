// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package healthmonitor sweeps a runtime snapshot against a set of
// operator-supplied rules and reports agents that match: load
// a rule file once, compile each rule's expressions with expr-lang, and
// re-evaluate them against a fresh environment per subject.
//
// A health rule runs once per agent every time the driver sweeps
// (internal/driver), and its findings never mutate a database: they
// are returned to the caller, which logs them, exposes them over
// HTTP, or both.
package healthmonitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"text/template"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ClawedCode/Mycelial-Code/internal/interpreter"
)

// RuleFormat is the JSON shape an operator writes a health rule in.
type RuleFormat struct {
	Name         string   `json:"name"`
	Severity     string   `json:"severity"`
	Requirements []string `json:"requirements"`
	Rule         string   `json:"rule"`
	Hint         string   `json:"hint"`
}

type compiledRule struct {
	name         string
	severity     string
	requirements []*vm.Program
	rule         *vm.Program
	hint         *template.Template
}

// Monitor holds the compiled rule set loaded from a health-rule file.
type Monitor struct {
	rules []compiledRule
}

// Load reads and compiles every rule in path. An empty path yields a
// Monitor with no rules: Sweep then always returns no findings, which
// is how the driver behaves when EnableHealth-style monitoring has no
// operator-supplied rules configured.
func Load(path string) (*Monitor, error) {
	if path == "" {
		return &Monitor{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("healthmonitor: reading %s: %w", path, err)
	}

	var formats []RuleFormat
	if err := json.Unmarshal(raw, &formats); err != nil {
		return nil, fmt.Errorf("healthmonitor: decoding %s: %w", path, err)
	}

	m := &Monitor{}
	for _, rf := range formats {
		cr := compiledRule{name: rf.Name, severity: rf.Severity}

		for _, r := range rf.Requirements {
			prog, err := expr.Compile(r, expr.AsBool())
			if err != nil {
				return nil, fmt.Errorf("healthmonitor: rule %s: compiling requirement %q: %w", rf.Name, r, err)
			}
			cr.requirements = append(cr.requirements, prog)
		}

		prog, err := expr.Compile(rf.Rule, expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("healthmonitor: rule %s: compiling rule: %w", rf.Name, err)
		}
		cr.rule = prog

		if rf.Hint != "" {
			tmpl, err := template.New(rf.Name).Parse(rf.Hint)
			if err != nil {
				return nil, fmt.Errorf("healthmonitor: rule %s: parsing hint: %w", rf.Name, err)
			}
			cr.hint = tmpl
		}

		m.rules = append(m.rules, cr)
	}
	return m, nil
}

// Finding is one rule match against one agent.
type Finding struct {
	AgentID  string
	Rule     string
	Severity string
	Hint     string
}

// env builds the expr-lang evaluation environment for one agent: its
// vitality, age, failure counter, and a flattened view of its state and
// metric maps.
func env(ag interpreter.AgentSnapshot) map[string]any {
	state := make(map[string]any, len(ag.State))
	for k, v := range ag.State {
		state[k] = v.Native()
	}
	metrics := make(map[string]any, len(ag.Metrics))
	for k, v := range ag.Metrics {
		metrics[k] = v.Native()
	}
	return map[string]any{
		"agent": map[string]any{
			"id":          ag.ID,
			"template":    ag.Template,
			"vitality":    ag.Vitality,
			"age":         ag.Age,
			"failures":    ag.Failures,
			"inboxDepth":  ag.InboxDepth,
			"outboxDepth": ag.OutboxDepth,
		},
		"state":   state,
		"metrics": metrics,
	}
}

// Sweep evaluates every compiled rule against every live agent in snap,
// returning one Finding per (agent, rule) match. Rules are evaluated in
// load order; agents in snapshot order, matching this runtime's
// deterministic iteration everywhere.
func (m *Monitor) Sweep(snap interpreter.Snapshot) []Finding {
	var findings []Finding
	for _, ag := range snap.Agents {
		e := env(ag)
		for _, cr := range m.rules {
			ok, err := cr.requirementsHold(e)
			if err != nil || !ok {
				continue
			}

			match, err := expr.Run(cr.rule, e)
			if err != nil {
				continue
			}
			if matched, _ := match.(bool); !matched {
				continue
			}

			hint := ""
			if cr.hint != nil {
				var buf bytes.Buffer
				if err := cr.hint.Execute(&buf, e); err == nil {
					hint = buf.String()
				}
			}

			findings = append(findings, Finding{
				AgentID:  ag.ID,
				Rule:     cr.name,
				Severity: cr.severity,
				Hint:     hint,
			})
		}
	}
	return findings
}

func (cr compiledRule) requirementsHold(e map[string]any) (bool, error) {
	for _, req := range cr.requirements {
		out, err := expr.Run(req, e)
		if err != nil {
			return false, err
		}
		if ok, _ := out.(bool); !ok {
			return false, nil
		}
	}
	return true, nil
}
