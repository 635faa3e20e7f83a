// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package interpreter

// AgentSnapshot is the read-only view of one live agent exposed by
// state(): its state, traffic depths, and health.
type AgentSnapshot struct {
	ID          string
	Template    string
	State       map[string]Value
	InboxDepth  int
	OutboxDepth int
	Vitality    string
	Age         int64
	Failures    int64
	Metrics     map[string]Value
}

// SocketSnapshot is the read-only view of one socket's buffer depth.
type SocketSnapshot struct {
	From      string
	To        string
	Frequency string
	Buffered  int
	Capacity  int
}

// FruitingBodySnapshot exposes a fruiting body's pending inbox for an
// external reader (editor, CLI, visualization layer).
type FruitingBodySnapshot struct {
	Name       string
	InboxDepth int
	Inbox      []Signal
}

// Snapshot is the full read-only runtime view returned by state() and
// step(): cycle count, current phase, every agent/socket/fruiting body,
// and the global metrics map. Each agent's state and metric maps and
// each fruiting body's inbox slice are copied; the Values inside them
// are not deep-copied, so nested records, lists and maps are shared
// with the live runtime.
type Snapshot struct {
	Cycle    int64
	Phase    string
	Agents   []AgentSnapshot
	Sockets  []SocketSnapshot
	Fruiting []FruitingBodySnapshot
	Metrics  map[string]map[string]Value
}

// State produces a read-only snapshot of the interpreter's current
// runtime graph. Later Step calls do not change which agents, keys or
// signals it holds, but a nested record assigned into by a rule is
// shared and changes with it.
func (it *Interpreter) State() Snapshot {
	snap := Snapshot{
		Cycle:   it.cycle,
		Phase:   it.phase.String(),
		Metrics: make(map[string]map[string]Value, len(it.agentOrder)),
	}

	for _, id := range it.agentOrder {
		ag := it.agents[id]
		if !ag.Alive {
			continue
		}
		st := make(map[string]Value, len(ag.State))
		for k, v := range ag.State {
			st[k] = v
		}
		met := make(map[string]Value, len(ag.Metrics))
		for k, v := range ag.Metrics {
			met[k] = v
		}
		snap.Agents = append(snap.Agents, AgentSnapshot{
			ID:          ag.ID,
			Template:    ag.Template,
			State:       st,
			InboxDepth:  len(ag.Inbox),
			OutboxDepth: len(ag.Outbox),
			Vitality:    ag.Vitality.String(),
			Age:         ag.Age,
			Failures:    ag.Failures,
			Metrics:     met,
		})
		snap.Metrics[id] = met
	}

	for _, sock := range it.sockets {
		snap.Sockets = append(snap.Sockets, SocketSnapshot{
			From:      sock.From,
			To:        sock.To,
			Frequency: sock.Frequency,
			Buffered:  len(sock.buffer.items),
			Capacity:  sock.buffer.capacity,
		})
	}

	for _, name := range it.fruitingOrder {
		fb := it.fruiting[name]
		snap.Fruiting = append(snap.Fruiting, FruitingBodySnapshot{
			Name:       fb.Name,
			InboxDepth: len(fb.Inbox),
			Inbox:      append([]Signal(nil), fb.Inbox...),
		})
	}

	return snap
}
