// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package interpreter

import "github.com/ClawedCode/Mycelial-Code/pkg/diag"

// route drains every socket's buffer and delivers its contents to the
// resolved destination(s), writing into the target agent's Inbox or
// the target fruiting body's Inbox. Broadcast sockets (To == "*")
// fan out a copy of each signal to every live agent in declaration
// order; the sending agent, if any, is not excluded - a hypha may
// observe its own broadcast, matching the "every agent" reading of
// "*" rather than "every other agent".
//
// route is called once per cycle, at the start of SENSE, so that
// signals emitted during the previous cycle's ACT phase become
// observable only now - never within the same ACT sweep that produced
// them: there is no same-cycle visibility.
func (it *Interpreter) route() {
	for _, sock := range it.sockets {
		signals := sock.buffer.drain()
		for _, sig := range signals {
			it.deliver(sock.To, sig)
		}
	}
}

func (it *Interpreter) deliver(to string, sig Signal) {
	if to == "*" {
		for _, id := range it.agentOrder {
			ag := it.agents[id]
			if ag.Alive {
				ag.Inbox = append(ag.Inbox, sig)
				ag.trafficThisCycle = true
			}
		}
		return
	}
	if ag, ok := it.agents[to]; ok {
		if ag.Alive {
			ag.Inbox = append(ag.Inbox, sig)
			ag.trafficThisCycle = true
		}
		return
	}
	if fb, ok := it.fruiting[to]; ok {
		fb.Inbox = append(fb.Inbox, sig)
	}
}

// emit enqueues a signal onto every socket whose From endpoint and
// Frequency match, to be delivered on the following cycle's SENSE
// phase. A signal matching no socket is a silent routing miss: not an
// error, just unobserved. Enqueuing into a full socket buffer
// evicts the oldest entry (drop-head) and immediately charges the
// backpressure against the origin agent's failure counter, since the
// eviction happens here, during this cycle's ACT.
func (it *Interpreter) emit(from string, sig Signal) {
	origin, isAgent := it.agents[from]
	if isAgent {
		origin.Outbox = append(origin.Outbox, sig)
		origin.trafficThisCycle = true
	}
	for _, sock := range it.sockets {
		if sock.From == from && sock.Frequency == sig.Frequency {
			before := len(sock.buffer.items)
			wasFull := sock.buffer.capacity == 0 || before >= sock.buffer.capacity
			sock.buffer.push(sig)
			if wasFull {
				it.diags.Warnf(diag.Location{}, "socket %s->%s(%s) dropped a signal to backpressure",
					sock.From, sock.To, sock.Frequency)
				if isAgent {
					origin.Failures++
				}
			}
		}
	}
}
