// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package driver runs a live network's tidal cycle on a wall-clock
// interval: one Scheduler, one NewJob per recurring duty, the gocron
// idiom for a long-lived background service.
package driver

import (
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/ClawedCode/Mycelial-Code/internal/healthmonitor"
	"github.com/ClawedCode/Mycelial-Code/internal/interpreter"
	"github.com/ClawedCode/Mycelial-Code/pkg/log"
)

// ErrNonPositiveInterval is returned by Start when asked to tick on a
// zero or negative interval.
var ErrNonPositiveInterval = errors.New("driver: tick interval must be positive")

// Driver ticks an Interpreter forward on a fixed interval and, when a
// Monitor is attached, sweeps its health rules once per tick and hands
// the findings to OnFindings.
type Driver struct {
	s   gocron.Scheduler
	it  *interpreter.Interpreter
	mon *healthmonitor.Monitor

	// OnFindings is called with the health monitor's output after every
	// tick, in sweep order. Nil by default: findings are only logged.
	OnFindings func([]healthmonitor.Finding)
}

// New builds a Driver over it. mon may be nil, meaning no health sweep
// runs each tick.
func New(it *interpreter.Interpreter, mon *healthmonitor.Monitor) (*Driver, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Driver{s: s, it: it, mon: mon}, nil
}

// Start registers the tick job at the given interval and starts the
// scheduler. A zero interval is rejected: a driver with no tick period
// would never advance the network.
func (d *Driver) Start(interval time.Duration) error {
	if interval <= 0 {
		log.Warnf("driver: refusing to start with non-positive interval %s", interval)
		return ErrNonPositiveInterval
	}

	_, err := d.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(d.tick),
	)
	if err != nil {
		return err
	}

	d.s.Start()
	log.Infof("driver: started, tick every %s", interval)
	return nil
}

// Shutdown stops the scheduler, letting any in-flight tick finish.
func (d *Driver) Shutdown() error {
	return d.s.Shutdown()
}

func (d *Driver) tick() {
	d.it.Step()
	log.Debugf("driver: completed cycle %d", d.it.Cycle())

	if d.mon == nil {
		return
	}

	findings := d.mon.Sweep(d.it.State())
	for _, f := range findings {
		log.Warnf("driver: health rule %q matched agent %s (%s): %s", f.Rule, f.AgentID, f.Severity, f.Hint)
	}
	if d.OnFindings != nil {
		d.OnFindings(findings)
	}
}
