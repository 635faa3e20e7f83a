// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are the Prometheus instruments exposed at /metrics: this
// server is itself the thing being scraped, with counters for steps,
// injects and health findings served through the HTTP API, plus one
// gauge per live network's cycle count.
var (
	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mycelial_steps_total",
		Help: "Total number of tidal cycles advanced via the HTTP API.",
	}, []string{"interpreter_id"})

	injectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mycelial_injects_total",
		Help: "Total number of signals injected via the HTTP API.",
	}, []string{"interpreter_id", "fruiting_body"})

	findingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mycelial_health_findings_total",
		Help: "Total number of health rule matches reported by the HTTP health-check endpoint.",
	}, []string{"interpreter_id", "rule", "severity"})

	cycleGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mycelial_interpreter_cycle",
		Help: "Current tidal cycle count per live interpreter.",
	}, []string{"interpreter_id"})
)
