// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package httpapi exposes the six core operations (parse, analyze,
// new_interpreter, step, state, inject) as a small JSON HTTP surface,
// built around a mux.Router and the usual compression and
// panic-recovery middleware, minus everything that belongs to a
// multi-tenant monitoring UI (auth, GraphQL, templates).
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ClawedCode/Mycelial-Code/internal/analyzer"
	"github.com/ClawedCode/Mycelial-Code/internal/healthmonitor"
	"github.com/ClawedCode/Mycelial-Code/internal/interpreter"
	"github.com/ClawedCode/Mycelial-Code/internal/parser"
	"github.com/ClawedCode/Mycelial-Code/pkg/diag"
	"github.com/ClawedCode/Mycelial-Code/pkg/log"
)

// Server holds every live interpreter created through the API, keyed
// by an opaque id handed back from POST /v1/interpreters.
type Server struct {
	router *mux.Router
	srv    *http.Server

	mon *healthmonitor.Monitor

	mu           sync.Mutex
	interpreters map[string]*interpreter.Interpreter
	nextID       int64
}

// New builds a Server listening at addr, exposing Prometheus metrics at
// metricsEndpoint (e.g. "/metrics"). mon may be nil, meaning
// /v1/interpreters/{id}/health-check always reports zero findings.
func New(addr, metricsEndpoint string, mon *healthmonitor.Monitor) *Server {
	s := &Server{
		interpreters: map[string]*interpreter.Interpreter{},
		mon:          mon,
	}

	if metricsEndpoint == "" {
		metricsEndpoint = "/metrics"
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/parse", s.handleParse).Methods(http.MethodPost)
	api.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	api.HandleFunc("/interpreters", s.handleNewInterpreter).Methods(http.MethodPost)
	api.HandleFunc("/interpreters/{id}/step", s.handleStep).Methods(http.MethodPost)
	api.HandleFunc("/interpreters/{id}/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/interpreters/{id}/inject", s.handleInject).Methods(http.MethodPost)
	api.HandleFunc("/interpreters/{id}/health-check", s.handleHealthCheck).Methods(http.MethodPost)
	r.Handle(metricsEndpoint, promhttp.Handler())

	r.Use(handlers.CompressHandler)
	r.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true)))

	s.router = r
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      handlers.CustomLoggingHandler(io.Discard, r, logRequest),
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}
	return s
}

func logRequest(_ io.Writer, params handlers.LogFormatterParams) {
	log.Debugf("%s %s (%d, %dms)", params.Request.Method, params.URL.RequestURI(),
		params.StatusCode, time.Since(params.TimeStamp).Milliseconds())
}

// ListenAndServe blocks serving HTTP until the server is shut down.
func (s *Server) ListenAndServe() error {
	log.Infof("httpapi: listening on %s", s.srv.Addr)
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, status int, err error) {
	writeJSON(rw, status, map[string]string{"error": err.Error()})
}

func diagStrings(ds []diag.Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}

type parseRequest struct {
	Source string `json:"source"`
}

type parseResponse struct {
	OK          bool     `json:"ok"`
	Diagnostics []string `json:"diagnostics"`
}

func (s *Server) handleParse(rw http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(rw, http.StatusBadRequest, err)
		return
	}

	_, diags := parser.Parse(req.Source, "")
	writeJSON(rw, http.StatusOK, parseResponse{OK: len(diags) == 0, Diagnostics: diagStrings(diags)})
}

func (s *Server) handleAnalyze(rw http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(rw, http.StatusBadRequest, err)
		return
	}

	net, diags := parser.Parse(req.Source, "")
	if len(diags) > 0 {
		writeJSON(rw, http.StatusOK, parseResponse{OK: false, Diagnostics: diagStrings(diags)})
		return
	}

	res := analyzer.Analyze(net)
	writeJSON(rw, http.StatusOK, parseResponse{OK: !res.HasErrors(), Diagnostics: diagStrings(res.Diagnostics)})
}

type newInterpreterResponse struct {
	ID          string   `json:"id"`
	OK          bool     `json:"ok"`
	Diagnostics []string `json:"diagnostics"`
}

func (s *Server) handleNewInterpreter(rw http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(rw, http.StatusBadRequest, err)
		return
	}

	net, diags := parser.Parse(req.Source, "")
	if len(diags) > 0 {
		writeJSON(rw, http.StatusOK, newInterpreterResponse{Diagnostics: diagStrings(diags)})
		return
	}

	res := analyzer.Analyze(net)
	if res.HasErrors() {
		writeJSON(rw, http.StatusOK, newInterpreterResponse{Diagnostics: diagStrings(res.Diagnostics)})
		return
	}

	it := interpreter.New(net, res)
	id := strconv.FormatInt(atomic.AddInt64(&s.nextID, 1), 10)

	s.mu.Lock()
	s.interpreters[id] = it
	s.mu.Unlock()

	cycleGauge.WithLabelValues(id).Set(0)
	writeJSON(rw, http.StatusCreated, newInterpreterResponse{ID: id, OK: true})
}

func (s *Server) lookup(rw http.ResponseWriter, r *http.Request) (*interpreter.Interpreter, string, bool) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	it, ok := s.interpreters[id]
	s.mu.Unlock()
	if !ok {
		writeError(rw, http.StatusNotFound, fmt.Errorf("no interpreter with id %q", id))
		return nil, "", false
	}
	return it, id, true
}

type stepRequest struct {
	Cycles int `json:"cycles"`
}

func (s *Server) handleStep(rw http.ResponseWriter, r *http.Request) {
	it, id, ok := s.lookup(rw, r)
	if !ok {
		return
	}

	var req stepRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(rw, http.StatusBadRequest, err)
			return
		}
	}
	if req.Cycles <= 0 {
		req.Cycles = 1
	}

	it.Run(req.Cycles)
	stepsTotal.WithLabelValues(id).Add(float64(req.Cycles))
	cycleGauge.WithLabelValues(id).Set(float64(it.Cycle()))

	writeJSON(rw, http.StatusOK, it.State())
}

func (s *Server) handleState(rw http.ResponseWriter, r *http.Request) {
	it, _, ok := s.lookup(rw, r)
	if !ok {
		return
	}
	writeJSON(rw, http.StatusOK, it.State())
}

type injectRequest struct {
	FruitingBody string `json:"fruiting_body"`
	Frequency    string `json:"frequency"`
	Payload      any    `json:"payload"`
}

func (s *Server) handleInject(rw http.ResponseWriter, r *http.Request) {
	it, id, ok := s.lookup(rw, r)
	if !ok {
		return
	}

	var req injectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(rw, http.StatusBadRequest, err)
		return
	}

	it.Inject(req.FruitingBody, interpreter.Signal{
		Frequency: req.Frequency,
		Payload:   valueFromJSON(req.Payload),
	})
	injectsTotal.WithLabelValues(id, req.FruitingBody).Inc()

	writeJSON(rw, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleHealthCheck(rw http.ResponseWriter, r *http.Request) {
	it, id, ok := s.lookup(rw, r)
	if !ok {
		return
	}

	var findings []healthmonitor.Finding
	if s.mon != nil {
		findings = s.mon.Sweep(it.State())
		for _, f := range findings {
			findingsTotal.WithLabelValues(id, f.Rule, f.Severity).Inc()
		}
	}
	writeJSON(rw, http.StatusOK, findings)
}
