// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gops/agent"

	"github.com/ClawedCode/Mycelial-Code/internal/analyzer"
	"github.com/ClawedCode/Mycelial-Code/internal/config"
	"github.com/ClawedCode/Mycelial-Code/internal/driver"
	"github.com/ClawedCode/Mycelial-Code/internal/healthmonitor"
	"github.com/ClawedCode/Mycelial-Code/internal/httpapi"
	"github.com/ClawedCode/Mycelial-Code/internal/interpreter"
	"github.com/ClawedCode/Mycelial-Code/internal/natsbridge"
	"github.com/ClawedCode/Mycelial-Code/internal/parser"
	"github.com/ClawedCode/Mycelial-Code/pkg/diag"
	"github.com/ClawedCode/Mycelial-Code/pkg/log"
)

// Set via -ldflags at build time; "dev"/"none"/"unknown" otherwise.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cliInit()

	if flagVersion {
		fmt.Printf("mycelial %s, build %s (%s)\n", version, commit, date)
		os.Exit(0)
	}

	log.SetLogLevel(flagLogLevel)
	log.SetLogDateTime(flagLogDateTime)

	if err := config.Init(flagConfigFile, flagConfigFile == defaultConfigFile); err != nil {
		log.Fatalf("loading config failed: %s", err.Error())
	}

	if flagGops {
		opts := agent.Options{}
		if config.Keys.GopsPort != 0 {
			opts.Addr = fmt.Sprintf("127.0.0.1:%d", config.Keys.GopsPort)
		}
		if err := agent.Listen(opts); err != nil {
			log.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	if flagSource == "" {
		log.Fatal("a -source network file is required")
	}
	src, err := os.ReadFile(flagSource)
	if err != nil {
		log.Fatalf("reading %s failed: %s", flagSource, err.Error())
	}

	net, diags := parser.Parse(string(src), flagSource)
	if flagParse {
		printDiagnostics(diags)
		if hasErrors(diags) {
			os.Exit(1)
		}
		return
	}
	if hasErrors(diags) {
		printDiagnostics(diags)
		log.Fatal("parsing failed")
	}

	res := analyzer.Analyze(net)
	if flagAnalyze {
		printDiagnostics(res.Diagnostics)
		if res.HasErrors() {
			os.Exit(1)
		}
		return
	}
	if res.HasErrors() {
		printDiagnostics(res.Diagnostics)
		log.Fatal("semantic analysis failed")
	}

	it := interpreter.New(net, res)

	mon, err := healthmonitor.Load(config.Keys.HealthRuleFile)
	if err != nil {
		log.Fatalf("loading health rules failed: %s", err.Error())
	}

	if flagRun {
		it.Run(flagSteps)
		printSnapshot(it.State())
		if !flagServe {
			return
		}
	}

	if flagServe {
		runServer(it, mon)
		return
	}
}

func hasErrors(ds []diag.Diagnostic) bool {
	for _, d := range ds {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}

func printDiagnostics(ds []diag.Diagnostic) {
	for _, d := range ds {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

func runServer(it *interpreter.Interpreter, mon *healthmonitor.Monitor) {
	d, err := driver.New(it, mon)
	if err != nil {
		log.Fatalf("starting driver failed: %s", err.Error())
	}
	if err := d.Start(flagTickInterval); err != nil {
		log.Fatalf("starting driver failed: %s", err.Error())
	}

	server := httpapi.New(config.Keys.Addr, config.Keys.MetricsEndpoint, mon)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			log.Fatalf("http server failed: %s", err.Error())
		}
	}()
	log.Infof("mycelial: http api listening on %s", config.Keys.Addr)

	var bridge *natsbridge.Bridge
	if config.Keys.NatsAddress != "" {
		conn, err := natsbridge.Connect(config.Keys.NatsAddress)
		if err != nil {
			log.Fatalf("connecting to NATS failed: %s", err.Error())
		}
		bridge = natsbridge.New(conn, it, "mycelial.inject")
		if err := bridge.Start(); err != nil {
			log.Fatalf("starting NATS bridge failed: %s", err.Error())
		}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("mycelial: shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Warnf("http server shutdown: %s", err.Error())
	}
	if err := d.Shutdown(); err != nil {
		log.Warnf("driver shutdown: %s", err.Error())
	}
	if bridge != nil {
		bridge.Close()
	}
	log.Info("mycelial: graceful shutdown complete")
}

func printSnapshot(snap interpreter.Snapshot) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(snap)
}
