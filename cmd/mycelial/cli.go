// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"flag"
	"time"
)

var (
	flagParse, flagAnalyze, flagRun, flagServe, flagGops, flagVersion, flagLogDateTime bool
	flagSource, flagConfigFile, flagLogLevel                                           string
	flagSteps                                                                          int
	flagTickInterval                                                                   time.Duration
)

const defaultConfigFile = "./config.json"

func cliInit() {
	flag.StringVar(&flagSource, "source", "", "Path to a Mycelial-Code network source file")
	flag.BoolVar(&flagParse, "parse", false, "Parse the source and print diagnostics, then exit")
	flag.BoolVar(&flagAnalyze, "analyze", false, "Parse and semantically analyze the source and print diagnostics, then exit")
	flag.BoolVar(&flagRun, "run", false, "Parse, analyze, build an interpreter and step it -steps times, printing the final runtime snapshot")
	flag.IntVar(&flagSteps, "steps", 1, "Number of tidal cycles to advance with -run")
	flag.BoolVar(&flagServe, "serve", false, "Start a server, continues listening after initialization and argument handling")
	flag.DurationVar(&flagTickInterval, "tick-interval", time.Second, "Interval between tidal cycles when serving")
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.BoolVar(&flagVersion, "version", false, "Show version information and exit")
	flag.BoolVar(&flagLogDateTime, "logdate", false, "Set this flag to add date and time to log messages")
	flag.StringVar(&flagConfigFile, "config", defaultConfigFile, "Specify alternative path to `config.json`")
	flag.StringVar(&flagLogLevel, "loglevel", "info", "Sets the logging level: `[debug, info, notice, warn, err, crit]`")
	flag.Parse()
}
