// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads and validates the CLI-level configuration that
// sits alongside a network's own `config { }` section: the HTTP
// listen address, the metrics endpoint path, the NATS ingress
// address, the gops debug port, and the optional health-rule file
// path. It validates the raw JSON against a schema before decoding
// it, so a malformed config.json is rejected with a schema error
// rather than silently zero-valued fields.
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/ClawedCode/Mycelial-Code/pkg/log"
)

// Keys is the global, package-level configuration every command and
// server component reads from, populated once by Init at startup.
var Keys = Config{
	Addr:            ":8080",
	NatsAddress:     "",
	HealthRuleFile:  "",
	GopsPort:        0,
	MetricsEndpoint: "/metrics",
}

// Config is the program-level configuration (distinct from a parsed
// network's own runtime Config in ast.Config): where the HTTP and NATS
// surfaces listen, and where to find an optional health-rule file.
type Config struct {
	Addr            string `json:"addr"`
	NatsAddress     string `json:"nats-address"`
	HealthRuleFile  string `json:"health-rule-file"`
	GopsPort        int    `json:"gops-port"`
	MetricsEndpoint string `json:"metrics-endpoint"`
}

// Init loads configFile into Keys, validating it against configSchema
// first. A missing file at the default path is not an error: Keys keeps
// its built-in defaults. A missing file at an explicitly requested
// path is returned as an error, matching the -config flag's usual
// behavior for an explicitly requested file.
func Init(configFile string, isDefaultPath bool) error {
	raw, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) && isDefaultPath {
			return nil
		}
		return err
	}

	if err := Validate(configSchema, raw); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		return err
	}

	log.Infof("config: loaded %s", configFile)
	return nil
}
