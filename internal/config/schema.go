// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

// configSchema validates config.json against the Config fields this
// package decodes. Unlike the network's own `config { }` section
// (parsed and checked by internal/parser), this
// schema governs only the CLI/driver-level settings.
const configSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "mycelial CLI config",
	"type": "object",
	"properties": {
		"addr": { "type": "string" },
		"nats-address": { "type": "string" },
		"health-rule-file": { "type": "string" },
		"gops-port": { "type": "integer", "minimum": 0 },
		"metrics-endpoint": { "type": "string" }
	},
	"additionalProperties": false
}`
