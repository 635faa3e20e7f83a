// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package natsbridge feeds external NATS traffic into a running
// network as injected signals: connect once, subscribe to a subject
// namespace, and wire each message directly to one Interpreter instead
// of a generic pub/sub handler registry.
package natsbridge

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/ClawedCode/Mycelial-Code/internal/interpreter"
	"github.com/ClawedCode/Mycelial-Code/pkg/log"
)

// Bridge subscribes to "<prefix>.<fruitingBody>.<frequency>" subjects
// and injects each message's JSON body as that frequency's payload at
// that fruiting body.
type Bridge struct {
	conn   *nats.Conn
	prefix string
	it     *interpreter.Interpreter

	mu   sync.Mutex
	subs []*nats.Subscription
}

// Connect dials address with reconnect/error logging wired to pkg/log.
func Connect(address string) (*nats.Conn, error) {
	if address == "" {
		return nil, fmt.Errorf("natsbridge: address is required")
	}

	opts := []nats.Option{
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnf("natsbridge: disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("natsbridge: reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Errorf("natsbridge: error: %v", err)
		}),
	}

	conn, err := nats.Connect(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("natsbridge: connect to %s failed: %w", address, err)
	}
	log.Infof("natsbridge: connected to %s", address)
	return conn, nil
}

// New builds a Bridge over an already-connected conn. prefix is the
// subject namespace this bridge owns, e.g. "mycelial.inject".
func New(conn *nats.Conn, it *interpreter.Interpreter, prefix string) *Bridge {
	return &Bridge{conn: conn, prefix: prefix, it: it}
}

// Start subscribes to every subject under the bridge's prefix.
func (b *Bridge) Start() error {
	subject := b.prefix + ".>"
	sub, err := b.conn.Subscribe(subject, b.handle)
	if err != nil {
		return fmt.Errorf("natsbridge: subscribing to %s: %w", subject, err)
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	log.Infof("natsbridge: subscribed to %s", subject)
	return nil
}

func (b *Bridge) handle(msg *nats.Msg) {
	fruitingBody, frequency, ok := splitSubject(b.prefix, msg.Subject)
	if !ok {
		log.Warnf("natsbridge: ignoring malformed subject %q", msg.Subject)
		return
	}

	var payload any
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			log.Warnf("natsbridge: dropping message on %q: invalid JSON: %v", msg.Subject, err)
			return
		}
	}

	b.it.Inject(fruitingBody, interpreter.Signal{
		Frequency: frequency,
		Payload:   valueFromJSON(payload),
	})
}

// splitSubject extracts "<fruitingBody>.<frequency>" from a subject of
// the form "<prefix>.<fruitingBody>.<frequency>".
func splitSubject(prefix, subject string) (fruitingBody, frequency string, ok bool) {
	rest := strings.TrimPrefix(subject, prefix+".")
	if rest == subject {
		return "", "", false
	}
	parts := strings.SplitN(rest, ".", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Close unsubscribes everything and closes the underlying connection.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.Warnf("natsbridge: unsubscribe failed: %v", err)
		}
	}
	b.subs = nil

	if b.conn != nil {
		b.conn.Close()
	}
}

func valueFromJSON(v any) interpreter.Value {
	switch t := v.(type) {
	case nil:
		return interpreter.Null
	case bool:
		return interpreter.BoolVal(t)
	case float64:
		if t == float64(int64(t)) {
			return interpreter.IntVal(int64(t))
		}
		return interpreter.FloatVal(t)
	case string:
		return interpreter.StringVal(t)
	case []any:
		items := make([]interpreter.Value, len(t))
		for i, item := range t {
			items[i] = valueFromJSON(item)
		}
		return interpreter.ListVal(items)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make(map[string]interpreter.Value, len(t))
		for _, k := range keys {
			fields[k] = valueFromJSON(t[k])
		}
		return interpreter.RecordVal(keys, fields)
	default:
		return interpreter.Null
	}
}
