// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitMissingDefaultPathIsNotAnError(t *testing.T) {
	err := Init(filepath.Join(t.TempDir(), "config.json"), true)
	require.NoError(t, err)
}

func TestInitMissingExplicitPathIsAnError(t *testing.T) {
	err := Init(filepath.Join(t.TempDir(), "config.json"), false)
	require.Error(t, err)
}

func TestInitLoadsAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"addr": ":9090", "nats-address": "nats://localhost:4222"}`), 0o644))

	require.NoError(t, Init(path, false))
	require.Equal(t, ":9090", Keys.Addr)
	require.Equal(t, "nats://localhost:4222", Keys.NatsAddress)
}

func TestInitRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not-a-real-key": true}`), 0o644))

	require.Error(t, Init(path, false))
}
