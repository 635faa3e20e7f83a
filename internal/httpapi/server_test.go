// Copyright (C) Mycelial-Code Contributors.
// All rights reserved. This file is part of Mycelial-Code.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const helloSrc = `
network Hello {
	frequencies {
		greeting { name: string }
		response { message: string }
	}
	hyphae {
		greeter {
			on signal(greeting, g) {
				emit response { message: format("Hello, {}!", g.name) }
			}
		}
	}
	topology {
		fruiting_body input
		fruiting_body output
		spawn greeter as G1
		socket input -> G1 (greeting)
		socket G1 -> output (response)
	}
}`

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(":0", "/metrics", nil)
	ts := httptest.NewServer(s.router)
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func TestParseEndpointReportsDiagnostics(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts, "/v1/parse", parseRequest{Source: "network { "})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out parseResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.False(t, out.OK)
	require.NotEmpty(t, out.Diagnostics)
}

func TestFullLifecycleOverHTTP(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts, "/v1/interpreters", parseRequest{Source: helloSrc})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created newInterpreterResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.True(t, created.OK)
	require.NotEmpty(t, created.ID)

	injectResp := postJSON(t, ts, "/v1/interpreters/"+created.ID+"/inject", injectRequest{
		FruitingBody: "input",
		Frequency:    "greeting",
		Payload:      map[string]any{"name": "world"},
	})
	defer injectResp.Body.Close()
	require.Equal(t, http.StatusAccepted, injectResp.StatusCode)

	stepResp := postJSON(t, ts, "/v1/interpreters/"+created.ID+"/step", stepRequest{Cycles: 2})
	defer stepResp.Body.Close()
	require.Equal(t, http.StatusOK, stepResp.StatusCode)

	stateResp, err := http.Get(ts.URL + "/v1/interpreters/" + created.ID + "/state")
	require.NoError(t, err)
	defer stateResp.Body.Close()

	var snap map[string]any
	require.NoError(t, json.NewDecoder(stateResp.Body).Decode(&snap))
	require.EqualValues(t, 2, snap["Cycle"])
}

func TestStepUnknownInterpreterReturns404(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts, "/v1/interpreters/does-not-exist/step", stepRequest{Cycles: 1})
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
