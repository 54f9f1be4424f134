// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	return entry
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("pseudo-ledger-server")
	l.Logger = l.Output(&buf)

	l.Info().Msg("group created")

	entry := lastEntry(t, &buf)
	assert.Equal(t, "pseudo-ledger-server", entry["role"])
	assert.Contains(t, entry, "time")
	assert.Equal(t, "func", zerolog.CallerFieldName)
}

func TestNop_DiscardsOutput(t *testing.T) {
	var buf bytes.Buffer
	l := Nop()
	l.Logger = l.Output(&buf)

	l.Info().Msg("discarded")

	assert.Empty(t, buf.String())
}

// The trace id middleware derives a child logger per request and stores it
// in the request context; services read it back with FromContext.
func TestRequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	root := &Logger{zerolog.New(&buf).With().Str("role", "server").Logger()}

	child := root.GetChildLogger()
	child.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("trace_id", "7f3c")
	})
	assert.NotSame(t, root, child)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/groups/1/ledger", nil)
	req = req.WithContext(child.WithContext(req.Context()))

	FromRequest(req).Info().Msg("request")
	entry := lastEntry(t, &buf)
	assert.Equal(t, "7f3c", entry["trace_id"])
	assert.Equal(t, "server", entry["role"])

	buf.Reset()
	FromContext(req.Context()).Info().Msg("service")
	assert.Equal(t, "7f3c", lastEntry(t, &buf)["trace_id"])

	buf.Reset()
	root.Info().Msg("root")
	assert.NotContains(t, lastEntry(t, &buf), "trace_id")

	require.NotNil(t, FromContext(context.Background()))
}
