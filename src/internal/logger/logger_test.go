package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })
	return logs
}

func TestInfoWritesFields(t *testing.T) {
	logs := observe(t)

	Info("posting engine post", Fields{"accountId": int64(1), "kind": "DEBIT"})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "posting engine post", entries[0].Message)
	assert.Equal(t, int64(1), entries[0].ContextMap()["accountId"])
	assert.Equal(t, "DEBIT", entries[0].ContextMap()["kind"])
}

func TestErrorAddsErrorField(t *testing.T) {
	logs := observe(t)

	Error("transfer failed", errors.New("boom"), Fields{"fromAccountId": int64(2)})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	assert.Equal(t, int64(2), entries[0].ContextMap()["fromAccountId"])
}

func TestSensitiveFieldsAreMasked(t *testing.T) {
	logs := observe(t)

	Warn("auth", Fields{
		"channelKey": "secret",
		"payload":    map[string]any{"password": "hunter2", "amount": "10.00"},
	})

	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "******", ctx["channelKey"])
	payload, ok := ctx["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "******", payload["password"])
	assert.Equal(t, "10.00", payload["amount"])
}

func TestSanitizePayloadNested(t *testing.T) {
	type request struct {
		ChannelKey string `json:"channel-key"`
		Items      []map[string]string
	}

	got := SanitizePayload(request{ChannelKey: "k", Items: []map[string]string{{"authorization": "Basic x"}}})

	m := got.(map[string]any)
	assert.Equal(t, "******", m["channel-key"])
	items := m["Items"].([]any)
	assert.Equal(t, "******", items[0].(map[string]any)["authorization"])
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init("loud")
	require.Error(t, err)
}

func TestInitBuildsLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })
	require.NoError(t, Init("debug"))
	assert.NotPanics(t, func() { Info("ready", nil) })
}
