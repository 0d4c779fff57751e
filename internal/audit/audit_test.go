package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xld/xld-go/pkg/xld"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestService_Log(t *testing.T) {
	var buf bytes.Buffer
	svc := New(zerolog.New(&buf))

	err := svc.Log(context.Background(), EventQuoteCreated, SeverityInfo, "quote created",
		map[string]int64{"xld_reference": 1001}, WithRoute("quote_topup"), WithStatus(200))
	require.NoError(t, err)

	entries := lines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, EventQuoteCreated, entry["event"])
	assert.Equal(t, "quote_topup", entry["route"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, "quote created", entry["message"])
	assert.Equal(t, "xld-sdk", entry["component"])
	assert.Equal(t, map[string]any{"xld_reference": float64(1001)}, entry["data"])
	assert.NotEmpty(t, entry["audit_id"])
	assert.Equal(t, "info", entry["level"])
}

func TestService_Log_UnencodableData(t *testing.T) {
	var buf bytes.Buffer
	svc := New(zerolog.New(&buf))

	err := svc.Log(context.Background(), EventSettled, SeverityInfo, "settled", map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshaling transaction_settled event data")

	entries := lines(t, &buf)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], "data")
	assert.Len(t, svc.GetEvents(nil), 1)
}

func TestService_SeverityLevels(t *testing.T) {
	var buf bytes.Buffer
	svc := New(zerolog.New(&buf))

	require.NoError(t, svc.Log(context.Background(), EventSessionCleared, SeverityWarning, "cleared", nil))
	require.NoError(t, svc.Log(context.Background(), EventRequestFailed, SeverityError, "failed", nil, WithComponent("cli")))

	entries := lines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "error", entries[1]["level"])
	assert.Equal(t, "cli", entries[1]["component"])
	assert.NotContains(t, entries[0], "data")
}

func TestService_CancelledContext(t *testing.T) {
	svc := New(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.Log(ctx, EventRequestOK, SeverityInfo, "late", nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, svc.GetEvents(nil), 1, "the event is still recorded")
}

func TestService_GetEvents(t *testing.T) {
	svc := New(zerolog.Nop())
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, route := range []string{"country_list", "quote_topup", "country_list", "confirm_topup"} {
		require.NoError(t, svc.LogEvent(ctx, &Event{
			Type:      EventRequestOK,
			Severity:  SeverityInfo,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Route:     route,
		}))
	}

	all := svc.GetEvents(nil)
	require.Len(t, all, 4)
	assert.Equal(t, "confirm_topup", all[0].Route, "newest first")

	byRoute := svc.GetEvents(&EventFilter{Route: "country_list"})
	assert.Len(t, byRoute, 2)

	window := svc.GetEvents(&EventFilter{From: base.Add(time.Minute), To: base.Add(2 * time.Minute)})
	assert.Len(t, window, 2)

	limited := svc.GetEvents(&EventFilter{Limit: 1})
	assert.Len(t, limited, 1)
}

func TestService_CapacityBound(t *testing.T) {
	svc := New(zerolog.Nop())
	svc.capacity = 3

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Log(context.Background(), EventRequestOK, SeverityInfo, "tick", nil))
	}

	assert.Len(t, svc.GetEvents(nil), 3)
}

func TestService_Observer(t *testing.T) {
	var buf bytes.Buffer
	svc := New(zerolog.New(&buf))
	obs := svc.Observer()

	obs.Observe(context.Background(), xld.Event{Type: xld.EventAuthenticated, Route: "authenticate", StatusCode: 200})
	obs.Observe(context.Background(), xld.Event{Type: xld.EventRequestSucceeded, Route: "quote_buy", StatusCode: 200})
	obs.Observe(context.Background(), xld.Event{Type: xld.EventRequestSucceeded, Route: "confirm_buy", StatusCode: 200})
	obs.Observe(context.Background(), xld.Event{Type: xld.EventRequestSucceeded, Route: "chain_list", StatusCode: 200})
	obs.Observe(context.Background(), xld.Event{Type: xld.EventRequestFailed, Route: "wallet_history", StatusCode: 401, Err: errors.New("Unauthorized")})
	obs.Observe(nil, xld.Event{Type: xld.EventSessionCleared, Route: "wallet_history", StatusCode: 401})

	events := svc.GetEvents(nil)
	require.Len(t, events, 6)

	// newest first
	assert.Equal(t, EventSessionCleared, events[0].Type)
	assert.Equal(t, SeverityWarning, events[0].Severity)
	assert.Equal(t, EventRequestFailed, events[1].Type)
	assert.Equal(t, 401, events[1].StatusCode)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(events[1].Data))
	assert.Equal(t, EventRequestOK, events[2].Type)
	assert.Equal(t, EventPaymentSent, events[3].Type)
	assert.Equal(t, EventQuoteCreated, events[4].Type)
	assert.Equal(t, EventAuthenticated, events[5].Type)
}
