package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendapi/internal/config"
	"trendapi/internal/infrastructure"
	"trendapi/pkg/contracts/events"
)

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		Enabled:         true,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		PingPeriod:      time.Hour,
		PongWait:        2 * time.Hour,
	}
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(testWSConfig(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func receive(t *testing.T, c *Client) events.WebSocketMessage {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var msg struct {
			events.BaseMessage
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		return events.WebSocketMessage{BaseMessage: msg.BaseMessage, Data: msg.Data}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return events.WebSocketMessage{}
}

func TestHub_RegisterSendsGreeting(t *testing.T) {
	hub := newTestHub(t)
	client := NewClient(hub, NewMockConnection(), "trace-1", nil)

	require.True(t, hub.Register(client))

	msg := receive(t, client)
	assert.Equal(t, events.MessageTypeConnect, msg.Type)
	assert.Equal(t, "trace-1", msg.TraceID)
	assert.Contains(t, string(msg.Data.(json.RawMessage)), client.ID())
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHub_PublishReachesAllClients(t *testing.T) {
	hub := newTestHub(t)
	a := NewClient(hub, NewMockConnection(), "", nil)
	b := NewClient(hub, NewMockConnection(), "", nil)
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))
	receive(t, a)
	receive(t, b)

	ctx := infrastructure.WithTraceID(context.Background(), "req-9")
	hub.Publish(ctx, events.MessageTypeDatasetUploaded, events.DatasetUploadedEvent{
		DatasetID: "ds-1",
		Filename:  "sales.csv",
		RowCount:  3,
	})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		assert.Equal(t, events.MessageTypeDatasetUploaded, msg.Type)
		assert.Equal(t, "req-9", msg.TraceID)

		var payload events.DatasetUploadedEvent
		require.NoError(t, json.Unmarshal(msg.Data.(json.RawMessage), &payload))
		assert.Equal(t, "ds-1", payload.DatasetID)
		assert.Equal(t, 3, payload.RowCount)
	}

	assert.Eventually(t, func() bool { return hub.Stats().MessagesSent == 2 }, time.Second, 5*time.Millisecond)
}

func TestHub_Unregister(t *testing.T) {
	hub := newTestHub(t)
	client := NewClient(hub, NewMockConnection(), "", nil)
	require.True(t, hub.Register(client))
	receive(t, client)

	hub.Unregister(client)
	hub.Unregister(client)

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-client.send
	assert.False(t, ok)
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := newTestHub(t)
	client := NewClient(hub, NewMockConnection(), "", nil)
	require.True(t, hub.Register(client))

	for i := 0; i < clientQueueSize+1; i++ {
		hub.Publish(context.Background(), events.MessageTypeDatasetDeleted, events.DatasetDeletedEvent{DatasetID: "x"})
	}

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, hub.Stats().MessagesDropped, int64(1))
}

func TestHub_PublishWithoutRunningNeverBlocks(t *testing.T) {
	hub := NewHub(testWSConfig(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastQueueSize+10; i++ {
			hub.Publish(context.Background(), events.MessageTypeDatasetDeleted, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
	assert.Equal(t, int64(10), hub.Stats().MessagesDropped)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(testWSConfig(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	hub.Start()
	hub.Start()

	client := NewClient(hub, NewMockConnection(), "", nil)
	require.True(t, hub.Register(client))
	receive(t, client)

	hub.Stop()
	hub.Stop()

	_, ok := <-client.send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, hub.Register(NewClient(hub, NewMockConnection(), "", nil)))
}
