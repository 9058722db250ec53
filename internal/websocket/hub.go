package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"trendapi/internal/config"
	"trendapi/internal/infrastructure"
	"trendapi/pkg/contracts/events"
)

const (
	// broadcastQueueSize bounds the number of pending broadcasts
	broadcastQueueSize = 256

	// clientQueueSize bounds the number of pending messages per client
	clientQueueSize = 256
)

type envelope struct {
	msgType events.MessageType
	payload []byte
}

// Hub maintains the set of active clients and broadcasts dataset events
// to them.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *OTelMetrics

	pingPeriod time.Duration
	pongWait   time.Duration

	totalConnections int64
	messagesSent     int64
	messagesDropped  int64

	quit    chan struct{}
	done    chan struct{}
	running bool
	stopped bool
}

// HubStats is a point-in-time view of hub activity
type HubStats struct {
	ActiveClients    int   `json:"active_clients"`
	TotalConnections int64 `json:"total_connections"`
	MessagesSent     int64 `json:"messages_sent"`
	MessagesDropped  int64 `json:"messages_dropped"`
}

// NewHub creates a new Hub. metrics may be nil.
func NewHub(cfg config.WebSocketConfig, metrics *OTelMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if metrics == nil {
		metrics, _ = NewOTelMetrics(nil)
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, broadcastQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		pingPeriod: cfg.PingPeriod,
		pongWait:   cfg.PongWait,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in a goroutine. Calling it twice, or after Stop,
// is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running || h.stopped {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("Hub shut down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.totalConnections++
			count := len(h.clients)
			h.mu.Unlock()

			ctx := infrastructure.WithTraceID(context.Background(), client.traceID)
			h.metrics.RecordConnection(ctx)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			greeting := events.NewMessage(events.MessageTypeConnect, events.ConnectEvent{
				Status:   "connected",
				Message:  "Connected to trend analysis events",
				ClientID: client.id,
			}, client.traceID)
			if data, err := json.Marshal(greeting); err == nil {
				select {
				case client.send <- data:
				default:
					h.logger.WarnContext(ctx, "Client buffer full, greeting dropped",
						slog.String("client_id", client.id))
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			if ok {
				ctx := infrastructure.WithTraceID(context.Background(), client.traceID)
				h.metrics.RecordDisconnection(ctx, time.Since(client.connectedAt))
				h.logger.InfoContext(ctx, "Client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			}

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg envelope) {
	ctx := context.Background()

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- msg.payload:
			h.messagesSent++
			h.metrics.RecordMessageSent(ctx, string(msg.msgType), len(msg.payload))
		default:
			close(client.send)
			delete(h.clients, client)
			h.messagesDropped++
			h.metrics.RecordDroppedMessage(ctx, "client_buffer_full")
			h.metrics.RecordDisconnection(ctx, time.Since(client.connectedAt))
			h.logger.Warn("Client send buffer full, disconnecting",
				slog.String("client_id", client.id))
		}
	}

	h.logger.Debug("Broadcast delivered",
		slog.String("type", string(msg.msgType)),
		slog.Int("client_count", len(h.clients)),
		slog.Int("payload_size", len(msg.payload)))
}

// Publish queues an event for every connected client. It never blocks: when
// the queue is full the event is dropped and counted.
func (h *Hub) Publish(ctx context.Context, msgType events.MessageType, data interface{}) {
	message := events.NewMessage(msgType, data, infrastructure.GetTraceID(ctx))
	payload, err := json.Marshal(message)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling event",
			slog.String("type", string(msgType)),
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- envelope{msgType: msgType, payload: payload}:
	default:
		h.mu.Lock()
		h.messagesDropped++
		h.mu.Unlock()
		h.metrics.RecordDroppedMessage(ctx, "broadcast_queue_full")
		h.logger.WarnContext(ctx, "Broadcast queue full, event dropped",
			slog.String("type", string(msgType)))
	}
}

// Register adds a client to the hub. It returns false when the hub has
// stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns current hub counters
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return HubStats{
		ActiveClients:    len(h.clients),
		TotalConnections: h.totalConnections,
		MessagesSent:     h.messagesSent,
		MessagesDropped:  h.messagesDropped,
	}
}

// Stop closes every client and waits for the hub loop to exit
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.stopped = true
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}
