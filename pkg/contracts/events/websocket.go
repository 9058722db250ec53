// Package events contains the event contracts pushed to WebSocket clients
// when datasets change.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Dataset lifecycle messages
	MessageTypeDatasetUploaded MessageType = "dataset:uploaded"
	MessageTypeDatasetAnalyzed MessageType = "dataset:analyzed"
	MessageTypeDatasetDeleted  MessageType = "dataset:deleted"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// NewMessage stamps a message of the given type with the current UTC time
func NewMessage(msgType MessageType, data interface{}, traceID string) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      msgType,
			Timestamp: time.Now().UTC(),
			TraceID:   traceID,
		},
		Data: data,
	}
}

// ConnectEvent greets a newly registered client
type ConnectEvent struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	ClientID string `json:"client_id"`
}

// DatasetUploadedEvent announces a dataset added to the registry
type DatasetUploadedEvent struct {
	DatasetID   string `json:"dataset_id"`
	Filename    string `json:"filename"`
	RowCount    int    `json:"row_count"`
	ColumnCount int    `json:"column_count"`
}

// DatasetAnalyzedEvent announces a completed analysis
type DatasetAnalyzedEvent struct {
	DatasetID  string `json:"dataset_id"`
	Summary    string `json:"summary"`
	TrendCount int    `json:"trend_count"`
}

// DatasetDeletedEvent announces a dataset removed from the registry
type DatasetDeletedEvent struct {
	DatasetID string `json:"dataset_id"`
}
