package types

import "time"

// SnapshotEvent is pushed to dashboard clients when a table snapshot changes
type SnapshotEvent struct {
	Type      string    `json:"type"` // "snapshot_refreshed"
	Table     TableName `json:"table"`
	Rows      int       `json:"rows"`
	Timestamp time.Time `json:"timestamp"`
}

// EventSnapshotRefreshed is the SnapshotEvent type for a successful refresh
const EventSnapshotRefreshed = "snapshot_refreshed"

// ClientMessage is sent by dashboard clients to narrow the notices they receive
type ClientMessage struct {
	Action string      `json:"action"` // "subscribe" or "unsubscribe"
	Tables []TableName `json:"tables"`
}

const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)
