package mq

import "time"

const (
	// Published by the notification-capture and OCR collaborators,
	// consumed by the ingestion worker.
	RoutingKeyIngestRequest = "ingest.request"
	// Published via the outbox for every committed task write,
	// consumed by the live-view fanout.
	RoutingKeyTaskChanged = "task.changed"
)

const (
	TaskActionCreated   = "created"
	TaskActionCompleted = "completed"
)

// IngestRequestPayload carries one raw fragment from a collaborator.
type IngestRequestPayload struct {
	AccountType     string    `json:"account_type"`
	SourceMessageID string    `json:"source_message_id"`
	Subject         *string   `json:"subject,omitempty"`
	Sender          *string   `json:"sender,omitempty"`
	Body            string    `json:"body"`
	SourcePayload   *string   `json:"source_payload,omitempty"`
	ReceivedAt      time.Time `json:"received_at"`
}

// TaskChangedPayload announces a committed task write.
type TaskChangedPayload struct {
	TaskID int64      `json:"task_id"`
	Action string     `json:"action"`
	Bucket string     `json:"bucket,omitempty"`
	Status string     `json:"status"`
	DueAt  *time.Time `json:"due_at,omitempty"`
}
