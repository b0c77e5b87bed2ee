package domain

import "time"

const (
	HistoryRoleUser     = "user"
	HistoryRoleResponse = "response"
)

// HistoryEntry is one turn of a chat session, most-recent-last in storage.
type HistoryEntry struct {
	Role      string    `json:"type"`
	Content   string    `json:"content"`
	FileName  string    `json:"file_name,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession groups the conversation history of one user around at most one
// document. Version is an optimistic concurrency counter: writers supply the
// version they read and the store rejects the update when it moved.
type ChatSession struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Name        string         `json:"name"`
	Pinned      bool           `json:"pinned"`
	History     []HistoryEntry `json:"history"`
	DocumentID  string         `json:"document_id,omitempty"`
	Version     int            `json:"version"`
	CreatedAt   time.Time      `json:"created_at"`
	LastUpdated time.Time      `json:"last_updated"`
}
