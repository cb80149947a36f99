package models

import (
	"time"
)

// Message represents a single turn in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ReminderTimeLayout is the timestamp format used in persisted reminder files
const ReminderTimeLayout = "2006-01-02 15:04:05"

// Reminder represents a scheduled reminder
type Reminder struct {
	Message string
	FireAt  time.Time
}

// SearchResult represents one web search hit
type SearchResult struct {
	Title   string
	Link    string
	Snippet string
}

// CacheEntry represents a cached model answer
type CacheEntry struct {
	Question  string
	Answer    string
	Model     string
	CreatedAt time.Time
}
