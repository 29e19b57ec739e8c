package domain

import "time"

// ChatMessage is one message exchanged over the realtime channel or
// returned from the chat history endpoint.
type ChatMessage struct {
	ID          int64     `json:"id,omitempty"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id,omitempty"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
}

// Contact is a roster entry in the messaging view's sidebar.
type Contact struct {
	UserID   int64
	Label    string
	Unread   bool
	LastSeen time.Time
}
