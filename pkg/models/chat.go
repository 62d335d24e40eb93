package models

import "time"

// Conversation is a support ticket between the company and platform admins
type Conversation struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Category      string     `json:"category,omitempty"`
	Status        string     `json:"status"` // open, in_progress, closed
	UnreadCount   int        `json:"unread_count"`
	LastMessage   string     `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	Messages      []Message  `json:"messages,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Message is one chat message
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderType     string    `json:"sender_type"` // company, admin
	Body           string    `json:"message"`
	AttachmentURL  string    `json:"attachment_url,omitempty"`
	AttachmentType string    `json:"attachment_type,omitempty"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewConversation is the POST /company/chat/conversations payload
type NewConversation struct {
	Title    string `json:"title" validate:"required,min=3,max=200"`
	Category string `json:"category" validate:"required,oneof=account payment job technical other"`
	Message  string `json:"message" validate:"required"`
}
