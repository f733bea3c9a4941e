package domain

import (
	"context"
	"time"
)

// Message is one chat message between two users.
type Message struct {
	SenderID   string    `json:"senderId" validate:"required"`
	ReceiverID string    `json:"receiverId" validate:"required"`
	Text       string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// Conversation is the server-derived summary of a chat with one partner.
type Conversation struct {
	PartnerID   string    `json:"userId" validate:"required"`
	LastMessage string    `json:"lastMessage"`
	Timestamp   time.Time `json:"timestamp"`
}

// MessageAPI covers the backend's messaging endpoints.
type MessageAPI interface {
	SendMessage(ctx context.Context, senderID, receiverID, text string) error
	ListConversations(ctx context.Context, userID string) ([]*Conversation, error)
	GetChatHistory(ctx context.Context, userID, partnerID string) ([]*Message, error)
}
