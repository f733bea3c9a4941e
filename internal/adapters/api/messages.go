package api

import (
	"context"
	"net/http"

	"confernet/internal/domain"
)

type sendMessageRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

func (c *Client) SendMessage(ctx context.Context, senderID, receiverID, text string) error {
	return c.do(ctx, call{
		op: "send message", method: http.MethodPost, path: "/messages",
		body:     sendMessageRequest{SenderID: senderID, ReceiverID: receiverID, Message: text},
		fallback: "Failed to send message",
	}, nil)
}

func (c *Client) ListConversations(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	var out []*domain.Conversation
	err := c.do(ctx, call{
		op: "list conversations", method: http.MethodGet, path: "/messages" + p(userID, "conversations"),
		fallback: "Failed to fetch conversations",
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := checkAll(c, "list conversations", out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Conversation{}
	}
	return out, nil
}

func (c *Client) GetChatHistory(ctx context.Context, userID, partnerID string) ([]*domain.Message, error) {
	var out []*domain.Message
	err := c.do(ctx, call{
		op: "get chat history", method: http.MethodGet, path: "/messages" + p(userID, partnerID, "history"),
		fallback: "Failed to fetch chat history",
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := checkAll(c, "get chat history", out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Message{}
	}
	return out, nil
}
