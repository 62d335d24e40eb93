package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/justformeokay/Karir-Nusantara-Company-sub000/internal/params"
	"github.com/justformeokay/Karir-Nusantara-Company-sub000/pkg/models"
)

const chatBase = "/company/chat/conversations"

// Conversations lists support conversations (param: status)
func (c *Client) Conversations(ctx context.Context, p params.Params) ([]models.Conversation, error) {
	var out []models.Conversation
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: chatBase, Query: p}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Conversation fetches one conversation with its messages
func (c *Client) Conversation(ctx context.Context, id int64) (*models.Conversation, error) {
	out := &models.Conversation{}
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: conversationPath(id)}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateConversation opens a new support conversation
func (c *Client) CreateConversation(ctx context.Context, in models.NewConversation) (*models.Conversation, error) {
	out := &models.Conversation{}
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: chatBase, Body: in}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendMessage posts a text message to a conversation
func (c *Client) SendMessage(ctx context.Context, conversationID int64, body string) (*models.Message, error) {
	out := &models.Message{}
	req := Request{
		Method: http.MethodPost,
		Path:   conversationPath(conversationID) + "/messages",
		Body:   map[string]string{"message": body},
	}
	if err := c.Do(ctx, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadAttachment posts a file message to a conversation
func (c *Client) UploadAttachment(ctx context.Context, conversationID int64, path, caption string) (*models.Message, error) {
	out := &models.Message{}
	fields := map[string]string{"message": caption}
	err := c.Upload(ctx, conversationPath(conversationID)+"/upload", fields, FileField{Name: "file", Path: path}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func conversationPath(id int64) string {
	return fmt.Sprintf("%s/%d", chatBase, id)
}
