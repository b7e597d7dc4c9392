package vinted

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/vintedapi/vinted-go/internal/transport"
)

// conversationService implements the ConversationService interface
type conversationService struct {
	client *Client
}

// List retrieves a page of conversations
func (s *conversationService) List(ctx context.Context, page, perPage int) ([]*Conversation, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	var result struct {
		Conversations []*Conversation `json:"conversations"`
	}

	req := &transport.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/v2/conversations?page=%d&per_page=%d", page, perPage),
	}
	if _, err := s.client.execute(ctx, req, &result); err != nil {
		return nil, errors.Wrap(err, "failed to list conversations")
	}

	return result.Conversations, nil
}

// Get retrieves a single conversation with its messages
func (s *conversationService) Get(ctx context.Context, conversationID int64) (*Conversation, error) {
	var result struct {
		Conversation *Conversation `json:"conversation"`
	}

	req := &transport.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/v2/conversations/%d", conversationID),
	}
	resp, err := s.client.execute(ctx, req, &result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get conversation")
	}
	if result.Conversation == nil {
		return nil, errors.New("conversation missing from response")
	}

	result.Conversation.RawData = resp.Body
	return result.Conversation, nil
}

// Reply posts a message to a conversation
func (s *conversationService) Reply(ctx context.Context, conversationID int64, body string) (*Message, error) {
	var result struct {
		Message *Message `json:"message"`
	}

	req := &transport.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/v2/conversations/%d/replies", conversationID),
		Body: map[string]interface{}{
			"reply": map[string]string{"body": body},
		},
	}
	resp, err := s.client.execute(ctx, req, &result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reply to conversation")
	}
	if result.Message == nil {
		return nil, errors.New("message missing from response")
	}

	result.Message.RawData = resp.Body
	return result.Message, nil
}
