package vinted

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vintedapi/vinted-go/internal/transport"
)

func TestConversationService_List(t *testing.T) {
	mockExec := new(MockExecutor)
	client := newMockedClient(mockExec)

	response := `{
		"conversations": [
			{"id": 1, "subject": "Blue jacket", "unread": true, "opposite_user_id": 77},
			{"id": 2, "subject": "Leather boots", "unread": false, "opposite_user_id": 88}
		]
	}`

	mockExec.On("Do", mock.Anything, mock.Anything, mock.MatchedBy(func(req *transport.Request) bool {
		return req.Method == "GET" && req.Path == "/api/v2/conversations?page=1&per_page=20"
	}), mock.Anything).Return(response, nil)

	conversations, err := client.Conversations.List(context.Background(), 0, 0)

	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, int64(1), conversations[0].ID)
	assert.Equal(t, "Blue jacket", conversations[0].Subject)
	assert.True(t, conversations[0].Unread)
	assert.Equal(t, int64(88), conversations[1].OppositeID)

	mockExec.AssertExpectations(t)
}

func TestConversationService_Get(t *testing.T) {
	mockExec := new(MockExecutor)
	client := newMockedClient(mockExec)

	response := `{
		"conversation": {
			"id": 42,
			"subject": "Wool scarf",
			"messages": [
				{"id": 100, "body": "Is this still available?", "from_user_id": 77}
			]
		}
	}`

	mockExec.On("Do", mock.Anything, mock.Anything, mock.MatchedBy(func(req *transport.Request) bool {
		return req.Path == "/api/v2/conversations/42"
	}), mock.Anything).Return(response, nil)

	conversation, err := client.Conversations.Get(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, int64(42), conversation.ID)
	require.Len(t, conversation.Messages, 1)
	assert.Equal(t, "Is this still available?", conversation.Messages[0].Body)
	assert.NotEmpty(t, conversation.RawData, "raw payload is kept for pass-through")

	mockExec.AssertExpectations(t)
}

func TestConversationService_Reply(t *testing.T) {
	mockExec := new(MockExecutor)
	client := newMockedClient(mockExec)

	response := `{"message": {"id": 101, "body": "Yes, it is!", "from_user_id": 5}}`

	mockExec.On("Do", mock.Anything, mock.Anything, mock.MatchedBy(func(req *transport.Request) bool {
		if req.Method != "POST" || req.Path != "/api/v2/conversations/42/replies" {
			return false
		}
		body := req.Body.(map[string]interface{})
		reply := body["reply"].(map[string]string)
		return reply["body"] == "Yes, it is!"
	}), mock.Anything).Return(response, nil)

	message, err := client.Conversations.Reply(context.Background(), 42, "Yes, it is!")

	require.NoError(t, err)
	assert.Equal(t, int64(101), message.ID)
	assert.Equal(t, "Yes, it is!", message.Body)

	mockExec.AssertExpectations(t)
}

func TestConversationService_GetMissingPayload(t *testing.T) {
	mockExec := new(MockExecutor)
	client := newMockedClient(mockExec)

	mockExec.On("Do", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(`{}`, nil)

	_, err := client.Conversations.Get(context.Background(), 42)
	assert.Error(t, err)
}
