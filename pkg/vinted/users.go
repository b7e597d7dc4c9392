package vinted

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/vintedapi/vinted-go/internal/transport"
)

// userService implements the UserService interface
type userService struct {
	client *Client
}

// Current retrieves the authenticated user
func (s *userService) Current(ctx context.Context) (*User, error) {
	var result struct {
		User *User `json:"user"`
	}

	req := &transport.Request{
		Method: http.MethodGet,
		Path:   "/api/v2/users/current",
	}
	resp, err := s.client.execute(ctx, req, &result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current user")
	}
	if result.User == nil {
		return nil, errors.New("user missing from response")
	}

	result.User.RawData = resp.Body
	return result.User, nil
}
