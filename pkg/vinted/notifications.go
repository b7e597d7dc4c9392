package vinted

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/vintedapi/vinted-go/internal/transport"
)

// notificationService implements the NotificationService interface
type notificationService struct {
	client *Client
}

// List retrieves a page of notifications
func (s *notificationService) List(ctx context.Context, page, perPage int) ([]*Notification, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	var result struct {
		Notifications []*Notification `json:"notifications"`
	}

	req := &transport.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/v2/notifications?page=%d&per_page=%d", page, perPage),
	}
	if _, err := s.client.execute(ctx, req, &result); err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}

	return result.Notifications, nil
}
