package vinted

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/vintedapi/vinted-go/internal/session"
	"github.com/vintedapi/vinted-go/internal/transport"
)

// MockExecutor is a mock of the Executor interface. Expectations return a
// canned JSON body (string) and an error; the body is decoded into the
// caller's result the way the real executor would.
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Do(ctx context.Context, state *session.State, req *transport.Request, result interface{}) (*transport.Response, error) {
	args := m.Called(ctx, state, req, result)

	if err := args.Error(1); err != nil {
		return nil, err
	}

	body := args.String(0)
	if result != nil && body != "" {
		if err := json.Unmarshal([]byte(body), result); err != nil {
			return nil, err
		}
	}
	return &transport.Response{
		StatusCode: 200,
		Body:       []byte(body),
	}, nil
}

func (m *MockExecutor) BaseURL() string {
	return "https://api.test"
}

// newMockedClient builds a client wired to a mock executor, bypassing
// NewClient so no network-facing pieces exist.
func newMockedClient(exec Executor) *Client {
	c := &Client{
		baseURL:  "https://api.test",
		executor: exec,
		state:    session.New(session.Config{UserAgent: "vinted-go-test/1.0", Domain: "fr"}),
		options:  &ClientOptions{UserAgent: "vinted-go-test/1.0", Domain: "fr"},
	}
	c.initServices(nil)
	return c
}
