package vinted

import (
	"context"

	"github.com/vintedapi/vinted-go/internal/session"
	"github.com/vintedapi/vinted-go/internal/transport"
)

// AuthService drives the login state machine and the refresh protocol
type AuthService interface {
	// Login performs single-shot authentication. It returns
	// ErrTwoFactorRequired when the account has a second factor enabled;
	// use SubmitCredentials and VerifyCode in that case.
	Login(ctx context.Context, username, password string) error

	// LoginWithTOTP performs login, generating the second-factor code from
	// a TOTP secret when one is demanded
	LoginWithTOTP(ctx context.Context, username, password, totpSecret string) error

	// SubmitCredentials performs the first login step. A nil
	// PendingTwoFactor means the login completed without a second factor.
	SubmitCredentials(ctx context.Context, username, password string) (*LoginResult, *PendingTwoFactor, error)

	// VerifyCode completes a pending two-factor login
	VerifyCode(ctx context.Context, pending *PendingTwoFactor, code string) error

	// Refresh exchanges a refresh token for a renewed token set and
	// applies it to the session. An empty token uses the stored one.
	// Returns the full applied cookie map.
	Refresh(ctx context.Context, refreshToken string) (map[string]string, error)

	// SaveSnapshot writes the session cookie snapshot to a file
	SaveSnapshot(path string) error

	// LoadSnapshot restores a session cookie snapshot from a file
	LoadSnapshot(path string) error
}

// ConversationService handles the message inbox
type ConversationService interface {
	// List retrieves a page of conversations
	List(ctx context.Context, page, perPage int) ([]*Conversation, error)

	// Get retrieves a single conversation with its messages
	Get(ctx context.Context, conversationID int64) (*Conversation, error)

	// Reply posts a message to a conversation
	Reply(ctx context.Context, conversationID int64, body string) (*Message, error)
}

// NotificationService handles inbox notifications
type NotificationService interface {
	// List retrieves a page of notifications
	List(ctx context.Context, page, perPage int) ([]*Notification, error)
}

// PaymentService handles purchases and checkout steps
type PaymentService interface {
	// CreatePurchase starts a purchase for an item
	CreatePurchase(ctx context.Context, params *PurchaseParams) (*Purchase, error)

	// SubmitCheckout advances a purchase one checkout step, echoing the
	// checksum from the previous step
	SubmitCheckout(ctx context.Context, purchaseID, checksum string) (*Checkout, error)
}

// UserService handles user lookups
type UserService interface {
	// Current retrieves the authenticated user
	Current(ctx context.Context) (*User, error)
}

// RateLimiter interface for rate limiting
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Executor issues classified HTTP calls against the API
type Executor interface {
	Do(ctx context.Context, state *session.State, req *transport.Request, result interface{}) (*transport.Response, error)
	BaseURL() string
}
