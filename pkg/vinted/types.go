package vinted

import (
	"encoding/json"

	"github.com/vintedapi/vinted-go/internal/antibot"
	"github.com/vintedapi/vinted-go/internal/auth"
)

// LoginResult is the outcome of a credential submission.
type LoginResult = auth.LoginResult

// PendingTwoFactor is the continuation returned when a login needs a
// second factor. It binds the control code to the carry-forward cookies
// from the first step; pass it back unchanged to VerifyCode.
type PendingTwoFactor = auth.PendingTwoFactor

// Login statuses
const (
	StatusSuccess     = auth.StatusSuccess
	StatusRequires2FA = auth.StatusRequires2FA
	StatusFailed      = auth.StatusFailed
)

// AntiBotCookie is the result of an anti-bot clearance fetch.
type AntiBotCookie = antibot.Cookie

// AntiBotProvider supplies a fresh DataDome clearance cookie on demand.
// Implementations typically drive a real or headless browser and may
// block for tens of seconds.
type AntiBotProvider = antibot.Provider

// AntiBotProviderFunc adapts a function to AntiBotProvider.
type AntiBotProviderFunc = antibot.ProviderFunc

// StaticAntiBotProvider returns a fixed, externally harvested clearance
// value.
type StaticAntiBotProvider = antibot.StaticProvider

// TokenUpdate carries the five token fields accepted by SetTokens. Nil
// means "leave unchanged"; a pointer to the empty string clears the
// stored value. Use String to build the pointers.
type TokenUpdate struct {
	AccessToken  *string
	RefreshToken *string
	SessionToken *string
	AnonID       *string
	DataDome     *string
}

// String returns a pointer to v, for populating TokenUpdate fields.
func String(v string) *string { return &v }

// User represents the authenticated marketplace user
type User struct {
	ID        int64           `json:"id"`
	Login     string          `json:"login"`
	Email     string          `json:"email"`
	ItemCount int             `json:"item_count"`
	Feedback  float64         `json:"feedback_reputation"`
	CountryID int64           `json:"country_id"`
	RawData   json.RawMessage `json:"-"`
}

// Message represents one message inside a conversation
type Message struct {
	ID         int64           `json:"id"`
	Body       string          `json:"body"`
	FromUserID int64           `json:"from_user_id"`
	CreatedAt  string          `json:"created_at"`
	RawData    json.RawMessage `json:"-"`
}

// Conversation represents a message thread with another user
type Conversation struct {
	ID          int64           `json:"id"`
	Subject     string          `json:"subject"`
	Unread      bool            `json:"unread"`
	OppositeID  int64           `json:"opposite_user_id"`
	UpdatedAt   string          `json:"updated_at"`
	Messages    []*Message      `json:"messages,omitempty"`
	RawData     json.RawMessage `json:"-"`
}

// Notification represents an inbox notification
type Notification struct {
	ID        int64           `json:"id"`
	Body      string          `json:"body"`
	Read      bool            `json:"read"`
	Link      string          `json:"link"`
	CreatedAt string          `json:"created_at"`
	RawData   json.RawMessage `json:"-"`
}

// PurchaseParams describes a purchase to create
type PurchaseParams struct {
	ItemID          int64 `json:"item_id"`
	ShipToAddressID int64 `json:"ship_to_address_id,omitempty"`
	PaymentMethodID int64 `json:"payment_method_id,omitempty"`
}

// Purchase represents a created purchase. Checksum is the opaque
// continuation token the next checkout step must echo back.
type Purchase struct {
	ID       string          `json:"id"`
	Status   string          `json:"status"`
	Checksum string          `json:"checksum"`
	RawData  json.RawMessage `json:"-"`
}

// Checkout represents one completed checkout step
type Checkout struct {
	PurchaseID string          `json:"purchase_id"`
	Status     string          `json:"status"`
	Checksum   string          `json:"checksum"`
	RawData    json.RawMessage `json:"-"`
}
