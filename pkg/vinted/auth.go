package vinted

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/vintedapi/vinted-go/internal/auth"
)

// authService implements the AuthService interface
type authService struct {
	client     *Client
	controller *auth.Controller
	refresher  *auth.Refresher
}

// Login performs single-shot authentication
func (a *authService) Login(ctx context.Context, username, password string) error {
	return a.controller.Login(ctx, a.client.state, username, password)
}

// LoginWithTOTP performs login with a TOTP secret
func (a *authService) LoginWithTOTP(ctx context.Context, username, password, totpSecret string) error {
	return a.controller.LoginWithTOTP(ctx, a.client.state, username, password, totpSecret)
}

// SubmitCredentials performs the first login step
func (a *authService) SubmitCredentials(ctx context.Context, username, password string) (*LoginResult, *PendingTwoFactor, error) {
	return a.controller.SubmitCredentials(ctx, a.client.state, username, password)
}

// VerifyCode completes a pending two-factor login
func (a *authService) VerifyCode(ctx context.Context, pending *PendingTwoFactor, code string) error {
	return a.controller.VerifyCode(ctx, a.client.state, pending, code)
}

// Refresh exchanges a refresh token for a renewed token set
func (a *authService) Refresh(ctx context.Context, refreshToken string) (map[string]string, error) {
	return a.refresher.Refresh(ctx, a.client.state, refreshToken)
}

// snapshotFile is the on-disk session snapshot format
type snapshotFile struct {
	Domain  string            `json:"domain"`
	Cookies map[string]string `json:"cookies"`
	SavedAt time.Time         `json:"savedAt"`
}

// SaveSnapshot writes the session cookie snapshot to a file with
// restrictive permissions.
func (a *authService) SaveSnapshot(path string) error {
	snap := snapshotFile{
		Domain:  a.client.state.Domain(),
		Cookies: a.client.state.Snapshot(),
		SavedAt: time.Now().UTC(),
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal snapshot")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(err, "failed to create snapshot directory")
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write snapshot file")
	}

	if a.client.options.Logger != nil {
		a.client.options.Logger.Info("session snapshot saved", "path", path)
	}
	return nil
}

// LoadSnapshot restores a session cookie snapshot from a file.
func (a *authService) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.WithMessage(ErrNotAuthenticated, "no snapshot file")
		}
		return errors.Wrap(err, "failed to read snapshot file")
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return errors.Wrap(err, "failed to unmarshal snapshot")
	}

	if snap.Domain != "" && snap.Domain != a.client.state.Domain() {
		return errors.Errorf("snapshot domain %q does not match client domain %q", snap.Domain, a.client.state.Domain())
	}

	a.client.state.SetCookies(snap.Cookies)

	if a.client.options.Logger != nil {
		a.client.options.Logger.Info("session snapshot loaded", "path", path)
	}
	return nil
}
