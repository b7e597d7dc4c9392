// Package antibot defines the narrow boundary to whatever procedure
// produces a fresh DataDome clearance cookie, typically a real or headless
// browser driving the challenge page. The procedure itself lives outside
// this module; callers inject an implementation.
package antibot

import (
	"context"

	"github.com/pkg/errors"
)

// Cookie is the result of a clearance fetch.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

// Provider obtains a fresh anti-bot clearance cookie for a target URL.
// Implementations may block for seconds to tens of seconds and manage
// their own timeout and teardown; they are never subject to the
// executor's retry policy.
type Provider interface {
	Fetch(ctx context.Context, targetURL string) (*Cookie, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, targetURL string) (*Cookie, error)

// Fetch implements Provider
func (f ProviderFunc) Fetch(ctx context.Context, targetURL string) (*Cookie, error) {
	return f(ctx, targetURL)
}

// StaticProvider returns a fixed, externally obtained clearance value.
// Useful when the cookie is harvested out of band and injected manually.
type StaticProvider struct {
	Value  string
	Domain string
}

// Fetch implements Provider
func (p *StaticProvider) Fetch(_ context.Context, _ string) (*Cookie, error) {
	if p.Value == "" {
		return nil, errors.New("no clearance cookie configured")
	}
	return &Cookie{
		Name:   "datadome",
		Value:  p.Value,
		Domain: p.Domain,
		Path:   "/",
	}, nil
}
