// Package identity defines the identity-provider capability the session
// layer talks to, plus an in-process implementation used by tests and the
// local shell.
package identity

import "context"

// Identity describes the signed-in principal. Token is the provider-minted
// session credential; empty when the provider does not issue tokens.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	Token       string
}

// Store is the identity-provider capability. OnChange registers a callback
// invoked immediately with the current identity (nil when signed out) and
// again on every provider-side change; the returned func unregisters it. The
// immediate delivery lets a subscriber resolve the startup state without
// waiting for a change to happen.
type Store interface {
	CreateAccount(c context.Context, email, password string) (Identity, error)
	Authenticate(c context.Context, email, password string) (Identity, error)
	SignOut(c context.Context) error
	UpdateDisplayName(c context.Context, id, displayName string) error
	SendPasswordReset(c context.Context, email string) error
	OnChange(fn func(*Identity)) (unsubscribe func())
}
