// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth supplies bearer tokens for the Toolify API.
//
// Identity lives with an external provider; this package only exchanges
// and caches credentials. The chat UI works read-only when signed out.
package auth

import (
	"context"
	"errors"
)

// ErrSignedOut indicates no credentials are available.
var ErrSignedOut = errors.New("not signed in")

// User is the identity reported by the provider.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

// Provider supplies short-lived access tokens.
//
// Token must return a token that is valid at the time of the call;
// implementations refresh internally as needed. The API client calls it
// once per request.
type Provider interface {
	// Token returns a currently valid bearer token, or ErrSignedOut.
	Token(ctx context.Context) (string, error)

	// CurrentUser returns the signed-in identity if known.
	CurrentUser() (User, bool)
}
