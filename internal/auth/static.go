// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import "context"

// StaticProvider serves a fixed token. It backs the TOOLIFY_TOKEN escape
// hatch and tests.
type StaticProvider struct {
	token string
	user  User
}

// NewStaticProvider creates a provider around a fixed token.
func NewStaticProvider(token string) *StaticProvider {
	return &StaticProvider{token: token}
}

// WithUser attaches an identity to the static provider.
func (p *StaticProvider) WithUser(u User) *StaticProvider {
	p.user = u
	return p
}

// Token returns the fixed token, or ErrSignedOut when empty.
func (p *StaticProvider) Token(ctx context.Context) (string, error) {
	if p.token == "" {
		return "", ErrSignedOut
	}
	return p.token, nil
}

// CurrentUser returns the attached identity, if any.
func (p *StaticProvider) CurrentUser() (User, bool) {
	return p.user, p.user.ID != ""
}
