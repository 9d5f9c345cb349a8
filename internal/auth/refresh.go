// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	credentialsFilename = "credentials"

	// expirySlack renews tokens slightly before their reported expiry so
	// a token is never stale by the time the request reaches the backend.
	expirySlack = 30 * time.Second

	// defaultTokenTTL is assumed when the provider omits expires_in.
	defaultTokenTTL = 5 * time.Minute
)

// credentials is the sealed on-disk record.
type credentials struct {
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// tokenResponse is the provider's token-endpoint reply.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// FileProvider exchanges a long-lived refresh token, stored sealed under
// the state dir, for short-lived access tokens.
type FileProvider struct {
	tokenURL   string
	httpClient *http.Client

	mu          sync.Mutex
	creds       *credentials
	accessToken string
	expiresAt   time.Time
}

// NewFileProvider loads sealed credentials from dir. Returns ErrSignedOut
// when no credential file exists.
func NewFileProvider(dir, tokenURL string) (*FileProvider, error) {
	blob, err := os.ReadFile(filepath.Join(dir, credentialsFilename))
	if os.IsNotExist(err) {
		return nil, ErrSignedOut
	}
	if err != nil {
		return nil, err
	}

	key, err := loadOrCreateKey(dir)
	if err != nil {
		return nil, err
	}
	plaintext, err := open(key, blob)
	if err != nil {
		return nil, err
	}

	var creds credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, ErrSealCorrupt
	}
	if creds.RefreshToken == "" {
		return nil, ErrSignedOut
	}

	return &FileProvider{
		tokenURL:   tokenURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		creds:      &creds,
	}, nil
}

// SaveCredentials seals and stores a refresh token plus identity under
// dir. Used by the sign-in flow.
func SaveCredentials(dir, refreshToken string, user User) error {
	key, err := loadOrCreateKey(dir)
	if err != nil {
		return err
	}
	plaintext, err := json.Marshal(credentials{
		RefreshToken: refreshToken,
		User:         user,
	})
	if err != nil {
		return err
	}
	blob, err := seal(key, plaintext)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, credentialsFilename), blob, 0o600)
}

// Token returns a currently valid access token, refreshing if the cached
// one is expired or about to expire.
func (p *FileProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.expiresAt.Add(-expirySlack)) {
		return p.accessToken, nil
	}
	return p.refreshLocked(ctx)
}

// CurrentUser returns the stored identity.
func (p *FileProvider) CurrentUser() (User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.creds == nil {
		return User{}, false
	}
	return p.creds.User, p.creds.User.ID != ""
}

// refreshLocked exchanges the refresh token. Caller holds p.mu.
func (p *FileProvider) refreshLocked(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {p.creds.RefreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Refresh token revoked; the user must sign in again.
		return "", ErrSignedOut
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("token endpoint returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", err
	}
	var tr tokenResponse
	if err := json.Unmarshal(data, &tr); err != nil {
		return "", err
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access token")
	}

	ttl := defaultTokenTTL
	if tr.ExpiresIn > 0 {
		ttl = time.Duration(tr.ExpiresIn) * time.Second
	}
	p.accessToken = tr.AccessToken
	p.expiresAt = time.Now().Add(ttl)
	return p.accessToken, nil
}
