// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestSealRoundTrip(t *testing.T) {
	dir := t.TempDir()
	key, err := loadOrCreateKey(dir)
	if err != nil {
		t.Fatalf("loadOrCreateKey: %v", err)
	}

	blob, err := seal(key, []byte("refresh-token-value"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	plaintext, err := open(key, blob)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(plaintext) != "refresh-token-value" {
		t.Errorf("round trip = %q, want refresh-token-value", plaintext)
	}
}

func TestSealKeyIsStable(t *testing.T) {
	dir := t.TempDir()
	k1, err := loadOrCreateKey(dir)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	k2, err := loadOrCreateKey(dir)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if string(k1) != string(k2) {
		t.Error("key changed between loads")
	}
}

func TestOpenRejectsTamperedBlob(t *testing.T) {
	dir := t.TempDir()
	key, _ := loadOrCreateKey(dir)
	blob, _ := seal(key, []byte("secret"))
	blob[len(blob)-1] ^= 0xff

	if _, err := open(key, blob); !errors.Is(err, ErrSealCorrupt) {
		t.Errorf("open(tampered) = %v, want ErrSealCorrupt", err)
	}
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider("tok-123").WithUser(User{ID: "u1", FirstName: "Ada"})

	tok, err := p.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "tok-123" {
		t.Errorf("Token = %q, want tok-123", tok)
	}

	u, ok := p.CurrentUser()
	if !ok || u.FirstName != "Ada" {
		t.Errorf("CurrentUser = %+v/%v, want Ada/true", u, ok)
	}
}

func TestStaticProviderSignedOut(t *testing.T) {
	p := NewStaticProvider("")
	if _, err := p.Token(context.Background()); !errors.Is(err, ErrSignedOut) {
		t.Errorf("Token with empty token = %v, want ErrSignedOut", err)
	}
}

func TestFileProviderMissingCredentials(t *testing.T) {
	if _, err := NewFileProvider(t.TempDir(), "http://unused"); !errors.Is(err, ErrSignedOut) {
		t.Errorf("NewFileProvider without credentials = %v, want ErrSignedOut", err)
	}
}

func TestFileProviderRefreshAndCache(t *testing.T) {
	var exchanges atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if got := r.Form.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.Form.Get("refresh_token"); got != "long-lived" {
			t.Errorf("refresh_token = %q", got)
		}
		exchanges.Add(1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "short-lived",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	dir := t.TempDir()
	user := User{ID: "u1", FirstName: "Ada"}
	if err := SaveCredentials(dir, "long-lived", user); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}

	p, err := NewFileProvider(dir, srv.URL)
	if err != nil {
		t.Fatalf("NewFileProvider: %v", err)
	}

	for i := 0; i < 3; i++ {
		tok, err := p.Token(context.Background())
		if err != nil {
			t.Fatalf("Token call %d: %v", i, err)
		}
		if tok != "short-lived" {
			t.Errorf("Token = %q, want short-lived", tok)
		}
	}
	if got := exchanges.Load(); got != 1 {
		t.Errorf("token endpoint hit %d times, want 1 (cached)", got)
	}

	if u, ok := p.CurrentUser(); !ok || u.FirstName != "Ada" {
		t.Errorf("CurrentUser = %+v/%v, want Ada/true", u, ok)
	}
}

func TestFileProviderRevokedRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	dir := t.TempDir()
	if err := SaveCredentials(dir, "revoked", User{}); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	p, err := NewFileProvider(dir, srv.URL)
	if err != nil {
		t.Fatalf("NewFileProvider: %v", err)
	}

	if _, err := p.Token(context.Background()); !errors.Is(err, ErrSignedOut) {
		t.Errorf("Token with revoked refresh token = %v, want ErrSignedOut", err)
	}
}
