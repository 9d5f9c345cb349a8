// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the Toolify backend.
//
// Every call acquires a fresh bearer token from the identity provider,
// classifies failures into the Kind taxonomy, and never returns partial
// results alongside an error.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/jeranaias/toolify-tui/internal/auth"
	"github.com/jeranaias/toolify-tui/internal/model"
)

// Configuration constants for the Toolify API.
const (
	// DefaultBaseURL is the hosted backend, used when no override is set.
	DefaultBaseURL = "https://toolify-api.onrender.com"

	// DefaultTimeout is the default timeout for API requests. Manual and
	// TTS generation run LLM chains server-side and can be slow.
	DefaultTimeout = 120 * time.Second

	// MaxResponseSize caps response bodies. TTS audio is the largest
	// expected payload.
	MaxResponseSize = 25 * 1024 * 1024

	// voiceFilename is the multipart filename for recordings. The backend
	// keys container detection off the extension.
	voiceFilename = "recording.mp3"
)

// Shared HTTP client with connection pooling for all Toolify requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Toolify backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     auth.Provider
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewClient creates a client for the given base URL. An empty baseURL
// falls back to the hosted default.
func NewClient(baseURL string, tokens auth.Provider) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
		tokens:     tokens,
		// TTS toggling can burst; keep well under the backend's limits.
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		logger:  log.Default(),
	}
}

// WithHTTPClient sets a custom HTTP client, used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithLogger sets the logger used for request diagnostics.
func (c *Client) WithLogger(l *log.Logger) *Client {
	c.logger = l
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetBaseURL updates the base URL, used for live config reload.
func (c *Client) SetBaseURL(baseURL string) {
	if baseURL != "" {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// =============================================================================
// OPERATIONS
// =============================================================================

// SendMessage posts one chat turn. A 404 here means the vision chain
// found no tool in the attached image.
func (c *Client) SendMessage(ctx context.Context, req SendRequest) (*ChatResponse, error) {
	body, contentType, err := encodeSendRequest(req)
	if err != nil {
		return nil, err
	}

	var resp ChatResponse
	if err := c.post(ctx, "/api/chat", body, contentType, MsgNoToolFound, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetChats fetches the chat history list for the signed-in user.
func (c *Client) GetChats(ctx context.Context) ([]model.ChatSummary, error) {
	var rows []chatSummaryJSON
	if err := c.get(ctx, "/api/chats", MsgChatNotFound, &rows); err != nil {
		return nil, err
	}

	chats := make([]model.ChatSummary, 0, len(rows))
	for _, r := range rows {
		chats = append(chats, r.toModel())
	}
	return chats, nil
}

// GetChatMessages fetches the full transcript of one chat.
func (c *Client) GetChatMessages(ctx context.Context, chatID string) ([]*model.Message, error) {
	var rows []messageJSON
	path := "/api/chats/" + url.PathEscape(chatID) + "/messages"
	if err := c.get(ctx, path, MsgChatNotFound, &rows); err != nil {
		return nil, err
	}

	msgs := make([]*model.Message, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, r.toModel())
	}
	return msgs, nil
}

// GenerateManual requests a tool manual from a name or photo.
func (c *Client) GenerateManual(ctx context.Context, req ManualRequest) (*Manual, error) {
	body, contentType, err := encodeManualRequest(req)
	if err != nil {
		return nil, err
	}

	var manual Manual
	if err := c.post(ctx, "/api/generate-manual", body, contentType, MsgNoToolFound, &manual); err != nil {
		return nil, err
	}
	return &manual, nil
}

// GenerateSafetyGuide requests a safety guide. Fields mirror the manual
// endpoint.
func (c *Client) GenerateSafetyGuide(ctx context.Context, req ManualRequest) (*SafetyGuide, error) {
	body, contentType, err := encodeManualRequest(req)
	if err != nil {
		return nil, err
	}

	var guide SafetyGuide
	if err := c.post(ctx, "/api/generate-safety-guide", body, contentType, MsgNoToolFound, &guide); err != nil {
		return nil, err
	}
	return &guide, nil
}

// GenerateTTS synthesizes speech for a message and returns the raw audio.
func (c *Client) GenerateTTS(ctx context.Context, req TTSRequest) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("text", req.Text); err != nil {
		return nil, transportError(err)
	}
	lang := req.Language
	if lang == "" {
		lang = "en"
	}
	if err := w.WriteField("language", lang); err != nil {
		return nil, transportError(err)
	}
	if req.MessageID != "" {
		if err := w.WriteField("message_id", req.MessageID); err != nil {
			return nil, transportError(err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, transportError(err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/generate-tts", &buf, w.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(resp, MsgChatNotFound)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, transportError(err)
	}
	return audio, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do performs one authenticated request. The token is acquired fresh for
// every call so expiry during a session never strands the client.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, transportError(err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, &Error{Kind: KindAuth, Message: MsgAuthFailed, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, transportError(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "err", err)
		return nil, transportError(err)
	}
	c.logger.Debug("request complete",
		"method", method, "path", path,
		"status", resp.StatusCode, "elapsed", time.Since(start))
	return resp, nil
}

// get performs a GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path, notFoundMsg string, out interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return c.decode(resp, notFoundMsg, out)
}

// post performs a multipart POST and decodes the JSON response into out.
func (c *Client) post(ctx context.Context, path string, body io.Reader, contentType, notFoundMsg string, out interface{}) error {
	resp, err := c.do(ctx, http.MethodPost, path, body, contentType)
	if err != nil {
		return err
	}
	return c.decode(resp, notFoundMsg, out)
}

// decode consumes the response body, classifying non-2xx statuses.
func (c *Client) decode(resp *http.Response, notFoundMsg string, out interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp, notFoundMsg)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return transportError(err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return transportError(err)
	}
	return nil
}

// statusError builds a classified error from a failed response. The body
// is drained and logged but never shown to the user.
func (c *Client) statusError(resp *http.Response, notFoundMsg string) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := classifyStatus(resp.StatusCode, notFoundMsg)
	c.logger.Warn("api error",
		"status", strconv.Itoa(resp.StatusCode),
		"kind", apiErr.Kind.String(),
		"detail", strings.TrimSpace(string(detail)))
	return apiErr
}

// =============================================================================
// MULTIPART ENCODING
// =============================================================================

// encodeSendRequest builds the multipart body for POST /api/chat.
func encodeSendRequest(req SendRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if req.Message != "" {
		if err := w.WriteField("message", req.Message); err != nil {
			return nil, "", transportError(err)
		}
	}
	if req.SessionID != "" {
		if err := w.WriteField("session_id", req.SessionID); err != nil {
			return nil, "", transportError(err)
		}
	}
	if req.File != nil {
		if err := writeFilePart(w, "file", req.File); err != nil {
			return nil, "", err
		}
	}
	if len(req.Voice) > 0 {
		part, err := w.CreateFormFile("voice", voiceFilename)
		if err != nil {
			return nil, "", transportError(err)
		}
		if _, err := part.Write(req.Voice); err != nil {
			return nil, "", transportError(err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", transportError(err)
	}
	return &buf, w.FormDataContentType(), nil
}

// encodeManualRequest builds the multipart body shared by the manual and
// safety-guide endpoints.
func encodeManualRequest(req ManualRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	lang := req.Language
	if lang == "" {
		lang = "en"
	}
	if err := w.WriteField("language", lang); err != nil {
		return nil, "", transportError(err)
	}
	if err := w.WriteField("generate_audio", strconv.FormatBool(req.GenerateAudio)); err != nil {
		return nil, "", transportError(err)
	}
	if req.ToolName != "" {
		if err := w.WriteField("tool_name", req.ToolName); err != nil {
			return nil, "", transportError(err)
		}
	}
	if req.File != nil {
		if err := writeFilePart(w, "file", req.File); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", transportError(err)
	}
	return &buf, w.FormDataContentType(), nil
}

// writeFilePart writes one file upload, carrying the MIME hint when set.
func writeFilePart(w *multipart.Writer, field string, f *FileUpload) error {
	name := f.Name
	if name == "" {
		name = "upload"
	}

	var part io.Writer
	var err error
	if f.MIME != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			`form-data; name="`+field+`"; filename="`+escapeQuotes(name)+`"`)
		h.Set("Content-Type", f.MIME)
		part, err = w.CreatePart(h)
	} else {
		part, err = w.CreateFormFile(field, name)
	}
	if err != nil {
		return transportError(err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return transportError(err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
