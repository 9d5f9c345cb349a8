// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// Kind classifies an API failure into the categories the UI reacts to.
type Kind int

const (
	// KindTransport covers network failures: unreachable host, timeout,
	// DNS, connection reset. Also the fallback for unrecognized statuses.
	KindTransport Kind = iota

	// KindAuth is an HTTP 401: missing, expired, or invalid token.
	KindAuth

	// KindValidation is an HTTP 400: the request was malformed.
	KindValidation

	// KindNotFound is an HTTP 404. The meaning is endpoint-specific:
	// a missing chat on the history endpoints, no tool detected on chat.
	KindNotFound

	// KindForbidden is an HTTP 403: the chat belongs to someone else.
	KindForbidden

	// KindServer is an HTTP 500.
	KindServer

	// KindPermission is a local capability failure, e.g. microphone
	// access denied. Never produced by the HTTP layer itself.
	KindPermission
)

// String returns the classification name.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindServer:
		return "server"
	case KindPermission:
		return "permission"
	default:
		return "unknown"
	}
}

// User-facing messages for each classification. These are the exact
// strings shown in the transcript when a foreground action fails.
const (
	MsgAuthFailed     = "Authentication failed. Please sign in again."
	MsgInvalidRequest = "Invalid request. Please check your input."
	MsgServerError    = "Server error. Please try again later."
	MsgNetworkError   = "Network error. Please check your connection."
	MsgChatNotFound   = "Chat not found."
	MsgChatForbidden  = "You do not have access to this chat."
	MsgNoToolFound    = "No tool found in the image."
	MsgMicDenied      = "Microphone access denied. Please allow recording and try again."
)

// Error represents a classified failure from the Toolify API.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 for transport failures
	Message string // user-facing text
	Cause   error  // underlying error, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api error [%s] (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api error [%s]: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage extracts the user-facing text from any error. Unclassified
// errors fall back to the generic network message so the transcript never
// shows internals.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return MsgNetworkError
}

// KindOf returns the classification of an error, or KindTransport when
// the error did not come from this package.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransport
}

// IsAuth reports whether the error is an authentication failure.
func IsAuth(err error) bool {
	return isKind(err, KindAuth)
}

// IsNotFound reports whether the error is a not-found classification.
func IsNotFound(err error) bool {
	return isKind(err, KindNotFound)
}

// IsTransport reports whether the error is a network-level failure.
func IsTransport(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == KindTransport
	}
	// Anything unclassified reaching the UI is treated as transport.
	return err != nil
}

func isKind(err error, k Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == k
}

// transportError wraps a network-level failure.
func transportError(cause error) *Error {
	return &Error{
		Kind:    KindTransport,
		Message: MsgNetworkError,
		Cause:   cause,
	}
}

// classifyStatus maps a non-2xx HTTP status to a classified error.
// notFoundMsg carries the endpoint-specific 404 meaning.
func classifyStatus(status int, notFoundMsg string) *Error {
	switch status {
	case 401:
		return &Error{Kind: KindAuth, Status: status, Message: MsgAuthFailed}
	case 400:
		return &Error{Kind: KindValidation, Status: status, Message: MsgInvalidRequest}
	case 404:
		return &Error{Kind: KindNotFound, Status: status, Message: notFoundMsg}
	case 403:
		return &Error{Kind: KindForbidden, Status: status, Message: MsgChatForbidden}
	case 500:
		return &Error{Kind: KindServer, Status: status, Message: MsgServerError}
	default:
		return &Error{Kind: KindTransport, Status: status, Message: MsgNetworkError}
	}
}
