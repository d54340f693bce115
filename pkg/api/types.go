package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZentaChain/messageu-client/pkg/client"
	"github.com/ZentaChain/messageu-client/pkg/protocol"
)

// ErrorResponse is a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// HealthResponse reports liveness and identity state
type HealthResponse struct {
	Status     string `json:"status"`
	Registered bool   `json:"registered"`
	Name       string `json:"name,omitempty"`
	ClientID   string `json:"clientId,omitempty"`
	Server     string `json:"server"`
}

// RegisterRequest is the body of POST /api/v1/register
type RegisterRequest struct {
	Name string `json:"name" binding:"required"`
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	Success  bool   `json:"success"`
	Name     string `json:"name"`
	ClientID string `json:"clientId"`
	Warning  string `json:"warning,omitempty"`
}

// ClientInfo is one directory entry
type ClientInfo struct {
	Name     string `json:"name"`
	ClientID string `json:"clientId"`
}

// ClientsResponse lists registered clients in server order
type ClientsResponse struct {
	Success bool         `json:"success"`
	Clients []ClientInfo `json:"clients"`
	Count   int          `json:"count"`
}

// PublicKeyResponse carries a peer's raw public key
type PublicKeyResponse struct {
	Success     bool   `json:"success"`
	Name        string `json:"name"`
	PublicKey   string `json:"publicKey"` // base64
	Fingerprint string `json:"fingerprint"`
}

// SendResponse is returned for every envelope accepted by the server
type SendResponse struct {
	Success   bool   `json:"success"`
	To        string `json:"to"`
	MessageID uint32 `json:"messageId"`
}

// SendMessageRequest is the body of POST /api/v1/messages/:name
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// InboxEntry is one decoded inbox record
type InboxEntry struct {
	From      string `json:"from"`
	FromID    string `json:"fromId"`
	MessageID uint32 `json:"messageId"`
	Type      uint8  `json:"type"`
	TypeName  string `json:"typeName"`
	Content   string `json:"content,omitempty"`
	Error     string `json:"error,omitempty"`
}

// InboxResponse is the result of draining the inbox
type InboxResponse struct {
	Success  bool         `json:"success"`
	Messages []InboxEntry `json:"messages"`
	Count    int          `json:"count"`
}

// HistoryEntry is one stored message
type HistoryEntry struct {
	MessageID uint32 `json:"messageId"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	Status    string `json:"status"`
	Outgoing  bool   `json:"outgoing"`
	Timestamp int64  `json:"timestamp"`
}

// HistoryResponse is a stored conversation, newest first
type HistoryResponse struct {
	Success  bool           `json:"success"`
	Peer     string         `json:"peer"`
	Messages []HistoryEntry `json:"messages"`
}

// ClearHistoryResponse reports how many stored messages were deleted
type ClearHistoryResponse struct {
	Success bool   `json:"success"`
	Peer    string `json:"peer"`
	Deleted int    `json:"deleted"`
}

// ConversationInfo summarises one stored conversation
type ConversationInfo struct {
	Peer          string `json:"peer"`
	PeerID        string `json:"peerId"`
	LastMessage   string `json:"lastMessage"`
	LastType      string `json:"lastType"`
	LastOutgoing  bool   `json:"lastOutgoing"`
	LastTimestamp int64  `json:"lastTimestamp"`
	MessageCount  int    `json:"messageCount"`
}

// ConversationsResponse lists stored conversations, most recent first
type ConversationsResponse struct {
	Success       bool               `json:"success"`
	Conversations []ConversationInfo `json:"conversations"`
	Count         int                `json:"count"`
}

// errorStatus maps the client error taxonomy onto HTTP status codes
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, protocol.ErrUnknownPeer):
		return http.StatusNotFound, "unknown_peer"
	case errors.Is(err, protocol.ErrNoSessionKey):
		return http.StatusConflict, "no_session_key"
	case errors.Is(err, protocol.ErrAlreadyRegistered):
		return http.StatusConflict, "already_registered"
	case errors.Is(err, protocol.ErrNotRegistered):
		return http.StatusConflict, "not_registered"
	case errors.Is(err, protocol.ErrInvalidName):
		return http.StatusBadRequest, "invalid_name"
	case errors.Is(err, protocol.ErrKeyFormat):
		return http.StatusUnprocessableEntity, "key_format"
	case errors.Is(err, protocol.ErrProtocol):
		return http.StatusBadGateway, "protocol_error"
	case errors.Is(err, protocol.ErrTransport):
		return http.StatusServiceUnavailable, "transport_error"
	case errors.Is(err, protocol.ErrMalformedFrame):
		return http.StatusServiceUnavailable, "malformed_frame"
	case errors.Is(err, client.ErrNoHistory):
		return http.StatusNotFound, "history_disabled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func respondError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	c.JSON(status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    code,
	})
}
