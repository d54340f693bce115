package api

import (
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ZentaChain/messageu-client/pkg/crypto"
	"github.com/ZentaChain/messageu-client/pkg/protocol"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// handleHealth handles GET /health
func (s *Server) handleHealth(c *gin.Context) {
	resp := HealthResponse{
		Status:     "ok",
		Registered: s.session.Registered(),
		Server:     s.session.ServerAddr(),
	}
	if resp.Registered {
		id := s.session.ID()
		resp.Name = s.session.Name()
		resp.ClientID = hex.EncodeToString(id[:])
	}

	c.JSON(http.StatusOK, resp)
}

// handleRegister handles POST /api/v1/register
func (s *Server) handleRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	if err := protocol.ValidateName(req.Name); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid name",
			Message: err.Error(),
			Code:    "invalid_name",
		})
		return
	}

	id, err := s.session.Register(c.Request.Context(), req.Name)
	if err != nil && id.IsZero() {
		respondError(c, err)
		return
	}

	resp := RegisterResponse{
		Success:  true,
		Name:     s.session.Name(),
		ClientID: hex.EncodeToString(id[:]),
	}
	if err != nil {
		// registered with the server but the credentials file could not be written
		resp.Warning = err.Error()
	}

	c.JSON(http.StatusOK, resp)
}

// handleListClients handles GET /api/v1/clients
func (s *Server) handleListClients(c *gin.Context) {
	entries, err := s.session.ListClients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	clients := make([]ClientInfo, 0, len(entries))
	for _, e := range entries {
		clients = append(clients, ClientInfo{Name: e.Name, ClientID: hex.EncodeToString(e.ID[:])})
	}

	c.JSON(http.StatusOK, ClientsResponse{
		Success: true,
		Clients: clients,
		Count:   len(clients),
	})
}

// handlePublicKey handles GET /api/v1/clients/:name/publickey
func (s *Server) handlePublicKey(c *gin.Context) {
	name := c.Param("name")

	key, err := s.session.GetPublicKey(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PublicKeyResponse{
		Success:     true,
		Name:        name,
		PublicKey:   base64.StdEncoding.EncodeToString(key),
		Fingerprint: crypto.Fingerprint(key),
	})
}

// handleSendKey handles POST /api/v1/keys/:name
func (s *Server) handleSendKey(c *gin.Context) {
	name := c.Param("name")

	msgID, err := s.session.ExchangeKey(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SendResponse{Success: true, To: name, MessageID: msgID})
}

// handleRequestKey handles POST /api/v1/keys/:name/request
func (s *Server) handleRequestKey(c *gin.Context) {
	name := c.Param("name")

	msgID, err := s.session.RequestSymmetricKey(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SendResponse{Success: true, To: name, MessageID: msgID})
}

// handleSendMessage handles POST /api/v1/messages/:name
func (s *Server) handleSendMessage(c *gin.Context) {
	name := c.Param("name")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	msgID, err := s.session.SendMessage(c.Request.Context(), name, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SendResponse{Success: true, To: name, MessageID: msgID})
}

// handleFetchMessages handles GET /api/v1/messages
func (s *Server) handleFetchMessages(c *gin.Context) {
	messages, err := s.session.FetchMessages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	entries := make([]InboxEntry, 0, len(messages))
	for _, m := range messages {
		entry := InboxEntry{
			From:      m.FromName,
			FromID:    hex.EncodeToString(m.From[:]),
			MessageID: m.MessageID,
			Type:      m.Type,
			TypeName:  protocol.MessageTypeName(m.Type),
			Content:   m.Content,
		}
		if m.Err != nil {
			entry.Error = m.Err.Error()
		}
		entries = append(entries, entry)
	}

	c.JSON(http.StatusOK, InboxResponse{
		Success:  true,
		Messages: entries,
		Count:    len(entries),
	})
}

// handleConversations handles GET /api/v1/history
func (s *Server) handleConversations(c *gin.Context) {
	conversations, err := s.session.Conversations()
	if err != nil {
		respondError(c, err)
		return
	}

	infos := make([]ConversationInfo, 0, len(conversations))
	for _, conv := range conversations {
		infos = append(infos, ConversationInfo{
			Peer:          conv.PeerName,
			PeerID:        conv.PeerID,
			LastMessage:   conv.LastMessage,
			LastType:      protocol.MessageTypeName(conv.LastType),
			LastOutgoing:  conv.LastOutgoing,
			LastTimestamp: conv.LastTimestamp,
			MessageCount:  conv.MessageCount,
		})
	}

	c.JSON(http.StatusOK, ConversationsResponse{
		Success:       true,
		Conversations: infos,
		Count:         len(infos),
	})
}

// handleHistory handles GET /api/v1/history/:name?limit=N
func (s *Server) handleHistory(c *gin.Context) {
	name := c.Param("name")

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid limit",
				Message: "limit must be a positive number",
			})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	stored, err := s.session.History(name, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	entries := make([]HistoryEntry, 0, len(stored))
	for _, m := range stored {
		entries = append(entries, HistoryEntry{
			MessageID: m.MessageID,
			Type:      protocol.MessageTypeName(m.MessageType),
			Content:   string(m.Content),
			Status:    string(m.Status),
			Outgoing:  m.IsOutgoing,
			Timestamp: m.Timestamp,
		})
	}

	c.JSON(http.StatusOK, HistoryResponse{
		Success:  true,
		Peer:     name,
		Messages: entries,
	})
}

// handleClearHistory handles DELETE /api/v1/history/:name
func (s *Server) handleClearHistory(c *gin.Context) {
	name := c.Param("name")

	n, err := s.session.ClearHistory(name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ClearHistoryResponse{Success: true, Peer: name, Deleted: n})
}
