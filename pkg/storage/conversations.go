package storage

import (
	"fmt"

	"github.com/ZentaChain/messageu-client/pkg/crypto"
)

// previewLength caps the last-message preview
const previewLength = 100

// Conversation summarises the messages exchanged with one peer
type Conversation struct {
	PeerName      string
	PeerID        string
	LastMessage   string // preview of the newest stored message
	LastType      uint8
	LastOutgoing  bool
	LastTimestamp int64
	MessageCount  int
}

// ===== CONVERSATION OPERATIONS =====

// GetConversations returns one summary per peer, most recent first
func (db *HistoryDB) GetConversations() ([]*Conversation, error) {
	query := `
		SELECT m.peer_name, m.peer_id, m.message_type, m.content,
		       m.is_outgoing, m.timestamp, c.total
		FROM messages m
		JOIN (
			SELECT peer_name, MAX(id) AS last_id, COUNT(*) AS total
			FROM messages
			GROUP BY peer_name
		) c ON m.id = c.last_id
		ORDER BY m.timestamp DESC, m.id DESC
	`

	rows, err := db.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []*Conversation

	for rows.Next() {
		var conv Conversation
		var encryptedContent []byte
		var isOutgoing int

		err := rows.Scan(
			&conv.PeerName,
			&conv.PeerID,
			&conv.LastType,
			&encryptedContent,
			&isOutgoing,
			&conv.LastTimestamp,
			&conv.MessageCount,
		)
		if err != nil {
			return nil, err
		}

		content, err := crypto.OpenGCM(encryptedContent, db.encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt content: %v", err)
		}

		conv.LastMessage = preview(string(content))
		conv.LastOutgoing = intToBool(isOutgoing)

		conversations = append(conversations, &conv)
	}

	return conversations, rows.Err()
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewLength {
		return string(runes[:previewLength]) + "..."
	}
	return text
}
