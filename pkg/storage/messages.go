package storage

import (
	"fmt"
	"time"

	"github.com/ZentaChain/messageu-client/pkg/crypto"
)

// ===== MESSAGE OPERATIONS =====

// SaveMessage stores a message in the database
func (db *HistoryDB) SaveMessage(msg *StoredMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}

	// Encrypt content
	encryptedContent, err := crypto.SealGCM(msg.Content, db.encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt content: %v", err)
	}

	query := `
		INSERT INTO messages (
			peer_id, peer_name, message_id, message_type,
			content, status, is_outgoing, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.db.Exec(
		query,
		msg.PeerID,
		msg.PeerName,
		msg.MessageID,
		msg.MessageType,
		encryptedContent,
		msg.Status,
		boolToInt(msg.IsOutgoing),
		msg.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to save message: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	msg.ID = id
	return nil
}

// GetConversationMessages retrieves messages exchanged with a peer, newest first
func (db *HistoryDB) GetConversationMessages(peerName string, limit, offset int) ([]*StoredMessage, error) {
	query := `
		SELECT id, peer_id, peer_name, message_id, message_type,
		       content, status, is_outgoing, timestamp
		FROM messages
		WHERE peer_name = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.db.Query(query, peerName, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*StoredMessage

	for rows.Next() {
		var msg StoredMessage
		var encryptedContent []byte
		var isOutgoing int

		err := rows.Scan(
			&msg.ID,
			&msg.PeerID,
			&msg.PeerName,
			&msg.MessageID,
			&msg.MessageType,
			&encryptedContent,
			&msg.Status,
			&isOutgoing,
			&msg.Timestamp,
		)
		if err != nil {
			return nil, err
		}

		msg.IsOutgoing = intToBool(isOutgoing)

		// Decrypt content
		msg.Content, err = crypto.OpenGCM(encryptedContent, db.encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt content: %v", err)
		}

		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

// CountMessages returns the number of stored messages for a peer
func (db *HistoryDB) CountMessages(peerName string) (int, error) {
	var n int
	err := db.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE peer_name = ?`, peerName).Scan(&n)
	return n, err
}

// DeleteConversation removes every message exchanged with a peer
func (db *HistoryDB) DeleteConversation(peerName string) error {
	_, err := db.db.Exec(`DELETE FROM messages WHERE peer_name = ?`, peerName)
	return err
}
