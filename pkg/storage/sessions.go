package storage

import (
	"fmt"
	"time"

	"github.com/ZentaChain/messageu-client/pkg/crypto"
)

// SaveSessionKey stores the symmetric key shared with peer, replacing any previous one
func (db *HistoryDB) SaveSessionKey(peerName string, key []byte) error {
	sealed, err := crypto.SealGCM(key, db.encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to seal session key: %w", err)
	}

	_, err = db.db.Exec(`
		INSERT INTO session_keys (peer_name, key, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(peer_name) DO UPDATE SET
			key = excluded.key,
			updated_at = excluded.updated_at
	`, peerName, sealed, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save session key: %v", err)
	}

	return nil
}

// LoadSessionKeys returns every stored session key by peer name
func (db *HistoryDB) LoadSessionKeys() (map[string][]byte, error) {
	rows, err := db.db.Query(`SELECT peer_name, key FROM session_keys`)
	if err != nil {
		return nil, fmt.Errorf("failed to query session keys: %v", err)
	}
	defer rows.Close()

	keys := make(map[string][]byte)
	for rows.Next() {
		var name string
		var sealed []byte
		if err := rows.Scan(&name, &sealed); err != nil {
			return nil, fmt.Errorf("failed to scan session key: %v", err)
		}

		key, err := crypto.OpenGCM(sealed, db.encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to open session key for %s: %w", name, err)
		}
		keys[name] = key
	}

	return keys, rows.Err()
}
