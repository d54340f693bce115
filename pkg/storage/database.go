package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ZentaChain/messageu-client/pkg/crypto"
)

// historySalt separates the history key from any other use of the secret
const historySalt = "messageu-history-v1"

// MessageStatus records what happened to a message
type MessageStatus string

const (
	MessageStatusQueued   MessageStatus = "queued"   // accepted by the server (2103)
	MessageStatusReceived MessageStatus = "received" // drained and decoded
	MessageStatusFailed   MessageStatus = "failed"   // drained but could not be decoded
)

// HistoryDB keeps a local, encrypted record of contacts and messages
type HistoryDB struct {
	db            *sql.DB
	encryptionKey []byte // Derived from the local private key
}

// StoredMessage represents a message in the database
type StoredMessage struct {
	ID          int64
	PeerID      string // hex client id
	PeerName    string
	MessageID   uint32
	MessageType uint8
	Content     []byte
	Status      MessageStatus
	IsOutgoing  bool
	Timestamp   int64
}

// Contact represents a directory entry seen by this client
type Contact struct {
	ClientID  string // hex client id
	Name      string
	PublicKey []byte
	AddedAt   int64
	LastSeen  int64
}

// NewHistoryDB opens (or creates) the history database.
// secret is the local private key DER; message bodies are sealed with a key derived from it.
func NewHistoryDB(dbPath string, secret []byte) (*HistoryDB, error) {
	encryptionKey := crypto.DeriveStorageKey(secret, historySalt)

	// Open SQLite database
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %v", err)
	}

	hdb := &HistoryDB{
		db:            db,
		encryptionKey: encryptionKey,
	}

	// Initialize schema
	if err := hdb.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return hdb, nil
}

// initSchema creates database tables
func (db *HistoryDB) initSchema() error {
	schema := `
	-- Messages table
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		peer_id TEXT NOT NULL,
		peer_name TEXT NOT NULL,
		message_id INTEGER NOT NULL DEFAULT 0,
		message_type INTEGER NOT NULL,
		content BLOB NOT NULL,
		status TEXT NOT NULL,
		is_outgoing INTEGER NOT NULL,
		timestamp INTEGER NOT NULL
	);

	-- Contacts table
	CREATE TABLE IF NOT EXISTS contacts (
		client_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		public_key BLOB,
		added_at INTEGER NOT NULL,
		last_seen INTEGER NOT NULL
	);

	-- Session keys table (sealed like message bodies)
	CREATE TABLE IF NOT EXISTS session_keys (
		peer_name TEXT PRIMARY KEY,
		key BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_messages_peer ON messages(peer_name, timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);
	`

	_, err := db.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %v", err)
	}

	return nil
}

// Close closes the database connection
func (db *HistoryDB) Close() error {
	return db.db.Close()
}
