package client

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ZentaChain/messageu-client/pkg/crypto"
	"github.com/ZentaChain/messageu-client/pkg/network"
	"github.com/ZentaChain/messageu-client/pkg/protocol"
	"github.com/ZentaChain/messageu-client/pkg/storage"
)

// CredentialStore persists the identity created by registration
type CredentialStore interface {
	Exists() bool
	Load() (*storage.Credentials, error)
	Save(creds *storage.Credentials) error
}

// Config configures a Session
type Config struct {
	// ServerAddr is the host:port of the MessageU server
	ServerAddr string

	// Transport defaults to a TCPTransport without timeouts
	Transport network.Transport

	// Credentials is optional; without it nothing is persisted and
	// registration is only gated by the in-memory state
	Credentials CredentialStore

	// PrivateKey is generated when nil and no credentials exist
	PrivateKey *rsa.PrivateKey
}

// Session is one client identity talking to one server.
//
// Every operation holds the session lock for its whole duration, so at most
// one request is in flight and the directory and key slots never race.
type Session struct {
	mu sync.Mutex

	serverAddr  string
	transport   network.Transport
	credentials CredentialStore
	history     *storage.HistoryDB

	// Identity
	id         protocol.ClientID
	name       string
	registered bool
	privateKey *rsa.PrivateKey
	publicKey  []byte // X.509 DER

	directory   *Directory
	sessionKeys map[string][]byte // peer name -> AES key
}

// New creates a session. If the credential store already holds an identity it
// is loaded and the session starts out registered.
func New(cfg Config) (*Session, error) {
	if cfg.ServerAddr == "" {
		return nil, errors.New("server address required")
	}

	s := &Session{
		serverAddr:  cfg.ServerAddr,
		transport:   cfg.Transport,
		credentials: cfg.Credentials,
		directory:   NewDirectory(),
		sessionKeys: make(map[string][]byte),
	}
	if s.transport == nil {
		s.transport = network.NewTCPTransport(0, 0)
	}

	key := cfg.PrivateKey
	if s.credentials != nil && s.credentials.Exists() {
		creds, err := s.credentials.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load credentials: %w", err)
		}
		key = creds.PrivateKey
		s.id = creds.ID
		s.name = creds.Name
		s.registered = true
		log.Printf("🔑 Loaded identity %s (%x)", creds.Name, creds.ID[:4])
	}

	if key == nil {
		var err error
		key, err = crypto.GenerateRSAKeyPair()
		if err != nil {
			return nil, fmt.Errorf("failed to generate key pair: %w", err)
		}
	}

	if err := s.setKey(key); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Session) setKey(key *rsa.PrivateKey) error {
	der, err := crypto.ExportPublicKey(&key.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to export public key: %w", err)
	}
	s.privateKey = key
	s.publicKey = der
	return nil
}

// AttachHistory attaches a history database for persistence and restores
// the session keys saved by earlier runs
func (s *Session) AttachHistory(db *storage.HistoryDB) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = db

	keys, err := db.LoadSessionKeys()
	if err != nil {
		log.Printf("⚠️  Failed to restore session keys: %v", err)
		return
	}
	for peer, key := range keys {
		if _, ok := s.sessionKeys[peer]; !ok {
			s.sessionKeys[peer] = key
		}
	}
	if len(keys) > 0 {
		log.Printf("🔐 Restored %d session key(s)", len(keys))
	}
}

// ID returns the server-assigned id (zero before registration)
func (s *Session) ID() protocol.ClientID {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.id
}

// Name returns the registered display name
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.name
}

// Registered reports whether this session has an id
func (s *Session) Registered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.registered
}

// PublicKey returns the local public key as X.509 DER
func (s *Session) PublicKey() []byte {
	return append([]byte(nil), s.publicKey...)
}

// ServerAddr returns the server this session talks to
func (s *Session) ServerAddr() string {
	return s.serverAddr
}

// PrivateKeyDER returns the PKCS#1 encoding of the local private key,
// used as secret material for the history database
func (s *Session) PrivateKeyDER() []byte {
	return x509.MarshalPKCS1PrivateKey(s.privateKey)
}

// Directory returns the last fetched listing in server order
func (s *Session) Directory() []DirectoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.directory.Entries()
}

// HasSessionKey reports whether a symmetric key is established with peer
func (s *Session) HasSessionKey(peer string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessionKeys[peer]
	return ok
}

// installSessionKey replaces the key slot for peer
func (s *Session) installSessionKey(peer string, key []byte) {
	s.sessionKeys[peer] = key
	s.recordSessionKey(peer, key)
}

// roundTrip sends one request frame and decodes the response frame
func (s *Session) roundTrip(ctx context.Context, code uint16, payload []byte) (*protocol.Response, error) {
	frame := protocol.EncodeRequest(s.id[:], protocol.ClientVersion, code, payload)

	raw, err := s.transport.RoundTrip(ctx, s.serverAddr, frame)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", protocol.RequestName(code), err)
	}

	resp, err := protocol.DecodeResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", protocol.RequestName(code), err)
	}

	return resp, nil
}

func (s *Session) requireRegistered() error {
	if !s.registered {
		return protocol.ErrNotRegistered
	}
	return nil
}
