package client

import (
	"errors"
	"log"

	"github.com/ZentaChain/messageu-client/pkg/protocol"
	"github.com/ZentaChain/messageu-client/pkg/storage"
)

var ErrNoHistory = errors.New("no history database attached")

// History returns up to limit stored messages exchanged with peer, newest first
func (s *Session) History(peer string, limit int) ([]*storage.StoredMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.history == nil {
		return nil, ErrNoHistory
	}
	return s.history.GetConversationMessages(peer, limit, 0)
}

// Conversations lists the peers with stored messages, most recent first
func (s *Session) Conversations() ([]*storage.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.history == nil {
		return nil, ErrNoHistory
	}
	return s.history.GetConversations()
}

// ClearHistory deletes the stored conversation with peer and returns how
// many messages were removed
func (s *Session) ClearHistory(peer string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.history == nil {
		return 0, ErrNoHistory
	}

	n, err := s.history.CountMessages(peer)
	if err != nil {
		return 0, err
	}
	if err := s.history.DeleteConversation(peer); err != nil {
		return 0, err
	}
	log.Printf("🗑️  Cleared %d stored message(s) with %s", n, peer)
	return n, nil
}

// KnownContacts returns the directory saved by earlier listings, by name
func (s *Session) KnownContacts() ([]*storage.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.history == nil {
		return nil, ErrNoHistory
	}
	return s.history.GetAllContacts()
}

// History writes never fail an operation; problems are only logged.

func (s *Session) recordDirectory(entries []DirectoryEntry) {
	if s.history == nil {
		return
	}

	contacts := make([]*storage.Contact, 0, len(entries))
	for _, e := range entries {
		contacts = append(contacts, &storage.Contact{ClientID: hexID(e.ID), Name: e.Name})
	}
	if err := s.history.SaveDirectory(contacts); err != nil {
		log.Printf("⚠️  Failed to save directory: %v", err)
	}
}

func (s *Session) recordPublicKey(name string, id protocol.ClientID, key []byte) {
	if s.history == nil {
		return
	}

	if err := s.history.SaveContact(&storage.Contact{ClientID: hexID(id), Name: name, PublicKey: key}); err != nil {
		log.Printf("⚠️  Failed to cache public key for %s: %v", name, err)
	}
}

func (s *Session) recordMessage(msg *storage.StoredMessage) {
	if s.history == nil {
		return
	}

	if err := s.history.SaveMessage(msg); err != nil {
		log.Printf("⚠️  Failed to save message: %v", err)
	}
}

func (s *Session) recordSessionKey(peer string, key []byte) {
	if s.history == nil {
		return
	}

	if err := s.history.SaveSessionKey(peer, key); err != nil {
		log.Printf("⚠️  Failed to save session key for %s: %v", peer, err)
	}
}
