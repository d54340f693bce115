package client

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/ZentaChain/messageu-client/pkg/protocol"
	"github.com/ZentaChain/messageu-client/pkg/storage"
)

// ===== REGISTRATION =====

// Register asks the server for a new id under name.
// Only one identity may exist per installation: the call is refused without
// contacting the server when this session or the credential store already has one.
func (s *Session) Register(ctx context.Context, name string) (protocol.ClientID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registered || (s.credentials != nil && s.credentials.Exists()) {
		return protocol.ClientID{}, protocol.ErrAlreadyRegistered
	}
	if err := protocol.ValidateName(name); err != nil {
		return protocol.ClientID{}, err
	}

	payload, err := protocol.EncodeRegistration(name, s.publicKey)
	if err != nil {
		return protocol.ClientID{}, err
	}

	resp, err := s.roundTrip(ctx, protocol.RequestRegister, payload)
	if err != nil {
		return protocol.ClientID{}, err
	}
	if err := protocol.ExpectCode("register", resp, protocol.ResponseRegistered); err != nil {
		return protocol.ClientID{}, err
	}

	id, err := protocol.DecodeRegistered(resp.Payload)
	if err != nil {
		return protocol.ClientID{}, err
	}

	s.id = id
	s.name = name
	s.registered = true

	log.Printf("✓ Registered as %s (%x)", s.name, id)

	if s.credentials != nil {
		creds := &storage.Credentials{Name: s.name, ID: id, PrivateKey: s.privateKey}
		if err := s.credentials.Save(creds); err != nil {
			return id, fmt.Errorf("registered but failed to save credentials: %w", err)
		}
	}

	return id, nil
}

// ===== DIRECTORY =====

// ListClients fetches the registered clients and replaces the local directory.
// Entries are returned in server order.
func (s *Session) ListClients(ctx context.Context) ([]DirectoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listClientsLocked(ctx)
}

func (s *Session) listClientsLocked(ctx context.Context) ([]DirectoryEntry, error) {
	if err := s.requireRegistered(); err != nil {
		return nil, err
	}

	resp, err := s.roundTrip(ctx, protocol.RequestClientList, nil)
	if err != nil {
		return nil, err
	}
	if err := protocol.ExpectCode("client list", resp, protocol.ResponseClientList); err != nil {
		return nil, err
	}

	entries := s.directory.Replace(protocol.DecodeClientList(resp.Payload))
	s.recordDirectory(entries)

	return entries, nil
}

// ===== PUBLIC KEYS =====

// GetPublicKey fetches the raw public key of a peer.
// An empty directory is populated first.
func (s *Session) GetPublicKey(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getPublicKeyLocked(ctx, name)
}

func (s *Session) getPublicKeyLocked(ctx context.Context, name string) ([]byte, error) {
	if err := s.requireRegistered(); err != nil {
		return nil, err
	}

	if s.directory.Len() == 0 {
		if _, err := s.listClientsLocked(ctx); err != nil {
			return nil, err
		}
	}

	peerID, err := s.lookupPeer(name)
	if err != nil {
		return nil, err
	}

	resp, err := s.roundTrip(ctx, protocol.RequestPublicKey, peerID[:])
	if err != nil {
		return nil, err
	}
	if err := protocol.ExpectCode("public key", resp, protocol.ResponsePublicKey); err != nil {
		return nil, err
	}
	if len(resp.Payload) == 0 {
		return nil, fmt.Errorf("%w: empty public key for %s", protocol.ErrProtocol, name)
	}

	s.recordPublicKey(name, peerID, resp.Payload)

	return resp.Payload, nil
}

func (s *Session) lookupPeer(name string) (protocol.ClientID, error) {
	id, ok := s.directory.Lookup(name)
	if !ok {
		return protocol.ClientID{}, fmt.Errorf("%w: %s", protocol.ErrUnknownPeer, name)
	}
	return id, nil
}

func hexID(id protocol.ClientID) string {
	return hex.EncodeToString(id[:])
}
