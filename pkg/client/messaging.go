package client

import (
	"context"
	"fmt"
	"log"

	"github.com/ZentaChain/messageu-client/pkg/crypto"
	"github.com/ZentaChain/messageu-client/pkg/protocol"
	"github.com/ZentaChain/messageu-client/pkg/storage"
)

// SendSymmetricKey creates a fresh session key for peer, wraps it under the
// peer's public key and sends it. The key is stored locally before the server
// confirms; a failed send leaves it in place.
func (s *Session) SendSymmetricKey(ctx context.Context, peer string, peerPublicKey []byte) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sendSymmetricKeyLocked(ctx, peer, peerPublicKey)
}

// ExchangeKey looks up the peer's public key and sends it a new session key
func (s *Session) ExchangeKey(ctx context.Context, peer string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pub, err := s.getPublicKeyLocked(ctx, peer)
	if err != nil {
		return 0, err
	}
	return s.sendSymmetricKeyLocked(ctx, peer, pub)
}

func (s *Session) sendSymmetricKeyLocked(ctx context.Context, peer string, peerPublicKey []byte) (uint32, error) {
	if err := s.requireRegistered(); err != nil {
		return 0, err
	}

	if len(peerPublicKey) < protocol.PublicKeySize {
		return 0, fmt.Errorf("%w: peer public key is %d bytes, need %d", protocol.ErrKeyFormat, len(peerPublicKey), protocol.PublicKeySize)
	}

	peerID, err := s.lookupPeer(peer)
	if err != nil {
		return 0, err
	}

	pub, err := crypto.ImportPublicKey(peerPublicKey)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", protocol.ErrKeyFormat, err)
	}

	sessionKey, err := crypto.GenerateAESKey()
	if err != nil {
		return 0, err
	}

	wrapped, err := crypto.RSAEncrypt(sessionKey, pub)
	if err != nil {
		return 0, err
	}

	s.installSessionKey(peer, sessionKey)

	msgID, err := s.sendEnvelope(ctx, peerID, protocol.MsgTypeKeySend, wrapped)
	if err != nil {
		return 0, err
	}

	log.Printf("🔐 Symmetric key sent to %s", peer)
	return msgID, nil
}

// SendMessage encrypts text with the session key shared with peer and sends it
func (s *Session) SendMessage(ctx context.Context, peer string, text string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRegistered(); err != nil {
		return 0, err
	}

	sessionKey, ok := s.sessionKeys[peer]
	if !ok {
		return 0, fmt.Errorf("%w: %s", protocol.ErrNoSessionKey, peer)
	}

	peerID, err := s.lookupPeer(peer)
	if err != nil {
		return 0, err
	}

	ciphertext, err := crypto.AESEncrypt([]byte(text), sessionKey)
	if err != nil {
		return 0, err
	}

	msgID, err := s.sendEnvelope(ctx, peerID, protocol.MsgTypeText, ciphertext)
	if err != nil {
		return 0, err
	}

	s.recordMessage(&storage.StoredMessage{
		PeerID:      hexID(peerID),
		PeerName:    peer,
		MessageID:   msgID,
		MessageType: protocol.MsgTypeText,
		Content:     []byte(text),
		Status:      storage.MessageStatusQueued,
		IsOutgoing:  true,
	})

	return msgID, nil
}

// RequestSymmetricKey asks peer to send us a session key.
// Nothing changes locally; the key arrives later through FetchMessages.
func (s *Session) RequestSymmetricKey(ctx context.Context, peer string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRegistered(); err != nil {
		return 0, err
	}

	peerID, err := s.lookupPeer(peer)
	if err != nil {
		return 0, err
	}

	return s.sendEnvelope(ctx, peerID, protocol.MsgTypeKeyRequest, []byte(protocol.KeyRequestContent))
}

// sendEnvelope sends one 603 envelope and returns the message id from the ack (0 when absent)
func (s *Session) sendEnvelope(ctx context.Context, to protocol.ClientID, msgType uint8, content []byte) (uint32, error) {
	env := protocol.NewEnvelope(to[:], s.id[:], msgType, content)

	resp, err := s.roundTrip(ctx, protocol.RequestSendMessage, env.Encode())
	if err != nil {
		return 0, err
	}
	if err := protocol.ExpectCode("send message", resp, protocol.ResponseMessageQueued); err != nil {
		return 0, err
	}

	if ack, ok := protocol.DecodeAck(resp.Payload); ok {
		return ack.MessageID, nil
	}
	return 0, nil
}
