package client

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ZentaChain/messageu-client/pkg/crypto"
	"github.com/ZentaChain/messageu-client/pkg/protocol"
	"github.com/ZentaChain/messageu-client/pkg/storage"
)

var ErrUnsupportedMessage = errors.New("unsupported message type")

const (
	keyRequestNotice  = "Request for symmetric key"
	keyReceivedNotice = "symmetric key received"
)

// InboxMessage is one decoded record of an inbox drain
type InboxMessage struct {
	From      protocol.ClientID
	FromName  string
	MessageID uint32
	Type      uint8
	Content   string // plaintext or notice
	Err       error  // set when this record could not be processed
}

// FetchMessages drains the inbox on the server and decodes every record.
//
// Records are handled independently: a record that fails to decrypt carries its
// own Err and the rest are still processed. A record whose declared length
// overruns the payload ends the batch; earlier records are still returned.
func (s *Session) FetchMessages(ctx context.Context) ([]InboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRegistered(); err != nil {
		return nil, err
	}

	resp, err := s.roundTrip(ctx, protocol.RequestPullMessages, nil)
	if err != nil {
		return nil, err
	}
	if err := protocol.ExpectCode("pull messages", resp, protocol.ResponseMessages); err != nil {
		return nil, err
	}

	records, err := protocol.DecodeMessageRecords(resp.Payload)
	if err != nil {
		log.Printf("⚠️  Inbox batch truncated after %d records: %v", len(records), err)
	}

	messages := make([]InboxMessage, 0, len(records))
	for i := range records {
		msg := s.handleRecord(&records[i])
		s.recordInbox(&msg)
		messages = append(messages, msg)
	}

	return messages, nil
}

func (s *Session) handleRecord(rec *protocol.MessageRecord) InboxMessage {
	msg := InboxMessage{
		From:      rec.From,
		FromName:  s.directory.NameOf(rec.From),
		MessageID: rec.MessageID,
		Type:      rec.Type,
	}

	switch rec.Type {
	case protocol.MsgTypeKeyRequest:
		msg.Content = keyRequestNotice

	case protocol.MsgTypeKeySend:
		key, err := crypto.RSADecrypt(rec.Content, s.privateKey)
		if err != nil {
			msg.Err = fmt.Errorf("unwrap symmetric key: %w", err)
			break
		}
		if !crypto.ValidSessionKeySize(len(key)) {
			msg.Err = fmt.Errorf("%w: symmetric key is %d bytes", protocol.ErrKeyFormat, len(key))
			break
		}
		if msg.FromName == UnknownPeerName {
			// every unlisted sender shares this slot
			log.Printf("⚠️  Symmetric key from unlisted client %x stored under %q", rec.From[:4], UnknownPeerName)
		}
		s.installSessionKey(msg.FromName, key)
		msg.Content = keyReceivedNotice

	case protocol.MsgTypeText:
		key, ok := s.sessionKeys[msg.FromName]
		if !ok {
			msg.Err = fmt.Errorf("%w: %s", protocol.ErrNoSessionKey, msg.FromName)
			break
		}
		plaintext, err := crypto.AESDecrypt(rec.Content, key)
		if err != nil {
			msg.Err = fmt.Errorf("decrypt message: %w", err)
			break
		}
		msg.Content = string(plaintext)

	default:
		msg.Err = fmt.Errorf("%w: %s (%d)", ErrUnsupportedMessage, protocol.MessageTypeName(rec.Type), rec.Type)
	}

	return msg
}

func (s *Session) recordInbox(msg *InboxMessage) {
	status := storage.MessageStatusReceived
	content := msg.Content
	if msg.Err != nil {
		status = storage.MessageStatusFailed
		content = msg.Err.Error()
	}

	s.recordMessage(&storage.StoredMessage{
		PeerID:      hexID(msg.From),
		PeerName:    msg.FromName,
		MessageID:   msg.MessageID,
		MessageType: msg.Type,
		Content:     []byte(content),
		Status:      status,
	})
}
