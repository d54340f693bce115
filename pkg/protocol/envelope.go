package protocol

import (
	"encoding/binary"
	"fmt"
)

// ===== ENVELOPE =====

// Envelope is the 603 payload used for key requests, key delivery and text messages
type Envelope struct {
	To      ClientID // Recipient
	From    ClientID // Sender
	Type    uint8    // MsgType*
	Content []byte   // Opaque to the server
}

// NewEnvelope builds an envelope from raw IDs, normalizing both to 16 bytes
func NewEnvelope(to, from []byte, msgType uint8, content []byte) *Envelope {
	return &Envelope{
		To:      NewClientID(to),
		From:    NewClientID(from),
		Type:    msgType,
		Content: content,
	}
}

// Encode encodes the envelope to bytes
func (e *Envelope) Encode() []byte {
	buf := make([]byte, EnvelopeHeaderSize+len(e.Content))
	offset := 0

	copy(buf[offset:], e.To[:])
	offset += ClientIDSize

	copy(buf[offset:], e.From[:])
	offset += ClientIDSize

	buf[offset] = e.Type
	offset++

	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(e.Content)))
	offset += 4

	copy(buf[offset:], e.Content)

	return buf
}

// Decode decodes an envelope from bytes
func (e *Envelope) Decode(buf []byte) error {
	if len(buf) < EnvelopeHeaderSize {
		return fmt.Errorf("%w: envelope needs %d bytes, got %d", ErrMalformedFrame, EnvelopeHeaderSize, len(buf))
	}

	offset := 0

	copy(e.To[:], buf[offset:offset+ClientIDSize])
	offset += ClientIDSize

	copy(e.From[:], buf[offset:offset+ClientIDSize])
	offset += ClientIDSize

	e.Type = buf[offset]
	offset++

	contentLen := binary.LittleEndian.Uint32(buf[offset:])
	offset += 4

	if uint64(len(buf)-offset) < uint64(contentLen) {
		return fmt.Errorf("%w: envelope declares %d content bytes, have %d", ErrMalformedFrame, contentLen, len(buf)-offset)
	}

	e.Content = make([]byte, contentLen)
	copy(e.Content, buf[offset:offset+int(contentLen)])

	return nil
}

// ===== ACK =====

// Ack is the server's acknowledgment of a queued envelope
type Ack struct {
	To        ClientID
	MessageID uint32
}

// Encode encodes the ack to bytes
func (a *Ack) Encode() []byte {
	buf := make([]byte, AckPayloadSize)
	copy(buf, a.To[:])
	binary.LittleEndian.PutUint32(buf[ClientIDSize:], a.MessageID)
	return buf
}

// DecodeAck reads an ack from a 2103 payload.
// Returns false when the server sent a shorter (empty) acknowledgment.
func DecodeAck(payload []byte) (*Ack, bool) {
	if len(payload) < AckPayloadSize {
		return nil, false
	}
	ack := &Ack{
		To:        NewClientID(payload[:ClientIDSize]),
		MessageID: binary.LittleEndian.Uint32(payload[ClientIDSize:]),
	}
	return ack, true
}
