package protocol

import (
	"encoding/binary"
	"fmt"
)

// ===== CLIENT LIST =====

// ClientRecord is one 271-byte entry of a 2101 payload
type ClientRecord struct {
	ID   ClientID
	Name string
}

// DecodeClientList splits a 2101 payload into records.
// A trailing partial record is ignored.
func DecodeClientList(payload []byte) []ClientRecord {
	count := len(payload) / ClientRecordSize
	records := make([]ClientRecord, 0, count)

	for i := 0; i < count; i++ {
		rec := payload[i*ClientRecordSize : (i+1)*ClientRecordSize]
		records = append(records, ClientRecord{
			ID:   NewClientID(rec[:ClientIDSize]),
			Name: TrimName(rec[ClientIDSize:]),
		})
	}

	return records
}

// EncodeClientList builds a 2101 payload
func EncodeClientList(records []ClientRecord) []byte {
	buf := make([]byte, 0, len(records)*ClientRecordSize)
	for _, rec := range records {
		buf = append(buf, rec.ID[:]...)
		buf = append(buf, PadName(rec.Name)...)
	}
	return buf
}

// ===== INBOX RECORDS =====

// MessageRecord is one waiting message inside a 2104 payload
type MessageRecord struct {
	From      ClientID
	MessageID uint32
	Type      uint8
	Content   []byte
}

// Encode encodes the record to bytes
func (m *MessageRecord) Encode() []byte {
	buf := make([]byte, RecordHeaderSize+len(m.Content))
	offset := 0

	copy(buf[offset:], m.From[:])
	offset += ClientIDSize

	binary.LittleEndian.PutUint32(buf[offset:], m.MessageID)
	offset += 4

	buf[offset] = m.Type
	offset++

	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(m.Content)))
	offset += 4

	copy(buf[offset:], m.Content)

	return buf
}

// EncodeMessageRecords concatenates records into a 2104 payload
func EncodeMessageRecords(records []MessageRecord) []byte {
	var buf []byte
	for i := range records {
		buf = append(buf, records[i].Encode()...)
	}
	return buf
}

// DecodeMessageRecords walks a 2104 payload.
//
// Decoding stops when fewer than 25 bytes remain. A record whose content length
// overruns the payload ends decoding: the records parsed so far are returned
// together with an ErrMalformedFrame describing the dropped tail.
func DecodeMessageRecords(payload []byte) ([]MessageRecord, error) {
	var records []MessageRecord
	offset := 0

	for len(payload)-offset >= RecordHeaderSize {
		var rec MessageRecord

		copy(rec.From[:], payload[offset:offset+ClientIDSize])
		offset += ClientIDSize

		rec.MessageID = binary.LittleEndian.Uint32(payload[offset:])
		offset += 4

		rec.Type = payload[offset]
		offset++

		contentLen := binary.LittleEndian.Uint32(payload[offset:])
		offset += 4

		if uint64(len(payload)-offset) < uint64(contentLen) {
			return records, fmt.Errorf("%w: message %d declares %d content bytes, %d remain",
				ErrMalformedFrame, rec.MessageID, contentLen, len(payload)-offset)
		}

		rec.Content = make([]byte, contentLen)
		copy(rec.Content, payload[offset:offset+int(contentLen)])
		offset += int(contentLen)

		records = append(records, rec)
	}

	return records, nil
}
