package protocol

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPadName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
	}{
		{name: "empty", input: "", wantLen: 0},
		{name: "short", input: "alice", wantLen: 5},
		{name: "max length", input: strings.Repeat("a", MaxNameLength), wantLen: MaxNameLength},
		{name: "exactly field size", input: strings.Repeat("b", NameFieldSize), wantLen: MaxNameLength},
		{name: "oversized", input: strings.Repeat("c", 400), wantLen: MaxNameLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := PadName(tt.input)
			if len(field) != NameFieldSize {
				t.Fatalf("PadName() length = %d, want %d", len(field), NameFieldSize)
			}
			if field[NameFieldSize-1] != 0 {
				t.Error("PadName() last byte is not zero")
			}
			if got := TrimName(field); len(got) != tt.wantLen {
				t.Errorf("TrimName(PadName()) length = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestTrimName(t *testing.T) {
	field := PadName("bob  \t")
	if got := TrimName(field); got != "bob" {
		t.Errorf("TrimName() = %q, want %q", got, "bob")
	}

	embedded := append([]byte("carol\x00junk"), make([]byte, 245)...)
	if got := TrimName(embedded); got != "carol" {
		t.Errorf("TrimName() = %q, want %q", got, "carol")
	}
}

func TestEncodeRegistration(t *testing.T) {
	key := bytes.Repeat([]byte{0x30}, 162)

	for _, name := range []string{"", "alice", strings.Repeat("x", MaxNameLength), strings.Repeat("y", 300)} {
		payload, err := EncodeRegistration(name, key)
		if err != nil {
			t.Fatalf("EncodeRegistration() error = %v", err)
		}
		if len(payload) != RegistrationPayloadSize {
			t.Errorf("EncodeRegistration(len %d) size = %d, want %d", len(name), len(payload), RegistrationPayloadSize)
		}
		if payload[NameFieldSize-1] != 0 {
			t.Errorf("EncodeRegistration(len %d) name field not terminated", len(name))
		}
		if !bytes.Equal(payload[NameFieldSize:], key[:PublicKeySize]) {
			t.Error("public key field is not the first 160 key bytes")
		}
	}
}

func TestEncodeRegistrationShortKey(t *testing.T) {
	_, err := EncodeRegistration("alice", make([]byte, PublicKeySize-1))
	if !errors.Is(err, ErrKeyFormat) {
		t.Errorf("EncodeRegistration() error = %v, want %v", err, ErrKeyFormat)
	}
}

func TestDecodeRegistered(t *testing.T) {
	id, err := DecodeRegistered([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 99})
	if err != nil {
		t.Fatalf("DecodeRegistered() error = %v", err)
	}
	if id != (ClientID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}) {
		t.Errorf("DecodeRegistered() = %x", id)
	}

	if _, err := DecodeRegistered(make([]byte, 15)); !errors.Is(err, ErrProtocol) {
		t.Errorf("DecodeRegistered(15 bytes) error = %v, want %v", err, ErrProtocol)
	}
}

func TestDecodeClientList(t *testing.T) {
	t.Run("empty payload", func(t *testing.T) {
		if got := DecodeClientList(nil); len(got) != 0 {
			t.Errorf("DecodeClientList() = %d records, want 0", len(got))
		}
	})

	t.Run("single record", func(t *testing.T) {
		id := ClientID{0xA1, 0xA2}
		payload := EncodeClientList([]ClientRecord{{ID: id, Name: "alice"}})
		if len(payload) != ClientRecordSize {
			t.Fatalf("EncodeClientList() size = %d, want %d", len(payload), ClientRecordSize)
		}

		got := DecodeClientList(payload)
		if len(got) != 1 {
			t.Fatalf("DecodeClientList() = %d records, want 1", len(got))
		}
		if got[0].ID != id || got[0].Name != "alice" {
			t.Errorf("record = %+v", got[0])
		}
	})

	t.Run("partial trailing record dropped", func(t *testing.T) {
		payload := EncodeClientList([]ClientRecord{{Name: "a"}, {Name: "b"}})
		payload = append(payload, make([]byte, 100)...)

		got := DecodeClientList(payload)
		if len(got) != 2 {
			t.Errorf("DecodeClientList() = %d records, want 2", len(got))
		}
	})
}

func TestDecodeMessageRecords(t *testing.T) {
	first := MessageRecord{From: ClientID{1}, MessageID: 10, Type: MsgTypeKeyRequest, Content: []byte(KeyRequestContent)}
	second := MessageRecord{From: ClientID{2}, MessageID: 11, Type: MsgTypeText, Content: []byte{0xDE, 0xAD}}

	t.Run("two records in order", func(t *testing.T) {
		payload := EncodeMessageRecords([]MessageRecord{first, second})

		got, err := DecodeMessageRecords(payload)
		if err != nil {
			t.Fatalf("DecodeMessageRecords() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("DecodeMessageRecords() = %d records, want 2", len(got))
		}
		if got[0].MessageID != 10 || got[1].MessageID != 11 {
			t.Errorf("order = %d, %d", got[0].MessageID, got[1].MessageID)
		}
		if got[1].From != second.From || got[1].Type != MsgTypeText || !bytes.Equal(got[1].Content, second.Content) {
			t.Errorf("second record = %+v", got[1])
		}
	})

	t.Run("overrunning second record", func(t *testing.T) {
		payload := first.Encode()
		broken := second.Encode()
		// declare 200 content bytes while only 2 follow
		broken[RecordHeaderSize-4] = 200
		payload = append(payload, broken...)

		got, err := DecodeMessageRecords(payload)
		if !errors.Is(err, ErrMalformedFrame) {
			t.Errorf("DecodeMessageRecords() error = %v, want %v", err, ErrMalformedFrame)
		}
		if len(got) != 1 {
			t.Fatalf("DecodeMessageRecords() = %d records, want 1", len(got))
		}
		if got[0].MessageID != first.MessageID {
			t.Errorf("MessageID = %d, want %d", got[0].MessageID, first.MessageID)
		}
	})

	t.Run("short tail ignored", func(t *testing.T) {
		payload := append(first.Encode(), make([]byte, RecordHeaderSize-1)...)

		got, err := DecodeMessageRecords(payload)
		if err != nil {
			t.Fatalf("DecodeMessageRecords() error = %v", err)
		}
		if len(got) != 1 {
			t.Errorf("DecodeMessageRecords() = %d records, want 1", len(got))
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		got, err := DecodeMessageRecords(nil)
		if err != nil || len(got) != 0 {
			t.Errorf("DecodeMessageRecords(nil) = %d, %v", len(got), err)
		}
	})
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "plain", input: "alice"},
		{name: "inner space", input: "alice smith"},
		{name: "punctuation", input: "a.b-c_d~!"},
		{name: "max length", input: strings.Repeat("a", MaxNameLength)},
		{name: "empty", input: "", wantErr: true},
		{name: "newline", input: "eve\nmallory", wantErr: true},
		{name: "nul", input: "eve\x00", wantErr: true},
		{name: "tab", input: "eve\tx", wantErr: true},
		{name: "del", input: "eve\x7f", wantErr: true},
		{name: "non ascii", input: "ev\u00e9", wantErr: true},
		{name: "leading space", input: " eve", wantErr: true},
		{name: "trailing space", input: "eve ", wantErr: true},
		{name: "too long", input: strings.Repeat("a", MaxNameLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidName) {
					t.Errorf("ValidateName(%q) error = %v, want %v", tt.input, err, ErrInvalidName)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateName(%q) error = %v", tt.input, err)
			}
		})
	}
}
