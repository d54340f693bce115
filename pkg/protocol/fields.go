package protocol

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
)

// PadName writes name into a 255-byte zero-filled field.
// At most 254 bytes are copied so the last byte is always zero.
func PadName(name string) []byte {
	field := make([]byte, NameFieldSize)
	n := len(name)
	if n > MaxNameLength {
		n = MaxNameLength
	}
	copy(field, name[:n])
	return field
}

// ValidateName checks a display name before it is registered: 1 to 254
// printable ASCII bytes with no leading or trailing space.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name is %d bytes, at most %d allowed", ErrInvalidName, len(name), MaxNameLength)
	}
	for i := 0; i < len(name); i++ {
		if name[i] < 0x20 || name[i] > 0x7E {
			return fmt.Errorf("%w: byte 0x%02x at offset %d is not printable", ErrInvalidName, name[i], i)
		}
	}
	if name[0] == ' ' || name[len(name)-1] == ' ' {
		return fmt.Errorf("%w: leading or trailing space", ErrInvalidName)
	}
	return nil
}

// TrimName reads a name field: the name ends at the first zero byte,
// trailing whitespace is dropped.
func TrimName(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return strings.TrimRightFunc(string(field), unicode.IsSpace)
}

// PayloadText renders a server payload as human-readable text
func PayloadText(payload []byte) string {
	return strings.TrimRight(string(payload), "\x00")
}

// RegistrationPublicKey validates a raw public key for the registration field.
// Keys shorter than 160 bytes are rejected, longer ones are truncated.
func RegistrationPublicKey(raw []byte) ([]byte, error) {
	if len(raw) < PublicKeySize {
		return nil, fmt.Errorf("%w: public key is %d bytes, need %d", ErrKeyFormat, len(raw), PublicKeySize)
	}
	key := make([]byte, PublicKeySize)
	copy(key, raw[:PublicKeySize])
	return key, nil
}

// EncodeRegistration builds the 415-byte registration payload: padded name + public key
func EncodeRegistration(name string, publicKey []byte) ([]byte, error) {
	key, err := RegistrationPublicKey(publicKey)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, RegistrationPayloadSize)
	buf = append(buf, PadName(name)...)
	buf = append(buf, key...)
	return buf, nil
}

// DecodeRegistration splits a registration payload into name and public key
func DecodeRegistration(payload []byte) (string, []byte, error) {
	if len(payload) != RegistrationPayloadSize {
		return "", nil, fmt.Errorf("%w: registration payload is %d bytes, want %d", ErrMalformedFrame, len(payload), RegistrationPayloadSize)
	}
	key := make([]byte, PublicKeySize)
	copy(key, payload[NameFieldSize:])
	return TrimName(payload[:NameFieldSize]), key, nil
}

// DecodeRegistered extracts the new client ID from a 2100 payload
func DecodeRegistered(payload []byte) (ClientID, error) {
	if len(payload) < ClientIDSize {
		return ClientID{}, fmt.Errorf("%w: registration reply carries %d bytes, need %d", ErrProtocol, len(payload), ClientIDSize)
	}
	return NewClientID(payload[:ClientIDSize]), nil
}
