package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrTransport      = errors.New("transport error")
	ErrMalformedFrame = errors.New("malformed frame")
	ErrProtocol       = errors.New("protocol error")
	ErrKeyFormat      = errors.New("key format error")
	ErrUnknownPeer    = errors.New("unknown peer")
	ErrNoSessionKey   = errors.New("no session key")
	ErrInvalidName    = errors.New("invalid name")

	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")
)

// ServerError is returned when the server answers with an unexpected response code.
// Message holds the server's payload as text when it sent one.
type ServerError struct {
	Op      string
	Code    uint16
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: server responded with code %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: server responded with code %d: %s", e.Op, e.Code, e.Message)
}

// Unwrap lets errors.Is(err, ErrProtocol) match every ServerError
func (e *ServerError) Unwrap() error {
	return ErrProtocol
}

// ExpectCode checks a decoded response code against the one an operation requires
func ExpectCode(op string, resp *Response, want uint16) error {
	if resp.Code == want {
		return nil
	}
	return &ServerError{Op: op, Code: resp.Code, Message: PayloadText(resp.Payload)}
}
