package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Upper bound on a request payload read from a stream
const maxRequestPayload = 16 << 20

// Request is a decoded request frame
type Request struct {
	ClientID ClientID
	Version  uint8
	Code     uint16
	Payload  []byte
}

// Response is a decoded response frame
type Response struct {
	Version uint8
	Code    uint16
	Payload []byte
}

// NormalizeClientID pads with zero bytes or truncates to exactly 16 bytes
func NormalizeClientID(raw []byte) []byte {
	id := make([]byte, ClientIDSize)
	copy(id, raw)
	return id
}

// EncodeRequest builds a request frame.
//
// Layout (little-endian):
//
//	[16 bytes] client ID
//	[1 byte]   version
//	[2 bytes]  request code
//	[4 bytes]  payload length
//	[N bytes]  payload
func EncodeRequest(clientID []byte, version uint8, code uint16, payload []byte) []byte {
	buf := make([]byte, RequestHeaderSize+len(payload))
	offset := 0

	copy(buf[offset:], NormalizeClientID(clientID))
	offset += ClientIDSize

	buf[offset] = version
	offset++

	binary.LittleEndian.PutUint16(buf[offset:], code)
	offset += 2

	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(payload)))
	offset += 4

	copy(buf[offset:], payload)

	return buf
}

// DecodeRequest parses a request frame. Trailing bytes are ignored.
func DecodeRequest(buf []byte) (*Request, error) {
	if len(buf) < RequestHeaderSize {
		return nil, fmt.Errorf("%w: request header needs %d bytes, got %d", ErrMalformedFrame, RequestHeaderSize, len(buf))
	}

	req := &Request{}
	offset := 0

	copy(req.ClientID[:], buf[offset:offset+ClientIDSize])
	offset += ClientIDSize

	req.Version = buf[offset]
	offset++

	req.Code = binary.LittleEndian.Uint16(buf[offset:])
	offset += 2

	length := binary.LittleEndian.Uint32(buf[offset:])
	offset += 4

	if uint64(len(buf)-offset) < uint64(length) {
		return nil, fmt.Errorf("%w: declared payload %d bytes, have %d", ErrMalformedFrame, length, len(buf)-offset)
	}

	req.Payload = make([]byte, length)
	copy(req.Payload, buf[offset:offset+int(length)])

	return req, nil
}

// EncodeResponse builds a response frame.
//
// Layout (little-endian):
//
//	[1 byte]  version
//	[2 bytes] response code
//	[4 bytes] payload length
//	[N bytes] payload
func EncodeResponse(version uint8, code uint16, payload []byte) []byte {
	buf := make([]byte, ResponseHeaderSize+len(payload))

	buf[0] = version
	binary.LittleEndian.PutUint16(buf[1:3], code)
	binary.LittleEndian.PutUint32(buf[3:7], uint32(len(payload)))
	copy(buf[ResponseHeaderSize:], payload)

	return buf
}

// DecodeResponse parses a response frame.
// Fails with ErrMalformedFrame when the header is short or the payload is truncated.
// Bytes beyond the declared payload are ignored.
func DecodeResponse(buf []byte) (*Response, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedFrame)
	}
	if len(buf) < ResponseHeaderSize {
		return nil, fmt.Errorf("%w: response header needs %d bytes, got %d", ErrMalformedFrame, ResponseHeaderSize, len(buf))
	}

	resp := &Response{
		Version: buf[0],
		Code:    binary.LittleEndian.Uint16(buf[1:3]),
	}
	length := binary.LittleEndian.Uint32(buf[3:7])

	available := len(buf) - ResponseHeaderSize
	if uint64(available) < uint64(length) {
		return nil, fmt.Errorf("%w: declared payload %d bytes, have %d", ErrMalformedFrame, length, available)
	}

	resp.Payload = make([]byte, length)
	copy(resp.Payload, buf[ResponseHeaderSize:ResponseHeaderSize+int(length)])

	return resp, nil
}

// ResponseComplete reports whether buf already holds one full response frame
func ResponseComplete(buf []byte) bool {
	if len(buf) < ResponseHeaderSize {
		return false
	}
	length := binary.LittleEndian.Uint32(buf[3:7])
	return uint64(len(buf)-ResponseHeaderSize) >= uint64(length)
}

// ReadRequest reads exactly one request frame from r
func ReadRequest(r io.Reader) (*Request, error) {
	header := make([]byte, RequestHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	length := binary.LittleEndian.Uint32(header[RequestHeaderSize-4:])
	if length > maxRequestPayload {
		return nil, fmt.Errorf("%w: request payload of %d bytes exceeds limit", ErrMalformedFrame, length)
	}
	buf := make([]byte, RequestHeaderSize+int(length))
	copy(buf, header)
	if _, err := io.ReadFull(r, buf[RequestHeaderSize:]); err != nil {
		return nil, fmt.Errorf("%w: read request payload: %v", ErrMalformedFrame, err)
	}

	return DecodeRequest(buf)
}

// WriteResponse writes one response frame to w
func WriteResponse(w io.Writer, resp *Response) error {
	_, err := w.Write(EncodeResponse(resp.Version, resp.Code, resp.Payload))
	return err
}
