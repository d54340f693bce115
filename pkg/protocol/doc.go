// Package protocol implements the MessageU wire format.
//
// The protocol package defines the request and response frames, the fixed-width
// field helpers and the payload layouts exchanged with a MessageU relay server.
// Nothing in this package performs I/O beyond reading or writing a single frame
// on a caller-supplied stream.
//
// # Frames
//
// Every exchange is one request frame followed by one response frame on a fresh
// TCP connection. All multi-byte integers are little-endian.
//
// Request:
//   - Client ID (16 bytes): zero before registration
//   - Version (1 byte)
//   - Request code (2 bytes)
//   - Payload length (4 bytes)
//   - Payload
//
// Response:
//   - Version (1 byte)
//   - Response code (2 bytes)
//   - Payload length (4 bytes)
//   - Payload
//
// # Requests
//
//	600 register      -> 2100  255B name + 160B public key   -> 16B client ID
//	601 client list   -> 2101  empty                         -> N x (16B ID + 255B name)
//	602 public key    -> 2102  16B client ID                 -> raw public key
//	603 send message  -> 2103  envelope                      -> 16B ID + 4B message ID
//	604 pull messages -> 2104  empty                         -> N x message record
//
// Any other response code is a failure; code 9000 carries the server's reason
// as text.
//
// # Envelopes and records
//
// An envelope is to(16) + from(16) + type(1) + length(4) + content. A waiting
// message record is from(16) + message ID(4) + type(1) + length(4) + content.
// Message types: 1 key request, 2 symmetric key (RSA wrapped), 3 text (AES),
// 4 file.
//
// # Fixed-width fields
//
// Client IDs are always exactly 16 bytes on the wire and names exactly 255
// bytes, zero padded with the final byte zero. NormalizeClientID and PadName
// enforce this at every encoder.
package protocol
