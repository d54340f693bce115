package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeRequestLayout(t *testing.T) {
	clientID := bytes.Repeat([]byte{0xAA}, ClientIDSize)
	payload := []byte("hello")

	frame := EncodeRequest(clientID, ClientVersion, RequestPublicKey, payload)

	if len(frame) != RequestHeaderSize+len(payload) {
		t.Fatalf("EncodeRequest() length = %d, want %d", len(frame), RequestHeaderSize+len(payload))
	}

	want := []byte{}
	want = append(want, clientID...)
	want = append(want, 0x01)                   // version
	want = append(want, 0x5A, 0x02)             // 602 LE
	want = append(want, 0x05, 0x00, 0x00, 0x00) // length LE
	want = append(want, payload...)

	if !bytes.Equal(frame, want) {
		t.Errorf("EncodeRequest() = %x, want %x", frame, want)
	}
}

func TestEncodeRequestNormalizesClientID(t *testing.T) {
	tests := []struct {
		name string
		id   []byte
		want []byte
	}{
		{
			name: "nil id",
			id:   nil,
			want: make([]byte, ClientIDSize),
		},
		{
			name: "short id is zero padded",
			id:   []byte{1, 2, 3},
			want: append([]byte{1, 2, 3}, make([]byte, 13)...),
		},
		{
			name: "long id keeps first 16 bytes",
			id:   bytes.Repeat([]byte{7}, 20),
			want: bytes.Repeat([]byte{7}, 16),
		},
		{
			name: "exact id unchanged",
			id:   []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
			want: []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := EncodeRequest(tt.id, ClientVersion, RequestClientList, nil)
			if !bytes.Equal(frame[:ClientIDSize], tt.want) {
				t.Errorf("client id field = %x, want %x", frame[:ClientIDSize], tt.want)
			}

			once := NormalizeClientID(tt.id)
			twice := NormalizeClientID(once)
			if !bytes.Equal(once, twice) {
				t.Errorf("NormalizeClientID() not idempotent: %x then %x", once, twice)
			}
		})
	}
}

func TestResponseRoundTrip(t *testing.T) {
	for _, size := range []int{0, 1, 16, 271, 4096} {
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(i)
		}

		encoded := EncodeResponse(ClientVersion, ResponseMessages, payload)
		resp, err := DecodeResponse(encoded)
		if err != nil {
			t.Fatalf("DecodeResponse(size=%d) error = %v", size, err)
		}

		if resp.Version != ClientVersion {
			t.Errorf("Version = %d, want %d", resp.Version, ClientVersion)
		}
		if resp.Code != ResponseMessages {
			t.Errorf("Code = %d, want %d", resp.Code, ResponseMessages)
		}
		if !bytes.Equal(resp.Payload, payload) {
			t.Errorf("Payload mismatch for size %d", size)
		}
	}
}

func TestDecodeResponseMalformed(t *testing.T) {
	full := EncodeResponse(1, ResponseRegistered, bytes.Repeat([]byte{1}, 16))

	tests := []struct {
		name string
		buf  []byte
	}{
		{name: "empty", buf: nil},
		{name: "short header", buf: full[:6]},
		{name: "truncated payload", buf: full[:len(full)-1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResponse(tt.buf)
			if !errors.Is(err, ErrMalformedFrame) {
				t.Errorf("DecodeResponse() error = %v, want %v", err, ErrMalformedFrame)
			}
		})
	}
}

func TestDecodeResponseIgnoresTrailingBytes(t *testing.T) {
	buf := EncodeResponse(1, ResponsePublicKey, []byte("key"))
	buf = append(buf, []byte("garbage")...)

	resp, err := DecodeResponse(buf)
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	if string(resp.Payload) != "key" {
		t.Errorf("Payload = %q, want %q", resp.Payload, "key")
	}
}

func TestResponseComplete(t *testing.T) {
	frame := EncodeResponse(1, ResponseClientList, []byte("abc"))

	for i := 0; i < len(frame); i++ {
		if ResponseComplete(frame[:i]) {
			t.Errorf("ResponseComplete(%d of %d bytes) = true", i, len(frame))
		}
	}
	if !ResponseComplete(frame) {
		t.Error("ResponseComplete(full frame) = false")
	}
}

func TestRequestRoundTripThroughReader(t *testing.T) {
	payload := []byte("payload bytes")
	frame := EncodeRequest([]byte{9, 9}, ClientVersion, RequestSendMessage, payload)

	req, err := ReadRequest(bytes.NewReader(frame))
	if err != nil {
		t.Fatalf("ReadRequest() error = %v", err)
	}

	if req.ClientID != NewClientID([]byte{9, 9}) {
		t.Errorf("ClientID = %x", req.ClientID)
	}
	if req.Code != RequestSendMessage {
		t.Errorf("Code = %d, want %d", req.Code, RequestSendMessage)
	}
	if !bytes.Equal(req.Payload, payload) {
		t.Errorf("Payload = %q, want %q", req.Payload, payload)
	}
}

func TestReadRequestTruncated(t *testing.T) {
	frame := EncodeRequest(nil, ClientVersion, RequestRegister, make([]byte, 10))

	_, err := ReadRequest(bytes.NewReader(frame[:len(frame)-3]))
	if !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("ReadRequest() error = %v, want %v", err, ErrMalformedFrame)
	}
}

func TestExpectCode(t *testing.T) {
	ok := &Response{Code: ResponseRegistered}
	if err := ExpectCode("register", ok, ResponseRegistered); err != nil {
		t.Errorf("ExpectCode() error = %v, want nil", err)
	}

	bad := &Response{Code: CodeServerError, Payload: []byte("Username already taken")}
	err := ExpectCode("register", bad, ResponseRegistered)
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("ExpectCode() error = %v, want %v", err, ErrProtocol)
	}

	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatal("ExpectCode() error is not a *ServerError")
	}
	if serverErr.Code != CodeServerError || serverErr.Message != "Username already taken" {
		t.Errorf("ServerError = %+v", serverErr)
	}
}
