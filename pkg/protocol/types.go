package protocol

// Protocol constants
const (
	// Version byte sent in every request frame
	ClientVersion uint8 = 1

	// Request header: client ID (16) + version (1) + code (2) + payload length (4)
	RequestHeaderSize = ClientIDSize + 1 + 2 + 4

	// Response header: version (1) + code (2) + payload length (4)
	ResponseHeaderSize = 1 + 2 + 4

	// Fixed-width fields
	ClientIDSize  = 16
	NameFieldSize = 255
	MaxNameLength = NameFieldSize - 1
	PublicKeySize = 160

	// Registration payload: padded name + public key
	RegistrationPayloadSize = NameFieldSize + PublicKeySize

	// Client list record: id + padded name
	ClientRecordSize = ClientIDSize + NameFieldSize

	// Envelope header: to (16) + from (16) + type (1) + content length (4)
	EnvelopeHeaderSize = ClientIDSize + ClientIDSize + 1 + 4

	// Inbox record header: from (16) + message id (4) + type (1) + content length (4)
	RecordHeaderSize = ClientIDSize + 4 + 1 + 4

	// Minimum 2103 payload that carries an acknowledgment
	AckPayloadSize = ClientIDSize + 4
)

// Request codes
const (
	RequestRegister     uint16 = 600
	RequestClientList   uint16 = 601
	RequestPublicKey    uint16 = 602
	RequestSendMessage  uint16 = 603
	RequestPullMessages uint16 = 604
)

// Response codes
const (
	ResponseRegistered    uint16 = 2100
	ResponseClientList    uint16 = 2101
	ResponsePublicKey     uint16 = 2102
	ResponseMessageQueued uint16 = 2103
	ResponseMessages      uint16 = 2104

	// Generic failure; the payload is the server's reason text
	CodeServerError uint16 = 9000
)

// Message types carried in envelopes and inbox records
const (
	MsgTypeKeyRequest uint8 = 1
	MsgTypeKeySend    uint8 = 2
	MsgTypeText       uint8 = 3
	MsgTypeFile       uint8 = 4
)

// KeyRequestContent is the fixed body of a symmetric key request
const KeyRequestContent = "symmetric key request"

// ClientID is the server-assigned 16-byte identifier
type ClientID [ClientIDSize]byte

// ===== HELPER FUNCTIONS =====

// IsZero reports whether the ID was never assigned
func (id ClientID) IsZero() bool {
	return id == ClientID{}
}

// NewClientID builds an ID from raw bytes, normalizing to 16 bytes
func NewClientID(raw []byte) ClientID {
	var id ClientID
	copy(id[:], raw)
	return id
}

// RequestName returns a readable name for a request code
func RequestName(code uint16) string {
	switch code {
	case RequestRegister:
		return "register"
	case RequestClientList:
		return "client list"
	case RequestPublicKey:
		return "public key"
	case RequestSendMessage:
		return "send message"
	case RequestPullMessages:
		return "pull messages"
	default:
		return "unknown"
	}
}

// MessageTypeName returns a readable name for a message type
func MessageTypeName(t uint8) string {
	switch t {
	case MsgTypeKeyRequest:
		return "key request"
	case MsgTypeKeySend:
		return "key send"
	case MsgTypeText:
		return "text"
	case MsgTypeFile:
		return "file"
	default:
		return "unknown"
	}
}
