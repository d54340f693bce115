package networktest

import (
	"crypto/rand"
	"sync"

	"github.com/ZentaChain/messageu-client/pkg/protocol"
)

// Relay is an in-memory MessageU server: it registers clients, hands out
// public keys and queues envelopes until the recipient drains them.
type Relay struct {
	mu      sync.Mutex
	clients []relayClient
	queues  map[protocol.ClientID][]protocol.MessageRecord
	nextMsg uint32
}

type relayClient struct {
	id        protocol.ClientID
	name      string
	publicKey []byte
}

// NewRelay creates an empty relay
func NewRelay() *Relay {
	return &Relay{
		queues: make(map[protocol.ClientID][]protocol.MessageRecord),
	}
}

// Handle answers one request; pass it to NewServer
func (r *Relay) Handle(req *protocol.Request) *protocol.Response {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch req.Code {
	case protocol.RequestRegister:
		return r.handleRegister(req)
	case protocol.RequestClientList:
		return r.handleClientList()
	case protocol.RequestPublicKey:
		return r.handlePublicKey(req)
	case protocol.RequestSendMessage:
		return r.handleSendMessage(req)
	case protocol.RequestPullMessages:
		return r.handlePullMessages(req)
	default:
		return serverError("Unknown request code")
	}
}

// Pending returns how many messages wait for id
func (r *Relay) Pending(id protocol.ClientID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.queues[id])
}

func (r *Relay) handleRegister(req *protocol.Request) *protocol.Response {
	if len(req.Payload) != protocol.RegistrationPayloadSize {
		return serverError("Registration payload must be exactly 415 bytes")
	}

	name, key, err := protocol.DecodeRegistration(req.Payload)
	if err != nil {
		return serverError(err.Error())
	}
	if r.find(name) != nil {
		return serverError("Username already taken")
	}

	var id protocol.ClientID
	rand.Read(id[:])

	r.clients = append(r.clients, relayClient{id: id, name: name, publicKey: key})
	return Reply(protocol.ResponseRegistered, id[:])
}

func (r *Relay) handleClientList() *protocol.Response {
	if len(r.clients) == 0 {
		return serverError("No clients found")
	}

	records := make([]protocol.ClientRecord, 0, len(r.clients))
	for _, c := range r.clients {
		records = append(records, protocol.ClientRecord{ID: c.id, Name: c.name})
	}
	return Reply(protocol.ResponseClientList, protocol.EncodeClientList(records))
}

func (r *Relay) handlePublicKey(req *protocol.Request) *protocol.Response {
	if len(req.Payload) < protocol.ClientIDSize {
		return serverError("Invalid ID length")
	}

	c := r.byID(protocol.NewClientID(req.Payload))
	if c == nil {
		return serverError("Client not found")
	}
	return Reply(protocol.ResponsePublicKey, c.publicKey)
}

func (r *Relay) handleSendMessage(req *protocol.Request) *protocol.Response {
	var env protocol.Envelope
	if err := env.Decode(req.Payload); err != nil {
		return serverError(err.Error())
	}
	if r.byID(env.To) == nil {
		return serverError("Recipient not found")
	}

	r.nextMsg++
	r.queues[env.To] = append(r.queues[env.To], protocol.MessageRecord{
		From:      env.From,
		MessageID: r.nextMsg,
		Type:      env.Type,
		Content:   env.Content,
	})

	ack := &protocol.Ack{To: env.To, MessageID: r.nextMsg}
	return Reply(protocol.ResponseMessageQueued, ack.Encode())
}

func (r *Relay) handlePullMessages(req *protocol.Request) *protocol.Response {
	if r.byID(req.ClientID) == nil {
		return serverError("Client not found")
	}

	queued := r.queues[req.ClientID]
	delete(r.queues, req.ClientID)

	return Reply(protocol.ResponseMessages, protocol.EncodeMessageRecords(queued))
}

func (r *Relay) find(name string) *relayClient {
	for i := range r.clients {
		if r.clients[i].name == name {
			return &r.clients[i]
		}
	}
	return nil
}

func (r *Relay) byID(id protocol.ClientID) *relayClient {
	for i := range r.clients {
		if r.clients[i].id == id {
			return &r.clients[i]
		}
	}
	return nil
}

func serverError(text string) *protocol.Response {
	return Reply(protocol.CodeServerError, []byte(text))
}
