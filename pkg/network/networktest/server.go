// Package networktest provides an in-process stub server speaking the
// MessageU wire format, for tests of the client stack.
package networktest

import (
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"github.com/ZentaChain/messageu-client/pkg/protocol"
)

// Handler answers one request. Returning nil closes the connection without
// writing anything.
type Handler func(req *protocol.Request) *protocol.Response

// Server accepts one request per connection, writes the handler's response and
// closes the connection, like the original MessageU server.
type Server struct {
	listener net.Listener
	handler  Handler

	// HoldOpen keeps the connection open after the response is written,
	// until the client hangs up.
	HoldOpen bool

	mu       sync.Mutex
	requests []*protocol.Request
	wg       sync.WaitGroup
}

// NewServer starts a stub server on a random loopback port
func NewServer(handler Handler) (*Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	s := &Server{
		listener: listener,
		handler:  handler,
	}

	s.wg.Add(1)
	go s.acceptLoop()

	return s, nil
}

// Addr returns the ip:port the server listens on
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Requests returns every request received so far, in arrival order
func (s *Server) Requests() []*protocol.Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*protocol.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Close stops accepting and waits for in-flight connections
func (s *Server) Close() error {
	err := s.listener.Close()
	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Printf("networktest: accept error: %v", err)
			}
			return
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(5 * time.Second))

	req, err := protocol.ReadRequest(conn)
	if err != nil {
		log.Printf("networktest: bad request: %v", err)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	resp := s.handler(req)
	if resp == nil {
		return
	}

	if err := protocol.WriteResponse(conn, resp); err != nil {
		log.Printf("networktest: write error: %v", err)
		return
	}

	if s.HoldOpen {
		// wait for the client to hang up
		buf := make([]byte, 1)
		conn.Read(buf)
	}
}

// Reply builds a handler response with the current protocol version
func Reply(code uint16, payload []byte) *protocol.Response {
	return &protocol.Response{Version: protocol.ClientVersion, Code: code, Payload: payload}
}
