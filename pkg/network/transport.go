package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"github.com/ZentaChain/messageu-client/pkg/protocol"
)

// readChunkSize is how much is pulled off the socket per read
const readChunkSize = 4096

const (
	initialDialBackoff = 250 * time.Millisecond
	maxDialBackoff     = 5 * time.Second
)

// Transport performs one request/response exchange with the server
type Transport interface {
	RoundTrip(ctx context.Context, addr string, frame []byte) ([]byte, error)
}

// TCPTransport opens a fresh TCP connection for every exchange.
//
// The server signals the end of a response by closing the connection. When
// Complete is set, reading also stops as soon as it reports a full frame, so a
// server that keeps the socket open does not stall the caller.
//
// Only the connect step is retried (DialRetries extra attempts with doubling
// backoff): nothing has reached the server yet, so a retry cannot duplicate a
// request.
type TCPTransport struct {
	DialTimeout time.Duration
	ReadTimeout time.Duration
	DialRetries int
	Complete    func(buf []byte) bool
	Verbose     bool
}

// NewTCPTransport creates a transport that stops on a complete response frame
func NewTCPTransport(dialTimeout, readTimeout time.Duration) *TCPTransport {
	return &TCPTransport{
		DialTimeout: dialTimeout,
		ReadTimeout: readTimeout,
		Complete:    protocol.ResponseComplete,
	}
}

// RoundTrip connects, writes the whole frame, and returns every byte received
// until the peer closes. An empty result is not an error at this layer.
func (t *TCPTransport) RoundTrip(ctx context.Context, addr string, frame []byte) ([]byte, error) {
	conn, err := t.dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if t.Verbose {
		log.Printf("📤 Sending %d bytes to %s", len(frame), addr)
	}

	// Unblock pending I/O if the caller gives up
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := writeAll(conn, frame); err != nil {
		return nil, t.wrapErr(ctx, "send", err)
	}

	buf, err := t.readResponse(conn)
	if err != nil {
		return nil, t.wrapErr(ctx, "receive", err)
	}

	if t.Verbose {
		log.Printf("📥 Received %d bytes from %s", len(buf), addr)
	}

	return buf, nil
}

func (t *TCPTransport) dial(ctx context.Context, addr string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: t.DialTimeout}
	backoff := initialDialBackoff

	for attempt := 0; ; attempt++ {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			return conn, nil
		}
		if attempt >= t.DialRetries || ctx.Err() != nil {
			return nil, fmt.Errorf("%w: connect %s: %v", protocol.ErrTransport, addr, err)
		}

		log.Printf("🔄 Connect to %s failed, retrying in %v...", addr, backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: connect %s: %v", protocol.ErrTransport, addr, ctx.Err())
		}

		// Exponential backoff
		backoff *= 2
		if backoff > maxDialBackoff {
			backoff = maxDialBackoff
		}
	}
}

// writeAll loops until every byte is accepted by the connection
func writeAll(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

func (t *TCPTransport) readResponse(conn net.Conn) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, readChunkSize)

	for {
		if t.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(t.ReadTimeout))
		}

		n, err := conn.Read(chunk)
		buf = append(buf, chunk[:n]...)

		if t.Complete != nil && t.Complete(buf) {
			return buf, nil
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			return nil, err
		}
	}
}

func (t *TCPTransport) wrapErr(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return fmt.Errorf("%w: %s: %v", protocol.ErrTransport, op, err)
}
