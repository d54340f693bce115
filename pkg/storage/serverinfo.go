package storage

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	ma "github.com/multiformats/go-multiaddr"
)

const (
	// DefaultServerInfoFile holds the server address
	DefaultServerInfoFile = "server.info"

	// DefaultServerAddress is used when no server.info is present
	DefaultServerAddress = "127.0.0.1:1357"
)

var ErrInvalidServerInfo = errors.New("invalid server address")

// ReadServerInfo reads the server address from path.
// A missing file falls back to DefaultServerAddress; malformed content is an error.
func ReadServerInfo(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("⚠️  %s not found, using default server %s", path, DefaultServerAddress)
		return DefaultServerAddress, nil
	}
	if err != nil {
		return "", err
	}

	line, _, _ := strings.Cut(string(data), "\n")
	addr, err := ParseServerAddress(line)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	return addr, nil
}

// ParseServerAddress accepts "host:port" or a multiaddr such as
// /ip4/127.0.0.1/tcp/1357 and returns a dialable host:port
func ParseServerAddress(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidServerInfo)
	}

	if strings.HasPrefix(text, "/") {
		return parseMultiaddr(text)
	}

	host, port, err := net.SplitHostPort(text)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidServerInfo, err)
	}
	if host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidServerInfo)
	}
	if err := validatePort(port); err != nil {
		return "", err
	}

	return net.JoinHostPort(host, port), nil
}

func parseMultiaddr(text string) (string, error) {
	addr, err := ma.NewMultiaddr(text)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidServerInfo, err)
	}

	var host string
	for _, code := range []int{ma.P_IP4, ma.P_IP6, ma.P_DNS4, ma.P_DNS6, ma.P_DNS} {
		if value, err := addr.ValueForProtocol(code); err == nil {
			host = value
			break
		}
	}
	if host == "" {
		return "", fmt.Errorf("%w: multiaddr has no ip or dns component", ErrInvalidServerInfo)
	}

	port, err := addr.ValueForProtocol(ma.P_TCP)
	if err != nil {
		return "", fmt.Errorf("%w: multiaddr has no tcp component", ErrInvalidServerInfo)
	}
	if err := validatePort(port); err != nil {
		return "", err
	}

	return net.JoinHostPort(host, port), nil
}

func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%w: bad port %q", ErrInvalidServerInfo, port)
	}
	return nil
}
