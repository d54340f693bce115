package storage

import (
	"bufio"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ZentaChain/messageu-client/pkg/crypto"
	"github.com/ZentaChain/messageu-client/pkg/protocol"
)

// DefaultCredentialsFile is the credentials file name used by MessageU clients
const DefaultCredentialsFile = "me.info"

var (
	ErrCredentialsExist   = errors.New("credentials file already exists")
	ErrInvalidCredentials = errors.New("invalid credentials file")
)

// Credentials is the persisted identity of a registered client
type Credentials struct {
	Name       string
	ID         protocol.ClientID
	PrivateKey *rsa.PrivateKey
}

// CredentialStore reads and writes the me.info file:
//
//	line 1: display name
//	line 2: client id as 32 hex characters
//	line 3+: base64 private key (may be wrapped over several lines)
type CredentialStore struct {
	Path string
}

// NewCredentialStore creates a store backed by path
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{Path: path}
}

// Exists reports whether a credentials file is present
func (s *CredentialStore) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Save writes the credentials once. An existing file is never overwritten.
func (s *CredentialStore) Save(creds *Credentials) error {
	if err := protocol.ValidateName(creds.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	keyText, err := crypto.ExportPrivateKeyBase64(creds.PrivateKey)
	if err != nil {
		return fmt.Errorf("failed to encode private key: %w", err)
	}

	f, err := os.OpenFile(s.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrCredentialsExist
		}
		return fmt.Errorf("failed to create %s: %w", s.Path, err)
	}

	_, err = fmt.Fprintf(f, "%s\n%s\n%s\n", creds.Name, hex.EncodeToString(creds.ID[:]), keyText)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(s.Path)
		return fmt.Errorf("failed to write %s: %w", s.Path, err)
	}

	return nil
}

// Load reads the credentials file
func (s *CredentialStore) Load() (*Credentials, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(lines) < 3 {
		return nil, fmt.Errorf("%w: expected name, id and key lines", ErrInvalidCredentials)
	}

	name := strings.TrimSpace(lines[0])
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidCredentials)
	}

	rawID, err := hex.DecodeString(strings.TrimSpace(lines[1]))
	if err != nil || len(rawID) != protocol.ClientIDSize {
		return nil, fmt.Errorf("%w: client id must be %d hex bytes", ErrInvalidCredentials, protocol.ClientIDSize)
	}

	key, err := crypto.ImportPrivateKeyBase64(strings.Join(lines[2:], ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	return &Credentials{
		Name:       name,
		ID:         protocol.NewClientID(rawID),
		PrivateKey: key,
	}, nil
}
