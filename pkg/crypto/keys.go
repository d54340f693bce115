package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"math/big"
	"strings"
)

const (
	// RSAKeyBits matches the key size used by MessageU clients
	RSAKeyBits = 1024

	// RSAPublicExponent keeps the X.509 public key at exactly 160 bytes
	RSAPublicExponent = 17
)

var (
	ErrInvalidKey       = errors.New("invalid key")
	ErrEncryptionFailed = errors.New("encryption failed")
	ErrDecryptionFailed = errors.New("decryption failed")
)

// GenerateRSAKeyPair generates a new RSA-1024 key pair with public exponent 17
func GenerateRSAKeyPair() (*rsa.PrivateKey, error) {
	e := big.NewInt(RSAPublicExponent)
	one := big.NewInt(1)

	for {
		p, err := rand.Prime(rand.Reader, RSAKeyBits/2)
		if err != nil {
			return nil, err
		}
		q, err := rand.Prime(rand.Reader, RSAKeyBits/2)
		if err != nil {
			return nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}

		n := new(big.Int).Mul(p, q)
		if n.BitLen() != RSAKeyBits {
			continue
		}

		pm1 := new(big.Int).Sub(p, one)
		qm1 := new(big.Int).Sub(q, one)
		phi := new(big.Int).Mul(pm1, qm1)

		d := new(big.Int).ModInverse(e, phi)
		if d == nil {
			continue // e shares a factor with phi
		}

		key := &rsa.PrivateKey{
			PublicKey: rsa.PublicKey{N: n, E: RSAPublicExponent},
			D:         d,
			Primes:    []*big.Int{p, q},
		}
		key.Precompute()
		if err := key.Validate(); err != nil {
			return nil, err
		}

		return key, nil
	}
}

// ExportPublicKey exports the public key as X.509 SubjectPublicKeyInfo DER
func ExportPublicKey(key *rsa.PublicKey) ([]byte, error) {
	return x509.MarshalPKIXPublicKey(key)
}

// ImportPublicKey imports an X.509 DER public key
func ImportPublicKey(der []byte) (*rsa.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, ErrInvalidKey
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, ErrInvalidKey
	}

	return rsaPub, nil
}

// ExportPrivateKeyBase64 exports the private key as base64 PKCS#8 DER
func ExportPrivateKeyBase64(key *rsa.PrivateKey) (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// ImportPrivateKeyBase64 imports a base64 private key (PKCS#8 or PKCS#1 DER).
// Embedded whitespace from wrapped lines is ignored.
func ImportPrivateKeyBase64(text string) (*rsa.PrivateKey, error) {
	compact := strings.Join(strings.Fields(text), "")
	der, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, ErrInvalidKey
	}

	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, ErrInvalidKey
		}
		return rsaKey, nil
	}

	key, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, ErrInvalidKey
	}
	return key, nil
}

// ExportPublicKeyPEM exports public key to PEM format
func ExportPublicKeyPEM(key *rsa.PublicKey) ([]byte, error) {
	pubASN1, err := ExportPublicKey(key)
	if err != nil {
		return nil, err
	}

	pubBlock := &pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubASN1,
	}

	return pem.EncodeToMemory(pubBlock), nil
}

// RSAEncrypt encrypts data with RSA public key using OAEP (SHA-1)
func RSAEncrypt(data []byte, publicKey *rsa.PublicKey) ([]byte, error) {
	ciphertext, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, publicKey, data, nil)
	if err != nil {
		return nil, ErrEncryptionFailed
	}
	return ciphertext, nil
}

// RSADecrypt decrypts data with RSA private key using OAEP (SHA-1)
func RSADecrypt(ciphertext []byte, privateKey *rsa.PrivateKey) ([]byte, error) {
	plaintext, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, privateKey, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
