// Package sealer encrypts small secrets at rest with AES-256-GCM.
package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const KeySize = 32

var ErrMalformed = errors.New("sealed data is malformed")

type Sealer struct {
	aead cipher.AEAD
}

// New builds a Sealer from a base64-encoded 32-byte key.
func New(encodedKey string) (*Sealer, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encodedKey))
	if err != nil {
		return nil, fmt.Errorf("session key is not valid base64: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("session key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// Seal returns nonce||ciphertext encoded as unpadded URL-safe base64.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	ct := s.aead.Seal(nonce, nonce, plaintext, nil)
	out := make([]byte, base64.RawURLEncoding.EncodedLen(len(ct)))
	base64.RawURLEncoding.Encode(out, ct)
	return out, nil
}

func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	data := make([]byte, base64.RawURLEncoding.DecodedLen(len(sealed)))
	n, err := base64.RawURLEncoding.Decode(data, []byte(strings.TrimSpace(string(sealed))))
	if err != nil {
		return nil, ErrMalformed
	}
	data = data[:n]

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, ErrMalformed
	}

	nonce, ct := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open sealed data: %w", err)
	}
	return plaintext, nil
}
