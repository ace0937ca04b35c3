package boardingpass

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"bus-fleet/internal/models"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

var ErrInvalidToken = errors.New("boarding pass token is invalid")

type Generator struct {
	aead cipher.AEAD
}

func NewGenerator(secret string) (*Generator, error) {
	key := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Generator{aead: aead}, nil
}

// Encode seals the pass into a URL-safe token. The nonce is prepended.
func (g *Generator) Encode(pass models.BoardingPass) (string, error) {
	data, err := json.Marshal(pass)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, g.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := g.aead.Seal(nonce, nonce, data, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (g *Generator) Decode(token string) (*models.BoardingPass, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if len(sealed) < g.aead.NonceSize() {
		return nil, ErrInvalidToken
	}

	nonce, ciphertext := sealed[:g.aead.NonceSize()], sealed[g.aead.NonceSize():]
	data, err := g.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var pass models.BoardingPass
	if err := json.Unmarshal(data, &pass); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &pass, nil
}

// QRCode renders the encoded pass as a PNG.
func (g *Generator) QRCode(pass models.BoardingPass) ([]byte, error) {
	token, err := g.Encode(pass)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(token, qrcode.Medium, qrSize)
}
