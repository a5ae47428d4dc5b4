package aead

import (
	"crypto/rand"

	"golang.org/x/crypto/chacha20poly1305"

	domainerrors "p2pvoice/domain/errors"
)

// chaCha implements application.Cipher over golang.org/x/crypto/chacha20poly1305,
// covering both the standard (12-byte nonce) and extended-nonce (24-byte,
// XChaCha20-Poly1305) constructions.
type chaCha struct {
	aead      aeadCore
	nonceSize int
}

// aeadCore is the subset of cipher.AEAD both constructors return.
type aeadCore interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
}

func newChaCha(key []byte, variant ChaChaVariant) (*chaCha, error) {
	var (
		a         aeadCore
		err       error
		nonceSize int
	)
	switch variant {
	case XChaCha20Poly1305:
		a, err = chacha20poly1305.NewX(key)
		nonceSize = chacha20poly1305.NonceSizeX
	default:
		a, err = chacha20poly1305.New(key)
		nonceSize = chacha20poly1305.NonceSize
	}
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.UnexpectedAEAD, "chacha20poly1305 key setup", err)
	}
	return &chaCha{aead: a, nonceSize: nonceSize}, nil
}

func (c *chaCha) NonceSize() int { return c.nonceSize }
func (c *chaCha) TagSize() int   { return chacha20poly1305.Overhead }

func (c *chaCha) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, domainerrors.Wrap(domainerrors.UnexpectedAEAD, "nonce draw", err)
	}
	sealed := c.aead.Seal(nil, nonce, plaintext, nil)
	return append(nonce, sealed...), nil
}

func (c *chaCha) Decrypt(framed []byte) ([]byte, error) {
	if len(framed) < c.nonceSize {
		return nil, domainerrors.New(domainerrors.InvalidInput, "ciphertext shorter than nonce size")
	}
	nonce, sealed := framed[:c.nonceSize], framed[c.nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.UnexpectedAEAD, "chacha20poly1305 open", err)
	}
	return plaintext, nil
}

func (c *chaCha) EncryptAt(nonce, aad, buffer []byte) ([]byte, error) {
	if len(nonce) != c.nonceSize {
		return nil, domainerrors.New(domainerrors.UnexpectedAEAD, "nonce length mismatch")
	}
	return c.aead.Seal(nil, nonce, buffer, aad), nil
}

func (c *chaCha) DecryptAt(nonce, aad, buffer []byte) ([]byte, error) {
	if len(nonce) != c.nonceSize {
		return nil, domainerrors.New(domainerrors.UnexpectedAEAD, "nonce length mismatch")
	}
	plaintext, err := c.aead.Open(nil, nonce, buffer, aad)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.UnexpectedAEAD, "chacha20poly1305 open", err)
	}
	return plaintext, nil
}
