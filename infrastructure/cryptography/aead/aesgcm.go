package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	domainerrors "p2pvoice/domain/errors"
)

// aesGCM implements application.Cipher over crypto/aes + crypto/cipher's
// GCM mode, with a caller-parameterized nonce length (12-16 bytes).
type aesGCM struct {
	gcm       cipher.AEAD
	nonceSize int
}

func newAESGCM(key []byte, nonceSize int) (*aesGCM, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.UnexpectedAEAD, "aes key setup", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.UnexpectedAEAD, "gcm setup", err)
	}
	return &aesGCM{gcm: gcm, nonceSize: nonceSize}, nil
}

func (c *aesGCM) NonceSize() int { return c.nonceSize }
func (c *aesGCM) TagSize() int   { return 16 }

func (c *aesGCM) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, domainerrors.Wrap(domainerrors.UnexpectedAEAD, "nonce draw", err)
	}
	sealed := c.gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, sealed...), nil
}

func (c *aesGCM) Decrypt(framed []byte) ([]byte, error) {
	if len(framed) < c.nonceSize {
		return nil, domainerrors.New(domainerrors.InvalidInput, "ciphertext shorter than nonce size")
	}
	nonce, sealed := framed[:c.nonceSize], framed[c.nonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.UnexpectedAEAD, "gcm open", err)
	}
	return plaintext, nil
}

func (c *aesGCM) EncryptAt(nonce, aad, buffer []byte) ([]byte, error) {
	if len(nonce) != c.nonceSize {
		return nil, domainerrors.New(domainerrors.UnexpectedAEAD, "nonce length mismatch")
	}
	return c.gcm.Seal(nil, nonce, buffer, aad), nil
}

func (c *aesGCM) DecryptAt(nonce, aad, buffer []byte) ([]byte, error) {
	if len(nonce) != c.nonceSize {
		return nil, domainerrors.New(domainerrors.UnexpectedAEAD, "nonce length mismatch")
	}
	plaintext, err := c.gcm.Open(nil, nonce, buffer, aad)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.UnexpectedAEAD, "gcm open", err)
	}
	return plaintext, nil
}
