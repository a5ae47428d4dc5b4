package session

import (
	"fmt"
	"strings"

	"p2pvoice/infrastructure/cryptography/aead"
	"p2pvoice/infrastructure/settings"
)

// cipherSpecFromConfig maps the TOML encryption table onto the aead
// package's dispatch-table Spec, per spec.md §9's guidance to realize the
// algorithm/nonce matrix as a finite table rather than open-ended generics.
func cipherSpecFromConfig(cfg settings.EncryptionConfig) (aead.Spec, error) {
	if err := cfg.Validate(); err != nil {
		return aead.Spec{}, err
	}

	if cfg.AES != nil {
		bits, err := aesKeyBits(cfg.AES.Cipher)
		if err != nil {
			return aead.Spec{}, err
		}
		nonce := aead.DefaultAesNonceLen
		if cfg.AES.Nonce != 0 {
			nonce = aead.AesNonceLen(cfg.AES.Nonce)
		}
		return aead.AES(bits, nonce), nil
	}

	variant, err := chaChaVariant(cfg.ChaCha.Cipher)
	if err != nil {
		return aead.Spec{}, err
	}
	return aead.ChaCha(variant), nil
}

func aesKeyBits(name string) (aead.AesKeyBits, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "AES128":
		return aead.AES128, nil
	case "AES192":
		return aead.AES192, nil
	case "AES256":
		return aead.AES256, nil
	default:
		return 0, fmt.Errorf("encryption: unknown AES cipher %q", name)
	}
}

func chaChaVariant(name string) (aead.ChaChaVariant, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "CHACHA20POLY1305":
		return aead.ChaCha20Poly1305, nil
	case "XCHACHA20POLY1305":
		return aead.XChaCha20Poly1305, nil
	default:
		return 0, fmt.Errorf("encryption: unknown ChaCha cipher %q", name)
	}
}
