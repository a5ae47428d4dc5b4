package aead

import (
	"io"

	"p2pvoice/application"
)

// Builder constructs a Cipher from a Spec and a key source. Passing
// crypto/rand.Reader draws an OS-CSPRNG key; passing an
// *rng.Seedable derives the same key on both peers from a shared seed, per
// the spec's requirement that both ends be constructed from the same seed.
type Builder struct{}

func NewBuilder() Builder { return Builder{} }

// Build validates spec, draws a key of the right length from keySource, and
// dispatches to the matching concrete implementation.
func (Builder) Build(spec Spec, keySource io.Reader) (application.Cipher, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	key := make([]byte, spec.KeyLen())
	if _, err := io.ReadFull(keySource, key); err != nil {
		return nil, err
	}
	if spec.IsAES() {
		return newAESGCM(key, spec.NonceLen())
	}
	return newChaCha(key, spec.Cha)
}
