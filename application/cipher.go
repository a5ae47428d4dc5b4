package application

// Cipher is the uniform AEAD contract shared by every concrete algorithm
// family (AES-GCM, ChaCha20-Poly1305, XChaCha20-Poly1305). All operations are
// pure over the byte-slice domain; an implementation owns no mutable state
// beyond its key, so a Cipher value is safe to share across goroutines.
type Cipher interface {
	// Encrypt draws a fresh nonce of NonceSize() bytes, seals plaintext with
	// empty AAD, and returns nonce||ciphertext||tag.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt splits the leading NonceSize() bytes of framed as the nonce and
	// opens the remainder with empty AAD.
	Decrypt(framed []byte) ([]byte, error)

	// EncryptAt seals buffer into a newly allocated output (buffer itself is
	// left unchanged) using a caller-supplied nonce and associated data.
	EncryptAt(nonce, aad, buffer []byte) ([]byte, error)

	// DecryptAt opens buffer using a caller-supplied nonce and associated
	// data.
	DecryptAt(nonce, aad, buffer []byte) ([]byte, error)

	// NonceSize returns this cipher's algorithm-parameterized nonce length.
	NonceSize() int

	// TagSize returns the authentication tag length, 16 for every supported
	// algorithm.
	TagSize() int
}
