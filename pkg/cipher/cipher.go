// Package cipher implements the symmetric encryption used to store every
// message body at rest: AES-256-CBC with a fresh random IV per call, wire
// format "<iv-hex>:<ciphertext-hex>".
//
// The key is owned by the room record (pkg/roomstore); this package only
// generates, renders, and uses it. The wire format is fixed by spec.md §4.1
// and §6 and is never extended (no MAC, no additional framing), even though
// an AEAD construction would be stronger — the external interface is
// authoritative.
package cipher

import (
	"crypto/aes"
	gocipher "crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
)

// KeySize is the room cipher key length in bytes (256 bits).
const KeySize = 32

// IVSize is the AES block size used as the CBC initialization vector.
const IVSize = aes.BlockSize // 16

// Errors returned by Decrypt. Matches spec.md §4.1's "rejects if the body
// does not contain exactly one colon, if hex decoding fails, or if the
// final block is not valid PKCS#7".
var (
	ErrMalformed     = errors.New("cipher: malformed body")
	ErrUndecryptable = errors.New("cipher: undecryptable body")
)

// Key is a 256-bit room encryption key.
type Key [KeySize]byte

// NewKey generates a fresh 256-bit key from a CSPRNG.
func NewKey() (Key, error) {
	var k Key
	if _, err := rand.Read(k[:]); err != nil {
		return Key{}, err
	}
	return k, nil
}

// String renders the key as lowercase hex (64 characters). This is the
// single wire/storage encoding used for both newly generated and
// previously persisted keys (SPEC_FULL.md §3 resolves spec.md Open
// Question 1 in favor of hex, uniformly).
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// ParseKey parses a lowercase-hex-encoded key as produced by String.
func ParseKey(s string) (Key, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != KeySize {
		return Key{}, errors.New("cipher: invalid key encoding")
	}
	var k Key
	copy(k[:], b)
	return k, nil
}

// Encrypt encrypts plaintext under key with a fresh random IV, returning
// "<iv-hex>:<ciphertext-hex>". Plaintext is PKCS#7-padded to a block
// boundary before encryption.
func Encrypt(plaintext []byte, key Key) (string, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", err
	}

	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	gocipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. It returns ErrMalformed if body is not exactly
// one colon-separated pair of valid hex strings, or ErrUndecryptable if the
// ciphertext does not decrypt to a validly PKCS#7-padded plaintext under key.
func Decrypt(body string, key Key) ([]byte, error) {
	parts := strings.Split(body, ":")
	if len(parts) != 2 {
		return nil, ErrMalformed
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != IVSize {
		return nil, ErrMalformed
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrMalformed
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, ErrUndecryptable
	}

	padded := make([]byte, len(ciphertext))
	gocipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return nil, ErrUndecryptable
	}
	return plaintext, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("cipher: invalid padded length")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, errors.New("cipher: invalid padding")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errors.New("cipher: invalid padding")
		}
	}
	return data[:len(data)-padLen], nil
}
