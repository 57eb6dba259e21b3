package cipher

import (
	"bytes"
	"strings"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	key, err := NewKey()
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}

	cases := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte("")},
		{"short", []byte("hello")},
		{"exact block", bytes.Repeat([]byte("a"), 16)},
		{"multi block", []byte("the quick brown fox jumps over the lazy dog")},
		{"unicode", []byte("café au lait — 你好")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, err := Encrypt(tc.plaintext, key)
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}
			got, err := Decrypt(body, key)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if !bytes.Equal(got, tc.plaintext) {
				t.Fatalf("round trip mismatch: got %q want %q", got, tc.plaintext)
			}
		})
	}
}

func TestEncryptProducesDistinctBodies(t *testing.T) {
	key, _ := NewKey()
	a, _ := Encrypt([]byte("hello"), key)
	b, _ := Encrypt([]byte("hello"), key)
	if a == b {
		t.Fatalf("expected distinct ciphertexts for repeated calls, got identical bodies")
	}
}

func TestBodyFormat(t *testing.T) {
	key, _ := NewKey()
	body, err := Encrypt([]byte("hello"), key)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	parts := strings.Split(body, ":")
	if len(parts) != 2 {
		t.Fatalf("expected exactly one colon separator, got body %q", body)
	}
	if len(parts[0]) != IVSize*2 {
		t.Fatalf("expected %d hex chars of IV, got %d", IVSize*2, len(parts[0]))
	}
}

func TestDecryptMalformed(t *testing.T) {
	key, _ := NewKey()

	cases := []struct {
		name string
		body string
	}{
		{"no colon", "deadbeef"},
		{"two colons", "ab:cd:ef"},
		{"bad iv hex", "zz:aabbccddeeff0011223344556677889900aabbccddeeff0011223344556677"},
		{"bad ciphertext hex", "00112233445566778899aabbccddeeff:zz"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decrypt(tc.body, key); err != ErrMalformed {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestDecryptUndecryptable(t *testing.T) {
	key, _ := NewKey()
	other, _ := NewKey()

	body, err := Encrypt([]byte("hello"), key)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := Decrypt(body, other); err == nil {
		t.Fatalf("expected decrypt under wrong key to fail")
	}
}

func TestParseKeyRoundTrip(t *testing.T) {
	key, _ := NewKey()
	s := key.String()
	if len(s) != KeySize*2 {
		t.Fatalf("expected %d hex chars, got %d", KeySize*2, len(s))
	}
	parsed, err := ParseKey(s)
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	if parsed != key {
		t.Fatalf("parsed key does not match original")
	}
}
