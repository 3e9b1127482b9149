package filters

import (
	"bytes"
	"testing"

	"github.com/wudi/pdfcodec/crypt"
)

func TestCryptFilterRC4RoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef")
	f := NewCrypt(CryptParams{Cipher: crypt.RC4, Key: key})

	plain := []byte("stream content protected with rc4")
	encrypted, err := f.Encode(plain)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if bytes.Equal(encrypted, plain) {
		t.Fatal("rc4 output equals plaintext")
	}
	decrypted, err := f.Decode(encrypted, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decrypted, plain) {
		t.Fatalf("round trip mismatch: %q", decrypted)
	}
}

func TestCryptFilterAESRoundTrip(t *testing.T) {
	cases := []struct {
		cipher crypt.CipherAlgorithm
		keyLen int
	}{
		{crypt.AES128CBC, 16},
		{crypt.AES256CBC, 32},
	}
	for _, tc := range cases {
		key := bytes.Repeat([]byte{0x42}, tc.keyLen)
		f := NewCrypt(CryptParams{Cipher: tc.cipher, Key: key})

		plain := []byte("sixteen byte blk") // block-aligned input still pads
		encrypted, err := f.Encode(plain)
		if err != nil {
			t.Fatalf("%s encode: %v", tc.cipher, err)
		}
		// IV prefix plus padded ciphertext
		if len(encrypted) != 16+32 {
			t.Fatalf("%s: encrypted length %d", tc.cipher, len(encrypted))
		}
		decrypted, err := f.Decode(encrypted, nil)
		if err != nil {
			t.Fatalf("%s decode: %v", tc.cipher, err)
		}
		if !bytes.Equal(decrypted, plain) {
			t.Fatalf("%s round trip mismatch", tc.cipher)
		}
	}
}

func TestCryptFilterRequiresKey(t *testing.T) {
	f := NewCrypt(CryptParams{Cipher: crypt.RC4})
	if _, err := f.Encode([]byte("x")); err == nil {
		t.Fatal("expected error without key")
	}
	// The key may arrive through decode parameters instead.
	g := NewCrypt(CryptParams{Cipher: crypt.RC4})
	enc, err := NewCrypt(CryptParams{Cipher: crypt.RC4, Key: []byte("k")}).Encode([]byte("data"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := g.Decode(enc, Parameters{"Key": []byte("k")})
	if err != nil {
		t.Fatalf("decode with param key: %v", err)
	}
	if string(out) != "data" {
		t.Fatalf("decoded %q", out)
	}
}

func TestCryptFilterWrongKeySize(t *testing.T) {
	f := NewCrypt(CryptParams{Cipher: crypt.AES256CBC, Key: make([]byte, 16)})
	if _, err := f.Encode([]byte("x")); err == nil {
		t.Fatal("expected key-size error")
	}
}

func TestCryptFilterTruncatedCiphertext(t *testing.T) {
	f := NewCrypt(CryptParams{Cipher: crypt.AES128CBC, Key: make([]byte, 16)})
	if _, err := f.Decode([]byte("short"), nil); err == nil {
		t.Fatal("expected error for truncated ciphertext")
	}
}
