package crypt

import (
	"errors"
	"sync"
	"testing"
)

func TestProviderConcurrentFirstUse(t *testing.T) {
	var p Provider
	const n = 32

	var wg sync.WaitGroup
	errs := make([]error, n)
	handles := make([]*DigestHandle, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = p.GetDigest(SHA256)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("call %d: %v", i, errs[i])
		}
		if handles[i] == nil {
			t.Fatalf("call %d: nil handle", i)
		}
		// Exactly one initialization means every caller sees the same
		// resolved handle.
		if handles[i] != handles[0] {
			t.Fatalf("call %d observed a different handle", i)
		}
	}
	if p.legacy == nil || p.deflt == nil {
		t.Fatal("providers not loaded")
	}
}

func TestProviderHandles(t *testing.T) {
	var p Provider
	for _, alg := range []DigestAlgorithm{MD5, SHA1, SHA256, SHA384, SHA512} {
		h, err := p.GetDigest(alg)
		if err != nil {
			t.Fatalf("%s: %v", alg, err)
		}
		if h.Size() != alg.Size() {
			t.Fatalf("%s: handle size %d, want %d", alg, h.Size(), alg.Size())
		}
	}
	for _, alg := range []CipherAlgorithm{RC4, AES128CBC, AES256CBC} {
		h, err := p.GetCipher(alg)
		if err != nil {
			t.Fatalf("%s: %v", alg, err)
		}
		if h.Algorithm() != alg {
			t.Fatalf("%s: handle reports %s", alg, h.Algorithm())
		}
	}
}

func TestProviderUnsupported(t *testing.T) {
	var p Provider
	if _, err := p.GetDigest(DigestUnknown); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
	if _, err := p.GetCipher(CipherUnknown); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestProviderTeardown(t *testing.T) {
	var p Provider
	if err := p.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	p.Teardown()
	p.Teardown() // second call is a no-op

	if _, err := p.GetDigest(SHA256); err == nil {
		t.Fatal("expected failure after teardown")
	}
}

func TestProviderTeardownWithoutInit(t *testing.T) {
	var p Provider
	p.Teardown() // must not panic or initialize
	if p.ctx != nil {
		t.Fatal("teardown initialized the provider")
	}
}

func TestCipherHandleKeySize(t *testing.T) {
	var p Provider
	h, err := p.GetCipher(AES256CBC)
	if err != nil {
		t.Fatalf("get cipher: %v", err)
	}
	if _, err := h.NewBlock(make([]byte, 16)); err == nil {
		t.Fatal("expected key-size error for AES-256 with 16-byte key")
	}
	if _, err := h.NewBlock(make([]byte, 32)); err != nil {
		t.Fatalf("32-byte key rejected: %v", err)
	}

	rc4Handle, err := p.GetCipher(RC4)
	if err != nil {
		t.Fatalf("get rc4: %v", err)
	}
	if _, err := rc4Handle.NewStream([]byte("variable length key")); err != nil {
		t.Fatalf("rc4 key rejected: %v", err)
	}
	if _, err := rc4Handle.NewBlock([]byte("k")); err == nil {
		t.Fatal("rc4 is not a block cipher")
	}
}
