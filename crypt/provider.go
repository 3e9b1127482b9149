package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rc4"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"sync"
)

// DigestHandle is a resolved, immutable digest algorithm handle. Handles are
// owned by the provider and safely shared for read-only use.
type DigestHandle struct {
	alg     DigestAlgorithm
	size    int
	factory func() hash.Hash
}

func (h *DigestHandle) Algorithm() DigestAlgorithm { return h.alg }
func (h *DigestHandle) Size() int                  { return h.size }

// New returns a fresh incremental hash state for this algorithm.
func (h *DigestHandle) New() hash.Hash { return h.factory() }

// CipherHandle is a resolved, immutable cipher algorithm handle.
type CipherHandle struct {
	alg       CipherAlgorithm
	keySize   int // 0 = variable length
	blockSize int // 0 = stream cipher
	newStream func(key []byte) (cipher.Stream, error)
	newBlock  func(key []byte) (cipher.Block, error)
}

func (h *CipherHandle) Algorithm() CipherAlgorithm { return h.alg }
func (h *CipherHandle) KeySize() int               { return h.keySize }
func (h *CipherHandle) BlockSize() int             { return h.blockSize }

// NewStream returns a keyed stream cipher. Only valid for stream algorithms.
func (h *CipherHandle) NewStream(key []byte) (cipher.Stream, error) {
	if h.newStream == nil {
		return nil, fmt.Errorf("%w: %s is not a stream cipher", ErrBackend, h.alg)
	}
	s, err := h.newStream(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBackend, h.alg, err)
	}
	return s, nil
}

// NewBlock returns a keyed block cipher. Only valid for block algorithms.
func (h *CipherHandle) NewBlock(key []byte) (cipher.Block, error) {
	if h.newBlock == nil {
		return nil, fmt.Errorf("%w: %s is not a block cipher", ErrBackend, h.alg)
	}
	if h.keySize != 0 && len(key) != h.keySize {
		return nil, fmt.Errorf("%w: %s requires a %d-byte key, got %d", ErrBackend, h.alg, h.keySize, len(key))
	}
	b, err := h.newBlock(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBackend, h.alg, err)
	}
	return b, nil
}

// algorithmProvider is a loaded catalog of algorithm constructors. It mirrors
// the explicit provider-activation step that backends such as OpenSSL 3
// require: legacy-only algorithms (RC4) resolve from the "legacy" provider,
// everything else from "default".
type algorithmProvider struct {
	name    string
	digests map[DigestAlgorithm]*DigestHandle
	ciphers map[CipherAlgorithm]*CipherHandle
}

func (p *algorithmProvider) unload() {
	p.digests = nil
	p.ciphers = nil
}

// libContext owns the loaded providers for one process.
type libContext struct {
	providers map[string]*algorithmProvider
}

func newLibContext() (*libContext, error) {
	return &libContext{providers: make(map[string]*algorithmProvider)}, nil
}

func (c *libContext) free() { c.providers = nil }

func (c *libContext) load(name string) (*algorithmProvider, error) {
	if _, ok := c.providers[name]; ok {
		return nil, fmt.Errorf("provider %q already loaded", name)
	}
	p := &algorithmProvider{
		name:    name,
		digests: make(map[DigestAlgorithm]*DigestHandle),
		ciphers: make(map[CipherAlgorithm]*CipherHandle),
	}
	switch name {
	case "legacy":
		p.ciphers[RC4] = &CipherHandle{
			alg: RC4,
			newStream: func(key []byte) (cipher.Stream, error) {
				return rc4.NewCipher(key)
			},
		}
	case "default":
		newAES := func(key []byte) (cipher.Block, error) { return aes.NewCipher(key) }
		p.ciphers[AES128CBC] = &CipherHandle{alg: AES128CBC, keySize: 16, blockSize: aes.BlockSize, newBlock: newAES}
		p.ciphers[AES256CBC] = &CipherHandle{alg: AES256CBC, keySize: 32, blockSize: aes.BlockSize, newBlock: newAES}
		p.digests[MD5] = &DigestHandle{alg: MD5, size: md5.Size, factory: md5.New}
		p.digests[SHA1] = &DigestHandle{alg: SHA1, size: sha1.Size, factory: sha1.New}
		p.digests[SHA256] = &DigestHandle{alg: SHA256, size: sha256.Size, factory: sha256.New}
		p.digests[SHA384] = &DigestHandle{alg: SHA384, size: sha512.Size384, factory: sha512.New384}
		p.digests[SHA512] = &DigestHandle{alg: SHA512, size: sha512.Size, factory: sha512.New}
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	c.providers[name] = p
	return p, nil
}

func (c *libContext) fetchDigest(alg DigestAlgorithm, provider string) (*DigestHandle, error) {
	p, ok := c.providers[provider]
	if !ok {
		return nil, fmt.Errorf("provider %q not loaded", provider)
	}
	h, ok := p.digests[alg]
	if !ok {
		return nil, fmt.Errorf("digest %s not available from provider %q", alg, provider)
	}
	return h, nil
}

func (c *libContext) fetchCipher(alg CipherAlgorithm, provider string) (*CipherHandle, error) {
	p, ok := c.providers[provider]
	if !ok {
		return nil, fmt.Errorf("provider %q not loaded", provider)
	}
	h, ok := p.ciphers[alg]
	if !ok {
		return nil, fmt.Errorf("cipher %s not available from provider %q", alg, provider)
	}
	return h, nil
}

// Provider exposes pre-resolved digest and cipher handles by algorithm
// identity, performing exactly-once backend initialization on first use.
// The zero value is ready; most callers go through Default().
type Provider struct {
	initOnce sync.Once
	initErr  error

	mu       sync.Mutex // guards teardown against concurrent Teardown calls
	tornDown bool

	ctx     *libContext
	legacy  *algorithmProvider
	deflt   *algorithmProvider
	digests map[DigestAlgorithm]*DigestHandle
	ciphers map[CipherAlgorithm]*CipherHandle
}

var defaultProvider Provider

// Default returns the process-wide provider.
func Default() *Provider { return &defaultProvider }

// Initialize performs one-time backend setup: it creates the library
// context, loads the legacy provider before the default one (so legacy-only
// algorithms resolve explicitly rather than through fallback), and resolves
// every supported handle. Idempotent and safe for concurrent first use;
// a failure is remembered and returned by every subsequent call.
func (p *Provider) Initialize() error {
	p.initOnce.Do(func() { p.initErr = p.init() })
	return p.initErr
}

func (p *Provider) init() error {
	ctx, err := newLibContext()
	if err != nil {
		return fmt.Errorf("%w: create library context: %v", ErrInitialization, err)
	}
	legacy, err := ctx.load("legacy")
	if err != nil {
		return fmt.Errorf("%w: load legacy provider: %v", ErrInitialization, err)
	}
	deflt, err := ctx.load("default")
	if err != nil {
		return fmt.Errorf("%w: load default provider: %v", ErrInitialization, err)
	}

	digests := make(map[DigestAlgorithm]*DigestHandle)
	for _, alg := range []DigestAlgorithm{MD5, SHA1, SHA256, SHA384, SHA512} {
		h, err := ctx.fetchDigest(alg, "default")
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInitialization, err)
		}
		digests[alg] = h
	}

	ciphers := make(map[CipherAlgorithm]*CipherHandle)
	rc4Handle, err := ctx.fetchCipher(RC4, "legacy")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInitialization, err)
	}
	ciphers[RC4] = rc4Handle
	for _, alg := range []CipherAlgorithm{AES128CBC, AES256CBC} {
		h, err := ctx.fetchCipher(alg, "default")
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInitialization, err)
		}
		ciphers[alg] = h
	}

	p.ctx = ctx
	p.legacy = legacy
	p.deflt = deflt
	p.digests = digests
	p.ciphers = ciphers
	return nil
}

// GetDigest returns the pre-resolved handle for alg, initializing the
// provider on first use.
func (p *Provider) GetDigest(alg DigestAlgorithm) (*DigestHandle, error) {
	if err := p.Initialize(); err != nil {
		return nil, err
	}
	h, ok := p.digests[alg]
	if !ok {
		return nil, fmt.Errorf("%w: digest %s", ErrUnsupportedAlgorithm, alg)
	}
	return h, nil
}

// GetCipher returns the pre-resolved handle for alg, initializing the
// provider on first use.
func (p *Provider) GetCipher(alg CipherAlgorithm) (*CipherHandle, error) {
	if err := p.Initialize(); err != nil {
		return nil, err
	}
	h, ok := p.ciphers[alg]
	if !ok {
		return nil, fmt.Errorf("%w: cipher %s", ErrUnsupportedAlgorithm, alg)
	}
	return h, nil
}

// Teardown releases the library context and unloads both providers. It is a
// no-op when the provider was never initialized or is already torn down.
// The caller must sequence it after all primitive use; operations after
// Teardown fail.
func (p *Provider) Teardown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tornDown || p.ctx == nil {
		return
	}
	p.ctx.free()
	p.legacy.unload()
	p.deflt.unload()
	p.ctx = nil
	p.legacy = nil
	p.deflt = nil
	p.digests = nil
	p.ciphers = nil
	p.tornDown = true
}
