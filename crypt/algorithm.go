// Package crypt provides the cryptographic primitives shared by the crypt
// filter and the signature subsystem: a process-wide provider of digest and
// cipher algorithm handles, one-shot and in-place digest computation, the
// deterministic raw RSA transform used by signature schemes, and DER encoding
// of certificates and keys.
package crypt

import "errors"

var (
	// ErrInitialization reports that the backend context or one of its
	// algorithm providers could not be created. It is fatal: initialization
	// is attempted once per process and never retried.
	ErrInitialization = errors.New("crypt: backend initialization failed")

	// ErrUnsupportedAlgorithm reports a request for an algorithm identity
	// with no resolvable handle.
	ErrUnsupportedAlgorithm = errors.New("crypt: unsupported algorithm")

	// ErrBackend reports a failed digest, cipher, encode or sign step. The
	// provider stays usable for subsequent calls.
	ErrBackend = errors.New("crypt: backend operation failed")
)

// DigestAlgorithm identifies a digest algorithm independently of any
// backend-specific handle.
type DigestAlgorithm int

const (
	DigestUnknown DigestAlgorithm = iota
	MD5
	SHA1
	SHA256
	SHA384
	SHA512
)

func (a DigestAlgorithm) String() string {
	switch a {
	case MD5:
		return "MD5"
	case SHA1:
		return "SHA1"
	case SHA256:
		return "SHA2-256"
	case SHA384:
		return "SHA2-384"
	case SHA512:
		return "SHA2-512"
	default:
		return "Unknown"
	}
}

// Size returns the digest length in bytes, or 0 for an unknown algorithm.
func (a DigestAlgorithm) Size() int {
	switch a {
	case MD5:
		return 16
	case SHA1:
		return 20
	case SHA256:
		return 32
	case SHA384:
		return 48
	case SHA512:
		return 64
	default:
		return 0
	}
}

// CipherAlgorithm identifies a symmetric cipher independently of any
// backend-specific handle.
type CipherAlgorithm int

const (
	CipherUnknown CipherAlgorithm = iota
	RC4
	AES128CBC
	AES256CBC
)

func (a CipherAlgorithm) String() string {
	switch a {
	case RC4:
		return "RC4"
	case AES128CBC:
		return "AES-128-CBC"
	case AES256CBC:
		return "AES-256-CBC"
	default:
		return "Unknown"
	}
}

// KeySize returns the fixed key length in bytes, or 0 when the algorithm
// accepts variable-length keys (RC4).
func (a CipherAlgorithm) KeySize() int {
	switch a {
	case AES128CBC:
		return 16
	case AES256CBC:
		return 32
	default:
		return 0
	}
}
