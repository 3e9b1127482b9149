package security

import (
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/wudi/pdfcodec/crypt"
)

// Signer represents an entity capable of signing a content digest.
type Signer interface {
	// Sign signs the given content digest and returns the signature bytes
	// (detached PKCS#7/CMS).
	Sign(digest []byte) ([]byte, error)

	// Certificates returns the signer's certificate chain.
	Certificates() []*x509.Certificate
}

// RSASigner implements Signer using an RSA private key.
type RSASigner struct {
	priv  *rsa.PrivateKey
	chain []*x509.Certificate
	pades bool
	now   func() time.Time
}

// NewRSASigner creates a new RSA signer. The first certificate in chain is
// the signing certificate.
func NewRSASigner(priv *rsa.PrivateKey, chain []*x509.Certificate) *RSASigner {
	return &RSASigner{priv: priv, chain: chain, now: time.Now}
}

// SetPAdES toggles the PAdES profile: the signing-certificate-v2 attribute
// is included and the signing-time attribute is left out of the signed
// attributes.
func (s *RSASigner) SetPAdES(enabled bool) { s.pades = enabled }

func (s *RSASigner) Sign(digest []byte) ([]byte, error) {
	if len(s.chain) == 0 {
		return nil, fmt.Errorf("%w: signer certificate chain is empty", ErrSigning)
	}
	cert := s.chain[0]

	sctx := NewSignerContext()
	if s.pades {
		certHash, err := crypt.ComputeDigest(cert.Raw, crypt.SHA256)
		if err != nil {
			return nil, err
		}
		if err := sctx.AddSigningCertificateV2(certHash); err != nil {
			return nil, err
		}
	} else {
		if err := sctx.AddSigningTime(s.now()); err != nil {
			return nil, err
		}
	}

	return createSignature(s.priv, cert, s.chain, digest, sctx)
}

func (s *RSASigner) Certificates() []*x509.Certificate { return s.chain }

// MockSigner for testing without keys.
type MockSigner struct{}

func (MockSigner) Sign(digest []byte) ([]byte, error) {
	if len(digest) == 0 {
		return nil, fmt.Errorf("%w: empty digest", ErrSigning)
	}
	return []byte("mock-signature"), nil
}

func (MockSigner) Certificates() []*x509.Certificate { return nil }
