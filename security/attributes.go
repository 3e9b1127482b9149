// Package security builds the signed attributes and detached PKCS#7/CMS
// structures used when producing digital signatures over document content.
// Digest and raw-key primitives come from the crypt package.
package security

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	oidData                          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 1}
	oidSignedData                    = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 2}
	oidDigestAlgorithmSHA256         = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}
	oidEncryptionAlgorithmRSA        = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}
	oidAttributeContentType          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 3}
	oidAttributeMessageDigest        = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 4}
	oidAttributeSigningTime          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 5}
	oidAttributeSigningCertificateV2 = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 47}
)

// ErrSigning reports that a signed attribute could not be constructed or
// attached.
var ErrSigning = errors.New("security: signing failed")

// Attribute is one signed attribute: an attribute type OID and its values.
// Value holds the complete SET OF element; encoding/asn1 writes RawValue
// fields verbatim, so the SET wrapper must be present in the value itself.
type Attribute struct {
	Type  asn1.ObjectIdentifier
	Value asn1.RawValue
}

// setOf wraps a single encoded value in a SET OF element, as the attribute
// syntax requires.
func setOf(inner asn1.RawValue) (asn1.RawValue, error) {
	full, err := asn1.Marshal(inner)
	if err != nil {
		return asn1.RawValue{}, err
	}
	return asn1.RawValue{Tag: 17 /* asn1.TagSet */, IsCompound: true, Bytes: full}, nil
}

// SignerContext accumulates signed attributes before signature assembly.
// Attributes are consumed by exactly one assembly and never reused across
// contexts.
type SignerContext struct {
	attrs    []Attribute
	consumed bool
}

// NewSignerContext returns an empty signer context.
func NewSignerContext() *SignerContext { return &SignerContext{} }

func (c *SignerContext) attach(attr Attribute) error {
	if c.consumed {
		return fmt.Errorf("%w: signer context already consumed", ErrSigning)
	}
	c.attrs = append(c.attrs, attr)
	return nil
}

// take hands the accumulated attributes to an assembly and marks the context
// consumed.
func (c *SignerContext) take() ([]Attribute, error) {
	if c.consumed {
		return nil, fmt.Errorf("%w: signer context already consumed", ErrSigning)
	}
	c.consumed = true
	return c.attrs, nil
}

// AddSigningTime attaches the pkcs9 signing-time attribute holding timestamp
// as an ASN.1 UTCTime.
func (c *SignerContext) AddSigningTime(timestamp time.Time) error {
	if timestamp.IsZero() {
		return fmt.Errorf("%w: zero signing time", ErrSigning)
	}
	utc := timestamp.UTC()
	if utc.Year() < 1950 || utc.Year() >= 2050 {
		return fmt.Errorf("%w: signing time %d outside UTCTime range", ErrSigning, utc.Year())
	}
	value, err := setOf(asn1.RawValue{
		Tag:   23, // asn1.TagUTCTime
		Bytes: []byte(utc.Format("060102150405Z")),
	})
	if err != nil {
		return fmt.Errorf("%w: marshal signing time: %v", ErrSigning, err)
	}
	return c.attach(Attribute{Type: oidAttributeSigningTime, Value: value})
}

// SigningCertificateV2 per RFC 5035.
type signingCertificateV2 struct {
	Certs []essCertIDv2
}

type essCertIDv2 struct {
	HashAlgorithm pkix.AlgorithmIdentifier
	CertHash      []byte
	IssuerSerial  *issuerSerial `asn1:"optional"`
}

type issuerSerial struct {
	Issuer       asn1.RawValue // GeneralNames
	SerialNumber *big.Int
}

// AddSigningCertificateV2 attaches the id-aa-signingCertificateV2 attribute
// (RFC 5035): a SigningCertificateV2 sequence with a single ESSCertIDv2
// entry wrapping the pre-computed certificate hash. The hash is copied; the
// caller's buffer is not retained.
func (c *SignerContext) AddSigningCertificateV2(certHash []byte) error {
	if len(certHash) == 0 {
		return fmt.Errorf("%w: empty certificate hash", ErrSigning)
	}
	scv2 := signingCertificateV2{
		Certs: []essCertIDv2{{
			HashAlgorithm: pkix.AlgorithmIdentifier{
				Algorithm:  oidDigestAlgorithmSHA256,
				Parameters: asn1.RawValue{Tag: 5}, // asn1.TagNull
			},
			CertHash: append([]byte(nil), certHash...),
			// IssuerSerial is optional; the signer info already binds
			// issuer and serial.
		}},
	}
	der, err := asn1.Marshal(scv2)
	if err != nil {
		return fmt.Errorf("%w: marshal SigningCertificateV2: %v", ErrSigning, err)
	}
	// The attribute value is the SigningCertificateV2 SEQUENCE itself.
	value, err := setOf(asn1.RawValue{FullBytes: der})
	if err != nil {
		return fmt.Errorf("%w: marshal SigningCertificateV2 value: %v", ErrSigning, err)
	}
	return c.attach(Attribute{Type: oidAttributeSigningCertificateV2, Value: value})
}

// ParseSigningCertificateV2 re-parses a DER-encoded SigningCertificateV2
// value and returns the certificate hashes of its entries in order.
func ParseSigningCertificateV2(der []byte) ([][]byte, error) {
	input := cryptobyte.String(der)
	var scv2, certs cryptobyte.String
	if !input.ReadASN1(&scv2, cbasn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: malformed SigningCertificateV2", ErrSigning)
	}
	if !scv2.ReadASN1(&certs, cbasn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: malformed certificate-id sequence", ErrSigning)
	}
	var hashes [][]byte
	for !certs.Empty() {
		var entry cryptobyte.String
		if !certs.ReadASN1(&entry, cbasn1.SEQUENCE) {
			return nil, fmt.Errorf("%w: malformed ESSCertIDv2", ErrSigning)
		}
		// hashAlgorithm defaults to SHA-256 and may be omitted.
		if entry.PeekASN1Tag(cbasn1.SEQUENCE) {
			var skip cryptobyte.String
			if !entry.ReadASN1(&skip, cbasn1.SEQUENCE) {
				return nil, fmt.Errorf("%w: malformed hash algorithm", ErrSigning)
			}
		}
		var hash cryptobyte.String
		if !entry.ReadASN1(&hash, cbasn1.OCTET_STRING) {
			return nil, fmt.Errorf("%w: malformed certificate hash", ErrSigning)
		}
		hashes = append(hashes, append([]byte(nil), hash...))
	}
	if len(hashes) == 0 {
		return nil, fmt.Errorf("%w: no certificate-id entries", ErrSigning)
	}
	return hashes, nil
}
