package security

import (
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"

	"github.com/wudi/pdfcodec/crypt"
)

type contentInfo struct {
	ContentType asn1.ObjectIdentifier
	Content     asn1.RawValue `asn1:"explicit,tag:0"`
}

type signedData struct {
	Version          int
	DigestAlgorithms []pkix.AlgorithmIdentifier
	EncapContentInfo encapsulatedContentInfo
	Certificates     []asn1.RawValue `asn1:"optional,tag:0,set"`
	CRLs             []asn1.RawValue `asn1:"optional,tag:1,set"`
	SignerInfos      []signerInfo
}

type encapsulatedContentInfo struct {
	EContentType asn1.ObjectIdentifier
	EContent     asn1.RawValue `asn1:"optional,explicit,tag:0"`
}

type signerInfo struct {
	Version                   int
	IssuerAndSerialNumber     issuerAndSerialNumber
	DigestAlgorithm           pkix.AlgorithmIdentifier
	AuthenticatedAttributes   []Attribute `asn1:"optional,tag:0"`
	DigestEncryptionAlgorithm pkix.AlgorithmIdentifier
	EncryptedDigest           []byte
	UnauthenticatedAttributes []Attribute `asn1:"optional,tag:1"`
}

type issuerAndSerialNumber struct {
	Issuer       asn1.RawValue
	SerialNumber *big.Int
}

// digestInfo is the PKCS#1 DigestInfo prepended to a digest before the raw
// private-key transform.
type digestInfo struct {
	Algorithm pkix.AlgorithmIdentifier
	Digest    []byte
}

var nullParams = asn1.RawValue{Tag: 5} // asn1.TagNull

func sha256Identifier() pkix.AlgorithmIdentifier {
	return pkix.AlgorithmIdentifier{Algorithm: oidDigestAlgorithmSHA256, Parameters: nullParams}
}

// createSignature builds a detached PKCS#7 SignedData over contentDigest.
// The content-type and message-digest attributes are always present;
// signing-time and signing-certificate-v2 come from the signer context,
// which is consumed by this call.
func createSignature(priv *rsa.PrivateKey, cert *x509.Certificate, chain []*x509.Certificate, contentDigest []byte, sctx *SignerContext) ([]byte, error) {
	if cert == nil {
		return nil, fmt.Errorf("%w: signer certificate is required", ErrSigning)
	}

	contentTypeValue, err := setOf(asn1.RawValue{Tag: 6 /* asn1.TagOID */, Bytes: oidContentBytes(oidData)})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal content type: %v", ErrSigning, err)
	}
	messageDigestValue, err := setOf(asn1.RawValue{Tag: 4 /* asn1.TagOctetString */, Bytes: contentDigest})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal message digest: %v", ErrSigning, err)
	}
	attrs := []Attribute{
		{Type: oidAttributeContentType, Value: contentTypeValue},
		{Type: oidAttributeMessageDigest, Value: messageDigestValue},
	}
	if sctx != nil {
		extra, err := sctx.take()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, extra...)
	}

	// The signature covers the DER of SET OF Attribute (tag 17), not the
	// [0] IMPLICIT form that appears inside SignerInfo.
	attrBytes, err := marshalAttributeSet(attrs)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal attributes: %v", ErrSigning, err)
	}
	attrDigest, err := crypt.ComputeDigest(attrBytes, crypt.SHA256)
	if err != nil {
		return nil, err
	}
	di, err := asn1.Marshal(digestInfo{Algorithm: sha256Identifier(), Digest: attrDigest})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal digest info: %v", ErrSigning, err)
	}
	signature, err := crypt.RawSign(di, priv)
	if err != nil {
		return nil, err
	}

	si := signerInfo{
		Version: 1,
		IssuerAndSerialNumber: issuerAndSerialNumber{
			// RawIssuer keeps the exact DER from the certificate; a
			// re-marshal could reorder the DN.
			Issuer:       asn1.RawValue{FullBytes: cert.RawIssuer},
			SerialNumber: cert.SerialNumber,
		},
		DigestAlgorithm:         sha256Identifier(),
		AuthenticatedAttributes: attrs,
		DigestEncryptionAlgorithm: pkix.AlgorithmIdentifier{
			Algorithm:  oidEncryptionAlgorithmRSA,
			Parameters: nullParams,
		},
		EncryptedDigest: signature,
	}

	var certs []asn1.RawValue
	certs = append(certs, asn1.RawValue{FullBytes: cert.Raw})
	for _, c := range chain {
		if !c.Equal(cert) {
			certs = append(certs, asn1.RawValue{FullBytes: c.Raw})
		}
	}

	sd := signedData{
		Version:          1,
		DigestAlgorithms: []pkix.AlgorithmIdentifier{sha256Identifier()},
		EncapContentInfo: encapsulatedContentInfo{
			EContentType: oidData,
			// EContent stays empty for a detached signature.
		},
		Certificates: certs,
		SignerInfos:  []signerInfo{si},
	}
	sdBytes, err := asn1.Marshal(sd)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal signed data: %v", ErrSigning, err)
	}

	ci := contentInfo{
		ContentType: oidSignedData,
		Content: asn1.RawValue{
			Class:      asn1.ClassContextSpecific,
			Tag:        0,
			IsCompound: true,
			Bytes:      sdBytes,
		},
	}
	out, err := asn1.Marshal(ci)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal content info: %v", ErrSigning, err)
	}
	return out, nil
}

// oidContentBytes returns the content octets of an OID without its tag and
// length, as RawValue.Bytes expects.
func oidContentBytes(oid asn1.ObjectIdentifier) []byte {
	b, _ := asn1.Marshal(oid)
	var raw asn1.RawValue
	asn1.Unmarshal(b, &raw)
	return raw.Bytes
}

// marshalAttributeSet encodes attrs as SET OF Attribute, including the SET
// tag and length.
func marshalAttributeSet(attrs []Attribute) ([]byte, error) {
	wrapper := struct {
		Attrs []Attribute `asn1:"set"`
	}{Attrs: attrs}
	b, err := asn1.Marshal(wrapper)
	if err != nil {
		return nil, err
	}
	// Strip the wrapper SEQUENCE; its content is exactly the SET OF.
	var raw asn1.RawValue
	if _, err := asn1.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	return raw.Bytes, nil
}
