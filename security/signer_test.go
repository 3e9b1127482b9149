package security

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"testing"
	"time"

	"github.com/wudi/pdfcodec/crypt"
)

func testKeyAndCert(t *testing.T) (*rsa.PrivateKey, *x509.Certificate) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(42),
		Subject:      pkix.Name{CommonName: "signer test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse certificate: %v", err)
	}
	return key, cert
}

func parseSignature(t *testing.T, sig []byte) signedData {
	t.Helper()
	var ci contentInfo
	if _, err := asn1.Unmarshal(sig, &ci); err != nil {
		t.Fatalf("unmarshal content info: %v", err)
	}
	if !ci.ContentType.Equal(oidSignedData) {
		t.Fatalf("content type %v", ci.ContentType)
	}
	var sd signedData
	if _, err := asn1.Unmarshal(ci.Content.Bytes, &sd); err != nil {
		t.Fatalf("unmarshal signed data: %v", err)
	}
	return sd
}

func TestRSASignerProducesVerifiableSignature(t *testing.T) {
	key, cert := testKeyAndCert(t)
	signer := NewRSASigner(key, []*x509.Certificate{cert})

	digest, err := crypt.ComputeDigest([]byte("document content"), crypt.SHA256)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	sig, err := signer.Sign(digest)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	sd := parseSignature(t, sig)
	if len(sd.SignerInfos) != 1 {
		t.Fatalf("got %d signer infos, want 1", len(sd.SignerInfos))
	}
	si := sd.SignerInfos[0]
	if si.IssuerAndSerialNumber.SerialNumber.Cmp(cert.SerialNumber) != 0 {
		t.Fatal("serial number mismatch")
	}

	// The message-digest attribute must carry the content digest inside its
	// SET OF value.
	var foundDigest bool
	for _, attr := range si.AuthenticatedAttributes {
		if !attr.Type.Equal(oidAttributeMessageDigest) {
			continue
		}
		var inner asn1.RawValue
		if _, err := asn1.Unmarshal(attr.Value.Bytes, &inner); err != nil {
			t.Fatalf("unwrap message digest: %v", err)
		}
		if bytes.Equal(inner.Bytes, digest) {
			foundDigest = true
		}
	}
	if !foundDigest {
		t.Fatal("message-digest attribute missing or wrong")
	}

	// The signature covers the SET OF re-encoding of the signed attributes.
	attrBytes, err := marshalAttributeSet(si.AuthenticatedAttributes)
	if err != nil {
		t.Fatalf("marshal attributes: %v", err)
	}
	attrDigest := sha256.Sum256(attrBytes)
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, attrDigest[:], si.EncryptedDigest); err != nil {
		t.Fatalf("signature does not verify: %v", err)
	}
}

func TestRSASignerPAdESAttribute(t *testing.T) {
	key, cert := testKeyAndCert(t)
	signer := NewRSASigner(key, []*x509.Certificate{cert})
	signer.SetPAdES(true)

	digest, _ := crypt.ComputeDigest([]byte("content"), crypt.SHA256)
	sig, err := signer.Sign(digest)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	sd := parseSignature(t, sig)
	si := sd.SignerInfos[0]
	var scv2 *Attribute
	for i, attr := range si.AuthenticatedAttributes {
		if attr.Type.Equal(oidAttributeSigningCertificateV2) {
			scv2 = &si.AuthenticatedAttributes[i]
		}
		if attr.Type.Equal(oidAttributeSigningTime) {
			t.Fatal("PAdES signature must not carry signing-time")
		}
	}
	if scv2 == nil {
		t.Fatal("signing-certificate-v2 attribute missing")
	}

	hashes, err := ParseSigningCertificateV2(scv2.Value.Bytes)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	wantHash := sha256.Sum256(cert.Raw)
	if len(hashes) != 1 || !bytes.Equal(hashes[0], wantHash[:]) {
		t.Fatal("certificate hash mismatch in signing-certificate-v2")
	}
}

func TestRSASignerEmptyChain(t *testing.T) {
	key, _ := testKeyAndCert(t)
	signer := NewRSASigner(key, nil)
	if _, err := signer.Sign([]byte("digest")); err == nil {
		t.Fatal("expected error for empty chain")
	}
}

func TestMockSigner(t *testing.T) {
	var m MockSigner
	if _, err := m.Sign(nil); err == nil {
		t.Fatal("expected error for empty digest")
	}
	sig, err := m.Sign([]byte("x"))
	if err != nil || len(sig) == 0 {
		t.Fatalf("mock sign: %v", err)
	}
}
