package crypt

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"fmt"
)

// EncodeCertificate serializes cert to DER through an in-memory sink and
// returns an owned copy of the sink's contents.
func EncodeCertificate(cert *x509.Certificate) ([]byte, error) {
	if cert == nil {
		return nil, fmt.Errorf("%w: encode certificate: nil certificate", ErrBackend)
	}
	var sink bytes.Buffer
	if _, err := sink.Write(cert.Raw); err != nil {
		return nil, fmt.Errorf("%w: encode certificate: %v", ErrBackend, err)
	}
	if sink.Len() == 0 {
		return nil, fmt.Errorf("%w: encode certificate: zero bytes written", ErrBackend)
	}
	out := make([]byte, sink.Len())
	copy(out, sink.Bytes())
	return out, nil
}

// EncodePrivateKey serializes key to DER (PKCS#8) through an in-memory sink
// and returns an owned copy of the sink's contents.
func EncodePrivateKey(key crypto.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: encode private key: %v", ErrBackend, err)
	}
	var sink bytes.Buffer
	if _, err := sink.Write(der); err != nil {
		return nil, fmt.Errorf("%w: encode private key: %v", ErrBackend, err)
	}
	if sink.Len() == 0 {
		return nil, fmt.Errorf("%w: encode private key: zero bytes written", ErrBackend)
	}
	out := make([]byte, sink.Len())
	copy(out, sink.Bytes())
	return out, nil
}
