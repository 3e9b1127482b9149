package crypt

import (
	"crypto"
	"crypto/rsa"
	"fmt"
)

// RawSign applies the RSA private-key transform to input with deterministic
// PKCS#1 v1.5 padding. The output is always sized to the key's modulus
// length, even for inputs shorter than the modulus. This is not
// confidentiality-grade encryption: it exists for signature schemes that
// need a reproducible raw transform over an externally prepared digest.
func RawSign(input []byte, key *rsa.PrivateKey) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: raw sign: nil key", ErrBackend)
	}
	// crypto.Hash(0) selects raw PKCS#1 v1.5 type-1 padding with no
	// DigestInfo prefix, matching RSA_private_encrypt(RSA_PKCS1_PADDING).
	out, err := rsa.SignPKCS1v15(nil, key, crypto.Hash(0), input)
	if err != nil {
		return nil, fmt.Errorf("%w: raw sign: %v", ErrBackend, err)
	}
	return out, nil
}
