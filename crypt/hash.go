package crypt

import (
	"encoding/hex"
	"fmt"
)

// ComputeDigest hashes data with the given algorithm and returns the digest
// as an owned slice. The computation is a single init/update/finalize
// session; no partial result is returned on failure.
func ComputeDigest(data []byte, alg DigestAlgorithm) ([]byte, error) {
	h, err := Default().GetDigest(alg)
	if err != nil {
		return nil, err
	}
	state := h.New()
	if _, err := state.Write(data); err != nil {
		return nil, fmt.Errorf("%w: %s update: %v", ErrBackend, alg, err)
	}
	return state.Sum(nil), nil
}

// ComputeDigestInto hashes data into dst without allocating, for call sites
// on the hot signing path. dst must have capacity for the algorithm's digest
// size; the digest length is returned.
func ComputeDigestInto(dst, data []byte, alg DigestAlgorithm) (int, error) {
	h, err := Default().GetDigest(alg)
	if err != nil {
		return 0, err
	}
	if cap(dst) < h.Size() {
		return 0, fmt.Errorf("%w: %s digest needs %d bytes, dst has capacity %d", ErrBackend, alg, h.Size(), cap(dst))
	}
	state := h.New()
	if _, err := state.Write(data); err != nil {
		return 0, fmt.Errorf("%w: %s update: %v", ErrBackend, alg, err)
	}
	state.Sum(dst[:0])
	return h.Size(), nil
}

// ComputeDigestHex returns the lowercase hexadecimal encoding of the digest
// of data.
func ComputeDigestHex(data []byte, alg DigestAlgorithm) (string, error) {
	sum, err := ComputeDigest(data, alg)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

// ComputeMD5 is a convenience form of ComputeDigest for MD5.
func ComputeMD5(data []byte) ([]byte, error) { return ComputeDigest(data, MD5) }

// ComputeSHA1 is a convenience form of ComputeDigest for SHA-1.
func ComputeSHA1(data []byte) ([]byte, error) { return ComputeDigest(data, SHA1) }

// ComputeMD5Hex returns the lowercase hex MD5 of data.
func ComputeMD5Hex(data []byte) (string, error) { return ComputeDigestHex(data, MD5) }

// ComputeSHA1Hex returns the lowercase hex SHA-1 of data.
func ComputeSHA1Hex(data []byte) (string, error) { return ComputeDigestHex(data, SHA1) }
