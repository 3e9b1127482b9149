package crypt

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestComputeDigestKnownVector(t *testing.T) {
	sum, err := ComputeDigest([]byte("abc"), SHA256)
	if err != nil {
		t.Fatalf("compute digest: %v", err)
	}
	want, _ := hex.DecodeString("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	if !bytes.Equal(sum, want) {
		t.Fatalf("sha256(abc) mismatch: got %x want %x", sum, want)
	}

	str, err := ComputeDigestHex([]byte("abc"), SHA256)
	if err != nil {
		t.Fatalf("compute digest hex: %v", err)
	}
	if str != hex.EncodeToString(want) {
		t.Fatalf("hex form mismatch: got %s", str)
	}
}

func TestComputeDigestLengths(t *testing.T) {
	cases := []struct {
		alg  DigestAlgorithm
		size int
	}{
		{MD5, 16},
		{SHA1, 20},
		{SHA256, 32},
		{SHA384, 48},
		{SHA512, 64},
	}
	for _, tc := range cases {
		sum, err := ComputeDigest([]byte("some input"), tc.alg)
		if err != nil {
			t.Fatalf("%s: %v", tc.alg, err)
		}
		if len(sum) != tc.size {
			t.Fatalf("%s: digest length %d, want %d", tc.alg, len(sum), tc.size)
		}
		if tc.alg.Size() != tc.size {
			t.Fatalf("%s: Size() = %d, want %d", tc.alg, tc.alg.Size(), tc.size)
		}
	}
}

func TestComputeDigestDeterministic(t *testing.T) {
	data := []byte("determinism check")
	first, err := ComputeDigest(data, SHA384)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := ComputeDigest(data, SHA384)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("repeated digests differ: %x vs %x", first, second)
	}
}

func TestComputeDigestInto(t *testing.T) {
	data := []byte("in-place")
	want, err := ComputeDigest(data, SHA512)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}

	buf := make([]byte, 0, 64)
	n, err := ComputeDigestInto(buf, data, SHA512)
	if err != nil {
		t.Fatalf("in-place: %v", err)
	}
	if n != 64 {
		t.Fatalf("in-place length %d, want 64", n)
	}
	if !bytes.Equal(buf[:n], want) {
		t.Fatalf("in-place digest differs from batch form")
	}
}

func TestComputeDigestIntoShortBuffer(t *testing.T) {
	if _, err := ComputeDigestInto(make([]byte, 0, 8), []byte("x"), SHA256); err == nil {
		t.Fatal("expected error for undersized destination")
	}
}

func TestComputeDigestUnsupported(t *testing.T) {
	if _, err := ComputeDigest([]byte("x"), DigestUnknown); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}
