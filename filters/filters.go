// Package filters implements the streaming transform filters of the
// document format: the Begin/Block/End encode and decode lifecycle every
// codec honors, one-shot convenience wrappers, and the concrete codecs
// (ASCII encodings, run-length, Flate, LZW and the crypt passthrough).
package filters

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrContract reports a broken session-lifecycle precondition: Block or End
// without a preceding Begin, Begin while a session is open, or use of a
// direction the codec does not support. It is a programming error, reported
// rather than recovered.
var ErrContract = errors.New("filters: session contract violation")

// Type identifies a filter in the closed set the format defines.
type Type int

const (
	TypeNone Type = iota
	TypeASCIIHex
	TypeASCII85
	TypeRunLength
	TypeFlate
	TypeLZW
	TypeCrypt
)

var typeNames = map[Type]string{
	TypeASCIIHex:  "ASCIIHexDecode",
	TypeASCII85:   "ASCII85Decode",
	TypeRunLength: "RunLengthDecode",
	TypeFlate:     "FlateDecode",
	TypeLZW:       "LZWDecode",
	TypeCrypt:     "Crypt",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "None"
}

// TypeByName maps a declared filter name to its Type.
func TypeByName(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return TypeNone, false
}

// Codec is the contract concrete filter implementations satisfy. The guard
// layer (Filter) ensures hooks only run inside a valid session with a valid
// sink; implementations never see out-of-order calls. Block hooks borrow
// their input: an implementation may buffer a copy but must not retain the
// passed slice.
type Codec interface {
	Type() Type
	CanEncode() bool
	CanDecode() bool

	BeginEncode(out io.Writer) error
	EncodeBlock(out io.Writer, p []byte) error
	EndEncode(out io.Writer) error

	BeginDecode(out io.Writer, params Parameters) error
	DecodeBlock(out io.Writer, p []byte) error
	EndDecode(out io.Writer) error
}

type phase int

const (
	phaseIdle phase = iota
	phaseEncoding
	phaseDecoding
	phaseFailed
)

// Filter drives a Codec through the encode/decode session lifecycle,
// enforcing the phase preconditions and the fail-fast poisoning protocol.
// A Filter is a single-owner resource: it is not safe for concurrent use.
type Filter struct {
	codec Codec
	phase phase
	out   io.Writer
}

// New wraps a codec in the session guard layer.
func New(codec Codec) *Filter { return &Filter{codec: codec} }

func (f *Filter) Type() Type      { return f.codec.Type() }
func (f *Filter) CanEncode() bool { return f.codec.CanEncode() }
func (f *Filter) CanDecode() bool { return f.codec.CanDecode() }

// BeginEncode opens an encode session writing to out. Valid when no session
// is open; a Failed filter is reset.
func (f *Filter) BeginEncode(out io.Writer) error {
	if !f.codec.CanEncode() {
		return fmt.Errorf("%w: %s cannot encode", ErrContract, f.Type())
	}
	if f.phase == phaseEncoding || f.phase == phaseDecoding {
		return fmt.Errorf("%w: BeginEncode with a session open", ErrContract)
	}
	if out == nil {
		return fmt.Errorf("%w: nil output sink", ErrContract)
	}
	f.out = out
	f.phase = phaseEncoding
	if err := f.codec.BeginEncode(out); err != nil {
		f.Fail()
		return err
	}
	return nil
}

// EncodeBlock encodes one block of data. The codec may buffer a copy but the
// caller keeps ownership of p.
func (f *Filter) EncodeBlock(p []byte) error {
	if f.phase != phaseEncoding {
		return fmt.Errorf("%w: EncodeBlock without BeginEncode", ErrContract)
	}
	if err := f.codec.EncodeBlock(f.out, p); err != nil {
		f.Fail()
		return err
	}
	return nil
}

// EndEncode flushes the codec, detaches the sink and returns the filter to
// the idle state. On a flush failure the session is poisoned instead.
func (f *Filter) EndEncode() error {
	if f.phase != phaseEncoding {
		return fmt.Errorf("%w: EndEncode without BeginEncode", ErrContract)
	}
	if err := f.codec.EndEncode(f.out); err != nil {
		f.Fail()
		return err
	}
	f.out = nil
	f.phase = phaseIdle
	return nil
}

// BeginDecode opens a decode session writing to out, with optional
// decode parameters.
func (f *Filter) BeginDecode(out io.Writer, params Parameters) error {
	if !f.codec.CanDecode() {
		return fmt.Errorf("%w: %s cannot decode", ErrContract, f.Type())
	}
	if f.phase == phaseEncoding || f.phase == phaseDecoding {
		return fmt.Errorf("%w: BeginDecode with a session open", ErrContract)
	}
	if out == nil {
		return fmt.Errorf("%w: nil output sink", ErrContract)
	}
	f.out = out
	f.phase = phaseDecoding
	if err := f.codec.BeginDecode(out, params); err != nil {
		f.Fail()
		return err
	}
	return nil
}

// DecodeBlock decodes one block of data.
func (f *Filter) DecodeBlock(p []byte) error {
	if f.phase != phaseDecoding {
		return fmt.Errorf("%w: DecodeBlock without BeginDecode", ErrContract)
	}
	if err := f.codec.DecodeBlock(f.out, p); err != nil {
		f.Fail()
		return err
	}
	return nil
}

// EndDecode flushes the codec, detaches the sink and returns the filter to
// the idle state. On a flush failure the session is poisoned instead.
func (f *Filter) EndDecode() error {
	if f.phase != phaseDecoding {
		return fmt.Errorf("%w: EndDecode without BeginDecode", ErrContract)
	}
	if err := f.codec.EndDecode(f.out); err != nil {
		f.Fail()
		return err
	}
	f.out = nil
	f.phase = phaseIdle
	return nil
}

// Fail poisons the filter without invoking any codec hook: the sink is
// detached and every Block/End call is rejected until the next Begin.
func (f *Filter) Fail() {
	f.out = nil
	f.phase = phaseFailed
}

// EncodeTo encodes in as a single Begin/Block/End session writing to out.
// Not safe while a progressive session is open on this filter.
func (f *Filter) EncodeTo(out io.Writer, in []byte) error {
	if err := f.BeginEncode(out); err != nil {
		return err
	}
	if err := f.EncodeBlock(in); err != nil {
		return err
	}
	return f.EndEncode()
}

// Encode is EncodeTo over a fresh in-memory sink.
func (f *Filter) Encode(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.EncodeTo(&buf, in); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeTo decodes in as a single Begin/Block/End session writing to out.
func (f *Filter) DecodeTo(out io.Writer, in []byte, params Parameters) error {
	if err := f.BeginDecode(out, params); err != nil {
		return err
	}
	if err := f.DecodeBlock(in); err != nil {
		return err
	}
	return f.EndDecode()
}

// Decode is DecodeTo over a fresh in-memory sink.
func (f *Filter) Decode(in []byte, params Parameters) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.DecodeTo(&buf, in, params); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
