package filters

import (
	"bytes"
	"errors"
	"io"
)

// NewRunLength returns a filter for the RunLengthDecode encoding.
func NewRunLength() *Filter { return New(&rleCodec{}) }

// rleCodec buffers the whole session input and transforms it at End: run
// boundaries can span blocks, so block-at-a-time output would mis-split runs.
type rleCodec struct {
	buf bytes.Buffer
}

const rleEOD = 0x80

func (*rleCodec) Type() Type      { return TypeRunLength }
func (*rleCodec) CanEncode() bool { return true }
func (*rleCodec) CanDecode() bool { return true }

func (c *rleCodec) BeginEncode(io.Writer) error {
	c.buf.Reset()
	return nil
}

func (c *rleCodec) EncodeBlock(_ io.Writer, p []byte) error {
	_, err := c.buf.Write(p)
	return err
}

func (c *rleCodec) EndEncode(out io.Writer) error {
	in := c.buf.Bytes()
	var encoded bytes.Buffer
	for i := 0; i < len(in); {
		// measure the run starting at i, capped at 128
		run := 1
		for i+run < len(in) && run < 128 && in[i+run] == in[i] {
			run++
		}
		if run >= 2 {
			encoded.WriteByte(byte(257 - run))
			encoded.WriteByte(in[i])
			i += run
			continue
		}
		// literal stretch: until the next run of >= 3 or 128 bytes
		start := i
		for i < len(in) && i-start < 128 {
			if i+2 < len(in) && in[i] == in[i+1] && in[i] == in[i+2] {
				break
			}
			i++
		}
		encoded.WriteByte(byte(i - start - 1))
		encoded.Write(in[start:i])
	}
	encoded.WriteByte(rleEOD)
	c.buf.Reset()
	_, err := out.Write(encoded.Bytes())
	return err
}

func (c *rleCodec) BeginDecode(io.Writer, Parameters) error {
	c.buf.Reset()
	return nil
}

func (c *rleCodec) DecodeBlock(_ io.Writer, p []byte) error {
	_, err := c.buf.Write(p)
	return err
}

func (c *rleCodec) EndDecode(out io.Writer) error {
	in := c.buf.Bytes()
	var decoded bytes.Buffer
	i := 0
	for i < len(in) {
		length := in[i]
		i++
		if length == rleEOD {
			break
		}
		if length < rleEOD {
			n := int(length) + 1
			if i+n > len(in) {
				return errors.New("filters: run-length literal truncated")
			}
			decoded.Write(in[i : i+n])
			i += n
			continue
		}
		if i >= len(in) {
			return errors.New("filters: run-length run truncated")
		}
		decoded.Write(bytes.Repeat(in[i:i+1], 257-int(length)))
		i++
	}
	c.buf.Reset()
	_, err := out.Write(decoded.Bytes())
	return err
}
