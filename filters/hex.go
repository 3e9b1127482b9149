package filters

import (
	"encoding/hex"
	"fmt"
	"io"
)

// NewASCIIHex returns a filter for the ASCIIHexDecode encoding.
func NewASCIIHex() *Filter { return New(&hexCodec{}) }

type hexCodec struct {
	// decode state, reset by BeginDecode
	half byte
	have bool
	eod  bool
}

func (*hexCodec) Type() Type      { return TypeASCIIHex }
func (*hexCodec) CanEncode() bool { return true }
func (*hexCodec) CanDecode() bool { return true }

func (*hexCodec) BeginEncode(io.Writer) error { return nil }

func (*hexCodec) EncodeBlock(out io.Writer, p []byte) error {
	buf := make([]byte, hex.EncodedLen(len(p)))
	hex.Encode(buf, p)
	_, err := out.Write(buf)
	return err
}

func (*hexCodec) EndEncode(out io.Writer) error {
	_, err := out.Write([]byte{'>'})
	return err
}

func (c *hexCodec) BeginDecode(io.Writer, Parameters) error {
	c.half, c.have, c.eod = 0, false, false
	return nil
}

func (c *hexCodec) DecodeBlock(out io.Writer, p []byte) error {
	if c.eod {
		return nil
	}
	buf := make([]byte, 0, len(p)/2+1)
	for _, b := range p {
		switch {
		case b == '>':
			c.eod = true
		case isWhitespace(b):
			continue
		default:
			nibble, ok := hexNibble(b)
			if !ok {
				return fmt.Errorf("filters: invalid hex character %q", b)
			}
			if c.have {
				buf = append(buf, c.half<<4|nibble)
				c.have = false
			} else {
				c.half = nibble
				c.have = true
			}
		}
		if c.eod {
			break
		}
	}
	_, err := out.Write(buf)
	return err
}

func (c *hexCodec) EndDecode(out io.Writer) error {
	// odd trailing nibble is padded with 0
	if c.have {
		if _, err := out.Write([]byte{c.half << 4}); err != nil {
			return err
		}
		c.have = false
	}
	return nil
}

func hexNibble(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}

func isWhitespace(b byte) bool {
	switch b {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	default:
		return false
	}
}
