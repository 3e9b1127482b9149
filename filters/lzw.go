package filters

import (
	"bytes"
	"compress/lzw"
	"io"
)

// NewLZW returns a filter for the LZWDecode encoding (MSB-first, 8-bit
// literals, no early code-width change).
func NewLZW() *Filter { return New(&lzwCodec{}) }

type lzwCodec struct {
	w   io.WriteCloser
	buf bytes.Buffer
}

func (*lzwCodec) Type() Type      { return TypeLZW }
func (*lzwCodec) CanEncode() bool { return true }
func (*lzwCodec) CanDecode() bool { return true }

func (c *lzwCodec) BeginEncode(out io.Writer) error {
	c.w = lzw.NewWriter(out, lzw.MSB, 8)
	return nil
}

func (c *lzwCodec) EncodeBlock(_ io.Writer, p []byte) error {
	_, err := c.w.Write(p)
	return err
}

func (c *lzwCodec) EndEncode(io.Writer) error {
	err := c.w.Close()
	c.w = nil
	return err
}

func (c *lzwCodec) BeginDecode(io.Writer, Parameters) error {
	c.buf.Reset()
	return nil
}

func (c *lzwCodec) DecodeBlock(_ io.Writer, p []byte) error {
	_, err := c.buf.Write(p)
	return err
}

func (c *lzwCodec) EndDecode(out io.Writer) error {
	r := lzw.NewReader(bytes.NewReader(c.buf.Bytes()), lzw.MSB, 8)
	defer r.Close()
	if _, err := io.Copy(out, r); err != nil {
		return err
	}
	c.buf.Reset()
	return nil
}
