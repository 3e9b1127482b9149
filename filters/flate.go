package filters

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

// NewFlate returns a filter for the FlateDecode encoding (zlib framing).
func NewFlate() *Filter { return New(&flateCodec{}) }

type flateCodec struct {
	w   *zlib.Writer
	buf bytes.Buffer
}

func (*flateCodec) Type() Type      { return TypeFlate }
func (*flateCodec) CanEncode() bool { return true }
func (*flateCodec) CanDecode() bool { return true }

func (c *flateCodec) BeginEncode(out io.Writer) error {
	w, err := zlib.NewWriterLevel(out, flate.DefaultCompression)
	if err != nil {
		return err
	}
	c.w = w
	return nil
}

func (c *flateCodec) EncodeBlock(_ io.Writer, p []byte) error {
	_, err := c.w.Write(p)
	return err
}

func (c *flateCodec) EndEncode(io.Writer) error {
	err := c.w.Close()
	c.w = nil
	return err
}

func (c *flateCodec) BeginDecode(io.Writer, Parameters) error {
	c.buf.Reset()
	return nil
}

func (c *flateCodec) DecodeBlock(_ io.Writer, p []byte) error {
	_, err := c.buf.Write(p)
	return err
}

func (c *flateCodec) EndDecode(out io.Writer) error {
	r, err := zlib.NewReader(bytes.NewReader(c.buf.Bytes()))
	if err != nil {
		return err
	}
	defer r.Close()
	if _, err := io.Copy(out, r); err != nil {
		return err
	}
	c.buf.Reset()
	return nil
}
