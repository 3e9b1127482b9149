package filters

import (
	"bytes"
	"encoding/ascii85"
	"io"
)

// NewASCII85 returns a filter for the ASCII85Decode encoding.
func NewASCII85() *Filter { return New(&ascii85Codec{}) }

type ascii85Codec struct {
	enc io.WriteCloser
	buf bytes.Buffer // buffered encoded input for decode
}

func (*ascii85Codec) Type() Type      { return TypeASCII85 }
func (*ascii85Codec) CanEncode() bool { return true }
func (*ascii85Codec) CanDecode() bool { return true }

func (c *ascii85Codec) BeginEncode(out io.Writer) error {
	c.enc = ascii85.NewEncoder(out)
	return nil
}

func (c *ascii85Codec) EncodeBlock(_ io.Writer, p []byte) error {
	_, err := c.enc.Write(p)
	return err
}

func (c *ascii85Codec) EndEncode(out io.Writer) error {
	if err := c.enc.Close(); err != nil {
		return err
	}
	c.enc = nil
	_, err := out.Write([]byte("~>"))
	return err
}

func (c *ascii85Codec) BeginDecode(io.Writer, Parameters) error {
	c.buf.Reset()
	return nil
}

func (c *ascii85Codec) DecodeBlock(_ io.Writer, p []byte) error {
	_, err := c.buf.Write(p)
	return err
}

func (c *ascii85Codec) EndDecode(out io.Writer) error {
	trimmed := bytes.TrimSpace(c.buf.Bytes())
	if bytes.HasPrefix(trimmed, []byte("<~")) {
		trimmed = trimmed[2:]
	}
	if i := bytes.Index(trimmed, []byte("~>")); i >= 0 {
		trimmed = trimmed[:i]
	}
	// 'z' expands one input byte to four output bytes
	decoded := make([]byte, len(trimmed)*4+4)
	n, _, err := ascii85.Decode(decoded, trimmed, true)
	if err != nil {
		return err
	}
	c.buf.Reset()
	_, err = out.Write(decoded[:n])
	return err
}
