package filters

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/wudi/pdfcodec/crypt"
)

// CryptParams configures the crypt passthrough filter.
type CryptParams struct {
	Cipher crypt.CipherAlgorithm
	Key    []byte
}

// NewCrypt returns the crypt passthrough filter: encode encrypts the stream
// with the configured cipher, decode decrypts it. AES output is framed as a
// random IV followed by PKCS#7-padded CBC ciphertext; RC4 is a plain
// keystream XOR.
func NewCrypt(params CryptParams) *Filter {
	return New(&cryptCodec{params: params})
}

// cryptCodec buffers the session input: CBC padding and the IV prefix need
// the whole stream before any output byte is valid.
type cryptCodec struct {
	params CryptParams
	buf    bytes.Buffer
}

func (*cryptCodec) Type() Type      { return TypeCrypt }
func (*cryptCodec) CanEncode() bool { return true }
func (*cryptCodec) CanDecode() bool { return true }

func (c *cryptCodec) begin() error {
	if len(c.params.Key) == 0 {
		return errors.New("filters: crypt filter requires a key")
	}
	// Resolve the handle up front so an unsupported cipher fails the Begin,
	// not the End.
	if _, err := crypt.Default().GetCipher(c.params.Cipher); err != nil {
		return err
	}
	c.buf.Reset()
	return nil
}

func (c *cryptCodec) BeginEncode(io.Writer) error { return c.begin() }

func (c *cryptCodec) EncodeBlock(_ io.Writer, p []byte) error {
	_, err := c.buf.Write(p)
	return err
}

func (c *cryptCodec) EndEncode(out io.Writer) error {
	encrypted, err := c.transform(true)
	if err != nil {
		return err
	}
	c.buf.Reset()
	_, err = out.Write(encrypted)
	return err
}

func (c *cryptCodec) BeginDecode(_ io.Writer, params Parameters) error {
	if key, ok := params.Bytes("Key"); ok {
		c.params.Key = key
	}
	return c.begin()
}

func (c *cryptCodec) DecodeBlock(_ io.Writer, p []byte) error {
	_, err := c.buf.Write(p)
	return err
}

func (c *cryptCodec) EndDecode(out io.Writer) error {
	decrypted, err := c.transform(false)
	if err != nil {
		return err
	}
	c.buf.Reset()
	_, err = out.Write(decrypted)
	return err
}

func (c *cryptCodec) transform(encrypt bool) ([]byte, error) {
	handle, err := crypt.Default().GetCipher(c.params.Cipher)
	if err != nil {
		return nil, err
	}
	data := c.buf.Bytes()
	if c.params.Cipher == crypt.RC4 {
		stream, err := handle.NewStream(c.params.Key)
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(data))
		stream.XORKeyStream(out, data)
		return out, nil
	}
	return aesCBC(handle, c.params.Key, data, encrypt)
}

func aesCBC(handle *crypt.CipherHandle, key, data []byte, encrypt bool) ([]byte, error) {
	block, err := handle.NewBlock(key)
	if err != nil {
		return nil, err
	}
	bs := handle.BlockSize()
	if encrypt {
		iv := make([]byte, bs)
		if _, err := rand.Read(iv); err != nil {
			return nil, err
		}
		padLen := bs - len(data)%bs
		plain := make([]byte, 0, len(data)+padLen)
		plain = append(plain, data...)
		plain = append(plain, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
		out := make([]byte, bs+len(plain))
		copy(out[:bs], iv)
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[bs:], plain)
		return out, nil
	}
	if len(data) < bs {
		return nil, errors.New("filters: aes ciphertext too short")
	}
	iv, ct := data[:bs], data[bs:]
	if len(ct)%bs != 0 {
		return nil, errors.New("filters: aes ciphertext not a multiple of the block size")
	}
	out := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ct)
	if len(out) == 0 {
		return out, nil
	}
	pad := int(out[len(out)-1])
	if pad <= 0 || pad > bs || pad > len(out) {
		return nil, fmt.Errorf("filters: invalid aes padding %d", pad)
	}
	return out[:len(out)-pad], nil
}
