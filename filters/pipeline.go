package filters

import (
	"fmt"

	"github.com/wudi/pdfcodec/crypt"
	"github.com/wudi/pdfcodec/observability"
)

// Step is one entry of a declared filter chain: a filter type with its
// optional decode parameters.
type Step struct {
	Type   Type
	Params Parameters
}

// Limits bounds chain application.
type Limits struct {
	MaxDecodedSize int64
}

// ForType constructs a fresh filter for a chain step. Crypt steps read the
// cipher name and key from the step parameters.
func ForType(step Step) (*Filter, error) {
	switch step.Type {
	case TypeASCIIHex:
		return NewASCIIHex(), nil
	case TypeASCII85:
		return NewASCII85(), nil
	case TypeRunLength:
		return NewRunLength(), nil
	case TypeFlate:
		return NewFlate(), nil
	case TypeLZW:
		return NewLZW(), nil
	case TypeCrypt:
		params := CryptParams{Cipher: crypt.AES128CBC}
		if name, ok := step.Params.Name("CFM"); ok {
			switch name {
			case "V2":
				params.Cipher = crypt.RC4
			case "AESV2":
				params.Cipher = crypt.AES128CBC
			case "AESV3":
				params.Cipher = crypt.AES256CBC
			default:
				return nil, fmt.Errorf("filters: unsupported crypt filter method %s", name)
			}
		}
		if key, ok := step.Params.Bytes("Key"); ok {
			params.Key = key
		}
		return NewCrypt(params), nil
	default:
		return nil, fmt.Errorf("filters: unknown filter type %s", step.Type)
	}
}

// Pipeline applies a declared filter chain step by step, feeding each
// filter's output to the next. Composition lives here, not in any single
// filter.
type Pipeline struct {
	limits Limits
	logger observability.Logger
}

// NewPipeline constructs a pipeline with the provided limits. A nil logger
// is replaced by a nop logger.
func NewPipeline(limits Limits, logger observability.Logger) *Pipeline {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &Pipeline{limits: limits, logger: logger}
}

// Decode applies the chain in declaration order.
func (p *Pipeline) Decode(input []byte, chain []Step) ([]byte, error) {
	data := input
	for i, step := range chain {
		f, err := ForType(step)
		if err != nil {
			return nil, err
		}
		if !f.CanDecode() {
			return nil, fmt.Errorf("%w: %s cannot decode", ErrContract, step.Type)
		}
		out, err := f.Decode(data, step.Params)
		if err != nil {
			return nil, fmt.Errorf("filters: step %d (%s): %w", i, step.Type, err)
		}
		if p.limits.MaxDecodedSize > 0 && int64(len(out)) > p.limits.MaxDecodedSize {
			return nil, fmt.Errorf("filters: step %d (%s): decoded size %d exceeds limit %d",
				i, step.Type, len(out), p.limits.MaxDecodedSize)
		}
		p.logger.Debug("decoded filter step",
			observability.String("filter", step.Type.String()),
			observability.Int("step", i),
			observability.Int("in", len(data)),
			observability.Int("out", len(out)))
		data = out
	}
	return data, nil
}

// Encode applies the chain in reverse declaration order, producing data a
// Decode of the same chain reverses.
func (p *Pipeline) Encode(input []byte, chain []Step) ([]byte, error) {
	data := input
	for i := len(chain) - 1; i >= 0; i-- {
		step := chain[i]
		f, err := ForType(step)
		if err != nil {
			return nil, err
		}
		if !f.CanEncode() {
			return nil, fmt.Errorf("%w: %s cannot encode", ErrContract, step.Type)
		}
		out, err := f.Encode(data)
		if err != nil {
			return nil, fmt.Errorf("filters: step %d (%s): %w", i, step.Type, err)
		}
		p.logger.Debug("encoded filter step",
			observability.String("filter", step.Type.String()),
			observability.Int("step", i),
			observability.Int("in", len(data)),
			observability.Int("out", len(out)))
		data = out
	}
	return data, nil
}
