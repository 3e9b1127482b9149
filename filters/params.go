package filters

// Parameters carries the optional decode-parameter dictionary declared
// alongside a filter in a chain. Keys follow the format's parameter names.
type Parameters map[string]interface{}

// Int reads an integer parameter.
func (p Parameters) Int(key string) (int, bool) {
	if p == nil {
		return 0, false
	}
	switch v := p[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

// Bytes reads a byte-string parameter.
func (p Parameters) Bytes(key string) ([]byte, bool) {
	if p == nil {
		return nil, false
	}
	if v, ok := p[key].([]byte); ok {
		return v, true
	}
	return nil, false
}

// Name reads a name or string parameter.
func (p Parameters) Name(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	if v, ok := p[key].(string); ok {
		return v, true
	}
	return "", false
}
