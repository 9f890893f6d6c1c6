package csimage

// ConfigurationError is returned for invalid or contradictory options,
// including a pixel format that the image dimensions cannot satisfy.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string { return "configuration error: " + e.Err.Error() }

func (e *ConfigurationError) Unwrap() error { return e.Err }

// DecodeError is returned when the source image cannot be read or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return "decode error: " + e.Err.Error()
	}
	return "decode error: " + e.Path + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IOError is returned when the destination cannot be opened or written.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return "i/o error: " + e.Err.Error()
	}
	return "i/o error: " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }
