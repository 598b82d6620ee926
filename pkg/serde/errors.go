package serde

// KeyDecodeError is the single error kind surfaced when a message key cannot
// be decoded, whatever the underlying cause (codec lookup miss, malformed
// bytes, model construction failure). The cause is preserved for unwrapping.
type KeyDecodeError struct {
	Cause error
}

func (e *KeyDecodeError) Error() string {
	return "key decode: " + e.Cause.Error()
}

func (e *KeyDecodeError) Unwrap() error {
	return e.Cause
}

// ValueDecodeError is the value-side counterpart of KeyDecodeError, kept as a
// distinct kind so callers can tell a bad key from a bad value.
type ValueDecodeError struct {
	Cause error
}

func (e *ValueDecodeError) Error() string {
	return "value decode: " + e.Cause.Error()
}

func (e *ValueDecodeError) Unwrap() error {
	return e.Cause
}
