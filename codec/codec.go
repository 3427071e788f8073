// Package codec turns cached values into storable payloads and back.
//
// A Codec[V] produces bytes; Text[V] frames them and base64-encodes so payloads
// fit a backend's string type. Registry hands out one Text codec per value
// type, created lazily and shared by every cache built on the registry.
package codec

import "fmt"

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// DecodeError reports a payload that could not be turned back into a value:
// corrupt, foreign or written by an incompatible codec.
type DecodeError struct {
	Codec string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec %s: decode: %v", e.Codec, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErr(name string, err error) error {
	if err == nil {
		return nil
	}
	return &DecodeError{Codec: name, Err: err}
}
