package codec

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Zstd compresses the output of Inner. Worth it for large, repetitive
// payloads headed to a shared network tier.
type Zstd[V any] struct {
	Inner Codec[V]
}

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
	zstdErr  error
)

// EncodeAll/DecodeAll are safe for concurrent use, so one pair is shared.
func zstdCoders() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEnc, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zstdErr != nil {
			return
		}
		zstdDec, zstdErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
	return zstdEnc, zstdDec, zstdErr
}

func (z Zstd[V]) Encode(v V) ([]byte, error) {
	b, err := z.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	enc, _, err := zstdCoders()
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(b, make([]byte, 0, len(b)/2)), nil
}

func (z Zstd[V]) Decode(b []byte) (V, error) {
	var zero V
	_, dec, err := zstdCoders()
	if err != nil {
		return zero, err
	}
	raw, err := dec.DecodeAll(b, nil)
	if err != nil {
		return zero, decodeErr("zstd", err)
	}
	return z.Inner.Decode(raw)
}
