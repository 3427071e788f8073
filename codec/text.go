package codec

import (
	"encoding/base64"

	"github.com/unkn0wn-root/checkcache/internal/wire"
)

// Text makes any Codec text-safe, because backends store payloads in their
// native string type. The encoded bytes are framed with Tag and then base64
// encoded; decoding rejects entries framed with another tag.
type Text[V any] struct {
	Inner Codec[V]
	Tag   byte
}

func (t Text[V]) EncodeText(v V) (string, error) {
	b, err := t.Inner.Encode(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(wire.Encode(t.Tag, b)), nil
}

func (t Text[V]) DecodeText(s string) (V, error) {
	var zero V
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return zero, decodeErr("base64", err)
	}
	b, err := wire.DecodeTagged(raw, t.Tag)
	if err != nil {
		return zero, decodeErr("envelope", err)
	}
	return t.Inner.Decode(b)
}
