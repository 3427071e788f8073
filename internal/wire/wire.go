// Package wire frames stored payloads so a reader can tell which codec
// wrote them before decoding.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version byte = 1
	hdrLen       = 4 + 1 + 1 + 4
)

var (
	ErrCorrupt     = errors.New("checkcache: corrupt entry")
	ErrTagMismatch = errors.New("checkcache: entry written by another codec")
	magic4         = [...]byte{'C', 'H', 'K', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames payload as: magic(4) | ver(1) | tag(1) | plen(u32 be) | payload(plen)
func Encode(tag byte, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(tag)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode returns the tag and payload of a framed entry. Trailing bytes are
// treated as corruption.
func Decode(b []byte) (tag byte, payload []byte, err error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version {
		return 0, nil, ErrCorrupt
	}
	tag = b[5]
	plen := int(binary.BigEndian.Uint32(b[6:hdrLen]))
	if plen != len(b)-hdrLen {
		return 0, nil, ErrCorrupt
	}
	return tag, b[hdrLen:], nil
}

// DecodeTagged is Decode that also requires the entry to carry want.
func DecodeTagged(b []byte, want byte) ([]byte, error) {
	tag, payload, err := Decode(b)
	if err != nil {
		return nil, err
	}
	if tag != want {
		return nil, ErrTagMismatch
	}
	return payload, nil
}
