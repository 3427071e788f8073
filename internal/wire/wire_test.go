package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func mustDecode(t *testing.T, b []byte) (byte, []byte) {
	t.Helper()
	tag, p, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return tag, p
}

func TestRoundTripEmptyAndNonEmpty(t *testing.T) {
	cases := []struct {
		tag     byte
		payload []byte
	}{
		{0, nil},
		{1, []byte("hello")},
		{0xFF, []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		enc := Encode(tc.tag, tc.payload)
		tag, p := mustDecode(t, enc)
		if tag != tc.tag {
			t.Fatalf("tag mismatch: got %d want %d", tag, tc.tag)
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestRejectsTrailingBytes(t *testing.T) {
	enc := Encode(1, []byte("x"))
	enc = append(enc, 0xDE, 0xAD)
	if _, _, err := Decode(enc); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on trailing bytes, got %v", err)
	}
}

func TestCorruptHeadersAndLengths(t *testing.T) {
	enc := Encode(1, []byte("abc"))

	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, _, err := Decode(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, _, err := Decode(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	long := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(long[6:10], 1<<20)
	if _, _, err := Decode(long); err == nil {
		t.Fatalf("expected error on oversized length")
	}

	if _, _, err := Decode(enc[:hdrLen-1]); err == nil {
		t.Fatalf("expected error on short header")
	}
}

func TestDecodeTagged(t *testing.T) {
	enc := Encode(2, []byte("v"))
	if p, err := DecodeTagged(enc, 2); err != nil || string(p) != "v" {
		t.Fatalf("DecodeTagged = %q, %v", p, err)
	}
	if _, err := DecodeTagged(enc, 3); !errors.Is(err, ErrTagMismatch) {
		t.Fatalf("expected ErrTagMismatch, got %v", err)
	}
}
