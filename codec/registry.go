package codec

import (
	"fmt"
	"reflect"
	"sync"
)

// Format selects the codec a Registry builds for types without an explicit
// registration.
type Format uint8

const (
	FormatMsgpack Format = iota
	FormatJSON
	FormatCBOR
)

func (f Format) String() string {
	switch f {
	case FormatMsgpack:
		return "msgpack"
	case FormatJSON:
		return "json"
	case FormatCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// Registry caches one Text codec per value type. Lookups take a read lock;
// the write lock is held only while inserting.
type Registry struct {
	format   Format
	compress bool

	mu     sync.RWMutex
	codecs map[reflect.Type]any
}

type RegistryOption func(*Registry)

func WithFormat(f Format) RegistryOption { return func(r *Registry) { r.format = f } }

// WithCompression wraps every built codec in Zstd.
func WithCompression() RegistryOption { return func(r *Registry) { r.compress = true } }

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{codecs: make(map[reflect.Type]any)}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registry) Format() Format { return r.format }

// For returns the Text codec for V, building it on first use.
// Concurrent first calls for the same V observe the same instance.
func For[V any](r *Registry) Text[V] {
	t := reflect.TypeOf((*V)(nil)).Elem()

	r.mu.RLock()
	c, ok := r.codecs[t]
	r.mu.RUnlock()
	if ok {
		return c.(Text[V])
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.codecs[t]; ok {
		return c.(Text[V])
	}
	tc := Text[V]{Inner: build[V](r.format, r.compress), Tag: r.tag()}
	r.codecs[t] = tc
	return tc
}

// Register installs c for V, replacing any codec built earlier.
// Use it for types the default format cannot handle (e.g. Protobuf).
func Register[V any](r *Registry, c Codec[V]) {
	r.mu.Lock()
	r.codecs[reflect.TypeOf((*V)(nil)).Elem()] = Text[V]{Inner: c, Tag: tagCustom}
	r.mu.Unlock()
}

const (
	tagCompressed byte = 0x80
	tagCustom     byte = 0x7F
)

// tag identifies entries written by this registry's built codecs.
func (r *Registry) tag() byte {
	t := byte(r.format)
	if r.compress {
		t |= tagCompressed
	}
	return t
}

func build[V any](f Format, compress bool) Codec[V] {
	var c Codec[V]
	switch f {
	case FormatJSON:
		c = JSON[V]{}
	case FormatCBOR:
		c = MustCBOR[V](true)
	default:
		c = Msgpack[V]{}
	}
	if compress {
		c = Zstd[V]{Inner: c}
	}
	return c
}
