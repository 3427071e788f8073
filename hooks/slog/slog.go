package sloghook

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/checkcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	CacheFaultEvery   uint64
	DecodeFailedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	faultCtr  atomic.Uint64
	decodeCtr atomic.Uint64
}

var _ checkcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) CacheFault(op, key string, err error) {
	if h.l == nil || !sample(h.opts.CacheFaultEvery, &h.faultCtr) {
		return
	}
	h.l.Warn("checkcache.cache_fault",
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) DecodeFailed(storageKey string, err error) {
	if h.l == nil || !sample(h.opts.DecodeFailedEvery, &h.decodeCtr) {
		return
	}
	h.l.Warn("checkcache.decode_failed",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) ExecuteFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("checkcache.execute_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) EndpointUnreachable(endpoint string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("checkcache.endpoint_unreachable",
		"endpoint", endpoint,
		"err", err)
}
