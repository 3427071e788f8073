package checkcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A cache tier read or write failed; the call carried on without it.
	// op ∈ {"secondary_get", "primary_get", "primary_recheck", "primary_add",
	// "secondary_add", "secondary_backfill"}
	CacheFault(op, key string, err error)

	// A stored payload could not be decoded and was treated as a miss.
	DecodeFailed(storageKey string, err error)

	// The executable failed; the error was returned to the caller.
	ExecuteFailed(key string, err error)

	// A stats or scan call could not reach endpoint and moved to the next one.
	EndpointUnreachable(endpoint string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) CacheFault(string, string, error)  {}
func (NopHooks) DecodeFailed(string, error)        {}
func (NopHooks) ExecuteFailed(string, error)       {}
func (NopHooks) EndpointUnreachable(string, error) {}
