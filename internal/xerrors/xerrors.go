// Package xerrors defines the error taxonomy used across the scavenger
// codebase. Each sentinel corresponds to a category in the design's error
// policy table; callers wrap with fmt.Errorf("...: %w", Sentinel) so
// errors.Is still matches at any call depth.
package xerrors

import "errors"

var (
	// ErrConfig marks a missing or invalid config/wallet file. Fatal at
	// startup.
	ErrConfig = errors.New("config error")

	// ErrTransport marks an RPC/WebSocket/HTTP failure. Retried with
	// backoff inside the ingest layer; surfaced as a dropped update
	// everywhere else.
	ErrTransport = errors.New("transport error")

	// ErrDecode marks account bytes that do not match the expected
	// layout for their venue. Non-fatal; the event is dropped.
	ErrDecode = errors.New("decode error")

	// ErrShortBuffer is a specific ErrDecode cause: the byte slice is
	// smaller than the minimum required prefix for the venue.
	ErrShortBuffer = errors.New("short buffer")

	// ErrMalformed is a specific ErrDecode cause: a sanity check on the
	// decoded fields failed (e.g. a zero fee denominator).
	ErrMalformed = errors.New("malformed account data")

	// ErrQuote marks zero reserves, a non-finite price, or overflow in
	// constant-product math. The opportunity is dropped.
	ErrQuote = errors.New("quote error")

	// ErrBundleRejected marks a block-engine JSON-RPC error response.
	ErrBundleRejected = errors.New("bundle rejected")

	// ErrBundleTransport marks a transport-level failure talking to the
	// block engine.
	ErrBundleTransport = errors.New("bundle transport error")

	// ErrRisk marks an unsafe mint in sniper mode. Not raised on the
	// arbitrage path.
	ErrRisk = errors.New("risk error")
)
