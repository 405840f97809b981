// Package cache provides the TTL-aware response cache sitting between the
// raw HTTP fetcher and the business logic.
//
// The layer is a pure decorator: Client.Get behaves like the underlying
// fetcher except that fresh cached payloads short-circuit the network.
// Keys are human-readable relative paths derived from the endpoint and its
// parameters, with a hash-only legacy format kept for read compatibility.
//
// Freshness is decided per endpoint:
//
//	nil  TTL — the entry never expires (static data such as player records)
//	0    TTL — the endpoint is never cached (volatile data such as injuries)
//	N    TTL — the entry expires N days after it was written
//
// Caching is an optimization, never a correctness requirement: every cache
// read or write failure is logged and the request proceeds as a miss.
package cache
