// Package metrics holds the dealer's process-global signature/abort
// counters, kept behind a small owned type with atomic increments rather
// than package-level vars, the way drand keeps mutable daemon state behind
// owned structs (e.g. common/crypto/vault.Vault) instead of globals.
// No scrape endpoint is wired — see DESIGN.md for why prometheus/client_golang
// is not imported here.
package metrics

import "sync/atomic"

// Counters tracks signatures completed and rounds aborted over a dealer's
// lifetime (spec.md §4.5/§5: "process-global").
type Counters struct {
	sigCount   atomic.Int64
	abortCount atomic.Int64
}

// IncSignature records one completed, verified aggregate signature.
func (c *Counters) IncSignature() {
	c.sigCount.Add(1)
}

// IncAbort records one round that timed out or failed to collect t+1 partials.
func (c *Counters) IncAbort() {
	c.abortCount.Add(1)
}

// Signatures returns the current signature count.
func (c *Counters) Signatures() int64 {
	return c.sigCount.Load()
}

// Aborts returns the current abort count.
func (c *Counters) Aborts() int64 {
	return c.abortCount.Load()
}
