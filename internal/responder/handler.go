// Package responder implements the responder state machine (spec.md §4.4):
// Starting -> AwaitShare -> Serving -> Exiting.
package responder

import (
	"fmt"

	"github.com/dedis/tbls-reboot/internal/crypto"
	"github.com/dedis/tbls-reboot/internal/shamir"
	"github.com/dedis/tbls-reboot/internal/tbls"
	"github.com/dedis/tbls-reboot/internal/wire"
)

// Handle processes one datagram received while Serving, given the node's
// share. It is pure — no I/O — so the Starting/AwaitShare socket dance and
// the Serving read loop in node.go can be tested independently of this
// decision logic.
//
// It returns the datagram to unicast back to the dealer (nil if none) and
// whether the node should transition to Exiting.
func Handle(scheme *crypto.Scheme, share shamir.Share, d []byte) (response []byte, exit bool, err error) {
	if len(d) == 1 && d[0] == wire.ShutdownAll {
		return nil, true, nil
	}
	seq, msg, err := wire.DecodeSigningRequest(d)
	if err != nil {
		return nil, false, fmt.Errorf("responder: %w", err)
	}
	partial, err := tbls.Sign(scheme, share, msg)
	if err != nil {
		return nil, false, fmt.Errorf("responder: sign: %w", err)
	}
	return wire.EncodeSigningResponse(seq, partial.Value), false, nil
}
