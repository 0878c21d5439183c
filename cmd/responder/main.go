// Command responder serves signing partials over the protocol of spec.md
// §4.4: it takes no arguments and is driven entirely by environment and
// network addressing.
package main

import (
	"fmt"
	"os"

	"github.com/dedis/tbls-reboot/internal/crypto"
	"github.com/dedis/tbls-reboot/internal/log"
	"github.com/dedis/tbls-reboot/internal/responder"
	"github.com/dedis/tbls-reboot/internal/wire"
)

const sharePath = "share.key"

func main() {
	logger := log.DefaultLogger()

	idx, err := wire.LocalNodeIndex()
	if err != nil {
		fmt.Fprintf(os.Stderr, "responder: %v\n", err)
		os.Exit(1)
	}

	node := &responder.Node{
		Log:     logger,
		KeyPath: sharePath,
		NodeIdx: idx,
	}

	if err := node.Run(crypto.New()); err != nil {
		fmt.Fprintf(os.Stderr, "responder: %v\n", err)
		os.Exit(1)
	}
}
