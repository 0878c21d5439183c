// Command dealer distributes shares and drives sequenced signing rounds
// (spec.md §4.5): `dealer <n> <t> <runtime_seconds>`.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dedis/tbls-reboot/internal/config"
	"github.com/dedis/tbls-reboot/internal/crypto"
	"github.com/dedis/tbls-reboot/internal/dealer"
	"github.com/dedis/tbls-reboot/internal/log"
)

func main() {
	logger := log.DefaultLogger()

	app := cli.NewApp()
	app.Name = "dealer"
	app.Usage = "distribute shares and drive threshold signing rounds"
	app.Flags = config.DealerFlags()
	app.Action = func(c *cli.Context) error {
		cfg, err := config.ParseDealer(c)
		if err != nil {
			return err
		}

		d := dealer.New(crypto.New(), cfg.N, cfg.T, logger)
		return d.Run(time.Duration(cfg.Runtime) * time.Second)
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "dealer: %v\n", err)
		os.Exit(1)
	}
}
