// Command supervisor restarts the responder binary on the proactive-reboot
// schedule of spec.md §4.6/§4.7: `supervisor <n> <t> <attackTime>
// <rebootTime> <totalRuntime>` or the single argument `disable`.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dedis/tbls-reboot/internal/config"
	"github.com/dedis/tbls-reboot/internal/log"
	"github.com/dedis/tbls-reboot/internal/supervisor"
	"github.com/dedis/tbls-reboot/internal/wire"
)

const responderBinary = "./responder"

func main() {
	logger := log.DefaultLogger()

	app := cli.NewApp()
	app.Name = "supervisor"
	app.Usage = "restart the responder on the proactive-reboot schedule"
	app.Flags = config.SupervisorFlags()
	app.Action = func(c *cli.Context) error {
		idx, err := wire.LocalNodeIndex()
		if err != nil {
			return err
		}

		cfg, err := config.ParseSupervisor(c, idx)
		if err != nil {
			return err
		}

		return supervisor.Run(logger, supervisor.Config{
			N:           cfg.N,
			T:           cfg.T,
			AttackTime:  cfg.AttackTime,
			RebootTime:  cfg.RebootTime,
			TotalTime:   cfg.TotalTime,
			CurrentNode: cfg.CurrentNode,
			Disabled:    cfg.Disabled,
		}, responderBinary, nil)
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "supervisor: %v\n", err)
		os.Exit(1)
	}
}
