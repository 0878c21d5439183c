// Package config parses this system's env/CLI inputs, following the
// flag-definition style of drand's urfave/cli/v2 flags (named *Flag package
// vars with an EnvVars fallback), generalized from drand's key-folder/TLS/
// period flags to this protocol's node-count/threshold/timing parameters.
package config

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// Dealer holds the dealer's three positional parameters: <n> <t> <runtime>.
type Dealer struct {
	N       int
	T       int
	Runtime int // seconds
}

var (
	serverCountFlag = &cli.IntFlag{
		Name:    "server-count",
		Usage:   "number of responder nodes n",
		EnvVars: []string{"SERVER_COUNT"},
	}
	thresholdFlag = &cli.IntFlag{
		Name:    "threshold",
		Usage:   "signing threshold t; any t+1 responders recover a signature",
		EnvVars: []string{"THRESHOLD"},
	}
	runtimeFlag = &cli.IntFlag{
		Name:    "runtime",
		Usage:   "seconds the dealer drives signing rounds before exiting",
		EnvVars: []string{"RUNTIME"},
	}
	attackTimeFlag = &cli.IntFlag{
		Name:    "attack-time",
		Usage:   "assumed adversary node-capture dwell time, seconds",
		EnvVars: []string{"ATTACKTIME"},
	}
	rebootTimeFlag = &cli.IntFlag{
		Name:    "reboot-time",
		Usage:   "reboot period, seconds; invoke with the single positional argument \"disable\" to turn off rebooting",
		EnvVars: []string{"REBOOTTIME"},
	}
)

// DealerFlags are the flags a dealer cmd/ entrypoint registers.
func DealerFlags() []cli.Flag {
	return []cli.Flag{serverCountFlag, thresholdFlag, runtimeFlag}
}

// ParseDealer reads n, t, runtime from positional args first (spec.md §6:
// `<n> <t> <runtime_seconds>`), falling back to flags/env for callers that
// prefer that style.
func ParseDealer(c *cli.Context) (Dealer, error) {
	if c.NArg() >= 3 {
		n, err := parsePositiveInt(c.Args().Get(0), "n")
		if err != nil {
			return Dealer{}, err
		}
		t, err := parsePositiveIntOrZero(c.Args().Get(1), "t")
		if err != nil {
			return Dealer{}, err
		}
		runtime, err := parsePositiveInt(c.Args().Get(2), "runtime")
		if err != nil {
			return Dealer{}, err
		}
		return validateDealer(Dealer{N: n, T: t, Runtime: runtime})
	}
	return validateDealer(Dealer{
		N:       c.Int(serverCountFlag.Name),
		T:       c.Int(thresholdFlag.Name),
		Runtime: c.Int(runtimeFlag.Name),
	})
}

func validateDealer(d Dealer) (Dealer, error) {
	if d.N <= 0 {
		return Dealer{}, fmt.Errorf("config: server count n=%d must be positive", d.N)
	}
	if d.T < 0 || d.T >= d.N {
		return Dealer{}, fmt.Errorf("config: threshold t=%d must satisfy 0 <= t < n=%d", d.T, d.N)
	}
	if d.Runtime <= 0 {
		return Dealer{}, fmt.Errorf("config: runtime=%d must be positive", d.Runtime)
	}
	return d, nil
}

// Supervisor holds the supervisor's five positional parameters, or Disabled
// if invoked with the single literal argument "disable".
type Supervisor struct {
	N           int
	T           int
	AttackTime  int
	RebootTime  int
	TotalTime   int
	CurrentNode int
	Disabled    bool
}

// SupervisorFlags are the flags a supervisor cmd/ entrypoint registers.
func SupervisorFlags() []cli.Flag {
	return []cli.Flag{serverCountFlag, thresholdFlag, attackTimeFlag, rebootTimeFlag}
}

// ParseSupervisor reads spec.md §6's supervisor contract: `<n> <t>
// <attackTime> <rebootTime> <totalRuntime>` or the single argument
// "disable". currentNode is derived by the caller from the host's address
// (wire.NodeIndexFromHost), not parsed here.
func ParseSupervisor(c *cli.Context, currentNode int) (Supervisor, error) {
	if c.NArg() == 1 && c.Args().Get(0) == "disable" {
		return Supervisor{Disabled: true, CurrentNode: currentNode}, nil
	}
	if c.NArg() != 5 {
		return Supervisor{}, fmt.Errorf(
			"config: expected <n> <t> <attackTime> <rebootTime> <totalRuntime> or \"disable\", got %d args", c.NArg())
	}
	n, err := parsePositiveInt(c.Args().Get(0), "n")
	if err != nil {
		return Supervisor{}, err
	}
	t, err := parsePositiveIntOrZero(c.Args().Get(1), "t")
	if err != nil {
		return Supervisor{}, err
	}
	attackTime, err := parsePositiveInt(c.Args().Get(2), "attackTime")
	if err != nil {
		return Supervisor{}, err
	}
	rebootTime, err := parsePositiveInt(c.Args().Get(3), "rebootTime")
	if err != nil {
		return Supervisor{}, err
	}
	totalTime, err := parsePositiveInt(c.Args().Get(4), "totalRuntime")
	if err != nil {
		return Supervisor{}, err
	}
	if t >= n {
		return Supervisor{}, fmt.Errorf("config: threshold t=%d must be less than n=%d", t, n)
	}
	return Supervisor{
		N: n, T: t, AttackTime: attackTime, RebootTime: rebootTime,
		TotalTime: totalTime, CurrentNode: currentNode,
	}, nil
}

func parsePositiveInt(s, name string) (int, error) {
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return 0, fmt.Errorf("config: %s: %q is not an integer", name, s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("config: %s=%d must be positive", name, v)
	}
	return v, nil
}

func parsePositiveIntOrZero(s, name string) (int, error) {
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return 0, fmt.Errorf("config: %s: %q is not an integer", name, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("config: %s=%d must not be negative", name, v)
	}
	return v, nil
}
