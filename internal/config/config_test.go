package config_test

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/dedis/tbls-reboot/internal/config"
)

func cliContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestParseDealerPositional(t *testing.T) {
	c := cliContext(t, "5", "2", "10")
	d, err := config.ParseDealer(c)
	require.NoError(t, err)
	require.Equal(t, config.Dealer{N: 5, T: 2, Runtime: 10}, d)
}

func TestParseDealerRejectsBadThreshold(t *testing.T) {
	c := cliContext(t, "3", "3", "10")
	_, err := config.ParseDealer(c)
	require.Error(t, err)
}

func TestParseSupervisorDisable(t *testing.T) {
	c := cliContext(t, "disable")
	s, err := config.ParseSupervisor(c, 0)
	require.NoError(t, err)
	require.True(t, s.Disabled)
}

func TestParseSupervisorFull(t *testing.T) {
	c := cliContext(t, "8", "3", "60", "30", "120")
	s, err := config.ParseSupervisor(c, 1)
	require.NoError(t, err)
	require.Equal(t, config.Supervisor{N: 8, T: 3, AttackTime: 60, RebootTime: 30, TotalTime: 120, CurrentNode: 1}, s)
}
