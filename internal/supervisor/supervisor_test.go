package supervisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dedis/tbls-reboot/internal/log"
)

func TestRunOnceReturnsCleanExitWhenProcessFinishesInTime(t *testing.T) {
	err := runOnce(log.DefaultLogger(), "/bin/true", nil, time.Second)
	require.Equal(t, errCleanExit, err)
}

func TestRunOnceReturnsNilOnTimeout(t *testing.T) {
	err := runOnce(log.DefaultLogger(), "/bin/sleep", []string{"5"}, 50*time.Millisecond)
	require.NoError(t, err)
}

func TestRunReturnsWhenResponderExitsCleanly(t *testing.T) {
	cfg := Config{N: 3, T: 1, AttackTime: 1, RebootTime: 1, TotalTime: 0, CurrentNode: 0}
	start := time.Now()
	err := Run(log.DefaultLogger(), cfg, "/bin/sleep", []string{"5"})
	require.NoError(t, err)
	// The first invocation and the delay-0 run are killed at their 1s
	// timeouts; the next delay is 12s (timeout 13s), so `sleep 5` exits on its
	// own and Run returns after about 7s, before the TotalTime+10=10s global
	// deadline is ever checked as passed.
	require.Less(t, time.Since(start), 15*time.Second)
}
