// Package supervisor implements the per-node restart loop of spec.md §4.7:
// it drives internal/reboot.Scheduler to decide when to kill and respawn the
// responder executable, mirroring demo/node/node_subprocess.go's
// exec.CommandContext + timeout + kill + retry shape, generalized from
// driving a sibling drand binary through DKG/reshare subcommands to driving
// a sibling responder binary through one bounded-timeout execution per
// reboot interval.
package supervisor

import (
	"context"
	"os/exec"
	"syscall"
	"time"

	"github.com/dedis/tbls-reboot/internal/log"
	"github.com/dedis/tbls-reboot/internal/reboot"
)

// Overlap is added to a scheduled delay to derive the subprocess timeout, so
// the responder is never killed exactly at its own scheduled reboot instant.
const Overlap = 1 * time.Second

// firstRunTimeout bounds the supervisor's unconditional first invocation,
// which exists only to let the responder acquire and persist its share
// before any reboot timing starts (spec.md §4.7).
const firstRunTimeout = 1 * time.Second

// Config is the parsed supervisor contract: either Disabled (run the
// responder directly, no scheduler) or the five reboot-timing parameters.
type Config struct {
	N, T, AttackTime, RebootTime, TotalTime, CurrentNode int
	Disabled                                             bool
}

// Run drives the supervisor loop for the lifetime of one node process. binary
// is the responder executable's path; args are passed through unchanged.
//
// If cfg.Disabled, the responder replaces this process image directly
// (syscall.Exec, matching the original's os.execlp) and Run never returns on
// success. Otherwise Run invokes the responder once unconditionally with a
// short timeout, then loops: ask the scheduler for the next delay, run the
// responder with timeout delay+Overlap, kill and sleep rebootTime-Overlap on
// expiry, or return nil if the responder exits cleanly. A global deadline of
// TotalTime+10s bounds the whole loop.
func Run(logger log.Logger, cfg Config, binary string, args []string) error {
	if cfg.Disabled {
		logger.Infow("reboot disabled, execing responder directly", "binary", binary)
		return syscall.Exec(binary, append([]string{binary}, args...), nil)
	}

	deadline := time.Now().Add(time.Duration(cfg.TotalTime+10) * time.Second)

	logger.Infow("unconditional first invocation to acquire share", "timeout", firstRunTimeout)
	if err := runOnce(logger, binary, args, firstRunTimeout); err == errCleanExit {
		return nil
	}

	scheduler := reboot.NewScheduler(cfg.N, cfg.T, cfg.AttackTime, cfg.RebootTime, cfg.CurrentNode)

	for {
		if time.Now().After(deadline) {
			logger.Infow("global deadline reached, stopping supervisor")
			return nil
		}

		delay := time.Duration(scheduler.NextDelay()) * time.Second
		timeout := delay + Overlap
		logger.Debugw("scheduled reboot", "delay", delay, "timeout", timeout)

		err := runOnce(logger, binary, args, timeout)
		if err == errCleanExit {
			return nil
		}

		sleep := time.Duration(cfg.RebootTime)*time.Second - Overlap
		if sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

// errCleanExit is a sentinel returned by runOnce when the responder exited
// on its own (timeout did not fire) — the supervisor's job is done.
var errCleanExit = &exitSentinel{}

type exitSentinel struct{}

func (*exitSentinel) Error() string { return "responder exited cleanly" }

// runOnce executes the responder with a bounded timeout. It returns
// errCleanExit if the process exited before the timeout (spec.md §7:
// "scheduler subprocess non-zero exit: treated as graceful termination,
// propagated upward" — this repo does not distinguish exit codes further,
// since a non-zero exit and a zero exit both mean "stop rebooting this
// node"), or nil if the timeout fired and the process was killed.
func runOnce(logger log.Logger, binary string, args []string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, args...)
	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		logger.Debugw("responder timed out, will reboot", "binary", binary)
		return nil
	}
	if err != nil {
		logger.Warnw("responder exited", "error", err)
	}
	return errCleanExit
}
