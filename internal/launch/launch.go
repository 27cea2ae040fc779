// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"

	"github.com/charmbracelet/log"
)

// Run starts argv[0] with the given arguments and environment, wires the
// child to the parent's stdio, and blocks until it exits. Signals received
// while the child runs are forwarded to it rather than killing runsec, so
// Ctrl-C reaches the child first.
//
// The returned ExitCode mirrors the child: its own code on normal exit,
// 128+signal when it died to a signal. A non-nil error means the child
// could not be started or waited on at all.
func Run(argv []string, env []string) (ExitCode, error) {
	if len(argv) == 0 {
		return 1, fmt.Errorf("no command specified")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return 1, fmt.Errorf("failed to execute command %q: %w", argv[0], err)
	}

	stopForwarding := forwardSignals(cmd.Process)
	defer stopForwarding()

	err := cmd.Wait()
	if err == nil {
		return Success, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code, ok := signalExitCode(exitErr.ProcessState); ok {
			log.Debug("child terminated by signal", "exit_code", code)
			return code, nil
		}
		return ExitCode(exitErr.ExitCode()), nil
	}

	return 1, fmt.Errorf("failed to wait for command %q: %w", argv[0], err)
}

// forwardSignals relays forwardable signals to the child process until the
// returned stop function is called. Delivery to an already-exited child is
// a harmless error and ignored.
func forwardSignals(proc *os.Process) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, forwardedSignals...)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-ch:
				_ = proc.Signal(sig)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
