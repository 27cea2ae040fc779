// SPDX-License-Identifier: MPL-2.0

//go:build unix

package launch

import (
	"os"
	"syscall"
)

// forwardedSignals are relayed to the child while it runs.
var forwardedSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGHUP,
	syscall.SIGQUIT,
}

// signalExitCode maps a signal-terminated child to the 128+signal shell
// convention. ok is false when the child exited normally.
func signalExitCode(state *os.ProcessState) (ExitCode, bool) {
	status, isWait := state.Sys().(syscall.WaitStatus)
	if !isWait || !status.Signaled() {
		return 0, false
	}
	return ExitCode(128 + int(status.Signal())), true
}
