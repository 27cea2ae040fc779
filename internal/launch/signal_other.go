// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package launch

import "os"

// forwardedSignals are relayed to the child while it runs. Windows only
// delivers interrupt.
var forwardedSignals = []os.Signal{os.Interrupt}

// signalExitCode never matches on non-Unix platforms; exec.ExitError
// carries the code directly.
func signalExitCode(_ *os.ProcessState) (ExitCode, bool) {
	return 0, false
}
