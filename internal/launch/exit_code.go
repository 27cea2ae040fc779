// SPDX-License-Identifier: MPL-2.0

package launch

import "strconv"

// ExitCode is a process exit status in the POSIX 0-255 range. Codes above
// 128 follow the shell convention 128+signal for signal-terminated
// children.
type ExitCode int

// Success is the zero exit code.
const Success ExitCode = 0

// IsSuccess reports whether the code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == Success }

// String returns the decimal representation of the code.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
