// SPDX-License-Identifier: MPL-2.0

// Package launch spawns the target child process with resolved secrets
// injected into its environment. The child inherits the parent's stdio
// streams; interrupt and termination signals received by runsec are
// forwarded so interactive programs behave as if run directly. The parent's
// RUNSEC_SECRET_* variables are filtered from the child environment: the
// child sees only the resolved, unprefixed values.
package launch
