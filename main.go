// SPDX-License-Identifier: MPL-2.0

package main

import cmd "runsec-cli/cmd/runsec"

func main() {
	cmd.Execute()
}
