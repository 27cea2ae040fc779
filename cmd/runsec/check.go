// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"runsec-cli/internal/secrets"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report which RUNSEC_SECRET_* variables resolve",
	Long: `Resolve all RUNSEC_SECRET_* variables and report the outcome per
variable without launching anything. Resolved values are never printed,
only names and failure reasons.

Exits non-zero if any variable fails to resolve, so it can gate CI or
deploy scripts:

  runsec check && runsec run -- ./deploy.sh`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, _ []string) error {
	environ := os.Environ()

	result, err := resolveEnvironment(cmd, environ, false)
	if err != nil {
		return err
	}

	if len(result.Env) == 0 && len(result.Failures) == 0 {
		fmt.Println(SubtitleStyle.Render("no " + secrets.Prefix + "* variables found"))
		return nil
	}

	for _, key := range sortedKeys(result.Env) {
		fmt.Printf("%s %s\n", SuccessStyle.Render("ok  "), KeyStyle.Render(key))
	}
	for _, failure := range result.Failures {
		fmt.Printf("%s %s  %s\n",
			ErrorStyle.Render("fail"),
			KeyStyle.Render(failure.Key),
			SubtitleStyle.Render(failure.Err.Error()))
	}

	if len(result.Failures) > 0 {
		return &ExitError{Code: 1}
	}
	return nil
}

// sortedKeys returns the env keys in sorted order for stable display,
// independent of map iteration.
func sortedKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
