// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"runsec-cli/internal/config"
	"runsec-cli/internal/expand"
	"runsec-cli/internal/issue"
	"runsec-cli/internal/launch"
	"runsec-cli/internal/secrets"
)

var (
	// failFast aborts the run on the first failed secret lookup.
	failFast bool

	runCmd = &cobra.Command{
		Use:   "run [flags] -- <command> [args...]",
		Short: "Run a command with secrets resolved into its environment",
		Long: `Run a command with resolved secrets from environment variables.

This command:
  1. Resolves RUNSEC_SECRET_* variables using the configured secret manager
  2. Expands $NAME / ${NAME} references between them
  3. Injects the resolved values (without the RUNSEC_SECRET_ prefix)
  4. Executes the command with inherited stdio and forwarded signals

Variables that fail to resolve are skipped with a warning unless
--fail-fast is set. The child's exit code becomes runsec's exit code.

Examples:
  # Launch a dev server whose config references 1Password items
  RUNSEC_SECRET_API_KEY='{{op://vault/service/api-key}}' runsec run -- npm start

  # Abort instead of launching when any secret is unresolvable
  runsec run --fail-fast -- ./deploy.sh`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRun,
	}
)

func init() {
	runCmd.Flags().BoolVar(&failFast, "fail-fast", false, "abort on the first failed secret resolution")
}

func runRun(cmd *cobra.Command, args []string) error {
	environ := os.Environ()

	resolved, err := resolveEnvironment(cmd, environ, failFast || cfg.Resolution.FailFast)
	if err != nil {
		return err
	}

	for _, failure := range resolved.Failures {
		log.Warn("skipping variable with unresolved value", "key", failure.Key, "reason", failure.Err)
	}

	code, err := launch.Run(args, launch.BuildEnv(environ, resolved.Env))
	if err != nil {
		return issue.Wrap(err, "execute command").
			Suggest("Check that '" + args[0] + "' is installed and in PATH")
	}
	if !code.IsSuccess() {
		return &ExitError{Code: code}
	}
	return nil
}

// resolveEnvironment runs the resolution pipeline over an environ snapshot
// using the configured backend, translating terminal failures into
// actionable errors.
func resolveEnvironment(cmd *cobra.Command, environ []string, abortOnFailure bool) (*secrets.Result, error) {
	pipeline := secrets.NewPipeline(buildBackend(cfg), cfg.Resolution.Workers, abortOnFailure)

	result, err := pipeline.Run(cmd.Context(), environ)
	if err != nil {
		return nil, actionableResolutionError(err)
	}
	return result, nil
}

// buildBackend selects the Backend implementation for the configured
// secret manager.
func buildBackend(cfg *config.Config) secrets.Backend {
	switch cfg.SecretManager.Type {
	case config.SecretManagerOnePassword:
		return secrets.NewOpCLI(cfg.SecretManager.Binary, cfg.SecretManager.Timeout)
	default:
		return secrets.Disabled{}
	}
}

// actionableResolutionError attaches fix suggestions to the pipeline's
// terminal failures.
func actionableResolutionError(err error) error {
	var cycleErr *expand.CycleError
	if errors.As(err, &cycleErr) {
		return issue.Wrap(err, "expand variable references").
			Suggest("Break the reference cycle between: " + strings.Join(cycleErr.Keys, ", "))
	}

	var resErr *secrets.ResolutionError
	if errors.As(err, &resErr) {
		ae := issue.Wrap(err, "resolve secrets")
		switch resErr.Kind {
		case secrets.FailureNotFound:
			ae.Suggest("Verify the reference '" + resErr.Reference + "' names an existing item")
		case secrets.FailureDenied:
			ae.Suggest("Sign in to the secret manager and check item permissions")
		case secrets.FailureTimeout:
			ae.Suggest("Increase secret_manager.timeout in the config file")
		case secrets.FailureUnavailable:
			ae.Suggest("Install the secret manager CLI or set secret_manager.binary",
				"Run 'runsec config show' to inspect the active backend")
		}
		return ae
	}

	return issue.Wrap(err, "resolve secrets")
}
