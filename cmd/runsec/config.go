// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"runsec-cli/internal/config"
	"runsec-cli/internal/issue"
)

var (
	// forceInit overwrites an existing config file during init.
	forceInit bool

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage runsec configuration",
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Long: `Create the runsec configuration file with default settings.

An existing file is preserved unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: runConfigInit,
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	}
)

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path, written, err := config.WriteDefault(forceInit)
	if err != nil {
		return issue.Wrap(err, "initialize configuration").
			Suggest("Check permissions on the config directory")
	}

	if !written {
		fmt.Println(WarningStyle.Render("kept existing config: ") + path)
		fmt.Println(SubtitleStyle.Render("use --force to reset it to defaults"))
		return nil
	}

	fmt.Println(SuccessStyle.Render("wrote ") + path)
	return nil
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return issue.Wrap(err, "render configuration")
	}
	fmt.Print(string(data))
	return nil
}

func runConfigPath(_ *cobra.Command, _ []string) error {
	path, err := config.FilePath()
	if err != nil {
		return issue.Wrap(err, "locate configuration")
	}
	fmt.Println(path)
	return nil
}
