// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the abduction CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abduction",
		Short: "Abduction - an autonomous hex-world survival show",
		Long: `Abduction runs an endless sequence of matches in which simulated
contestants survive on a hex world until one remains.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/abduction/config.yaml)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSchemaCmd())
	cmd.AddCommand(NewValidateConfigCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
