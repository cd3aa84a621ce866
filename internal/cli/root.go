/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli implements the gocollector command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gocollector/internal/telemetry"
	"gocollector/internal/version"
)

// NewRootCmd builds the command tree around app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "gocollector",
		Short:         "Track owned and wished collectibles and export collages",
		Long:          `gocollector loads a collectible catalog from a published sheet, keeps owned and wished lists, and renders the selections as a collage image.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			app.Setup()
		},
	}
	root.SetVersionTemplate(version.String() + "\n")
	root.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "config file (default is the per-user config.yaml)")

	root.AddCommand(newCatalogCmd(app))
	root.AddCommand(newToggleCmd(app))
	root.AddCommand(newClearCmd(app))
	root.AddCommand(newExportCmd(app))
	root.AddCommand(newServeCmd(app))
	root.AddCommand(newConfigCmd(app))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the CLI with args and returns the first command error. The
// command outcome is reported to telemetry before its queue is drained.
func Execute(ctx context.Context, app *App, args []string, stdout, stderr io.Writer) error {
	root := NewRootCmd(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	cmd, err := root.ExecuteContextC(ctx)
	if cmd != nil && app.loaded {
		telemetry.Emit("command", map[string]any{"name": cmd.Name(), "ok": err == nil})
	}
	app.closeTelemetry()
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
