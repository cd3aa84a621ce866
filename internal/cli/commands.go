/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gocollector/internal/config"
	"gocollector/internal/domain"
	"gocollector/internal/filter"
	"gocollector/internal/server"
	"gocollector/internal/session"
)

// noticeError prints as the user-facing notice and unwraps to the cause.
type noticeError struct{ err error }

func (e noticeError) Error() string { return session.Notice(e.err) }
func (e noticeError) Unwrap() error { return e.err }

// filterFlags are shared by catalog and export.
type filterFlags struct {
	country   string
	character string
	group     string
	company   string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.country, "country", filter.Any, "country filter")
	cmd.Flags().StringVar(&f.character, "character", filter.Any, "character filter")
	cmd.Flags().StringVar(&f.group, "company-group", filter.Any, "company group: all, old or new")
	cmd.Flags().StringVar(&f.company, "company", "", "specific company within --company-group")
}

func (f *filterFlags) apply(ctx context.Context, sess *session.Session) error {
	for _, c := range []session.Command{
		{Type: session.CmdSetCountry, Value: f.country},
		{Type: session.CmdSetCharacter, Value: f.character},
		{Type: session.CmdSetCompanyGroup, Value: f.group},
		{Type: session.CmdSetCompanySpecific, Value: f.company},
	} {
		if _, err := sess.Dispatch(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func openList(ctx context.Context, app *App, list string) (*session.Session, error) {
	sess, err := app.Session(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := sess.Dispatch(ctx, session.Command{Type: session.CmdSwitchList, Value: list}); err != nil {
		return nil, err
	}
	return sess, nil
}

func newCatalogCmd(app *App) *cobra.Command {
	var ff filterFlags
	var list string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the catalog grouped, with check marks for a list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			defer app.Close()
			sess, err := openList(ctx, app, list)
			if err != nil {
				return err
			}
			if err := ff.apply(ctx, sess); err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), sess.View())
			return nil
		},
	}
	cmd.Flags().StringVar(&list, "list", string(domain.ListOwned), "list to mark: owned or wished")
	ff.bind(cmd)
	return cmd
}

func printView(w io.Writer, v session.View) {
	fmt.Fprintf(w, "[%s] %d selected, %d items\n", v.State.List, v.Selected, v.Total)
	if c := v.State.Criteria; !c.IsZero() {
		fmt.Fprintf(w, "filters: country=%s character=%s company-group=%s company=%s\n",
			c.Country, c.Character, c.CompanyGroup, c.CompanySpecific)
	}
	if len(v.Companies) > 0 {
		fmt.Fprint(w, "companies:")
		for _, c := range v.Companies {
			if c.Selected {
				fmt.Fprintf(w, " [%s %s]", c.Code, c.Name)
			} else {
				fmt.Fprintf(w, " %s %s", c.Code, c.Name)
			}
		}
		fmt.Fprintln(w)
	}
	if v.Notice != "" {
		fmt.Fprintln(w, v.Notice)
		return
	}
	for _, g := range v.Groups {
		fmt.Fprintf(w, "\n%s\n", g.Key)
		for _, c := range g.Cards {
			mark := "[ ]"
			switch {
			case c.Locked:
				mark = "[-]"
			case c.Checked:
				mark = "[x]"
			}
			fmt.Fprintf(w, "  %s %-8s %s  %s\n", mark, c.ID, c.Name, c.Price)
		}
	}
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <list> <id>...",
		Short: "Flip membership of items in a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			defer app.Close()
			list, err := domain.ParseListKind(args[0])
			if err != nil {
				return err
			}
			sess, err := app.Session(ctx)
			if err != nil {
				return err
			}
			for _, id := range args[1:] {
				on, err := sess.Toggle(ctx, list, id)
				if err != nil {
					return err
				}
				state := "removed from"
				if on {
					state = "added to"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", id, state, list)
			}
			return nil
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear <list>",
		Short: "Delete all records of a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := domain.ParseListKind(args[0])
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to clear %s list without --yes", list)
			}
			defer app.Close()
			sess, err := app.Session(cmd.Context())
			if err != nil {
				return err
			}
			if err := sess.Clear(cmd.Context(), list); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reset complete.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var ff filterFlags
	ro := domain.DefaultRenderOptions()
	var mode, columns, scope, format, out string
	cmd := &cobra.Command{
		Use:   "export <list>",
		Short: "Render the selected items of a list as a collage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			defer app.Close()
			sess, err := openList(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := ff.apply(ctx, sess); err != nil {
				return err
			}
			ro.Mode = domain.DisplayMode(mode)
			ro.Columns = domain.ColumnPolicy(columns)
			ro.Scope = domain.ExportScope(scope)
			ro.Format = domain.ParseFormat(format)

			exp, err := sess.Export(ctx, ro)
			if err != nil {
				return noticeError{err}
			}
			if out == "" {
				out = app.Config().Render.OutDir
			}
			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
			path := filepath.Join(out, exp.Filename)
			if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d items, %dx%d)\n", path, exp.Count, exp.Width, exp.Height)
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&ro.ShowName, "name", ro.ShowName, "draw item names")
	f.BoolVar(&ro.ShowPrice, "price", ro.ShowPrice, "draw item prices")
	f.BoolVar(&ro.ShowTitle, "title", ro.ShowTitle, "draw the title")
	f.StringVar(&ro.Title, "title-text", "", "custom title text")
	f.BoolVar(&ro.ShowNickname, "nickname", false, "draw the nickname caption")
	f.StringVar(&ro.Nickname, "nickname-text", "", "nickname caption text")
	f.StringVar(&mode, "mode", string(domain.ModeNormal), "card mode: normal or compact")
	f.StringVar(&columns, "columns", string(domain.ColumnsFixed), "column policy: fixed or sqrt")
	f.StringVar(&scope, "scope", string(domain.ScopeAll), "export scope: all or filtered")
	f.StringVar(&format, "format", string(domain.FormatPNG), "output format: png, jpeg or pdf")
	f.StringVarP(&out, "out", "o", "", "output directory (default render.out_dir)")
	ff.bind(cmd)
	return cmd
}

func newServeCmd(app *App) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer app.Close()
			sess, err := app.Session(cmd.Context())
			if err != nil {
				return err
			}
			sc := app.Config().Server
			if addr == "" {
				addr = sc.Addr
			}
			return server.New(sess, server.Options{
				Addr:           addr,
				AllowedOrigins: sc.AllowedOrigins,
				ReadTimeout:    sc.ReadTimeout(),
				WriteTimeout:   sc.WriteTimeout(),
			}).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return cmd
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration and its environment overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			path, err := app.configFile()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "# file: %s\n", path)
			for _, key := range config.EnvKeys() {
				if env, ok := config.EnvOverrideFor(key); ok {
					fmt.Fprintf(w, "# %s overridden by %s\n", key, env)
				}
			}
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(app.Config()); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.AddCommand(newConfigInitCmd(app), newConfigTokenCmd())
	return cmd
}

func newConfigInitCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configFile()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists; use --force to overwrite", path)
			}
			if app.ConfigPath != "" {
				err = config.SaveTo(path, app.Config(), "")
			} else {
				err = config.Save(app.Config(), "")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigTokenCmd() *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "token [value]",
		Short: "Store or remove the catalog bearer token in the OS keychain",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remove {
				if err := config.DeleteToken(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
				return nil
			}
			if len(args) != 1 || args[0] == "" {
				return fmt.Errorf("token value required (or --delete)")
			}
			if err := config.SetToken(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token stored.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&remove, "delete", false, "remove the stored token")
	return cmd
}
