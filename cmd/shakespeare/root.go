/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"shakespeare/internal/config"
	applog "shakespeare/internal/log"
)

// app is the state shared by subcommands after the root pre-run.
type app struct {
	cfg     config.AppConfig
	secrets config.Secrets
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "shakespeare",
		Short:         "Shakespeare writes YouTube video scripts and exports them as PDF",
		Long:          `Shakespeare collects a topic, length, audience and creativity level, asks a language model for a title and a script, and renders the script as a PDF.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, sec, err := config.Load()
			if err != nil {
				return err
			}
			applog.Init(applog.Options{
				Level:     cfg.Logging.Level,
				Format:    cfg.Logging.Format,
				AddSource: cfg.Logging.Source,
				File:      cfg.Logging.File,
				Writer:    cmd.ErrOrStderr(),
			})
			a.cfg, a.secrets = cfg, sec
			a.log = applog.WithComponent("cli")
			a.log.Debug("start", slog.String("command", cmd.CommandPath()))
			return nil
		},
	}
	root.AddCommand(
		newServeCmd(a),
		newRenderCmd(a),
		newGenerateCmd(a),
		newKeyCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}
