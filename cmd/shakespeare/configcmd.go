/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"shakespeare/internal/config"
	applog "shakespeare/internal/log"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration and which settings come from the environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			path, _ := config.ConfigPath()
			fmt.Fprintf(w, "# file: %s\n", path)
			b, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(w, string(b))
			for _, k := range config.Keys() {
				if env, ok := config.EnvOverrideFor(k); ok {
					fmt.Fprintf(w, "# %s overridden by %s\n", k, env)
				}
			}
			fmt.Fprintf(w, "# gemini key: %s\n", keyStatus(a.secrets.GeminiAPIKey))
			fmt.Fprintf(w, "# serper key: %s\n", keyStatus(a.secrets.SerperAPIKey))
			return nil
		},
	}
	cmd.AddCommand(show)
	return cmd
}

func keyStatus(v string) string {
	if v == "" {
		return "not set"
	}
	return applog.Redact(v)
}
