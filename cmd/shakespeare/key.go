/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shakespeare/internal/config"
	applog "shakespeare/internal/log"
)

// secretName maps the CLI names to keyring entries.
func secretName(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gemini":
		return config.KeyGemini, nil
	case "serper":
		return config.KeySerper, nil
	}
	return "", fmt.Errorf("unknown key %q (want gemini or serper)", s)
}

func newKeyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage API keys in the OS keyring",
	}
	set := &cobra.Command{
		Use:   "set <gemini|serper> [value]",
		Short: "Store an API key; reads it from stdin when no value is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := secretName(args[0])
			if err != nil {
				return err
			}
			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read key from stdin: %w", err)
				}
				value = line
			}
			if err := config.SetSecret(name, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s (%s)\n", name, applog.Redact(strings.TrimSpace(value)))
			return nil
		},
	}
	del := &cobra.Command{
		Use:   "delete <gemini|serper>",
		Short: "Remove an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := secretName(args[0])
			if err != nil {
				return err
			}
			if err := config.DeleteSecret(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", name)
			return nil
		},
	}
	cmd.AddCommand(set, del)
	return cmd
}
