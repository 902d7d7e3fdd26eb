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
	"log/slog"

	"github.com/spf13/cobra"

	"shakespeare/internal/domain"
	"shakespeare/internal/export"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		req    domain.Request
		length string
		aud    string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a script from the command line and optionally write the PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Length = domain.Length(length)
			req.Audience = domain.Audience(aud)
			pipe, err := a.pipeline(nil)
			if err != nil {
				return err
			}
			res, err := pipe.Acquire(cmd.Context(), req)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n\n%s\n", res.Title, res.Script)
			if res.HasSearchData() {
				fmt.Fprintf(w, "\nSearch data: %s\n", res.SearchData)
			}
			if out == "" {
				return nil
			}
			if out == "auto" {
				out = export.FileName(res.Title)
			}
			a.log.Debug("writing pdf", slog.String("path", out))
			return a.writePDF(out, res.Title, res.Script)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Topic, "topic", "", "video topic")
	f.StringVar(&length, "length", string(domain.Length5), "video length: 5, 10, 15 or 20 Mins")
	f.StringVar(&aud, "audience", string(domain.Adults), "target audience: Kids, Teens or Adults")
	f.Float64Var(&req.Creativity, "creativity", domain.DefaultCreativity, "creativity level between 0 and 1")
	f.StringVar(&req.Credential, "api-key", "", "Gemini API key (default from keyring or SHK_GEMINI_API_KEY)")
	f.StringVarP(&out, "out", "o", "", "write the PDF to this path (\"auto\" names it after the title)")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}
