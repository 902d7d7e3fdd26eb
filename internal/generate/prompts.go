/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package generate

import (
	"strings"
	"text/template"

	"shakespeare/internal/domain"
)

var (
	titleTmpl = template.Must(template.New("title").Parse(
		"Generate one YouTube video title with this topic: {{.Topic}}. Please answer directly."))

	scriptTmpl = template.Must(template.New("script").Parse(`Create a YouTube script with the title '{{.Title}}' that lasts {{.Duration}}.
The target audience are {{.Audience}}.
Use this as additional context: {{.SearchData}}
`))
)

type titleVars struct{ Topic string }

type scriptVars struct {
	Title      string
	Duration   domain.Length
	Audience   domain.Audience
	SearchData string
}

// TitlePrompt is the prompt for the title generation call.
func TitlePrompt(topic string) string {
	return execute(titleTmpl, titleVars{Topic: topic})
}

// ScriptPrompt is the prompt for the script generation call.
func ScriptPrompt(title string, length domain.Length, audience domain.Audience, searchData string) string {
	return execute(scriptTmpl, scriptVars{Title: title, Duration: length, Audience: audience, SearchData: searchData})
}

func execute(t *template.Template, data any) string {
	var b strings.Builder
	// Templates are static and the data has only string fields.
	if err := t.Execute(&b, data); err != nil {
		panic(err)
	}
	return b.String()
}
