/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic in the CLI into a logged error, a crash report
// file, and exit code 2.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	applog "shakespeare/internal/log"
	"shakespeare/internal/telemetry"
	"shakespeare/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Recover captures a panic, logs it with its stack, writes a report under
// reportDir (the temp dir when empty), and exits with code 2.
//
// Usage: defer crash.Recover(dir)
func Recover(reportDir string) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(reportDir, r, stack)
		if err != nil {
			l.Error("write crash report failed", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
		exitFn(2)
	}
}

// Report renders the crash report text.
func Report(panicVal any, stack []byte, at time.Time) []byte {
	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Shakespeare Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", at.Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if len(os.Args) > 1 {
		_, _ = fmt.Fprintf(&buf, "Command: %s\n", strings.Join(commandWords(os.Args[1:]), " "))
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))
	return buf.Bytes()
}

// commandWords keeps subcommand names and drops flags and their values,
// which may carry keys or paths.
func commandWords(args []string) []string {
	var out []string
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			break
		}
		out = append(out, a)
	}
	return out
}

func writeReport(dir string, panicVal any, stack []byte) (string, error) {
	if strings.TrimSpace(dir) == "" {
		dir = os.TempDir()
	}
	_ = os.MkdirAll(dir, 0o755)
	now := time.Now()
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", now.Format("20060102-150405")))
	report := Report(panicVal, stack, now)
	if err := os.WriteFile(path, report, 0o644); err != nil {
		return path, err
	}
	telemetry.Default().UploadCrash(report)
	return path, nil
}
