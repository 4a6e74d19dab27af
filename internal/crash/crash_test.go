/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRecoverWritesReportAndExits(t *testing.T) {
	dir := t.TempDir()

	exitCode := -1
	prev := exitFn
	exitFn = func(code int) { exitCode = code }
	defer func() { exitFn = prev }()

	func() {
		defer Recover(dir)
		panic("renderer exploded")
	}()

	if exitCode != 2 {
		t.Fatalf("exit code = %d, want 2", exitCode)
	}

	reports, err := filepath.Glob(filepath.Join(dir, "crash-*.log"))
	if err != nil || len(reports) != 1 {
		t.Fatalf("crash reports = %v (%v), want exactly one", reports, err)
	}
	data, err := os.ReadFile(reports[0])
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	body := string(data)
	for _, want := range []string{"ScriptCast Crash Report", "Panic: renderer exploded", "Stack:"} {
		if !strings.Contains(body, want) {
			t.Fatalf("report missing %q:\n%s", want, body)
		}
	}
}

func TestRecoverNoPanicIsNoOp(t *testing.T) {
	prev := exitFn
	exitFn = func(int) { t.Fatalf("exitFn called without a panic") }
	defer func() { exitFn = prev }()

	func() {
		defer Recover("")
	}()
}
