/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"fmt"
	"os"

	"scriptcast/internal/domain"
)

// ParseFile reads a UTF-8 script file (a leading BOM is tolerated) and
// parses it into a document.
func ParseFile(path string) (domain.Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read script %s: %w", path, err)
	}
	scenes, err := Parse(string(b))
	if err != nil {
		return domain.Document{}, err
	}
	return domain.Document{Scenes: scenes}, nil
}
