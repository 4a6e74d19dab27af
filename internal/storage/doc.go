/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements on-disk persistence for the pipeline.
// It handles the canonical scenes.json document (transactional writes,
// schema validation) which is the stable contract between the parser and
// the downstream stages, and the per-output SQLite index at
// <out_dir>/.cache/index.sqlite that tracks render cache entries. The index
// is derived data and is rebuildable/disposable by design; rendering never
// fails because of it.
package storage
