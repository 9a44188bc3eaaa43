// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package vfserr defines the sentinel errors the vfs package logs (never
// returns across its client-facing boundary) and the minimal logging
// interface it logs them through.
package vfserr

import "errors"

// Sentinel errors corresponding to spec.md §7's error kinds. These are
// never returned to a vfs.Vfs caller directly — set_uri_content-style
// methods return (FileId, bool) or nil, matching the spec's "the core
// never throws across its boundary for client-induced errors" policy.
// They exist so a [Logger] can report *which* condition occurred, and so
// tests can assert on them with errors.Is.
var (
	// ErrOutsideWorkspace: a file: URI's path does not start with the
	// workspace's local root.
	ErrOutsideWorkspace = errors.New("vfs: uri is outside the workspace root")
	// ErrTextTooLarge: content exceeds MAX_FILE_LEN or does not fit in a
	// 32-bit length.
	ErrTextTooLarge = errors.New("vfs: file content exceeds the size limit")
)

// Logger is the minimal logging surface the vfs package writes to. It is
// satisfied by any structured logger the surrounding language server
// already uses; corevfs does not depend on one itself (see SPEC_FULL.md
// §3) — logging setup is an explicit collaborator, not a concern owned by
// this module.
type Logger interface {
	// Warnf logs a message at warning level, used for conditions the
	// spec treats as "ignore, but tell somebody" (OutsideWorkspace,
	// TextTooLarge).
	Warnf(format string, args ...any)
}

// Nop is a [Logger] that discards everything. It is the zero-value-safe
// default used when a caller does not supply one.
type Nop struct{}

// Warnf implements [Logger].
func (Nop) Warnf(string, ...any) {}
