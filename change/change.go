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

// Package change defines the journal the analyzer drains once per tick:
// an accumulating record of which files changed since the last drain,
// and whether the workspace's source roots changed along with them.
package change

import "github.com/langtools/corevfs/fileset"

// Change is a self-contained description of everything that happened to
// a Vfs since the previous drain, suitable for the analyzer to apply
// atomically.
type Change struct {
	// Files maps a changed FileId to its new contents, or to nil if the
	// file was removed. A FileId with no entry here did not change.
	Files map[fileset.FileId]*string

	// Roots is non-nil only when workspace membership changed (a file
	// was added or removed) since the previous drain. When present it
	// reflects the FileSet as of the drain itself, not as of whichever
	// edit first flipped the root-changed flag — see [Journal.Take].
	Roots []*SourceRoot
}

// SourceRoot is an immutable snapshot of a FileSet, published whenever
// root membership changes. Local is true for the workspace's own root;
// non-local roots (e.g. a read-only dependency tree) are out of scope
// for this core but the field exists so downstream consumers can
// distinguish them if a future root provider adds one.
type SourceRoot struct {
	Local bool
	files *fileset.FileSet
}

// NewLocalRoot wraps fs as a local SourceRoot. fs should already be an
// independent clone: SourceRoot does not copy it.
func NewLocalRoot(fs *fileset.FileSet) *SourceRoot {
	return &SourceRoot{Local: true, files: fs}
}

// Files returns the snapshotted FileSet.
func (r *SourceRoot) Files() *fileset.FileSet {
	return r.files
}

// Journal accumulates file overlays and a root-changed flag between
// drains. It is not safe for concurrent use: like the rest of the core,
// it is owned by whichever single task performs mutations (see vfs.Vfs).
//
// The zero Journal is empty and ready to use.
type Journal struct {
	overlay      map[fileset.FileId]*string
	rootsChanged bool
}

// ChangeFile records that file's content is now text, or that it was
// removed if text is nil. Multiple calls for the same FileId between
// drains collapse: only the most recent call survives, matching
// spec.md §4.4 ("only the latest content survives").
func (j *Journal) ChangeFile(file fileset.FileId, text *string) {
	if j.overlay == nil {
		j.overlay = make(map[fileset.FileId]*string)
	}
	j.overlay[file] = text
}

// MarkRootsChanged records that workspace membership changed since the
// last drain. It is idempotent; a drain clears it regardless of how many
// times it was set in between.
func (j *Journal) MarkRootsChanged() {
	j.rootsChanged = true
}

// Take drains the journal into a self-contained Change and resets it.
//
// snapshot should be the FileSet as it stands right now, not as it stood
// whenever MarkRootsChanged was first called in this drain period: per
// spec.md §4.4, "the published roots reflect the FileSet state at drain
// time, not at the time the flag was first set".
func (j *Journal) Take(snapshot *fileset.FileSet) Change {
	c := Change{Files: j.overlay}
	j.overlay = nil

	if j.rootsChanged {
		j.rootsChanged = false
		c.Roots = []*SourceRoot{NewLocalRoot(snapshot.Clone())}
	}
	return c
}
