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

// Package fileset owns the bijection between [FileId] handles and
// [vfspath.Path] values for a single workspace.
package fileset

import (
	"fmt"

	"github.com/tidwall/btree"

	"github.com/langtools/corevfs/vfspath"
)

// FileId is an opaque, process-stable handle for a tracked file.
//
// FileIds are allocated monotonically and never reused, even once the
// file they named is removed: the slot is tombstoned, not recycled. This
// keeps every FileId ever handed to the analysis database valid as an
// index for the lifetime of the process (see vfs.Vfs, which stores the
// per-file text/LineMap pairs in exactly such a slot vector).
type FileId uint32

// String implements fmt.Stringer for debug output.
func (id FileId) String() string {
	return fmt.Sprintf("FileId(%d)", uint32(id))
}

// FileSet is a bijection {FileId <-> vfspath.Path}: no two live FileIds
// share a path, no FileId maps to two paths, and a removed FileId has no
// path at all.
//
// The mirrors are stored in ordered github.com/tidwall/btree Maps rather
// than plain Go maps, so [FileSet.Clone] snapshots — published as
// change.SourceRoot whenever workspace membership changes — iterate
// their paths in a stable, deterministic order. That determinism is not
// required by spec.md, but it makes diffing two SourceRoot snapshots in
// a test or a log line meaningful instead of order-dependent noise.
//
// The zero FileSet is empty and ready to use.
type FileSet struct {
	// Keyed by path.String() rather than vfspath.Path itself: btree.Map's
	// generic key type must satisfy cmp.Ordered (built-in `<`), which a
	// struct like vfspath.Path does not. The string form is exactly the
	// byte-exact representation spec.md defines equality over, so no
	// precision is lost.
	byPath btree.Map[string, entry]
	byFile btree.Map[FileId, vfspath.Path]
}

type entry struct {
	file FileId
	path vfspath.Path
}

// Insert records that file is reachable at path. It panics if path is
// already mapped to a different FileId: the caller (vfs.Vfs) is required
// to look up the existing FileId for a path before deciding to allocate
// and insert a new one, so reaching this with a duplicate indicates a
// bug in the caller, not a condition a client request can trigger.
func (fs *FileSet) Insert(file FileId, path vfspath.Path) {
	key := path.String()
	if existing, ok := fs.byPath.Get(key); ok && existing.file != file {
		panic(fmt.Sprintf("fileset: path %q already maps to %s", path, existing.file))
	}
	fs.byPath.Set(key, entry{file: file, path: path})
	fs.byFile.Set(file, path)
}

// Remove tombstones file, clearing both mirrors. Removing a FileId that
// is not present is a no-op.
func (fs *FileSet) Remove(file FileId) {
	path, ok := fs.byFile.Get(file)
	if !ok {
		return
	}
	fs.byFile.Delete(file)
	fs.byPath.Delete(path.String())
}

// FileFor returns the FileId currently mapped to path, if any.
func (fs *FileSet) FileFor(path vfspath.Path) (FileId, bool) {
	e, ok := fs.byPath.Get(path.String())
	return e.file, ok
}

// PathFor returns the path currently mapped to file, if any.
func (fs *FileSet) PathFor(file FileId) (vfspath.Path, bool) {
	return fs.byFile.Get(file)
}

// Len returns the number of live files tracked by fs.
func (fs *FileSet) Len() int {
	return fs.byFile.Len()
}

// Clone returns a deep, independent copy of fs, suitable for publishing
// as an immutable change.SourceRoot snapshot: mutating the original
// FileSet afterward never affects the clone.
func (fs *FileSet) Clone() *FileSet {
	clone := &FileSet{}
	fs.byPath.Scan(func(key string, e entry) bool {
		clone.byPath.Set(key, e)
		return true
	})
	fs.byFile.Scan(func(file FileId, path vfspath.Path) bool {
		clone.byFile.Set(file, path)
		return true
	})
	return clone
}

// Paths calls yield for every (FileId, path) pair in fs, in path order.
// Iteration stops early if yield returns false.
func (fs *FileSet) Paths(yield func(FileId, vfspath.Path) bool) {
	fs.byPath.Scan(func(_ string, e entry) bool {
		return yield(e.file, e.path)
	})
}
