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

// Package vfs bridges editor-visible document URIs to the rest of the
// analysis pipeline: it owns the FileId<->path bijection, rebuilds a
// LineMap on every edit, and accumulates a change.Journal the analyzer
// drains once per tick.
//
// A Vfs is single-writer: every mutating method must be called from the
// same goroutine that constructed it (see [New] and the package doc for
// why). Read-only lookups (GetFileForURI, GetURIForFile, GetLineMap) are
// intended to be called from that same goroutine too — the core is never
// shared directly with concurrent readers, who instead work from
// snapshots the analyzer publishes (spec.md §5).
package vfs

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/petermattis/goid"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/langtools/corevfs/change"
	"github.com/langtools/corevfs/fileset"
	"github.com/langtools/corevfs/internal/arena"
	"github.com/langtools/corevfs/linemap"
	"github.com/langtools/corevfs/vfserr"
	"github.com/langtools/corevfs/vfspath"
)

// MaxFileLen is the default byte-length cap on ingested file content.
// Files larger than this are rejected outright; see spec.md §6. It is
// always the binding bound (smaller than the 2^32-1 limit [linemap.Build]
// itself enforces), so in practice it is the only check that ever fires.
const MaxFileLen = 128 * 1024 * 1024

// Config holds the tunables SetURIContent consults; it is set by assigning
// the exported Vfs.Config field after New, which does not take one. The zero
// Config is valid: MaxFileLen defaults to the package constant and no
// paths are ignored.
type Config struct {
	// MaxFileLen overrides the package default MaxFileLen when nonzero.
	MaxFileLen uint32

	// IgnoreGlobs is a set of doublestar-syntax globs (workspace-relative,
	// no leading slash) that SetURIContent silently ignores, as if the
	// URI resolved outside the workspace. This supplements spec.md (see
	// SPEC_FULL.md §5): the distilled spec does not call for it, but a
	// workspace with a vendored dependency tree or build-output directory
	// needs some way to keep those files out of the FileSet without the
	// outer transport layer pre-filtering every notification.
	IgnoreGlobs []string

	// LogOverwriteDiffs, if true, logs a unified diff of old vs. new
	// content through Logger whenever an edit replaces an existing file's
	// text. Off by default since it is O(file size) extra work per edit.
	LogOverwriteDiffs bool
}

func (c Config) maxFileLen() int {
	if c.MaxFileLen == 0 {
		return MaxFileLen
	}
	return int(c.MaxFileLen)
}

// slot is the per-FileId state held in the arena: either live with text
// and a LineMap, or tombstoned (the zero value) once its file is closed.
// This is the Go rendering of spec.md §3's FileEntry/tombstone states;
// unlike a Rust Option<(Arc<str>, LineMap)>, a zero-value struct with an
// explicit `live` flag is the idiomatic Go way to express "allocated but
// absent" without extra indirection on the hot path.
type slot struct {
	text    string
	lineMap *linemap.LineMap
	live    bool
}

// Vfs is the façade described in spec.md §2: it owns a FileSet, a
// parallel arena of per-file (text, LineMap) slots addressed by FileId,
// the workspace root used to resolve file: URIs, and a change.Journal.
type Vfs struct {
	Config Config
	Logger vfserr.Logger

	localRoot string
	fileSet   fileset.FileSet
	files     arena.Arena[slot, fileset.FileId]
	journal   change.Journal

	owner int64
}

// New constructs a Vfs rooted at localRoot, an absolute, slash-normalized
// workspace path. New performs no I/O: it only records the root and
// captures the identity of the calling goroutine, which becomes the sole
// goroutine allowed to call SetURIContent or TakeChange for the lifetime
// of this Vfs (spec.md §5's single-writer discipline, enforced instead of
// merely documented — see [Vfs.assertOwner]).
func New(localRoot string) *Vfs {
	return &Vfs{
		localRoot: strings.TrimSuffix(localRoot, "/"),
		Logger:    vfserr.Nop{},
		owner:     goid.Get(),
	}
}

// assertOwner panics if called from any goroutine other than the one
// that constructed v. This is not recoverable misuse handling — it is
// the same class of fatal assertion as a corrupt FileSet invariant
// (spec.md §7's "Recovery policy"): a violation means the surrounding
// server failed to funnel mutations through its single state task, which
// is a bug in the caller, not a condition any client request can trigger.
func (v *Vfs) assertOwner() {
	if g := goid.Get(); g != v.owner {
		panic(fmt.Sprintf("vfs: mutating call from goroutine %d, but this Vfs is owned by goroutine %d", g, v.owner))
	}
}

// SetURIContent applies an editor notification: uri's content is now
// text, or the file was closed/deleted if text is nil. It implements the
// four-case table in spec.md §4.3 and returns the FileId the content now
// lives at, or (0, false) if no FileId resulted (the file was removed,
// the URI could not be resolved into the workspace, or the content was
// rejected).
func (v *Vfs) SetURIContent(uri string, text *string) (fileset.FileId, bool) {
	v.assertOwner()

	vpath, ok := v.uriToPath(uri)
	if !ok || v.ignored(vpath) {
		return 0, false
	}

	existing, hasExisting := v.fileSet.FileFor(vpath)

	switch {
	case hasExisting && text == nil:
		v.fileSet.Remove(existing)
		*v.files.At(existing) = slot{}
		v.journal.MarkRootsChanged()
		v.journal.ChangeFile(existing, nil)
		return 0, false

	case !hasExisting && text == nil:
		return 0, false

	case hasExisting && text != nil:
		normalized, lm, err := v.normalize(*text)
		if err != nil {
			return 0, false
		}
		if v.Config.LogOverwriteDiffs {
			v.logOverwriteDiff(vpath, v.files.At(existing).text, normalized)
		}
		*v.files.At(existing) = slot{text: normalized, lineMap: lm, live: true}
		v.journal.ChangeFile(existing, &normalized)
		return existing, true

	default: // !hasExisting && text != nil
		normalized, lm, err := v.normalize(*text)
		if err != nil {
			return 0, false
		}
		id := v.files.Alloc(slot{text: normalized, lineMap: lm, live: true})
		v.fileSet.Insert(id, vpath)
		v.journal.MarkRootsChanged()
		v.journal.ChangeFile(id, &normalized)
		return id, true
	}
}

// normalize validates and builds a LineMap over text, logging and
// returning an error for any rejection spec.md §7 classifies as
// TextTooLarge.
func (v *Vfs) normalize(text string) (string, *linemap.LineMap, error) {
	if len(text) > v.Config.maxFileLen() {
		v.Logger.Warnf("vfs: rejecting %d-byte file: exceeds the %d-byte limit", len(text), v.Config.maxFileLen())
		return "", nil, vfserr.ErrTextTooLarge
	}
	normalized, lm, err := linemap.Build(text)
	if err != nil {
		v.Logger.Warnf("vfs: rejecting file: %v", err)
		return "", nil, fmt.Errorf("%w: %w", vfserr.ErrTextTooLarge, err)
	}
	return normalized, lm, nil
}

func (v *Vfs) logOverwriteDiff(vpath vfspath.Path, before, after string) {
	if before == after {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: vpath.String() + " (before)",
		ToFile:   vpath.String() + " (after)",
		Context:  2,
	})
	if err != nil {
		return
	}
	v.Logger.Warnf("vfs: overwrite diff for %s:\n%s", vpath, diff)
}

// GetFileForURI resolves uri to its current FileId, if any.
func (v *Vfs) GetFileForURI(uri string) (fileset.FileId, bool) {
	vpath, ok := v.uriToPath(uri)
	if !ok {
		return 0, false
	}
	return v.fileSet.FileFor(vpath)
}

// GetURIForFile assembles the file: URI for a live FileId, if any.
func (v *Vfs) GetURIForFile(file fileset.FileId) (string, bool) {
	vpath, ok := v.fileSet.PathFor(file)
	if !ok {
		return "", false
	}

	rel := strings.TrimPrefix(vpath.String(), "/")
	if rel == "" {
		// A FileSet entry is always a file, never the workspace root
		// itself; an empty relative path here means a FileSet invariant
		// was violated elsewhere in the core.
		panic("vfs: stored path is empty; the workspace root is a directory, not a file")
	}

	u := url.URL{Scheme: "file", Path: path.Join(v.localRoot, rel)}
	return u.String(), true
}

// GetLineMap returns the current LineMap for file, or (nil, false) if
// file is tombstoned or was never set.
func (v *Vfs) GetLineMap(file fileset.FileId) (*linemap.LineMap, bool) {
	if int(file) >= v.files.Len() {
		return nil, false
	}
	s := v.files.At(file)
	if !s.live {
		return nil, false
	}
	return s.lineMap, true
}

// TakeChange drains the change journal accumulated since the previous
// call, attaching a fresh SourceRoot snapshot if workspace membership
// changed in the meantime.
func (v *Vfs) TakeChange() change.Change {
	v.assertOwner()
	return v.journal.Take(&v.fileSet)
}

// uriToPath resolves a client-supplied URI to a workspace-relative
// vfspath.Path. Only the "file" scheme is handled here — other schemes
// are a transport-layer concern (spec.md §4.3: "Non-file schemes are not
// handled here"). A file: URI whose path does not fall under localRoot
// is OutsideWorkspace: ignored, logged, never surfaced to the client.
func (v *Vfs) uriToPath(raw string) (vfspath.Path, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "file" {
		return vfspath.Path{}, false
	}

	rel, ok := strings.CutPrefix(u.Path, v.localRoot+"/")
	if !ok {
		v.Logger.Warnf("%s: root %q, uri %s", vfserr.ErrOutsideWorkspace, v.localRoot, raw)
		return vfspath.Path{}, false
	}
	return vfspath.NewLocal(rel), true
}

// ignored reports whether p matches one of Config.IgnoreGlobs.
func (v *Vfs) ignored(p vfspath.Path) bool {
	if len(v.Config.IgnoreGlobs) == 0 {
		return false
	}
	rel := strings.TrimPrefix(p.String(), "/")
	for _, glob := range v.Config.IgnoreGlobs {
		if ok, _ := doublestar.Match(glob, rel); ok {
			return true
		}
	}
	return false
}
