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

// Package vfspath defines the logical path type used to key files tracked
// by a [github.com/langtools/corevfs/fileset.FileSet].
package vfspath

import "strings"

// Kind distinguishes the two forms a Path can take.
type Kind uint8

const (
	// Local is an absolute, slash-normalized path rooted at the workspace.
	Local Kind = iota
	// Virtual is an opaque URI string for a non-file scheme.
	Virtual
)

// Path is a tagged sum of a workspace-relative logical path or an opaque
// URI string for schemes the core does not resolve to a filesystem
// location. Equality is byte-exact on the stored form; Path never
// normalizes case or trailing slashes beyond what [NewLocal] performs once
// at construction.
//
// The zero Path is the Local variant with an empty string, which never
// occurs in a live [github.com/langtools/corevfs/fileset.FileSet] — the
// workspace root itself is a directory, not a file.
type Path struct {
	kind  Kind
	value string
}

// NewLocal builds a Local path from a relative, slash-separated string.
// A leading slash on rel, if present, is dropped; NewLocal then prefixes
// exactly one so the stored form always begins with "/", matching
// spec.md's representation of VfsPath::Path.
func NewLocal(rel string) Path {
	rel = strings.TrimPrefix(rel, "/")
	return Path{kind: Local, value: "/" + rel}
}

// NewVirtual wraps an opaque URI string that the core does not interpret
// as a filesystem path.
func NewVirtual(uri string) Path {
	return Path{kind: Virtual, value: uri}
}

// Kind reports which variant p is.
func (p Path) Kind() Kind { return p.kind }

// IsLocal reports whether p is the Local variant.
func (p Path) IsLocal() bool { return p.kind == Local }

// String returns the stored form: "/relative/path" for Local, the raw URI
// for Virtual.
func (p Path) String() string { return p.value }

// IsZero reports whether p is the zero Path (Local, empty string). A live
// FileSet entry is never zero; [fileset.FileSet.PathFor] returning a zero
// Path indicates the FileId has no entry.
func (p Path) IsZero() bool { return p.kind == Local && p.value == "" }

// Less gives Path a total order so it can key an ordered container.
// Local sorts before Virtual; within a kind, ordering is byte-wise on the
// stored string. fileset.FileSet does not call Less: its
// github.com/tidwall/btree mirror is keyed on [Path.String] instead.
func (p Path) Less(other Path) bool {
	if p.kind != other.kind {
		return p.kind < other.kind
	}
	return p.value < other.value
}
