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

package vfs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/langtools/corevfs/vfs"
)

func strp(s string) *string { return &s }

func TestOverwriteEdit(t *testing.T) {
	t.Parallel()

	v := vfs.New("/ws")
	const uri = "file:///ws/a.txt"

	id1, ok := v.SetURIContent(uri, strp("x"))
	require.True(t, ok)

	id2, ok := v.SetURIContent(uri, strp("yy"))
	require.True(t, ok)
	assert.Equal(t, id1, id2, "overwriting an open file must keep its FileId")

	lm, ok := v.GetLineMap(id1)
	require.True(t, ok)
	assert.Equal(t, []uint32{0, 2}, lm.LineStarts(), "line map should reflect the second text")

	change := v.TakeChange()
	require.Len(t, change.Files, 1)
	require.NotNil(t, change.Files[id1])
	assert.Equal(t, "yy", *change.Files[id1])

	second := v.TakeChange()
	assert.Empty(t, second.Files)
	assert.Nil(t, second.Roots)
}

func TestCloseThenReopenAllocatesNewFileId(t *testing.T) {
	t.Parallel()

	v := vfs.New("/ws")
	const uri = "file:///ws/a.txt"

	f1, ok := v.SetURIContent(uri, strp("hello"))
	require.True(t, ok)

	_, ok = v.SetURIContent(uri, nil)
	assert.False(t, ok)

	_, found := v.GetFileForURI(uri)
	assert.False(t, found, "closed file should not resolve")

	f2, ok := v.SetURIContent(uri, strp("hello again"))
	require.True(t, ok)

	assert.NotEqual(t, f1, f2)

	got, found := v.GetFileForURI(uri)
	require.True(t, found)
	assert.Equal(t, f2, got)
}

func TestOutOfWorkspaceURIIsIgnored(t *testing.T) {
	t.Parallel()

	v := vfs.New("/ws")
	_, ok := v.SetURIContent("file:///other/a.txt", strp("nope"))
	assert.False(t, ok)

	change := v.TakeChange()
	assert.Empty(t, change.Files)
	assert.Nil(t, change.Roots, "an ignored uri must not mark roots changed")
}

func TestRootsChangeOncePerAddedOrRemovedFile(t *testing.T) {
	t.Parallel()

	v := vfs.New("/ws")

	_, ok := v.SetURIContent("file:///ws/a.txt", strp("x"))
	require.True(t, ok)
	change := v.TakeChange()
	require.Len(t, change.Roots, 1)
	assert.Equal(t, 1, change.Roots[0].Files().Len())

	// A pure content edit (no add/remove) must not re-mark roots.
	_, ok = v.SetURIContent("file:///ws/a.txt", strp("xx"))
	require.True(t, ok)
	change = v.TakeChange()
	assert.Nil(t, change.Roots)
}

func TestURIRoundTrip(t *testing.T) {
	t.Parallel()

	v := vfs.New("/ws")
	const uri = "file:///ws/dir/a.txt"

	id, ok := v.SetURIContent(uri, strp("x"))
	require.True(t, ok)

	got, ok := v.GetURIForFile(id)
	require.True(t, ok)
	assert.Equal(t, uri, got)
}

func TestIgnoreGlobs(t *testing.T) {
	t.Parallel()

	v := vfs.New("/ws")
	v.Config.IgnoreGlobs = []string{"vendor/**"}

	_, ok := v.SetURIContent("file:///ws/vendor/dep/a.go", strp("x"))
	assert.False(t, ok)

	_, ok = v.SetURIContent("file:///ws/src/a.go", strp("x"))
	assert.True(t, ok)
}

func TestTextTooLarge(t *testing.T) {
	t.Parallel()

	v := vfs.New("/ws")
	v.Config.MaxFileLen = 4

	_, ok := v.SetURIContent("file:///ws/a.txt", strp("way too long"))
	assert.False(t, ok)

	_, found := v.GetFileForURI("file:///ws/a.txt")
	assert.False(t, found)
}

func TestSingleWriterViolationPanics(t *testing.T) {
	t.Parallel()

	v := vfs.New("/ws")

	var g errgroup.Group
	g.Go(func() error {
		assert.Panics(t, func() {
			v.SetURIContent("file:///ws/a.txt", strp("x"))
		})
		return nil
	})
	_ = g.Wait()
}
