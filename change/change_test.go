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

package change_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langtools/corevfs/change"
	"github.com/langtools/corevfs/fileset"
	"github.com/langtools/corevfs/vfspath"
)

func TestOverlayCollapsesToLatest(t *testing.T) {
	t.Parallel()

	var j change.Journal
	first, second := "x", "yy"
	j.ChangeFile(fileset.FileId(0), &first)
	j.ChangeFile(fileset.FileId(0), &second)

	var fs fileset.FileSet
	c := j.Take(&fs)

	require.Len(t, c.Files, 1)
	require.NotNil(t, c.Files[fileset.FileId(0)])
	assert.Equal(t, "yy", *c.Files[fileset.FileId(0)])
}

func TestSecondDrainIsEmpty(t *testing.T) {
	t.Parallel()

	var j change.Journal
	text := "x"
	j.ChangeFile(fileset.FileId(0), &text)

	var fs fileset.FileSet
	_ = j.Take(&fs)
	c := j.Take(&fs)

	assert.Empty(t, c.Files)
	assert.Nil(t, c.Roots)
}

func TestRootsOnlyPublishedOnChange(t *testing.T) {
	t.Parallel()

	var j change.Journal
	var fs fileset.FileSet

	c := j.Take(&fs)
	assert.Nil(t, c.Roots)

	j.MarkRootsChanged()
	fs.Insert(fileset.FileId(0), vfspath.NewLocal("a.txt"))
	c = j.Take(&fs)
	require.Len(t, c.Roots, 1)
	assert.Equal(t, 1, c.Roots[0].Files().Len())
}

func TestRootsReflectDrainTimeState(t *testing.T) {
	t.Parallel()

	var j change.Journal
	var fs fileset.FileSet

	j.MarkRootsChanged()
	fs.Insert(fileset.FileId(0), vfspath.NewLocal("a.txt"))
	// A second file arrives before the drain; the flag was already set,
	// but the snapshot should still include it.
	fs.Insert(fileset.FileId(1), vfspath.NewLocal("b.txt"))

	c := j.Take(&fs)
	require.Len(t, c.Roots, 1)
	assert.Equal(t, 2, c.Roots[0].Files().Len())
}
