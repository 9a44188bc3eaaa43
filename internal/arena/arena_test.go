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

package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/langtools/corevfs/internal/arena"
)

func TestAllocStability(t *testing.T) {
	assert := assert.New(t)

	var a arena.Arena[int, uint32]

	id1 := a.Alloc(5)
	p1 := a.At(id1)
	assert.Equal(5, *p1)

	for i := 0; i < 16; i++ {
		a.Alloc(i + 5)
	}
	assert.Equal(19, *a.At(uint32(15)))
	assert.Equal(20, *a.At(uint32(16)))
	// p1 must still point at the original slot after growth.
	assert.True(p1 == a.At(id1))

	for i := 0; i < 32; i++ {
		a.Alloc(i + 21)
	}
	assert.Equal(52, *a.At(uint32(48)))
	assert.True(p1 == a.At(id1))
	assert.Equal(49, a.Len())
}

func TestAllocOutOfRangePanics(t *testing.T) {
	var a arena.Arena[int, uint32]
	a.Alloc(1)

	assert.Panics(t, func() {
		a.At(uint32(5))
	})
}
