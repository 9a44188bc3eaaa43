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

// Package arena provides an append-only store of stable slots, indexed by
// a monotonically increasing uint32.
//
// This is the data structure backing vfs.Vfs's per-FileId slot vector:
// once a slot has been handed out, its address never changes, even
// as the arena grows, because growth allocates new backing slices instead
// of reallocating existing ones. A compacting slice (ordinary append with
// occasional reallocation) would invalidate pointers held by the analyzer
// database across a resize; this arena never does that.
package arena

import (
	"fmt"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// minLenShift is the log2 of the size of the smallest backing slice.
const (
	minLenShift = 4
	minLen      = 1 << minLenShift
)

// Index is the constraint on arena indices; FileId is always a uint32, but
// the arena itself is agnostic to which unsigned integral type keys it.
type Index interface {
	constraints.Unsigned
}

// Arena is an append-only store of T, addressed by 0-based index.
//
// Internally it is a table of logarithmically-growing slices, which
// mimics the resizing behavior of an ordinary slice while guaranteeing
// that a *T returned by [Arena.At] remains valid for the lifetime of the
// arena: growth never moves previously-allocated elements.
//
// A zero Arena[T, I] is empty and ready to use.
type Arena[T any, I Index] struct {
	table [][]T
}

// Alloc appends value to the arena and returns the stable index it was
// stored at. Indices are handed out in order starting at 0, matching
// spec.md's FileId allocation scheme ("next id is files.len()").
func (a *Arena[T, I]) Alloc(value T) I {
	if a.table == nil {
		a.table = [][]T{make([]T, 0, minLen)}
	}

	last := &a.table[len(a.table)-1]
	if len(*last) == cap(*last) {
		a.table = append(a.table, make([]T, 0, 2*cap(*last)))
		last = &a.table[len(a.table)-1]
	}

	idx := a.len()
	if int(I(idx)) != idx {
		panic(fmt.Sprintf("arena: index overflow: %#x", idx))
	}
	*last = append(*last, value)
	return I(idx)
}

// At dereferences idx, returning a pointer stable across future [Arena.Alloc]
// calls. Panics if idx is out of range.
func (a *Arena[T, I]) At(idx I) *T {
	slice, offset := a.coordinates(int(idx))
	return &a.table[slice][offset]
}

// Len returns the number of elements allocated so far.
func (a *Arena[T, I]) Len() int { return a.len() }

func (a *Arena[T, I]) len() int {
	if len(a.table) == 0 {
		return 0
	}
	return a.lenOfFirstNSlices(len(a.table)-1) + len(a.table[len(a.table)-1])
}

func (*Arena[T, I]) lenOfNthSlice(n int) int {
	return minLen << n
}

func (a *Arena[T, I]) lenOfFirstNSlices(n int) int {
	// 2^m + 2^(m+1) + ... + 2^n = 2^(n+1) - 2^m, so the sum of the first n
	// slice capacities is lenOfNthSlice(n) - lenOfNthSlice(0).
	return max(0, a.lenOfNthSlice(n)-a.lenOfNthSlice(0))
}

func (a *Arena[T, I]) coordinates(idx int) (slice, offset int) {
	if idx >= a.len() || idx < 0 {
		panic(fmt.Sprintf("arena: index out of range: %#x", idx))
	}

	slice = bits.UintSize - bits.LeadingZeros(uint(idx)+minLen)
	slice -= minLenShift + 1

	offset = idx - a.lenOfFirstNSlices(slice)
	return slice, offset
}
