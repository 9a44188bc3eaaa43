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

// Package linemap translates between byte offsets into a normalized UTF-8
// text and the (line, UTF-16 column) coordinates the editor protocol
// speaks, in O(log lines) per query.
//
// Construction is O(n) in the size of the text and happens once per text
// version; there is no incremental update (see the package doc for vfs,
// whose Vfs.SetURIContent rebuilds a LineMap whole on every edit).
package linemap

import (
	"errors"
	"math"
	"sort"
	"strings"
)

// ErrTooLarge is returned by Build when text does not fit in a 32-bit
// byte length, the limit imposed by the uint32 offsets LineMap and its
// callers use throughout.
var ErrTooLarge = errors.New("linemap: text length does not fit in uint32")

// diff records, for the leading byte of a single non-ASCII codepoint at
// Offset (the unadjusted byte offset of that leading byte within its
// line; Pos compares it against a column it adjusts as it goes), how many
// fewer UTF-16 code units it represents than UTF-8 bytes.
type diff struct {
	Offset uint32
	Amount uint32
}

// LineMap is a precomputed index over one version of one file's text,
// supporting byte-offset <-> (line, UTF-16 column) translation.
//
// The zero LineMap is NOT ready to use; construct one with [Build].
type LineMap struct {
	// lineStarts[i] is the byte offset of the first byte of line i.
	// lineStarts always ends with one extra sentinel entry equal to
	// len(text), so that range queries on the last line need no special
	// case. Non-decreasing; first entry is always 0. The sentinel equals
	// the last line's start when the text is empty or ends in '\n'.
	lineStarts []uint32

	// charDiffs[i] is the ordered list of non-ASCII codepoints on line i,
	// present only for lines that have any. Every codepoint is recorded
	// by its *leading* byte; continuation bytes are never listed.
	charDiffs map[uint32][]diff
}

// Build normalizes text (stripping every '\r' byte, per spec.md §4.3 —
// this folds "\r\n" into "\n" and a lone "\r" into nothing) and computes
// a LineMap over the result. It returns the normalized text alongside the
// map, since every caller needs both and they must agree on one
// normalization pass.
//
// Build fails only if the normalized text exceeds a 32-bit byte length;
// the editor's own size cap (vfs.Config.MaxFileLen) should be checked
// before calling Build, since it will always be the tighter bound in
// practice.
func Build(text string) (normalized string, lm *LineMap, err error) {
	if strings.IndexByte(text, '\r') >= 0 {
		text = strings.ReplaceAll(text, "\r", "")
	}
	if uint64(len(text)) > math.MaxUint32 {
		return "", nil, ErrTooLarge
	}

	lm = &LineMap{}
	lm.lineStarts = computeLineStarts(text)
	lm.charDiffs = computeCharDiffs(text, lm.lineStarts)
	return text, lm, nil
}

func computeLineStarts(text string) []uint32 {
	starts := make([]uint32, 1, strings.Count(text, "\n")+2)
	starts[0] = 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	starts = append(starts, uint32(len(text)))
	return starts
}

// computeCharDiffs classifies every leading byte of every line by the
// UTF-8/UTF-16 length mismatch it introduces, following spec.md §4.1's
// byte-range table directly (rather than decoding runes): a byte's high
// bits alone determine whether it starts a 1/2/3/4-byte codepoint, which
// is all the diff calculation needs.
func computeCharDiffs(text string, lineStarts []uint32) map[uint32][]diff {
	charDiffs := make(map[uint32][]diff)
	for i := 0; i < len(lineStarts)-1; i++ {
		start, end := lineStarts[i], lineStarts[i+1]
		var diffs []diff
		for pos := start; pos < end; pos++ {
			b := text[pos]
			var amount uint32
			switch {
			case b < 0x80: // ASCII: utf8_len == utf16_len == 1.
				continue
			case b < 0xC0: // continuation byte.
				continue
			case b < 0xE0: // 2-byte codepoint, 1 UTF-16 unit.
				amount = 1
			case b < 0xF0: // 3-byte codepoint, 1 UTF-16 unit.
				amount = 2
			default: // 4-byte codepoint, 2 UTF-16 units (surrogate pair).
				amount = 2
			}
			diffs = append(diffs, diff{Offset: pos - start, Amount: amount})
		}
		if len(diffs) > 0 {
			charDiffs[uint32(i)] = diffs
		}
	}
	return charDiffs
}

// Pos converts a (line, col) editor position, col measured in UTF-16 code
// units, into a byte offset into the mapped text.
//
// An out-of-range line is treated as starting at offset 0 (the result is
// then col itself) rather than being an error: the editor
// occasionally sends stale positions for a file whose content just
// changed, and the core tolerates this rather than panicking.
func (lm *LineMap) Pos(line, col uint32) uint32 {
	var base uint32
	if int(line) < len(lm.lineStarts) {
		base = lm.lineStarts[line]
	}

	for _, d := range lm.charDiffs[line] {
		if d.Offset < col {
			col += d.Amount
		}
	}
	return base + col
}

// LineCol converts a byte offset into the mapped text into a (line, col)
// editor position, col measured in UTF-16 code units.
func (lm *LineMap) LineCol(offset uint32) (line, col uint32) {
	i := sort.Search(len(lm.lineStarts), func(i int) bool {
		return lm.lineStarts[i] > offset
	}) - 1
	if i < 0 {
		i = 0
	}
	line = uint32(i)
	col = offset - lm.lineStarts[i]

	var adjust uint32
	for _, d := range lm.charDiffs[line] {
		if d.Offset < col {
			adjust += d.Amount
		}
	}
	col -= adjust
	return line, col
}

// LineStarts returns the raw line-start table, including its trailing
// len(text) sentinel. Exposed for tests asserting spec.md §8 property 3
// directly; callers doing position translation should use [LineMap.Pos]
// and [LineMap.LineCol] instead.
func (lm *LineMap) LineStarts() []uint32 {
	return append([]uint32(nil), lm.lineStarts...)
}
