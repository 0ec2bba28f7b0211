package syntax

import "sort"

// LineMap converts byte offsets into 1-based line and column numbers.
// Columns count bytes, matching tree-sitter points.
type LineMap struct {
	starts []int
	size   int
}

// NewLineMap indexes the line starts of source.
func NewLineMap(source []byte) *LineMap {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineMap{starts: starts, size: len(source)}
}

// Position returns the line and column of offset. An offset equal to the
// buffer size (end of file) is accepted; anything outside is not.
func (m *LineMap) Position(offset int) (line, col int, ok bool) {
	if offset < 0 || offset > m.size {
		return 0, 0, false
	}
	i := sort.Search(len(m.starts), func(i int) bool { return m.starts[i] > offset }) - 1
	return i + 1, offset - m.starts[i] + 1, true
}

// Lines returns the number of lines in the buffer.
func (m *LineMap) Lines() int {
	return len(m.starts)
}
