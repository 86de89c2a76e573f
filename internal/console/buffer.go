// Package console holds the bounded row buffers behind the live panels and
// the classifiers that turn raw stream text into display rows.
package console

// DefaultMaxRows is the cap used by the console and detection panels.
const DefaultMaxRows = 500

// Buffer is an ordered sequence of rows that never holds more than its cap.
// Rows are only ever appended at the tail and evicted from the head.
type Buffer struct {
	max  int
	rows []Row
}

// NewBuffer returns an empty buffer holding at most max rows. A cap below one
// is treated as one.
func NewBuffer(max int) *Buffer {
	if max < 1 {
		max = 1
	}
	return &Buffer{max: max}
}

// Append adds row at the tail and evicts from the head until the cap holds.
func (b *Buffer) Append(row Row) {
	b.rows = append(b.rows, row)
	if over := len(b.rows) - b.max; over > 0 {
		// Copy down so the backing array does not grow without bound.
		n := copy(b.rows, b.rows[over:])
		for i := n; i < len(b.rows); i++ {
			b.rows[i] = Row{}
		}
		b.rows = b.rows[:n]
	}
}

// Rows returns a copy of the rows, oldest first.
func (b *Buffer) Rows() []Row {
	out := make([]Row, len(b.rows))
	copy(out, b.rows)
	return out
}

// Len reports how many rows are held.
func (b *Buffer) Len() int {
	return len(b.rows)
}

// Max reports the cap.
func (b *Buffer) Max() int {
	return b.max
}

// Texts returns the plain text of every row, oldest first.
func (b *Buffer) Texts() []string {
	out := make([]string, len(b.rows))
	for i, r := range b.rows {
		out[i] = r.Text
	}
	return out
}
