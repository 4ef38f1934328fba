package notes

import "sync/atomic"

// Factory creates notes. It owns the id counter, so every Notebook built on the
// same Factory draws from one monotonically increasing sequence that is never
// reset or reused.
type Factory struct {
	last  atomic.Int64
	clock Clock
}

// NewFactory creates a factory whose first note gets id 1.
func NewFactory() *Factory {
	return &Factory{clock: realClock{}}
}

// SetClock replaces the clock used for creation dates. Intended for testing.
func (f *Factory) SetClock(c Clock) {
	f.clock = c
}

// NewNote creates a note with the next id and today's date. tags may be empty.
func (f *Factory) NewNote(memo, tags string) *Note {
	return &Note{
		ID:           f.last.Add(1),
		Memo:         memo,
		Tags:         tags,
		CreationDate: dateOf(f.clock.Now()),
	}
}

// LastID returns the most recently assigned id, or 0 if none.
func (f *Factory) LastID() int64 {
	return f.last.Load()
}
