package notes

import (
	"sync"

	"github.com/kuitang/notekeeper/internal/logutil"
	"github.com/kuitang/notekeeper/internal/obs"
)

// memoPreviewChars bounds how much of a memo goes into log lines.
const memoPreviewChars = 40

// Notebook is an ordered collection of notes.
type Notebook struct {
	mu      sync.RWMutex
	factory *Factory
	notes   []*Note
}

// NewNotebook creates an empty notebook drawing ids from factory.
func NewNotebook(factory *Factory) *Notebook {
	return &Notebook{factory: factory}
}

// NewNote creates a note and appends it to the notebook.
func (nb *Notebook) NewNote(memo, tags string) *Note {
	note := nb.factory.NewNote(memo, tags)

	nb.mu.Lock()
	nb.notes = append(nb.notes, note)
	nb.mu.Unlock()

	obs.Pkg("notes").Debug("note created",
		"id", note.ID,
		"memo", logutil.TruncateForLog(memo, memoPreviewChars),
		"tags", tags)
	return note
}

// find returns the note with the given id. A miss is logged, not returned as an
// error; callers must handle the nil result. Caller holds nb.mu.
func (nb *Notebook) find(id int64) (*Note, bool) {
	for _, note := range nb.notes {
		if note.ID == id {
			return note, true
		}
	}
	obs.Pkg("notes").Warn("note not found", "id", id)
	return nil, false
}

// ModifyMemo replaces the memo of the note with id. Returns false if no such note.
func (nb *Notebook) ModifyMemo(id int64, memo string) bool {
	nb.mu.Lock()
	defer nb.mu.Unlock()

	note, ok := nb.find(id)
	if !ok {
		return false
	}
	note.Memo = memo
	return true
}

// ModifyTags replaces the tags of the note with id. Returns false if no such note.
func (nb *Notebook) ModifyTags(id int64, tags string) bool {
	nb.mu.Lock()
	defer nb.mu.Unlock()

	note, ok := nb.find(id)
	if !ok {
		return false
	}
	note.Tags = tags
	return true
}

// Search returns the notes matching filter, in insertion order.
func (nb *Notebook) Search(filter string) []*Note {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	var matches []*Note
	for _, note := range nb.notes {
		if note.Match(filter) {
			matches = append(matches, note)
		}
	}
	return matches
}

// Notes returns all notes in insertion order. The slice is a copy; the notes
// are shared.
func (nb *Notebook) Notes() []*Note {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	out := make([]*Note, len(nb.notes))
	copy(out, nb.notes)
	return out
}

// Len returns the number of notes.
func (nb *Notebook) Len() int {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	return len(nb.notes)
}
