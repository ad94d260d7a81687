package controller

import (
	"sync"

	"isochron/display"
)

// ScreenBuffer is the small mutex-guarded structure spec.md §5 describes:
// "guarded by a mutex held only long enough to copy rendered lines; no
// async work under the mutex." Display TX copies out the rows it needs to
// serialise and releases the lock before touching the serial port.
type ScreenBuffer struct {
	mu    sync.Mutex
	rows  [display.ScreenRows]string
	dirty bool
}

// SetRow replaces one row's text and marks the buffer dirty.
func (b *ScreenBuffer) SetRow(row int, text string) {
	if row < 0 || row >= display.ScreenRows {
		return
	}
	if len(text) > display.MaxTextLen {
		text = text[:display.MaxTextLen]
	}
	b.mu.Lock()
	b.rows[row] = text
	b.dirty = true
	b.mu.Unlock()
}

// Clear blanks every row and marks the buffer dirty.
func (b *ScreenBuffer) Clear() {
	b.mu.Lock()
	b.rows = [display.ScreenRows]string{}
	b.dirty = true
	b.mu.Unlock()
}

// TakeDirty copies out the current rows and clears the dirty flag,
// reporting whether anything had changed since the last TakeDirty. This is
// the only work done under the lock; any frame serialisation happens
// afterward, outside it.
func (b *ScreenBuffer) TakeDirty() (rows [display.ScreenRows]string, changed bool) {
	b.mu.Lock()
	rows = b.rows
	changed = b.dirty
	b.dirty = false
	b.mu.Unlock()
	return rows, changed
}
