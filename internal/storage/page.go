// Package storage implements a page-based storage engine for the database.
//
// EDUCATIONAL NOTES:
// ------------------
// Real databases store data in fixed-size blocks called "pages" (typically 4KB or 8KB).
// This approach has several advantages:
// 1. Efficient disk I/O - reading/writing fixed-size blocks is optimal for disk access
// 2. Memory management - pages can be cached and managed in a buffer pool
// 3. Simple addressing - page n always lives at byte n * PageSize
//
// Our pages carry no header at all. A page is just 4096 bytes of row slots
// plus an in-memory high-water mark that remembers how far we have written,
// so that flushing never persists capacity nobody touched.

package storage

import (
	"fmt"
)

const (
	// PageSize is the size of each page in bytes.
	PageSize = 4096

	// MaxPages is the hard ceiling on pages per store (page numbers 0..99).
	MaxPages = 100
)

// Page represents a fixed-size block of storage.
type Page struct {
	// id is the page number within the backing store.
	id uint32

	// data holds the page content.
	data [PageSize]byte

	// highWater is the greatest offset+length written this session.
	highWater int

	// dirty indicates if the page has been modified since last flush.
	dirty bool
}

// NewPage creates a new zeroed page with the given number.
func NewPage(id uint32) *Page {
	return &Page{id: id}
}

// ID returns the page number.
func (p *Page) ID() uint32 {
	return p.id
}

// HighWater returns the number of leading bytes that will be flushed.
func (p *Page) HighWater() int {
	return p.highWater
}

// IsDirty returns true if the page has been modified.
func (p *Page) IsDirty() bool {
	return p.dirty
}

// MarkClean marks the page as not dirty (after flushing to disk).
func (p *Page) MarkClean() {
	p.dirty = false
}

// Write copies data into the page at offset and raises the high-water mark.
// The buffer is left untouched when the write would overrun the page.
func (p *Page) Write(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > PageSize {
		return fmt.Errorf("%w: page %d offset %d length %d", ErrOutOfSpace, p.id, offset, len(data))
	}

	copy(p.data[offset:], data)
	if end := offset + len(data); end > p.highWater {
		p.highWater = end
	}
	p.dirty = true

	return nil
}

// Read returns the bytes at [offset, offset+length). It is a direct view
// into the page; callers keep offsets record-aligned.
func (p *Page) Read(offset, length int) []byte {
	return p.data[offset : offset+length]
}

// Bytes returns the portion of the page that a flush persists.
func (p *Page) Bytes() []byte {
	return p.data[:p.highWater]
}
