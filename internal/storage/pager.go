// Package storage - Pager component
//
// EDUCATIONAL NOTES:
// ------------------
// The Pager is responsible for managing the database file and reading/writing pages.
// It acts as a layer between the table and the file system.
//
// Key responsibilities:
// 1. Opening/closing the database file
// 2. Materializing pages on first access (from disk, or zeroed past the end)
// 3. Keeping every materialized page cached for the rest of the session
// 4. Writing the written prefix of each page back on Flush/Close
//
// Nothing is written until the caller asks. Close is the durability point,
// so callers should always `defer pager.Close()` right after opening.

package storage

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/cabewaldrop/rowdb/internal/logging"
)

// Store is the seekable byte store a Pager reads from and writes to.
// *os.File satisfies it.
type Store interface {
	io.ReadWriteSeeker
	io.Closer
}

// syncer is implemented by stores that can force data to stable storage.
type syncer interface {
	Sync() error
}

// Pager manages reading and writing pages to the database file.
type Pager struct {
	store Store

	// fileLength is the store size observed at open time. Pages that start
	// at or beyond it are materialized as zero pages without any read.
	fileLength int64

	// cache holds every materialized page, keyed by page number.
	cache map[uint32]*Page

	closed bool

	// mu protects concurrent access to the pager.
	mu sync.Mutex
}

// NewPager opens the file at path, creating it if needed.
func NewPager(filePath string) (*Pager, error) {
	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, &IOError{Op: "open", Err: err}
	}

	p, err := NewPagerFromStore(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return p, nil
}

// NewPagerFromStore wraps an already opened store. The pager takes
// ownership and closes the store on Close.
func NewPagerFromStore(store Store) (*Pager, error) {
	size, err := store.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, &IOError{Op: "open", Err: fmt.Errorf("failed to measure store: %w", err)}
	}

	return &Pager{
		store:      store,
		fileLength: size,
		cache:      make(map[uint32]*Page),
	}, nil
}

// GetPage retrieves a page from cache or disk.
//
// EDUCATIONAL NOTE:
// -----------------
// A cache hit returns the very same *Page, so writes made through an earlier
// call are visible to later ones. On a miss, pages inside the file are read
// from disk and pages past the end start out as zeroes; either way the page
// joins the cache and stays there until Close.
func (p *Pager) GetPage(pageID uint32) (*Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if pageID >= MaxPages {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrPageOutOfRange, pageID, MaxPages)
	}

	// Check cache first (cache hit)
	if page, ok := p.cache[pageID]; ok {
		return page, nil
	}

	page := NewPage(pageID)
	if int64(pageID)*PageSize < p.fileLength {
		if err := p.readPageFromDisk(page); err != nil {
			return nil, err
		}
		logging.WithPage(pageID).Debug("page loaded")
	} else {
		logging.WithPage(pageID).Debug("page allocated")
	}

	p.cache[pageID] = page
	return page, nil
}

// FlushPage writes the written prefix of a cached page to disk.
// Pages that were never materialized are a no-op.
func (p *Pager) FlushPage(pageID uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	page, ok := p.cache[pageID]
	if !ok {
		return nil // Page not in cache, nothing to flush
	}

	return p.flushPageLocked(page)
}

// FlushAll writes all dirty pages to disk in ascending page order.
func (p *Pager) FlushAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	return p.flushAllLocked()
}

// Close flushes all dirty pages and closes the database file.
func (p *Pager) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	p.closed = true

	flushErr := p.flushAllLocked()
	closeErr := p.store.Close()
	p.cache = nil

	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return &IOError{Op: "close", Err: closeErr}
	}
	return nil
}

// FileLength returns the store size observed when the pager was opened.
func (p *Pager) FileLength() int64 {
	return p.fileLength
}

// CachedPages returns the number of materialized pages.
func (p *Pager) CachedPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cache)
}

// readPageFromDisk fills page with the bytes stored at its slot. A short
// read at the end of the file leaves the remainder zeroed.
func (p *Pager) readPageFromDisk(page *Page) error {
	offset := int64(page.ID()) * PageSize

	if _, err := p.store.Seek(offset, io.SeekStart); err != nil {
		return &IOError{Op: "seek", Page: page.ID(), Err: err}
	}

	_, err := io.ReadFull(p.store, page.data[:])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return &IOError{Op: "read", Page: page.ID(), Err: err}
	}

	return nil
}

func (p *Pager) flushAllLocked() error {
	for _, id := range slices.Sorted(maps.Keys(p.cache)) {
		page := p.cache[id]
		if !page.IsDirty() {
			continue
		}
		if err := p.flushPageLocked(page); err != nil {
			return err
		}
	}

	if s, ok := p.store.(syncer); ok {
		if err := s.Sync(); err != nil {
			return &IOError{Op: "sync", Err: err}
		}
	}
	return nil
}

// flushPageLocked writes a page to disk. Caller must hold the lock.
func (p *Pager) flushPageLocked(page *Page) error {
	offset := int64(page.ID()) * PageSize

	if _, err := p.store.Seek(offset, io.SeekStart); err != nil {
		return &IOError{Op: "seek", Page: page.ID(), Err: err}
	}

	data := page.Bytes()
	n, err := p.store.Write(data)
	if err != nil {
		return &IOError{Op: "write", Page: page.ID(), Err: err}
	}
	if n != len(data) {
		return &IOError{Op: "write", Page: page.ID(), Err: io.ErrShortWrite}
	}

	page.MarkClean()
	logging.WithPage(page.ID()).Debug("page flushed", "bytes", n)
	return nil
}
