// Package table implements fixed-slot row storage on top of the pager.
//
// EDUCATIONAL NOTES:
// ------------------
// Every row encodes to the same number of bytes, so a table needs no slot
// directory. A row's home is pure arithmetic on its slot key:
//
//	rowsPerPage = PageSize / RecordSize      (remainder bytes unused)
//	page        = slot / rowsPerPage
//	offset      = (slot % rowsPerPage) * RecordSize
//
// The table can hold rowsPerPage * MaxPages rows and never grows beyond that.

package table

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cabewaldrop/rowdb/internal/logging"
	"github.com/cabewaldrop/rowdb/internal/record"
	"github.com/cabewaldrop/rowdb/internal/storage"
)

var (
	// ErrTableFull is returned by Insert once the table reached capacity.
	ErrTableFull = errors.New("table full")

	// ErrSlotOutOfRange is returned when a record id addresses a slot past
	// the table's capacity (SlotByID only).
	ErrSlotOutOfRange = errors.New("slot out of range")
)

// SlotPolicy decides which slot an inserted record occupies.
type SlotPolicy int

const (
	// SlotSequential stores the n-th inserted record in slot n. The record's
	// own id is kept as data only.
	SlotSequential SlotPolicy = iota

	// SlotByID stores a record in the slot named by its id while scans still
	// walk slots 0..count-1. Ids that are not inserted in order 0, 1, 2...
	// are therefore not returned by Scan.
	SlotByID
)

// String returns the configuration name of the policy.
func (p SlotPolicy) String() string {
	switch p {
	case SlotSequential:
		return "sequential"
	case SlotByID:
		return "id"
	default:
		return fmt.Sprintf("SlotPolicy(%d)", int(p))
	}
}

// ParseSlotPolicy parses a configuration name.
func ParseSlotPolicy(s string) (SlotPolicy, error) {
	switch s {
	case "sequential", "":
		return SlotSequential, nil
	case "id":
		return SlotByID, nil
	default:
		return 0, fmt.Errorf("unknown slot policy %q (want sequential or id)", s)
	}
}

// Option configures a Table.
type Option func(*Table)

// WithSlotPolicy sets the slot policy. The default is SlotSequential.
func WithSlotPolicy(p SlotPolicy) Option {
	return func(t *Table) {
		t.policy = p
	}
}

// Stats holds table statistics.
type Stats struct {
	RowCount    int    `json:"row_count"`
	Capacity    int    `json:"capacity"`
	RecordSize  int    `json:"record_size"`
	RowsPerPage int    `json:"rows_per_page"`
	CachedPages int    `json:"cached_pages"`
	SlotPolicy  string `json:"slot_policy"`
}

// Table is a fixed-slot row store. It owns its pager.
type Table struct {
	pager *storage.Pager

	recordSize  int
	rowsPerPage int
	numRows     int
	policy      SlotPolicy

	log *slog.Logger
	mu  sync.Mutex
}

// Open creates a table over pager and recovers the row count from the
// size of the backing store.
//
// EDUCATIONAL NOTE:
// -----------------
// There is no header holding the row count. Flushing writes only the used
// prefix of each page, so a store written with sequential slots is exactly
//
//	(full pages * PageSize) + (rows on last page * RecordSize)
//
// bytes long and the count falls out of that length. Under SlotByID the
// result is an estimate: gaps in the ids are counted as rows.
func Open(pager *storage.Pager, opts ...Option) *Table {
	recordSize := len(record.Encode(record.Record{}))

	t := &Table{
		pager:       pager,
		recordSize:  recordSize,
		rowsPerPage: storage.PageSize / recordSize,
		log:         logging.WithComponent("table"),
	}
	for _, opt := range opts {
		opt(t)
	}

	length := pager.FileLength()
	rows := int(length/storage.PageSize)*t.rowsPerPage + int(length%storage.PageSize)/recordSize
	t.numRows = min(rows, t.Capacity())

	t.log.Info("table opened", "rows", t.numRows, "policy", t.policy.String())
	return t
}

// OpenFile opens the pager at path and the table over it.
func OpenFile(path string, opts ...Option) (*Table, error) {
	pager, err := storage.NewPager(path)
	if err != nil {
		return nil, err
	}
	logging.WithComponent("table").Debug("database file opened", "path", path)
	return Open(pager, opts...), nil
}

// Insert stores a record.
//
// A failed insert leaves the row count unchanged.
func (t *Table) Insert(r record.Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.numRows >= t.Capacity() {
		return fmt.Errorf("%w: %d rows", ErrTableFull, t.numRows)
	}

	data := record.Encode(r)

	slot := t.numRows
	if t.policy == SlotByID {
		if int64(r.ID) >= int64(t.Capacity()) {
			return fmt.Errorf("%w: id %d (capacity %d)", ErrSlotOutOfRange, r.ID, t.Capacity())
		}
		slot = int(r.ID)
	}

	pageNum, offset := t.locate(slot)
	page, err := t.pager.GetPage(pageNum)
	if err != nil {
		return err
	}

	if err := page.Write(offset, data); err != nil {
		// Unreachable while RecordSize <= PageSize and offsets are slot aligned.
		return fmt.Errorf("internal consistency failure writing slot %d: %w", slot, err)
	}

	t.numRows++
	t.log.Debug("row inserted", "id", r.ID, "slot", slot, "page_id", pageNum)
	return nil
}

// Scan returns all rows in slot order, 0 through Count()-1.
// Each call rebuilds the result from the pages.
func (t *Table) Scan() ([]record.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make([]record.Record, 0, t.numRows)
	for i := 0; i < t.numRows; i++ {
		pageNum, offset := t.locate(i)
		page, err := t.pager.GetPage(pageNum)
		if err != nil {
			return nil, err
		}

		row, err := record.Decode(page.Read(offset, t.recordSize))
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Flush writes modified pages to the backing store.
func (t *Table) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.FlushAll()
}

// Close flushes and closes the backing store. The table is unusable after.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pager.Close()
}

// Count returns the number of rows.
func (t *Table) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.numRows
}

// Capacity returns the maximum number of rows.
func (t *Table) Capacity() int {
	return t.rowsPerPage * storage.MaxPages
}

// RecordSize returns the encoded size of one row.
func (t *Table) RecordSize() int {
	return t.recordSize
}

// RowsPerPage returns how many rows fit in one page.
func (t *Table) RowsPerPage() int {
	return t.rowsPerPage
}

// Policy returns the slot policy.
func (t *Table) Policy() SlotPolicy {
	return t.policy
}

// Stats returns table statistics.
func (t *Table) Stats() Stats {
	return Stats{
		RowCount:    t.Count(),
		Capacity:    t.Capacity(),
		RecordSize:  t.recordSize,
		RowsPerPage: t.rowsPerPage,
		CachedPages: t.pager.CachedPages(),
		SlotPolicy:  t.policy.String(),
	}
}

// locate maps a slot to its page number and byte offset.
func (t *Table) locate(slot int) (uint32, int) {
	return uint32(slot / t.rowsPerPage), (slot % t.rowsPerPage) * t.recordSize
}
