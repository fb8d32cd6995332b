// Package rowstore holds the rows of a grid view together with the stable
// references handed out to change hooks.
package rowstore

import (
	"errors"
	"fmt"

	"github.com/y7ut/settingsgrid/settings"
)

var ErrNoRow = errors.New("rowstore: no such row")

type entry struct {
	ref    settings.RowRef
	values settings.Row
}

// Store is an ordered list of rows over a fixed set of columns. Cells outside
// the columns are kept but never reported.
type Store struct {
	columns []string
	rows    []entry
	next    settings.RowRef
}

func New(columns []string) *Store {
	return &Store{columns: append([]string(nil), columns...)}
}

func (s *Store) Columns() []string { return s.columns }

func (s *Store) Len() int { return len(s.rows) }

// Load replaces every row. Each loaded row gets a fresh reference.
func (s *Store) Load(rows settings.Snapshot) {
	s.rows = s.rows[:0]
	for _, r := range rows.Clone() {
		if r == nil {
			r = settings.Row{}
		}
		s.rows = append(s.rows, entry{ref: s.ref(), values: r})
	}
}

func (s *Store) All() settings.Snapshot {
	out := make(settings.Snapshot, 0, len(s.rows))
	for _, e := range s.rows {
		out = append(out, e.values.Project(s.columns))
	}
	return out
}

// Value returns the row at index, nil when out of range.
func (s *Store) Value(index int) settings.Row {
	if index < 0 || index >= len(s.rows) {
		return nil
	}
	return s.rows[index].values.Project(s.columns)
}

func (s *Store) Index(ref settings.RowRef) int {
	for i, e := range s.rows {
		if e.ref == ref {
			return i
		}
	}
	return -1
}

func (s *Store) Ref(index int) (settings.RowRef, error) {
	if index < 0 || index >= len(s.rows) {
		return 0, fmt.Errorf("%w: %d", ErrNoRow, index)
	}
	return s.rows[index].ref, nil
}

// Cell returns one value of the row at index.
func (s *Store) Cell(index int, column string) string {
	if index < 0 || index >= len(s.rows) {
		return ""
	}
	return s.rows[index].values[column]
}

// Insert adds an empty row before index; index == Len appends.
func (s *Store) Insert(index int) (settings.RowRef, error) {
	if index < 0 || index > len(s.rows) {
		return 0, fmt.Errorf("%w: %d", ErrNoRow, index)
	}
	e := entry{ref: s.ref(), values: settings.Row{}}
	s.rows = append(s.rows, entry{})
	copy(s.rows[index+1:], s.rows[index:])
	s.rows[index] = e
	return e.ref, nil
}

func (s *Store) Append() settings.RowRef {
	ref, _ := s.Insert(len(s.rows))
	return ref
}

// Swap exchanges the rows at i and j.
func (s *Store) Swap(i, j int) error {
	if i < 0 || i >= len(s.rows) || j < 0 || j >= len(s.rows) {
		return fmt.Errorf("%w: %d<->%d", ErrNoRow, i, j)
	}
	s.rows[i], s.rows[j] = s.rows[j], s.rows[i]
	return nil
}

// Set writes one cell of the row identified by ref and returns its index.
func (s *Store) Set(ref settings.RowRef, column, value string) (int, error) {
	index := s.Index(ref)
	if index < 0 {
		return -1, fmt.Errorf("%w: ref %d", ErrNoRow, ref)
	}
	s.rows[index].values[column] = value
	return index, nil
}

func (s *Store) Remove(index int) error {
	if index < 0 || index >= len(s.rows) {
		return fmt.Errorf("%w: %d", ErrNoRow, index)
	}
	s.rows = append(s.rows[:index], s.rows[index+1:]...)
	return nil
}

func (s *Store) ref() settings.RowRef {
	s.next++
	return s.next
}
