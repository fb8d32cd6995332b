// Package headless provides an in-memory grid view for grids that are driven
// by code rather than by a person: the etcd mirror and tests.
package headless

import (
	"errors"
	"fmt"

	"github.com/y7ut/settingsgrid/component/rowstore"
	"github.com/y7ut/settingsgrid/settings"
)

var (
	ErrInitialized   = errors.New("headless: view already initialized")
	ErrNoColumns     = errors.New("headless: no columns")
	ErrHidden        = errors.New("headless: affordance hidden")
	ErrUnknownColumn = errors.New("headless: unknown column")
)

// View keeps the table in memory. It is not safe for concurrent use: all
// calls belong on the owning grid's event loop.
type View struct {
	mount     string
	columns   []settings.Column
	opts      settings.ViewOptions
	rows      *rowstore.Store
	observers []func(settings.Snapshot)
}

func New() *View {
	return &View{}
}

func (v *View) Initialize(mount string, columns []settings.Column, opts settings.ViewOptions) error {
	if v.rows != nil {
		return ErrInitialized
	}
	if len(columns) == 0 {
		return ErrNoColumns
	}
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, c.Name)
	}
	v.mount = mount
	v.columns = append([]settings.Column(nil), columns...)
	v.opts = opts
	v.rows = rowstore.New(names)
	for i := 0; i < opts.InitRows; i++ {
		v.rows.Append()
	}
	return nil
}

func (v *View) Mount() string { return v.mount }

// Labels returns the column display labels in order.
func (v *View) Labels() []string {
	out := make([]string, 0, len(v.columns))
	for _, c := range v.columns {
		out = append(out, c.Display)
	}
	return out
}

// Options returns the options the view was initialized with.
func (v *View) Options() settings.ViewOptions { return v.opts }

// Observe registers fn to be called with the new content after every Load.
func (v *View) Observe(fn func(settings.Snapshot)) {
	v.observers = append(v.observers, fn)
}

func (v *View) Load(rows settings.Snapshot) {
	v.rows.Load(rows)
	for _, fn := range v.observers {
		fn(v.rows.All())
	}
}

func (v *View) AllRows() settings.Snapshot             { return v.rows.All() }
func (v *View) RowValue(index int) settings.Row        { return v.rows.Value(index) }
func (v *View) RowIndex(ref settings.RowRef) int       { return v.rows.Index(ref) }
func (v *View) Len() int                               { return v.rows.Len() }
func (v *View) Ref(index int) (settings.RowRef, error) { return v.rows.Ref(index) }

// Append adds an empty row at the bottom.
func (v *View) Append() settings.RowRef { return v.rows.Append() }

// Insert adds an empty row before index.
func (v *View) Insert(index int) (settings.RowRef, error) {
	if v.opts.Hide.Insert {
		return 0, ErrHidden
	}
	return v.rows.Insert(index)
}

// MoveUp swaps the row at index with the one above it.
func (v *View) MoveUp(index int) error {
	if v.opts.Hide.MoveUp {
		return ErrHidden
	}
	return v.rows.Swap(index, index-1)
}

// MoveDown swaps the row at index with the one below it.
func (v *View) MoveDown(index int) error {
	if v.opts.Hide.MoveDown {
		return ErrHidden
	}
	return v.rows.Swap(index, index+1)
}

// SetCell commits a cell edit and fires the column's change hook.
func (v *View) SetCell(ref settings.RowRef, column, value string) error {
	for _, c := range v.columns {
		if c.Name != column {
			continue
		}
		if _, err := v.rows.Set(ref, column, value); err != nil {
			return err
		}
		if c.OnChange != nil {
			c.OnChange(ref)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
}

// Remove deletes the row at index and fires the removal hook.
func (v *View) Remove(index int) error {
	if err := v.rows.Remove(index); err != nil {
		return err
	}
	if v.opts.AfterRowRemoved != nil {
		v.opts.AfterRowRemoved()
	}
	return nil
}

var _ settings.GridView = (*View)(nil)
