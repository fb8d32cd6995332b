package table

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// ObjectGrid lays out a list of structs. Fields are picked up through the
// grid_column tag (the title) and ordered by grid_sort; untagged fields are
// skipped.
//
//	type Item struct {
//		Name string `grid_column:"Name" grid_sort:"1"`
//	}
type ObjectGrid[T any] struct {
	d      []T
	fields []field
	define map[string]string
}

type field struct {
	index int
	name  string
	title string
	sort  int
}

func NewGrid[T any](items []T) *ObjectGrid[T] {
	return &ObjectGrid[T]{d: items}
}

// DefineHeader renames the titles of some fields, keyed by field name.
func (o *ObjectGrid[T]) DefineHeader(define map[string]string) *ObjectGrid[T] {
	o.define = define
	o.fields = nil
	return o
}

func structType[T any]() reflect.Type {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func (o *ObjectGrid[T]) guessFields() {
	t := structType[T]()
	if t.Kind() != reflect.Struct {
		return
	}
	o.fields = o.fields[:0]
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		title, ok := f.Tag.Lookup("grid_column")
		if !ok || !f.IsExported() {
			continue
		}
		if d, ok := o.define[f.Name]; ok {
			title = d
		}
		order := t.NumField() + i
		if s, err := strconv.Atoi(f.Tag.Get("grid_sort")); err == nil {
			order = s
		}
		o.fields = append(o.fields, field{index: i, name: f.Name, title: title, sort: order})
	}
	sort.SliceStable(o.fields, func(a, b int) bool { return o.fields[a].sort < o.fields[b].sort })
}

// Headers returns the column titles in display order.
func (o *ObjectGrid[T]) Headers() []string {
	if len(o.fields) == 0 {
		o.guessFields()
	}
	out := make([]string, 0, len(o.fields))
	for _, f := range o.fields {
		out = append(out, f.title)
	}
	return out
}

func (o *ObjectGrid[T]) Render() (columns []table.Column, rows []table.Row) {
	headers := o.Headers()
	widths := make([]int, len(headers))
	for k, h := range headers {
		widths[k] = lipgloss.Width(h)
	}
	for _, item := range o.d {
		v := reflect.ValueOf(item)
		for v.Kind() == reflect.Ptr {
			if v.IsNil() {
				break
			}
			v = v.Elem()
		}
		line := make(table.Row, 0, len(o.fields))
		for k, f := range o.fields {
			cell := ""
			if v.Kind() == reflect.Struct {
				cell = fmt.Sprint(v.Field(f.index).Interface())
			}
			if w := lipgloss.Width(cell); w > widths[k] {
				widths[k] = w
			}
			line = append(line, cell)
		}
		rows = append(rows, line)
	}
	columns = make([]table.Column, 0, len(headers))
	for k, h := range headers {
		columns = append(columns, table.Column{Title: h, Width: clampWidth(widths[k])})
	}
	return columns, rows
}
