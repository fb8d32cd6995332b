package table

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const (
	minColumnWidth = 6
	maxColumnWidth = 40
)

type GridAccess interface {
	~int | ~uint | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~uintptr | ~float32 | ~float64 | ~string
}

// MapGrid lays out a list of maps, one map per row.
type MapGrid[H, T GridAccess] struct {
	d       []map[H]T
	headers []H
	labels  map[H]string
}

func NewMapGrid[H, T GridAccess](items []map[H]T) *MapGrid[H, T] {
	return &MapGrid[H, T]{
		d:       items,
		headers: make([]H, 0),
		labels:  make(map[H]string),
	}
}

// SetHeaders fixes the columns and their order. Without it the headers are
// collected from the data and sorted.
func (i *MapGrid[H, T]) SetHeaders(headers ...H) *MapGrid[H, T] {
	i.headers = headers
	return i
}

// DefineLabels overrides the title shown for some headers.
func (i *MapGrid[H, T]) DefineLabels(labels map[H]string) *MapGrid[H, T] {
	for k, v := range labels {
		i.labels[k] = v
	}
	return i
}

func (i *MapGrid[H, T]) Headers() []H {
	if len(i.headers) > 0 {
		return i.headers
	}
	set := make(map[H]bool)
	for _, m := range i.d {
		for k := range m {
			set[k] = true
		}
	}
	s := MapKeys(set)
	sort.Slice(s, func(a, b int) bool { return s[a] < s[b] })
	return s
}

// Index returns the position of header.
func (i *MapGrid[H, T]) Index(header H) (int, error) {
	for k, v := range i.Headers() {
		if v == header {
			return k, nil
		}
	}
	return 0, fmt.Errorf("header %v not found", header)
}

// Rows returns every row ordered like Headers. Missing cells are zero.
func (i *MapGrid[H, T]) Rows() [][]T {
	headers := i.Headers()
	s := make([][]T, 0, len(i.d))
	for _, m := range i.d {
		line := make([]T, len(headers))
		for k, h := range headers {
			line[k] = m[h]
		}
		s = append(s, line)
	}
	return s
}

func (i *MapGrid[H, T]) title(h H) string {
	if l, ok := i.labels[h]; ok {
		return l
	}
	return fmt.Sprint(h)
}

// Render sizes every column to fit its title and cells.
func (i *MapGrid[H, T]) Render() (columns []table.Column, rows []table.Row) {
	headers := i.Headers()
	widths := make([]int, len(headers))
	for k, h := range headers {
		widths[k] = lipgloss.Width(i.title(h))
	}

	for _, v := range i.Rows() {
		line := make(table.Row, 0, len(v))
		for k := range v {
			cell := fmt.Sprint(v[k])
			if w := lipgloss.Width(cell); w > widths[k] {
				widths[k] = w
			}
			line = append(line, cell)
		}
		rows = append(rows, line)
	}

	columns = make([]table.Column, 0, len(headers))
	for k, h := range headers {
		columns = append(columns, table.Column{Title: i.title(h), Width: clampWidth(widths[k])})
	}
	return columns, rows
}

func clampWidth(w int) int {
	if w < minColumnWidth {
		return minColumnWidth
	}
	if w > maxColumnWidth {
		return maxColumnWidth
	}
	return w
}
