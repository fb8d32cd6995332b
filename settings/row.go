package settings

import (
	"unicode"
	"unicode/utf8"
)

// Row is one line of the settings table, keyed by column name.
type Row map[string]string

// Snapshot is the whole settings table in display order. It is the only unit
// exchanged with the server: loaded whole on receipt, sent whole on put.
type Snapshot []Row

// RowRef identifies a row for as long as it lives in a view, independent of
// its current position.
type RowRef int

// DefaultColumns is the two column key/value layout.
var DefaultColumns = []string{"key", "value"}

// Complete reports whether every named column holds a non-empty value.
func (r Row) Complete(columns []string) bool {
	for _, c := range columns {
		if r[c] == "" {
			return false
		}
	}
	return true
}

// Project returns a copy of r restricted to columns. Missing cells become "".
func (r Row) Project(columns []string) Row {
	out := make(Row, len(columns))
	for _, c := range columns {
		out[c] = r[c]
	}
	return out
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, 0, len(s))
	for _, r := range s {
		row := make(Row, len(r))
		for k, v := range r {
			row[k] = v
		}
		out = append(out, row)
	}
	return out
}

// Label turns a field name into its display label: the first character is
// upper-cased and the rest is left as is ("value" -> "Value").
func Label(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
