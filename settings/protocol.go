package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// CmdPut asks the server to replace its stored table with the enclosed rows.
const CmdPut = "put"

// PutCommand is the only message ever sent to the server.
//
//	{"cmd":"put","data":[{"key":"timeout","value":"30"}]}
type PutCommand struct {
	Cmd  string   `json:"cmd"`
	Data Snapshot `json:"data"`
}

// EncodePut wraps rows in a put envelope and serializes it as text. Keys of
// each row follow columns; keys outside columns come after them, sorted.
func EncodePut(rows Snapshot, columns ...string) (string, error) {
	data := make([]orderedRow, 0, len(rows))
	for _, r := range rows {
		data = append(data, orderedRow{row: r, columns: columns})
	}
	b, err := json.Marshal(struct {
		Cmd  string       `json:"cmd"`
		Data []orderedRow `json:"data"`
	}{Cmd: CmdPut, Data: data})
	if err != nil {
		return "", fmt.Errorf("encode put: %w", err)
	}
	return string(b), nil
}

// orderedRow marshals a Row with its keys in column order.
type orderedRow struct {
	row     Row
	columns []string
}

func (o orderedRow) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(o.row))
	seen := make(map[string]bool, len(o.columns))
	for _, c := range o.columns {
		if _, ok := o.row[c]; ok && !seen[c] {
			keys = append(keys, c)
			seen[c] = true
		}
	}
	rest := make([]string, 0, len(o.row))
	for k := range o.row {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.row[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeSnapshot parses a server push. The server sends a bare array of row
// objects with no envelope. Cells are not type checked: non-string JSON values
// keep their literal text and null becomes "".
func DecodeSnapshot(text string) (Snapshot, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	rows := make(Snapshot, 0, len(raw))
	for _, obj := range raw {
		row := make(Row, len(obj))
		for k, v := range obj {
			row[k] = cellText(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cellText(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return ""
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	}
	return string(v)
}
