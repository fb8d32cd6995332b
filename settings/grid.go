package settings

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

var (
	ErrNoColumns       = errors.New("settings: column list is empty")
	ErrEmptyColumn     = errors.New("settings: column name is empty")
	ErrDuplicateColumn = errors.New("settings: duplicate column name")
)

// Column describes one editable column of a grid view. OnChange is fired by
// the view with the edited row's reference once a cell edit is committed.
type Column struct {
	Name     string
	Display  string
	OnChange func(ref RowRef)
}

// HideButtons switches off row management affordances of a view.
type HideButtons struct {
	MoveUp   bool
	MoveDown bool
	Insert   bool
}

// ViewOptions configures a grid view at initialization.
type ViewOptions struct {
	InitRows int
	Hide     HideButtons
	Compact  bool

	// AfterRowRemoved is fired once after the user removed a row.
	AfterRowRemoved func()
}

// GridView is an editable table.
type GridView interface {
	Initialize(mount string, columns []Column, opts ViewOptions) error
	// Load replaces the whole displayed content.
	Load(rows Snapshot)
	// AllRows returns every row with every configured column.
	AllRows() Snapshot
	// RowValue returns the row at position index.
	RowValue(index int) Row
	// RowIndex resolves a row reference to its current position, -1 if gone.
	RowIndex(ref RowRef) int
}

// LiveChannel is a persistent text message connection to the settings server.
// Reconnection, if any, is its own business.
type LiveChannel interface {
	Connect(endpoint string) error
	Send(text string) error
	// OnMessage registers the handler for inbound text messages. An error
	// returned by the handler is the channel's to report.
	OnMessage(handler func(text string) error)
}

// SettingsGrid binds a grid view to a live channel: pushed snapshots replace
// the view content and user edits are sent back as whole-table puts.
type SettingsGrid struct {
	mount    string
	endpoint string
	columns  []string
	view     GridView
	channel  LiveChannel
}

// New builds the grid view on mount and connects channel to endpoint. A nil
// columns list means DefaultColumns. Nothing is sent until the server pushes
// data or the user edits a cell.
func New(mount, endpoint string, view GridView, channel LiveChannel, columns []string) (*SettingsGrid, error) {
	if columns == nil {
		columns = DefaultColumns
	}
	if err := validateColumns(columns); err != nil {
		return nil, err
	}

	g := &SettingsGrid{
		mount:    mount,
		endpoint: endpoint,
		columns:  append([]string(nil), columns...),
		view:     view,
		channel:  channel,
	}

	descriptors := make([]Column, 0, len(g.columns))
	for _, name := range g.columns {
		descriptors = append(descriptors, Column{
			Name:     name,
			Display:  Label(name),
			OnChange: g.cellChanged,
		})
	}
	err := view.Initialize(mount, descriptors, ViewOptions{
		InitRows:        0,
		Hide:            HideButtons{MoveUp: true, MoveDown: true, Insert: true},
		Compact:         true,
		AfterRowRemoved: g.rowRemoved,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize view %q: %w", mount, err)
	}

	// The hook is in place before the connection exists so the first push
	// cannot be missed.
	channel.OnMessage(g.receive)
	if err := channel.Connect(endpoint); err != nil {
		return nil, fmt.Errorf("connect %s: %w", endpoint, err)
	}
	return g, nil
}

func validateColumns(columns []string) error {
	if len(columns) == 0 {
		return ErrNoColumns
	}
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if strings.TrimSpace(c) == "" {
			return ErrEmptyColumn
		}
		if seen[c] {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		seen[c] = true
	}
	return nil
}

func (g *SettingsGrid) Mount() string    { return g.mount }
func (g *SettingsGrid) Endpoint() string { return g.endpoint }

// Columns returns the configured field names in display order.
func (g *SettingsGrid) Columns() []string {
	return append([]string(nil), g.columns...)
}

func (g *SettingsGrid) receive(text string) error {
	rows, err := DecodeSnapshot(text)
	if err != nil {
		return err
	}
	g.view.Load(rows)
	return nil
}

// cellChanged holds back rows that still have an empty cell: the user is most
// likely still filling in a fresh row.
func (g *SettingsGrid) cellChanged(ref RowRef) {
	index := g.view.RowIndex(ref)
	if index < 0 {
		return
	}
	if !g.view.RowValue(index).Complete(g.columns) {
		return
	}
	g.put()
}

func (g *SettingsGrid) rowRemoved() {
	g.put()
}

func (g *SettingsGrid) put() {
	text, err := EncodePut(g.view.AllRows(), g.columns...)
	if err != nil {
		log.Printf("settings[%s]: %v", g.mount, err)
		return
	}
	if err := g.channel.Send(text); err != nil {
		log.Printf("settings[%s]: send put: %v", g.mount, err)
	}
}
