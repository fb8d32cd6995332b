// Package mirror keeps an etcd key equal to the content of a settings table.
// Snapshots pushed by the server are stored in the key; values written to
// the key by someone else are put back to the server.
package mirror

import (
	"context"
	"encoding/json"
	"log"

	"github.com/y7ut/settingsgrid/component/headless"
	"github.com/y7ut/settingsgrid/settings"
)

// KV is the part of etcd.Store the mirror needs.
type KV interface {
	Put(ctx context.Context, key, value string) error
	Watch(ctx context.Context, key string) <-chan []byte
}

// Mirror must be created before the grid bound to view is connected, and
// every callback runs on the dispatcher shared with that grid.
type Mirror struct {
	kv   KV
	key  string
	ch   settings.LiveChannel
	post settings.Dispatcher

	// last is the canonical form of the content both sides agree on.
	last string
}

func New(kv KV, key string, view *headless.View, ch settings.LiveChannel, post settings.Dispatcher) *Mirror {
	m := &Mirror{kv: kv, key: key, ch: ch, post: post}
	view.Observe(m.stored)
	return m
}

func (m *Mirror) Key() string { return m.key }

// Run follows the etcd key until ctx is done.
func (m *Mirror) Run(ctx context.Context) {
	for value := range m.kv.Watch(ctx, m.key) {
		value := value
		m.post(func() { m.external(value) })
	}
}

func (m *Mirror) stored(rows settings.Snapshot) {
	enc, err := canonical(rows)
	if err != nil {
		log.Printf("mirror %s: %s", m.key, err)
		return
	}
	if enc == m.last {
		return
	}
	m.last = enc
	if err := m.kv.Put(context.Background(), m.key, enc); err != nil {
		log.Printf("mirror %s: %s", m.key, err)
		return
	}
	log.Printf("mirror %s: stored %d rows", m.key, len(rows))
}

func (m *Mirror) external(value []byte) {
	rows, err := settings.DecodeSnapshot(string(value))
	if err != nil {
		log.Printf("mirror %s: ignored etcd value: %s", m.key, err)
		return
	}
	enc, err := canonical(rows)
	if err != nil {
		log.Printf("mirror %s: %s", m.key, err)
		return
	}
	if enc == m.last {
		return
	}
	text, err := settings.EncodePut(rows)
	if err != nil {
		log.Printf("mirror %s: %s", m.key, err)
		return
	}
	if err := m.ch.Send(text); err != nil {
		log.Printf("mirror %s: send: %s", m.key, err)
		return
	}
	m.last = enc
	log.Printf("mirror %s: put %d rows from etcd", m.key, len(rows))
}

func canonical(rows settings.Snapshot) (string, error) {
	if rows == nil {
		rows = settings.Snapshot{}
	}
	b, err := json.Marshal(rows)
	return string(b), err
}
