package etcd

import (
	"context"
	"fmt"
	"log"
	"path"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const (
	configDir = "config"
	statusDir = "active"

	opTimeout = 3 * time.Second
)

// Store keeps settings snapshots under <prefix>/config/<id>/<mount> and the
// mirror liveness under <prefix>/active/<id>/<mount>.
type Store struct {
	cli    *clientv3.Client
	prefix string
	id     string
}

func Connect(endpoints []string, dialTimeout time.Duration, prefix, id string) (*Store, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("etcd: no endpoints configured")
	}
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("etcd: connect: %w", err)
	}
	log.Println("connect etcd succ")
	return &Store{cli: cli, prefix: prefix, id: id}, nil
}

// ConfigKey is the key holding the snapshot of mount.
func (s *Store) ConfigKey(mount string) string {
	return path.Join("/", s.prefix, configDir, s.id, mount)
}

func (s *Store) statusKey(mount string) string {
	return path.Join("/", s.prefix, statusDir, s.id, mount)
}

// Get returns the value of key. ok is false when the key does not exist.
func (s *Store) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	resp, err := s.cli.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("etcd: get %s: %w", key, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, false, nil
	}
	return resp.Kvs[0].Value, true, nil
}

func (s *Store) Put(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if _, err := s.cli.Put(ctx, key, value); err != nil {
		return fmt.Errorf("etcd: put %s: %w", key, err)
	}
	return nil
}

// Watch streams every value written to key until ctx is done. Deletions
// are skipped.
func (s *Store) Watch(ctx context.Context, key string) <-chan []byte {
	out := make(chan []byte)
	wch := s.cli.Watch(ctx, key)
	go func() {
		defer close(out)
		for resp := range wch {
			if err := resp.Err(); err != nil {
				log.Printf("etcd: watch %s: %s", key, err)
				continue
			}
			for _, ev := range resp.Events {
				if ev.Type != clientv3.EventTypePut {
					continue
				}
				select {
				case out <- ev.Kv.Value:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// SetActive records whether the mirror of mount is running.
func (s *Store) SetActive(ctx context.Context, mount string, active bool) error {
	v := "0"
	if active {
		v = "1"
	}
	return s.Put(ctx, s.statusKey(mount), v)
}

func (s *Store) Close() error {
	err := s.cli.Close()
	if err == nil {
		log.Println("close etcd succ")
	}
	return err
}
