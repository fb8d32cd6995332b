package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/y7ut/settingsgrid/channel"
	"gopkg.in/ini.v1"
)

const (
	DefaultFile = "./settingsgrid.conf"

	gridPrefix = "grid."
)

var ErrUnknownGrid = errors.New("conf: unknown grid")

type Config struct {
	App     `ini:"app"`
	Channel `ini:"channel"`
	Runtime `ini:"runtime"`
	Log     `ini:"log"`
	Etcd    `ini:"etcd"`
	Kafka   `ini:"kafka"`

	Grids []Grid `ini:"-"`
}

// App identifies this client in etcd keys and audit headers.
type App struct {
	ID string `ini:"id"`
}

// Channel tunes the websocket connections.
type Channel struct {
	Reconnect   bool          `ini:"reconnect"`
	MinInterval time.Duration `ini:"min_interval"`
	MaxInterval time.Duration `ini:"max_interval"`
	PingPeriod  time.Duration `ini:"ping_period"`
}

type Runtime struct {
	Path string `ini:"path"`
}

type Log struct {
	Path string `ini:"path"`
	Name string `ini:"name"`
}

// Etcd locates the mirror store.
type Etcd struct {
	Address     string        `ini:"address"`
	Prefix      string        `ini:"prefix"`
	DialTimeout time.Duration `ini:"dial_timeout"`
}

// Kafka configures the audit trail.
type Kafka struct {
	Address   string        `ini:"address"`
	Topic     string        `ini:"topic"`
	QueueSize int           `ini:"queue_size"`
	Flush     time.Duration `ini:"flush"`
}

// Grid is one settings table, declared by a [grid.<mount>] section.
type Grid struct {
	Mount    string
	Endpoint string
	Columns  []string
}

// Default returns the values used for keys missing from the file.
func Default() *Config {
	ch := channel.DefaultConfig()
	return &Config{
		App: App{ID: "settingsgrid"},
		Channel: Channel{
			Reconnect:   ch.Reconnect,
			MinInterval: ch.MinInterval,
			MaxInterval: ch.MaxInterval,
			PingPeriod:  ch.PingPeriod,
		},
		Runtime: Runtime{Path: "./runtime"},
		Log:     Log{Path: "./runtime/log", Name: "settingsgrid.log"},
		Etcd:    Etcd{Prefix: "/settingsgrid/", DialTimeout: 5 * time.Second},
		Kafka:   Kafka{Topic: "settingsgrid-audit", QueueSize: 100, Flush: 3 * time.Second},
	}
}

// Load reads an ini file.
func Load(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load ini file %s: %w", path, err)
	}
	return Parse(f)
}

// Parse maps an already loaded ini file onto a Config.
func Parse(f *ini.File) (*Config, error) {
	c := Default()
	if err := f.MapTo(c); err != nil {
		return nil, fmt.Errorf("map ini file: %w", err)
	}
	for _, sec := range f.Sections() {
		if !strings.HasPrefix(sec.Name(), gridPrefix) {
			continue
		}
		mount := strings.TrimPrefix(sec.Name(), gridPrefix)
		if mount == "" {
			return nil, fmt.Errorf("section %q: empty grid name", sec.Name())
		}
		g := Grid{
			Mount:    mount,
			Endpoint: sec.Key("endpoint").String(),
			Columns:  SplitColumns(sec.Key("columns").String()),
		}
		if g.Endpoint == "" {
			return nil, fmt.Errorf("grid %s: endpoint is required", mount)
		}
		c.Grids = append(c.Grids, g)
	}
	return c, nil
}

// SplitColumns parses a comma separated column list. An empty list returns
// nil so the grid falls back to its default columns. Blank entries are kept
// and rejected later by the grid.
func SplitColumns(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Grid looks up a grid by mount name.
func (c *Config) Grid(mount string) (Grid, error) {
	for _, g := range c.Grids {
		if g.Mount == mount {
			return g, nil
		}
	}
	return Grid{}, fmt.Errorf("%w: %s", ErrUnknownGrid, mount)
}

// ChannelConfig builds the websocket settings.
func (c *Config) ChannelConfig() *channel.Config {
	cfg := channel.DefaultConfig()
	cfg.Reconnect = c.Channel.Reconnect
	if c.Channel.MinInterval > 0 {
		cfg.MinInterval = c.Channel.MinInterval
	}
	if c.Channel.MaxInterval > 0 {
		cfg.MaxInterval = c.Channel.MaxInterval
	}
	if c.Channel.PingPeriod > 0 {
		cfg.PingPeriod = c.Channel.PingPeriod
		if cfg.PongWait <= cfg.PingPeriod {
			cfg.PongWait = cfg.PingPeriod * 2
		}
	}
	return cfg
}

// EtcdEndpoints splits the etcd address list, nil when unset.
func (c *Config) EtcdEndpoints() []string {
	return splitAddress(c.Etcd.Address)
}

// KafkaBrokers splits the kafka address list, nil when unset.
func (c *Config) KafkaBrokers() []string {
	return splitAddress(c.Kafka.Address)
}

func splitAddress(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
