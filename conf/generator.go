package conf

import (
	"fmt"
	"math/rand"
	"strings"

	"gopkg.in/ini.v1"
)

// Prompter asks the user one question and returns the raw answer.
type Prompter func(question string) string

// Generate builds a config file. With a prompter every blank answer keeps
// the default value.
func Generate(prompt Prompter) *ini.File {
	d := Default()
	appName := fmt.Sprintf("settingsgrid_%d", rand.Intn(1000))
	mount := "settings"
	endpoint := "ws://localhost:8080/settings"
	columns := "key,value"
	etcdConn := ""
	kafkaConn := ""

	ask := func(q, def string) string {
		if prompt == nil {
			return def
		}
		if a := strings.TrimSpace(prompt(q)); a != "" {
			return a
		}
		return def
	}
	appName = ask("1. Enter the name of the application: ", appName)
	mount = ask("2. Enter the name of the settings table: ", mount)
	endpoint = ask("3. Enter the websocket endpoint of the table: ", endpoint)
	columns = ask("4. Enter the columns (comma separated): ", columns)
	etcdConn = ask("5. Enter the etcd connection string: ", etcdConn)
	kafkaConn = ask("6. Enter the kafka connection string: ", kafkaConn)

	cfg := ini.Empty()
	cfg.Section("app").Comment = "Application name"
	cfg.Section("app").NewKey("id", appName)

	cfg.Section("channel").Comment = "websocket connection"
	cfg.Section("channel").NewKey("reconnect", fmt.Sprint(d.Channel.Reconnect))
	cfg.Section("channel").NewKey("min_interval", d.Channel.MinInterval.String())
	cfg.Section("channel").NewKey("max_interval", d.Channel.MaxInterval.String())
	cfg.Section("channel").NewKey("ping_period", d.Channel.PingPeriod.String())

	cfg.Section("runtime").Comment = "runtime config"
	cfg.Section("runtime").NewKey("path", d.Runtime.Path)

	cfg.Section("log").Comment = "log config"
	cfg.Section("log").NewKey("path", d.Log.Path)
	cfg.Section("log").NewKey("name", d.Log.Name)

	cfg.Section("etcd").Comment = "Etcd connection string, leave empty to disable mirror"
	cfg.Section("etcd").NewKey("address", etcdConn)
	cfg.Section("etcd").NewKey("prefix", d.Etcd.Prefix)

	cfg.Section("kafka").Comment = "Kafka connection string, leave empty to disable audit"
	cfg.Section("kafka").NewKey("address", kafkaConn)
	cfg.Section("kafka").NewKey("topic", d.Kafka.Topic)
	cfg.Section("kafka").NewKey("queue_size", fmt.Sprint(d.Kafka.QueueSize))
	cfg.Section("kafka").NewKey("flush", d.Kafka.Flush.String())

	grid := cfg.Section(gridPrefix + mount)
	grid.Comment = "settings table"
	grid.NewKey("endpoint", endpoint)
	grid.NewKey("columns", columns)
	return cfg
}
