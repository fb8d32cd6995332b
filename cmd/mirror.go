package cmd

import (
	"context"
	"fmt"
	"log"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/y7ut/settingsgrid/channel"
	"github.com/y7ut/settingsgrid/component/headless"
	"github.com/y7ut/settingsgrid/etcd"
	"github.com/y7ut/settingsgrid/mirror"
	"github.com/y7ut/settingsgrid/settings"
)

var MirrorCmd = &cobra.Command{
	Use:   "mirror <grid>",
	Short: "Keep an etcd key in sync with a settings table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMirror(cmd, args[0])
	},
}

func runMirror(cmd *cobra.Command, mount string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	g, err := c.Grid(mount)
	if err != nil {
		return err
	}
	closeLog, err := initLog(c, true)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := etcd.Connect(c.EtcdEndpoints(), c.Etcd.DialTimeout, c.Etcd.Prefix, c.App.ID)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := store.SetActive(ctx, g.Mount, true); err != nil {
		return err
	}
	defer func() {
		if err := store.SetActive(context.Background(), g.Mount, false); err != nil {
			log.Println(err)
		}
	}()

	rec, waitAudit := startAudit(ctx, c)
	loop := settings.NewLoop(64)
	go loop.Run(ctx)

	conn := channel.New(c.ChannelConfig(), loop.Post)
	conn.OnState(func(s channel.State) {
		log.Printf("mirror %s: %s %s", g.Mount, g.Endpoint, s)
	})
	ch := tap(conn, rec)

	view := headless.New()
	m := mirror.New(store, store.ConfigKey(g.Mount), view, ch, loop.Post)
	loop.Do(func() {
		_, err = settings.New(g.Mount, g.Endpoint, view, ch, g.Columns)
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("grid %s: %w", g.Mount, err)
	}
	go m.Run(ctx)
	log.Printf("mirror %s to etcd key %s", g.Mount, m.Key())

	for s := range sign() {
		switch s {
		case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
			log.Println("Safe Exit:", s)
			conn.Close()
			cancel()
			waitAudit()
			return nil
		}
	}
	return nil
}

func init() {
	RootCmd.AddCommand(MirrorCmd)
}
