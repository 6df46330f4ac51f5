/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/parley-im/parley/log"
	"github.com/parley-im/parley/session"
	"github.com/parley-im/parley/storage"
	"github.com/parley-im/parley/transport"
	"github.com/parley-im/parley/version"
	"github.com/parley-im/parley/xmpp/jid"
)

const usageStr = `
Usage: parley [options]

Options:
    -c, --config <file>    Configuration file path
    -h, --help             Show this message
    -v, --version          Show version
`

func main() {
	var configFile string
	var showVersion, showUsage bool

	fs := flag.NewFlagSet("parley", flag.ExitOnError)
	fs.BoolVar(&showUsage, "help", false, "Show this message")
	fs.BoolVar(&showUsage, "h", false, "Show this message")
	fs.BoolVar(&showVersion, "version", false, "Print version information.")
	fs.BoolVar(&showVersion, "v", false, "Print version information.")
	fs.StringVar(&configFile, "config", "parley.yml", "Configuration file path.")
	fs.StringVar(&configFile, "c", "parley.yml", "Configuration file path.")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usageStr) }
	_ = fs.Parse(os.Args[1:])

	if showUsage {
		fs.Usage()
		return
	}
	if showVersion {
		fmt.Fprintf(os.Stdout, "parley version: %v\n", version.ApplicationVersion)
		return
	}
	var cfg Config
	if err := cfg.FromFile(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "parley: %v\n", err)
		os.Exit(1)
	}
	if err := run(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "parley: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *Config) error {
	if err := createPIDFile(cfg.PIDFile); err != nil {
		return err
	}
	log.Initialize(&cfg.Logger)
	defer log.Shutdown()

	j, err := jid.NewWithString(cfg.JID, false)
	if err != nil {
		return err
	}
	repContainer, err := storage.New(&cfg.Storage)
	if err != nil {
		return err
	}
	tr, err := transport.Dial(cfg.Server.Address, cfg.Server.DialTimeout, cfg.Server.KeepAlive)
	if err != nil {
		return err
	}
	log.Infof("parley %v", version.ApplicationVersion)
	log.Infof("connected to %s as %s", cfg.Server.Address, j)

	disconnectedCh := make(chan error, 1)
	s := session.New(&cfg.Session, j, tr, repContainer.Capabilities(), sessionEvents(disconnectedCh))
	s.Start()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stopCh:
		log.Infof("received %s signal, shutting down", sig)
		s.Close()
	case err := <-disconnectedCh:
		if err != nil {
			return err
		}
	}
	return nil
}

// Events wires session callbacks into the log so a bare run of the
// binary shows stream traffic. A terminal frontend replaces this with
// its own rendering surface.
func sessionEvents(disconnectedCh chan<- error) session.Events {
	return session.Events{
		IncomingMessage: func(from *jid.JID, body string) {
			log.Infof("%s: %s", from, body)
		},
		DelayedMessage: func(from *jid.JID, body string, stamp time.Time) {
			log.Infof("[%s] %s: %s", stamp.Format(time.RFC3339), from, body)
		},
		RoomMessage: func(roomJID *jid.JID, nick, body string) {
			log.Infof("%s/%s: %s", roomJID, nick, body)
		},
		PingResult: func(from *jid.JID, latency time.Duration) {
			log.Infof("pong from %s in %v", from, latency)
		},
		Disconnected: func(err error) {
			disconnectedCh <- err
		},
	}
}

func createPIDFile(pidFile string) error {
	if len(pidFile) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(pidFile), os.ModePerm); err != nil {
		return err
	}
	file, err := os.Create(pidFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if _, err := file.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		return err
	}
	return nil
}
