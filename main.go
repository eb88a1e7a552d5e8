package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"airhockey/netlink"
	"airhockey/rink"

	"github.com/joho/godotenv"
	clipboard "golang.design/x/clipboard"
)

var (
	serverFlag string
	replayPath string
	pcapPath   string
	recordPath string
	fake       bool
	doDebug    bool
	reconnect  bool
	sideFlag   int
)

func main() {
	flag.StringVar(&serverFlag, "server", "", "websocket URL of the match server (overrides "+serverURLEnv+")")
	flag.StringVar(&replayPath, "replay", "", "play back frames recorded with -record")
	flag.StringVar(&pcapPath, "pcap", "", "replay server frames from a .pcap/.pcapng file")
	flag.StringVar(&recordPath, "record", "", "record inbound frames to a file")
	flag.BoolVar(&fake, "fake", false, "simulate a server locally without connecting")
	flag.BoolVar(&doDebug, "debug", false, "verbose/debug logging")
	flag.BoolVar(&reconnect, "reconnect", true, "redial with backoff after the connection drops")
	flag.IntVar(&sideFlag, "side", 0, "locally controlled player (1 or 2)")
	flag.Parse()

	setupLogging(doDebug)

	if err := godotenv.Load(); err != nil {
		logDebug("no .env loaded: %v", err)
	}
	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard init: %v", err)
	}

	if !loadSettings() {
		logDebug("using default settings")
	}
	if sideFlag != 0 {
		if !rink.Side(sideFlag).Valid() {
			log.Fatalf("-side must be 1 or 2")
		}
		gs.LocalSide = sideFlag
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "reconnect" {
			gs.Reconnect = reconnect
		}
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	defer cancel()

	target, err := newTransport()
	if err != nil {
		log.Fatalf("%v", err)
	}

	g := newGame(ctx)
	if gs.LocalSide != 0 {
		g.store.SetLocalSide(rink.Side(gs.LocalSide))
	}

	cfg := netlink.Config{
		URL:       target.url,
		Dialer:    target.dialer,
		Reconnect: gs.Reconnect && target.live,
		QueueSize: gs.SendQueue,
		OnStatus:  g.onStatus,
		Logf:      netLogf,
	}
	cfg.MinBackoff, cfg.MaxBackoff = backoffRange(gs)

	if recordPath != "" {
		rec, err := newFrameRecorder(recordPath)
		if err != nil {
			log.Fatalf("record: %v", err)
		}
		g.rec = rec
		cfg.Tap = rec.Add
	} else if doDebug {
		cfg.Tap = func(b []byte) { logDebugFrame("recv", b) }
	}

	initFont()
	initPresence(ctx)
	applySettings()

	g.attach(netlink.New(cfg, g))
	g.conn.Start(ctx)
	logDebug("connecting to %s", target.url)

	runGame(ctx, g)
	cancel()
	saveSettings()
}
