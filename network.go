package main

import (
	"fmt"
	"time"

	"airhockey/netlink"
	"airhockey/rink"
)

// transport is where the game's frames come from.
type transport struct {
	url    string
	dialer netlink.Dialer
	// live is false for recordings, which never reconnect.
	live bool
}

// newTransport picks the connection source from the command line: a fake
// local server, a recording, a capture or the real server.
func newTransport() (transport, error) {
	switch {
	case fake:
		side := rink.Side(gs.LocalSide)
		if !side.Valid() {
			side = rink.Player1
		}
		return transport{url: "fake://local", dialer: fakeDialer{tick: fakeTick, side: side}, live: true}, nil
	case replayPath != "":
		frames, err := loadRecording(replayPath)
		if err != nil {
			return transport{}, fmt.Errorf("replay %s: %w", replayPath, err)
		}
		logDebug("replaying %d frames (%s) from %s", len(frames), playLength(frames), replayPath)
		return transport{url: "file://" + replayPath, dialer: replayDialer{frames: frames}}, nil
	case pcapPath != "":
		frames, err := loadPCAP(pcapPath)
		if err != nil {
			return transport{}, fmt.Errorf("pcap %s: %w", pcapPath, err)
		}
		logDebug("replaying %d frames (%s) from %s", len(frames), playLength(frames), pcapPath)
		return transport{url: "pcap://" + pcapPath, dialer: replayDialer{frames: frames}}, nil
	}
	url, err := resolveServerURL(serverFlag)
	if err != nil {
		return transport{}, err
	}
	d := netlink.WebsocketDialer{HandshakeTimeout: time.Duration(gs.HandshakeTimeoutSec) * time.Second}
	return transport{url: url, dialer: d, live: true}, nil
}

func playLength(frames []timedFrame) string {
	if len(frames) == 0 {
		return "0s"
	}
	return shortDuration(frames[len(frames)-1].At)
}
