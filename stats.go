package main

import (
	"fmt"
	"time"

	"airhockey/netlink"
	"airhockey/rink"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
)

type statsInput struct {
	URL    string
	Status netlink.Status
	Net    netlink.Stats

	Ticks       uint64
	Applied     uint64
	Overwritten uint64
	Last        rink.TickResult

	Running time.Duration
	Now     time.Time
}

// formatStats renders the F3 overlay.
func formatStats(in statsInput) []string {
	lines := []string{
		"server: " + in.URL,
		fmt.Sprintf("state: %s (%s)", in.Status.State, shortDuration(in.Status.Uptime(in.Now))),
		fmt.Sprintf("running: %s  ticks: %s", shortDuration(in.Running), humanize.Comma(int64(in.Ticks))),
		fmt.Sprintf("in: %s frames, %s", humanize.Comma(int64(in.Net.FramesIn)), humanize.Bytes(in.Net.BytesIn)),
		fmt.Sprintf("snapshots: %d received, %d applied, %d skipped", in.Net.Snapshots, in.Applied, in.Overwritten),
		fmt.Sprintf("malformed: %d", in.Net.Malformed),
		fmt.Sprintf("out: %s intents, %d dropped, %s",
			humanize.Comma(int64(in.Net.IntentsSent)), in.Net.IntentsDropped, humanize.Bytes(in.Net.BytesOut)),
		fmt.Sprintf("intent: dx=%.2f dy=%.2f", in.Last.Intent.DX, in.Last.Intent.DY),
	}
	if in.Status.Err != nil {
		lines = append(lines, "error: "+in.Status.Err.Error())
	}
	return lines
}

func shortDuration(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	return durafmt.Parse(d.Truncate(time.Second)).LimitFirstN(2).String()
}
