package main

import (
	"image/color"
	"testing"

	"airhockey/netlink"
	"airhockey/rink"
)

func TestEntityRect(t *testing.T) {
	x, y, w, h := entityRect(rink.Entity{X: 10, Y: 20, R: 20})
	if x != -10 || y != 0 || w != 40 || h != 40 {
		t.Fatalf("rect = %v,%v %vx%v", x, y, w, h)
	}
	x, y, w, h = entityRect(rink.Entity{X: 400, Y: 295, R: 10})
	if x != 390 || y != 285 || w != 20 || h != 20 {
		t.Fatalf("ball rect = %v,%v %vx%v", x, y, w, h)
	}
}

func TestEntityColor(t *testing.T) {
	pal = darkPalette
	if c := entityColor(rink.View{Kind: rink.KindPlayer, IsLocal: true}); c != pal.Local {
		t.Fatalf("local color = %v", c)
	}
	if c := entityColor(rink.View{Kind: rink.KindPlayer}); c != pal.Opponent {
		t.Fatalf("opponent color = %v", c)
	}
	if c := entityColor(rink.View{Kind: rink.KindBall}); c != pal.Ball {
		t.Fatalf("ball color = %v", c)
	}
}

func TestStatusColor(t *testing.T) {
	pal = darkPalette
	tests := []struct {
		state netlink.State
		want  color.NRGBA
	}{
		{netlink.Open, pal.Good},
		{netlink.Closed, pal.Bad},
		{netlink.Errored, pal.Bad},
		{netlink.Connecting, pal.Neutral},
		{netlink.Idle, pal.Neutral},
	}
	for _, tt := range tests {
		if got := statusColor(netlink.Status{State: tt.state}); got != tt.want {
			t.Fatalf("%v: color = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestHUDNotice(t *testing.T) {
	open := netlink.Status{State: netlink.Open}
	if got := (hudState{Status: open}).notice(); got != "Waiting for another player..." {
		t.Fatalf("notice = %q", got)
	}
	if got := (hudState{Status: open, Received: true}).notice(); got != "" {
		t.Fatalf("notice after snapshot = %q", got)
	}
	if got := (hudState{Status: open, Received: true, Stopped: true}).notice(); got != "Game stopped by server" {
		t.Fatalf("stopped notice = %q", got)
	}
	if got := (hudState{Status: netlink.Status{State: netlink.Connecting}}).notice(); got != "" {
		t.Fatalf("connecting notice = %q", got)
	}
}

func TestScoreLine(t *testing.T) {
	s := rink.DefaultSnapshot
	s.Player1.Score = 3
	s.Player2.Score = 1
	s.Player2.Name = "bob"
	if got := scoreLine(s, rink.Player1); got != "player1 (you) 3 : 1 bob" {
		t.Fatalf("score = %q", got)
	}
	if got := scoreLine(s, rink.Player2); got != "player1 3 : 1 bob (you)" {
		t.Fatalf("score = %q", got)
	}
}

func TestApplyTheme(t *testing.T) {
	applyTheme("light")
	if pal != lightPalette {
		t.Fatalf("light theme not applied")
	}
	applyTheme("dark")
	if pal != darkPalette {
		t.Fatalf("dark theme not applied")
	}
}
