package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"airhockey/rink"
)

func withSettings(t *testing.T, s settings) {
	t.Helper()
	old := gs
	gs = s
	t.Cleanup(func() { gs = old })
}

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	withSettings(t, gsdef)
	os.Remove(filepath.Join(dataDirPath, settingsFile))
	gs.ServerURL = "ws://changed:1"
	if loadSettings() {
		t.Fatalf("loadSettings reported success without a file")
	}
	if gs.ServerURL != defaultServerURL {
		t.Fatalf("ServerURL = %q, want default", gs.ServerURL)
	}
}

func TestSaveLoadSettingsRoundTrip(t *testing.T) {
	withSettings(t, gsdef)
	gs.ServerURL = "wss://rink.example:9000/play"
	gs.Reconnect = false
	gs.KeyUp = []string{"I"}
	gs.LocalSide = 2
	saveSettings()
	t.Cleanup(func() { os.Remove(filepath.Join(dataDirPath, settingsFile)) })

	gs = gsdef
	if !loadSettings() {
		t.Fatalf("loadSettings failed")
	}
	if gs.ServerURL != "wss://rink.example:9000/play" || gs.Reconnect || gs.LocalSide != 2 {
		t.Fatalf("loaded %+v", gs)
	}
	if !reflect.DeepEqual(gs.KeyUp, []string{"I"}) {
		t.Fatalf("KeyUp = %v", gs.KeyUp)
	}
	if _, err := os.Stat(filepath.Join(dataDirPath, settingsFile+".tmp")); !os.IsNotExist(err) {
		t.Fatalf("temporary settings file left behind: %v", err)
	}
}

func TestLoadSettingsVersionMismatch(t *testing.T) {
	withSettings(t, gsdef)
	path := filepath.Join(dataDirPath, settingsFile)
	if err := os.WriteFile(path, []byte(`{"Version":99,"ServerURL":"ws://old:1"}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Cleanup(func() { os.Remove(path) })
	if loadSettings() {
		t.Fatalf("loadSettings accepted an old version")
	}
	if gs.ServerURL != defaultServerURL {
		t.Fatalf("ServerURL = %q", gs.ServerURL)
	}
}

func TestClampSettings(t *testing.T) {
	s := gsdef
	s.MinBackoffMS = -5
	s.MaxBackoffMS = 1
	s.SendQueue = 0
	s.WindowScale = 20
	s.Theme = "purple"
	s.LocalSide = 7
	s.KeyLeft = []string{"NotAKey"}
	s.KeyRight = []string{"NotAKey", "L"}
	clampSettings(&s)

	if s.MinBackoffMS != gsdef.MinBackoffMS || s.MaxBackoffMS != gsdef.MinBackoffMS {
		t.Fatalf("backoff = %d..%d", s.MinBackoffMS, s.MaxBackoffMS)
	}
	if s.SendQueue != gsdef.SendQueue || s.WindowScale != gsdef.WindowScale || s.Theme != "auto" {
		t.Fatalf("clamped %+v", s)
	}
	if s.LocalSide != 0 {
		t.Fatalf("LocalSide = %d", s.LocalSide)
	}
	if !reflect.DeepEqual(s.KeyLeft, gsdef.KeyLeft) {
		t.Fatalf("KeyLeft = %v", s.KeyLeft)
	}
	if !reflect.DeepEqual(s.KeyRight, []string{"L"}) {
		t.Fatalf("KeyRight = %v", s.KeyRight)
	}
}

func TestResolveServerURLPrecedence(t *testing.T) {
	withSettings(t, gsdef)

	t.Setenv(serverURLEnv, "")
	got, err := resolveServerURL("")
	if err != nil || got != defaultServerURL {
		t.Fatalf("default: got %q, %v", got, err)
	}

	gs.ServerURL = "ws://settings:1"
	if got, _ = resolveServerURL(""); got != "ws://settings:1" {
		t.Fatalf("settings: got %q", got)
	}

	t.Setenv(serverURLEnv, "ws://env:2")
	if got, _ = resolveServerURL(""); got != "ws://env:2" {
		t.Fatalf("env: got %q", got)
	}

	if got, _ = resolveServerURL("wss://flag:3/x"); got != "wss://flag:3/x" {
		t.Fatalf("flag: got %q", got)
	}
}

func TestResolveServerURLRejectsBadScheme(t *testing.T) {
	withSettings(t, gsdef)
	for _, u := range []string{"http://localhost:8080", "localhost:8080", "ws://"} {
		if _, err := resolveServerURL(u); err == nil {
			t.Fatalf("resolveServerURL(%q) accepted", u)
		}
	}
}

func TestKeyBindingsFromSettings(t *testing.T) {
	s := gsdef
	s.KeyDown = []string{"K"}
	k := rink.NewKeys(keyBindings(s))
	k.Down("K")
	if !k.Held(rink.Down) {
		t.Fatalf("K not bound to down")
	}
	k.Down("S")
	k.Up("K")
	if k.Held(rink.Down) {
		t.Fatalf("S still bound to down")
	}
}
