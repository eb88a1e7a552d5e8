package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"airhockey/rink"

	"github.com/hajimehoshi/ebiten/v2"
)

const SETTINGS_VERSION = 1

const (
	settingsFile     = "settings.json"
	defaultServerURL = "ws://localhost:8080"
	serverURLEnv     = "HOCKEY_SERVER_URL"
)

// dataDirPath holds the directory used for settings. On macOS it resolves to
// the app's container directory; elsewhere it sits next to the executable.
var dataDirPath = func() string {
	if runtime.GOOS == "darwin" {
		if home, err := os.UserHomeDir(); err == nil {
			home = filepath.Join(home, "Library", "Application Support", "airhockey")
			_ = os.MkdirAll(home, 0o755)
			return home
		}
	}
	if exe, err := os.Executable(); err == nil {
		if dir, err := filepath.Abs(filepath.Dir(exe)); err == nil {
			return filepath.Join(dir, "data")
		}
	}
	return "data"
}()

var gs settings = gsdef

var gsdef settings = settings{
	Version: SETTINGS_VERSION,

	ServerURL:           defaultServerURL,
	Reconnect:           true,
	MinBackoffMS:        500,
	MaxBackoffMS:        10000,
	HandshakeTimeoutSec: 10,
	SendQueue:           8,

	WindowScale: 1.0,
	VSync:       true,
	Theme:       "auto",

	Notifications: true,

	KeyUp:    []string{"ArrowUp", "W"},
	KeyDown:  []string{"ArrowDown", "S"},
	KeyLeft:  []string{"ArrowLeft", "A"},
	KeyRight: []string{"ArrowRight", "D"},
}

type settings struct {
	Version int

	// ServerURL is used when neither -server nor HOCKEY_SERVER_URL is set.
	ServerURL           string
	Reconnect           bool
	MinBackoffMS        int
	MaxBackoffMS        int
	HandshakeTimeoutSec int
	SendQueue           int

	WindowScale float64
	Fullscreen  bool
	VSync       bool
	// Theme is "auto", "dark" or "light".
	Theme     string
	ShowStats bool

	Notifications   bool
	DiscordPresence bool
	DiscordAppID    string

	KeyUp    []string
	KeyDown  []string
	KeyLeft  []string
	KeyRight []string

	// LocalSide is 1 or 2; 0 leaves the default until the server assigns one.
	LocalSide int
}

func loadSettings() bool {
	path := filepath.Join(dataDirPath, settingsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		gs = gsdef
		return false
	}

	tmp := gsdef
	if err := json.Unmarshal(data, &tmp); err != nil {
		logWarn("load settings: %v", err)
		gs = gsdef
		return false
	}
	if tmp.Version != SETTINGS_VERSION {
		gs = gsdef
		return false
	}
	gs = tmp
	clampSettings(&gs)
	return true
}

// clampSettings replaces out of range values with defaults.
func clampSettings(s *settings) {
	if s.MinBackoffMS <= 0 || s.MinBackoffMS > 60000 {
		s.MinBackoffMS = gsdef.MinBackoffMS
	}
	if s.MaxBackoffMS < s.MinBackoffMS {
		s.MaxBackoffMS = s.MinBackoffMS
	}
	if s.MaxBackoffMS > 300000 {
		s.MaxBackoffMS = 300000
	}
	if s.HandshakeTimeoutSec <= 0 || s.HandshakeTimeoutSec > 120 {
		s.HandshakeTimeoutSec = gsdef.HandshakeTimeoutSec
	}
	if s.SendQueue <= 0 || s.SendQueue > 1024 {
		s.SendQueue = gsdef.SendQueue
	}
	if s.WindowScale < 0.5 || s.WindowScale > 4 {
		s.WindowScale = gsdef.WindowScale
	}
	switch s.Theme {
	case "auto", "dark", "light":
	default:
		s.Theme = gsdef.Theme
	}
	if s.LocalSide != 0 && !rink.Side(s.LocalSide).Valid() {
		s.LocalSide = 0
	}
	s.KeyUp = validKeys(s.KeyUp, gsdef.KeyUp)
	s.KeyDown = validKeys(s.KeyDown, gsdef.KeyDown)
	s.KeyLeft = validKeys(s.KeyLeft, gsdef.KeyLeft)
	s.KeyRight = validKeys(s.KeyRight, gsdef.KeyRight)
}

// validKeys keeps the names ebiten recognizes, falling back to def when none
// remain.
func validKeys(names, def []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		var k ebiten.Key
		if err := k.UnmarshalText([]byte(n)); err != nil {
			logWarn("settings: unknown key %q", n)
			continue
		}
		out = append(out, k.String())
	}
	if len(out) == 0 {
		return append([]string(nil), def...)
	}
	return out
}

func saveSettings() {
	data, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		logError("save settings: %v", err)
		return
	}
	if err := os.MkdirAll(dataDirPath, 0o755); err != nil {
		logError("save settings: %v", err)
		return
	}
	path := filepath.Join(dataDirPath, settingsFile)
	if err := os.WriteFile(path+".tmp", data, 0644); err != nil {
		logError("save settings: %v", err)
		return
	}
	if err := os.Rename(path+".tmp", path); err != nil {
		logError("save settings: %v", err)
	}
}

func applySettings() {
	ebiten.SetVsyncEnabled(gs.VSync)
	ebiten.SetFullscreen(gs.Fullscreen)
	ebiten.SetWindowSize(int(float64(screenW)*gs.WindowScale), int(float64(screenH)*gs.WindowScale))
	applyTheme(gs.Theme)
}

// keyBindings converts the configured key lists into rink bindings.
func keyBindings(s settings) rink.Bindings {
	return rink.Bindings{
		rink.Up:    append([]string(nil), s.KeyUp...),
		rink.Down:  append([]string(nil), s.KeyDown...),
		rink.Left:  append([]string(nil), s.KeyLeft...),
		rink.Right: append([]string(nil), s.KeyRight...),
	}
}

func backoffRange(s settings) (time.Duration, time.Duration) {
	return time.Duration(s.MinBackoffMS) * time.Millisecond, time.Duration(s.MaxBackoffMS) * time.Millisecond
}

// resolveServerURL picks the endpoint: flag, then environment, then
// settings, then the built-in default.
func resolveServerURL(flagURL string) (string, error) {
	raw := flagURL
	if raw == "" {
		raw = os.Getenv(serverURLEnv)
	}
	if raw == "" {
		raw = gs.ServerURL
	}
	if raw == "" {
		raw = defaultServerURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("server url %q: %w", raw, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("server url %q: scheme must be ws or wss", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server url %q: missing host", raw)
	}
	return u.String(), nil
}
