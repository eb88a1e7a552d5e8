package main

import (
	"os"
	"runtime"

	"airhockey/netlink"

	"github.com/gen2brain/beeep"
)

// notifyDesktop shows a desktop notification, best-effort and non-fatal.
func notifyDesktop(title, body string) {
	if body == "" {
		return
	}
	// Skip on headless Linux without DISPLAY; beeep would error.
	if runtime.GOOS == "linux" && (os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "") {
		return
	}
	if err := beeep.Notify(title, body, ""); err != nil {
		logDebug("notify: %v", err)
	}
}

func notifyConnectionLost(s netlink.Status) {
	if !gs.Notifications {
		return
	}
	body := s.Text()
	if s.Err != nil {
		body += ": " + s.Err.Error()
	}
	notifyDesktop("Air Hockey", body)
}
