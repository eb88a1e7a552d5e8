package main

import (
	"context"
	"sync"
	"time"

	client "github.com/hugolgst/rich-go/client"
)

var (
	presenceMu    sync.Mutex
	presenceStart time.Time
	presenceReady bool
)

// initPresence logs in to Discord when enabled in settings. Updates come from
// the network goroutine, so access is serialized.
func initPresence(ctx context.Context) {
	if !gs.DiscordPresence || gs.DiscordAppID == "" {
		return
	}
	if err := client.Login(gs.DiscordAppID); err != nil {
		logError("discord rpc login: %v", err)
		return
	}
	presenceMu.Lock()
	presenceReady = true
	presenceStart = time.Now()
	presenceMu.Unlock()
	setPresence("connecting")
	go func() {
		<-ctx.Done()
		stopPresence()
	}()
}

func setPresence(detail string) {
	presenceMu.Lock()
	defer presenceMu.Unlock()
	if !presenceReady {
		return
	}
	if err := client.SetActivity(client.Activity{
		State:   "Air Hockey",
		Details: detail,
		Timestamps: &client.Timestamps{
			Start: &presenceStart,
		},
	}); err != nil {
		logError("discord rpc activity: %v", err)
	}
}

func stopPresence() {
	presenceMu.Lock()
	defer presenceMu.Unlock()
	if !presenceReady {
		return
	}
	presenceReady = false
	client.Logout()
}
