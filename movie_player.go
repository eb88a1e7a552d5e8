package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"airhockey/netlink"

	"github.com/gorilla/websocket"
)

// timedFrame is an inbound frame due at an offset from the start of playback.
type timedFrame struct {
	At   time.Duration
	Data []byte
}

// loadRecording reads a file written by frameRecorder.
func loadRecording(path string) ([]timedFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readRecording(f)
}

func readRecording(r io.Reader) ([]timedFrame, error) {
	var frames []timedFrame
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rf recordedFrame
		if err := json.Unmarshal(sc.Bytes(), &rf); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		frames = append(frames, timedFrame{
			At:   time.Duration(rf.At) * time.Millisecond,
			Data: []byte(rf.Frame),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

// replayDialer plays a fixed list of frames back as if a server sent them.
type replayDialer struct {
	frames []timedFrame
}

func (d replayDialer) Dial(ctx context.Context, url string) (netlink.Conn, error) {
	return &replayConn{frames: d.frames, start: time.Now(), done: make(chan struct{})}, nil
}

// replayConn returns its frames on schedule, discards writes and ends with a
// normal closure.
type replayConn struct {
	frames []timedFrame
	next   int
	start  time.Time

	done      chan struct{}
	closeOnce sync.Once
}

func (c *replayConn) ReadMessage() (int, []byte, error) {
	if c.next >= len(c.frames) {
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure, Text: "end of recording"}
	}
	f := c.frames[c.next]
	if wait := f.At - time.Since(c.start); wait > 0 {
		t := time.NewTimer(wait)
		select {
		case <-c.done:
			t.Stop()
			return 0, nil, websocket.ErrCloseSent
		case <-t.C:
		}
	}
	c.next++
	return websocket.TextMessage, f.Data, nil
}

func (c *replayConn) WriteMessage(typ int, data []byte) error {
	select {
	case <-c.done:
		return websocket.ErrCloseSent
	default:
		return nil
	}
}

func (c *replayConn) WriteControl(typ int, data []byte, deadline time.Time) error {
	return c.WriteMessage(typ, data)
}

// Gaps in a recording may be longer than the pong wait, so deadlines are
// ignored.
func (c *replayConn) SetReadDeadline(time.Time) error   { return nil }
func (c *replayConn) SetWriteDeadline(time.Time) error  { return nil }
func (c *replayConn) SetPongHandler(func(string) error) {}

func (c *replayConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}
