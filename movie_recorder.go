package main

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// recordedFrame is one line of a recording: an inbound frame and its offset
// from the start of the recording in milliseconds.
type recordedFrame struct {
	At    int64  `json:"t"`
	Frame string `json:"frame"`
}

// frameRecorder writes inbound frames as JSON lines.
type frameRecorder struct {
	mu     sync.Mutex
	f      *os.File
	w      *bufio.Writer
	enc    *json.Encoder
	start  time.Time
	now    func() time.Time
	frames int
	bytes  uint64
	err    error
}

func newFrameRecorder(path string) (*frameRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(f)
	return &frameRecorder{f: f, w: w, enc: json.NewEncoder(w), start: time.Now(), now: time.Now}, nil
}

// Add records frame. It is called from the connection's reader goroutine.
func (r *frameRecorder) Add(frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil || r.err != nil {
		return
	}
	rf := recordedFrame{At: r.now().Sub(r.start).Milliseconds(), Frame: string(frame)}
	if err := r.enc.Encode(rf); err != nil {
		r.err = err
		logError("record: %v", err)
		return
	}
	r.frames++
	r.bytes += uint64(len(frame))
}

func (r *frameRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.w.Flush()
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	logDebug("recorded %d frames (%s) to %s", r.frames, humanize.Bytes(r.bytes), r.f.Name())
	r.f = nil
	return err
}
