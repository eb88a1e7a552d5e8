package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sort"
	"time"

	"github.com/gobwas/ws"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/google/gopacket/tcpassembly"
)

var errShortFrame = errors.New("short websocket frame")

// loadPCAP extracts the text frames a match server sent in a capture. Only
// streams that answer a websocket upgrade are read.
func loadPCAP(path string) ([]timedFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var source *gopacket.PacketSource
	if ng, err := pcapgo.NewNgReader(f, pcapgo.NgReaderOptions{}); err == nil {
		source = gopacket.NewPacketSource(ng, ng.LinkType())
	} else {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		r, err := pcapgo.NewReader(f)
		if err != nil {
			return nil, err
		}
		source = gopacket.NewPacketSource(r, r.LinkType())
	}

	factory := &pcapStreamFactory{}
	assembler := tcpassembly.NewAssembler(tcpassembly.NewStreamPool(factory))
	for {
		pkt, err := source.NextPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		net := pkt.NetworkLayer()
		if net == nil {
			continue
		}
		if tcp, ok := pkt.TransportLayer().(*layers.TCP); ok {
			assembler.AssembleWithTimestamp(net.NetworkFlow(), tcp, pkt.Metadata().CaptureInfo.Timestamp)
		}
	}
	assembler.FlushAll()
	return factory.timeline(), nil
}

type capturedFrame struct {
	seen time.Time
	data []byte
}

type pcapStreamFactory struct {
	frames []capturedFrame
}

func (f *pcapStreamFactory) New(net, transport gopacket.Flow) tcpassembly.Stream {
	return &pcapStream{factory: f}
}

// timeline orders captured frames and makes their times relative to the
// first one.
func (f *pcapStreamFactory) timeline() []timedFrame {
	sort.SliceStable(f.frames, func(i, j int) bool { return f.frames[i].seen.Before(f.frames[j].seen) })
	out := make([]timedFrame, 0, len(f.frames))
	for _, c := range f.frames {
		out = append(out, timedFrame{At: c.seen.Sub(f.frames[0].seen), Data: c.data})
	}
	return out
}

// pcapStream follows one direction of a TCP connection.
type pcapStream struct {
	factory *pcapStreamFactory
	buf     bytes.Buffer
	// upgraded is set once the HTTP 101 response has been skipped.
	upgraded bool
	ignore   bool
	partial  []byte
	seen     time.Time
}

func (s *pcapStream) Reassembled(rs []tcpassembly.Reassembly) {
	for _, r := range rs {
		if len(r.Bytes) > 0 {
			s.feed(r.Bytes, r.Seen)
		}
	}
}

func (s *pcapStream) feed(p []byte, seen time.Time) {
	if s.ignore {
		return
	}
	s.buf.Write(p)
	s.seen = seen
	if !s.upgraded {
		b := s.buf.Bytes()
		if len(b) >= 5 && !bytes.HasPrefix(b, []byte("HTTP/")) {
			s.ignore = true
			s.buf.Reset()
			return
		}
		end := bytes.Index(b, []byte("\r\n\r\n"))
		if end < 0 {
			return
		}
		if !bytes.Contains(b[:end], []byte(" 101 ")) {
			s.ignore = true
			s.buf.Reset()
			return
		}
		s.buf.Next(end + 4)
		s.upgraded = true
	}
	for !s.ignore {
		h, payload, n, err := parseWSFrame(s.buf.Bytes())
		if errors.Is(err, errShortFrame) {
			return
		}
		if err != nil {
			logDebug("pcap: %v", err)
			s.ignore = true
			return
		}
		s.buf.Next(n)
		s.frame(h.OpCode, h.Fin, payload)
	}
}

func (s *pcapStream) frame(op ws.OpCode, fin bool, payload []byte) {
	switch op {
	case ws.OpText, ws.OpBinary:
		s.partial = append(s.partial[:0], payload...)
	case ws.OpContinuation:
		s.partial = append(s.partial, payload...)
	case ws.OpClose:
		s.ignore = true
		return
	default:
		return
	}
	if fin {
		s.factory.frames = append(s.factory.frames, capturedFrame{seen: s.seen, data: append([]byte(nil), s.partial...)})
		s.partial = s.partial[:0]
	}
}

func (s *pcapStream) ReassemblyComplete() {}

// parseWSFrame decodes the websocket frame at the start of b and returns its
// header, unmasked payload and encoded length. errShortFrame means b holds
// only part of a frame.
func parseWSFrame(b []byte) (ws.Header, []byte, int, error) {
	r := bytes.NewReader(b)
	h, err := ws.ReadHeader(r)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ws.Header{}, nil, 0, errShortFrame
	}
	if err != nil {
		return ws.Header{}, nil, 0, err
	}
	n := len(b) - r.Len()
	if h.Length > int64(r.Len()) {
		return ws.Header{}, nil, 0, errShortFrame
	}
	payload := append([]byte(nil), b[n:n+int(h.Length)]...)
	if h.Masked {
		ws.Cipher(payload, h.Mask, 0)
	}
	return h, payload, n + int(h.Length), nil
}
