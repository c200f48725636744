// Copyright 2025 The Outline Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package alert

import (
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/Jigsaw-Code/tlsmutate/transport"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"golang.org/x/crypto/cryptobyte"
)

const (
	recordHeaderLen         = 5
	datagramRecordHeaderLen = 13
	recordTypeAlert         = 21
	// Ciphertext records may be up to 2^14 + 2048 bytes.
	maxRecordPayloadLen = 1<<14 + 2048
)

// observed is the first alert seen by a recorder.
type observed struct {
	mu    sync.Mutex
	seen  bool
	level Level
	desc  Description
}

func (o *observed) set(level Level, desc Description) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seen {
		return false
	}
	o.seen, o.level, o.desc = true, level, desc
	return true
}

func (o *observed) get() (Level, Description, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.level, o.desc, o.seen
}

// Recorder watches the TLS records read from a stream and remembers the first plaintext alert among them.
// Encrypted alerts cannot be read and are ignored.
type Recorder struct {
	r   io.Reader
	buf []byte
	// stopped is set once the first alert is found or the stream stops looking like TLS.
	stopped bool
	tls     layers.TLS
	observed
}

var _ io.Reader = (*Recorder)(nil)

// NewRecorder returns a [Recorder] that reads from r.
func NewRecorder(r io.Reader) *Recorder {
	return &Recorder{r: r}
}

// WrapConn returns a connection whose reads go through a new [Recorder], and the Recorder.
func WrapConn(c transport.StreamConn) (transport.StreamConn, *Recorder) {
	rec := NewRecorder(c)
	return transport.WrapConn(c, rec, c), rec
}

// Read implements [io.Reader]. Bytes are returned to the caller unchanged.
func (r *Recorder) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 && !r.stopped {
		r.observe(p[:n])
	}
	return n, err
}

// Alert returns the first alert received, and false if there has been none.
func (r *Recorder) Alert() (Level, Description, bool) {
	return r.get()
}

func (r *Recorder) observe(p []byte) {
	r.buf = append(r.buf, p...)
	consumed := 0
	for !r.stopped {
		rest := r.buf[consumed:]
		if len(rest) < recordHeaderLen {
			break
		}
		length := int(rest[3])<<8 | int(rest[4])
		if length > maxRecordPayloadLen {
			slog.Debug("alert: stream is not TLS, stop recording", "record_len", length)
			r.stopped = true
			break
		}
		if len(rest) < recordHeaderLen+length {
			break
		}
		r.inspect(rest[:recordHeaderLen+length])
		consumed += recordHeaderLen + length
	}
	if r.stopped {
		r.buf = nil
		return
	}
	r.buf = append(r.buf[:0], r.buf[consumed:]...)
}

func (r *Recorder) inspect(record []byte) {
	if record[0] != recordTypeAlert {
		return
	}
	if err := r.tls.DecodeFromBytes(record, gopacket.NilDecodeFeedback); err != nil {
		slog.Debug("alert: cannot decode record", "err", err)
		return
	}
	for _, a := range r.tls.Alert {
		// Encrypted alerts are longer than two bytes.
		if a.Length != 2 {
			continue
		}
		r.record(Level(a.Level), Description(a.Description))
		r.stopped = true
		return
	}
}

func (r *Recorder) record(level Level, desc Description) {
	if r.set(level, desc) {
		slog.Debug("alert: received", "level", level, "description", desc)
	}
}

// DatagramRecorder watches DTLS datagrams and remembers the first plaintext alert among them. Each Read is
// expected to return exactly one datagram.
type DatagramRecorder struct {
	net.Conn
	observed
}

// WrapPacketConn returns a [DatagramRecorder] reading from c. The recorder is itself the wrapped connection.
func WrapPacketConn(c net.Conn) *DatagramRecorder {
	return &DatagramRecorder{Conn: c}
}

// Read implements [net.Conn]. Datagrams are returned to the caller unchanged.
func (r *DatagramRecorder) Read(p []byte) (int, error) {
	n, err := r.Conn.Read(p)
	if n > 0 {
		r.Observe(p[:n])
	}
	return n, err
}

// Alert returns the first alert received, and false if there has been none.
func (r *DatagramRecorder) Alert() (Level, Description, bool) {
	return r.get()
}

// Observe inspects one datagram. It is called by Read, and can be called directly for datagrams read elsewhere.
func (r *DatagramRecorder) Observe(datagram []byte) {
	s := cryptobyte.String(datagram)
	for len(s) >= datagramRecordHeaderLen {
		var contentType, level, desc uint8
		var payload cryptobyte.String
		if !s.ReadUint8(&contentType) || !s.Skip(2+2+6) || !s.ReadUint16LengthPrefixed(&payload) {
			return
		}
		if contentType != recordTypeAlert || len(payload) != 2 {
			continue
		}
		payload.ReadUint8(&level)
		payload.ReadUint8(&desc)
		if r.set(Level(level), Description(desc)) {
			slog.Debug("alert: received", "level", Level(level), "description", Description(desc), "datagram", true)
		}
		return
	}
}
