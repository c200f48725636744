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

package handshake_test

import (
	"testing"

	"github.com/Jigsaw-Code/tlsmutate/handshake"
	"github.com/Jigsaw-Code/tlsmutate/internal/hellotest"
	"github.com/Jigsaw-Code/tlsmutate/wire"
	"github.com/stretchr/testify/require"
)

func TestLocateClientHelloExtensionsExample(t *testing.T) {
	body := hellotest.ExampleClientHelloRecord[9:]
	c := wire.NewCursor(body)
	require.True(t, handshake.LocateClientHelloExtensions(c, false))
	// version(2) + random(32) + session id(1+32) + suites(2+8) + compression(1+1)
	require.Equal(t, 79, c.Consumed())

	var total uint32
	require.True(t, c.Read(&total, 2))
	require.Equal(t, uint32(0xa3), total)
	require.Equal(t, int(total), c.Remaining())
}

func TestLocateClientHelloExtensionsDatagramCookie(t *testing.T) {
	cookie := []byte{0xc0, 0x0c, 0x1e}
	body := hellotest.ClientHello{Datagram: true, Cookie: cookie}.Marshal()

	c := wire.NewCursor(body)
	require.True(t, handshake.LocateClientHelloExtensions(c, true))
	// version(2) + random(32) + session id(1) + cookie(1+3) + suites(2+6) + compression(1+1)
	require.Equal(t, 49, c.Consumed())

	// Without the cookie field the cookie length and first byte are read as a 0x03c0 suite list length.
	c = wire.NewCursor(body)
	require.False(t, handshake.LocateClientHelloExtensions(c, false))
}

func TestLocateClientHelloExtensionsAbsent(t *testing.T) {
	body := hellotest.ClientHello{NoExtensions: true}.Marshal()
	c := wire.NewCursor(body)
	require.True(t, handshake.LocateClientHelloExtensions(c, false))
	require.True(t, c.Empty())
}

func TestLocateClientHelloExtensionsTruncated(t *testing.T) {
	body := hellotest.ClientHello{SessionID: make([]byte, 32)}.Marshal()
	c := wire.NewCursor(body)
	require.True(t, handshake.LocateClientHelloExtensions(c, false))
	fullPreamble := c.Consumed()

	for n := 0; n < fullPreamble; n++ {
		c := wire.NewCursor(body[:n])
		require.False(t, handshake.LocateClientHelloExtensions(c, false), "length %d", n)
	}
}

func TestLocateServerHelloExtensions(t *testing.T) {
	for _, tc := range []struct {
		msg      string
		version  uint16
		consumed int
	}{
		// version(2) + random(32) + session id(1+4) + suite(2) + compression(1)
		{"TLS 1.0", handshake.VersionTLS10, 42},
		{"TLS 1.2", handshake.VersionTLS12, 42},
		{"DTLS 1.0", handshake.VersionDTLS10, 42},
		{"DTLS 1.2", handshake.VersionDTLS12, 42},
		// No compression method.
		{"TLS 1.3", handshake.VersionTLS13, 41},
		{"DTLS 1.3", handshake.VersionDTLS13, 41},
	} {
		body := hellotest.ServerHello{Version: tc.version, SessionID: []byte{1, 2, 3, 4}}.Marshal()
		c := wire.NewCursor(body)
		require.True(t, handshake.LocateServerHelloExtensions(c, tc.version), tc.msg)
		require.Equal(t, tc.consumed, c.Consumed(), tc.msg)

		var total uint32
		require.True(t, c.Read(&total, 2), tc.msg)
		require.Equal(t, uint32(0), total, tc.msg)
		require.True(t, c.Empty(), tc.msg)
	}
}

func TestLocateServerHelloExtensionsTruncated(t *testing.T) {
	body := hellotest.ServerHello{}.Marshal()
	for n := 0; n < 38; n++ {
		c := wire.NewCursor(body[:n])
		require.False(t, handshake.LocateServerHelloExtensions(c, handshake.VersionTLS12), "length %d", n)
	}
	c := wire.NewCursor(body[:37])
	require.True(t, handshake.LocateServerHelloExtensions(c, handshake.VersionTLS13))
}

func TestLocateExtensionsDispatch(t *testing.T) {
	client := hellotest.ClientHello{Datagram: true, Cookie: []byte{1}}.Marshal()
	c := wire.NewCursor(client)
	require.True(t, handshake.LocateExtensions(c, handshake.Header{Type: handshake.TypeClientHello, Datagram: true}))
	require.Equal(t, len(client)-2, c.Consumed())

	server := hellotest.ServerHello{Version: handshake.VersionTLS13}.Marshal()
	c = wire.NewCursor(server)
	require.True(t, handshake.LocateExtensions(c, handshake.Header{Type: handshake.TypeServerHello, Version: handshake.VersionTLS13}))
	require.Equal(t, len(server)-2, c.Consumed())

	c = wire.NewCursor(server)
	require.False(t, handshake.LocateExtensions(c, handshake.Header{Type: handshake.TypeCertificate}))
	require.Equal(t, 0, c.Consumed())
}

func TestNormalizeVersion(t *testing.T) {
	require.Equal(t, handshake.VersionTLS11, handshake.NormalizeVersion(handshake.VersionDTLS10))
	require.Equal(t, handshake.VersionTLS12, handshake.NormalizeVersion(handshake.VersionDTLS12))
	require.Equal(t, handshake.VersionTLS13, handshake.NormalizeVersion(handshake.VersionDTLS13))
	require.Equal(t, handshake.VersionTLS10, handshake.NormalizeVersion(handshake.VersionTLS10))
	require.Equal(t, uint16(0x1234), handshake.NormalizeVersion(0x1234))
}

func TestHeaderString(t *testing.T) {
	h := handshake.Header{Type: handshake.TypeClientHello, Version: handshake.VersionDTLS12, Datagram: true}
	require.Equal(t, "client_hello/0xfefd/datagram", h.String())
	require.Equal(t, "handshake(99)/0x0303/stream", handshake.Header{Type: 99, Version: handshake.VersionTLS12}.String())
}
