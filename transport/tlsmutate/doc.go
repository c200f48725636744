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

/*
Package tlsmutate installs an [extfilter.Filter] on the send path of a TLS connection.

The wrapped connection reassembles the records written to it and hands each handshake message inside a plaintext
handshake record to the filter. Changed messages are reframed with the right message and record lengths. Once the
connection sends anything other than a handshake record, typically ChangeCipherSpec or application data, the
wrapper gets out of the way and forwards bytes as they come.

Typical use with crypto/tls:

	filter := extfilter.Truncator(handshake.ExtensionServerName, 7)
	dialer, _ := tlsmutate.NewStreamDialer(&transport.TCPDialer{}, filter)
	conn, _ := dialer.DialStream(ctx, "example.com:443")
	err := tls.Client(conn, &tls.Config{ServerName: "example.com"}).HandshakeContext(ctx)
*/
package tlsmutate
