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
Package transport has the connection interfaces shared by the mutating framers: [StreamConn] and [StreamDialer] for
TLS over TCP, and [PacketDialer] for DTLS over UDP.

[WrapConn] replaces the reader or writer of a connection while keeping its half-close behavior, which is how the
framers splice themselves into the write path.
*/
package transport
