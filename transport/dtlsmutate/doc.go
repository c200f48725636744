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
Package dtlsmutate applies an [extfilter.Filter] to the handshake messages a DTLS endpoint sends.

Each Write on the wrapped connection is one datagram. Unfragmented handshake messages in epoch 0 records are passed to
the filter with a datagram [handshake.Header], and the message, fragment and record lengths are rewritten to match
the filtered body. Fragmented messages, encrypted records and malformed datagrams are sent as they are.
*/
package dtlsmutate
