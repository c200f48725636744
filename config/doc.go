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
Package config builds filters and test scenarios from text.

A filter config is a pipe-separated list of stages that run in order. Each stage has the form
"<type>:<extension>[/<arg>]", where the extension is a name like "server_name" or a number like "0x0010":

	truncate:server_name/7       keep the first 7 payload bytes
	damage:server_name/1         add 73 to the payload byte at index 1
	replace:alpn/0000            replace the payload with the given bytes
	inject:server_name/sni:a.b   add another extension record in front of the others
	drop:ec_point_formats        remove the extension
	capture:signature_algorithms remember the last payload sent

Payloads are hex, "sni:<host>" or "alpn:<p1>,<p2>". See [ParsePayload].
*/
package config
