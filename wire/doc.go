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
Package wire provides the two byte-level primitives used to take apart and rebuild TLS handshake messages:
[Cursor], a forward-only reader of big-endian and length-prefixed fields, and [Buffer], an owned byte sequence with
positional writes, splicing and truncation.

Both follow the "fail open" convention of the mutation filters built on top of them: a read that runs out of
bytes returns false instead of panicking, and the caller decides whether that means "leave the message alone".
*/
package wire
