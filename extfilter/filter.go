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

package extfilter

import (
	"log/slog"

	"github.com/Jigsaw-Code/tlsmutate/handshake"
)

// Filter inspects one handshake message before it is sent. msg is the message body without the handshake header;
// a [ActionChange] verdict carries the replacement body. Implementations must not modify msg.
type Filter interface {
	FilterHandshake(h handshake.Header, msg []byte) Verdict
}

// FilterFunc is an adapter to allow the use of ordinary functions as a [Filter].
type FilterFunc func(h handshake.Header, msg []byte) Verdict

// FilterHandshake implements [Filter].
func (f FilterFunc) FilterHandshake(h handshake.Header, msg []byte) Verdict {
	return f(h, msg)
}

// Chain runs filters in order, each one seeing the output of the previous. The result is [ActionChange] if any
// filter changed the message, with the final bytes, and [ActionKeep] otherwise.
func Chain(filters ...Filter) Filter {
	return FilterFunc(func(h handshake.Header, msg []byte) Verdict {
		changed := false
		for i, f := range filters {
			v := f.FilterHandshake(h, msg)
			switch v.Action {
			case ActionChange:
				msg = v.Data
				changed = true
			case ActionDrop:
				slog.Debug("extfilter: ignoring message-level drop", "stage", i, "header", h)
			}
		}
		if !changed {
			return Keep()
		}
		return Change(msg)
	})
}
