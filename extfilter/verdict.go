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

import "fmt"

// Action is the outcome of a filter decision.
type Action int

const (
	// ActionKeep leaves the message, or the extension, unchanged.
	ActionKeep Action = iota
	// ActionChange replaces the message, or the extension payload, with [Verdict.Data].
	ActionChange
	// ActionDrop omits a single extension from the rebuilt message. At message level it means the same as
	// [ActionKeep]: the framer never removes whole messages.
	ActionDrop
)

func (a Action) String() string {
	switch a {
	case ActionKeep:
		return "keep"
	case ActionChange:
		return "change"
	case ActionDrop:
		return "drop"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Verdict is what a filter returns for a message or an extension. Data is only meaningful for [ActionChange].
type Verdict struct {
	Action Action
	Data   []byte
}

// Keep returns a [ActionKeep] verdict.
func Keep() Verdict { return Verdict{Action: ActionKeep} }

// Drop returns a [ActionDrop] verdict.
func Drop() Verdict { return Verdict{Action: ActionDrop} }

// Change returns a [ActionChange] verdict carrying data. An empty data is a valid replacement.
func Change(data []byte) Verdict {
	if data == nil {
		data = []byte{}
	}
	return Verdict{Action: ActionChange, Data: data}
}

func (v Verdict) String() string {
	if v.Action == ActionChange {
		return fmt.Sprintf("change[%d]", len(v.Data))
	}
	return v.Action.String()
}
