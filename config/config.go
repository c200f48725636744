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

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Jigsaw-Code/tlsmutate/extfilter"
	"github.com/Jigsaw-Code/tlsmutate/handshake"
)

// BuildFunc creates the filter for one stage of a config. arg is the text after the extension name, and is empty
// when there is none.
type BuildFunc func(t handshake.ExtensionType, arg string) (extfilter.Filter, error)

// Registry maps stage types, like "truncate", to the functions that build them.
type Registry struct {
	builders map[string]BuildFunc
}

// RegisterType will register a factory for the given stage type.
func (r *Registry) RegisterType(name string, build BuildFunc) error {
	if r.builders == nil {
		r.builders = make(map[string]BuildFunc)
	}
	if _, found := r.builders[name]; found {
		return fmt.Errorf("type %v registered twice", name)
	}
	r.builders[name] = build
	return nil
}

// NewDefaultRegistry creates a [Registry] with every mutator registered.
func NewDefaultRegistry() *Registry {
	r := new(Registry)
	// Please keep the list in alphabetical order.
	r.RegisterType("capture", newCapture)
	r.RegisterType("damage", newDamager)
	r.RegisterType("drop", newDropper)
	r.RegisterType("inject", newInjector)
	r.RegisterType("replace", newReplacer)
	r.RegisterType("truncate", newTruncator)
	return r
}

// Pipeline is the filter described by a config, with the capture stages it contains.
type Pipeline struct {
	Filter   extfilter.Filter
	Captures []*extfilter.CaptureFilter
}

// Stage is one part of a config, of the form "<type>:<extension>[/<arg>]".
type Stage struct {
	Type      string
	Extension handshake.ExtensionType
	Arg       string
}

// ParseConfig splits a config into its stages, in the order they run.
func ParseConfig(configText string) ([]Stage, error) {
	parts := strings.Split(strings.TrimSpace(configText), "|")
	if len(parts) == 1 && parts[0] == "" {
		return nil, nil
	}

	stages := make([]Stage, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, errors.New("empty config part")
		}
		u, err := url.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("part is not a valid URL: %w", err)
		}
		if u.Scheme == "" || u.Opaque == "" {
			return nil, fmt.Errorf("part %q must have the form <type>:<extension>[/<arg>]", part)
		}
		name, arg, _ := strings.Cut(u.Opaque, "/")
		ext, err := handshake.ParseExtensionType(name)
		if err != nil {
			return nil, fmt.Errorf("invalid part %q: %w", part, err)
		}
		stages = append(stages, Stage{Type: strings.ToLower(u.Scheme), Extension: ext, Arg: arg})
	}
	return stages, nil
}

// NewPipeline creates the filter described by configText. Stages run in the order written. An empty config keeps
// every message.
func (r *Registry) NewPipeline(configText string) (*Pipeline, error) {
	stages, err := ParseConfig(configText)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{}
	filters := make([]extfilter.Filter, 0, len(stages))
	for _, s := range stages {
		build, ok := r.builders[s.Type]
		if !ok {
			return nil, fmt.Errorf("config type '%v' is not registered", s.Type)
		}
		f, err := build(s.Extension, s.Arg)
		if err != nil {
			return nil, fmt.Errorf("failed to create %v stage for %v: %w", s.Type, s.Extension, err)
		}
		if c, ok := f.(*extfilter.CaptureFilter); ok {
			p.Captures = append(p.Captures, c)
		}
		filters = append(filters, f)
	}
	if len(filters) == 1 {
		p.Filter = filters[0]
	} else {
		p.Filter = extfilter.Chain(filters...)
	}
	return p, nil
}

// ParseFilter creates a [Pipeline] from configText using the default registry.
func ParseFilter(configText string) (*Pipeline, error) {
	return NewDefaultRegistry().NewPipeline(configText)
}

func noArg(arg string) error {
	if arg != "" {
		return fmt.Errorf("unexpected argument %q", arg)
	}
	return nil
}

func parseCount(arg string) (int, error) {
	if arg == "" {
		return 0, errors.New("missing number")
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid number %q", arg)
	}
	return n, nil
}

func newCapture(t handshake.ExtensionType, arg string) (extfilter.Filter, error) {
	if err := noArg(arg); err != nil {
		return nil, err
	}
	return extfilter.Capture(t), nil
}

func newDamager(t handshake.ExtensionType, arg string) (extfilter.Filter, error) {
	index, err := parseCount(arg)
	if err != nil {
		return nil, err
	}
	return extfilter.Damager(t, index), nil
}

func newDropper(t handshake.ExtensionType, arg string) (extfilter.Filter, error) {
	if err := noArg(arg); err != nil {
		return nil, err
	}
	return extfilter.Dropper(t), nil
}

func newInjector(t handshake.ExtensionType, arg string) (extfilter.Filter, error) {
	data, err := ParsePayload(arg)
	if err != nil {
		return nil, err
	}
	return extfilter.Injector(t, data), nil
}

func newReplacer(t handshake.ExtensionType, arg string) (extfilter.Filter, error) {
	data, err := ParsePayload(arg)
	if err != nil {
		return nil, err
	}
	return extfilter.Replacer(t, data), nil
}

func newTruncator(t handshake.ExtensionType, arg string) (extfilter.Filter, error) {
	n, err := parseCount(arg)
	if err != nil {
		return nil, err
	}
	return extfilter.Truncator(t, n), nil
}
