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
	"strings"

	"github.com/Jigsaw-Code/tlsmutate/alert"
	"github.com/goccy/go-yaml"
)

// Scenario is one handshake to attempt, with the filter to apply and the outcome to expect.
type Scenario struct {
	Name       string   `yaml:"name"`
	Filter     string   `yaml:"filter"`
	ServerName string   `yaml:"server_name"`
	ALPN       []string `yaml:"alpn"`
	Expect     string   `yaml:"expect"`
}

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadScenarios decodes a YAML scenario file of the form:
//
//	scenarios:
//	  - name: truncated-sni
//	    filter: truncate:server_name/7
//	    expect: alert:decode_error
//
// Every filter and expectation is validated, so a file that loads can be run.
func LoadScenarios(data []byte) ([]Scenario, error) {
	var f scenarioFile
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to decode scenarios: %w", err)
	}
	seen := make(map[string]bool, len(f.Scenarios))
	for i, s := range f.Scenarios {
		if s.Name == "" {
			return nil, fmt.Errorf("scenario %d has no name", i)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("scenario %q defined twice", s.Name)
		}
		seen[s.Name] = true
		if _, err := ParseFilter(s.Filter); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		if _, err := ParseExpectation(s.Expect); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
	}
	return f.Scenarios, nil
}

// Expectation is the outcome a scenario expects.
type Expectation struct {
	// Success is set when the handshake must complete.
	Success bool
	// Description is the alert that must be received, when HasDescription is set. Otherwise any alert matches.
	Description    alert.Description
	HasDescription bool
}

// ParseExpectation parses "success", "alert" or "alert:<description>". The empty string means "success".
func ParseExpectation(text string) (Expectation, error) {
	text = strings.TrimSpace(text)
	switch text {
	case "", "success":
		return Expectation{Success: true}, nil
	case "alert":
		return Expectation{}, nil
	}
	name, ok := strings.CutPrefix(text, "alert:")
	if !ok {
		return Expectation{}, fmt.Errorf("invalid expectation %q", text)
	}
	desc, err := alert.ParseDescription(name)
	if err != nil {
		return Expectation{}, err
	}
	return Expectation{Description: desc, HasDescription: true}, nil
}

func (e Expectation) String() string {
	switch {
	case e.Success:
		return "success"
	case e.HasDescription:
		return "alert:" + e.Description.String()
	default:
		return "alert"
	}
}

// Outcome is the result of a handshake, as seen by the side that ran it.
type Outcome struct {
	Err error
	// Alert is set when the peer sent a plaintext alert, described by Level and Description.
	Alert       bool
	Level       alert.Level
	Description alert.Description
}

// Check returns nil if o satisfies e, and an error describing the mismatch otherwise.
func (e Expectation) Check(o Outcome) error {
	if e.Success {
		if o.Err != nil {
			return fmt.Errorf("expected success, handshake failed: %w", o.Err)
		}
		return nil
	}
	if o.Err == nil {
		return errors.New("expected an alert, handshake succeeded")
	}
	if !o.Alert {
		return fmt.Errorf("expected an alert, handshake failed without one: %w", o.Err)
	}
	if e.HasDescription && o.Description != e.Description {
		return fmt.Errorf("expected alert %v, received %v", e.Description, o.Description)
	}
	return nil
}
