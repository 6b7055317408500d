// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package config loads the machine-properties registry the device
// emulator is parameterized by: which emoji code page a machine
// speaks, how big its screen is, where its memory-mapped regions
// live, and whether its file store encrypts data at rest.
package config

import (
	"fmt"
	"os"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/arucil/gvbasic/charset"
)

// MachineProps describes one pocket-computer model's device profile.
// The Wenquxing-class machines this interpreter targets share a
// bytecode dialect and a 64 KiB address space but disagree on emoji
// code page, screen geometry, and the exact addresses their
// memory-mapped regions sit at.
type MachineProps struct {
	Name         string          `json:"name"`
	EmojiVersion charset.Version `json:"-"`
	EmojiName    string          `json:"emojiVersion"`
	Columns      int             `json:"columns"`
	Rows         int             `json:"rows"`
	SecureFiles  bool            `json:"secureFiles"`

	GraphicsBaseAddr  uint16 `json:"graphicsBaseAddr"`
	TextBufferAddr    uint16 `json:"textBufferAddr"`
	KeyBufferAddr     uint16 `json:"keyBufferAddr"`
	KeyBufferCanQuit  bool   `json:"keyBufferCanQuit"`
	SleepUnitMillis   int64  `json:"sleepUnitMillis"`
}

// SleepUnit is the wall-clock duration one FOR/NEXT timing tick (or
// SLEEP-instruction count) represents on this machine.
func (m MachineProps) SleepUnit() time.Duration {
	return time.Duration(m.SleepUnitMillis) * time.Millisecond
}

// Registry is a loaded `machines.yaml` document: machine name to
// profile.
type Registry struct {
	machines map[string]MachineProps
}

// Load reads a machines.yaml document from path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("加载机型配置失败: %w", err)
	}
	return Parse(data)
}

// Parse decodes a machines.yaml document already read into memory.
func Parse(data []byte) (*Registry, error) {
	var raw map[string]MachineProps
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("机型配置格式错误: %w", err)
	}
	reg := &Registry{machines: make(map[string]MachineProps, len(raw))}
	for name, props := range raw {
		props.Name = name
		switch props.EmojiName {
		case "V1", "v1", "":
			props.EmojiVersion = charset.V1
		case "V2", "v2":
			props.EmojiVersion = charset.V2
		default:
			return nil, fmt.Errorf("机型 %s 配置了未知的 emoji 版本 %q", name, props.EmojiName)
		}
		if props.Columns == 0 {
			props.Columns = 20
		}
		if props.Rows == 0 {
			props.Rows = 5
		}
		reg.machines[name] = props
	}
	return reg, nil
}

// Lookup returns the named machine's properties, or
// MachinePropNotFoundError if the registry has no such entry.
func (r *Registry) Lookup(name string) (MachineProps, error) {
	props, ok := r.machines[name]
	if !ok {
		return MachineProps{}, MachinePropNotFoundError{Name: name}
	}
	return props, nil
}

// Names returns every machine name the registry knows, in
// unspecified order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.machines))
	for name := range r.machines {
		names = append(names, name)
	}
	return names
}

// MachinePropNotFoundError reports that a document's `machine:`
// directive named a model absent from the loaded registry.
type MachinePropNotFoundError struct {
	Name string
}

func (e MachinePropNotFoundError) Error() string {
	return fmt.Sprintf("未找到机型 %q 的配置", e.Name)
}

// DefaultProps is the built-in CX-990-class profile used when no
// machines.yaml is loaded (e.g. in tests, or a document with no
// machine: directive under emoji version V2).
func DefaultProps() MachineProps {
	return MachineProps{
		Name:             "CX-990",
		EmojiVersion:     charset.V2,
		EmojiName:        "V2",
		Columns:          20,
		Rows:             5,
		GraphicsBaseAddr: 0x4000,
		TextBufferAddr:   0x7000,
		KeyBufferAddr:    0x78,
		KeyBufferCanQuit: true,
		SleepUnitMillis:  10,
	}
}
