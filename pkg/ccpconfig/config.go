// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package ccpconfig contains the construction-time configuration of a CCP engine instance.
package ccpconfig

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/ccpemu/pkg/inflate"
)

type Config struct {
	// PSP generation preset: "zen", "zen+" or "zen2" (default "zen").
	// The preset supplies defaults for base and SRAM geometry.
	Generation string `json:"generation"`
	// Guest physical address of the MMIO window.
	// Both JSON numbers and hex strings ("0x3000000") are accepted for addresses.
	Base Addr `json:"base"`
	// Number of command queues (default 5).
	Queues int `json:"queues"`
	// Local storage block geometry (default 128 slots of 32 bytes).
	LSBSlots    int `json:"lsb_slots"`
	LSBSlotSize int `json:"lsb_slot_size"`
	// Location and size of the PSP SRAM that descriptors address with the LOCAL memory type.
	SRAMBase Addr `json:"sram_base"`
	SRAMSize Addr `json:"sram_size"`
	// Scope of streaming hash/inflate contexts: "global" (one per engine, default)
	// or "queue" (one per queue).
	ContextScope string `json:"context_scope"`
	// Set queue status to error if any descriptor in a drain failed or was skipped.
	StrictStatus bool `json:"strict_status"`
	// Drain queues on control register writes, not only on reads.
	DrainOnWrite bool `json:"drain_on_write"`
	// Reverse the whole passthrough buffer for 256-bit byteswap
	// instead of reversing every 32-byte word.
	WholeBufferByteswap bool `json:"whole_buffer_byteswap"`
	// Compressed stream format for the zlib engine: "zlib" (default) or "raw".
	InflateFormat string `json:"inflate_format"`
	// Size of the output chunk mapped by the zlib engine (default 4096).
	InflateChunk int `json:"inflate_chunk"`

	// Derived values, filled in by Complete.
	Scope   Scope          `json:"-"`
	Inflate inflate.Format `json:"-"`
}

type Scope int

const (
	ScopeGlobal Scope = iota
	ScopeQueue
)

func (s Scope) String() string {
	if s == ScopeQueue {
		return "queue"
	}
	return "global"
}

// Addr is a guest address that can be specified as a JSON number or a string in any Go integer syntax.
type Addr uint64

func (a *Addr) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		if val < 0 || val != float64(uint64(val)) {
			return fmt.Errorf("bad address %v", val)
		}
		*a = Addr(val)
	case string:
		u, err := strconv.ParseUint(strings.ReplaceAll(val, "_", ""), 0, 64)
		if err != nil {
			return fmt.Errorf("bad address %q: %w", val, err)
		}
		*a = Addr(u)
	default:
		return fmt.Errorf("bad address %s", data)
	}
	return nil
}

func (a Addr) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("0x%x", uint64(a)))
}

type Generation struct {
	Name     string
	CCPBase  uint64
	SRAMBase uint64
	SRAMSize uint64
}

var Generations = map[string]Generation{
	"zen": {
		Name:     "zen",
		CCPBase:  0x03000000,
		SRAMSize: 0x40000,
	},
	"zen+": {
		Name:     "zen+",
		CCPBase:  0x03000000,
		SRAMSize: 0x40000,
	},
	"zen2": {
		Name:     "zen2",
		CCPBase:  0x03000000,
		SRAMSize: 0x50000,
	},
}

const (
	DefaultQueues       = 5
	MaxQueues           = 15
	DefaultLSBSlots     = 128
	DefaultLSBSlotSize  = 32
	DefaultInflateChunk = 4096

	// The control region, each queue region and the config region are 4KiB each.
	RegionSize     = 0x1000
	QueueBase      = 0x1000
	ConfigRegister = 0x38
)

// WindowSize returns the MMIO window size for the configured number of queues.
func (cfg *Config) WindowSize() uint64 {
	return uint64(2+cfg.Queues) * RegionSize
}

// ConfigBase returns the window offset of the global config region.
func (cfg *Config) ConfigBase() uint64 {
	return QueueBase + uint64(cfg.Queues)*RegionSize
}

func (cfg *Config) LSBSize() int {
	return cfg.LSBSlots * cfg.LSBSlotSize
}
