// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccpconfig

import (
	"fmt"

	"github.com/google/ccpemu/pkg/config"
	"github.com/google/ccpemu/pkg/inflate"
)

// Default returns a completed config for the generation.
func Default(generation string) (*Config, error) {
	cfg := &Config{Generation: generation}
	if err := Complete(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadData(data []byte) (*Config, error) {
	cfg := new(Config)
	if err := config.LoadData(data, cfg); err != nil {
		return nil, err
	}
	if err := Complete(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadFile(filename string) (*Config, error) {
	cfg := new(Config)
	if err := config.LoadFile(filename, cfg); err != nil {
		return nil, err
	}
	if err := Complete(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Complete fills in defaults from the generation preset and validates the result.
func Complete(cfg *Config) error {
	if cfg.Generation == "" {
		cfg.Generation = "zen"
	}
	gen, ok := Generations[cfg.Generation]
	if !ok {
		return fmt.Errorf("config param generation must be one of zen/zen+/zen2, got %q", cfg.Generation)
	}
	if cfg.Base == 0 {
		cfg.Base = Addr(gen.CCPBase)
	}
	if cfg.SRAMSize == 0 {
		cfg.SRAMBase = Addr(gen.SRAMBase)
		cfg.SRAMSize = Addr(gen.SRAMSize)
	}
	if cfg.Queues == 0 {
		cfg.Queues = DefaultQueues
	}
	if cfg.LSBSlots == 0 {
		cfg.LSBSlots = DefaultLSBSlots
	}
	if cfg.LSBSlotSize == 0 {
		cfg.LSBSlotSize = DefaultLSBSlotSize
	}
	if cfg.InflateChunk == 0 {
		cfg.InflateChunk = DefaultInflateChunk
	}
	if cfg.Queues < 1 || cfg.Queues > MaxQueues {
		return fmt.Errorf("bad config param queues: '%v', want [1, %v]", cfg.Queues, MaxQueues)
	}
	if cfg.LSBSlots < 1 || cfg.LSBSlots > 256 {
		return fmt.Errorf("bad config param lsb_slots: '%v', want [1, 256]", cfg.LSBSlots)
	}
	if cfg.LSBSlotSize < 4 || cfg.LSBSlotSize%4 != 0 {
		return fmt.Errorf("bad config param lsb_slot_size: '%v', want a positive multiple of 4",
			cfg.LSBSlotSize)
	}
	if cfg.InflateChunk < 0 || cfg.InflateChunk > 1<<20 {
		return fmt.Errorf("bad config param inflate_chunk: '%v', want [1, %v]", cfg.InflateChunk, 1<<20)
	}
	if cfg.Base%RegionSize != 0 {
		return fmt.Errorf("config param base 0x%x is not aligned to 0x%x", uint64(cfg.Base), RegionSize)
	}
	if uint64(cfg.Base)+cfg.WindowSize() < uint64(cfg.Base) {
		return fmt.Errorf("config param base 0x%x: MMIO window overflows", uint64(cfg.Base))
	}
	if uint64(cfg.SRAMBase)+uint64(cfg.SRAMSize) < uint64(cfg.SRAMBase) {
		return fmt.Errorf("config param sram_base/sram_size overflow")
	}
	if cfg.SRAMSize != 0 && uint64(cfg.SRAMBase) < uint64(cfg.Base)+cfg.WindowSize() &&
		uint64(cfg.Base) < uint64(cfg.SRAMBase)+uint64(cfg.SRAMSize) {
		return fmt.Errorf("SRAM [0x%x-0x%x) overlaps with the MMIO window at 0x%x",
			uint64(cfg.SRAMBase), uint64(cfg.SRAMBase+cfg.SRAMSize), uint64(cfg.Base))
	}
	switch cfg.ContextScope {
	case "", "global":
		cfg.ContextScope = "global"
		cfg.Scope = ScopeGlobal
	case "queue":
		cfg.Scope = ScopeQueue
	default:
		return fmt.Errorf("config param context_scope must be one of global/queue")
	}
	format, err := inflate.ParseFormat(cfg.InflateFormat)
	if err != nil {
		return fmt.Errorf("config param inflate_format: %w", err)
	}
	cfg.Inflate = format
	cfg.InflateFormat = format.String()
	return nil
}
