// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccp

import (
	"encoding/binary"
	"fmt"

	"github.com/google/ccpemu/pkg/ccpconfig"
	"github.com/google/ccpemu/pkg/log"
)

// Global control region registers.
const (
	GlobalQueueMask = 0x0
	GlobalQueuePrio = 0x4
)

const regSize = 4

// Read performs a register read at the window offset.
// Only aligned 4-byte accesses are supported, everything else reads as 0.
func (e *Engine) Read(offset uint64, size int) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkAccess(offset, size); err != nil {
		log.Logf(0, "ccp: read: %v", err)
		return 0
	}
	return uint64(e.read(offset))
}

// Write performs a register write at the window offset.
// Only aligned 4-byte accesses are supported, everything else is ignored.
func (e *Engine) Write(offset, val uint64, size int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkAccess(offset, size); err != nil {
		log.Logf(0, "ccp: write 0x%x: %v", val, err)
		return
	}
	e.write(offset, uint32(val))
}

// ReadMMIO serves a read of len(data) bytes at the absolute address addr.
func (e *Engine) ReadMMIO(addr uint64, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	offset := addr - uint64(e.cfg.Base)
	if err := e.checkAccess(offset, len(data)); err != nil {
		clear(data)
		return fmt.Errorf("mmio read at 0x%x: %w", addr, err)
	}
	binary.LittleEndian.PutUint32(data, e.read(offset))
	return nil
}

// WriteMMIO serves a write of len(data) bytes at the absolute address addr.
func (e *Engine) WriteMMIO(addr uint64, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	offset := addr - uint64(e.cfg.Base)
	if err := e.checkAccess(offset, len(data)); err != nil {
		return fmt.Errorf("mmio write at 0x%x: %w", addr, err)
	}
	e.write(offset, binary.LittleEndian.Uint32(data))
	return nil
}

func (e *Engine) checkAccess(offset uint64, size int) error {
	if size != regSize {
		return fmt.Errorf("%w: access size %v at 0x%x", ErrUnsupported, size, offset)
	}
	if offset%regSize != 0 {
		return fmt.Errorf("%w: unaligned access at 0x%x", ErrUnsupported, offset)
	}
	if offset >= e.cfg.WindowSize() {
		return fmt.Errorf("%w: offset 0x%x is outside of the 0x%x window",
			ErrUnsupported, offset, e.cfg.WindowSize())
	}
	return nil
}

// decode splits a window offset into a region and a register offset within it.
// q is nil for the global control and config regions.
func (e *Engine) decode(offset uint64) (q *queue, global bool, reg uint64) {
	reg = offset % ccpconfig.RegionSize
	switch {
	case offset < ccpconfig.QueueBase:
		return nil, true, reg
	case offset < e.cfg.ConfigBase():
		return e.queues[(offset-ccpconfig.QueueBase)/ccpconfig.RegionSize], false, reg
	default:
		return nil, false, reg
	}
}

func (e *Engine) read(offset uint64) uint32 {
	q, global, reg := e.decode(offset)
	var val uint32
	switch {
	case global:
		// Queue mask and priority are accepted but inert.
		log.Logf(3, "ccp: global read 0x%x", reg)
	case q != nil:
		val = e.readQueue(q, reg)
	default:
		if reg == ccpconfig.ConfigRegister {
			// The on-chip bootloader waits for bit 0.
			val = 1
		}
		log.Logf(3, "ccp: config read 0x%x = 0x%x", reg, val)
	}
	return val
}

func (e *Engine) write(offset uint64, val uint32) {
	q, global, reg := e.decode(offset)
	switch {
	case global:
		switch reg {
		case GlobalQueueMask, GlobalQueuePrio:
			log.Logf(3, "ccp: global write 0x%x = 0x%x", reg, val)
		default:
			log.Logf(1, "ccp: global write of unknown register 0x%x = 0x%x", reg, val)
		}
	case q != nil:
		e.writeQueue(q, reg, val)
	default:
		log.Logf(3, "ccp: config write 0x%x = 0x%x", reg, val)
	}
}

func (e *Engine) readQueue(q *queue, reg uint64) uint32 {
	var val uint32
	switch reg {
	case QueueControl:
		if q.ctrl&CtrlRun != 0 {
			e.drain(q)
		}
		val = q.ctrl
	case QueueHead:
		val = q.head
	case QueueTail:
		val = q.tail
	case QueueStatus:
		val = q.status
	default:
		log.Logf(1, "ccp: q%v: read of unknown register 0x%x", q.id, reg)
		return 0
	}
	log.Logf(3, "ccp: q%v: read 0x%x = 0x%x", q.id, reg, val)
	return val
}

func (e *Engine) writeQueue(q *queue, reg uint64, val uint32) {
	log.Logf(3, "ccp: q%v: write 0x%x = 0x%x", q.id, reg, val)
	switch reg {
	case QueueControl:
		q.ctrl = val
		if e.cfg.DrainOnWrite && val&CtrlRun != 0 {
			e.drain(q)
		}
	case QueueHead:
		q.head = val
	case QueueTail:
		q.tail = val
	case QueueStatus:
		q.status = val
	default:
		log.Logf(1, "ccp: q%v: write of unknown register 0x%x = 0x%x", q.id, reg, val)
	}
}
