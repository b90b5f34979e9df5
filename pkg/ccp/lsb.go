// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccp

import (
	"fmt"
)

// LSB is the local storage block: a scratch store of fixed-size slots
// that is also addressable as one contiguous buffer.
type LSB struct {
	mem      []byte
	slotSize int
}

func NewLSB(slots, slotSize int) *LSB {
	return &LSB{
		mem:      make([]byte, slots*slotSize),
		slotSize: slotSize,
	}
}

func (l *LSB) Slots() int    { return len(l.mem) / l.slotSize }
func (l *LSB) SlotSize() int { return l.slotSize }
func (l *LSB) Size() int     { return len(l.mem) }

// Bytes returns the contiguous view. It aliases the slots.
func (l *LSB) Bytes() []byte {
	return l.mem
}

// Slot returns the view of slot i, or nil if there is no such slot.
func (l *LSB) Slot(i int) []byte {
	if i < 0 || i >= l.Slots() {
		return nil
	}
	return l.mem[i*l.slotSize : (i+1)*l.slotSize : (i+1)*l.slotSize]
}

// Range returns n bytes at byte offset off. The whole range must be inside the store.
func (l *LSB) Range(off uint64, n int) ([]byte, error) {
	if n < 0 || off > uint64(len(l.mem)) || uint64(n) > uint64(len(l.mem))-off {
		return nil, fmt.Errorf("%w: [0x%x, +0x%x) does not fit into 0x%x bytes",
			ErrBounds, off, n, len(l.mem))
	}
	return l.mem[off : off+uint64(n) : off+uint64(n)], nil
}

func (l *LSB) Reset() {
	clear(l.mem)
}
