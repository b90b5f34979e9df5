// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccp

import (
	"fmt"

	"github.com/google/ccpemu/pkg/ccp/desc"
	"github.com/google/ccpemu/pkg/guestmem"
)

// view is a temporary mapping of a descriptor operand.
// Local views must be released, scratch views point straight into the LSB.
type view struct {
	data  []byte
	mem   guestmem.Memory
	write bool
}

func (v *view) release(accessed int) {
	if v.mem != nil {
		v.mem.Unmap(v.data, v.write, accessed)
		v.mem = nil
	}
}

// mapOperand maps n bytes at addr in the given memory type.
// The view may be shorter than n for local memory if the backing memory ends early;
// scratch ranges are all-or-nothing.
func (e *Engine) mapOperand(typ desc.MemType, addr uint64, n int, write bool) (*view, error) {
	switch typ {
	case desc.Scratch:
		data, err := e.lsb.Range(addr, n)
		if err != nil {
			return nil, err
		}
		return &view{data: data}, nil
	case desc.Local:
		if n == 0 {
			return &view{}, nil
		}
		data, err := e.mem.Map(addr, n, write)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMemory, err)
		}
		return &view{data: data, mem: e.mem, write: write}, nil
	case desc.System:
		return nil, fmt.Errorf("%w: system memory type", ErrUnsupported)
	}
	return nil, fmt.Errorf("%w: memory type %v", ErrUnsupported, typ)
}

// mapFull is mapOperand that fails on short mappings.
func (e *Engine) mapFull(typ desc.MemType, addr uint64, n int, write bool) (*view, error) {
	v, err := e.mapOperand(typ, addr, n, write)
	if err != nil {
		return nil, err
	}
	if len(v.data) < n {
		v.release(0)
		return nil, fmt.Errorf("%w: mapped 0x%x of 0x%x bytes at %v:0x%x",
			ErrMemory, len(v.data), n, typ, addr)
	}
	return v, nil
}

// readOperand copies n bytes out of the given memory.
func (e *Engine) readOperand(typ desc.MemType, addr uint64, n int) ([]byte, error) {
	v, err := e.mapFull(typ, addr, n, false)
	if err != nil {
		return nil, err
	}
	defer v.release(n)
	return append([]byte(nil), v.data...), nil
}

func (e *Engine) writeOperand(typ desc.MemType, addr uint64, data []byte) error {
	v, err := e.mapFull(typ, addr, len(data), true)
	if err != nil {
		return err
	}
	copy(v.data, data)
	v.release(len(data))
	return nil
}
