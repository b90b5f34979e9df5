// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package guestmem models guest physical memory that an emulated device borrows views of.
// A device never owns guest memory: it maps a range for the duration of one operation
// and unmaps it afterwards. A mapping may come back shorter than requested if the
// backing region ends early; callers must treat that as a partial transfer.
package guestmem

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/ccpemu/pkg/osutil"
)

// Memory is the guest memory capability.
type Memory interface {
	// Map returns a view of up to size bytes starting at addr.
	// The returned view is shorter than size if the backing range is shorter.
	// It fails if addr itself is not backed, or if write is requested for read-only memory.
	Map(addr uint64, size int, write bool) ([]byte, error)
	// Unmap releases a view returned by Map. Accessed is the number of bytes actually touched.
	Unmap(view []byte, write bool, accessed int)
}

type Region struct {
	Name     string
	Base     uint64
	Mem      []byte
	ReadOnly bool
	shm      *osutil.SharedMem
}

func (r *Region) End() uint64 {
	return r.Base + uint64(len(r.Mem))
}

func (r *Region) contains(addr uint64) bool {
	return addr >= r.Base && addr < r.End()
}

// RAM is a set of non-overlapping guest memory regions.
type RAM struct {
	mu          sync.Mutex
	regions     []*Region
	outstanding int
	written     uint64
}

func NewRAM() *RAM {
	return &RAM{}
}

// AddRegion adds a zeroed heap-backed region.
func (ram *RAM) AddRegion(name string, base uint64, size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("region %v: bad size %v", name, size)
	}
	return ram.add(&Region{Name: name, Base: base, Mem: make([]byte, size)})
}

// AddSharedRegion adds a region backed by a shared memory file,
// so that the guest memory image can be inspected or populated by another process.
func (ram *RAM) AddSharedRegion(name string, base uint64, size int) (*Region, error) {
	shm, err := osutil.CreateSharedMem(size)
	if err != nil {
		return nil, fmt.Errorf("region %v: %w", name, err)
	}
	reg, err := ram.add(&Region{Name: name, Base: base, Mem: shm.Mem, shm: shm})
	if err != nil {
		shm.Close()
		return nil, err
	}
	return reg, nil
}

// AddROM adds a read-only region holding a copy of data.
func (ram *RAM) AddROM(name string, base uint64, data []byte) (*Region, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("region %v: empty rom", name)
	}
	return ram.add(&Region{Name: name, Base: base, Mem: append([]byte{}, data...), ReadOnly: true})
}

func (ram *RAM) add(reg *Region) (*Region, error) {
	if reg.End() < reg.Base {
		return nil, fmt.Errorf("region %v wraps around the address space", reg.Name)
	}
	ram.mu.Lock()
	defer ram.mu.Unlock()
	for _, other := range ram.regions {
		if reg.Base < other.End() && other.Base < reg.End() {
			return nil, fmt.Errorf("region %v [0x%x-0x%x) overlaps %v [0x%x-0x%x)",
				reg.Name, reg.Base, reg.End(), other.Name, other.Base, other.End())
		}
	}
	ram.regions = append(ram.regions, reg)
	sort.Slice(ram.regions, func(i, j int) bool {
		return ram.regions[i].Base < ram.regions[j].Base
	})
	return reg, nil
}

func (ram *RAM) Regions() []*Region {
	ram.mu.Lock()
	defer ram.mu.Unlock()
	return append([]*Region{}, ram.regions...)
}

func (ram *RAM) find(addr uint64) *Region {
	idx := sort.Search(len(ram.regions), func(i int) bool {
		return ram.regions[i].End() > addr
	})
	if idx == len(ram.regions) || !ram.regions[idx].contains(addr) {
		return nil
	}
	return ram.regions[idx]
}

func (ram *RAM) Map(addr uint64, size int, write bool) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("bad mapping size %v", size)
	}
	ram.mu.Lock()
	defer ram.mu.Unlock()
	reg := ram.find(addr)
	if reg == nil {
		return nil, fmt.Errorf("address 0x%x is not backed by guest memory", addr)
	}
	if write && reg.ReadOnly {
		return nil, fmt.Errorf("address 0x%x is in read-only region %v", addr, reg.Name)
	}
	off := addr - reg.Base
	n := uint64(len(reg.Mem)) - off
	if uint64(size) < n {
		n = uint64(size)
	}
	ram.outstanding++
	return reg.Mem[off : off+n : off+n], nil
}

func (ram *RAM) Unmap(view []byte, write bool, accessed int) {
	ram.mu.Lock()
	defer ram.mu.Unlock()
	if ram.outstanding == 0 {
		panic("guestmem: unbalanced unmap")
	}
	ram.outstanding--
	if write {
		ram.written += uint64(accessed)
	}
}

// Outstanding returns the number of views that were mapped, but not unmapped yet.
func (ram *RAM) Outstanding() int {
	ram.mu.Lock()
	defer ram.mu.Unlock()
	return ram.outstanding
}

// Written returns the total number of bytes reported as written through unmapped views.
func (ram *RAM) Written() uint64 {
	ram.mu.Lock()
	defer ram.mu.Unlock()
	return ram.written
}

// Read copies len(data) bytes from guest memory at addr. The whole range must be backed.
func (ram *RAM) Read(addr uint64, data []byte) error {
	view, err := ram.Map(addr, len(data), false)
	if err != nil {
		return err
	}
	defer ram.Unmap(view, false, len(view))
	if len(view) != len(data) {
		return fmt.Errorf("read of 0x%x bytes at 0x%x crosses the end of guest memory", len(data), addr)
	}
	copy(data, view)
	return nil
}

// Write copies data into guest memory at addr bypassing read-only protection,
// so that host code can populate ROM images. The whole range must be backed.
func (ram *RAM) Write(addr uint64, data []byte) error {
	ram.mu.Lock()
	defer ram.mu.Unlock()
	reg := ram.find(addr)
	if reg == nil {
		return fmt.Errorf("address 0x%x is not backed by guest memory", addr)
	}
	off := addr - reg.Base
	if uint64(len(data)) > uint64(len(reg.Mem))-off {
		return fmt.Errorf("write of 0x%x bytes at 0x%x crosses the end of region %v", len(data), addr, reg.Name)
	}
	copy(reg.Mem[off:], data)
	return nil
}

// Close releases shared memory regions.
func (ram *RAM) Close() error {
	ram.mu.Lock()
	defer ram.mu.Unlock()
	var firstErr error
	for _, reg := range ram.regions {
		if reg.shm == nil {
			continue
		}
		if err := reg.shm.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		reg.Mem = nil
	}
	ram.regions = nil
	return firstErr
}
