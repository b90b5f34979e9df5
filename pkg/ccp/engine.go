// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package ccp emulates the AMD CCP v5 cryptographic co-processor as seen by the PSP.
// Software builds descriptors in local memory, programs queue head/tail registers,
// sets the run bit and polls the control register; the poll drains the queue synchronously.
package ccp

import (
	"fmt"
	"sync"

	"github.com/google/ccpemu/pkg/ccp/desc"
	"github.com/google/ccpemu/pkg/ccpconfig"
	"github.com/google/ccpemu/pkg/guestmem"
	"github.com/google/ccpemu/pkg/inflate"
)

// Engine is one CCP instance. All methods are safe for concurrent use;
// a single mutex serializes every register access and descriptor.
type Engine struct {
	mu     sync.Mutex
	cfg    ccpconfig.Config
	mem    guestmem.Memory
	lsb    *LSB
	queues []*queue
	global streams
	hook   func(*Result)
}

// streams holds the streaming contexts that survive across descriptors.
type streams struct {
	sha     *shaStream
	inflate inflate.Stream
}

func (st *streams) reset() {
	st.sha = nil
	st.inflate.End()
}

// New creates an engine with the given config (nil means zen defaults) on top of guest memory.
func New(cfg *ccpconfig.Config, mem guestmem.Memory) (*Engine, error) {
	if mem == nil {
		return nil, fmt.Errorf("no guest memory")
	}
	var c ccpconfig.Config
	if cfg != nil {
		c = *cfg
	}
	if err := ccpconfig.Complete(&c); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg: c,
		mem: mem,
		lsb: NewLSB(c.LSBSlots, c.LSBSlotSize),
	}
	for i := 0; i < c.Queues; i++ {
		e.queues = append(e.queues, &queue{id: i})
	}
	e.reset()
	return e, nil
}

func (e *Engine) Config() *ccpconfig.Config {
	cfg := e.cfg
	return &cfg
}

func (e *Engine) Base() uint64 {
	return uint64(e.cfg.Base)
}

func (e *Engine) WindowSize() uint64 {
	return e.cfg.WindowSize()
}

// Reset restores the power-on state: halted queues, zeroed LSB, no streaming contexts.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Engine) reset() {
	for _, q := range e.queues {
		q.reset()
	}
	e.global.reset()
	e.lsb.Reset()
}

// SetResultHook installs a callback invoked for every executed descriptor.
// The hook runs with the engine locked and must not call back into the engine.
func (e *Engine) SetResultHook(hook func(*Result)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hook = hook
}

// Execute runs a single descriptor on behalf of the queue, bypassing the queue registers.
func (e *Engine) Execute(queue int, d desc.Desc) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, err := e.queue(queue)
	if err != nil {
		return nil, err
	}
	return e.execute(q, 0, d), nil
}

func (e *Engine) Queue(queue int) (QueueRegs, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, err := e.queue(queue)
	if err != nil {
		return QueueRegs{}, err
	}
	return q.regs(), nil
}

func (e *Engine) queue(id int) (*queue, error) {
	if id < 0 || id >= len(e.queues) {
		return nil, fmt.Errorf("no queue %v, have %v", id, len(e.queues))
	}
	return e.queues[id], nil
}

func (e *Engine) streams(q *queue) *streams {
	if e.cfg.Scope == ccpconfig.ScopeQueue {
		return &q.streams
	}
	return &e.global
}

// ReadLSB returns a copy of n bytes of the local storage block at off.
func (e *Engine) ReadLSB(off uint64, n int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	data, err := e.lsb.Range(off, n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), data...), nil
}

// WriteLSB preloads the local storage block, e.g. with keys.
func (e *Engine) WriteLSB(off uint64, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	dst, err := e.lsb.Range(off, len(data))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}
