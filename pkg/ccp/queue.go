// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccp

import (
	"fmt"

	"github.com/google/ccpemu/pkg/ccp/desc"
	"github.com/google/ccpemu/pkg/log"
)

// Queue register offsets within a queue region.
const (
	QueueControl = 0x0
	QueueHead    = 0x4
	QueueTail    = 0x8
	QueueStatus  = 0x100
)

// Control register bits.
const (
	CtrlRun  = 1 << 0
	CtrlHalt = 1 << 1
)

const (
	StatusSuccess = 0
	StatusError   = 1
)

type QueueState int

const (
	// QueueHalted is the reset state and the state after a drain.
	QueueHalted QueueState = iota
	// QueueRunning means run was requested and the next control read drains the queue.
	QueueRunning
	QueueDraining
)

func (s QueueState) String() string {
	switch s {
	case QueueHalted:
		return "halted"
	case QueueRunning:
		return "running"
	case QueueDraining:
		return "draining"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type queue struct {
	id       int
	ctrl     uint32
	head     uint32
	tail     uint32
	status   uint32
	draining bool
	streams  streams
}

// QueueRegs is a snapshot of queue registers.
type QueueRegs struct {
	Control uint32
	Head    uint32
	Tail    uint32
	Status  uint32
	State   QueueState
}

func (q *queue) state() QueueState {
	switch {
	case q.draining:
		return QueueDraining
	case q.ctrl&CtrlRun != 0:
		return QueueRunning
	default:
		return QueueHalted
	}
}

func (q *queue) reset() {
	q.ctrl = CtrlHalt
	q.head = 0
	q.tail = 0
	q.status = StatusSuccess
	q.draining = false
	q.streams.reset()
}

func (q *queue) regs() QueueRegs {
	return QueueRegs{
		Control: q.ctrl,
		Head:    q.head,
		Tail:    q.tail,
		Status:  q.status,
		State:   q.state(),
	}
}

// drain executes all descriptors in [tail, head) in ascending order and halts the queue.
func (e *Engine) drain(q *queue) {
	log.Logf(2, "ccp: q%v: processing tail=0x%x head=0x%x", q.id, q.tail, q.head)
	q.ctrl &^= CtrlRun | CtrlHalt
	q.draining = true
	failed, count := false, 0
	// 64-bit cursor, a tail close to 4GiB must not wrap around.
	for addr := uint64(q.tail); addr < uint64(q.head); addr += desc.Size {
		count++
		d, err := e.fetch(addr)
		if err != nil {
			e.report(&Result{Queue: q.id, Addr: addr, Outcome: Faulted, Err: err})
			failed = true
			continue
		}
		if res := e.execute(q, addr, d); res.Outcome != Applied {
			failed = true
		}
	}
	q.draining = false
	q.tail = q.head
	q.status = StatusSuccess
	if failed && e.cfg.StrictStatus {
		q.status = StatusError
	}
	q.ctrl |= CtrlHalt
	statDrains.Add(1)
	statDrainLen.Add(count)
}
