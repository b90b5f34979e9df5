// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccp

import (
	"fmt"

	"github.com/google/ccpemu/pkg/ccp/desc"
	"github.com/google/ccpemu/pkg/log"
)

// execute runs one descriptor fetched from addr on queue q and reports the result.
func (e *Engine) execute(q *queue, addr uint64, d desc.Desc) *Result {
	log.Logf(2, "ccp: q%v: executing 0x%x: %v", q.id, addr, d)
	statDescs.Add(1)
	if st := statEngines[d.Engine()]; st != nil {
		st.Add(1)
	}
	err := e.dispatch(q, d)
	res := &Result{
		Queue:   q.id,
		Addr:    addr,
		Desc:    d,
		Outcome: classify(err),
		Err:     err,
	}
	e.report(res)
	return res
}

func (e *Engine) dispatch(q *queue, d desc.Desc) error {
	switch engine := d.Engine(); engine {
	case desc.AES, desc.XTS, desc.DES3, desc.ECC:
		return fmt.Errorf("%w: engine %v", ErrUnimplemented, engine)
	case desc.SHA:
		return e.execSHA(q, d)
	case desc.RSA:
		return e.execRSA(q, d)
	case desc.Passthru:
		return e.execPassthru(q, d)
	case desc.Zlib:
		return e.execZlib(q, d)
	default:
		return fmt.Errorf("%w: unknown engine 0x%x", ErrUnimplemented, uint8(engine))
	}
}

func (e *Engine) report(res *Result) {
	switch res.Outcome {
	case Skipped:
		statSkipped.Add(1)
		log.Logf(1, "ccp: %v", res)
	case Faulted:
		statFaulted.Add(1)
		log.Logf(0, "ccp: %v", res)
	}
	if e.hook != nil {
		e.hook(res)
	}
}

// fetch reads the descriptor at addr from local memory.
func (e *Engine) fetch(addr uint64) (desc.Desc, error) {
	v, err := e.mapFull(desc.Local, addr, desc.Size, false)
	if err != nil {
		return desc.Desc{}, fmt.Errorf("descriptor fetch: %w", err)
	}
	defer v.release(desc.Size)
	return desc.Decode(v.data)
}
