// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccp

import (
	"fmt"

	"github.com/google/ccpemu/pkg/ccp/desc"
	"github.com/google/ccpemu/pkg/log"
)

// execZlib decompresses the source into one output chunk at the destination.
// Only single-shot streams (init and eom in the same descriptor) are supported.
func (e *Engine) execZlib(q *queue, d desc.Desc) error {
	if !d.Init() || !d.EOM() {
		return fmt.Errorf("%w: multi-descriptor decompression (init=%v eom=%v)",
			ErrUnimplemented, d.Init(), d.EOM())
	}
	st := e.streams(q)
	if err := st.inflate.Init(e.cfg.Inflate); err != nil {
		return fmt.Errorf("%w: %w", ErrInflate, err)
	}
	defer st.inflate.End()
	n := int(d.Length())
	src, err := e.mapFull(d.SrcMem(), d.Src(), n, false)
	if err != nil {
		return fmt.Errorf("zlib source: %w", err)
	}
	defer src.release(n)
	chunk := e.cfg.InflateChunk
	if d.DstMem() == desc.Scratch && d.Dst() < uint64(e.lsb.Size()) {
		// Clip to the end of the LSB like a short LOCAL mapping.
		chunk = min(chunk, e.lsb.Size()-int(d.Dst()))
	}
	dst, err := e.mapOperand(d.DstMem(), d.Dst(), chunk, true)
	if err != nil {
		return fmt.Errorf("zlib destination: %w", err)
	}
	if len(dst.data) < e.cfg.InflateChunk {
		log.Logf(0, "ccp: q%v: zlib destination 0x%x mapped 0x%x of 0x%x bytes",
			q.id, d.Dst(), len(dst.data), e.cfg.InflateChunk)
	}
	out, done, err := st.inflate.Inflate(dst.data, src.data)
	dst.release(out)
	statInflated.Add(out)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInflate, err)
	}
	if !done {
		log.Logf(0, "ccp: q%v: zlib output truncated to 0x%x bytes", q.id, out)
	}
	return nil
}
