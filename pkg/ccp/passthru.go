// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccp

import (
	"fmt"

	"github.com/google/ccpemu/pkg/ccp/desc"
)

const swapWord = 32

func (e *Engine) execPassthru(q *queue, d desc.Desc) error {
	fn := d.Function()
	if op := fn.Bitwise(); op != desc.BitwiseNone {
		return fmt.Errorf("%w: passthrough bitwise %v", ErrUnimplemented, op)
	}
	swap := fn.Byteswap()
	if swap != desc.SwapNone && swap != desc.Swap256 {
		return fmt.Errorf("%w: passthrough byteswap %v", ErrUnimplemented, swap)
	}
	n := int(d.Length())
	if swap == desc.Swap256 && n%swapWord != 0 {
		return fmt.Errorf("%w: unaligned 256-bit byteswap of 0x%x bytes", ErrUnsupported, n)
	}
	src, err := e.mapFull(d.SrcMem(), d.Src(), n, false)
	if err != nil {
		return fmt.Errorf("passthrough source: %w", err)
	}
	defer src.release(n)
	dst, err := e.mapFull(d.DstMem(), d.Dst(), n, true)
	if err != nil {
		return fmt.Errorf("passthrough destination: %w", err)
	}
	defer dst.release(n)
	copy(dst.data, src.data)
	if swap == desc.Swap256 {
		if e.cfg.WholeBufferByteswap {
			reverse(dst.data)
		} else {
			for off := 0; off < n; off += swapWord {
				reverse(dst.data[off : off+swapWord])
			}
		}
	}
	return nil
}
