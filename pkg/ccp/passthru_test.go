// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccp

import (
	"bytes"
	"testing"

	"github.com/google/ccpemu/pkg/ccp/desc"
	"github.com/google/ccpemu/pkg/ccpconfig"
	"github.com/stretchr/testify/assert"
)

func ptDesc(swap desc.Byteswap, n int, srcMem desc.MemType, src uint64, dstMem desc.MemType, dst uint64) desc.Fields {
	return desc.Fields{
		Engine:   desc.Passthru,
		Function: desc.PassthruFunction(swap, desc.BitwiseNone, 0),
		Length:   uint32(n),
		Src:      src,
		SrcMem:   srcMem,
		Dst:      dst,
		DstMem:   dstMem,
	}
}

func pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i + 1)
	}
	return data
}

func TestPassthru(t *testing.T) {
	data := pattern(64)
	perWord := append(reversed(data[:32]), reversed(data[32:])...)
	tests := []struct {
		name  string
		whole bool
		swap  desc.Byteswap
		want  []byte
	}{
		{"copy", false, desc.SwapNone, data},
		{"swap256", false, desc.Swap256, perWord},
		{"swap256-whole", true, desc.Swap256, reversed(data)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			env := newEnv(t, func(cfg *ccpconfig.Config) {
				cfg.WholeBufferByteswap = test.whole
			})
			env.write(srcAddr, data)
			res := env.exec(ptDesc(test.swap, len(data), desc.Local, srcAddr, desc.Local, dstAddr))
			requireOutcome(t, res, Applied, nil)
			assert.Equal(t, test.want, env.read(dstAddr, len(data)))
			assert.Equal(t, data, env.read(srcAddr, len(data)))
		})
	}
}

// Both byteswap flavors agree on a single 32-byte word.
func TestPassthruSingleWord(t *testing.T) {
	for _, whole := range []bool{false, true} {
		env := newEnv(t, func(cfg *ccpconfig.Config) {
			cfg.WholeBufferByteswap = whole
		})
		env.write(srcAddr, pattern(32))
		requireOutcome(t, env.exec(ptDesc(desc.Swap256, 32, desc.Local, srcAddr, desc.Scratch, 64)),
			Applied, nil)
		assert.Equal(t, reversed(pattern(32)), env.lsb(64, 32))
	}
}

func TestPassthruScratch(t *testing.T) {
	env := newEnv(t)
	env.write(srcAddr, pattern(96))
	requireOutcome(t, env.exec(ptDesc(desc.SwapNone, 96, desc.Local, srcAddr, desc.Scratch, 4000)),
		Applied, nil)
	assert.Equal(t, pattern(96), env.lsb(4000, 96))
	requireOutcome(t, env.exec(ptDesc(desc.SwapNone, 96, desc.Scratch, 4000, desc.Scratch, 3950)),
		Applied, nil)
	assert.Equal(t, pattern(96), env.lsb(3950, 96))
	requireOutcome(t, env.exec(ptDesc(desc.SwapNone, 96, desc.Scratch, 3950, desc.Local, dstAddr)),
		Applied, nil)
	assert.Equal(t, pattern(96), env.read(dstAddr, 96))
}

func TestPassthruErrors(t *testing.T) {
	tests := []struct {
		name    string
		fields  desc.Fields
		outcome Outcome
		err     error
	}{
		{"bitwise", func() desc.Fields {
			f := ptDesc(desc.SwapNone, 64, desc.Local, srcAddr, desc.Local, dstAddr)
			f.Function = desc.PassthruFunction(desc.SwapNone, desc.BitwiseAnd, 0)
			return f
		}(), Skipped, ErrUnimplemented},
		{"swap32", ptDesc(desc.Swap32, 64, desc.Local, srcAddr, desc.Local, dstAddr), Skipped, ErrUnimplemented},
		{"swap-reserved", ptDesc(desc.Byteswap(3), 64, desc.Local, srcAddr, desc.Local, dstAddr),
			Skipped, ErrUnimplemented},
		{"unaligned-swap", ptDesc(desc.Swap256, 48, desc.Local, srcAddr, desc.Local, dstAddr),
			Skipped, ErrUnsupported},
		{"system", ptDesc(desc.SwapNone, 64, desc.System, srcAddr, desc.Local, dstAddr),
			Skipped, ErrUnsupported},
		{"memtype-reserved", ptDesc(desc.SwapNone, 64, desc.Local, srcAddr, desc.MemType(3), dstAddr),
			Skipped, ErrUnsupported},
		{"short-src", ptDesc(desc.SwapNone, 64, desc.Local, sramSize-32, desc.Local, dstAddr),
			Faulted, ErrMemory},
		{"scratch-dst-bounds", ptDesc(desc.SwapNone, 64, desc.Local, srcAddr, desc.Scratch, 4064),
			Faulted, ErrBounds},
		{"scratch-dst-huge", ptDesc(desc.SwapNone, 1<<31, desc.Local, srcAddr, desc.Scratch, 0),
			Faulted, ErrMemory},
		{"scratch-src-offset", ptDesc(desc.SwapNone, 1, desc.Scratch, 1<<40, desc.Local, dstAddr),
			Faulted, ErrBounds},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			env := newEnv(t)
			env.write(srcAddr, pattern(64))
			res := env.exec(test.fields)
			requireOutcome(t, res, test.outcome, test.err)
			assert.Equal(t, make([]byte, 64), env.read(dstAddr, 64))
			assert.True(t, bytes.Equal(make([]byte, 4096), env.lsb(0, 4096)))
		})
	}
}
