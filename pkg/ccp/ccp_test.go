// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccp

import (
	"testing"

	"github.com/google/ccpemu/pkg/ccp/desc"
	"github.com/google/ccpemu/pkg/ccpconfig"
	"github.com/google/ccpemu/pkg/guestmem"
	"github.com/stretchr/testify/require"
)

const (
	sramSize = 0x40000
	ringAddr = 0x1000
	srcAddr  = 0x10000
	dstAddr  = 0x20000
	keyAddr  = 0x30000
)

type env struct {
	t       *testing.T
	e       *Engine
	ram     *guestmem.RAM
	results []*Result
}

func newEnv(t *testing.T, opts ...func(cfg *ccpconfig.Config)) *env {
	cfg, err := ccpconfig.Default("zen")
	require.NoError(t, err)
	for _, opt := range opts {
		opt(cfg)
	}
	ram := guestmem.NewRAM()
	_, err = ram.AddRegion("sram", uint64(cfg.SRAMBase), int(cfg.SRAMSize))
	require.NoError(t, err)
	e, err := New(cfg, ram)
	require.NoError(t, err)
	env := &env{t: t, e: e, ram: ram}
	e.SetResultHook(func(res *Result) {
		env.results = append(env.results, res)
	})
	t.Cleanup(func() {
		if n := ram.Outstanding(); n != 0 {
			t.Errorf("%v guest memory views were not unmapped", n)
		}
	})
	return env
}

func qreg(q int, reg uint64) uint64 {
	return ccpconfig.QueueBase + uint64(q)*ccpconfig.RegionSize + reg
}

func (env *env) write(addr uint64, data []byte) {
	require.NoError(env.t, env.ram.Write(addr, data))
}

func (env *env) read(addr uint64, n int) []byte {
	data := make([]byte, n)
	require.NoError(env.t, env.ram.Read(addr, data))
	return data
}

func (env *env) lsb(off uint64, n int) []byte {
	data, err := env.e.ReadLSB(off, n)
	require.NoError(env.t, err)
	return data
}

// exec runs a single descriptor directly on queue 0.
func (env *env) exec(f desc.Fields) *Result {
	res, err := env.e.Execute(0, f.Encode())
	require.NoError(env.t, err)
	return res
}

// submit places descriptors on the queue ring, starts the queue and polls control once.
func (env *env) submit(q int, descs ...desc.Fields) []*Result {
	ring := uint64(ringAddr + q*0x400)
	for i, f := range descs {
		env.write(ring+uint64(i*desc.Size), f.Encode().Bytes())
	}
	start := len(env.results)
	env.e.Write(qreg(q, QueueTail), ring, 4)
	env.e.Write(qreg(q, QueueHead), ring+uint64(len(descs)*desc.Size), 4)
	env.e.Write(qreg(q, QueueControl), CtrlRun, 4)
	env.e.Read(qreg(q, QueueControl), 4)
	return env.results[start:]
}

func requireOutcome(t *testing.T, res *Result, outcome Outcome, err error) {
	t.Helper()
	require.Equal(t, outcome, res.Outcome, "result: %v", res)
	if err == nil {
		require.NoError(t, res.Err)
	} else {
		require.ErrorIs(t, res.Err, err)
	}
}

func reversed(data []byte) []byte {
	res := append([]byte(nil), data...)
	reverse(res)
	return res
}
