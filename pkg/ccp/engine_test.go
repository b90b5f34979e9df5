// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccp

import (
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/google/ccpemu/pkg/ccp/desc"
	"github.com/google/ccpemu/pkg/ccpconfig"
	"github.com/google/ccpemu/pkg/guestmem"
	"github.com/google/ccpemu/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestNew(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
	e, err := New(nil, guestmem.NewRAM())
	require.NoError(t, err)
	assert.Equal(t, "zen", e.Config().Generation)
	assert.Equal(t, uint64(0x03000000), e.Base())
	_, err = New(&ccpconfig.Config{Queues: 100}, guestmem.NewRAM())
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	env := newEnv(t)
	e := env.e
	env.write(srcAddr, []byte("abc"))
	requireOutcome(t, env.exec(shaDesc(desc.SHA256, true, false, srcAddr, 3, 0)), Applied, nil)
	require.NoError(t, e.WriteLSB(100, []byte{1, 2, 3}))
	e.Write(qreg(1, QueueHead), 0x5000, 4)
	e.Write(qreg(1, QueueControl), CtrlRun, 4)
	e.Reset()
	regs, err := e.Queue(1)
	require.NoError(t, err)
	assert.Equal(t, QueueRegs{Control: CtrlHalt, State: QueueHalted}, regs)
	assert.Equal(t, make([]byte, 4096), env.lsb(0, 4096))
	// The partial hash context is gone: a lazily created one hashes only the new data.
	requireOutcome(t, env.exec(shaDesc(desc.SHA256, false, true, srcAddr, 3, 0)), Applied, nil)
	sum := sha256.Sum256([]byte("abc"))
	assert.Equal(t, reversed(sum[:]), env.lsb(0, 32))
}

func TestExecuteBadQueue(t *testing.T) {
	env := newEnv(t)
	_, err := env.e.Execute(5, desc.Desc{})
	assert.Error(t, err)
	_, err = env.e.Execute(-1, desc.Desc{})
	assert.Error(t, err)
}

func TestLSBBounds(t *testing.T) {
	env := newEnv(t)
	_, err := env.e.ReadLSB(4095, 2)
	assert.ErrorIs(t, err, ErrBounds)
	assert.ErrorIs(t, env.e.WriteLSB(4096, []byte{1}), ErrBounds)
	assert.NoError(t, env.e.WriteLSB(4096, nil))
	lsb := NewLSB(4, 8)
	assert.Equal(t, 32, lsb.Size())
	assert.Equal(t, 4, lsb.Slots())
	lsb.Slot(2)[0] = 0xaa
	assert.Equal(t, byte(0xaa), lsb.Bytes()[16])
	assert.Nil(t, lsb.Slot(4))
	assert.Nil(t, lsb.Slot(-1))
	_, err = lsb.Range(1<<63, 1)
	assert.ErrorIs(t, err, ErrBounds)
	_, err = lsb.Range(0, -1)
	assert.ErrorIs(t, err, ErrBounds)
}

// Queues hammered from several goroutines: each queue hashes its own data with per-queue contexts.
func TestConcurrentQueues(t *testing.T) {
	cfg, err := ccpconfig.Default("zen2")
	require.NoError(t, err)
	cfg.ContextScope = "queue"
	ram := guestmem.NewRAM()
	_, err = ram.AddRegion("sram", 0, int(cfg.SRAMSize))
	require.NoError(t, err)
	e, err := New(cfg, ram)
	require.NoError(t, err)
	iters := testutil.IterCount() / 10
	var g errgroup.Group
	for q := 0; q < cfg.Queues; q++ {
		g.Go(func() error {
			data := []byte(fmt.Sprintf("queue %v data", q))
			src := uint64(0x10000 + q*0x1000)
			ring := uint64(0x1000 + q*0x100)
			if err := ram.Write(src, data); err != nil {
				return err
			}
			descs := []desc.Fields{
				shaDesc(desc.SHA256, true, false, src, 5, q),
				shaDesc(desc.SHA256, false, true, src+5, len(data)-5, q),
			}
			for i, f := range descs {
				if err := ram.Write(ring+uint64(i*desc.Size), f.Encode().Bytes()); err != nil {
					return err
				}
			}
			want := sha256.Sum256(data)
			for i := 0; i < iters; i++ {
				e.Write(qreg(q, QueueTail), ring, 4)
				e.Write(qreg(q, QueueHead), ring+2*desc.Size, 4)
				e.Write(qreg(q, QueueControl), CtrlRun, 4)
				for e.Read(qreg(q, QueueControl), 4)&CtrlHalt == 0 {
				}
				got, err := e.ReadLSB(uint64(q*32), 32)
				if err != nil {
					return err
				}
				if string(got) != string(reversed(want[:])) {
					return fmt.Errorf("queue %v iter %v: bad digest %x", q, i, got)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 0, ram.Outstanding())
}
