// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// ccp-stress submits random descriptor batches to parallel emulator instances
// and checks that every drain leaves the queue in a consistent state.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/ccpemu/pkg/ccp"
	"github.com/google/ccpemu/pkg/ccp/desc"
	"github.com/google/ccpemu/pkg/ccpconfig"
	"github.com/google/ccpemu/pkg/guestmem"
	"github.com/google/ccpemu/pkg/log"
	"github.com/google/ccpemu/pkg/stat"
	"github.com/google/ccpemu/pkg/tool"
	"golang.org/x/sync/errgroup"
)

var (
	flagConfig = flag.String("config", "", "engine config file (JSON)")
	flagProcs  = flag.Int("procs", runtime.NumCPU(), "number of parallel engines")
	flagIters  = flag.Int("iters", 1000, "batches per engine (0 for infinite loop)")
	flagBatch  = flag.Int("batch", 16, "max descriptors per batch")
	flagSeed   = flag.Int64("seed", 0, "random seed (0 for time-based)")
	flagHTTP   = flag.String("http", "", "serve /metrics and /stats on this address")
)

const (
	ringOff = 0x1000
	dataOff = 0x8000
)

var statBatches = stat.New("stress batches", "Number of submitted descriptor batches",
	stat.Console, stat.Rate{}, stat.Prometheus("ccp_stress_batches"))

func main() {
	defer tool.Init()()
	log.EnableLogCaching(1000, 1<<20)
	cfg, err := loadConfig()
	if err != nil {
		tool.Fail(err)
	}
	if uint64(cfg.SRAMSize) < 2*dataOff {
		tool.Failf("sram_size 0x%x is too small for stress", uint64(cfg.SRAMSize))
	}
	seed := *flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Logf(0, "seed %v, %v engines", seed, *flagProcs)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	if *flagHTTP != "" {
		go func() {
			if err := stat.Serve(ctx, *flagHTTP); err != nil {
				log.Errorf("http server failed: %v", err)
			}
		}()
	}
	var total atomic.Uint64
	for pid := 0; pid < *flagProcs; pid++ {
		s := &stresser{
			cfg: cfg,
			rnd: rand.New(rand.NewSource(seed + int64(pid)*1e12)),
		}
		g.Go(func() error {
			err := s.loop(ctx)
			total.Add(s.descs)
			if err != nil {
				return fmt.Errorf("engine %v: %w", pid, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Printf("recent engine log:\n%s", log.CachedLogOutput())
		tool.Fail(err)
	}
	log.Logf(0, "executed %v descriptors", total.Load())
	for _, v := range stat.Collect(stat.All) {
		fmt.Printf("%-30v: %v\n", v.Name, v.Value)
	}
}

func loadConfig() (*ccpconfig.Config, error) {
	if *flagConfig == "" {
		return ccpconfig.Default("")
	}
	return ccpconfig.LoadFile(*flagConfig)
}

type stresser struct {
	cfg     *ccpconfig.Config
	rnd     *rand.Rand
	ram     *guestmem.RAM
	engine  *ccp.Engine
	results int
	descs   uint64
}

func (s *stresser) loop(ctx context.Context) error {
	s.ram = guestmem.NewRAM()
	defer s.ram.Close()
	if _, err := s.ram.AddSharedRegion("sram", uint64(s.cfg.SRAMBase), int(s.cfg.SRAMSize)); err != nil {
		return err
	}
	var err error
	if s.engine, err = ccp.New(s.cfg, s.ram); err != nil {
		return err
	}
	s.engine.SetResultHook(func(*ccp.Result) { s.results++ })
	for i := 0; *flagIters == 0 || i < *flagIters; i++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := s.batch(); err != nil {
			return fmt.Errorf("batch %v: %w", i, err)
		}
		statBatches.Add(1)
		if s.rnd.Intn(100) == 0 {
			s.engine.Reset()
		}
	}
	return nil
}

func (s *stresser) batch() error {
	q := s.rnd.Intn(s.cfg.Queues)
	n := 1 + s.rnd.Intn(*flagBatch)
	ring := uint64(s.cfg.SRAMBase) + ringOff + uint64(q*(*flagBatch)*desc.Size)
	if err := s.randomData(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		d := s.randomDesc()
		if err := s.ram.Write(ring+uint64(i*desc.Size), d.Bytes()); err != nil {
			return err
		}
	}
	regs := ccpconfig.QueueBase + uint64(q)*ccpconfig.RegionSize
	head := ring + uint64(n*desc.Size)
	before := s.results
	s.engine.Write(regs+ccp.QueueTail, ring, 4)
	s.engine.Write(regs+ccp.QueueHead, head, 4)
	s.engine.Write(regs+ccp.QueueControl, ccp.CtrlRun, 4)
	s.engine.Read(regs+ccp.QueueControl, 4)
	s.descs += uint64(n)
	st, err := s.engine.Queue(q)
	if err != nil {
		return err
	}
	if st.Tail != uint32(head) || st.Tail != st.Head {
		return fmt.Errorf("queue %v: tail 0x%x head 0x%x after drain, want 0x%x", q, st.Tail, st.Head, head)
	}
	if st.Control&ccp.CtrlRun != 0 || st.Control&ccp.CtrlHalt == 0 {
		return fmt.Errorf("queue %v: control 0x%x after drain", q, st.Control)
	}
	if got := s.results - before; got != n {
		return fmt.Errorf("queue %v: %v results for %v descriptors", q, got, n)
	}
	if out := s.ram.Outstanding(); out != 0 {
		return fmt.Errorf("%v guest memory views leaked", out)
	}
	return nil
}

func (s *stresser) randomData() error {
	data := make([]byte, 0x400)
	s.rnd.Read(data)
	off := uint64(s.rnd.Intn(int(s.cfg.SRAMSize) - dataOff - len(data)))
	return s.ram.Write(uint64(s.cfg.SRAMBase)+dataOff+off, data)
}

var stressEngines = []desc.Engine{
	desc.SHA, desc.SHA, desc.SHA,
	desc.RSA,
	desc.Passthru, desc.Passthru,
	desc.Zlib,
	desc.AES,
	desc.ECC,
}

func (s *stresser) randomDesc() desc.Desc {
	if s.rnd.Intn(50) == 0 {
		var d desc.Desc
		for i := range d {
			d[i] = s.rnd.Uint32()
		}
		return d
	}
	f := desc.Fields{
		Engine:     stressEngines[s.rnd.Intn(len(stressEngines))],
		Init:       s.rnd.Intn(4) == 0,
		EOM:        s.rnd.Intn(3) == 0,
		Length:     uint32(s.rnd.Intn(0x200)),
		Src:        s.randomAddr(),
		SrcMem:     s.randomMem(),
		LSBContext: uint8(s.rnd.Intn(s.cfg.LSBSlots + 2)),
		Dst:        s.randomAddr(),
		DstMem:     s.randomMem(),
		Key:        s.randomAddr(),
		KeyMem:     s.randomMem(),
	}
	switch f.Engine {
	case desc.SHA:
		f.Function = desc.SHAFunction(desc.SHAType(1 + s.rnd.Intn(5)))
		f.SHALength = uint64(f.Length) * 8
	case desc.RSA:
		size := []int{256, 512, 1024}[s.rnd.Intn(3)]
		f.Function = desc.RSAFunction(desc.RSAModeExp, size)
		f.Length = uint32(2 * size)
		if s.rnd.Intn(4) == 0 {
			f.Length = uint32(s.rnd.Intn(0x400))
		}
	case desc.Passthru:
		swap := []desc.Byteswap{desc.SwapNone, desc.SwapNone, desc.Swap256, desc.Swap32}[s.rnd.Intn(4)]
		op := desc.BitwiseNone
		if s.rnd.Intn(8) == 0 {
			op = desc.Bitwise(s.rnd.Intn(5))
		}
		f.Function = desc.PassthruFunction(swap, op, 0)
		if swap == desc.Swap256 && s.rnd.Intn(4) != 0 {
			f.Length &^= 31
		}
	default:
		f.Function = desc.Function(s.rnd.Intn(1 << 15))
	}
	return f.Encode()
}

func (s *stresser) randomAddr() uint64 {
	switch s.rnd.Intn(10) {
	case 0:
		return s.rnd.Uint64() & (1<<48 - 1)
	case 1, 2:
		return uint64(s.rnd.Intn(s.cfg.LSBSlots * s.cfg.LSBSlotSize))
	default:
		return uint64(s.cfg.SRAMBase) + dataOff + uint64(s.rnd.Intn(int(s.cfg.SRAMSize)-dataOff))
	}
}

func (s *stresser) randomMem() desc.MemType {
	switch s.rnd.Intn(10) {
	case 0:
		return desc.System
	case 1, 2, 3:
		return desc.Scratch
	default:
		return desc.Local
	}
}
