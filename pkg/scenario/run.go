// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/ccpemu/pkg/ccp"
	"github.com/google/ccpemu/pkg/ccp/desc"
	"github.com/google/ccpemu/pkg/ccpconfig"
	"github.com/google/ccpemu/pkg/config"
	"github.com/google/ccpemu/pkg/guestmem"
	"github.com/google/ccpemu/pkg/log"
	"github.com/google/uuid"
)

type Report struct {
	// ID distinguishes runs of the same scenario in logs.
	ID       string
	Name     string
	Config   *ccpconfig.Config
	Results  []*ccp.Result
	Failures []string
}

func (rep *Report) Failed() bool {
	return len(rep.Failures) != 0
}

func (rep *Report) failf(msg string, args ...any) {
	rep.Failures = append(rep.Failures, fmt.Sprintf(msg, args...))
}

func (rep *Report) Write(w io.Writer) {
	fmt.Fprintf(w, "scenario %q (run %v): %v descriptors\n", rep.Name, rep.ID, len(rep.Results))
	for _, res := range rep.Results {
		fmt.Fprintf(w, "  %v\n", res)
	}
	for _, fail := range rep.Failures {
		fmt.Fprintf(w, "FAIL: %v\n", fail)
	}
	if !rep.Failed() {
		fmt.Fprintf(w, "OK\n")
	}
}

// Run executes the scenario on a fresh engine. Base is an optional JSON engine config;
// the scenario's own config section is merged on top of it.
// Setup problems are returned as errors, unmet expectations are reported as failures.
func Run(s *Scenario, base []byte) (*Report, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	cfg, err := s.engineConfig(base)
	if err != nil {
		return nil, err
	}
	ram, err := s.memory(cfg)
	if err != nil {
		return nil, err
	}
	defer ram.Close()
	engine, err := ccp.New(cfg, ram)
	if err != nil {
		return nil, err
	}
	rep := &Report{
		ID:     uuid.NewString(),
		Name:   s.Name,
		Config: engine.Config(),
	}
	log.Logf(1, "scenario %q: run %v", s.Name, rep.ID)
	engine.SetResultHook(func(res *ccp.Result) {
		rep.Results = append(rep.Results, res)
	})
	r := &runner{
		s:      s,
		engine: engine,
		ram:    ram,
		rep:    rep,
	}
	if err := r.run(); err != nil {
		return nil, err
	}
	if n := ram.Outstanding(); n != 0 {
		rep.failf("%v guest memory views were leaked", n)
	}
	return rep, nil
}

func (s *Scenario) engineConfig(base []byte) (*ccpconfig.Config, error) {
	data := []byte("{}")
	if len(base) != 0 {
		data = base
	}
	if len(s.Config) != 0 {
		overrides, err := json.Marshal(s.Config)
		if err != nil {
			return nil, fmt.Errorf("bad config section: %w", err)
		}
		if data, err = config.MergeJSONData(data, overrides); err != nil {
			return nil, err
		}
	}
	return ccpconfig.LoadData(data)
}

func (s *Scenario) memory(cfg *ccpconfig.Config) (*guestmem.RAM, error) {
	ram := guestmem.NewRAM()
	if len(s.Memory) == 0 {
		if _, err := ram.AddRegion("sram", uint64(cfg.SRAMBase), int(cfg.SRAMSize)); err != nil {
			return nil, err
		}
		return ram, nil
	}
	for _, reg := range s.Memory {
		var err error
		switch {
		case reg.ROM:
			var data []byte
			if data, err = reg.Bytes(); err == nil {
				_, err = ram.AddROM(reg.Name, reg.Base, data)
			}
		case reg.Shared:
			_, err = ram.AddSharedRegion(reg.Name, reg.Base, reg.Size)
		default:
			_, err = ram.AddRegion(reg.Name, reg.Base, reg.Size)
		}
		if err != nil {
			ram.Close()
			return nil, err
		}
	}
	return ram, nil
}

type runner struct {
	s      *Scenario
	engine *ccp.Engine
	ram    *guestmem.RAM
	rep    *Report
}

func (r *runner) run() error {
	for i, w := range r.s.Writes {
		data, err := w.Bytes()
		if err != nil {
			return err
		}
		if w.Addr != nil {
			err = r.ram.Write(*w.Addr, data)
		} else {
			err = r.engine.WriteLSB(*w.LSB, data)
		}
		if err != nil {
			return fmt.Errorf("write #%v: %w", i, err)
		}
	}
	for i, st := range r.s.Steps {
		if err := r.step(st); err != nil {
			return fmt.Errorf("step #%v: %w", i, err)
		}
	}
	for i, exp := range r.s.Expect {
		if err := r.check(exp); err != nil {
			return fmt.Errorf("expect #%v: %w", i, err)
		}
	}
	return nil
}

func (r *runner) step(st Step) error {
	e := r.engine
	switch {
	case st.Submit != nil:
		return r.submit(st.Submit)
	case st.Execute != nil:
		d, err := st.Execute.Descriptor.Encode()
		if err != nil {
			return err
		}
		_, err = e.Execute(st.Execute.Queue, d)
		return err
	case st.Write != nil:
		e.Write(st.Write.Offset, st.Write.Value, regSize(st.Write.Size))
	case st.Read != nil:
		val := e.Read(st.Read.Offset, regSize(st.Read.Size))
		log.Logf(1, "scenario: read 0x%x = 0x%x", st.Read.Offset, val)
		if st.Read.Expect != nil && *st.Read.Expect != val {
			r.rep.failf("register 0x%x: got 0x%x, want 0x%x", st.Read.Offset, val, *st.Read.Expect)
		}
	case st.Reset:
		e.Reset()
	}
	return nil
}

func regSize(size int) int {
	if size == 0 {
		return 4
	}
	return size
}

func (r *runner) submit(sub *Submit) error {
	if _, err := r.engine.Queue(sub.Queue); err != nil {
		return err
	}
	for i := range sub.Descriptors {
		d, err := sub.Descriptors[i].Encode()
		if err != nil {
			return err
		}
		if err := r.ram.Write(sub.Ring+uint64(i*desc.Size), d.Bytes()); err != nil {
			return fmt.Errorf("descriptor #%v: %w", i, err)
		}
	}
	regs := ccpconfig.QueueBase + uint64(sub.Queue)*ccpconfig.RegionSize
	head := sub.Ring + uint64(len(sub.Descriptors)*desc.Size)
	r.engine.Write(regs+ccp.QueueTail, sub.Ring, 4)
	r.engine.Write(regs+ccp.QueueHead, head, 4)
	r.engine.Write(regs+ccp.QueueControl, ccp.CtrlRun, 4)
	if !sub.NoPoll {
		r.engine.Read(regs+ccp.QueueControl, 4)
	}
	return nil
}

func (r *runner) check(exp Expect) error {
	switch {
	case exp.Addr != nil || exp.LSB != nil:
		want, err := exp.Bytes()
		if err != nil {
			return err
		}
		var got []byte
		var where string
		if exp.Addr != nil {
			where = fmt.Sprintf("memory at 0x%x", *exp.Addr)
			got = make([]byte, len(want))
			err = r.ram.Read(*exp.Addr, got)
		} else {
			where = fmt.Sprintf("lsb at 0x%x", *exp.LSB)
			got, err = r.engine.ReadLSB(*exp.LSB, len(want))
		}
		if err != nil {
			return err
		}
		if !bytes.Equal(got, want) {
			r.rep.failf("%v:\n\tgot:  %x\n\twant: %x\n%v", where, got, want, dumpDiff(want, got))
		}
	case exp.Queue != nil:
		regs, err := r.engine.Queue(*exp.Queue)
		if err != nil {
			return err
		}
		for _, reg := range []struct {
			name string
			want *uint32
			got  uint32
		}{
			{"control", exp.Control, regs.Control},
			{"head", exp.Head, regs.Head},
			{"tail", exp.Tail, regs.Tail},
			{"status", exp.Status, regs.Status},
		} {
			if reg.want != nil && *reg.want != reg.got {
				r.rep.failf("queue %v %v: got 0x%x, want 0x%x", *exp.Queue, reg.name, reg.got, *reg.want)
			}
		}
	case exp.Outcomes != nil:
		var got []string
		for _, res := range r.rep.Results {
			got = append(got, res.Outcome.String())
		}
		if fmt.Sprint(got) != fmt.Sprint(exp.Outcomes) {
			r.rep.failf("outcomes: got %v, want %v", got, exp.Outcomes)
		}
	}
	return nil
}
