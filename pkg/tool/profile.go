// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package tool

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
)

const (
	cpuProfileFile  = "cpu.pprof"
	heapProfileFile = "heap.pprof"
)

// profiler collects a CPU profile for the lifetime of a tool and a heap profile at exit.
// A nil profiler does nothing.
type profiler struct {
	dir string
	cpu *os.File
}

func startProfiling(dir string) (*profiler, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create profile dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, cpuProfileFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to start cpu profile: %w", err)
	}
	return &profiler{dir: dir, cpu: f}, nil
}

func (p *profiler) stop() error {
	if p == nil {
		return nil
	}
	pprof.StopCPUProfile()
	if err := p.cpu.Close(); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(p.dir, heapProfileFile))
	if err != nil {
		return fmt.Errorf("failed to create heap profile: %w", err)
	}
	defer f.Close()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write heap profile: %w", err)
	}
	return nil
}
