// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// ccp-run executes CCP scenario files against fresh emulator instances
// and prints per-descriptor results along with unmet expectations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/ccpemu/pkg/log"
	"github.com/google/ccpemu/pkg/scenario"
	"github.com/google/ccpemu/pkg/stat"
	"github.com/google/ccpemu/pkg/tool"
)

var (
	flagConfig    = flag.String("config", "", "base engine config file (JSON)")
	flagHTTP      = flag.String("http", "", "serve /metrics and /stats on this address and wait for interrupt")
	flagStats     = flag.Bool("stats", false, "print engine stats after all scenarios")
	flagScenarios tool.ListFlag
)

func main() {
	flag.Var(&flagScenarios, "scenario", "scenario file to run (can be repeated)")
	defer tool.Init()()
	log.EnableLogCaching(1000, 1<<20)
	files := append([]string(flagScenarios), flag.Args()...)
	if len(files) == 0 {
		tool.Failf("usage: ccp-run [-config engine.cfg] [-scenario] file.yaml...")
	}
	var base []byte
	if *flagConfig != "" {
		var err error
		if base, err = os.ReadFile(*flagConfig); err != nil {
			tool.Failf("failed to read config: %v", err)
		}
	}
	failed := 0
	for _, file := range files {
		ok, err := runFile(file, base)
		if err != nil {
			tool.Fail(err)
		}
		if !ok {
			failed++
		}
	}
	if *flagStats {
		for _, v := range stat.Collect(stat.All) {
			fmt.Printf("%-30v: %v\n", v.Name, v.Value)
		}
	}
	if *flagHTTP != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := stat.Serve(ctx, *flagHTTP); err != nil {
			tool.Fail(err)
		}
	}
	if failed != 0 {
		tool.Failf("%v/%v scenarios failed", failed, len(files))
	}
}

func runFile(file string, base []byte) (bool, error) {
	s, err := scenario.LoadFile(file)
	if err != nil {
		return false, err
	}
	log.Logf(1, "running %v (%v)", s.Name, file)
	rep, err := scenario.Run(s, base)
	if err != nil {
		return false, fmt.Errorf("%v: %w", file, err)
	}
	rep.Write(os.Stdout)
	if rep.Failed() {
		fmt.Printf("recent engine log:\n%s", log.CachedLogOutput())
	}
	return !rep.Failed(), nil
}
