// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package tool contains various helper utilitites useful for implementation of command line tools.
package tool

import (
	"flag"
	"fmt"
	"os"
)

var flagProfile = flag.String("profile", "", "write "+cpuProfileFile+" and "+heapProfileFile+" into this dir")

// Init parses command line flags and starts profiling if requested.
// The returned function must be called before exit to flush profiles.
func Init() func() {
	flag.Parse()
	prof, err := startProfiling(*flagProfile)
	if err != nil {
		Fail(err)
	}
	return func() {
		if err := prof.stop(); err != nil {
			Fail(err)
		}
	}
}

func Failf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}

func Fail(err error) {
	Failf("%v", err)
}
