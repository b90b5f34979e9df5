// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package tool

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFlags(t *testing.T) {
	type Values struct {
		Addr AddrFlag
		List ListFlag
	}
	type Test struct {
		args string
		vals *Values
	}
	tests := []Test{
		{"", &Values{Addr: 0x3000000}},
		{"-addr=0x1000", &Values{Addr: 0x1000}},
		{"-addr=4096 -list=a -list=b", &Values{Addr: 0x1000, List: ListFlag{"a", "b"}}},
		{"-addr=0x03_00_00_00", &Values{Addr: 0x3000000}},
		{"-addr=zen", nil},
	}
	for i, test := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			vals := &Values{Addr: 0x3000000}
			flags := flag.NewFlagSet("", flag.ContinueOnError)
			flags.SetOutput(io.Discard)
			flags.Var(&vals.Addr, "addr", "")
			flags.Var(&vals.List, "list", "")
			var args []string
			if test.args != "" {
				args = strings.Split(test.args, " ")
			}
			err := flags.Parse(args)
			if test.vals == nil {
				if err == nil {
					t.Fatalf("parsing did not fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("parsing failed: %v", err)
			}
			if diff := cmp.Diff(test.vals, vals); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestAddrFlagString(t *testing.T) {
	f := AddrFlag(0x1020)
	if got := f.String(); got != "0x1020" {
		t.Fatalf("got %q", got)
	}
}
