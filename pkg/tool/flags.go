// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package tool

import (
	"fmt"
	"strconv"
	"strings"
)

// AddrFlag is a flag.Value for guest addresses; it accepts decimal, 0x-hex and 0o-octal notation.
type AddrFlag uint64

func (f *AddrFlag) String() string {
	return fmt.Sprintf("0x%x", uint64(*f))
}

func (f *AddrFlag) Set(s string) error {
	v, err := strconv.ParseUint(strings.ReplaceAll(s, "_", ""), 0, 64)
	if err != nil {
		return fmt.Errorf("bad address %q: %w", s, err)
	}
	*f = AddrFlag(v)
	return nil
}

// ListFlag is a flag.Value collecting repeated string flags.
type ListFlag []string

func (f *ListFlag) String() string {
	return strings.Join(*f, ",")
}

func (f *ListFlag) Set(s string) error {
	*f = append(*f, s)
	return nil
}
