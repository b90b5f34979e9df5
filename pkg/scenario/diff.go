// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package scenario

import (
	"encoding/hex"
	"strings"

	dmp "github.com/sergi/go-diff/diffmatchpatch"
)

// dumpDiff returns a line diff of hex dumps of want and got.
// Removed lines (want only) are prefixed with '-', added lines (got only) with '+'.
func dumpDiff(want, got []byte) string {
	differ := dmp.New()
	a, b, lines := differ.DiffLinesToChars(hex.Dump(want), hex.Dump(got))
	diffs := differ.DiffCharsToLines(differ.DiffMain(a, b, false), lines)
	buf := new(strings.Builder)
	for _, diff := range diffs {
		prefix := " "
		switch diff.Type {
		case dmp.DiffDelete:
			prefix = "-"
		case dmp.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(diff.Text, "\n") {
			if line == "" {
				continue
			}
			buf.WriteString(prefix)
			buf.WriteString(line)
		}
	}
	return buf.String()
}
