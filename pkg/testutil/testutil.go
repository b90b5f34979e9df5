// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package testutil

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

func IterCount() int {
	iters := 1000
	if testing.Short() {
		iters /= 10
	}
	if RaceEnabled {
		iters /= 10
	}
	return iters
}

func RandSource(t testing.TB) rand.Source {
	seed := time.Now().UnixNano()
	if fixed := os.Getenv("CCP_SEED"); fixed != "" {
		seed, _ = strconv.ParseInt(fixed, 0, 64)
	}
	if os.Getenv("CI") != "" {
		seed = 0 // required for deterministic coverage reports
	}
	t.Logf("seed=%v", seed)
	return rand.NewSource(seed)
}

// RandBytes returns up to maxLen random bytes.
func RandBytes(r *rand.Rand, maxLen int) []byte {
	data := make([]byte, r.Intn(maxLen+1))
	r.Read(data)
	return data
}

// RandSplit cuts data into random consecutive chunks (some possibly empty).
func RandSplit(r *rand.Rand, data []byte) [][]byte {
	var chunks [][]byte
	for len(data) != 0 {
		n := r.Intn(len(data) + 1)
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}
