// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package osutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data")
	require.NoError(t, WriteFile(file, []byte("ccp")))
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "ccp", string(data))
}

func TestSharedMem(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "plan9" {
		t.Skip("no shared memory support")
	}
	shm, err := CreateSharedMem(4096)
	require.NoError(t, err)
	require.Len(t, shm.Mem, 4096)
	for _, b := range shm.Mem {
		require.Zero(t, b)
	}
	shm.Mem[0] = 0xaa
	shm.Mem[4095] = 0x55
	assert.Equal(t, byte(0xaa), shm.Mem[0])
	require.NoError(t, shm.Close())
	assert.Nil(t, shm.Mem)
}

func TestSharedMemBadSize(t *testing.T) {
	_, err := CreateSharedMem(0)
	assert.Error(t, err)
}
