// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package osutil

import (
	"fmt"
	"os"
)

const DefaultFilePerm = 0644

func WriteFile(filename string, data []byte) error {
	return os.WriteFile(filename, data, DefaultFilePerm)
}

// SharedMem is a file-backed memory mapping that can be handed to another process.
type SharedMem struct {
	File *os.File
	Mem  []byte
}

// CreateSharedMem creates a shared memory file of the given size and maps it read-write.
func CreateSharedMem(size int) (*SharedMem, error) {
	if size <= 0 {
		return nil, fmt.Errorf("bad shared memory size %v", size)
	}
	f, err := CreateSharedMemFile(size)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(size)); err != nil {
		CloseSharedMemFile(f)
		return nil, fmt.Errorf("failed to truncate shared memory file: %w", err)
	}
	mem, err := mmapFile(f, size)
	if err != nil {
		CloseSharedMemFile(f)
		return nil, err
	}
	return &SharedMem{File: f, Mem: mem}, nil
}

func (shm *SharedMem) Close() error {
	err1 := munmap(shm.Mem)
	err2 := CloseSharedMemFile(shm.File)
	shm.Mem = nil
	if err1 != nil {
		return err1
	}
	return err2
}
