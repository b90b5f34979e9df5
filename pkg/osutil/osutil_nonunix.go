// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

//go:build !unix

package osutil

import (
	"fmt"
	"os"
)

func CreateSharedMemFile(size int) (*os.File, error) {
	return nil, fmt.Errorf("shared memory is not supported on this OS")
}

func CloseSharedMemFile(f *os.File) error {
	return f.Close()
}

func mmapFile(f *os.File, size int) ([]byte, error) {
	return nil, fmt.Errorf("mmap is not supported on this OS")
}

func munmap(mem []byte) error {
	return nil
}
