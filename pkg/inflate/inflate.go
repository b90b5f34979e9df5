// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package inflate provides the persistent decompression context used by the zlib engine,
// together with compression helpers for building guest memory images.
package inflate

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

type Format int

const (
	// Zlib is a zlib-wrapped (RFC 1950) DEFLATE stream, what inflateInit2(MAX_WBITS) expects.
	Zlib Format = iota
	// Raw is a bare DEFLATE (RFC 1951) stream.
	Raw
)

func (f Format) String() string {
	switch f {
	case Zlib:
		return "zlib"
	case Raw:
		return "raw"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "zlib":
		return Zlib, nil
	case "raw", "deflate":
		return Raw, nil
	}
	return 0, fmt.Errorf("unknown inflate format %q", s)
}

var (
	ErrNotActive   = errors.New("inflate stream is not initialized")
	ErrMultiInput  = errors.New("inflate stream does not accept more input")
	ErrCorruptData = errors.New("corrupt compressed data")
)

// Stream is an inflate context with explicit init/inflate/end lifecycle.
// A stream accepts a single input segment; the output can be drained over several calls.
type Stream struct {
	format Format
	active bool
	r      io.ReadCloser
	done   bool
	total  int

	// Byte read ahead to detect the end of stream when dst filled up exactly.
	pending []byte
}

// Init (re)initializes the stream, discarding any previous state.
func (s *Stream) Init(format Format) error {
	if format != Zlib && format != Raw {
		return fmt.Errorf("unknown inflate format %v", format)
	}
	s.End()
	s.format = format
	s.active = true
	return nil
}

func (s *Stream) Active() bool {
	return s.active
}

// Total returns the number of bytes produced since Init.
func (s *Stream) Total() int {
	return s.total
}

// Inflate runs one inflate step: it decompresses into dst as much as fits.
// The first call supplies the compressed input, later calls must pass nil src
// and continue draining the output. Done is set once the end of the stream was reached.
func (s *Stream) Inflate(dst, src []byte) (n int, done bool, err error) {
	if !s.active {
		return 0, false, ErrNotActive
	}
	if s.r == nil {
		if s.r, err = newReader(s.format, src); err != nil {
			return 0, false, err
		}
	} else if len(src) != 0 {
		return 0, s.done, ErrMultiInput
	}
	if len(s.pending) != 0 && len(dst) != 0 {
		n = copy(dst, s.pending)
		s.pending = s.pending[n:]
	}
	for n < len(dst) && !s.done {
		m, err := s.r.Read(dst[n:])
		n += m
		s.total += m
		if err == io.EOF {
			s.done = true
			break
		}
		if err != nil {
			return n, false, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
	}
	if n == len(dst) && !s.done {
		// Probe whether the output happened to fit exactly.
		var probe [1]byte
		m, err := s.r.Read(probe[:])
		if m != 0 {
			s.total += m
			s.pending = append(s.pending, probe[:m]...)
		}
		switch {
		case err == io.EOF:
			s.done = m == 0
		case err != nil:
			return n, false, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
	}
	return n, s.done && len(s.pending) == 0, nil
}

// End tears the stream down.
func (s *Stream) End() error {
	var err error
	if s.r != nil {
		err = s.r.Close()
	}
	*s = Stream{}
	return err
}

func newReader(format Format, src []byte) (io.ReadCloser, error) {
	switch format {
	case Zlib:
		r, err := zlib.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("%w: could not initialise zlib: %v", ErrCorruptData, err)
		}
		return r, nil
	case Raw:
		return flate.NewReader(bytes.NewReader(src)), nil
	}
	return nil, fmt.Errorf("unknown inflate format %v", format)
}

func Compress(format Format, rawData []byte) []byte {
	var buffer bytes.Buffer
	var w io.WriteCloser
	switch format {
	case Raw:
		fw, err := flate.NewWriter(&buffer, flate.BestCompression)
		if err != nil {
			panic(fmt.Sprintf("could not create flate writer: %v", err))
		}
		w = fw
	default:
		w = zlib.NewWriter(&buffer)
	}
	if _, err := w.Write(rawData); err != nil {
		panic(fmt.Sprintf("could not compress with %v: %v", format, err))
	}
	if err := w.Close(); err != nil {
		panic(fmt.Sprintf("could not finalize compression with %v: %v", format, err))
	}
	return buffer.Bytes()
}

func Decompress(format Format, compressedData []byte) ([]byte, error) {
	r, err := newReader(format, compressedData)
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, fmt.Errorf("could not read data with %v: %v", format, err)
	}
	return buf.Bytes(), r.Close()
}
