// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccp

import (
	"crypto/sha512"
	"fmt"
	"hash"

	"github.com/google/ccpemu/pkg/ccp/desc"
	"github.com/google/ccpemu/pkg/log"
	"github.com/minio/sha256-simd"
)

// shaStream is a streaming hash context that lives across descriptors until eom.
type shaStream struct {
	typ desc.SHAType
	h   hash.Hash
	n   uint64
}

func newSHAStream(typ desc.SHAType) (*shaStream, error) {
	var h hash.Hash
	switch typ {
	case desc.SHA256:
		h = sha256.New()
	case desc.SHA384:
		h = sha512.New384()
	default:
		return nil, fmt.Errorf("%w: hash type %v", ErrUnimplemented, typ)
	}
	return &shaStream{typ: typ, h: h}, nil
}

func (e *Engine) execSHA(q *queue, d desc.Desc) error {
	typ := d.Function().SHAType()
	if typ != desc.SHA256 && typ != desc.SHA384 {
		return fmt.Errorf("%w: hash type %v", ErrUnimplemented, typ)
	}
	st := e.streams(q)
	if st.sha != nil && (d.Init() || st.sha.typ != typ) {
		log.Logf(1, "ccp: q%v: discarding active %v context after 0x%x bytes (init=%v type=%v)",
			q.id, st.sha.typ, st.sha.n, d.Init(), typ)
		st.sha = nil
	}
	if st.sha == nil {
		s, err := newSHAStream(typ)
		if err != nil {
			return err
		}
		st.sha = s
	}
	n := int(d.Length())
	v, err := e.mapFull(d.SrcMem(), d.Src(), n, false)
	if err != nil {
		return err
	}
	st.sha.h.Write(v.data)
	v.release(n)
	st.sha.n += uint64(n)
	statHashed.Add(n)
	if !d.EOM() {
		return nil
	}
	s := st.sha
	st.sha = nil
	if bits := d.SHALength(); bits != 0 && bits != s.n*8 {
		log.Logf(1, "ccp: q%v: sha message length %v bits, hashed %v bits", q.id, bits, s.n*8)
	}
	digest := s.h.Sum(nil)
	reverse(digest)
	off := uint64(d.LSBContext()) * uint64(e.lsb.SlotSize())
	dst, err := e.lsb.Range(off, len(digest))
	if err != nil {
		return fmt.Errorf("digest destination: %w", err)
	}
	copy(dst, digest)
	return nil
}

func reverse(buf []byte) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}
