// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccp

import (
	"fmt"
	"math/big"

	"github.com/google/ccpemu/pkg/ccp/desc"
)

// execRSA computes msg^exp mod n. The exponent comes from the key operand,
// the source holds the modulus followed by the message. All numbers are little-endian.
func (e *Engine) execRSA(q *queue, d desc.Desc) error {
	fn := d.Function()
	size := fn.RSASize()
	if fn.RSAMode() != desc.RSAModeExp || (size != 256 && size != 512) || d.Length() != uint32(2*size) {
		return fmt.Errorf("%w: rsa mode %v size %v length %v",
			ErrUnsupported, fn.RSAMode(), size, d.Length())
	}
	exp, err := e.readOperand(d.KeyMem(), d.Key(), size)
	if err != nil {
		return fmt.Errorf("rsa exponent: %w", err)
	}
	src, err := e.readOperand(d.SrcMem(), d.Src(), 2*size)
	if err != nil {
		return fmt.Errorf("rsa modulus/message: %w", err)
	}
	mod := importLE(src[:size])
	if mod.Sign() == 0 {
		return fmt.Errorf("%w: zero rsa modulus", ErrOperand)
	}
	res := new(big.Int).Exp(importLE(src[size:]), importLE(exp), mod)
	return e.writeOperand(d.DstMem(), d.Dst(), exportLE(res, size))
}

func importLE(data []byte) *big.Int {
	be := append([]byte(nil), data...)
	reverse(be)
	return new(big.Int).SetBytes(be)
}

// exportLE returns v as size little-endian bytes. v must fit.
func exportLE(v *big.Int, size int) []byte {
	data := v.FillBytes(make([]byte, size))
	reverse(data)
	return data
}
