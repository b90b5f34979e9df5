// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccp

import (
	crand "crypto/rand"
	"crypto/rsa"
	"fmt"
	"math/big"
	"testing"

	"github.com/google/ccpemu/pkg/ccp/desc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rsaDesc(size int, src, key, dst uint64) desc.Fields {
	return desc.Fields{
		Engine:   desc.RSA,
		Function: desc.RSAFunction(desc.RSAModeExp, size),
		Length:   uint32(2 * size),
		Src:      src,
		SrcMem:   desc.Local,
		Key:      key,
		KeyMem:   desc.Local,
		Dst:      dst,
		DstMem:   desc.Local,
	}
}

// modexp runs one exponentiation through the engine.
func (env *env) modexp(size int, n, m, exp *big.Int) []byte {
	env.write(keyAddr, exportLE(exp, size))
	env.write(srcAddr, append(exportLE(n, size), exportLE(m, size)...))
	requireOutcome(env.t, env.exec(rsaDesc(size, srcAddr, keyAddr, dstAddr)), Applied, nil)
	return env.read(dstAddr, size)
}

func TestRSARoundTrip(t *testing.T) {
	for _, size := range []int{256, 512} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			if size == 512 && testing.Short() {
				t.Skip("4096-bit key generation is slow")
			}
			key, err := rsa.GenerateKey(crand.Reader, size*8)
			require.NoError(t, err)
			env := newEnv(t)
			msgBytes := make([]byte, size-1)
			_, err = crand.Read(msgBytes)
			require.NoError(t, err)
			msg := new(big.Int).SetBytes(msgBytes)
			pub := big.NewInt(int64(key.E))

			cipher := env.modexp(size, key.N, msg, pub)
			want := new(big.Int).Exp(msg, pub, key.N)
			require.Equal(t, exportLE(want, size), cipher)

			plain := env.modexp(size, key.N, importLE(cipher), key.D)
			require.Equal(t, exportLE(msg, size), plain)
		})
	}
}

func TestRSAScratchOperands(t *testing.T) {
	env := newEnv(t)
	const size = 256
	// A small modulus still occupies the full operand width.
	n := big.NewInt(0xfffffffb)
	m := big.NewInt(123456789)
	exp := big.NewInt(65537)
	require.NoError(t, env.e.WriteLSB(0, exportLE(exp, size)))
	env.write(srcAddr, append(exportLE(n, size), exportLE(m, size)...))
	f := rsaDesc(size, srcAddr, 0, 512)
	f.KeyMem = desc.Scratch
	f.DstMem = desc.Scratch
	requireOutcome(t, env.exec(f), Applied, nil)
	want := new(big.Int).Exp(m, exp, n)
	assert.Equal(t, exportLE(want, size), env.lsb(512, size))
}

func TestRSAUnsupported(t *testing.T) {
	tests := []struct {
		name    string
		fields  desc.Fields
		outcome Outcome
		err     error
	}{
		{"mode", func() desc.Fields {
			f := rsaDesc(256, srcAddr, keyAddr, dstAddr)
			f.Function = desc.RSAFunction(1, 256)
			return f
		}(), Skipped, ErrUnsupported},
		{"size", func() desc.Fields {
			f := rsaDesc(128, srcAddr, keyAddr, dstAddr)
			return f
		}(), Skipped, ErrUnsupported},
		{"length", func() desc.Fields {
			f := rsaDesc(256, srcAddr, keyAddr, dstAddr)
			f.Length = 256
			return f
		}(), Skipped, ErrUnsupported},
		{"zero-modulus", rsaDesc(256, srcAddr, keyAddr, dstAddr), Faulted, ErrOperand},
		{"short-key", rsaDesc(256, srcAddr, sramSize-100, dstAddr), Faulted, ErrMemory},
		{"short-dst", rsaDesc(256, srcAddr+512, keyAddr, sramSize-100), Faulted, ErrMemory},
		{"scratch-key", func() desc.Fields {
			f := rsaDesc(512, srcAddr, 4000, dstAddr)
			f.KeyMem = desc.Scratch
			return f
		}(), Faulted, ErrBounds},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			env := newEnv(t)
			// Modulus of 7, message of 3 at srcAddr+512, zeroes elsewhere.
			env.write(srcAddr+512, []byte{7})
			env.write(srcAddr+512+256, []byte{3})
			env.write(keyAddr, []byte{3})
			res := env.exec(test.fields)
			requireOutcome(t, res, test.outcome, test.err)
			assert.Equal(t, make([]byte, 512), env.read(dstAddr, 512))
		})
	}
}
