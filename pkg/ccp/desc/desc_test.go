// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package desc

import (
	"math/rand"
	"testing"

	"github.com/google/ccpemu/pkg/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSize(t *testing.T) {
	for _, n := range []int{0, 4, 31, 33, 64} {
		_, err := Decode(make([]byte, n))
		assert.Error(t, err, "size %v", n)
	}
	d, err := Decode(make([]byte, Size))
	require.NoError(t, err)
	assert.Equal(t, Desc{}, d)
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		words  Desc
	}{
		{
			name: "sha256",
			fields: Fields{
				Init:       true,
				EOM:        true,
				Engine:     SHA,
				Function:   SHAFunction(SHA256),
				Length:     3,
				Src:        0x2000,
				SrcMem:     Local,
				LSBContext: 0,
				SHALength:  24,
			},
			words: Desc{
				0x3<<20 | 3<<15 | 1<<4 | 1<<3,
				3,
				0x2000,
				2 << 16,
				24,
				0,
				0,
				0,
			},
		},
		{
			name: "rsa",
			fields: Fields{
				Engine:   RSA,
				Function: RSAFunction(RSAModeExp, 256),
				Length:   512,
				Src:      0x1234_0000_1000,
				SrcMem:   Local,
				Dst:      0x20,
				DstMem:   Scratch,
				Key:      0xffff_8000_0000,
				KeyMem:   Local,
			},
			words: Desc{
				4<<20 | 256<<8,
				512,
				0x1000,
				2<<16 | 0x1234,
				0x20,
				1 << 16,
				0x8000_0000,
				2<<16 | 0xffff,
			},
		},
		{
			name: "passthru",
			fields: Fields{
				SOC:        true,
				IOC:        true,
				Prot:       true,
				Engine:     Passthru,
				Function:   PassthruFunction(Swap256, BitwiseNone, 0),
				Length:     64,
				SrcMem:     Scratch,
				LSBContext: 0xff,
				FixedSrc:   true,
				Dst:        0x3000,
				DstMem:     Local,
				FixedDst:   true,
			},
			words: Desc{
				1<<24 | 5<<20 | 2<<5 | 1<<1 | 1,
				64,
				0,
				1<<31 | 0xff<<18 | 1<<16,
				0x3000,
				1<<31 | 2<<16,
				0,
				0,
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := test.fields.Encode()
			if diff := cmp.Diff(test.words, d); diff != "" {
				t.Fatalf("wrong encoding:\n%s", diff)
			}
			if diff := cmp.Diff(test.fields, d.Fields()); diff != "" {
				t.Fatalf("wrong decoding:\n%s", diff)
			}
			d1, err := Decode(d.Bytes())
			require.NoError(t, err)
			assert.Equal(t, d, d1)
		})
	}
}

// Arbitrary garbage must decode, and re-encoding must only drop reserved bits.
func TestDecodeGarbage(t *testing.T) {
	r := rand.New(testutil.RandSource(t))
	reserved := Desc{
		1<<2 | 0x7f<<25,
		0,
		0,
		0x1f << 26,
		0,
		0x1fff << 18,
		0,
		0x3fff << 18,
	}
	for i := 0; i < testutil.IterCount()*10; i++ {
		data := make([]byte, Size)
		r.Read(data)
		d, err := Decode(data)
		require.NoError(t, err)
		_ = d.String()
		want := d
		if d.Engine() != SHA {
			for w := range want {
				want[w] &^= reserved[w]
			}
		} else {
			for _, w := range []int{0, 3, 7} {
				want[w] &^= reserved[w]
			}
		}
		got := d.Fields().Encode()
		if got != want {
			t.Fatalf("re-encoding mismatch for %x:\ngot:  %x\nwant: %x", data, got, want)
		}
	}
}

func TestFunction(t *testing.T) {
	f := RSAFunction(RSAModeExp, 512)
	assert.Equal(t, RSAModeExp, f.RSAMode())
	assert.Equal(t, 512, f.RSASize())

	f = SHAFunction(SHA384)
	assert.Equal(t, SHA384, f.SHAType())

	f = PassthruFunction(Swap32, BitwiseXor, 2)
	assert.Equal(t, Swap32, f.Byteswap())
	assert.Equal(t, BitwiseXor, f.Bitwise())
	assert.Equal(t, uint8(2), f.Reflect())

	f = AESFunction(AES256, ModeGCM, true, 0x55)
	assert.Equal(t, AES256, f.AESType())
	assert.Equal(t, ModeGCM, f.AESMode())
	assert.True(t, f.AESEncrypt())
	assert.Equal(t, 0x55, f.AESSize())

	f = Function(5<<12 | 2<<10 | 0x3ff)
	assert.Equal(t, uint8(5), f.ECCMode())
	assert.Equal(t, uint8(2), f.ECCType())
	assert.Equal(t, 0x3ff, f.ECCSize())
}

func TestString(t *testing.T) {
	d := Fields{
		Init:      true,
		EOM:       true,
		Engine:    SHA,
		Function:  SHAFunction(SHA256),
		Length:    3,
		Src:       0x2000,
		SrcMem:    Local,
		SHALength: 24,
	}.Encode()
	assert.Equal(t, "engine=SHA function={type=SHA256} len=3 src=LOCAL:0x2000 sha_len=24"+
		" key=SYSTEM:0x0 lsb=0 init eom", d.String())

	d = Fields{Engine: Engine(12), Function: 0x1234, DstMem: MemType(3)}.Encode()
	assert.Equal(t, "engine=engine(12) function=0x1234 len=0 src=SYSTEM:0x0 dst=mem(3):0x0"+
		" key=SYSTEM:0x0 lsb=0", d.String())

	assert.Equal(t, "sha(0)", SHAType(0).String())
	assert.Equal(t, 48, SHA384.DigestSize())
	assert.Equal(t, 0, SHAType(9).DigestSize())
}

func TestParse(t *testing.T) {
	e, err := ParseEngine("passthru")
	require.NoError(t, err)
	assert.Equal(t, Passthru, e)
	e, err = ParseEngine("3des")
	require.NoError(t, err)
	assert.Equal(t, DES3, e)
	_, err = ParseEngine("engine(9)")
	assert.Error(t, err)
	m, err := ParseMemType("lsb")
	require.NoError(t, err)
	assert.Equal(t, Scratch, m)
	m, err = ParseMemType("local")
	require.NoError(t, err)
	assert.Equal(t, Local, m)
	typ, err := ParseSHAType("sha384")
	require.NoError(t, err)
	assert.Equal(t, SHA384, typ)
	_, err = ParseSHAType("")
	assert.Error(t, err)
	swap, err := ParseByteswap("256bit")
	require.NoError(t, err)
	assert.Equal(t, Swap256, swap)
	op, err := ParseBitwise("xor")
	require.NoError(t, err)
	assert.Equal(t, BitwiseXor, op)
}
