// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package desc

import (
	"fmt"
)

// Function is the 15-bit engine-specific function field of word 0.
// The meaning of its sub-fields depends on the engine.
type Function uint16

func (f Function) sub(pos, n uint) uint16 {
	return uint16(f>>pos) & (1<<n - 1)
}

func (f Function) SHAType() SHAType { return SHAType(f.sub(10, 4)) }

func (f Function) RSAMode() RSAMode { return RSAMode(f.sub(0, 3)) }

// RSASize is the modulus size in bytes.
func (f Function) RSASize() int { return int(f.sub(3, 12)) }

func (f Function) Byteswap() Byteswap { return Byteswap(f.sub(0, 2)) }
func (f Function) Bitwise() Bitwise { return Bitwise(f.sub(2, 3)) }
func (f Function) Reflect() uint8 { return uint8(f.sub(5, 2)) }

// AES, XTS and 3DES share the layout: size:7 encrypt:1 mode:5 type:2.
func (f Function) AESSize() int { return int(f.sub(0, 7)) }
func (f Function) AESEncrypt() bool { return f.sub(7, 1) != 0 }
func (f Function) AESMode() AESMode { return AESMode(f.sub(8, 5)) }
func (f Function) AESType() AESType { return AESType(f.sub(13, 2)) }

func (f Function) ECCSize() int { return int(f.sub(0, 10)) }
func (f Function) ECCType() uint8 { return uint8(f.sub(10, 2)) }
func (f Function) ECCMode() uint8 { return uint8(f.sub(12, 3)) }

func SHAFunction(typ SHAType) Function {
	return Function(uint16(typ)&0xf) << 10
}

func RSAFunction(mode RSAMode, size int) Function {
	return Function(uint16(mode)&0x7 | uint16(size)&0xfff<<3)
}

func PassthruFunction(swap Byteswap, op Bitwise, reflect uint8) Function {
	return Function(uint16(swap)&0x3 | uint16(op)&0x7<<2 | uint16(reflect)&0x3<<5)
}

func AESFunction(typ AESType, mode AESMode, encrypt bool, size int) Function {
	f := uint16(size)&0x7f | uint16(mode)&0x1f<<8 | uint16(typ)&0x3<<13
	if encrypt {
		f |= 1 << 7
	}
	return Function(f)
}

// Format renders the function sub-fields as interpreted by the given engine.
func (f Function) Format(engine Engine) string {
	switch engine {
	case SHA:
		return fmt.Sprintf("{type=%v}", f.SHAType())
	case RSA:
		return fmt.Sprintf("{mode=%v size=%v}", f.RSAMode(), f.RSASize())
	case Passthru:
		return fmt.Sprintf("{byteswap=%v bitwise=%v reflect=%v}", f.Byteswap(), f.Bitwise(), f.Reflect())
	case AES, XTS, DES3:
		return fmt.Sprintf("{type=%v mode=%v encrypt=%v size=%v}",
			f.AESType(), f.AESMode(), f.AESEncrypt(), f.AESSize())
	case ECC:
		return fmt.Sprintf("{mode=%v type=%v size=%v}", f.ECCMode(), f.ECCType(), f.ECCSize())
	}
	return fmt.Sprintf("0x%x", uint16(f))
}
