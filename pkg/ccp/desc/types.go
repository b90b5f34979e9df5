// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package desc

import (
	"fmt"
	"strings"
)

type Engine uint8

const (
	AES Engine = iota
	XTS
	DES3
	SHA
	RSA
	Passthru
	Zlib
	ECC
)

var engineNames = [...]string{
	AES:      "AES",
	XTS:      "XTS-AES-128",
	DES3:     "3DES",
	SHA:      "SHA",
	RSA:      "RSA",
	Passthru: "PASSTHRU",
	Zlib:     "ZLIB",
	ECC:      "ECC",
}

// Engines lists all engines known to the hardware.
var Engines = []Engine{AES, XTS, DES3, SHA, RSA, Passthru, Zlib, ECC}

func (e Engine) String() string {
	return name(engineNames[:], int(e), "engine")
}

type MemType uint8

const (
	// System memory is not reachable from the PSP side.
	System MemType = iota
	// Scratch is the local storage block, addressed by byte offset.
	Scratch
	// Local is general memory accessed through the guest memory capability.
	Local
)

var memTypeNames = [...]string{
	System:  "SYSTEM",
	Scratch: "SB",
	Local:   "LOCAL",
}

func (m MemType) String() string {
	return name(memTypeNames[:], int(m), "mem")
}

type SHAType uint8

const (
	SHA1 SHAType = iota + 1
	SHA224
	SHA256
	SHA384
	SHA512
)

var shaTypeNames = [...]string{
	SHA1:   "SHA1",
	SHA224: "SHA224",
	SHA256: "SHA256",
	SHA384: "SHA384",
	SHA512: "SHA512",
}

func (t SHAType) String() string {
	return name(shaTypeNames[:], int(t), "sha")
}

// DigestSize returns the digest length in bytes, or 0 for unknown types.
func (t SHAType) DigestSize() int {
	switch t {
	case SHA1:
		return 20
	case SHA224:
		return 28
	case SHA256:
		return 32
	case SHA384:
		return 48
	case SHA512:
		return 64
	}
	return 0
}

type RSAMode uint8

// RSAModeExp is plain modular exponentiation.
const RSAModeExp RSAMode = 0

type Byteswap uint8

const (
	SwapNone Byteswap = iota
	Swap32
	Swap256
)

var byteswapNames = [...]string{
	SwapNone: "NOOP",
	Swap32:   "32BIT",
	Swap256:  "256BIT",
}

func (b Byteswap) String() string {
	return name(byteswapNames[:], int(b), "byteswap")
}

type Bitwise uint8

const (
	BitwiseNone Bitwise = iota
	BitwiseAnd
	BitwiseOr
	BitwiseXor
	BitwiseMask
)

var bitwiseNames = [...]string{
	BitwiseNone: "NOOP",
	BitwiseAnd:  "AND",
	BitwiseOr:   "OR",
	BitwiseXor:  "XOR",
	BitwiseMask: "MASK",
}

func (b Bitwise) String() string {
	return name(bitwiseNames[:], int(b), "bitwise")
}

type AESType uint8

const (
	AES128 AESType = iota
	AES192
	AES256
)

var aesTypeNames = [...]string{
	AES128: "AES128",
	AES192: "AES192",
	AES256: "AES256",
}

func (t AESType) String() string {
	return name(aesTypeNames[:], int(t), "aes")
}

type AESMode uint8

const (
	ModeECB AESMode = iota
	ModeCBC
	ModeOFB
	ModeCFB
	ModeCTR
	ModeCMAC
	ModeGHASH
	ModeGCTR
	ModeGCM
	ModeGMAC
)

var aesModeNames = [...]string{
	ModeECB:   "ECB",
	ModeCBC:   "CBC",
	ModeOFB:   "OFB",
	ModeCFB:   "CFB",
	ModeCTR:   "CTR",
	ModeCMAC:  "CMAC",
	ModeGHASH: "GHASH",
	ModeGCTR:  "GCTR",
	ModeGCM:   "GCM",
	ModeGMAC:  "GMAC",
}

func (m AESMode) String() string {
	return name(aesModeNames[:], int(m), "mode")
}

func name(names []string, v int, kind string) string {
	if v >= 0 && v < len(names) && names[v] != "" {
		return names[v]
	}
	return fmt.Sprintf("%v(%d)", kind, v)
}

func ParseEngine(s string) (Engine, error) {
	v, err := parse(engineNames[:], s, "engine")
	return Engine(v), err
}

func ParseMemType(s string) (MemType, error) {
	switch strings.ToUpper(s) {
	case "SCRATCH", "LSB":
		return Scratch, nil
	}
	v, err := parse(memTypeNames[:], s, "memory type")
	return MemType(v), err
}

func ParseSHAType(s string) (SHAType, error) {
	v, err := parse(shaTypeNames[:], s, "sha type")
	return SHAType(v), err
}

func ParseByteswap(s string) (Byteswap, error) {
	v, err := parse(byteswapNames[:], s, "byteswap")
	return Byteswap(v), err
}

func ParseBitwise(s string) (Bitwise, error) {
	v, err := parse(bitwiseNames[:], s, "bitwise")
	return Bitwise(v), err
}

func parse(names []string, s, kind string) (int, error) {
	for i, name := range names {
		if name != "" && strings.EqualFold(name, s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %v %q", kind, s)
}
