// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package desc implements the CCP v5 command descriptor wire format:
// 8 little-endian 32-bit words with bit-packed fields.
package desc

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	Size  = 32
	Words = Size / 4
)

// Desc is a raw descriptor. Accessors never fail, reserved bits are ignored,
// and unknown engine/function values are returned as is.
type Desc [Words]uint32

func Decode(data []byte) (Desc, error) {
	var d Desc
	if len(data) != Size {
		return d, fmt.Errorf("descriptor must be %v bytes, got %v", Size, len(data))
	}
	for i := range d {
		d[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return d, nil
}

func (d Desc) Bytes() []byte {
	data := make([]byte, Size)
	d.Put(data)
	return data
}

// Put stores the descriptor into data, which must be at least Size bytes.
func (d Desc) Put(data []byte) {
	for i, w := range d {
		binary.LittleEndian.PutUint32(data[i*4:], w)
	}
}

func bits(w uint32, pos, n uint) uint32 {
	return (w >> pos) & (1<<n - 1)
}

func bit(w uint32, pos uint) bool {
	return bits(w, pos, 1) != 0
}

// Word 0.
func (d Desc) SOC() bool { return bit(d[0], 0) }
func (d Desc) IOC() bool { return bit(d[0], 1) }
func (d Desc) Init() bool { return bit(d[0], 3) }
func (d Desc) EOM() bool { return bit(d[0], 4) }
func (d Desc) Function() Function { return Function(bits(d[0], 5, 15)) }
func (d Desc) Engine() Engine { return Engine(bits(d[0], 20, 4)) }
func (d Desc) Prot() bool { return bit(d[0], 24) }

// Length is the transfer length in bytes (word 1).
func (d Desc) Length() uint32 { return d[1] }

// Src is the 48-bit source address (words 2-3).
func (d Desc) Src() uint64 { return uint64(d[2]) | uint64(bits(d[3], 0, 16))<<32 }
func (d Desc) SrcMem() MemType { return MemType(bits(d[3], 16, 2)) }
func (d Desc) LSBContext() uint8 { return uint8(bits(d[3], 18, 8)) }
func (d Desc) FixedSrc() bool { return bit(d[3], 31) }
func (d Desc) Dst() uint64 { return uint64(d[4]) | uint64(bits(d[5], 0, 16))<<32 }
func (d Desc) DstMem() MemType { return MemType(bits(d[5], 16, 2)) }
func (d Desc) FixedDst() bool { return bit(d[5], 31) }
func (d Desc) Key() uint64 { return uint64(d[6]) | uint64(bits(d[7], 0, 16))<<32 }
func (d Desc) KeyMem() MemType { return MemType(bits(d[7], 16, 2)) }
func (d Desc) SHALengthLo() uint32 { return d[4] }
func (d Desc) SHALengthHi() uint32 { return d[5] }

// SHALength is the total message length in bits for SHA descriptors,
// which reuse words 4-5 instead of carrying a destination.
func (d Desc) SHALength() uint64 { return uint64(d[4]) | uint64(d[5])<<32 }

// Fields is the decoded form of a descriptor, also used to build descriptors.
type Fields struct {
	SOC      bool
	IOC      bool
	Init     bool
	EOM      bool
	Function Function
	Engine   Engine
	Prot     bool

	Length     uint32
	Src        uint64
	SrcMem     MemType
	LSBContext uint8
	FixedSrc   bool
	Dst        uint64
	DstMem     MemType
	FixedDst   bool
	// SHALength replaces Dst/DstMem/FixedDst for the SHA engine.
	SHALength uint64
	Key       uint64
	KeyMem    MemType
}

func (d Desc) Fields() Fields {
	f := Fields{
		SOC:        d.SOC(),
		IOC:        d.IOC(),
		Init:       d.Init(),
		EOM:        d.EOM(),
		Function:   d.Function(),
		Engine:     d.Engine(),
		Prot:       d.Prot(),
		Length:     d.Length(),
		Src:        d.Src(),
		SrcMem:     d.SrcMem(),
		LSBContext: d.LSBContext(),
		FixedSrc:   d.FixedSrc(),
		Key:        d.Key(),
		KeyMem:     d.KeyMem(),
	}
	if f.Engine == SHA {
		f.SHALength = d.SHALength()
	} else {
		f.Dst = d.Dst()
		f.DstMem = d.DstMem()
		f.FixedDst = d.FixedDst()
	}
	return f
}

// Encode packs the fields. Values wider than their field are truncated.
func (f Fields) Encode() Desc {
	var d Desc
	d[0] = flag(f.SOC, 0) | flag(f.IOC, 1) | flag(f.Init, 3) | flag(f.EOM, 4) |
		field(uint32(f.Function), 5, 15) | field(uint32(f.Engine), 20, 4) | flag(f.Prot, 24)
	d[1] = f.Length
	d[2] = uint32(f.Src)
	d[3] = field(uint32(f.Src>>32), 0, 16) | field(uint32(f.SrcMem), 16, 2) |
		field(uint32(f.LSBContext), 18, 8) | flag(f.FixedSrc, 31)
	if f.Engine == SHA {
		d[4] = uint32(f.SHALength)
		d[5] = uint32(f.SHALength >> 32)
	} else {
		d[4] = uint32(f.Dst)
		d[5] = field(uint32(f.Dst>>32), 0, 16) | field(uint32(f.DstMem), 16, 2) | flag(f.FixedDst, 31)
	}
	d[6] = uint32(f.Key)
	d[7] = field(uint32(f.Key>>32), 0, 16) | field(uint32(f.KeyMem), 16, 2)
	return d
}

func field(v uint32, pos, n uint) uint32 {
	return (v & (1<<n - 1)) << pos
}

func flag(v bool, pos uint) uint32 {
	if v {
		return 1 << pos
	}
	return 0
}

func (d Desc) String() string {
	buf := new(strings.Builder)
	fmt.Fprintf(buf, "engine=%v function=%v len=%v src=%v:0x%x",
		d.Engine(), d.Function().Format(d.Engine()), d.Length(), d.SrcMem(), d.Src())
	if d.Engine() == SHA {
		fmt.Fprintf(buf, " sha_len=%v", d.SHALength())
	} else {
		fmt.Fprintf(buf, " dst=%v:0x%x", d.DstMem(), d.Dst())
	}
	fmt.Fprintf(buf, " key=%v:0x%x lsb=%v", d.KeyMem(), d.Key(), d.LSBContext())
	for _, fl := range []struct {
		set  bool
		name string
	}{
		{d.SOC(), "soc"},
		{d.IOC(), "ioc"},
		{d.Init(), "init"},
		{d.EOM(), "eom"},
		{d.Prot(), "prot"},
		{d.FixedSrc(), "fixed_src"},
		{d.Engine() != SHA && d.FixedDst(), "fixed_dst"},
	} {
		if fl.set {
			buf.WriteString(" " + fl.name)
		}
	}
	return buf.String()
}
