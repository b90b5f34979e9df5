// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package scenario describes end-to-end CCP runs in YAML: guest memory images,
// descriptor rings, register accesses and the expected final state.
package scenario

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/ccpemu/pkg/ccp/desc"
	"github.com/google/ccpemu/pkg/config"
	"github.com/google/ccpemu/pkg/inflate"
	"github.com/minio/sha256-simd"
)

type Scenario struct {
	Name string `yaml:"name"`
	// Engine config overrides, same fields as the JSON engine config.
	Config map[string]any `yaml:"config"`
	// Guest memory regions. If empty, a single SRAM region from the config is created.
	Memory []Region `yaml:"memory"`
	// Initial contents of guest memory and the local storage block.
	Writes []Write  `yaml:"writes"`
	Steps  []Step   `yaml:"steps"`
	Expect []Expect `yaml:"expect"`
}

type Region struct {
	Data `yaml:",inline"`

	Name string `yaml:"name"`
	Base uint64 `yaml:"base"`
	Size int    `yaml:"size"`
	// Back the region with shared memory (memfd on linux).
	Shared bool `yaml:"shared"`
	// Read-only region initialized with the data.
	ROM bool `yaml:"rom"`
}

// Data is a byte string built from its fields in order: string and hex are concatenated,
// then the result is repeated, digested, compressed and reversed as requested.
type Data struct {
	String   string `yaml:"string"`
	Hex      string `yaml:"hex"`
	Repeat   int    `yaml:"repeat"`
	Digest   string `yaml:"digest"`
	Compress string `yaml:"compress"`
	Reverse  bool   `yaml:"reverse"`
}

type Write struct {
	Data `yaml:",inline"`

	Addr *uint64 `yaml:"addr"`
	LSB  *uint64 `yaml:"lsb"`
}

type Step struct {
	Submit  *Submit  `yaml:"submit"`
	Execute *Execute `yaml:"execute"`
	Write   *RegOp   `yaml:"write"`
	Read    *RegOp   `yaml:"read"`
	Reset   bool     `yaml:"reset"`
}

// Submit places descriptors on a queue ring, programs tail/head, sets run and polls control.
type Submit struct {
	Queue       int          `yaml:"queue"`
	Ring        uint64       `yaml:"ring"`
	Descriptors []Descriptor `yaml:"descriptors"`
	// Don't poll the control register after setting run.
	NoPoll bool `yaml:"no_poll"`
}

// Execute runs a descriptor directly, bypassing the queue registers.
type Execute struct {
	Queue      int        `yaml:"queue"`
	Descriptor Descriptor `yaml:"descriptor"`
}

// RegOp is a register access at a window offset.
type RegOp struct {
	Offset uint64 `yaml:"offset"`
	Value  uint64 `yaml:"value"`
	Size   int    `yaml:"size"`
	// For reads, the expected value.
	Expect *uint64 `yaml:"expect"`
}

type Descriptor struct {
	// Raw is the full descriptor as 64 hex digits; it overrides all other fields.
	Raw    string `yaml:"raw"`
	Engine string `yaml:"engine"`
	// Function is the raw function field; it overrides the per-engine sub-fields below.
	Function *uint16 `yaml:"function"`
	SHA      string  `yaml:"sha"`
	RSAMode  int     `yaml:"rsa_mode"`
	RSASize  int     `yaml:"rsa_size"`
	Byteswap string  `yaml:"byteswap"`
	Bitwise  string  `yaml:"bitwise"`

	SOC  bool `yaml:"soc"`
	IOC  bool `yaml:"ioc"`
	Init bool `yaml:"init"`
	EOM  bool `yaml:"eom"`
	Prot bool `yaml:"prot"`

	Length     uint32 `yaml:"length"`
	Src        uint64 `yaml:"src"`
	SrcMem     string `yaml:"src_mem"`
	LSBContext uint8  `yaml:"lsb_ctx"`
	FixedSrc   bool   `yaml:"fixed_src"`
	Dst        uint64 `yaml:"dst"`
	DstMem     string `yaml:"dst_mem"`
	FixedDst   bool   `yaml:"fixed_dst"`
	SHALength  uint64 `yaml:"sha_len"`
	Key        uint64 `yaml:"key"`
	KeyMem     string `yaml:"key_mem"`
}

// Expect checks one piece of the final state: guest memory at addr, the LSB at lsb,
// queue registers, or the sequence of descriptor outcomes.
type Expect struct {
	Data `yaml:",inline"`

	Addr *uint64 `yaml:"addr"`
	LSB  *uint64 `yaml:"lsb"`

	Queue   *int    `yaml:"queue"`
	Control *uint32 `yaml:"control"`
	Head    *uint32 `yaml:"head"`
	Tail    *uint32 `yaml:"tail"`
	Status  *uint32 `yaml:"status"`

	Outcomes []string `yaml:"outcomes"`
}

func LoadFile(filename string) (*Scenario, error) {
	s := new(Scenario)
	if err := config.LoadYAMLFile(filename, s); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", filename, err)
	}
	return s, nil
}

func LoadData(data []byte) (*Scenario, error) {
	s := new(Scenario)
	if err := config.LoadYAMLData(data, s); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scenario) validate() error {
	for i, w := range s.Writes {
		if (w.Addr == nil) == (w.LSB == nil) {
			return fmt.Errorf("write #%v: exactly one of addr/lsb must be specified", i)
		}
		if _, err := w.Bytes(); err != nil {
			return fmt.Errorf("write #%v: %w", i, err)
		}
	}
	for i, st := range s.Steps {
		n := 0
		for _, set := range []bool{st.Submit != nil, st.Execute != nil, st.Write != nil, st.Read != nil, st.Reset} {
			if set {
				n++
			}
		}
		if n != 1 {
			return fmt.Errorf("step #%v: exactly one of submit/execute/write/read/reset must be specified", i)
		}
		var descs []Descriptor
		if st.Submit != nil {
			descs = st.Submit.Descriptors
		}
		if st.Execute != nil {
			descs = []Descriptor{st.Execute.Descriptor}
		}
		for j := range descs {
			if _, err := descs[j].Encode(); err != nil {
				return fmt.Errorf("step #%v: descriptor #%v: %w", i, j, err)
			}
		}
	}
	for i, exp := range s.Expect {
		n := 0
		for _, set := range []bool{exp.Addr != nil, exp.LSB != nil, exp.Queue != nil, exp.Outcomes != nil} {
			if set {
				n++
			}
		}
		if n != 1 {
			return fmt.Errorf("expect #%v: exactly one of addr/lsb/queue/outcomes must be specified", i)
		}
		if exp.Addr != nil || exp.LSB != nil {
			if _, err := exp.Bytes(); err != nil {
				return fmt.Errorf("expect #%v: %w", i, err)
			}
		}
	}
	return nil
}

func (d *Data) Bytes() ([]byte, error) {
	data := []byte(d.String)
	if d.Hex != "" {
		h, err := parseHex(d.Hex)
		if err != nil {
			return nil, err
		}
		data = append(data, h...)
	}
	if d.Repeat > 1 {
		data = []byte(strings.Repeat(string(data), d.Repeat))
	}
	switch d.Digest {
	case "":
	case "sha256":
		sum := sha256.Sum256(data)
		data = sum[:]
	case "sha384":
		sum := sha512.Sum384(data)
		data = sum[:]
	default:
		return nil, fmt.Errorf("unknown digest %q", d.Digest)
	}
	if d.Compress != "" {
		format, err := inflate.ParseFormat(d.Compress)
		if err != nil {
			return nil, err
		}
		data = inflate.Compress(format, data)
	}
	if d.Reverse {
		for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
			data[i], data[j] = data[j], data[i]
		}
	}
	return data, nil
}

func parseHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.ReplaceAll(s, "_", "")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bad hex data: %w", err)
	}
	return data, nil
}

func (d *Descriptor) Encode() (desc.Desc, error) {
	if d.Raw != "" {
		data, err := parseHex(d.Raw)
		if err != nil {
			return desc.Desc{}, err
		}
		return desc.Decode(data)
	}
	engine, err := desc.ParseEngine(d.Engine)
	if err != nil {
		return desc.Desc{}, err
	}
	f := desc.Fields{
		SOC:        d.SOC,
		IOC:        d.IOC,
		Init:       d.Init,
		EOM:        d.EOM,
		Engine:     engine,
		Prot:       d.Prot,
		Length:     d.Length,
		Src:        d.Src,
		LSBContext: d.LSBContext,
		FixedSrc:   d.FixedSrc,
		Dst:        d.Dst,
		FixedDst:   d.FixedDst,
		SHALength:  d.SHALength,
		Key:        d.Key,
	}
	for _, mem := range []struct {
		name string
		dst  *desc.MemType
	}{
		{d.SrcMem, &f.SrcMem},
		{d.DstMem, &f.DstMem},
		{d.KeyMem, &f.KeyMem},
	} {
		*mem.dst = desc.Local
		if mem.name != "" {
			if *mem.dst, err = desc.ParseMemType(mem.name); err != nil {
				return desc.Desc{}, err
			}
		}
	}
	if f.Function, err = d.function(engine); err != nil {
		return desc.Desc{}, err
	}
	return f.Encode(), nil
}

func (d *Descriptor) function(engine desc.Engine) (desc.Function, error) {
	if d.Function != nil {
		return desc.Function(*d.Function), nil
	}
	switch engine {
	case desc.SHA:
		typ, err := desc.ParseSHAType(d.SHA)
		if err != nil {
			return 0, err
		}
		return desc.SHAFunction(typ), nil
	case desc.RSA:
		return desc.RSAFunction(desc.RSAMode(d.RSAMode), d.RSASize), nil
	case desc.Passthru:
		swap, op := desc.SwapNone, desc.BitwiseNone
		var err error
		if d.Byteswap != "" {
			if swap, err = desc.ParseByteswap(d.Byteswap); err != nil {
				return 0, err
			}
		}
		if d.Bitwise != "" {
			if op, err = desc.ParseBitwise(d.Bitwise); err != nil {
				return 0, err
			}
		}
		return desc.PassthruFunction(swap, op, 0), nil
	}
	return 0, nil
}
