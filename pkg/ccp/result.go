// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package ccp

import (
	"errors"
	"fmt"

	"github.com/google/ccpemu/pkg/ccp/desc"
)

var (
	// ErrUnimplemented marks engines and sub-modes the emulator does not model.
	ErrUnimplemented = errors.New("unimplemented")
	// ErrUnsupported marks descriptor parameters the engine rejects (bad sizes, memory types, alignment).
	ErrUnsupported = errors.New("unsupported")
	ErrMemory      = errors.New("guest memory error")
	ErrBounds      = errors.New("local storage block bounds violation")
	ErrInflate     = errors.New("inflate failed")
	// ErrOperand marks arithmetically invalid operands, e.g. a zero RSA modulus.
	ErrOperand = errors.New("invalid operand")
)

type Outcome int

const (
	Applied Outcome = iota
	Skipped
	Faulted
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	case Faulted:
		return "faulted"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result describes execution of a single descriptor.
type Result struct {
	Queue   int
	Addr    uint64
	Desc    desc.Desc
	Outcome Outcome
	Err     error
}

func (r *Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("q%v@0x%x: %v: %v", r.Queue, r.Addr, r.Outcome, r.Err)
	}
	return fmt.Sprintf("q%v@0x%x: %v", r.Queue, r.Addr, r.Outcome)
}

func classify(err error) Outcome {
	switch {
	case err == nil:
		return Applied
	case errors.Is(err, ErrUnimplemented), errors.Is(err, ErrUnsupported):
		return Skipped
	default:
		return Faulted
	}
}
