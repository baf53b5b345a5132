package chip8

import "fmt"

// HaltError is returned by Step if the program violates the machine's
// constraints. Op and Addr identify the instruction being executed.
// If Fetch is set the instruction word could not be read, Op is zero,
// and Addr is the address it was to be read from.
type HaltError struct {
	HaltCode
	Op    Op
	Addr  uint16
	Fetch bool
}

func (e HaltError) Error() string {
	if e.Fetch {
		return fmt.Sprintf("%s fetching instruction at %.4x", e.HaltCode, e.Addr)
	}
	return fmt.Sprintf("%s executing %s at %.4x", e.HaltCode, e.Op, e.Addr)
}

// HaltCode signifies the type of condition that halted execution.
type HaltCode byte

const (
	// AddressFault means an instruction fetch or memory access
	// reached past the end of memory.
	AddressFault HaltCode = iota + 1
	StackOverflow
	StackUnderflow
	// DecodeFault means the instruction word is not a known instruction.
	DecodeFault
	// KeyFault means a key instruction named a key above 0xf.
	KeyFault
)

func (c HaltCode) String() string {
	if s, ok := map[HaltCode]string{
		AddressFault:   "address out of range",
		StackOverflow:  "stack overflow",
		StackUnderflow: "stack underflow",
		DecodeFault:    "unknown instruction",
		KeyFault:       "key out of range",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}
