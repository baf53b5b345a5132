// Package chip8 provides an implementation of a CHIP-8 CPU, called Machine,
// that can be used to execute CHIP-8 programs.
package chip8

import (
	"errors"
	"fmt"
	"math/rand"
)

const (
	MemSize   = 4096
	Width     = 64
	Height    = 32
	NumKeys   = 16
	StackSize = 16

	// Base is the address at which programs are loaded and execution starts.
	Base = 0x200
)

// glyphs are the 4x5 hexadecimal digit sprites preloaded at address 0.
var glyphs = [16 * 5]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Machine is an implementation of a CHIP-8 CPU.
//
// A Machine is not safe for concurrent use; its owner must serialize calls
// to Step, TickTimers and SetKey.
type Machine struct {
	Mem   [MemSize]byte
	PC    uint16
	V     [16]byte // VF doubles as the carry, borrow and collision flag
	I     uint16
	Stack Stack
	DT    byte // delay timer
	ST    byte // sound timer

	// Rand supplies the random bytes used by the RND instruction.
	Rand func() byte

	frame Frame
	keys  [NumKeys]bool
	ops   int
}

// ErrCapacity is returned (wrapped) by Load if a program image does not fit
// between Base and the end of memory.
var ErrCapacity = errors.New("program too large")

// ErrKey is returned (wrapped) by SetKey for a key index outside [0, NumKeys).
var ErrKey = errors.New("invalid key")

// NewMachine returns a CHIP-8 CPU with the glyph table loaded and the
// program counter at Base.
func NewMachine() *Machine {
	m := &Machine{
		Rand: func() byte { return byte(rand.Uint32()) },
	}
	m.Reset()
	return m
}

// Reset restores m to the state returned by NewMachine.
// The Rand source is kept.
func (m *Machine) Reset() {
	m.Mem = [MemSize]byte{}
	copy(m.Mem[:], glyphs[:])
	m.PC = Base
	m.V = [16]byte{}
	m.I = 0
	m.Stack = Stack{}
	m.DT, m.ST = 0, 0
	m.frame = Frame{}
	m.keys = [NumKeys]bool{}
	m.ops = 0
}

// Load copies rom into memory at Base. If rom does not fit, Load returns
// an error wrapping ErrCapacity and m is left unchanged.
func (m *Machine) Load(rom []byte) error {
	if n := len(rom); n > MemSize-Base {
		return fmt.Errorf("%w: %d bytes, %d available", ErrCapacity, n, MemSize-Base)
	}
	copy(m.Mem[Base:], rom)
	return nil
}

// SetKey records whether key k (0x0-0xf) is held down.
func (m *Machine) SetKey(k int, down bool) error {
	if k < 0 || k >= NumKeys {
		return fmt.Errorf("%w: %d", ErrKey, k)
	}
	m.keys[k] = down
	return nil
}

// Key reports whether key k is held down.
func (m *Machine) Key(k int) bool {
	return k >= 0 && k < NumKeys && m.keys[k]
}

// Display returns a copy of the framebuffer.
func (m *Machine) Display() Frame { return m.frame }

// Ops returns the number of times the framebuffer has been cleared or drawn
// to since the last reset. Display sinks compare it to skip unchanged frames.
func (m *Machine) Ops() int { return m.ops }

// TickTimers decrements the delay and sound timers, stopping at zero.
// It reports whether the sound timer passed through 1 on this tick,
// which is when a tone should be started.
func (m *Machine) TickTimers() (tone bool) {
	if m.DT > 0 {
		m.DT--
	}
	if m.ST > 0 {
		tone = m.ST == 1
		m.ST--
	}
	return tone
}
