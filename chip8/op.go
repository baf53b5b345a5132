package chip8

import "fmt"

// Op represents a CHIP-8 instruction word.
type Op uint16

// Nibbles splits the instruction word into its four 4-bit fields,
// most significant first.
func (o Op) Nibbles() (d1, d2, d3, d4 byte) {
	return byte(o >> 12), byte(o>>8) & 0xf, byte(o>>4) & 0xf, byte(o) & 0xf
}

// X returns the first register selector (second nibble).
func (o Op) X() byte { return byte(o>>8) & 0xf }

// Y returns the second register selector (third nibble).
func (o Op) Y() byte { return byte(o>>4) & 0xf }

// N returns the low nibble.
func (o Op) N() byte { return byte(o) & 0xf }

// NN returns the low byte.
func (o Op) NN() byte { return byte(o) }

// NNN returns the low 12 bits, an address.
func (o Op) NNN() uint16 { return uint16(o) & 0xfff }

func (o Op) String() string { return fmt.Sprintf("%.4x", uint16(o)) }
