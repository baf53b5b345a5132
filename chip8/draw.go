package chip8

// Frame is a monochrome framebuffer, indexed by x + Width*y.
type Frame [Width * Height]bool

// At reports whether the pixel at column x, row y is lit.
func (f *Frame) At(x, y int) bool { return f[x+Width*y] }

// draw XORs an n-row sprite read from memory at I onto the framebuffer with
// its top-left corner at (x, y). Sprites wrap around both screen edges.
// VF is set to 1 if any lit pixel was turned off, otherwise 0.
func (m *Machine) draw(x, y, n byte) {
	var (
		sprite    = m.span(int(n))
		collision byte
	)
	for row, bits := range sprite {
		py := (int(y) + row) % Height
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			i := (int(x)+col)%Width + Width*py
			if m.frame[i] {
				collision = 1
			}
			m.frame[i] = !m.frame[i]
		}
	}
	m.V[0xf] = collision
	m.ops++
}

func (m *Machine) clear() {
	m.frame = Frame{}
	m.ops++
}
