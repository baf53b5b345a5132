package chip8

// Step fetches, decodes and executes the instruction at m.PC.
// It only returns a non-nil error, always a HaltError, if the instruction
// cannot be executed. In that case m.PC is left pointing at the instruction
// and no other state has been changed.
func (m *Machine) Step() (err error) {
	var (
		op      Op
		opPC    = m.PC
		fetched bool
	)
	defer func() {
		if e := recover(); e != nil {
			if code, ok := e.(HaltCode); ok {
				m.PC = opPC
				err = HaltError{
					HaltCode: code,
					Op:       op,
					Addr:     opPC,
					Fetch:    !fetched,
				}
			} else {
				panic(e)
			}
		}
	}()

	op = m.fetch()
	fetched = true
	m.exec(op)
	return nil
}

func (m *Machine) fetch() Op {
	if int(m.PC)+1 >= MemSize {
		panic(AddressFault)
	}
	op := Op(short(m.Mem[m.PC], m.Mem[m.PC+1]))
	m.PC += 2
	return op
}

func (m *Machine) exec(op Op) {
	var (
		d1, _, _, d4 = op.Nibbles()

		x, y = op.X(), op.Y()
		v    = &m.V
	)
	switch d1 {
	case 0x0:
		switch op {
		case 0x0000: // NOP
		case 0x00e0: // CLS
			m.clear()
		case 0x00ee: // RET
			m.PC = m.Stack.Pop()
		default:
			panic(DecodeFault)
		}
	case 0x1: // JP nnn
		m.PC = op.NNN()
	case 0x2: // CALL nnn
		m.Stack.Push(m.PC)
		m.PC = op.NNN()
	case 0x3: // SE Vx, nn
		m.skipIf(v[x] == op.NN())
	case 0x4: // SNE Vx, nn
		m.skipIf(v[x] != op.NN())
	case 0x5: // SE Vx, Vy
		if d4 != 0 {
			panic(DecodeFault)
		}
		m.skipIf(v[x] == v[y])
	case 0x6: // LD Vx, nn
		v[x] = op.NN()
	case 0x7: // ADD Vx, nn
		v[x] += op.NN()
	case 0x8:
		m.alu(op)
	case 0x9: // SNE Vx, Vy
		if d4 != 0 {
			panic(DecodeFault)
		}
		m.skipIf(v[x] != v[y])
	case 0xa: // LD I, nnn
		m.I = op.NNN()
	case 0xb: // JP V0, nnn
		m.PC = uint16(v[0]) + op.NNN()
	case 0xc: // RND Vx, nn
		v[x] = m.Rand() & op.NN()
	case 0xd: // DRW Vx, Vy, n
		m.draw(v[x], v[y], d4)
	case 0xe:
		switch op.NN() {
		case 0x9e: // SKP Vx
			m.skipIf(m.keys[m.key(v[x])])
		case 0xa1: // SKNP Vx
			m.skipIf(!m.keys[m.key(v[x])])
		default:
			panic(DecodeFault)
		}
	case 0xf:
		switch op.NN() {
		case 0x07: // LD Vx, DT
			v[x] = m.DT
		case 0x0a: // LD Vx, K
			m.waitKey(x)
		case 0x15: // LD DT, Vx
			m.DT = v[x]
		case 0x18: // LD ST, Vx
			m.ST = v[x]
		case 0x1e: // ADD I, Vx
			m.I += uint16(v[x])
		case 0x29: // LD F, Vx
			m.I = uint16(v[x]) * 5
		case 0x33: // LD B, Vx
			b := m.span(3)
			b[0], b[1], b[2] = v[x]/100, v[x]/10%10, v[x]%10
		case 0x55: // LD [I], Vx
			copy(m.span(int(x)+1), v[:x+1])
		case 0x65: // LD Vx, [I]
			copy(v[:x+1], m.span(int(x)+1))
		default:
			panic(DecodeFault)
		}
	}
}

// alu executes the 8xyN register arithmetic instructions.
// Only Vx is read by the shifts.
func (m *Machine) alu(op Op) {
	var (
		v    = &m.V
		x, y = op.X(), op.Y()
	)
	switch op.N() {
	case 0x0: // LD Vx, Vy
		v[x] = v[y]
	case 0x1: // OR Vx, Vy
		v[x] |= v[y]
	case 0x2: // AND Vx, Vy
		v[x] &= v[y]
	case 0x3: // XOR Vx, Vy
		v[x] ^= v[y]
	case 0x4: // ADD Vx, Vy
		sum := uint16(v[x]) + uint16(v[y])
		v[x] = byte(sum)
		v[0xf] = flag(sum > 0xff)
	case 0x5: // SUB Vx, Vy
		a, b := v[x], v[y]
		v[x] = a - b
		v[0xf] = flag(a >= b)
	case 0x6: // SHR Vx
		lsb := v[x] & 0x1
		v[x] >>= 1
		v[0xf] = lsb
	case 0x7: // SUBN Vx, Vy
		a, b := v[x], v[y]
		v[x] = b - a
		v[0xf] = flag(b >= a)
	case 0xe: // SHL Vx
		msb := v[x] >> 7
		v[x] <<= 1
		v[0xf] = msb
	default:
		panic(DecodeFault)
	}
}

func (m *Machine) skipIf(cond bool) {
	if cond {
		m.PC += 2
	}
}

// waitKey stores the lowest held key in Vx. If no key is held it rewinds
// m.PC so the same instruction executes again on the next step.
func (m *Machine) waitKey(x byte) {
	for k, down := range m.keys {
		if down {
			m.V[x] = byte(k)
			return
		}
	}
	m.PC -= 2
}

func (m *Machine) key(k byte) byte {
	if k >= NumKeys {
		panic(KeyFault)
	}
	return k
}

// span returns the n bytes of memory starting at I.
func (m *Machine) span(n int) []byte {
	if int(m.I)+n > MemSize {
		panic(AddressFault)
	}
	return m.Mem[m.I : int(m.I)+n]
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func short(hi, lo byte) uint16 {
	return uint16(hi)<<8 + uint16(lo)
}
