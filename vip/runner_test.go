package vip

import (
	"errors"
	"testing"
	"time"

	"github.com/nf/c8/chip8"
)

func newTestRunner(t *testing.T, s Speaker, ops ...uint16) *Runner {
	t.Helper()
	m := chip8.NewMachine()
	var rom []byte
	for _, op := range ops {
		rom = append(rom, byte(op>>8), byte(op))
	}
	if err := m.Load(rom); err != nil {
		t.Fatal(err)
	}
	return NewRunner(m, s)
}

type fakeSpeaker struct{ beeps []time.Duration }

func (s *fakeSpeaker) Beep(d time.Duration) { s.beeps = append(s.beeps, d) }

func TestRunnerFrame(t *testing.T) {
	r := newTestRunner(t, nil,
		0x6005, // LD V0, 5
		0xf015, // LD DT, V0
		0x7101, // ADD V1, 1
		0x1204, // JP 0x204
	)
	r.frame()
	if g, w := r.m.PC, uint16(0x204); g != w {
		t.Errorf("PC is %x, want %x", g, w)
	}
	if g, w := r.m.V[1], byte(StepsPerFrame-2)/2; g != w {
		t.Errorf("V1 is %d after one frame, want %d", g, w)
	}
	if r.m.DT != 4 {
		t.Errorf("DT is %d after one frame, want 4", r.m.DT)
	}
	r.frame()
	if r.m.DT != 3 {
		t.Errorf("DT is %d after two frames, want 3", r.m.DT)
	}
}

func TestRunnerKeys(t *testing.T) {
	r := newTestRunner(t, nil,
		0xf30a, // LD V3, K
		0x1202, // JP 0x202
	)
	r.frame()
	if r.m.PC != chip8.Base {
		t.Fatalf("PC is %x with no key held, want %x", r.m.PC, chip8.Base)
	}
	r.Key(0xb, true)
	r.frame()
	if r.m.V[3] != 0xb {
		t.Errorf("V3 is %x, want b", r.m.V[3])
	}
	if !r.m.Key(0xb) {
		t.Errorf("key b not held")
	}
	r.Key(0xb, false)
	r.frame()
	if r.m.Key(0xb) {
		t.Errorf("key b still held after release")
	}
}

func TestRunnerHalt(t *testing.T) {
	r := newTestRunner(t, nil,
		0x6001, // LD V0, 1
		0x00ee, // RET
	)
	r.frame()
	st := r.State()
	var h chip8.HaltError
	if !errors.As(st.Halt, &h) || h.HaltCode != chip8.StackUnderflow {
		t.Fatalf("Halt is %v, want %v", st.Halt, chip8.StackUnderflow)
	}
	if h.Addr != 0x202 {
		t.Errorf("halted at %.4x, want 0202", h.Addr)
	}
	r.m.DT = 9
	r.frame()
	if r.m.PC != 0x202 || r.m.DT != 9 {
		t.Errorf("machine ran after halting: PC=%x DT=%d", r.m.PC, r.m.DT)
	}

	if err := r.reload([]byte{0x12, 0x00}); err != nil {
		t.Fatal(err)
	}
	if st := r.State(); st.Halt != nil {
		t.Errorf("still halted after reload: %v", st.Halt)
	}
	r.frame()
	if r.m.PC != chip8.Base {
		t.Errorf("PC is %x after reload, want %x", r.m.PC, chip8.Base)
	}
}

func TestRunnerReloadTooLarge(t *testing.T) {
	r := newTestRunner(t, nil, 0x6042)
	r.frame()
	err := r.reload(make([]byte, chip8.MemSize))
	if !errors.Is(err, chip8.ErrCapacity) {
		t.Fatalf("got error %v, want %v", err, chip8.ErrCapacity)
	}
	if r.m.V[0] != 0x42 {
		t.Errorf("machine state lost after failed reload")
	}
}

func TestRunnerTone(t *testing.T) {
	s := &fakeSpeaker{}
	r := newTestRunner(t, s,
		0x6002, // LD V0, 2
		0xf018, // LD ST, V0
		0x1204, // JP 0x204
	)
	for i := 0; i < 4; i++ {
		r.frame()
	}
	if len(s.beeps) != 1 || s.beeps[0] != toneLength {
		t.Errorf("beeps are %v, want [%v]", s.beeps, toneLength)
	}
}

func TestRunnerState(t *testing.T) {
	r := newTestRunner(t, nil,
		0xa000, // LD I, 0
		0xd005, // DRW V0, V0, 5
		0x1204, // JP 0x204
	)
	if st := r.State(); st.Ops != 0 {
		t.Fatalf("Ops is %d before running, want 0", st.Ops)
	}
	r.frame()
	st := r.State()
	if st.Ops != 1 {
		t.Errorf("Ops is %d, want 1", st.Ops)
	}
	if !st.Frame.At(0, 0) || st.Frame.At(1, 1) {
		t.Errorf("frame does not show glyph 0")
	}
}

type stubFrontend struct {
	run func(r *Runner) error
}

func (f stubFrontend) Run(r *Runner) error { return f.run(r) }

func TestRunnerRunSwap(t *testing.T) {
	r := newTestRunner(t, nil, 0x1200)
	want := errors.New("quit")
	err := r.Run(stubFrontend{func(r *Runner) error {
		if err := r.Swap([]byte{0x60, 0x07, 0x12, 0x02}); err != nil {
			t.Errorf("Swap: %v", err)
		}
		if err := r.Swap(make([]byte, chip8.MemSize)); !errors.Is(err, chip8.ErrCapacity) {
			t.Errorf("Swap of oversized rom returned %v, want %v", err, chip8.ErrCapacity)
		}
		return want
	}})
	if err != want {
		t.Errorf("Run returned %v, want %v", err, want)
	}
	if r.m.Mem[chip8.Base] != 0x60 {
		t.Errorf("rom not swapped in")
	}

	swapped := make(chan error, 1)
	go func() { swapped <- r.Swap([]byte{0x12, 0x00}) }()
	select {
	case err := <-swapped:
		if err != ErrStopped {
			t.Errorf("Swap after Run returned %v, want %v", err, ErrStopped)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Swap after Run blocked")
	}
}

// Programs that draw the same number of times must still be told apart.
func TestRunnerReloadStamp(t *testing.T) {
	r := newTestRunner(t, nil,
		0xa000, // LD I, 0
		0xd005, // DRW V0, V0, 5
		0x1204, // JP 0x204
	)
	r.frame()
	before := r.State()

	if err := r.reload([]byte{0xa0, 0x05, 0xd0, 0x05, 0x12, 0x04}); err != nil {
		t.Fatal(err)
	}
	r.frame()
	after := r.State()

	if before.Ops != after.Ops {
		t.Fatalf("Ops are %d and %d, want equal", before.Ops, after.Ops)
	}
	if before.Frame == after.Frame {
		t.Fatalf("frames are equal, want glyphs 0 and 1")
	}
	if before.stamp() == after.stamp() {
		t.Errorf("stamp %v unchanged by reload", after.stamp())
	}
	if after.Gen != before.Gen+1 {
		t.Errorf("Gen is %d after reload, want %d", after.Gen, before.Gen+1)
	}
}
