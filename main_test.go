package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/vip"
)

func TestLoadMachine(t *testing.T) {
	dir := t.TempDir()
	for _, c := range []struct {
		size int
		err  error
	}{
		{2, nil},
		{chip8.MemSize - chip8.Base, nil},
		{chip8.MemSize - chip8.Base + 1, chip8.ErrCapacity},
	} {
		name := filepath.Join(dir, "prog.ch8")
		rom := make([]byte, c.size)
		rom[0], rom[1] = 0x12, 0x00
		if err := os.WriteFile(name, rom, 0644); err != nil {
			t.Fatal(err)
		}
		m, err := loadMachine(name)
		if !errors.Is(err, c.err) {
			t.Errorf("size %d: got error %v, want %v", c.size, err, c.err)
			continue
		}
		if err == nil && m.Mem[chip8.Base] != 0x12 {
			t.Errorf("size %d: program not loaded", c.size)
		}
	}
	if _, err := loadMachine(filepath.Join(dir, "missing.ch8")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got error %v for missing file, want %v", err, os.ErrNotExist)
	}
}

type waitFrontend struct {
	run func(r *vip.Runner) error
}

func (f waitFrontend) Run(r *vip.Runner) error { return f.run(r) }

func TestWatchReload(t *testing.T) {
	name := filepath.Join(t.TempDir(), "prog.ch8")
	if err := os.WriteFile(name, []byte{0x12, 0x00}, 0644); err != nil {
		t.Fatal(err)
	}
	m, err := loadMachine(name)
	if err != nil {
		t.Fatal(err)
	}
	r := vip.NewRunner(m, nil)

	f := watchFrontend{
		file: name,
		Frontend: waitFrontend{func(r *vip.Runner) error {
			// Give the watcher a moment to start before the write.
			time.Sleep(100 * time.Millisecond)
			cls := []byte{0x00, 0xe0, 0x12, 0x02} // CLS; JP 0x202
			if err := os.WriteFile(name, cls, 0644); err != nil {
				return err
			}
			deadline := time.Now().Add(5 * time.Second)
			for st := r.State(); st.Gen == 0 || st.Ops == 0; st = r.State() {
				if time.Now().After(deadline) {
					return errors.New("program not reloaded")
				}
				time.Sleep(10 * time.Millisecond)
			}
			return nil
		}},
	}
	if err := r.Run(f); err != nil {
		t.Fatal(err)
	}
}
