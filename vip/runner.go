// Package vip implements the devices around a CHIP-8 Machine, after the
// COSMAC VIP that hosted the original interpreter: the display, the hex
// keypad, the beeper, and the 60Hz clock that drives them.
package vip

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/nf/c8/chip8"
)

const (
	// FrameRate is the rate at which the timers are decremented and the
	// display is refreshed.
	FrameRate = 60

	// StepsPerFrame is the number of instructions executed per frame.
	StepsPerFrame = 10

	toneLength = time.Second / 6
)

// ErrStopped is returned by Swap once Run has returned.
var ErrStopped = errors.New("runner stopped")

// Frontend presents a running machine to the user.
// Run returns when the user quits.
type Frontend interface {
	Run(r *Runner) error
}

// Speaker sounds the tone requested by the sound timer.
type Speaker interface {
	Beep(d time.Duration)
}

// State is a snapshot of the machine as seen by a Frontend.
type State struct {
	Frame chip8.Frame
	Gen   int   // number of programs swapped in by Swap
	Ops   int   // chip8.Machine.Ops at the time of the snapshot
	Halt  error // the HaltError that stopped execution, if any
}

// stamp identifies the contents of Frame.
// Two States with the same stamp show the same picture.
type stamp struct{ gen, ops int }

func (s State) stamp() stamp { return stamp{s.Gen, s.Ops} }

// noStamp matches no State.
var noStamp = stamp{-1, -1}

type keyEvent struct {
	key  int
	down bool
}

// Runner owns a Machine and executes it at a fixed rate.
type Runner struct {
	m       *chip8.Machine
	speaker Speaker

	keys     chan keyEvent
	swap     chan []byte
	swapDone chan error
	stopped  chan bool

	// touched only by the clock goroutine
	halt error
	gen  int

	mu    sync.Mutex
	state State
}

// NewRunner returns a Runner for m. The speaker may be nil.
func NewRunner(m *chip8.Machine, s Speaker) *Runner {
	r := &Runner{
		m:        m,
		speaker:  s,
		keys:     make(chan keyEvent, 64),
		swap:     make(chan []byte),
		swapDone: make(chan error),
		stopped:  make(chan bool),
	}
	r.publish()
	return r
}

// Run executes the machine while f runs, and stops it when f returns.
// Run may only be called once.
func (r *Runner) Run(f Frontend) error {
	var (
		stop = make(chan bool)
		done = make(chan bool)
	)
	go func() {
		defer close(done)
		r.clock(stop)
	}()
	err := f.Run(r)
	close(stop)
	<-done
	close(r.stopped)
	return err
}

// Key queues a keypad event. It does not block; if the queue is full the
// event is dropped.
func (r *Runner) Key(k int, down bool) {
	select {
	case r.keys <- keyEvent{k, down}:
	default:
		log.Printf("keypad: dropped event for key %x", k)
	}
}

// Swap resets the machine and loads rom into it, resuming execution if it
// had halted. If rom cannot be loaded the machine is left as it was.
// Swap blocks until Run is executing, and returns ErrStopped once Run
// has returned.
func (r *Runner) Swap(rom []byte) error {
	select {
	case r.swap <- rom:
		return <-r.swapDone
	case <-r.stopped:
		return ErrStopped
	}
}

// State returns a snapshot of the machine.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) clock(stop <-chan bool) {
	t := time.NewTicker(time.Second / FrameRate)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			r.frame()
		case rom := <-r.swap:
			r.swapDone <- r.reload(rom)
		case <-stop:
			return
		}
	}
}

// frame runs one frame: StepsPerFrame instructions followed by a timer tick.
func (r *Runner) frame() {
	if r.halt != nil {
		r.applyKeys()
		return
	}
	for i := 0; i < StepsPerFrame; i++ {
		r.applyKeys()
		if err := r.m.Step(); err != nil {
			r.halt = err
			log.Printf("halted: %v", err)
			break
		}
	}
	if r.m.TickTimers() && r.speaker != nil {
		r.speaker.Beep(toneLength)
	}
	r.publish()
}

func (r *Runner) applyKeys() {
	for {
		select {
		case e := <-r.keys:
			if err := r.m.SetKey(e.key, e.down); err != nil {
				log.Printf("keypad: %v", err)
			}
		default:
			return
		}
	}
}

func (r *Runner) reload(rom []byte) error {
	old := *r.m
	r.m.Reset()
	if err := r.m.Load(rom); err != nil {
		*r.m = old
		return err
	}
	r.halt = nil
	r.gen++
	r.publish()
	return nil
}

func (r *Runner) publish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = State{
		Frame: r.m.Display(),
		Gen:   r.gen,
		Ops:   r.m.Ops(),
		Halt:  r.halt,
	}
}
