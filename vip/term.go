package vip

import (
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/c8/chip8"
)

// Terminal is a Frontend that shows the machine in a text terminal,
// two framebuffer rows per character cell, above a status line and the
// log. Escape quits.
type Terminal struct {
	Title string

	// Screen is used instead of the process's terminal, if set.
	Screen tcell.Screen
}

func (term *Terminal) Run(r *Runner) error {
	var (
		app     = tview.NewApplication()
		display = tview.NewBox()
		status  = tview.NewTextView().SetWrap(false)
		logView = tview.NewTextView().SetMaxLines(100)
		cols    = tview.NewFlex()
		rows    = tview.NewFlex().SetDirection(tview.FlexRow)

		frame chip8.Frame // only accessed from the application goroutine
		hold  holder
	)
	if term.Screen != nil {
		app.SetScreen(term.Screen)
	}

	display.SetBorder(true).SetTitle(" " + term.Title + " ")
	display.SetDrawFunc(func(s tcell.Screen, x, y, w, h int) (int, int, int, int) {
		drawCells(s, x+1, y+1, &frame)
		return x + 1, y + 1, w - 2, h - 2
	})
	status.SetTextColor(tcell.ColorBlack)
	status.SetBackgroundColor(tcell.ColorDarkGrey)
	status.SetText(statusLine(term.Title, nil))
	logView.SetChangedFunc(func() { app.Draw() })
	cols.
		AddItem(display, chip8.Width+2, 0, false).
		AddItem(nil, 0, 1, false)
	rows.
		AddItem(cols, chip8.Height/2+2, 0, false).
		AddItem(status, 1, 0, false).
		AddItem(logView, 0, 1, false)

	app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Key() {
		case tcell.KeyEscape:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if k, ok := KeyForRune(ev.Rune()); ok {
				if hold.press(k, time.Now()) {
					r.Key(k, true)
				}
				return nil
			}
		}
		return ev
	})

	prevLog := log.Writer()
	log.SetOutput(logView)
	defer log.SetOutput(prevLog)

	exit := make(chan bool)
	defer close(exit)
	feed := &stateFeed{
		r:     r,
		hold:  &hold,
		queue: func(f func()) { app.QueueUpdateDraw(f) },
		show: func(st State) {
			frame = st.Frame
			status.SetText(statusLine(term.Title, st.Halt))
			if st.Halt != nil {
				status.SetTextColor(tcell.ColorWhite)
				status.SetBackgroundColor(tcell.ColorDarkRed)
			} else {
				status.SetTextColor(tcell.ColorBlack)
				status.SetBackgroundColor(tcell.ColorDarkGrey)
			}
		},
	}
	go feed.run(exit)

	return app.SetRoot(rows, true).Run()
}

// stateFeed passes changes in a Runner's State to the application
// goroutine, and releases keys whose hold has expired.
type stateFeed struct {
	r     *Runner
	hold  *holder
	queue func(func()) // runs a func on the application goroutine
	show  func(State)  // called on the application goroutine
}

// run feeds states until exit is closed. Only one update is queued at a
// time, so queue never blocks once the application has stopped.
func (f *stateFeed) run(exit <-chan bool) {
	t := time.NewTicker(time.Second / FrameRate)
	defer t.Stop()
	var (
		shown = noStamp
		halt  error
		ready = make(chan bool, 1)
	)
	ready <- true
	for {
		select {
		case now := <-t.C:
			for _, k := range f.hold.expire(now) {
				f.r.Key(k, false)
			}
			st := f.r.State()
			if st.stamp() == shown && st.Halt == halt {
				continue
			}
			select {
			case <-ready:
			default:
				continue // previous update still pending
			}
			shown, halt = st.stamp(), st.Halt
			f.queue(func() {
				f.show(st)
				ready <- true
			})
		case <-exit:
			return
		}
	}
}

func statusLine(title string, halt error) string {
	if halt != nil {
		return fmt.Sprintf("%s [HALT!] %v", title, halt)
	}
	return fmt.Sprintf("%s [running] esc to quit", title)
}

func drawCells(s tcell.Screen, x0, y0 int, f *chip8.Frame) {
	style := tcell.StyleDefault.
		Foreground(tcell.ColorWhite).
		Background(tcell.ColorBlack)
	for cy := 0; cy < chip8.Height/2; cy++ {
		for x := 0; x < chip8.Width; x++ {
			c := cellRune(f.At(x, 2*cy), f.At(x, 2*cy+1))
			s.SetContent(x0+x, y0+cy, c, nil, style)
		}
	}
}

// cellRune returns the block character showing a pair of vertically
// adjacent pixels.
func cellRune(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}
