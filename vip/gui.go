package vip

import (
	"image"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/c8/chip8"
)

const windowScale = 10

// GUI is a Frontend that shows the machine in a desktop window.
// Escape or closing the window quits.
type GUI struct {
	Title string
}

func (g GUI) Run(r *Runner) (err error) {
	driver.Main(func(s screen.Screen) {
		err = g.run(s, r)
	})
	return err
}

func (g GUI) run(s screen.Screen, r *Runner) error {
	w, err := s.NewWindow(&screen.NewWindowOptions{
		Title:  g.Title,
		Width:  chip8.Width * windowScale,
		Height: chip8.Height * windowScale,
	})
	if err != nil {
		return err
	}
	defer w.Release()

	fb := image.Point{chip8.Width, chip8.Height}
	buf, err := s.NewBuffer(fb)
	if err != nil {
		return err
	}
	defer buf.Release()
	tex, err := s.NewTexture(fb)
	if err != nil {
		return err
	}
	defer tex.Release()

	type update struct{}
	exit := make(chan bool)
	defer close(exit)
	go func() {
		t := time.NewTicker(time.Second / FrameRate)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				w.Send(update{})
			case <-exit:
				return
			}
		}
	}()

	var (
		sz    size.Event
		drawn = noStamp
	)
	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return nil
			}

		case size.Event:
			sz = e
			if sz.WidthPx+sz.HeightPx == 0 {
				return nil
			}

		case key.Event:
			if e.Code == key.CodeEscape {
				return nil
			}
			if e.Direction == key.DirNone {
				break // auto-repeat
			}
			if k, ok := KeyForCode(e.Code); ok {
				r.Key(k, e.Direction == key.DirPress)
			}

		case update:
			st := r.State()
			if st.stamp() == drawn {
				break
			}
			drawn = st.stamp()
			drawFrame(buf.RGBA(), &st.Frame)
			tex.Upload(image.Point{}, buf, buf.Bounds())
			w.Send(paint.Event{})

		case paint.Event:
			w.Scale(sz.Bounds(), tex, tex.Bounds(), draw.Src, nil)
			w.Publish()

		case error:
			log.Print(e)
		}
	}
}
