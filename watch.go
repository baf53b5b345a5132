package main

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/c8/vip"
)

// watchFrontend wraps a Frontend, swapping the program file into the
// runner whenever it changes.
type watchFrontend struct {
	vip.Frontend
	file string
}

func (w watchFrontend) Run(r *vip.Runner) error {
	file := filepath.Clean(w.file)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(file)); err != nil {
		return err
	}

	exit := make(chan bool)
	defer close(exit)
	go func() {
		var reload <-chan time.Time
		for {
			select {
			case ev, ok := <-watcher.Event:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) == file && !ev.IsAttrib() && !ev.IsDelete() {
					reload = time.After(100 * time.Millisecond)
				}
			case err, ok := <-watcher.Error:
				if !ok {
					return
				}
				log.Printf("watch: %v", err)
			case <-reload:
				reload = nil
				rom, err := os.ReadFile(file)
				if err != nil {
					log.Printf("watch: %v", err)
					break
				}
				if err := r.Swap(rom); errors.Is(err, vip.ErrStopped) {
					return
				} else if err != nil {
					log.Printf("watch: %v", err)
					break
				}
				log.Printf("watch: reloaded %s", filepath.Base(file))
			case <-exit:
				return
			}
		}
	}()

	return w.Frontend.Run(r)
}
