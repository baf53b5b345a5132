// Command c8 executes CHIP-8 programs.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/vip"
)

func main() {
	log.SetPrefix("c8: ")
	log.SetFlags(0)

	var (
		cliFlag        = flag.Bool("cli", false, "run in the terminal instead of a window")
		watchFlag      = flag.Bool("watch", false, "reload the program whenever its file changes")
		muteFlag       = flag.Bool("mute", false, "disable sound")
		screenshotFlag = flag.String("screenshot", "", "on exit, write the display to `file` as PNG")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-cli] [-watch] [-mute] <program.ch8>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err := run(flag.Arg(0), options{
		cli:        *cliFlag,
		watch:      *watchFlag,
		mute:       *muteFlag,
		screenshot: *screenshotFlag,
	})

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

type options struct {
	cli, watch, mute bool
	screenshot       string
}

func run(romFile string, o options) error {
	m, err := loadMachine(romFile)
	if err != nil {
		return err
	}

	var speaker vip.Speaker
	if !o.mute {
		b, err := vip.NewBeeper()
		if err != nil {
			log.Printf("sound disabled: %v", err)
		} else {
			defer b.Close()
			speaker = b
		}
	}
	r := vip.NewRunner(m, speaker)

	title := filepath.Base(romFile)
	var f vip.Frontend = vip.GUI{Title: title}
	if o.cli {
		f = &vip.Terminal{Title: title}
	}
	if o.watch {
		f = watchFrontend{Frontend: f, file: romFile}
	}
	if err := r.Run(f); err != nil {
		return err
	}

	if o.screenshot != "" {
		st := r.State()
		return vip.SaveImage(o.screenshot, &st.Frame, 8)
	}
	return nil
}

func loadMachine(romFile string) (*chip8.Machine, error) {
	rom, err := os.ReadFile(romFile)
	if err != nil {
		return nil, err
	}
	m := chip8.NewMachine()
	if err := m.Load(rom); err != nil {
		return nil, fmt.Errorf("loading %s: %w", romFile, err)
	}
	return m, nil
}
