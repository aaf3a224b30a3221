// Command gomeboy is the reference command-line front end: it parses
// a ROM path and a handful of session flags, then hands control to
// either the SDL2 or terminal front end, per SPEC_FULL's ambient-CLI
// section. Grounded on go-jeebie's cmd/jeebie/main.go flag layout,
// wired against urfave/cli per the teacher pack's only CLI framework
// example.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/thelolagemann/gomeboy/machine"
	"github.com/thelolagemann/gomeboy/pkg/frontend/sdl"
	"github.com/thelolagemann/gomeboy/pkg/frontend/tui"
	"github.com/thelolagemann/gomeboy/pkg/log"
)

func main() {
	app := cli.NewApp()
	app.Name = "gomeboy"
	app.Usage = "gomeboy [options] <ROM file>"
	app.Description = "A cycle-accurate Game Boy Color emulator core"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "path to the ROM image"},
		cli.StringFlag{Name: "boot", Usage: "path to an optional boot ROM image"},
		cli.StringFlag{Name: "frontend", Value: "sdl", Usage: "front end to use: sdl or tui"},
		cli.StringFlag{Name: "model", Value: "auto", Usage: "hardware model to present: auto, dmg or cgb"},
		cli.BoolFlag{Name: "no-save", Usage: "do not load or persist battery-backed external RAM"},
		cli.BoolFlag{Name: "trace", Usage: "log every CPU step through the front end's logger"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "gomeboy:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
		romPath = c.Args().Get(0)
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	opts, err := sessionOptions(c, romPath)
	if err != nil {
		return err
	}

	defer flushSaves()

	switch c.String("frontend") {
	case "tui":
		f, err := tui.New(rom, opts...)
		if err != nil {
			return err
		}
		defer f.Close()
		return f.Run()
	case "sdl":
		f, err := sdl.New(rom, opts...)
		if err != nil {
			return err
		}
		defer f.Close()
		return f.Run()
	default:
		return fmt.Errorf("unknown frontend %q (want sdl or tui)", c.String("frontend"))
	}
}

func sessionOptions(c *cli.Context, romPath string) ([]machine.Option, error) {
	var opts []machine.Option

	if bootPath := c.String("boot"); bootPath != "" {
		boot, err := os.ReadFile(bootPath)
		if err != nil {
			return nil, fmt.Errorf("reading boot ROM: %w", err)
		}
		opts = append(opts, machine.WithBootROM(boot))
	}

	switch c.String("model") {
	case "dmg":
		opts = append(opts, machine.AsModel(machine.ModelDMG))
	case "cgb":
		opts = append(opts, machine.AsModel(machine.ModelCGB))
	case "auto":
	default:
		return nil, fmt.Errorf("unknown model %q (want auto, dmg or cgb)", c.String("model"))
	}

	if !c.Bool("no-save") {
		opts = append(opts, machine.WithExternalRAM(saveFileRAM(savePath(romPath))))
	}

	if c.Bool("trace") {
		l := log.New()
		opts = append(opts, machine.WithTracer(machine.Tracer{
			CPUStep: func(pc uint16, cycles int) {
				l.Debugf("step pc=0x%04X cycles=%d", pc, cycles)
			},
			MapperChanged: func(highBank int) {
				l.Debugf("mapper bank switched to %d", highBank)
			},
		}))
	}

	return opts, nil
}

func savePath(romPath string) string {
	ext := filepath.Ext(romPath)
	return romPath[:len(romPath)-len(ext)] + ".sav"
}

// saveFileRAM returns the front end's get_external_ram callback: it
// loads any existing save file into memory once, sized to the
// mapper's declared RAM size, and registers that same backing buffer
// to be flushed back to disk by run's deferred flushSaves call.
func saveFileRAM(path string) func(size int) []byte {
	return func(size int) []byte {
		buf := make([]byte, size)
		if existing, err := os.ReadFile(path); err == nil {
			copy(buf, existing)
		}
		registerSaveFlush(path, buf)
		return buf
	}
}

var saveFlushes []func()

func registerSaveFlush(path string, buf []byte) {
	saveFlushes = append(saveFlushes, func() {
		_ = os.WriteFile(path, buf, 0o644)
	})
}

func flushSaves() {
	for _, flush := range saveFlushes {
		flush()
	}
}
