// Package tui implements a reference front end that renders the
// framebuffer as a half-block terminal UI, grounded on
// valerio-go-jeebie's tcell terminal renderer (root main.go), wired
// against the machine package's callback-based front-end contract
// instead of that renderer's direct emulator-struct polling.
package tui

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/thelolagemann/gomeboy/joypad"
	"github.com/thelolagemann/gomeboy/machine"
	"github.com/thelolagemann/gomeboy/pkg/log"
	"github.com/thelolagemann/gomeboy/video"
)

// frameTime paces the terminal's key-poll/render loop; the machine
// itself runs unthrottled between polls, matching spec §4.9's
// cooperative scheduling model.
const frameTime = time.Second / 60

// keyMapping maps terminal key events to joypad buttons, following
// go-jeebie's root main.go key layout.
var keyMapping = map[rune]joypad.Button{
	'a': joypad.A,
	's': joypad.B,
	'\r': joypad.Start,
	'\t': joypad.Select,
}

var arrowMapping = map[tcell.Key]joypad.Button{
	tcell.KeyUp:    joypad.Up,
	tcell.KeyDown:  joypad.Down,
	tcell.KeyLeft:  joypad.Left,
	tcell.KeyRight: joypad.Right,
}

// shadeChars renders darkest to lightest, matching go-jeebie's table.
var shadeChars = []rune{'█', '▓', '▒', '░'}

// Frontend drives a Machine from a tcell terminal screen: keyboard
// input feeds check_buttons, Escape requests a stop, and every frame
// is rendered as one shaded character per pixel.
type Frontend struct {
	screen tcell.Screen
	m      *machine.Machine

	mask    uint32 // atomic check_buttons() snapshot
	running uint32 // atomic bool
}

// New constructs a Machine wired to a fresh tcell screen and returns
// the Frontend that drives it. rom and opts are forwarded to
// machine.New; this function installs its own WithCheckButtons and
// WithCheck options after whatever the caller supplies, so any
// caller-supplied hooks for those two are overridden. Its default
// WithLogger goes before the caller's options, so a caller-supplied
// logger takes precedence.
func New(rom []byte, opts ...machine.Option) (*Frontend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("tui: failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("tui: failed to initialize terminal: %w", err)
	}

	f := &Frontend{screen: screen}
	allOpts := append([]machine.Option{
		machine.WithLogger(log.New()),
	}, opts...)
	allOpts = append(allOpts,
		machine.WithCheckButtons(f.checkButtons),
		machine.WithCheck(f.check),
	)

	m, err := machine.New(rom, allOpts...)
	if err != nil {
		screen.Fini()
		return nil, err
	}
	f.m = m
	return f, nil
}

func (f *Frontend) checkButtons() uint8 {
	return uint8(atomic.LoadUint32(&f.mask))
}

func (f *Frontend) check() (stop, buttonPressed, directionPressed bool) {
	return atomic.LoadUint32(&f.running) == 0, false, false
}

// Run starts input handling and blocks rendering frames at ~60 Hz
// until Escape is pressed or the machine otherwise stops.
func (f *Frontend) Run() error {
	atomic.StoreUint32(&f.running, 1)
	defer f.screen.Fini()

	f.screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorBlack).
		Foreground(tcell.ColorWhite))
	f.screen.Clear()

	go f.handleInput()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for atomic.LoadUint32(&f.running) != 0 {
		<-ticker.C
		for !f.m.HasFrame() && atomic.LoadUint32(&f.running) != 0 {
			f.m.Iter()
		}
		if f.m.HasFrame() {
			f.render(f.m.Frame())
			f.screen.Show()
		}
	}
	return nil
}

func (f *Frontend) handleInput() {
	for atomic.LoadUint32(&f.running) != 0 {
		ev := f.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape:
				atomic.StoreUint32(&f.running, 0)
				f.m.Stop()
				return
			case ev.Key() != tcell.KeyRune:
				if btn, ok := arrowMapping[ev.Key()]; ok {
					f.press(btn)
				}
			default:
				if btn, ok := keyMapping[ev.Rune()]; ok {
					f.press(btn)
				}
			}
		case *tcell.EventResize:
			f.screen.Sync()
		}
	}
}

// press toggles a button on for one poll cycle; a real keyboard
// device has no "key held" latch the core can query, so this models
// each keystroke as a momentary press, matching terminal input's
// own lack of a reliable key-up signal outside raw mode.
func (f *Frontend) press(btn joypad.Button) {
	atomic.StoreUint32(&f.mask, uint32(btn))
	time.AfterFunc(50*time.Millisecond, func() {
		atomic.StoreUint32(&f.mask, 0)
	})
}

func (f *Frontend) render(frame [video.ScreenHeight][video.ScreenWidth]video.Color) {
	f.screen.Clear()
	for y := 0; y < video.ScreenHeight; y++ {
		for x := 0; x < video.ScreenWidth; x++ {
			shade := shadeIndex(frame[y][x])
			style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
			f.screen.SetContent(x*2, y, shadeChars[shade], nil, style)
			f.screen.SetContent(x*2+1, y, shadeChars[shade], nil, style)
		}
	}
}

// shadeIndex maps a 15-bit BGR555 color to one of four terminal
// shades by luminance, darkest first.
func shadeIndex(c video.Color) int {
	r := uint32(c) & 0x1F
	g := (uint32(c) >> 5) & 0x1F
	b := (uint32(c) >> 10) & 0x1F
	lum := (r*3 + g*6 + b) / 10 // rough luminance weighting, 0..31
	switch {
	case lum >= 24:
		return 0
	case lum >= 16:
		return 1
	case lum >= 8:
		return 2
	default:
		return 3
	}
}

// Close releases the underlying Machine and terminal screen.
func (f *Frontend) Close() {
	f.m.Close()
}
