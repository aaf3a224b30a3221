// Package sdl implements a reference front end backed by go-sdl2: a
// scaled window/texture renderer and a queued audio device, grounded
// on the teacher's internal/apu SDL device setup (pkg/audio/sdl.go,
// internal/apu/apu.go's OpenAudioDevice+QueueAudio pair) and
// go-jeebie's backend/sdl2.go window/event-loop shape.
package sdl

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"time"
	"unsafe"

	xdraw "golang.org/x/image/draw"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/thelolagemann/gomeboy/audio"
	"github.com/thelolagemann/gomeboy/joypad"
	"github.com/thelolagemann/gomeboy/machine"
	"github.com/thelolagemann/gomeboy/pkg/log"
	"github.com/thelolagemann/gomeboy/video"
)

// screenshotScale is the integer upscale factor applied to a saved
// screenshot, independent of the live window's pixelScale, so
// screenshots stay legible regardless of window size.
const screenshotScale = 4

// pixelScale upscales the 160x144 framebuffer to a window a modern
// display can show comfortably, matching go-jeebie's scaled-texture
// approach rather than a 1:1 window.
const pixelScale = 4

// sampleRate matches the APU's BufferSize-derived output rate; the
// teacher's SDL device opens at a fixed rate and lets the mixer's
// own cadence drive how often QueueAudio is called.
const sampleRate = 48000

// frameTime paces the render/event-poll loop at roughly 60 Hz.
const frameTime = time.Second / 60

// frameCycles caps the CPU cycles Run executes between event polls at
// one LCD frame (154 lines of 456 cycles).
const frameCycles = 154 * 456

var keyMapping = map[sdl.Keycode]joypad.Button{
	sdl.K_RIGHT:  joypad.Right,
	sdl.K_LEFT:   joypad.Left,
	sdl.K_UP:     joypad.Up,
	sdl.K_DOWN:   joypad.Down,
	sdl.K_a:      joypad.A,
	sdl.K_s:      joypad.B,
	sdl.K_q:      joypad.Select,
	sdl.K_RETURN: joypad.Start,
}

// Frontend drives a Machine from an SDL2 window, keyboard and audio
// device: it is the module's primary playable front end, the sdl2/
// tcell pair spec §6's "host presentation shim" names as an external
// collaborator.
type Frontend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	audioDev sdl.AudioDeviceID

	m *machine.Machine

	heldButtons    uint8
	heldDirections uint8
	running        bool

	lastFrame [video.ScreenHeight][video.ScreenWidth]video.Color
}

// New opens an SDL2 window and audio device sized for the 160x144
// framebuffer and constructs a Machine wired to this front end's
// check_buttons/play_sound/check callbacks.
func New(rom []byte, opts ...machine.Option) (*Frontend, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("sdl: init failed: %w", err)
	}

	window, err := sdl.CreateWindow("gomeboy",
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		video.ScreenWidth*pixelScale, video.ScreenHeight*pixelScale,
		sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdl: create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdl: create renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING,
		video.ScreenWidth, video.ScreenHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdl: create texture: %w", err)
	}

	devID, err := sdl.OpenAudioDevice("", false, &sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_F32,
		Channels: 2,
		Samples:  2048,
	}, nil, 0)
	if err != nil {
		texture.Destroy()
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdl: open audio device: %w", err)
	}
	sdl.PauseAudioDevice(devID, false)

	f := &Frontend{window: window, renderer: renderer, texture: texture, audioDev: devID}

	allOpts := append([]machine.Option{machine.WithLogger(log.New())}, opts...)
	allOpts = append(allOpts,
		machine.WithCheckButtons(f.checkButtons),
		machine.WithCheck(f.check),
		machine.WithPlaySound(f.playSound),
	)

	m, err := machine.New(rom, allOpts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	f.m = m
	return f, nil
}

func (f *Frontend) checkButtons() uint8 {
	return f.heldButtons | f.heldDirections
}

func (f *Frontend) check() (stop, buttonPressed, directionPressed bool) {
	return !f.running, f.heldButtons != 0, f.heldDirections != 0
}

// playSound interleaves the per-channel float32 buffers spec §6
// delivers and queues them on the audio device, per the teacher's
// QueueAudio-based device write.
func (f *Frontend) playSound(left, right [audio.BufferSize]float32) {
	interleaved := make([]byte, len(left)*8)
	for i := range left {
		binaryLE(interleaved[i*8:i*8+4], left[i])
		binaryLE(interleaved[i*8+4:i*8+8], right[i])
	}
	if err := sdl.QueueAudio(f.audioDev, interleaved); err != nil {
		return
	}
}

func binaryLE(dst []byte, f float32) {
	bits := math.Float32bits(f)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}

// Run starts the event/render loop and blocks until the window is
// closed or Escape is pressed.
func (f *Frontend) Run() error {
	f.running = true
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for f.running {
		f.pollEvents()
		for budget := 0; budget < frameCycles && f.running && !f.m.HasFrame(); {
			budget += f.m.Iter()
		}
		if f.m.HasFrame() {
			f.renderFrame(f.m.Frame())
		}
		<-ticker.C
	}
	return nil
}

func (f *Frontend) pollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			f.stop()
		case *sdl.KeyboardEvent:
			if e.Keysym.Sym == sdl.K_ESCAPE && e.Type == sdl.KEYDOWN {
				f.stop()
				continue
			}
			if e.Keysym.Sym == sdl.K_F12 && e.Type == sdl.KEYDOWN {
				if err := f.SaveScreenshot("screenshot.png"); err != nil {
					fmt.Fprintln(os.Stderr, "sdl: screenshot failed:", err)
				}
				continue
			}
			btn, ok := keyMapping[e.Keysym.Sym]
			if !ok {
				continue
			}
			f.setButton(btn, e.Type == sdl.KEYDOWN)
		}
	}
}

func (f *Frontend) stop() {
	f.running = false
	f.m.Stop()
}

func (f *Frontend) setButton(btn joypad.Button, down bool) {
	isDirection := btn == joypad.Up || btn == joypad.Down || btn == joypad.Left || btn == joypad.Right
	field := &f.heldButtons
	if isDirection {
		field = &f.heldDirections
	}
	if down {
		*field |= uint8(btn)
	} else {
		*field &^= uint8(btn)
	}
}

// renderFrame converts the emulator's BGR555 framebuffer to RGBA8888
// and presents it scaled to the window, per go-jeebie's
// texture-update-then-Copy-then-Present sequence.
func (f *Frontend) renderFrame(frame [video.ScreenHeight][video.ScreenWidth]video.Color) {
	f.lastFrame = frame
	pixels := make([]byte, video.ScreenWidth*video.ScreenHeight*4)
	for y := 0; y < video.ScreenHeight; y++ {
		for x := 0; x < video.ScreenWidth; x++ {
			c := frame[y][x]
			r := uint8((uint32(c) & 0x1F) * 255 / 31)
			g := uint8(((uint32(c) >> 5) & 0x1F) * 255 / 31)
			b := uint8(((uint32(c) >> 10) & 0x1F) * 255 / 31)
			idx := (y*video.ScreenWidth + x) * 4
			pixels[idx] = 255
			pixels[idx+1] = b
			pixels[idx+2] = g
			pixels[idx+3] = r
		}
	}
	f.texture.Update(nil, unsafe.Pointer(&pixels[0]), video.ScreenWidth*4)
	f.renderer.SetDrawColor(0, 0, 0, 255)
	f.renderer.Clear()
	f.renderer.Copy(f.texture, nil, nil)
	f.renderer.Present()
}

// SaveScreenshot writes the most recently presented frame to path as
// a PNG, upscaled by screenshotScale with nearest-neighbor resampling
// to keep the Game Boy's hard pixel edges, grounded on the teacher's
// pkg/display scaling path (golang.org/x/image/draw) rather than a
// hand-rolled pixel replicator.
func (f *Frontend) SaveScreenshot(path string) error {
	src := image.NewRGBA(image.Rect(0, 0, video.ScreenWidth, video.ScreenHeight))
	for y := 0; y < video.ScreenHeight; y++ {
		for x := 0; x < video.ScreenWidth; x++ {
			c := f.lastFrame[y][x]
			r := uint8((uint32(c) & 0x1F) * 255 / 31)
			g := uint8(((uint32(c) >> 5) & 0x1F) * 255 / 31)
			b := uint8(((uint32(c) >> 10) & 0x1F) * 255 / 31)
			src.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, video.ScreenWidth*screenshotScale, video.ScreenHeight*screenshotScale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sdl: create screenshot: %w", err)
	}
	defer out.Close()
	return png.Encode(out, dst)
}

// Close tears down the SDL2 window, renderer, audio device and the
// underlying Machine.
func (f *Frontend) Close() {
	sdl.CloseAudioDevice(f.audioDev)
	if f.texture != nil {
		f.texture.Destroy()
	}
	if f.renderer != nil {
		f.renderer.Destroy()
	}
	if f.window != nil {
		f.window.Destroy()
	}
	sdl.Quit()
	if f.m != nil {
		f.m.Close()
	}
}
