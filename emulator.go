/*
 * Copyright 2026 Joshua Jones <joshua.jones.software@gmail.com>
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      www.apache.org
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package emul8 shows a running CHIP-8 machine in a desktop window.
package emul8

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/retroenv/retrogolib/log"
	"github.com/senojj/emul8/chip8"
	"github.com/senojj/emul8/monitor"
	"github.com/senojj/emul8/runner"
)

const (
	title = "Chip-8 Emulator"
	scale = 10

	panelRefresh = time.Second / 15
)

var keyMap = map[fyne.KeyName]uint8{
	fyne.Key1: 0x1, fyne.Key2: 0x2, fyne.Key3: 0x3, fyne.Key4: 0xC,
	fyne.KeyQ: 0x4, fyne.KeyW: 0x5, fyne.KeyE: 0x6, fyne.KeyR: 0xD,
	fyne.KeyA: 0x7, fyne.KeyS: 0x8, fyne.KeyD: 0x9, fyne.KeyF: 0xE,
	fyne.KeyZ: 0xA, fyne.KeyX: 0x0, fyne.KeyC: 0xB, fyne.KeyV: 0xF,
}

var (
	pixelOn  = color.White
	pixelOff = color.Black
)

// Emulator connects a runner to a window, its keyboard and a register panel.
type Emulator struct {
	runner *runner.Runner
	logger *log.Logger

	buffer    *image.RGBA
	screen    *canvas.Image
	registers *widget.Label
	window    fyne.Window
	halted    atomic.Bool
}

// New creates an emulator for cpu. The runner options configure clock rates,
// breakpoints and tracing.
func New(cpu *chip8.Processor, logger *log.Logger, opts ...runner.Option) *Emulator {
	e := &Emulator{
		logger: logger,
		buffer: image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height)),
	}
	opts = append(opts, runner.WithFrameHandler(e.onFrame))
	e.runner = runner.New(cpu, logger, opts...)
	return e
}

// Runner returns the runner driving the machine.
func (e *Emulator) Runner() *runner.Runner {
	return e.runner
}

// Run opens the window and executes the program until the window is closed
// or ctx is cancelled. A halted machine keeps its window open so the final
// state can be inspected; the halting error is returned after closing.
func (e *Emulator) Run(ctx context.Context) error {
	a := app.New()
	e.window = a.NewWindow(title)

	paint(e.buffer, chip8.Display{})
	e.screen = canvas.NewImageFromImage(e.buffer)
	e.screen.FillMode = canvas.ImageFillStretch  // Scales the 64x32 grid to window size
	e.screen.ScaleMode = canvas.ImageScalePixels // Maintains "pixelated" retro look
	e.screen.SetMinSize(fyne.NewSize(float32(chip8.Width*scale), float32(chip8.Height*scale)))

	e.registers = widget.NewLabel("")
	e.registers.TextStyle = fyne.TextStyle{Monospace: true}

	canv, ok := e.window.Canvas().(desktop.Canvas)
	if !ok {
		return errors.New("emulator cannot be run on mobile")
	}
	canv.SetOnKeyDown(e.onKeyDown)
	canv.SetOnKeyUp(e.onKeyUp)

	e.window.SetContent(container.NewBorder(nil, nil, nil, e.registers, e.screen))

	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		wg     sync.WaitGroup
		runErr error
	)
	wg.Go(func() {
		runErr = e.runner.Run(ctx)
		if runErr != nil {
			e.halted.Store(true)
			e.logger.Error("Execution stopped", log.Err(runErr))
		}
	})
	wg.Go(func() {
		e.refreshPanel(ctx)
	})

	closed := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			fyne.Do(a.Quit)
		case <-closed:
		}
	}()

	e.updateTitle()
	e.window.ShowAndRun()
	close(closed)
	cancel()
	wg.Wait()

	return runErr
}

func (e *Emulator) onFrame(d chip8.Display) {
	fyne.Do(func() {
		paint(e.buffer, d)
		e.screen.Refresh()
	})
}

func (e *Emulator) refreshPanel(ctx context.Context) {
	ticker := time.NewTicker(panelRefresh)
	defer ticker.Stop()

	var (
		last       string
		lastPaused bool
		lastHalted bool
	)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		state, _ := e.runner.Snapshot()
		text := monitor.Registers(state)
		paused, halted := e.runner.Paused(), e.halted.Load()
		if text == last && paused == lastPaused && halted == lastHalted {
			continue
		}
		last, lastPaused, lastHalted = text, paused, halted

		fyne.Do(func() {
			e.registers.SetText(text)
			e.updateTitle()
		})
	}
}

func (e *Emulator) onKeyDown(k *fyne.KeyEvent) {
	switch {
	case k.Name == fyne.KeyEscape:
		e.window.Close()
		return

	case k.Name == fyne.KeySpace:
		if e.runner.Paused() {
			e.runner.Resume()
		} else {
			e.runner.Pause()
		}
		e.updateTitle()
		return

	case k.Name == fyne.KeyS && e.runner.Paused():
		if err := e.runner.Step(); err != nil {
			e.logger.Error("Single step failed", log.Err(err))
		}
		e.updateTitle()
		return
	}

	if key, ok := keyMap[k.Name]; ok {
		e.runner.SetKey(key, true)
	}
}

func (e *Emulator) onKeyUp(k *fyne.KeyEvent) {
	if key, ok := keyMap[k.Name]; ok {
		e.runner.SetKey(key, false)
	}
}

func (e *Emulator) updateTitle() {
	if e.halted.Load() {
		e.window.SetTitle(title + " [halted]")
		return
	}
	if e.runner.Paused() {
		e.window.SetTitle(title + " [paused]")
		return
	}
	e.window.SetTitle(title)
}

// paint copies the framebuffer into img, one image pixel per display pixel.
func paint(img *image.RGBA, d chip8.Display) {
	for y := range chip8.Height {
		for x := range chip8.Width {
			c := pixelOff
			if d.Pixel(x, y) {
				c = pixelOn
			}
			img.Set(x, y, c) // Directly sets pixels in the buffer
		}
	}
}
