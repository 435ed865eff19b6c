// Package viewer holds the frame-loop helpers of the viewer that do not
// touch the window system: input mapping, shader file watching and the
// status line.
package viewer

import (
	"hexview/scene"
)

// Action is a one-shot command triggered by a key press.
type Action int

const (
	ToggleHDR Action = iota
	ToggleBloom
	CycleToneMapper
	ToggleDebugUI
	Quit
)

// Keyboard reports whether a key is currently held.
type Keyboard interface {
	IsKeyPressed(key int) bool
}

// Bindings maps controls to window-system key codes.
type Bindings struct {
	Forward, Backward, Left, Right int
	ExposureDown, ExposureUp       int
	HDR, Bloom, ToneMapper         int
	DebugUI, Quit                  int
}

// ExposureRate is the exposure change per second while Q or E is held.
const ExposureRate = 0.5

// Input is what one frame of polling produced.
type Input struct {
	Actions []Action
	// Exposure is the exposure delta for this frame.
	Exposure float32
}

// Controller turns polled keys and cursor motion into camera movement and
// actions. Toggles fire on the press edge, like the key-was-down latches of
// a hand-written frame loop.
type Controller struct {
	keys    Bindings
	wasDown map[int]bool

	// MouseLook applies cursor motion to the camera. It is off while the
	// debug UI owns the cursor.
	MouseLook bool
	lastX     float64
	lastY     float64
	first     bool
}

func NewController(keys Bindings) *Controller {
	return &Controller{keys: keys, wasDown: make(map[int]bool), MouseLook: true, first: true}
}

func (c *Controller) pressed(kb Keyboard, key int) bool {
	down := kb.IsKeyPressed(key)
	edge := down && !c.wasDown[key]
	c.wasDown[key] = down
	return edge
}

// Update polls kb, moves cam for dt seconds and returns the triggered
// actions.
func (c *Controller) Update(kb Keyboard, cam *scene.Camera, dt float32) Input {
	var in Input
	moves := []struct {
		key int
		dir scene.Movement
	}{
		{c.keys.Forward, scene.Forward},
		{c.keys.Backward, scene.Backward},
		{c.keys.Left, scene.Left},
		{c.keys.Right, scene.Right},
	}
	for _, m := range moves {
		if kb.IsKeyPressed(m.key) {
			cam.Move(m.dir, dt)
		}
	}

	if kb.IsKeyPressed(c.keys.ExposureDown) {
		in.Exposure -= ExposureRate * dt
	}
	if kb.IsKeyPressed(c.keys.ExposureUp) {
		in.Exposure += ExposureRate * dt
	}

	toggles := []struct {
		key    int
		action Action
	}{
		{c.keys.HDR, ToggleHDR},
		{c.keys.Bloom, ToggleBloom},
		{c.keys.ToneMapper, CycleToneMapper},
		{c.keys.DebugUI, ToggleDebugUI},
		{c.keys.Quit, Quit},
	}
	for _, t := range toggles {
		if c.pressed(kb, t.key) {
			in.Actions = append(in.Actions, t.action)
		}
	}
	return in
}

// Cursor feeds an absolute cursor position. The first position after
// mouse look is enabled only sets the reference point.
func (c *Controller) Cursor(cam *scene.Camera, x, y float64) {
	if !c.MouseLook {
		c.first = true
		return
	}
	if c.first {
		c.lastX, c.lastY, c.first = x, y, false
		return
	}
	// Window y grows downwards.
	cam.Look(float32(x-c.lastX), float32(c.lastY-y))
	c.lastX, c.lastY = x, y
}

func (c *Controller) Scroll(cam *scene.Camera, yoff float64) {
	cam.Scroll(float32(yoff))
}
