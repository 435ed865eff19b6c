package viewer

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"hexview/renderer"
)

// Status collects the values shown in the window title.
type Status struct {
	FPS      int
	Camera   mgl32.Vec3
	PostProc renderer.PostProcessConfig
	DebugUI  bool
	// Clock is the day/night time of day, omitted when empty.
	Clock string
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Title formats s as one line.
func (s Status) Title(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s | FPS: %d | (%.1f, %.1f, %.1f)", name, s.FPS, s.Camera[0], s.Camera[1], s.Camera[2])
	fmt.Fprintf(&b, " | HDR %s | bloom %s | exposure %.2f | %s",
		onOff(s.PostProc.HDR), onOff(s.PostProc.Bloom), s.PostProc.Exposure, s.PostProc.ToneMapper)
	if s.Clock != "" {
		b.WriteString(" | " + s.Clock)
	}
	if s.DebugUI {
		b.WriteString(" | debug")
	}
	return b.String()
}

// FrameCounter measures frames per second over one-second windows.
type FrameCounter struct {
	frames int
	start  float64
	fps    int
}

// Tick counts a frame at time now (seconds) and reports whether a new
// FPS value is available.
func (f *FrameCounter) Tick(now float64) (fps int, updated bool) {
	f.frames++
	if f.start == 0 {
		f.start = now
	}
	if now-f.start < 1 {
		return f.fps, false
	}
	f.fps = int(float64(f.frames)/(now-f.start) + 0.5)
	f.frames, f.start = 0, now
	return f.fps, true
}
