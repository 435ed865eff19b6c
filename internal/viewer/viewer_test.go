package viewer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"hexview/internal/gpu/gputest"
	"hexview/renderer"
	"hexview/scene"
)

type fakeKeys map[int]bool

func (k fakeKeys) IsKeyPressed(key int) bool { return k[key] }

var testBindings = Bindings{
	Forward: 1, Backward: 2, Left: 3, Right: 4,
	ExposureDown: 5, ExposureUp: 6,
	HDR: 7, Bloom: 8, ToneMapper: 9, DebugUI: 10, Quit: 11,
}

func TestControllerTogglesOnPressEdge(t *testing.T) {
	c := NewController(testBindings)
	cam := scene.NewCamera(mgl32.Vec3{})
	keys := fakeKeys{7: true}

	assert.Equal(t, []Action{ToggleHDR}, c.Update(keys, cam, 0.016).Actions)
	assert.Empty(t, c.Update(keys, cam, 0.016).Actions, "held key fires once")

	keys[7] = false
	c.Update(keys, cam, 0.016)
	keys[7], keys[11] = true, true
	assert.Equal(t, []Action{ToggleHDR, Quit}, c.Update(keys, cam, 0.016).Actions)
}

func TestControllerMovesCamera(t *testing.T) {
	c := NewController(testBindings)
	cam := scene.NewCamera(mgl32.Vec3{0, 0, 3})

	in := c.Update(fakeKeys{1: true, 6: true}, cam, 1)
	assert.InDelta(t, 3-cam.Speed, cam.Position[2], 1e-4)
	assert.InDelta(t, ExposureRate, in.Exposure, 1e-6)

	in = c.Update(fakeKeys{5: true, 6: true}, cam, 1)
	assert.Zero(t, in.Exposure)
}

func TestControllerCursor(t *testing.T) {
	c := NewController(testBindings)
	cam := scene.NewCamera(mgl32.Vec3{})
	yaw := cam.Yaw

	c.Cursor(cam, 100, 100)
	assert.Equal(t, yaw, cam.Yaw, "first sample only sets the reference")
	c.Cursor(cam, 110, 90)
	assert.InDelta(t, yaw+10*cam.Sensitivity, cam.Yaw, 1e-4)
	assert.InDelta(t, 10*cam.Sensitivity, cam.Pitch, 1e-4)

	c.MouseLook = false
	c.Cursor(cam, 500, 500)
	c.MouseLook = true
	before := cam.Yaw
	c.Cursor(cam, 600, 600)
	assert.Equal(t, before, cam.Yaw, "re-enabled look starts from a fresh reference")

	c.Scroll(cam, 5)
	assert.Equal(t, float32(40), cam.Zoom)
}

func TestIsShaderFile(t *testing.T) {
	for path, want := range map[string]bool{
		"hexagon.vs": true, "phong.fs": true, "a/b/c.glsl": true,
		"notes.txt": false, "hexagon.vs.swp": false,
	} {
		assert.Equal(t, want, IsShaderFile(path), path)
	}
}

const (
	vs = "#version 410 core\nvoid main() {}\n"
	fs = "#version 410 core\nvoid main() {}\n"
)

func TestProgramSetReload(t *testing.T) {
	rec := gputest.New()
	log := zaptest.NewLogger(t)
	ctx := renderer.NewContext(rec, log)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.vs"), []byte(vs), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.fs"), []byte(fs), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.fs"), []byte(fs), 0o644))

	a, err := renderer.LoadProgram(ctx, root, "a.vs", "a.fs")
	require.NoError(t, err)
	b, err := renderer.LoadProgram(ctx, root, "a.vs", "b.fs")
	require.NoError(t, err)
	set := NewProgramSet(log)
	set.Add(a)
	set.Add(b)

	assert.Equal(t, 2, set.Reload(filepath.Join(root, "a.vs")))
	assert.Equal(t, 1, set.Reload(filepath.Join(root, "b.fs")))
	assert.Zero(t, set.Reload(filepath.Join(root, "other.fs")))

	require.NoError(t, os.WriteFile(filepath.Join(root, "b.fs"), []byte(gputest.FailMarker), 0o644))
	old := b.ID()
	assert.Zero(t, set.Reload(filepath.Join(root, "b.fs")))
	assert.Equal(t, old, b.ID())

	changed := make(chan string, 4)
	changed <- filepath.Join(root, "a.fs")
	changed <- filepath.Join(root, "a.fs")
	assert.Equal(t, 2, set.Drain(changed))
	assert.Zero(t, set.Drain(changed))
}

func TestWatchShaders(t *testing.T) {
	root := t.TempDir()
	sw, err := WatchShaders(root, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer sw.Close()

	require.NoError(t, os.WriteFile(filepath.Join(root, "ignored.txt"), []byte("x"), 0o644))
	path := filepath.Join(root, "phong.fs")
	require.NoError(t, os.WriteFile(path, []byte(fs), 0o644))

	select {
	case got := <-sw.Changed:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatchShadersMissingRoot(t *testing.T) {
	_, err := WatchShaders(filepath.Join(t.TempDir(), "none"), zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestStatusTitle(t *testing.T) {
	s := Status{FPS: 60, Camera: mgl32.Vec3{1, 2, 3}, PostProc: renderer.DefaultPostProcessConfig()}
	assert.Equal(t, "hexview | FPS: 60 | (1.0, 2.0, 3.0) | HDR on | bloom on | exposure 1.00 | reinhard", s.Title("hexview"))
	s.DebugUI = true
	s.PostProc.Bloom = false
	assert.Contains(t, s.Title("x"), "bloom off")
	assert.Contains(t, s.Title("x"), "| debug")
	s.Clock = "06:00 PM"
	assert.Contains(t, s.Title("x"), "| 06:00 PM | debug")
}

func TestFrameCounter(t *testing.T) {
	var f FrameCounter
	_, ok := f.Tick(10)
	assert.False(t, ok)
	for i := 1; i < 30; i++ {
		f.Tick(10 + float64(i)/30)
	}
	fps, ok := f.Tick(11)
	require.True(t, ok)
	assert.Equal(t, 31, fps)
}
