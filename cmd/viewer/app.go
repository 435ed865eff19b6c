package main

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"hexview/core"
	"hexview/internal/config"
	"hexview/internal/opengl"
	"hexview/internal/viewer"
	"hexview/renderer"
	"hexview/scene"
)

const (
	shininess   = 32
	heightScale = 0.1
	lampScale   = 0.2
	// lampIntensity pushes lamp colors above the bloom threshold.
	lampIntensity = 4
	lampAlpha     = 0.8
)

var lampColors = []mgl32.Vec3{
	{1, 0.6, 0.2},
	{0.2, 0.6, 1},
	{1, 0.2, 0.4},
	{0.4, 1, 0.3},
	{1, 1, 1},
	{0.8, 0.4, 1},
	{1, 1, 0.4},
	{0.3, 1, 1},
}

type app struct {
	cfg config.Config
	log *zap.Logger
	win *core.Window
	ctx *renderer.Context

	state scene.ProgramState
	cam   *scene.Camera
	ctl   *viewer.Controller
	fps   viewer.FrameCounter

	pp    *renderer.PostProcess
	set   *viewer.ProgramSet
	watch *viewer.ShaderWatcher

	phong     *renderer.Program
	instanced *renderer.Program
	tangent   *renderer.Program
	lamp      *renderer.Program

	fan      *renderer.Primitive
	normal   *renderer.Primitive
	parallax *renderer.Primitive
	grid     *renderer.Primitive
	lampHex  *renderer.Primitive
	model    *renderer.Model
	cache    *renderer.TextureCache

	dir    scene.DirectionalLight
	day    *scene.DayNight
	lights []scene.PointLight

	lastErr string
}

func newApp(cfg config.Config, log *zap.Logger, win *core.Window) (*app, error) {
	a := &app{
		cfg: cfg,
		log: log,
		win: win,
		ctx: renderer.NewContext(opengl.Functions{}, log),
		dir: scene.DefaultDirectionalLight(),
		day: scene.NewDayNight(cfg.Lights.DayLength),
		set: viewer.NewProgramSet(log),
		ctl: viewer.NewController(viewer.Bindings{
			Forward: core.KeyW, Backward: core.KeyS, Left: core.KeyA, Right: core.KeyD,
			ExposureDown: core.KeyQ, ExposureUp: core.KeyE,
			HDR: core.KeyH, Bloom: core.KeyB, ToneMapper: core.KeyT,
			DebugUI: core.KeyF1, Quit: core.KeyEscape,
		}),
	}

	a.state = scene.DefaultProgramState()
	if err := a.state.Load(cfg.StatePath); err != nil {
		log.Warn("Program state partially restored", zap.String("path", cfg.StatePath), zap.Error(err))
	}
	a.cam = scene.NewCamera(a.state.CameraPosition)
	a.cam.SetFront(a.state.CameraFront)
	a.setDebugUI(a.state.DebugUI)

	ppCfg, err := cfg.Renderer()
	if err != nil {
		return nil, err
	}
	a.pp, err = renderer.NewPostProcess(a.ctx, max(win.Width, 1), max(win.Height, 1), ppCfg)
	if err != nil {
		return nil, fmt.Errorf("post-processing: %w", err)
	}

	a.loadPrograms()
	if err := a.buildScene(); err != nil {
		a.close()
		return nil, err
	}

	if cfg.Shaders.HotReload {
		a.watch, err = viewer.WatchShaders(cfg.Shaders.Root, log)
		if err != nil {
			log.Warn("Shader hot reload disabled", zap.String("root", cfg.Shaders.Root), zap.Error(err))
		}
	}

	win.SetCursorCallback(func(x, y float64) { a.ctl.Cursor(a.cam, x, y) })
	win.SetScrollCallback(func(_, yoff float64) { a.ctl.Scroll(a.cam, yoff) })

	if err := opengl.CheckError("scene setup"); err != nil {
		log.Warn("OpenGL error during setup", zap.Error(err))
	}
	return a, nil
}

// loadPrograms builds the scene programs. A program that fails stays
// invalid and its geometry is not drawn until a reload fixes it.
func (a *app) loadPrograms() {
	load := func(vs, fs string) *renderer.Program {
		p, _ := renderer.LoadProgram(a.ctx, a.cfg.Shaders.Root, vs, fs)
		a.set.Add(p)
		return p
	}
	a.phong = load("hexagon.vs", "phong.fs")
	a.instanced = load("instanced.vs", "phong.fs")
	a.tangent = load("tangent.vs", "tangent.fs")
	a.lamp = load("hexagon.vs", "lamp.fs")
}

func (a *app) buildScene() error {
	a.cache = renderer.NewTextureCache(a.ctx, a.cfg.TextureOptions())
	tex := func(kind, path string) *renderer.Texture {
		if path == "" {
			return nil
		}
		t, _ := a.cache.Get(scene.TextureRef{Kind: kind, Path: path})
		return t
	}
	diffuse := tex(scene.TextureDiffuse, a.cfg.Textures.Diffuse)
	normal := tex(scene.TextureNormal, a.cfg.Textures.Normal)
	height := tex(scene.TextureHeight, a.cfg.Textures.Height)

	prim := func(caps scene.Capabilities, instances []mgl32.Mat4, textures ...*renderer.Texture) (*renderer.Primitive, error) {
		geom, err := scene.BuildHexagon(scene.DefaultHexagonPositions, scene.DefaultHexagonUVs, caps)
		if err != nil {
			return nil, err
		}
		p, err := renderer.NewPrimitive(a.ctx, geom, caps, instances)
		if err != nil {
			return nil, err
		}
		p.Textures = textures
		return p, nil
	}

	var err error
	if a.fan, err = prim(scene.Capabilities{Indexed: true}, nil, diffuse); err != nil {
		return err
	}
	if a.normal, err = prim(scene.Capabilities{TangentBasis: true}, nil, diffuse, normal); err != nil {
		return err
	}
	if a.parallax, err = prim(scene.Capabilities{TangentBasis: true}, nil, diffuse, normal, height); err != nil {
		return err
	}
	grid := a.cfg.Instances
	instances := scene.HexGrid(grid.Rows, grid.Columns, grid.Spacing, -1)
	if a.grid, err = prim(scene.Capabilities{Indexed: true, Instanced: true}, instances, diffuse); err != nil {
		return err
	}
	if a.lampHex, err = prim(scene.Capabilities{Indexed: true}, nil); err != nil {
		return err
	}

	if a.cfg.Model.Path != "" {
		// A broken model is logged by LoadModel and left out of the scene.
		a.model, _ = renderer.LoadModel(a.ctx, a.cfg.Model.Path, a.cache)
	}

	for i := 0; i < a.cfg.Lights.Points; i++ {
		l := scene.DefaultPointLight(mgl32.Vec3{})
		l.Color = lampColors[i%len(lampColors)]
		a.lights = append(a.lights, l)
	}
	a.log.Info("Scene ready",
		zap.Int("instances", len(instances)), zap.Int("lights", len(a.lights)),
		zap.Int("textures", a.cache.Len()), zap.Bool("model", a.model != nil))
	return nil
}

func (a *app) setDebugUI(on bool) {
	a.state.DebugUI = on
	a.ctl.MouseLook = !on
	a.win.CaptureCursor(!on)
}

func (a *app) run() {
	last := a.win.Time()
	for !a.win.ShouldClose() {
		now := a.win.Time()
		dt := float32(now - last)
		last = now

		a.update(now, dt)
		if a.win.Width > 0 && a.win.Height > 0 {
			a.render(float32(now))
		}
		a.win.SwapBuffers()
		a.win.PollEvents()
	}
}

func (a *app) update(now float64, dt float32) {
	if w, h, ok := a.win.TakeResize(); ok && w > 0 && h > 0 {
		if err := a.pp.Resize(w, h); err != nil {
			a.log.Warn("Post-process resize failed", zap.Error(err))
		}
		if err := opengl.CheckError("resize"); err != nil {
			a.log.Warn("OpenGL error after resize", zap.Error(err))
		}
	}
	if a.watch != nil {
		a.set.Drain(a.watch.Changed)
	}

	in := a.ctl.Update(a.win, a.cam, dt)
	if in.Exposure != 0 {
		a.pp.AdjustExposure(in.Exposure)
	}
	for _, act := range in.Actions {
		switch act {
		case viewer.ToggleHDR:
			a.log.Info("HDR toggled", zap.Bool("on", a.pp.ToggleHDR()))
		case viewer.ToggleBloom:
			a.log.Info("Bloom toggled", zap.Bool("on", a.pp.ToggleBloom()))
		case viewer.CycleToneMapper:
			a.log.Info("Tone mapper changed", zap.Stringer("tone_mapper", a.pp.CycleToneMapper()))
		case viewer.ToggleDebugUI:
			a.setDebugUI(!a.state.DebugUI)
		case viewer.Quit:
			a.win.SetShouldClose(true)
		}
	}

	if a.day.Active {
		a.day.Update(dt)
		a.day.Apply(&a.dir)
	}

	speed := a.cfg.Lights.OrbitSpeed
	for i := range a.lights {
		phase := 2 * math32.Pi * float32(i) / float32(len(a.lights))
		a.lights[i].Position = scene.OrbitPosition(mgl32.Vec3{}, a.cfg.Lights.OrbitRadius, 0.5, float32(now)*speed+phase)
	}

	if fps, ok := a.fps.Tick(now); ok {
		clock := ""
		if a.day.Active {
			clock = a.day.Clock()
		}
		a.win.SetTitle(viewer.Status{
			FPS:      fps,
			Camera:   a.cam.Position,
			PostProc: a.pp.Config(),
			DebugUI:  a.state.DebugUI,
			Clock:    clock,
		}.Title(a.cfg.Window.Title))
	}
}

// prepare makes p current and sets the per-frame uniforms shared by every
// scene program.
func (a *app) prepare(p *renderer.Program, view, projection mgl32.Mat4, lighting *renderer.Lighting) {
	p.Use()
	p.SetMat4("view", view)
	p.SetMat4("projection", projection)
	lighting.Apply(p)
	a.pp.SceneUniforms(p)
}

func (a *app) render(t float32) {
	a.pp.BeginScene(a.state.ClearColor.Vec4(1))

	view := a.cam.ViewMatrix()
	projection := a.cam.ProjectionMatrix(a.win.Aspect())
	lighting := &renderer.Lighting{
		Directional:  &a.dir,
		Points:       a.lights,
		ViewPosition: a.cam.Position,
		Shininess:    shininess,
	}

	if a.phong.Valid() {
		a.prepare(a.phong, view, projection, lighting)
		a.phong.SetInt("texture_diffuse1", 0)
		a.phong.SetBool("useTexture", a.fan.Textures[0] != nil)
		a.phong.SetVec3("objectColor", mgl32.Vec3{0.8, 0.8, 0.8})
		a.phong.SetMat4("model", mgl32.Translate3D(-1.5, 0, 0).Mul4(mgl32.HomogRotate3DZ(t*0.3)))
		a.fan.Draw()
	}

	if a.instanced.Valid() {
		a.prepare(a.instanced, view, projection, lighting)
		a.instanced.SetInt("texture_diffuse1", 0)
		a.instanced.SetBool("useTexture", a.grid.Textures[0] != nil)
		a.instanced.SetVec3("objectColor", mgl32.Vec3{0.5, 0.55, 0.6})
		a.grid.Draw()
	}

	if a.tangent.Valid() {
		a.prepare(a.tangent, view, projection, lighting)
		a.tangent.SetInt("texture_diffuse1", 0)
		a.tangent.SetInt("texture_normal1", 1)
		a.tangent.SetInt("texture_height1", 2)
		a.tangent.SetFloat("heightScale", heightScale)

		a.tangent.SetBool("useNormalMap", a.normal.Textures[1] != nil)
		a.tangent.SetBool("useParallax", false)
		a.tangent.SetMat4("model", mgl32.Ident4())
		a.normal.Draw()

		a.tangent.SetBool("useParallax", a.parallax.Textures[2] != nil)
		a.tangent.SetMat4("model", mgl32.Translate3D(1.5, 0, 0))
		a.parallax.Draw()

		if a.model != nil {
			a.drawModel(t)
		}
	}

	if a.lamp.Valid() && len(a.lights) > 0 {
		a.drawLamps(view, projection)
	}

	if err := a.pp.EndScene(); err != nil {
		if msg := err.Error(); msg != a.lastErr {
			a.log.Warn("Post-processing skipped", zap.Error(err))
			a.lastErr = msg
		}
	} else {
		a.lastErr = ""
	}
}

func (a *app) drawModel(t float32) {
	scale := a.cfg.Model.Scale
	center := a.model.Bounds.Center()
	model := mgl32.Translate3D(0, 0, -3).
		Mul4(mgl32.HomogRotate3DY(t * 0.2)).
		Mul4(mgl32.Scale3D(scale, scale, scale)).
		Mul4(mgl32.Translate3D(-center[0], -center[1], -center[2]))
	a.tangent.SetMat4("model", model)
	a.tangent.SetBool("useParallax", false)
	for _, mesh := range a.model.Meshes {
		hasNormal := false
		for _, mt := range mesh.Textures {
			hasNormal = hasNormal || mt.Kind == scene.TextureNormal
		}
		a.tangent.SetBool("useNormalMap", hasNormal)
		mesh.Draw(a.tangent)
	}
}

// drawLamps draws a translucent hexagon at every point light, farthest
// first.
func (a *app) drawLamps(view, projection mgl32.Mat4) {
	lamps := append([]scene.PointLight(nil), a.lights...)
	scene.SortBackToFront(lamps, a.cam.Position, func(l scene.PointLight) mgl32.Vec3 { return l.Position })

	a.lamp.Use()
	a.lamp.SetMat4("view", view)
	a.lamp.SetMat4("projection", projection)
	a.lamp.SetFloat("alpha", lampAlpha)
	a.pp.SceneUniforms(a.lamp)
	renderer.WithBlending(a.ctx, func() {
		for _, l := range lamps {
			a.lamp.SetVec3("lightColor", l.Tint().Mul(lampIntensity))
			a.lamp.SetMat4("model", mgl32.Translate3D(l.Position[0], l.Position[1], l.Position[2]).
				Mul4(mgl32.Scale3D(lampScale, lampScale, lampScale)))
			a.lampHex.Draw()
		}
	})
}

// close saves the program state and releases every GPU object.
func (a *app) close() {
	a.state.CameraPosition = a.cam.Position
	a.state.CameraFront = a.cam.Front
	if err := a.state.Save(a.cfg.StatePath); err != nil {
		a.log.Error("Failed to save program state", zap.String("path", a.cfg.StatePath), zap.Error(err))
	}

	if a.watch != nil {
		a.watch.Close()
	}
	for _, p := range []*renderer.Primitive{a.fan, a.normal, a.parallax, a.grid, a.lampHex} {
		if p != nil {
			p.Release()
		}
	}
	if a.model != nil {
		a.model.Release()
	}
	if a.cache != nil {
		a.cache.Release()
	}
	for _, p := range []*renderer.Program{a.phong, a.instanced, a.tangent, a.lamp} {
		if p != nil {
			p.Release()
		}
	}
	a.pp.Release()
}
