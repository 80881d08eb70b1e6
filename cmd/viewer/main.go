package main

import (
	"flag"
	"math"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	forward "github.com/forge3d/forward"
	"github.com/forge3d/forward/gfx"
	"github.com/forge3d/forward/gfx/gl41"
	"github.com/forge3d/forward/render"
	"github.com/forge3d/forward/scene"
)

func init() {
	runtime.LockOSThread()
}

// orbitCamera drags around a fixed target with the left mouse button and
// zooms with the scroll wheel.
type orbitCamera struct {
	target   mgl32.Vec3
	distance float32
	yaw      float32
	pitch    float32
	dragging bool
	lastX    float64
	lastY    float64
}

func (o *orbitCamera) apply(cam *scene.Camera) {
	pitch := mgl32.Clamp(o.pitch, -1.5, 1.5)
	eye := mgl32.Vec3{
		o.distance * float32(math.Cos(float64(pitch))*math.Sin(float64(o.yaw))),
		o.distance * float32(math.Sin(float64(pitch))),
		o.distance * float32(math.Cos(float64(pitch))*math.Cos(float64(o.yaw))),
	}
	cam.LookAt(o.target.Add(eye), o.target, mgl32.Vec3{0, 1, 0})
}

func main() {
	scenePath := flag.String("scene", "scenes/default.json", "Scene description to load")
	debug := flag.Bool("debug", false, "Enable debug logging")
	width := flag.Int("width", 1280, "Window width")
	height := flag.Int("height", 720, "Window height")
	flag.Parse()

	log := forward.NewDefaultLogger("viewer", *debug)

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	window, err := glfw.CreateWindow(*width, *height, "Forward Viewer", nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	dev, err := gl41.NewDevice()
	if err != nil {
		panic(err)
	}
	reg, err := gl41.NewRegistry(render.ShaderAtlas)
	if err != nil {
		panic(err)
	}

	textures := gl41.NewTextureCache()
	sc, err := scene.LoadFile(*scenePath, scene.LoadOptions{
		Device: dev,
		Textures: func(path string) gfx.Texture {
			if t := textures.Get(path); t != nil {
				return t
			}
			log.Warnf("texture %q not found, using white fallback", path)
			return nil
		},
	})
	if err != nil {
		panic(err)
	}
	log.Infof("loaded scene %q: %d prefabs, %d lights", sc.Name, len(sc.Prefabs), len(sc.Lights))

	r, err := render.New(dev, reg, render.Config{
		Mode:   render.Lit(render.Multipass),
		Width:  *width,
		Height: *height,
	}, log)
	if err != nil {
		panic(err)
	}

	cam := scene.NewCamera()
	cam.SetPerspective(60, float32(*width)/float32(*height), 0.1, 1000)
	orbit := &orbitCamera{distance: 15, pitch: 0.4}

	window.SetFramebufferSizeCallback(func(w *glfw.Window, fbw, fbh int) {
		cfg := r.Config()
		cfg.Width, cfg.Height = fbw, fbh
		cam.SetPerspective(60, float32(fbw)/float32(fbh), 0.1, 1000)
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button == glfw.MouseButtonLeft {
			orbit.dragging = action == glfw.Press
			orbit.lastX, orbit.lastY = w.GetCursorPos()
		}
	})
	window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		if orbit.dragging {
			orbit.yaw += float32(x-orbit.lastX) * 0.005
			orbit.pitch += float32(y-orbit.lastY) * 0.005
		}
		orbit.lastX, orbit.lastY = x, y
	})
	window.SetScrollCallback(func(w *glfw.Window, dx, dy float64) {
		orbit.distance = mgl32.Clamp(orbit.distance-float32(dy), 1, 200)
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		cfg := r.Config()
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.Key1:
			cfg.Mode = render.Flat()
		case glfw.Key2:
			cfg.Mode = render.Textured()
		case glfw.Key3:
			cfg.Mode = render.Lit(cfg.Mode.Lighting)
		case glfw.KeyM:
			if cfg.Mode.Lighting == render.Multipass {
				cfg.Mode.Lighting = render.Singlepass
			} else {
				cfg.Mode.Lighting = render.Multipass
			}
			log.Infof("render mode: %s", cfg.Mode)
		case glfw.KeyZ:
			cfg.ShadowsSinglepass = !cfg.ShadowsSinglepass
			log.Infof("singlepass shadows: %v", cfg.ShadowsSinglepass)
		case glfw.KeyA:
			cfg.UseShadowAtlas = !cfg.UseShadowAtlas
			log.Infof("shadow atlas: %v", cfg.UseShadowAtlas)
		case glfw.KeyX:
			cfg.ShowShadowmaps = !cfg.ShowShadowmaps
		case glfw.KeyF:
			cfg.Wireframe = !cfg.Wireframe
		case glfw.KeyB:
			cfg.ShowBounds = !cfg.ShowBounds
		}
	})

	for !window.ShouldClose() {
		glfw.PollEvents()
		orbit.apply(cam)
		r.RenderScene(sc, cam)
		window.SwapBuffers()
	}
}
