// Command demo draws one cube per material under a set of animated lights.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	stdmath "math"
	"os"
	"path/filepath"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"material-engine/config"
	"material-engine/core"
	"material-engine/core/window"
	"material-engine/glsl"
	"material-engine/internal/opengl"
	"material-engine/materials"
	"material-engine/renderer"
	"material-engine/scene"
	"material-engine/textures"
)

func main() {
	configPath := flag.String("config", "", "TOML settings file")
	gltfPath := flag.String("gltf", "", "glTF file to import extra materials from")
	objPath := flag.String("obj", "", "Wavefront OBJ model to place in the scene")
	flag.Parse()

	if err := run(*configPath, *gltfPath, *objPath); err != nil {
		fmt.Fprintf(os.Stderr, "demo: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, gltfPath, objPath string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	log := core.NewLogger(os.Stderr, cfg.LogLevel())
	slog.SetDefault(log)

	win, err := window.New(window.Config{
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Title:     cfg.Window.Title,
		Resizable: true,
		VSync:     cfg.Window.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Destroy()

	dev, err := opengl.NewDevice(log)
	if err != nil {
		return err
	}

	lib := glsl.NewLibrary(nil)
	if cfg.Shaders.Dir != "" {
		lib = glsl.Dir(cfg.Shaders.Dir)
		log.Info("using shader sources from disk", "dir", cfg.Shaders.Dir)
	}

	engine, err := renderer.New(dev, glsl.NewCompiler(lib, dev), renderer.Options{
		BindingPoint: cfg.Lighting.BindingPoint,
		Logger:       log,
	})
	if err != nil {
		return err
	}
	defer engine.Destroy()

	texMgr := textures.NewManager(dev)
	defer texMgr.DestroyAll()

	mats, err := buildMaterials(texMgr)
	if err != nil {
		return err
	}
	if gltfPath != "" {
		imported, err := materials.ImportGLTF(gltfPath, texMgr, log)
		if err != nil {
			return err
		}
		log.Info("imported glTF materials", "path", gltfPath, "count", len(imported))
		mats = append(mats, imported...)
	}

	cubeMesh := scene.CreateCube(1)
	floorMesh := scene.CreatePlane(40, 40, 1)
	uploaded := map[*scene.Mesh]*opengl.GPUMesh{
		cubeMesh:  dev.UploadMesh(cubeMesh),
		floorMesh: dev.UploadMesh(floorMesh),
	}
	defer func() {
		for _, gm := range uploaded {
			gm.Release()
		}
	}()

	s := scene.NewScene()
	cam := scene.NewOrbitCamera(mgl32.Vec3{}, 14, 50, float32(cfg.Window.Width)/float32(cfg.Window.Height))
	s.SetCamera(&cam.Camera)

	floorMat := materials.NewMaterial("Floor")
	floorMat.Diffuse.Color = core.Color{R: 0.35, G: 0.35, B: 0.38, A: 1}
	floor := scene.NewNode("Floor")
	floor.Mesh, floor.Material = floorMesh, floorMat
	floor.SetPosition(mgl32.Vec3{0, -1, 0})
	s.AddNode(floor)

	cols := int(stdmath.Ceil(stdmath.Sqrt(float64(len(mats)))))
	var cubes []*scene.Node
	for i, m := range mats {
		n := scene.NewNode(m.Name)
		n.Mesh, n.Material = cubeMesh, m
		x := float32(i%cols) - float32(cols-1)/2
		z := float32(i/cols) - float32(cols-1)/2
		n.SetPosition(mgl32.Vec3{x * 2, 0, z * 2})
		if m.Transparency < 1 {
			n.RenderingOrder = 1
		}
		s.AddNode(n)
		cubes = append(cubes, n)
	}

	if objPath != "" {
		model, err := loadModel(objPath, texMgr, log)
		if err != nil {
			return err
		}
		for _, n := range model.Children {
			uploaded[n.Mesh] = dev.UploadMesh(n.Mesh)
		}
		model.SetPosition(mgl32.Vec3{0, 0, float32(cols) + 2})
		s.AddNode(model)
	}

	width, height := cfg.Window.Width, cfg.Window.Height
	dev.SetViewport(width, height)
	drawNode := func(n *scene.Node) { uploaded[n.Mesh].Draw() }

	var lastStats renderer.FrameStats
	lastTime := float32(win.Time())
	for !win.ShouldClose() {
		win.PollEvents()
		if win.IsKeyPressed(glfw.KeyEscape) {
			win.Close()
		}
		if win.Width != width || win.Height != height {
			width, height = win.Width, win.Height
			dev.SetViewport(width, height)
			cam.UpdateAspectRatio(float32(width), float32(height))
		}

		t := float32(win.Time())
		dt := t - lastTime
		lastTime = t
		cam.Orbit(dt*0.2, 0)
		for _, n := range cubes {
			n.Rotate(mgl32.Vec3{0, 1, 0}, dt)
		}

		s.Lights = sceneLights(t)
		if err := engine.BeginFrame(s.Lights); err != nil {
			return err
		}

		view := renderer.ViewFromCamera(s.Camera)
		culled := engine.SubmitScene(s, view, drawNode)

		dev.Clear(core.Color{R: 0.05, G: 0.06, B: 0.09, A: 1})
		stats := engine.Flush(view)
		if stats != lastStats {
			log.Debug("frame", "draws", stats.Draws, "culled", culled,
				"programs", stats.ProgramSwitches, "textures", stats.TextureSwitches)
			lastStats = stats
		}
		win.SwapBuffers()
	}
	return nil
}

func buildMaterials(tm *textures.Manager) ([]*materials.Material, error) {
	checker, err := tm.Checker("checker", 64, color.RGBA{220, 220, 220, 255}, color.RGBA{60, 60, 60, 255})
	if err != nil {
		return nil, err
	}
	spec, err := tm.SolidColor("spec-white", color.RGBA{255, 255, 255, 255})
	if err != nil {
		return nil, err
	}
	env, err := tm.SolidCube("env-sky", color.RGBA{120, 160, 220, 255})
	if err != nil {
		return nil, err
	}

	chrome := materials.ChromeMaterial("Chrome", spec, env)
	shinyTextured := materials.ShinyMaterial("Shiny Checker", core.ColorWhite, spec, 48)
	shinyTextured.Diffuse.Texture = checker
	phongFallback := materials.NewMaterial("Phong Without Map")
	phongFallback.LightingModel = materials.Phong

	return []*materials.Material{
		materials.UnlitMaterial("Unlit Red", core.ColorRed),
		materials.DefaultMaterial(),
		materials.TexturedMaterial("Checker", checker),
		materials.ShinyMaterial("Shiny Green", core.ColorGreen, spec, 32),
		shinyTextured,
		chrome,
		phongFallback,
		materials.GlassMaterial("Glass"),
	}, nil
}

// loadModel builds a node per OBJ group, shading each with the material its
// usemtl names. Groups whose material is missing fall back to the default.
func loadModel(path string, tm *textures.Manager, log *slog.Logger) (*scene.Node, error) {
	data, err := scene.LoadOBJ(path)
	if err != nil {
		return nil, err
	}
	lookup := func(name string) *textures.Texture {
		tex, err := tm.Load(filepath.Join(filepath.Dir(path), name))
		if err != nil {
			log.Warn("texture map skipped", "map", name, "err", err)
			return nil
		}
		return tex
	}
	mats := make(map[string]*materials.Material)
	for _, lib := range data.MaterialLibs {
		loaded, err := materials.LoadMTL(lib, lookup)
		if err != nil {
			log.Warn("material library skipped", "path", lib, "err", err)
			continue
		}
		for name, m := range loaded {
			mats[name] = m
		}
	}

	fallback := materials.DefaultMaterial()
	root := scene.NewNode(filepath.Base(path))
	for _, g := range data.Groups {
		n := scene.NewNode(g.Mesh.Name)
		n.Mesh, n.Material = g.Mesh, fallback
		if m, ok := mats[g.Material]; ok {
			n.Material = m
			if m.Transparency < 1 {
				n.RenderingOrder = 1
			}
		}
		root.AddChild(n)
	}
	log.Info("loaded model", "path", path, "groups", len(data.Groups), "materials", len(mats))
	return root, nil
}

// sceneLights returns more lights than the lighting block holds, so the
// tail is dropped every frame; its ambient contribution still counts.
func sceneLights(t float32) []*scene.Light {
	lights := []*scene.Light{
		scene.NewAmbientLight(core.Color{R: 0.08, G: 0.08, B: 0.1, A: 1}),
		scene.NewDirectionalLight(mgl32.Vec3{-0.3, -1, -0.4}, core.Color{R: 0.6, G: 0.6, B: 0.55, A: 1}),
		scene.NewSpotLight(mgl32.Vec3{0, 6, 0}, mgl32.Vec3{0, -1, 0}, core.Color{R: 1, G: 0.9, B: 0.7, A: 1}, 15, 30),
	}
	colors := []core.Color{core.ColorRed, core.ColorGreen, core.ColorBlue}
	for i := 0; i < 6; i++ {
		a := t + float32(i)*stdmath.Pi/3
		pos := mgl32.Vec3{5 * float32(stdmath.Cos(float64(a))), 1.5, 5 * float32(stdmath.Sin(float64(a)))}
		lights = append(lights, scene.NewPointLight(pos, colors[i%len(colors)], 1, 8))
	}
	lights = append(lights, scene.NewAmbientLight(core.Color{R: 0.04, G: 0.03, B: 0.02, A: 1}))
	return lights
}
