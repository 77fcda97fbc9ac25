// Shader debug tool - renders one grass frame to a PNG file for inspection.
//
// Usage: go run ./cmd/shaderdebug -tier high -stroke -out debug.png
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/meadow/camera"
	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/grass"
	"github.com/pthm-cable/meadow/quality"
	"github.com/pthm-cable/meadow/renderer"
	"github.com/pthm-cable/meadow/wind"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "debug.png", "Output PNG path")
	width := flag.Int("width", 1280, "Render width")
	height := flag.Int("height", 720, "Render height")
	tierName := flag.String("tier", "high", "Quality tier to render")
	stroke := flag.Bool("stroke", false, "Drag a brush across the field before rendering")
	t := flag.Float64("time", 0, "Shader time in seconds")
	scroll := flag.Float64("scroll", 0, "Scroll position in pixels")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	table, err := quality.NewTable(cfg.Quality)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build tier table: %v\n", err)
		os.Exit(1)
	}
	tier, err := quality.ParseTier(*tierName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	profile := table[tier]

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Shader Debug")
	defer rl.CloseWindow()

	w, h := float32(*width), float32(*height)

	// Simulation state
	cam := camera.New(float32(cfg.Camera.Height), float32(cfg.Camera.Distance),
		float32(cfg.Camera.LookAhead), float32(cfg.Camera.FovY))
	cam.Resize(w, h)
	plane := grass.NewPlane(cfg.Plane)
	plane.Resize(w, h)

	field := grass.NewField(profile.Instances, grass.BladeSpecFromConfig(cfg.Grass),
		profile.ClumpSize, float32(cfg.Grass.ClumpRadius), uint64(cfg.Grass.Seed))
	field.Layout(plane.Extent())

	sim := wind.NewField(profile.SimResolution, wind.ParamsFromConfig(cfg.Wind), 0)
	defer sim.Dispose()
	if *stroke {
		pointer := grass.NewPointer(0, cfg.Derived.MaxWindOffset)
		for i := 0; i < 40; i++ {
			pointer.Move(w*(0.2+0.6*float32(i)/39), h*0.7)
			sim.Step(pointer.Frame(cam, w, h, plane), 1.0/60.0)
		}
	}
	peak, pu, pv := sim.Peak()

	// GPU resources
	format := wind.SelectFormat(renderer.ProbeCapabilities())
	windTex := renderer.NewWindTexture(profile.SimResolution, format)
	defer windTex.Unload()
	windTex.Upload(sim)

	grassR := renderer.NewGrassRenderer(profile.Instances)
	grassR.Init(cfg.Grass, cfg.Wind)
	defer grassR.Unload()
	grassR.SetGeometry(field.Geometry())
	grassR.SetInstances(field.Instances())
	grassR.SetWindTexture(windTex.Texture())

	background := renderer.NewBackgroundRenderer(cfg.Screen.Background)
	background.Init()
	defer background.Unload()

	// Create render texture
	target := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(target)

	// Render scene to texture
	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Black)
	background.Draw(float32(*t), int32(*width), int32(*height))
	grassR.Draw(field.Count(), cam, renderer.GrassUniforms{
		Time:         float32(*t),
		ScrollOffset: plane.ScrollOffset(float32(*scroll)),
		Extent:       plane.Extent(),
		Turbulence:   profile.Features.Turbulence,
		Glow:         profile.Features.Glow && format != wind.FormatNone,
	})
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)

	// Export to PNG
	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Grass rendered to: %s (%dx%d, tier %s, %d instances, wind %s, peak %.3f at %.2f,%.2f)\n",
			*outPath, *width, *height, tier, field.Count(), format, peak, pu, pv)
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
