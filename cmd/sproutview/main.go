// Interactive 3D viewer for the plant growth simulation.
//
// Usage: go run ./cmd/sproutview
package main

import (
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sprout/config"
	"github.com/pthm-cable/sprout/plant"
)

const (
	windowWidth  = 1280
	windowHeight = 800
	panelWidth   = 260
)

var kindColors = map[plant.Kind]color{
	plant.KindRoot: {139, 90, 43, 255},
	plant.KindStem: {34, 139, 34, 255},
	plant.KindLeaf: {120, 200, 80, 255},
}

type color = rl.Color

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPathArg())
	if err != nil {
		logger.Error("loading config", "error", err)
		os.Exit(1)
	}

	var seed uint64 = 42
	organism, err := cfg.BuildOrganism(seed)
	if err != nil {
		logger.Error("building organism", "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Sprout Viewer")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	camera := rl.Camera3D{
		Position:   rl.Vector3{X: 40, Y: 25, Z: 40},
		Target:     rl.Vector3{X: 0, Y: 0, Z: 0},
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}

	// days of simulated time advanced per wall-clock second
	var speed float32 = 2.0
	paused := false
	var accum float32

	for !rl.WindowShouldClose() {
		rl.UpdateCamera(&camera, rl.CameraOrbital)

		if !paused {
			accum += rl.GetFrameTime() * speed
			for accum >= float32(cfg.Sim.DT) && organism.Time() < cfg.Sim.Days {
				if err := organism.Simulate(cfg.Sim.DT); err != nil {
					logger.Error("simulation step failed", "error", err)
					paused = true
					break
				}
				accum -= float32(cfg.Sim.DT)
			}
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.BeginMode3D(camera)
		rl.DrawGrid(20, 5)
		drawOrganism(organism)
		rl.EndMode3D()

		drawPanel(organism, cfg, &speed, &paused, func() {
			fresh, err := cfg.BuildOrganism(seed)
			if err != nil {
				logger.Error("rebuilding organism", "error", err)
				return
			}
			organism = fresh
			accum = 0
		})

		rl.EndDrawing()
	}
}

func configPathArg() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return ""
}

// drawOrganism renders every segment, colored by the owning organ's kind.
// The simulation's z-up frame maps to raylib's y-up frame.
func drawOrganism(o *plant.Organism) {
	nodes := o.Nodes()
	segs := o.Segments(plant.KindAny)
	origins := o.SegmentOrigins(plant.KindAny)
	for i, s := range segs {
		c, ok := kindColors[origins[i].OrganKind()]
		if !ok {
			c = rl.Gray
		}
		rl.DrawLine3D(toScene(nodes[s.A]), toScene(nodes[s.B]), c)
	}
}

func toScene(v plant.Vec3) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Z), Z: float32(v.Y)}
}

func drawPanel(o *plant.Organism, cfg *config.Config, speed *float32, paused *bool, reset func()) {
	panelX := float32(windowWidth - panelWidth - 10)
	panelY := float32(10)

	rl.DrawRectangle(int32(panelX)-10, 0, panelWidth+20, windowHeight, rl.Fade(rl.LightGray, 0.4))
	rl.DrawText("Sprout", int32(panelX), int32(panelY), 24, rl.DarkGray)
	panelY += 40

	rl.DrawText(fmt.Sprintf("day %.1f / %.0f", o.Time(), cfg.Sim.Days), int32(panelX), int32(panelY), 18, rl.DarkGray)
	panelY += 25
	rl.DrawText(fmt.Sprintf("organs %d  nodes %d", o.NumberOfOrgans(), o.NumberOfNodes()), int32(panelX), int32(panelY), 16, rl.Gray)
	panelY += 22
	rl.DrawText(fmt.Sprintf("root length %.1f cm", o.Summed("length", plant.KindRoot)), int32(panelX), int32(panelY), 16, rl.Gray)
	panelY += 22
	rl.DrawText(fmt.Sprintf("stem length %.1f cm", o.Summed("length", plant.KindStem)), int32(panelX), int32(panelY), 16, rl.Gray)
	panelY += 35

	rl.DrawText("Speed (days/s)", int32(panelX), int32(panelY), 14, rl.Gray)
	panelY += 18
	*speed = gui.SliderBar(
		rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth - 60, Height: 20},
		"0.1", "20",
		*speed, 0.1, 20,
	)
	rl.DrawText(fmt.Sprintf("%.1f", *speed), int32(panelX+panelWidth-50), int32(panelY+2), 16, rl.DarkGray)
	panelY += 35

	if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 110, Height: 30}, toggleText(*paused, "Resume", "Pause")) {
		*paused = !*paused
	}
	if gui.Button(rl.Rectangle{X: panelX + 120, Y: panelY, Width: 110, Height: 30}, "Reset") {
		reset()
	}
}

func toggleText(cond bool, whenTrue, whenFalse string) string {
	if cond {
		return whenTrue
	}
	return whenFalse
}
