// Field law preview tool - interactive tuning of the falloff and blend constants.
//
// Usage: go run ./cmd/lawpreview [-config config.yaml]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/metaballs/config"
	"github.com/pthm-cable/metaballs/field"
	"github.com/pthm-cable/metaballs/game"
	"github.com/pthm-cable/metaballs/renderer"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
	plotHeight   = 150
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	initial := cfg.Derived.Law
	law := initial
	threshold := float32(cfg.Render.Threshold)
	glow := float32(cfg.Render.Glow)

	rl.InitWindow(windowWidth, windowHeight, "Field Law Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	sink := renderer.NewTextureSink()
	defer sink.Unload()

	needsRegen := true
	var yamlText string
	for !rl.WindowShouldClose() {
		if needsRegen {
			if err := law.Validate(); err != nil {
				slog.Warn("law rejected", "error", err)
			}
			if yamlText, err = fieldYAML(law); err != nil {
				slog.Warn("yaml", "error", err)
			}
			needsRegen = false
		}
		img, err := renderPreview(law, previewSize, float64(threshold), float64(glow))

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		// Preview
		if err == nil {
			if err := sink.Present(img, game.Surface{Width: previewSize, Height: previewSize, Quality: 1}); err != nil {
				slog.Warn("present", "error", err)
			}
		}
		rl.DrawRectangleLines(0, 0, previewSize, previewSize, rl.DarkGray)
		drawProfile(law, float64(threshold), float64(glow), 10, previewSize+20, previewSize-20, plotHeight)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)
		rl.DrawText("Field Law Parameters", int32(panelX), int32(panelY), 20, rl.LightGray)
		panelY += 30

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 200, Height: 24}, "Model: "+law.Model.String()) {
			law.Model = (law.Model + 1) % (field.InverseSquare + 1)
			needsRegen = true
		}
		panelY += 32

		panelY = slider(panelX, panelY, "Threshold", "%.2f", &threshold, 0.05, 2)
		panelY = slider(panelX, panelY, "Glow", "%.2f", &glow, 0, 3)
		for _, s := range lawSliders {
			v := float32(*s.value(&law))
			panelY = slider(panelX, panelY, s.label, s.format, &v, s.min, s.max)
			if float64(v) != *s.value(&law) {
				*s.value(&law) = float64(v)
				needsRegen = true
			}
		}
		panelY += 8

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 26}, "Reset All") {
			law = initial
			threshold = float32(cfg.Render.Threshold)
			glow = float32(cfg.Render.Glow)
			needsRegen = true
		}
		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX+130), int32(panelY+7), 12, rl.Gray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yamlText)
		}

		rl.DrawText(yamlText, int32(previewSize+20), windowHeight-190, 10, rl.Gray)
		rl.EndDrawing()
	}
}

// slider draws a labelled slider and returns the next row's y.
func slider(x, y float32, label, format string, v *float32, lo, hi float32) float32 {
	rl.DrawText(label, int32(x), int32(y), 12, rl.Gray)
	y += 14
	*v = gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: float32(panelWidth - 80), Height: 14}, "", "", *v, lo, hi)
	rl.DrawText(fmt.Sprintf(format, *v), int32(x+float32(panelWidth-70)), int32(y), 12, rl.LightGray)
	return y + 20
}

// drawProfile plots field (yellow) and opacity (white) against distance for one ball.
func drawProfile(law field.Law, threshold, glow float64, x, y, w, h int32) {
	rl.DrawRectangleLines(x, y, w, h, rl.DarkGray)
	radius := float64(previewSize) / 8
	pts := profile(law, radius, threshold, glow, int(w))

	maxField := pts[0].Field
	if maxField <= 0 {
		maxField = 1
	}
	for i := 1; i < len(pts); i++ {
		x0, x1 := x+int32(i-1), x+int32(i)
		f0 := y + h - int32(pts[i-1].Field/maxField*float64(h))
		f1 := y + h - int32(pts[i].Field/maxField*float64(h))
		rl.DrawLine(x0, f0, x1, f1, rl.Yellow)
		a0 := y + h - int32(pts[i-1].Alpha*float64(h))
		a1 := y + h - int32(pts[i].Alpha*float64(h))
		rl.DrawLine(x0, a0, x1, a1, rl.RayWhite)
	}

	label := "visible across the profile"
	if edge := visibleEdge(law, pts, threshold); edge >= 0 {
		label = fmt.Sprintf("edge at %.1f radii", edge/radius)
	}
	rl.DrawText(label, x+4, y+4, 12, rl.Gray)
}
