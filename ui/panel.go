package ui

import (
	"fmt"
	"log/slog"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/metaballs/game"
)

const panelWidth = 240

// Panel is the control panel drawn in the top-left corner.
type Panel struct {
	theme   Theme
	sliders []SliderDescriptor
	visible bool

	// OnStill is called when the export button is pressed.
	OnStill func()
}

// NewPanel creates a visible panel with the default sliders.
func NewPanel() *Panel {
	return &Panel{
		theme:   DefaultTheme(),
		sliders: Sliders(),
		visible: true,
	}
}

// Toggle flips panel visibility.
func (p *Panel) Toggle() { p.visible = !p.visible }

// IsVisible returns whether the panel is drawn.
func (p *Panel) IsVisible() bool { return p.visible }

// Bounds returns the panel rectangle.
func (p *Panel) Bounds() rl.Rectangle {
	t := p.theme
	rows := int32(len(p.sliders))*(t.LineHeight+t.SliderHeight+4) +
		int32(len(effectOrder)+2)*(t.ButtonHeight+4) +
		t.HeaderFontSize + t.LineHeight + 3*t.Padding
	return rl.Rectangle{X: 10, Y: 10, Width: panelWidth, Height: float32(rows)}
}

// Contains reports whether a point falls on the visible panel, so hosts can
// keep panel clicks from reaching the scene.
func (p *Panel) Contains(x, y float32) bool {
	if !p.visible {
		return false
	}
	return rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, p.Bounds())
}

// Draw renders the panel and applies any control changes to c.
func (p *Panel) Draw(c Controller) {
	if !p.visible {
		return
	}
	t := p.theme
	b := p.Bounds()
	rl.DrawRectangleRec(b, t.PanelBg)
	rl.DrawRectangleLinesEx(b, 1, t.PanelBorder)

	x := int32(b.X) + t.Padding
	y := int32(b.Y) + t.Padding
	w := float32(panelWidth - 2*t.Padding)

	rl.DrawText("METABALLS", x, y, t.HeaderFontSize, t.SectionHeader)
	y += t.HeaderFontSize + 4
	rl.DrawText(HUDLine(c), x, y, t.FontSize, t.LabelColor)
	y += t.LineHeight + t.Padding/2

	settings := c.Settings()
	for _, d := range p.sliders {
		value := float32(d.Get(settings))
		rl.DrawText(d.Label, x, y, t.FontSize, t.LabelColor)
		text := fmt.Sprintf(d.Format, value)
		tw := rl.MeasureText(text, t.FontSize)
		rl.DrawText(text, x+int32(w)-tw, y, t.FontSize, t.ValueColor)
		y += t.LineHeight

		rect := rl.Rectangle{X: float32(x), Y: float32(y), Width: w, Height: float32(t.SliderHeight)}
		applySlider(c, d, gui.SliderBar(rect, "", "", value, d.Min, d.Max))
		y += t.SliderHeight + 4
	}

	effects := c.Effects()
	for _, eff := range effectOrder {
		label := strings.ToUpper(eff.String()[:1]) + eff.String()[1:]
		if effects.Has(eff) {
			label = "[x] " + label
		} else {
			label = "[ ] " + label
		}
		if p.button(x, y, w, label) {
			if _, err := c.ToggleEffect(eff.String()); err != nil {
				slog.Warn("toggle effect", "effect", eff, "error", err)
			}
		}
		y += t.ButtonHeight + 4
	}

	if p.button(x, y, w, BackendLabel(c)) {
		if err := c.SetBackend(nextBackend(c)); err != nil {
			slog.Warn("switch backend", "error", err)
		}
	}
	y += t.ButtonHeight + 4

	if p.button(x, y, w, "Export still") && p.OnStill != nil {
		p.OnStill()
	}
}

func (p *Panel) button(x, y int32, w float32, label string) bool {
	rect := rl.Rectangle{X: float32(x), Y: float32(y), Width: w, Height: float32(p.theme.ButtonHeight)}
	return gui.Button(rect, label)
}

// BackendLabel is the text of the backend switch button.
func BackendLabel(c Controller) string {
	if !c.GPUAvailable() {
		return "Backend: CPU (GPU unavailable)"
	}
	return fmt.Sprintf("Backend: %s", strings.ToUpper(c.Backend().String()))
}

// HUDLine summarises the frame stats in one line.
func HUDLine(c Controller) string {
	s := c.FrameStats()
	return fmt.Sprintf("%.0f fps  %d balls  %s", s.FPS, s.BallCount, strings.ToUpper(s.Backend.String()))
}

var _ Controller = (*game.Engine)(nil)
