package view

import (
	"fmt"
	"physcore/internal/simchan"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

var hudBounds = rl.Rectangle{X: 10, Y: 10, Width: 280, Height: 250}

type hud struct {
	paused     bool
	showBounds bool
	timeScale  float32
	selected   string
}

func initStyle() {
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorBgDark))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(colorBgElement))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_FOCUSED, gui.NewColorPropertyValue(colorBgHover))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(colorAccent))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(colorTextSecondary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_FOCUSED, gui.NewColorPropertyValue(colorTextPrimary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_PRESSED, gui.NewColorPropertyValue(colorTextPrimary))
	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_FOCUSED, gui.NewColorPropertyValue(colorAccent))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 15)
}

func (h *hud) contains(p rl.Vector2) bool {
	return rl.CheckCollisionPointRec(p, hudBounds)
}

// draw renders the panel and reports whether reset was pressed. Controls
// that only make sense for an in-process world are hidden otherwise.
func (h *hud) draw(frame simchan.Frame, mode string, restarts int, step time.Duration, local bool) bool {
	rl.DrawRectangleRec(hudBounds, colorBgPanel)
	x, y := int32(hudBounds.X)+10, int32(hudBounds.Y)+10

	line := func(text string, color rl.Color) {
		rl.DrawText(text, x, y, 16, color)
		y += 20
	}
	line(fmt.Sprintf("Mode: %s  Frame: %d", mode, frame.Seq), colorTextPrimary)
	line(fmt.Sprintf("Ticks: %d  Ratio: %.2f", frame.Stats.Ticks, frame.Stats.SpeedRatio), colorTextSecondary)
	line(fmt.Sprintf("Contacts: %d  Unsupported: %d", frame.Stats.Contacts, frame.Stats.Unsupported), colorTextSecondary)
	if local {
		line(fmt.Sprintf("Step: %.2f ms", float64(step.Microseconds())/1000), rl.Green)
	} else {
		line(fmt.Sprintf("Restarts: %d", restarts), colorTextSecondary)
	}
	if h.selected != "" {
		line(h.selected, rl.Yellow)
	}

	y += 6
	h.showBounds = gui.CheckBox(rl.Rectangle{X: float32(x), Y: float32(y), Width: 16, Height: 16}, "Show bounds", h.showBounds)
	if !local {
		return false
	}
	y += 26
	h.paused = gui.CheckBox(rl.Rectangle{X: float32(x), Y: float32(y), Width: 16, Height: 16}, "Pause", h.paused)
	y += 26
	h.timeScale = gui.Slider(rl.Rectangle{X: float32(x) + 60, Y: float32(y), Width: 140, Height: 16}, "Speed", fmt.Sprintf("%.2f", h.timeScale), h.timeScale, 0.1, 2)
	y += 26
	return gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: 100, Height: 24}, "Reset")
}
