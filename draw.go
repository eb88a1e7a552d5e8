package main

import (
	"fmt"
	"image/color"

	"airhockey/netlink"
	"airhockey/rink"

	"github.com/hajimehoshi/ebiten/v2"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	dark "github.com/thiagokokada/dark-mode-go"
)

type palette struct {
	Background color.NRGBA
	Line       color.NRGBA
	Local      color.NRGBA
	Opponent   color.NRGBA
	Ball       color.NRGBA
	HUD        color.NRGBA
	Text       color.NRGBA
	Good       color.NRGBA
	Bad        color.NRGBA
	Neutral    color.NRGBA
}

var (
	darkPalette = palette{
		Background: color.NRGBA{0x10, 0x18, 0x20, 0xff},
		Line:       color.NRGBA{0x50, 0x60, 0x70, 0xff},
		Local:      color.NRGBA{0x3c, 0x8c, 0xff, 0xff},
		Opponent:   color.NRGBA{0xff, 0x50, 0x50, 0xff},
		Ball:       color.NRGBA{0xf0, 0xf0, 0xf0, 0xff},
		HUD:        color.NRGBA{0x08, 0x08, 0x08, 0xff},
		Text:       color.NRGBA{0xe0, 0xe0, 0xe0, 0xff},
		Good:       color.NRGBA{0x40, 0xc0, 0x40, 0xff},
		Bad:        color.NRGBA{0xe0, 0x40, 0x40, 0xff},
		Neutral:    color.NRGBA{0xc0, 0xa0, 0x40, 0xff},
	}
	lightPalette = palette{
		Background: color.NRGBA{0xf4, 0xf8, 0xfc, 0xff},
		Line:       color.NRGBA{0xa0, 0xb0, 0xc0, 0xff},
		Local:      color.NRGBA{0x00, 0x00, 0xff, 0xff},
		Opponent:   color.NRGBA{0xff, 0x00, 0x00, 0xff},
		Ball:       color.NRGBA{0x20, 0x20, 0x20, 0xff},
		HUD:        color.NRGBA{0xe0, 0xe4, 0xe8, 0xff},
		Text:       color.NRGBA{0x10, 0x10, 0x10, 0xff},
		Good:       color.NRGBA{0x00, 0x80, 0x00, 0xff},
		Bad:        color.NRGBA{0xc0, 0x00, 0x00, 0xff},
		Neutral:    color.NRGBA{0x90, 0x70, 0x00, 0xff},
	}
	pal = darkPalette
)

// applyTheme selects the palette. "auto" follows the desktop setting.
func applyTheme(theme string) {
	switch theme {
	case "light":
		pal = lightPalette
	case "dark":
		pal = darkPalette
	default:
		isDark, err := dark.IsDarkMode()
		if err != nil || isDark {
			pal = darkPalette
		} else {
			pal = lightPalette
		}
	}
}

// entityRect returns the square an entity's circle is inscribed in.
func entityRect(e rink.Entity) (x, y, w, h float64) {
	return e.X - e.R, e.Y - e.R, 2 * e.R, 2 * e.R
}

func entityColor(v rink.View) color.NRGBA {
	switch {
	case v.Kind == rink.KindBall:
		return pal.Ball
	case v.IsLocal:
		return pal.Local
	}
	return pal.Opponent
}

func drawField(screen *ebiten.Image) {
	screen.Fill(pal.Background)
	mid := float32(rink.FieldHeight / 2)
	vector.StrokeLine(screen, 0, mid, rink.FieldWidth, mid, 2, pal.Line, false)
	vector.StrokeRect(screen, 1, 1, rink.FieldWidth-2, rink.FieldHeight-2, 2, pal.Line, false)
}

func drawEntity(screen *ebiten.Image, v rink.View) {
	x, y, w, _ := entityRect(v.Entity)
	r := float32(w / 2)
	vector.FillCircle(screen, float32(x)+r, float32(y)+r, r, entityColor(v), true)
}

type hudState struct {
	Status   netlink.Status
	Received bool
	Stopped  bool
	Snapshot rink.Snapshot
	Local    rink.Side
}

// statusColor is green while open, red once closed and amber otherwise.
func statusColor(s netlink.Status) color.NRGBA {
	switch s.State {
	case netlink.Open:
		return pal.Good
	case netlink.Closed, netlink.Errored:
		return pal.Bad
	}
	return pal.Neutral
}

// notice is the centre message shown over the field, if any.
func (h hudState) notice() string {
	switch {
	case h.Stopped:
		return "Game stopped by server"
	case h.Status.State == netlink.Open && !h.Received:
		return "Waiting for another player..."
	}
	return ""
}

func scoreLine(s rink.Snapshot, local rink.Side) string {
	p1, p2 := s.Player1, s.Player2
	n1, n2 := p1.Name, p2.Name
	if n1 == "" {
		n1 = rink.Player1.String()
	}
	if n2 == "" {
		n2 = rink.Player2.String()
	}
	if local == rink.Player2 {
		n2 += " (you)"
	} else {
		n1 += " (you)"
	}
	return fmt.Sprintf("%s %d : %d %s", n1, p1.Score, p2.Score, n2)
}

func drawHUD(screen *ebiten.Image, h hudState) {
	top := float32(rink.FieldHeight)
	vector.DrawFilledRect(screen, 0, top, screenW, hudH, pal.HUD, false)

	op := &text.DrawOptions{}
	op.GeoM.Translate(8, float64(top)+5)
	op.ColorScale.ScaleWithColor(statusColor(h.Status))
	text.Draw(screen, h.Status.Text(), hudFont, op)

	score := scoreLine(h.Snapshot, h.Local)
	sw, _ := text.Measure(score, hudFont, 0)
	op = &text.DrawOptions{}
	op.GeoM.Translate(float64(screenW)-sw-8, float64(top)+5)
	op.ColorScale.ScaleWithColor(pal.Text)
	text.Draw(screen, score, hudFont, op)

	if msg := h.notice(); msg != "" {
		mw, mh := text.Measure(msg, hudFontBold, 0)
		op = &text.DrawOptions{}
		op.GeoM.Translate((rink.FieldWidth-mw)/2, (rink.FieldHeight-mh)/2-40)
		op.ColorScale.ScaleWithColor(pal.Text)
		text.Draw(screen, msg, hudFontBold, op)
	}
}

func drawStats(screen *ebiten.Image, lines []string) {
	if len(lines) == 0 {
		return
	}
	lh := statsFont.Metrics().HAscent + statsFont.Metrics().HDescent + 2
	w := 0.0
	for _, l := range lines {
		if lw, _ := text.Measure(l, statsFont, 0); lw > w {
			w = lw
		}
	}
	vector.DrawFilledRect(screen, 4, 4, float32(w+12), float32(lh*float64(len(lines))+8), color.NRGBA{0, 0, 0, 0xb0}, false)
	for i, l := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(10, 8+float64(i)*lh)
		op.ColorScale.ScaleWithColor(color.White)
		text.Draw(screen, l, statsFont, op)
	}
}
