package chart

import (
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// pngScale enlarges the raster so labels stay legible.
const pngScale = 2

var transparent = drawing.Color{R: 255, G: 255, B: 255, A: 0}

// RenderPNG draws spec as a PNG with the same axes, ticks and markers as the
// vector scene.
func RenderPNG(w io.Writer, spec Spec) error {
	bg := drawing.ColorFromHex(ColorBackground[1:])
	grid := drawing.ColorFromHex(ColorGrid[1:])
	label := drawing.ColorFromHex(ColorLabel[1:])

	xTicks := make([]gochart.Tick, len(CaffeineTicks))
	for i, v := range CaffeineTicks {
		xTicks[i] = gochart.Tick{Value: v, Label: formatTick(v)}
	}
	yTicks := make([]gochart.Tick, len(SleepTicks))
	for i, v := range SleepTicks {
		yTicks[i] = gochart.Tick{Value: v, Label: formatTick(v) + "h"}
	}

	axisStyle := gochart.Style{FontColor: label, StrokeColor: grid, FontSize: 8}
	gridStyle := gochart.Style{StrokeColor: grid, StrokeWidth: 1}

	ch := gochart.Chart{
		Width:  Width * pngScale,
		Height: Height * pngScale,
		Background: gochart.Style{
			FillColor: bg,
			Padding: gochart.Box{
				Top:    MarginTop * pngScale,
				Right:  MarginRight * pngScale,
				Bottom: MarginBottom / 2 * pngScale,
				Left:   MarginLeft / 2 * pngScale,
			},
		},
		Canvas: gochart.Style{FillColor: bg},
		XAxis: gochart.XAxis{
			Name:           "Caffeine (mg/day)",
			NameStyle:      gochart.Style{FontColor: label},
			Style:          axisStyle,
			Range:          &gochart.ContinuousRange{Min: CaffeineMin, Max: CaffeineMax},
			Ticks:          xTicks,
			GridMajorStyle: gridStyle,
			GridMinorStyle: gridStyle,
		},
		YAxis: gochart.YAxis{
			Name:           "Sleep (hours)",
			NameStyle:      gochart.Style{FontColor: label},
			Style:          axisStyle,
			Range:          &gochart.ContinuousRange{Min: SleepMin, Max: SleepMax},
			Ticks:          yTicks,
			GridMajorStyle: gridStyle,
			GridMinorStyle: gridStyle,
		},
		// go-chart refuses to render without a series; this one spans the
		// axes and draws nothing.
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    "frame",
				XValues: []float64{CaffeineMin, CaffeineMax},
				YValues: []float64{SleepMin, SleepMax},
				Style:   gochart.Style{StrokeColor: transparent, StrokeWidth: 1},
			},
		},
	}
	ch.Elements = []gochart.Renderable{markers(spec)}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render png chart: %w", err)
	}
	return nil
}

// markers draws the zone, the average triangle and the user disc in plot
// coordinates. Marker sizes follow the SVG scene, scaled.
func markers(spec Spec) gochart.Renderable {
	return func(r gochart.Renderer, box gochart.Box, defaults gochart.Style) {
		px := func(v float64) int {
			return box.Left + int(float64(box.Width())*(v-CaffeineMin)/(CaffeineMax-CaffeineMin))
		}
		py := func(v float64) int {
			return box.Bottom - int(float64(box.Height())*(v-SleepMin)/(SleepMax-SleepMin))
		}

		if z := spec.Zone; z != nil {
			x0, x1 := px(z.XMin), px(z.XMax)
			y0, y1 := py(z.YMax), py(z.YMin)
			r.SetFillColor(drawing.Color{R: 52, G: 211, B: 153, A: 64})
			r.SetStrokeColor(drawing.Color{R: 52, G: 211, B: 153, A: 204})
			r.SetStrokeWidth(2 * pngScale)
			r.MoveTo(x0, y0)
			r.LineTo(x1, y0)
			r.LineTo(x1, y1)
			r.LineTo(x0, y1)
			r.Close()
			r.FillStroke()
		}

		if p := spec.Average; p != nil {
			x, y := px(p.CaffeineMg), py(p.SleepHours)
			r.SetFillColor(drawing.ColorFromHex(ColorAverage[1:]))
			r.SetStrokeColor(transparent)
			r.MoveTo(x, y-10*pngScale)
			r.LineTo(x-8*pngScale, y+6*pngScale)
			r.LineTo(x+8*pngScale, y+6*pngScale)
			r.Close()
			r.Fill()
		}

		if p := spec.User; p != nil {
			x, y := px(p.CaffeineMg), py(p.SleepHours)
			r.SetFillColor(drawing.ColorFromHex(ColorUser[1:]))
			r.SetStrokeColor(drawing.ColorWhite)
			r.SetStrokeWidth(3 * pngScale)
			r.Circle(14*pngScale, x, y)
			r.FillStroke()

			r.SetFont(defaults.Font)
			r.SetFontColor(drawing.ColorWhite)
			r.SetFontSize(8 * pngScale)
			tb := r.MeasureText("YOU")
			r.Text("YOU", x-tb.Width()/2, y+4*pngScale)
		}
	}
}
