package chart

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Size is the pixel size charts are rendered at.
type Size struct {
	Width  int
	Height int
}

// DefaultSize matches the dashboard's chart cards.
var DefaultSize = Size{Width: 640, Height: 320}

// RenderSVG draws c as an SVG document. A chart with no data renders a
// placeholder instead of an error.
func RenderSVG(c Chart, size Size) ([]byte, error) {
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}
	if len(c.Labels) == 0 || c.Empty() {
		return emptySVG(size, c.Title, "No data available"), nil
	}

	var (
		buf bytes.Buffer
		err error
	)
	switch c.Kind {
	case KindLine:
		err = lineChart(c, size).Render(gochart.SVG, &buf)
	case KindDoughnut:
		err = donutChart(c, size).Render(gochart.SVG, &buf)
	case KindBar:
		err = barChart(c, size).Render(gochart.SVG, &buf)
	default:
		return nil, fmt.Errorf("unknown chart kind %q", c.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("rendering %s chart: %w", c.Canvas, err)
	}
	return buf.Bytes(), nil
}

func lineChart(c Chart, size Size) gochart.Chart {
	ds := c.Datasets[0]
	xs := make([]float64, len(ds.Data))
	ticks := make([]gochart.Tick, len(c.Labels))
	for i := range xs {
		xs[i] = float64(i)
	}
	for i, label := range c.Labels {
		ticks[i] = gochart.Tick{Value: float64(i), Label: label}
	}

	stroke := color(ds.Colors, 0)
	line := gochart.ContinuousSeries{
		Name:    ds.Label,
		XValues: xs,
		YValues: ds.Data,
		Style: gochart.Style{
			StrokeColor: stroke,
			StrokeWidth: 2,
			FillColor:   stroke.WithAlpha(13),
			DotColor:    stroke,
			DotWidth:    2,
		},
	}
	graph := gochart.Chart{
		Title:  c.Title,
		Width:  size.Width,
		Height: size.Height,
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: math.Max(1, float64(len(xs)-1))},
			Ticks: ticks,
		},
		Series: []gochart.Series{line},
	}
	if len(ds.Data) == 1 {
		graph.XAxis, graph.Series = singlePoint(c, line)
	}
	if c.Scale != nil {
		graph.YAxis = gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: c.Scale.Min, Max: c.Scale.Max},
			Ticks: scaleTicks(*c.Scale, 1),
		}
	}
	return graph
}

// singlePoint centers a lone value on a [0, 1] x range. go-chart needs two
// distinct x values, so a transparent series spans the range and the point is
// drawn as a dot.
func singlePoint(c Chart, line gochart.ContinuousSeries) (gochart.XAxis, []gochart.Series) {
	v := line.YValues[0]
	lo, hi := v-1, v+1
	if c.Scale != nil {
		lo, hi = c.Scale.Min, c.Scale.Max
	}
	span := gochart.ContinuousSeries{
		XValues: []float64{0, 1},
		YValues: []float64{lo, hi},
		Style: gochart.Style{
			StrokeColor: drawing.ColorTransparent,
			StrokeWidth: 1,
		},
	}

	line.XValues = []float64{0.5}
	line.Style.StrokeWidth = 0
	line.Style.FillColor = drawing.ColorTransparent
	line.Style.DotWidth = 4

	label := ""
	if len(c.Labels) > 0 {
		label = c.Labels[0]
	}
	axis := gochart.XAxis{
		Range: &gochart.ContinuousRange{Min: 0, Max: 1},
		Ticks: []gochart.Tick{{Value: 0.5, Label: label}},
	}
	return axis, []gochart.Series{span, line}
}

func donutChart(c Chart, size Size) gochart.DonutChart {
	ds := c.Datasets[0]
	values := make([]gochart.Value, 0, len(ds.Data))
	for i, v := range ds.Data {
		// Zero slices have no arc to draw.
		if v == 0 {
			continue
		}
		values = append(values, gochart.Value{
			Label: c.Labels[i],
			Value: v,
			Style: gochart.Style{
				FillColor:   color(ds.Colors, i),
				StrokeColor: drawing.ColorWhite,
			},
		})
	}
	return gochart.DonutChart{
		Title:  c.Title,
		Width:  size.Width,
		Height: size.Height,
		Values: values,
	}
}

// barChart lays the grouped bars out category by category. The middle bar of
// each group carries the category label.
func barChart(c Chart, size Size) gochart.BarChart {
	bars := make([]gochart.Value, 0, len(c.Labels)*len(c.Datasets))
	for i, category := range c.Labels {
		for j, ds := range c.Datasets {
			label := ""
			if j == len(c.Datasets)/2 {
				label = category
			}
			v := 0.0
			if i < len(ds.Data) {
				v = ds.Data[i]
			}
			bars = append(bars, gochart.Value{
				Label: label,
				Value: v,
				Style: gochart.Style{
					FillColor:   color(ds.Colors, 0),
					StrokeColor: drawing.ColorFromHex("94a3b8"),
					StrokeWidth: 1,
				},
			})
		}
	}

	graph := gochart.BarChart{
		Title:      c.Title,
		Width:      size.Width,
		Height:     size.Height,
		BarWidth:   40,
		BarSpacing: 8,
		Bars:       bars,
	}
	if c.Scale != nil {
		graph.YAxis = gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: c.Scale.Min, Max: c.Scale.Max},
			Ticks: scaleTicks(*c.Scale, 20),
		}
	}
	return graph
}

func scaleTicks(s Scale, step float64) []gochart.Tick {
	var ticks []gochart.Tick
	for v := s.Min; v <= s.Max; v += step {
		ticks = append(ticks, gochart.Tick{Value: v, Label: fmt.Sprintf("%g", v)})
	}
	return ticks
}

func color(colors []string, i int) drawing.Color {
	if len(colors) == 0 {
		return drawing.ColorBlack
	}
	if i >= len(colors) {
		i = len(colors) - 1
	}
	return drawing.ColorFromHex(strings.TrimPrefix(colors[i], "#"))
}

func emptySVG(size Size, title, message string) []byte {
	return []byte(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
		`<rect width="100%%" height="100%%" fill="#ffffff"/>`+
		`<text x="16" y="28" font-family="sans-serif" font-size="14" fill="#0f172a">%s</text>`+
		`<text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif" font-size="13" fill="#94a3b8">%s</text>`+
		`</svg>`,
		size.Width, size.Height, size.Width, size.Height,
		html.EscapeString(title), html.EscapeString(message)))
}
