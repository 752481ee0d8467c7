package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/san-kum/heatwire/internal/heat"
)

const (
	plotTitle  = "Temperature Distribution Along the Wire Over Time"
	xAxisName  = "Length of the Wire (m)"
	yAxisName  = "Temperature (°C)"
	stripTitle = "Thermal Map of the Wire"
	// basicfont is ASCII only
	barLabel = "Temperature (deg C)"

	minWidth  = 300
	minHeight = 300
)

var (
	lineBlue  = drawing.Color{R: 31, G: 119, B: 180, A: 255}
	textBlue  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	textBlack = color.RGBA{A: 255}
)

// Renderer draws frames on a fixed temperature scale so consecutive frames
// are comparable.
type Renderer struct {
	Width, Height int
	Positions     []float64
	Dt            float64
	Min, Max      float64
}

// New sizes a renderer for p with the colour and y range taken from history.
// The range always includes 0 like the reference plot.
func New(p heat.Params, history heat.History, width, height int) *Renderer {
	lo, hi := history.Bounds()
	if lo > 0 {
		lo = 0
	}
	if hi <= lo {
		hi = lo + 1
	}
	return &Renderer{
		Width:     max(width, minWidth),
		Height:    max(height, minHeight),
		Positions: heat.Positions(p.Length, p.Points),
		Dt:        p.Dt,
		Min:       lo,
		Max:       hi,
	}
}

// layout splits the frame height: 60% plot, then strip and colour bar.
func (r *Renderer) layout() (plotH, stripY, stripH, barY, barH int) {
	plotH = r.Height * 6 / 10
	stripY = plotH + r.Height/20 + 16
	stripH = r.Height / 10
	barY = stripY + stripH + r.Height/25
	barH = r.Height / 35
	return
}

func (r *Renderer) Frame(k int, f heat.Field) (*image.RGBA, error) {
	if len(f) != len(r.Positions) {
		return nil, fmt.Errorf("render: field has %d points, renderer expects %d", len(f), len(r.Positions))
	}

	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	plotH, stripY, stripH, barY, barH := r.layout()
	plot, err := r.plot(f, plotH)
	if err != nil {
		return nil, err
	}
	draw.Draw(img, image.Rect(0, 0, r.Width, plotH), plot, plot.Bounds().Min, draw.Src)

	label := fmt.Sprintf("Time: %.2f s", float64(k)*r.Dt)
	drawText(img, r.Width*7/10, 40, label, textBlue)

	left, right := r.Width/10, r.Width*9/10
	drawCentered(img, r.Width/2, stripY-6, stripTitle, textBlack)
	r.strip(img, f, image.Rect(left, stripY, right, stripY+stripH))
	r.colourBar(img, image.Rect(left, barY, right, barY+barH))
	return img, nil
}

// WritePNG renders snapshot k of history as a PNG.
func (r *Renderer) WritePNG(w io.Writer, k int, f heat.Field) error {
	img, err := r.Frame(k, f)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func (r *Renderer) plot(f heat.Field, height int) (image.Image, error) {
	graph := chart.Chart{
		Title:      plotTitle,
		TitleStyle: chart.Style{FontSize: 12.0},
		Width:      r.Width,
		Height:     height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name:  xAxisName,
			Style: chart.Style{FontSize: 9.0},
			Range: &chart.ContinuousRange{Min: r.Positions[0], Max: r.Positions[len(r.Positions)-1]},
		},
		YAxis: chart.YAxis{
			Name:  yAxisName,
			Style: chart.Style{FontSize: 9.0},
			Range: &chart.ContinuousRange{Min: r.Min, Max: r.Max},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Temperature",
				XValues: r.Positions,
				YValues: clamp(f, r.Min, r.Max),
				Style:   chart.Style{StrokeColor: lineBlue, StrokeWidth: 2.0},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render plot: %w", err)
	}
	return png.Decode(&buf)
}

// clamp keeps diverging runs drawable; go-chart rejects NaN and Inf.
func clamp(f heat.Field, lo, hi float64) []float64 {
	out := make([]float64, len(f))
	for i, v := range f {
		switch {
		case v != v || v < lo:
			out[i] = lo
		case v > hi:
			out[i] = hi
		default:
			out[i] = v
		}
	}
	return out
}

func (r *Renderer) strip(img *image.RGBA, f heat.Field, rect image.Rectangle) {
	n := len(f)
	w := rect.Dx()
	for x := 0; x < w; x++ {
		i := x * n / w
		c := CoolWarm(f[i], r.Min, r.Max)
		draw.Draw(img, image.Rect(rect.Min.X+x, rect.Min.Y, rect.Min.X+x+1, rect.Max.Y), &image.Uniform{C: c}, image.Point{}, draw.Src)
	}
}

func (r *Renderer) colourBar(img *image.RGBA, rect image.Rectangle) {
	w := rect.Dx()
	for x := 0; x < w; x++ {
		v := r.Min + (r.Max-r.Min)*float64(x)/float64(max(w-1, 1))
		c := CoolWarm(v, r.Min, r.Max)
		draw.Draw(img, image.Rect(rect.Min.X+x, rect.Min.Y, rect.Min.X+x+1, rect.Max.Y), &image.Uniform{C: c}, image.Point{}, draw.Src)
	}

	tickY := rect.Max.Y + 14
	for i := 0; i <= 4; i++ {
		x := rect.Min.X + (w-1)*i/4
		v := r.Min + (r.Max-r.Min)*float64(i)/4
		drawCentered(img, x, tickY, fmt.Sprintf("%g", roundTick(v)), textBlack)
	}
	drawCentered(img, (rect.Min.X+rect.Max.X)/2, tickY+22, barLabel, textBlack)
}

func roundTick(v float64) float64 {
	return float64(int64(v*100+0.5*sign(v))) / 100
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// drawText draws s with its baseline at y.
func drawText(img draw.Image, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

func drawCentered(img draw.Image, cx, y int, s string, c color.Color) {
	w := font.MeasureString(basicfont.Face7x13, s).Ceil()
	drawText(img, cx-w/2, y, s, c)
}
