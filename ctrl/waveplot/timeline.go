package waveplot

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"image/color"
	"math"
)

// Cell is one labelled span on a CellRow, in plot X units.
type Cell struct {
	Start, End float64
	Fill       color.Color
	Label      string
}

// ErrorMark flags a point on a CellRow, such as the start of a bad frame.
type ErrorMark struct {
	At    float64
	Glyph draw.GlyphStyle
}

// CellRow draws a strip of boxes at a fixed Y position.
type CellRow struct {
	Cells  []Cell
	Marks  []ErrorMark
	Y      float64
	Height vg.Length

	Outline draw.LineStyle
	Text    draw.TextStyle
}

var (
	_ plot.Plotter    = (*CellRow)(nil)
	_ plot.DataRanger = (*CellRow)(nil)
)

func NewCellRow(cells []Cell, marks []ErrorMark, y float64, height vg.Length) *CellRow {
	return &CellRow{
		Cells:   cells,
		Marks:   marks,
		Y:       y,
		Height:  height,
		Outline: plotter.DefaultLineStyle,
		Text: text.Style{
			Font:    font.From(plotter.DefaultFont, 8),
			XAlign:  draw.XCenter,
			YAlign:  draw.YCenter,
			Handler: plot.DefaultTextHandler,
		},
	}
}

func (r *CellRow) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	y := trY(r.Y)
	if !c.ContainsY(y) {
		return
	}
	bottom, top := y-r.Height/2, y+r.Height/2

	for _, cell := range r.Cells {
		x0, x1 := trX(cell.Start), trX(cell.End)
		if cell.Fill != nil {
			c.FillPolygon(cell.Fill, c.ClipPolygonX([]vg.Point{
				{X: x0, Y: bottom}, {X: x1, Y: bottom}, {X: x1, Y: top}, {X: x0, Y: top},
			}))
		}
		c.StrokeLines(r.Outline, c.ClipLinesX([]vg.Point{
			{X: x0, Y: bottom}, {X: x1, Y: bottom}, {X: x1, Y: top}, {X: x0, Y: top}, {X: x0, Y: bottom},
		})...)
		// skip labels wider than their cell
		if cell.Label == "" || !c.ContainsX(x0) || x0+r.Text.Width(cell.Label) > x1 {
			continue
		}
		c.FillText(r.Text, vg.Point{X: (x0 + x1) / 2, Y: y}, cell.Label)
	}

	for _, m := range r.Marks {
		c.DrawGlyph(m.Glyph, vg.Point{X: trX(m.At), Y: top})
	}
}

func (r *CellRow) DataRange() (xmin, xmax, ymin, ymax float64) {
	if len(r.Cells) == 0 && len(r.Marks) == 0 {
		return 0, 0, r.Y, r.Y
	}
	xmin, xmax = math.Inf(1), math.Inf(-1)
	for _, cell := range r.Cells {
		xmin = math.Min(xmin, cell.Start)
		xmax = math.Max(xmax, cell.End)
	}
	for _, m := range r.Marks {
		xmin = math.Min(xmin, m.At)
		xmax = math.Max(xmax, m.At)
	}
	return xmin, xmax, r.Y, r.Y
}
