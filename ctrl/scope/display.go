package main

import (
	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"github.com/celskeggs/usartsim/ctrl/waveplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vggio"
	"log"
	"os"
)

// ScopeView draws a waveform plot with a movable time window.
type ScopeView struct {
	Plot       *plot.Plot
	DPI        int
	ExportPath string

	fullMin, fullMax float64
}

func NewScopeView(p *plot.Plot, exportPath string) *ScopeView {
	return &ScopeView{
		Plot:       p,
		DPI:        128,
		ExportPath: exportPath,
		fullMin:    p.X.Min,
		fullMax:    p.X.Max,
	}
}

func (s *ScopeView) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	wAdjusted := vg.Points(float64(size.X) * vg.Inch.Points() / float64(s.DPI))
	hAdjusted := vg.Points(float64(size.Y) * vg.Inch.Points() / float64(s.DPI))
	cnv := vggio.New(gtx, wAdjusted, hAdjusted, vggio.UseDPI(s.DPI))
	s.Plot.Draw(draw.New(cnv))
	return layout.Dimensions{Size: size}
}

// Zoom scales the visible window around its center; factors below 1 zoom in.
func (s *ScopeView) Zoom(factor float64) {
	center := (s.Plot.X.Min + s.Plot.X.Max) / 2
	half := (s.Plot.X.Max - s.Plot.X.Min) / 2 * factor
	if full := (s.fullMax - s.fullMin) / 2; half > full {
		half = full
	}
	s.setWindow(center-half, center+half)
}

// Pan moves the visible window by a fraction of its width.
func (s *ScopeView) Pan(fraction float64) {
	shift := (s.Plot.X.Max - s.Plot.X.Min) * fraction
	s.setWindow(s.Plot.X.Min+shift, s.Plot.X.Max+shift)
}

func (s *ScopeView) ResetWindow() {
	s.setWindow(s.fullMin, s.fullMax)
}

func (s *ScopeView) setWindow(min, max float64) {
	if min < s.fullMin {
		max += s.fullMin - min
		min = s.fullMin
	}
	if max > s.fullMax {
		min -= max - s.fullMax
		max = s.fullMax
	}
	if min < s.fullMin {
		min = s.fullMin
	}
	s.Plot.X.Min, s.Plot.X.Max = min, max
}

func (s *ScopeView) Export() {
	err := waveplot.SavePlot(s.Plot, 12*vg.Inch, waveplot.Height, s.ExportPath)
	if err != nil {
		log.Printf("Export failed: %v", err)
	} else {
		log.Printf("Exported visible window to %s", s.ExportPath)
	}
}

// DisplayPlot opens a window showing p until it is closed or Q/Escape is
// pressed. Plus and minus zoom, the arrow keys pan, Home shows everything and
// E exports the visible window.
func DisplayPlot(p *plot.Plot, title string) {
	view := NewScopeView(p, "scope-export.png")

	go func() {
		win := app.NewWindow(
			app.Title(title),
			app.Size(
				unit.Px(1280),
				unit.Px(480),
			),
		)
		defer win.Close()

		for e := range win.Events() {
			switch e := e.(type) {
			case system.FrameEvent:
				ops := new(op.Ops)
				gtx := layout.NewContext(ops, e)
				layout.UniformInset(unit.Dp(20)).Layout(gtx, view.Layout)
				e.Frame(ops)

			case key.Event:
				if e.State != key.Press {
					break
				}
				switch e.Name {
				case "Q", key.NameEscape:
					win.Close()
				case "+", "=":
					view.Zoom(0.5)
				case "-":
					view.Zoom(2)
				case key.NameLeftArrow:
					view.Pan(-0.25)
				case key.NameRightArrow:
					view.Pan(0.25)
				case key.NameHome:
					view.ResetWindow()
				case "E":
					view.Export()
				}
				win.Invalidate()

			case system.DestroyEvent:
				os.Exit(0)
			}
		}
	}()

	app.Main()
}
