package waveplot

import (
	"errors"
	"fmt"
	"github.com/celskeggs/usartsim/sim/component"
	"github.com/celskeggs/usartsim/sim/model"
	"github.com/celskeggs/usartsim/sim/usart"
	"github.com/celskeggs/usartsim/sim/util"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"image/color"
	"time"
)

// DecodedFrame is one character found on a recorded line.
type DecodedFrame struct {
	Start       model.VirtualTime
	Layout      usart.FrameLayout
	Bits        util.Bitstream
	Frame       usart.Frame
	ParityError bool
}

func (f DecodedFrame) HasErrors() bool {
	return !f.Frame.StartOK || !f.Frame.StopOK || f.ParityError
}

// DecodeFrames samples every character on channel in the middle of its bit
// cells, the way the receiver does, starting from each falling edge seen
// while the line is idle.
func DecodeFrames(records []component.Record, channel string, mode usart.AsyncMode, bitPeriod time.Duration) []DecodedFrame {
	layout := mode.Layout()
	sampler := component.NewCursor(records, channel)
	var frames []DecodedFrame
	resume := model.TimeZero
	prev := true
	for _, rec := range sampler.Transitions() {
		falling := prev && !rec.Level
		prev = rec.Level
		if !falling || rec.Timestamp < resume {
			continue
		}
		start := rec.Timestamp
		var bits util.Bitstream
		for i := 0; i < layout.Total(); i++ {
			mid := start.Add(time.Duration(i)*bitPeriod + bitPeriod/2)
			bits.Push(sampler.LevelAt(mid))
		}
		frame := usart.DecodeAsyncFrame(bits, layout)
		frames = append(frames, DecodedFrame{
			Start:       start,
			Layout:      layout,
			Bits:        bits,
			Frame:       frame,
			ParityError: layout.Parity && usart.ParityBit(frame.Data, layout.CharLen, mode.EvenParity) != frame.Parity,
		})
		resume = start.Add(time.Duration(layout.Total()-1)*bitPeriod + bitPeriod/2)
	}
	return frames
}

var cellColors = map[usart.CellKind]color.Color{
	usart.CellStart:  color.RGBA{R: 192, G: 192, B: 192, A: 255},
	usart.CellData:   color.RGBA{R: 128, G: 192, B: 255, A: 255},
	usart.CellParity: color.RGBA{R: 255, G: 224, B: 128, A: 255},
	usart.CellStop:   color.RGBA{R: 160, G: 224, B: 160, A: 255},
}

func cellLabel(kind usart.CellKind, index int) string {
	switch kind {
	case usart.CellStart:
		return "S"
	case usart.CellData:
		return fmt.Sprintf("D%d", index-1)
	case usart.CellParity:
		return "P"
	default:
		return "T"
	}
}

func micros(t model.VirtualTime) float64 {
	return float64(t.Nanoseconds()) / 1000
}

func frameCells(frames []DecodedFrame, bitPeriod time.Duration) (cells []Cell, marks []ErrorMark) {
	for _, f := range frames {
		for i := 0; i < f.Layout.Total(); i++ {
			kind := f.Layout.Cell(i)
			cellStart := f.Start.Add(time.Duration(i) * bitPeriod)
			cells = append(cells, Cell{
				Start: micros(cellStart),
				End:   micros(cellStart.Add(bitPeriod)),
				Fill:  cellColors[kind],
				Label: cellLabel(kind, i),
			})
		}
		if f.HasErrors() {
			marks = append(marks, ErrorMark{
				At: micros(f.Start),
				Glyph: draw.GlyphStyle{
					Color:  color.RGBA{R: 255, A: 255},
					Radius: vg.Points(4),
					Shape:  draw.PyramidGlyph{},
				},
			})
		}
	}
	return cells, marks
}

func stepPoints(records []component.Record, channel string, base float64, end model.VirtualTime) plotter.XYs {
	level := func(l bool) float64 {
		if l {
			return base + 0.3
		}
		return base - 0.3
	}
	xys := plotter.XYs{{X: 0, Y: level(true)}}
	for _, rec := range records {
		if rec.Channel != channel {
			continue
		}
		if rec.Timestamp == model.TimeZero {
			xys[0].Y = level(rec.Level)
			continue
		}
		xys = append(xys, plotter.XY{X: micros(rec.Timestamp), Y: level(rec.Level)})
	}
	xys = append(xys, plotter.XY{X: micros(end), Y: xys[len(xys)-1].Y})
	return xys
}

var lineColors = []color.Color{
	color.RGBA{R: 32, G: 64, B: 192, A: 255},
	color.RGBA{R: 192, G: 64, B: 32, A: 255},
	color.RGBA{R: 32, G: 128, B: 32, A: 255},
}

// BuildPlot draws every channel in records as a logic trace, each with a row
// underneath showing the bit cells of the characters decoded in mode.
func BuildPlot(title string, records []component.Record, mode usart.AsyncMode, bitPeriod time.Duration) (*plot.Plot, error) {
	if len(records) == 0 {
		return nil, errors.New("no line transitions recorded")
	}
	if bitPeriod <= 0 {
		return nil, fmt.Errorf("invalid bit period: %v", bitPeriod)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (us)"

	end := records[len(records)-1].Timestamp.Add(2 * bitPeriod)
	var names []string
	for i, channel := range component.Channels(records) {
		base := float64(2 * i)
		line, err := plotter.NewLine(stepPoints(records, channel, base, end))
		if err != nil {
			return nil, err
		}
		line.StepStyle = plotter.PostStep
		line.Color = lineColors[i%len(lineColors)]
		p.Add(line)

		cells, marks := frameCells(DecodeFrames(records, channel, mode, bitPeriod), bitPeriod)
		p.Add(NewCellRow(cells, marks, base+1, vg.Points(14)))

		names = append(names, channel, channel+" "+mode.String())
	}
	p.NominalY(names...)
	return p, nil
}
