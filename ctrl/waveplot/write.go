package waveplot

import (
	"fmt"
	"github.com/celskeggs/usartsim/sim/component"
	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Height fits two channels, each with its trace and cell row.
const Height = 4 * vg.Inch

var formats = map[string]string{
	"png": "png", "svg": "svg", "pdf": "pdf", "eps": "eps",
	"jpg": "jpg", "jpeg": "jpg", "tif": "tiff", "tiff": "tiff",
}

// FormatOf picks the image format from the extension of path.
func FormatOf(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	format, ok := formats[ext]
	if !ok {
		return "", fmt.Errorf("unsupported plot format: %q", filepath.Ext(path))
	}
	return format, nil
}

// Width gives each bit cell in the recording a quarter inch, within limits
// that keep the image readable and reasonably sized.
func Width(records []component.Record, bitPeriod time.Duration) vg.Length {
	if len(records) == 0 || bitPeriod <= 0 {
		return 8 * vg.Inch
	}
	cells := int64(records[len(records)-1].Timestamp.Nanoseconds())/int64(bitPeriod) + 2
	w := vg.Length(cells) * vg.Inch / 4
	switch {
	case w < 8*vg.Inch:
		return 8 * vg.Inch
	case w > 60*vg.Inch:
		return 60 * vg.Inch
	}
	return w
}

func WritePlot(p *plot.Plot, width, height vg.Length, output io.Writer, format string) error {
	w, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = w.WriteTo(output)
	return err
}

// SavePlot renders p to path in the format named by its extension.
func SavePlot(p *plot.Plot, width, height vg.Length, path string) (err error) {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); e != nil {
			if err == nil {
				err = e
			} else {
				err = multierror.Append(err, e)
			}
		}
	}()
	return WritePlot(p, width, height, f, format)
}
