package component

import (
	"encoding/csv"
	"errors"
	"fmt"
	"github.com/celskeggs/usartsim/sim/model"
	"github.com/hashicorp/go-multierror"
	"io"
	"log"
	"os"
	"strconv"
)

var recordingHeader = []string{"Nanoseconds", "Channel", "Level"}

// CSVLineRecorder writes a row every time a line changes level. The first
// sample on each channel is always written.
type CSVLineRecorder struct {
	output *csv.Writer
	closer io.Closer
	last   map[string]bool
}

func (r *CSVLineRecorder) IsRecording() bool {
	return r.output != nil
}

func (r *CSVLineRecorder) Sample(now model.VirtualTime, channel string, level bool) {
	if channel == "" {
		panic("invalid empty channel name")
	}
	if r.output == nil {
		// not recording; discard
		return
	}
	if last, seen := r.last[channel]; seen && last == level {
		return
	}
	r.last[channel] = level
	err := r.output.Write([]string{
		strconv.FormatUint(now.Nanoseconds(), 10),
		channel,
		formatLevel(level),
	})
	r.output.Flush()
	if err == nil {
		err = r.output.Error()
	}
	if err != nil {
		log.Fatal(err)
	}
}

// Close flushes the recording and closes the underlying file, if any.
func (r *CSVLineRecorder) Close() (err error) {
	if r.output == nil {
		return nil
	}
	r.output.Flush()
	err = r.output.Error()
	r.output = nil
	if r.closer != nil {
		if e := r.closer.Close(); e != nil {
			err = multierror.Append(err, e)
		}
	}
	return err
}

func formatLevel(level bool) string {
	if level {
		return "1"
	}
	return "0"
}

func MakeNullCSVRecorder() *CSVLineRecorder {
	return &CSVLineRecorder{
		output: nil,
	}
}

// MakeCSVRecorder starts a recording on w. If w is an io.Closer, Close closes it.
func MakeCSVRecorder(w io.Writer) (*CSVLineRecorder, error) {
	cw := csv.NewWriter(w)
	err := cw.Write(recordingHeader)
	cw.Flush()
	if err == nil {
		err = cw.Error()
	}
	if err != nil {
		return nil, err
	}
	closer, _ := w.(io.Closer)
	return &CSVLineRecorder{
		output: cw,
		closer: closer,
		last:   map[string]bool{},
	}, nil
}

func CreateCSVRecorder(path string) (*CSVLineRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	r, err := MakeCSVRecorder(f)
	if err != nil {
		if e := f.Close(); e != nil {
			err = multierror.Append(err, e)
		}
		return nil, err
	}
	return r, nil
}

type Record struct {
	Timestamp model.VirtualTime
	Channel   string
	Level     bool
}

func ReadRecording(r io.Reader) (records []Record, err error) {
	recordsRaw, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recordsRaw) < 1 {
		return nil, errors.New("no header found")
	}
	header := recordsRaw[0]
	if len(header) != 3 || header[0] != recordingHeader[0] || header[1] != recordingHeader[1] || header[2] != recordingHeader[2] {
		return nil, fmt.Errorf("invalid header: %v", header)
	}
	for _, record := range recordsRaw[1:] {
		if len(record) != 3 {
			return nil, fmt.Errorf("invalid data record: %v", record)
		}
		// decode timestamp
		timestampNS, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			return nil, err
		}
		timestamp, ok := model.FromNanoseconds(timestampNS)
		if !ok {
			return nil, fmt.Errorf("invalid timestamp: %v", record[0])
		}
		// decode channel
		channel := record[1]
		if channel == "" {
			return nil, errors.New("invalid empty string channel")
		}
		// decode level
		var level bool
		switch record[2] {
		case "0":
		case "1":
			level = true
		default:
			return nil, fmt.Errorf("invalid level: %q", record[2])
		}
		records = append(records, Record{
			Timestamp: timestamp,
			Channel:   channel,
			Level:     level,
		})
	}
	return records, nil
}

func DecodeRecording(path string) (records []Record, re error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := r.Close(); err != nil {
			re = multierror.Append(re, err)
		}
	}()
	return ReadRecording(r)
}

// Channels lists the channel names in order of first appearance.
func Channels(records []Record) []string {
	var names []string
	seen := map[string]bool{}
	for _, rec := range records {
		if !seen[rec.Channel] {
			seen[rec.Channel] = true
			names = append(names, rec.Channel)
		}
	}
	return names
}

// Cursor answers level queries on one channel of a recording. Queries in
// non-decreasing time order walk the transitions once; an earlier time
// restarts from the beginning.
type Cursor struct {
	transitions []Record
	next        int
	level       bool
	last        model.VirtualTime
}

// NewCursor selects the transitions of channel. Before the first transition
// the line is idle (high).
func NewCursor(records []Record, channel string) *Cursor {
	c := &Cursor{}
	for _, rec := range records {
		if rec.Channel == channel {
			c.transitions = append(c.transitions, rec)
		}
	}
	c.rewind()
	return c
}

func (c *Cursor) rewind() {
	c.next = 0
	c.level = true
	c.last = model.TimeZero
}

// Transitions lists the records of the cursor's channel in order.
func (c *Cursor) Transitions() []Record {
	return c.transitions
}

// LevelAt reports the level of the channel at time t.
func (c *Cursor) LevelAt(t model.VirtualTime) bool {
	if t < c.last {
		c.rewind()
	}
	c.last = t
	for c.next < len(c.transitions) && c.transitions[c.next].Timestamp <= t {
		c.level = c.transitions[c.next].Level
		c.next++
	}
	return c.level
}
