package component

import (
	"bytes"
	"github.com/celskeggs/usartsim/sim/model"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRecorderWritesTransitionsOnly(t *testing.T) {
	var buf bytes.Buffer
	r, err := MakeCSVRecorder(&buf)
	require.NoError(t, err)
	require.True(t, r.IsRecording())

	levels := []bool{true, true, false, false, true, true, true, false}
	for i, level := range levels {
		now := model.TimeZero.Add(time.Duration(i) * time.Microsecond)
		r.Sample(now, "A.TxD", level)
		r.Sample(now, "B.TxD", true)
	}
	require.NoError(t, r.Close())
	require.False(t, r.IsRecording())

	expected := strings.Join([]string{
		"Nanoseconds,Channel,Level",
		"0,A.TxD,1",
		"0,B.TxD,1",
		"2000,A.TxD,0",
		"4000,A.TxD,1",
		"7000,A.TxD,0",
		"",
	}, "\n")
	require.Equal(t, expected, buf.String())

	records, err := ReadRecording(&buf)
	require.NoError(t, err)
	require.Len(t, records, 5)
	require.Equal(t, []string{"A.TxD", "B.TxD"}, Channels(records))
	a := NewCursor(records, "A.TxD")
	require.Len(t, a.Transitions(), 4)
	require.True(t, a.LevelAt(model.TimeZero.Add(1*time.Microsecond)))
	require.False(t, a.LevelAt(model.TimeZero.Add(3*time.Microsecond)))
	require.False(t, a.LevelAt(model.TimeZero.Add(9*time.Microsecond)))
	// going back in time starts over
	require.True(t, a.LevelAt(model.TimeZero.Add(1*time.Microsecond)))
	require.True(t, NewCursor(records, "B.TxD").LevelAt(model.TimeZero.Add(9*time.Microsecond)))
	c := NewCursor(records, "C.TxD")
	require.Empty(t, c.Transitions())
	require.True(t, c.LevelAt(model.TimeZero))
}

func TestRecordingFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.csv")
	r, err := CreateCSVRecorder(path)
	require.NoError(t, err)
	r.Sample(model.TimeZero, "A.TxD", true)
	r.Sample(model.TimeZero.Add(time.Millisecond), "A.TxD", false)
	require.NoError(t, r.Close())

	records, err := DecodeRecording(path)
	require.NoError(t, err)
	require.Equal(t, []Record{
		{Timestamp: model.TimeZero, Channel: "A.TxD", Level: true},
		{Timestamp: model.TimeZero.Add(time.Millisecond), Channel: "A.TxD", Level: false},
	}, records)
}

func TestNullRecorderDiscards(t *testing.T) {
	r := MakeNullCSVRecorder()
	require.False(t, r.IsRecording())
	r.Sample(model.TimeZero, "A.TxD", false)
	require.NoError(t, r.Close())
}

func TestReadRecordingRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{
		"",
		"Time,Channel,Level\n",
		"Nanoseconds,Channel,Level\n10,A.TxD,2\n",
		"Nanoseconds,Channel,Level\nxx,A.TxD,1\n",
		"Nanoseconds,Channel,Level\n10,,1\n",
	} {
		_, err := ReadRecording(strings.NewReader(input))
		require.Error(t, err, "input %q", input)
	}
	_, err := DecodeRecording(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}
