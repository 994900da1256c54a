package duration

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "-"},
		{"empty string", "", "-"},
		{"whitespace", "   ", "-"},
		{"nil string pointer", (*string)(nil), "-"},
		{"zero", 0, "0:00"},
		{"sub minute", 59, "0:59"},
		{"sub hour", 3599, "59:59"},
		{"one hour", 3600, "1:00"},
		{"hour and a half drops seconds", 5459, "1:30"},
		{"fractional seconds truncate", 90.9, "1:30"},
		{"negative int", -1, "-"},
		{"negative float", -0.5, "-"},
		{"NaN", math.NaN(), "-"},
		{"infinity", math.Inf(1), "-"},
		{"two part clock is minutes and seconds", "1:30", "1:30"},
		{"three part clock", "01:02:03", "1:02"},
		{"single part numeric string", "125", "2:05"},
		{"non numeric clock part", "1:xx", "-"},
		{"negative clock part", "-1:30", "-"},
		{"empty clock part", "1::30", "-"},
		{"iso hours and minutes", "PT1H30M", "1:30"},
		{"iso hours", "PT2H", "2:00"},
		{"iso minutes only", "PT45M", "45:00"},
		{"iso seconds only", "PT90S", "1:30"},
		{"iso lower case", "pt1h5m", "1:05"},
		{"iso without components", "PT", "PT"},
		{"django day prefix", "1 02:00:00", "26:00"},
		{"django fractional seconds", "01:45:00.500000", "1:45"},
		{"bare float string", "90.5", "1:30"},
		{"negative bare string", "-90", "-"},
		{"unrecognised text", "not-a-time", "not-a-time"},
		{"too many colons", "1:2:3:4", "1:2:3:4"},
		{"time.Duration", 95 * time.Minute, "1:35"},
		{"json number", json.Number("3723"), "1:02"},
		{"uint", uint32(61), "1:01"},
		{"huge clock hours", "5124095576030432:00:00", "-"},
		{"huge day prefix", "213503982334602 00:00:00", "-"},
		{"huge iso hours", "PT5124095576030432H", "-"},
		{"iso total above int32", "PT596524H", "-"},
		{"digits beyond int64", "99999999999999999999:00", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestFormatUnrecognisedKeepsOriginalText(t *testing.T) {
	assert.Equal(t, " about two hours ", Format(" about two hours "))
}

func TestDisplayRoundTripsThroughClockParse(t *testing.T) {
	for _, s := range []int{0, 1, 59, 60, 61, 599, 3599, 3600, 3601, 3659, 3660, 5400, 86399, 90061} {
		shown := Display(s)
		back, ok := ParseClock(shown).TotalSeconds()
		require.True(t, ok, "display %q of %d should parse", shown, s)

		if s < 3600 {
			// M:SS reads back as minutes and seconds
			assert.Equal(t, s, back, "value %d", s)
			continue
		}
		// H:MM reads back through the two part rule as M:S, so rebuild hours
		// and minutes from the components before comparing
		h, m := back/60, back%60
		assert.Equal(t, s-s%60, h*3600+m*60, "value %d", s)
	}
}

func TestParseKinds(t *testing.T) {
	v := Parse(5400)
	assert.Equal(t, Seconds, v.Kind())
	assert.Equal(t, SourceNumber, v.Source())

	v = Parse("01:30:00")
	assert.Equal(t, Clock, v.Kind())
	h, m, s := v.Components()
	assert.Equal(t, []int{1, 30, 0}, []int{h, m, s})

	v = Parse("PT1H")
	assert.Equal(t, Clock, v.Kind())
	assert.Equal(t, SourceISO, v.Source())

	v = Parse("garbage")
	assert.Equal(t, Unknown, v.Kind())
	assert.Equal(t, "garbage", v.Raw())
	assert.False(t, v.IsKnown())
}

func TestClockSecondsSkipsISO(t *testing.T) {
	_, ok := Parse("PT1H").ClockSeconds()
	assert.False(t, ok)

	total, ok := Parse("1:00:00").ClockSeconds()
	require.True(t, ok)
	assert.Equal(t, 3600, total)

	total, ok = Parse(42).ClockSeconds()
	require.True(t, ok)
	assert.Equal(t, 42, total)
}

func TestParseClock(t *testing.T) {
	total, ok := ParseClock("2:05").TotalSeconds()
	require.True(t, ok)
	assert.Equal(t, 125, total)

	total, ok = ParseClock("7").TotalSeconds()
	require.True(t, ok)
	assert.Equal(t, 7, total)

	_, ok = ParseClock("PT1H").TotalSeconds()
	assert.False(t, ok)

	_, ok = ParseClock("").TotalSeconds()
	assert.False(t, ok)
}

func TestValueJSON(t *testing.T) {
	var payload struct {
		A Value `json:"a"`
		B Value `json:"b"`
		C Value `json:"c"`
		D Value `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a":"01:45:00","b":5400,"c":null,"d":"soon"}`), &payload)
	require.NoError(t, err)

	assert.Equal(t, "1:45", payload.A.String())
	assert.Equal(t, "1:30", payload.B.String())
	assert.Equal(t, "-", payload.C.String())
	assert.Equal(t, "soon", payload.D.String())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"01:45:00","b":"01:30:00","c":null,"d":"soon"}`, string(out))
}

func TestFromClock(t *testing.T) {
	v := FromClock(1, 75, 0)
	h, m, s := v.Components()
	assert.Equal(t, []int{2, 15, 0}, []int{h, m, s})
	assert.Equal(t, "02:15:00", v.ClockString())

	assert.False(t, FromClock(-1, 0, 0).IsKnown())
	assert.False(t, FromSeconds(-5).IsKnown())
}

func TestHugeComponentsHaveNoSeconds(t *testing.T) {
	for _, in := range []string{"5124095576030432:00:00", "213503982334602 00:00:00", "PT5124095576030432H"} {
		v := Parse(in)
		assert.False(t, v.IsKnown(), in)
		_, ok := v.TotalSeconds()
		assert.False(t, ok, in)
		_, ok = v.ClockSeconds()
		assert.False(t, ok, in)
	}
}
