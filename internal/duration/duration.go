// Package duration parses the duration representations returned by the
// repertoire API (numeric seconds, clock strings and ISO-8601 durations) into
// a single tagged value and renders it for display.
package duration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Kind tags which variant a Value holds
type Kind int

const (
	Unknown Kind = iota
	Seconds
	Clock
)

func (k Kind) String() string {
	switch k {
	case Seconds:
		return "seconds"
	case Clock:
		return "clock"
	default:
		return "unknown"
	}
}

// Source records which input form produced a Value
type Source int

const (
	SourceNone Source = iota
	SourceNumber
	SourceColon
	SourceISO
	SourceBare
)

// Value is a parsed duration. The zero value is Unknown.
type Value struct {
	kind   Kind
	source Source

	// Clock components, normalised so that minutes and seconds are < 60
	hours   int
	minutes int
	seconds int

	// raw holds the original text of a present but unrecognised value
	raw string
}

// FromSeconds builds a Seconds value. Negative input yields Unknown.
func FromSeconds(s int) Value {
	if s < 0 {
		return Value{}
	}
	return Value{kind: Seconds, source: SourceNumber, hours: s / 3600, minutes: (s % 3600) / 60, seconds: s % 60}
}

// FromClock builds a Clock value from hour, minute and second components.
func FromClock(h, m, s int) Value {
	if h < 0 || m < 0 || s < 0 {
		return Value{}
	}
	return clockValue(h*3600+m*60+s, SourceColon)
}

func clockValue(total int, source Source) Value {
	return Value{kind: Clock, source: source, hours: total / 3600, minutes: (total % 3600) / 60, seconds: total % 60}
}

// Kind returns the variant held by v
func (v Value) Kind() Kind { return v.kind }

// Source returns the input form v was parsed from
func (v Value) Source() Source { return v.source }

// IsKnown reports whether v holds a usable duration
func (v Value) IsKnown() bool { return v.kind != Unknown }

// Raw returns the original text of an unrecognised value, if any
func (v Value) Raw() string { return v.raw }

// Components returns the hour, minute and second parts of v
func (v Value) Components() (h, m, s int) {
	return v.hours, v.minutes, v.seconds
}

// TotalSeconds returns the duration in whole seconds.
func (v Value) TotalSeconds() (int, bool) {
	if v.kind == Unknown {
		return 0, false
	}
	return v.hours*3600 + v.minutes*60 + v.seconds, true
}

// ClockSeconds is TotalSeconds restricted to numeric and colon-delimited
// inputs. ISO-8601 inputs report not available.
func (v Value) ClockSeconds() (int, bool) {
	if v.source == SourceISO {
		return 0, false
	}
	return v.TotalSeconds()
}

// String renders v for display. See Display.
func (v Value) String() string {
	if v.kind == Unknown {
		if v.raw != "" {
			return v.raw
		}
		return Sentinel
	}
	total, _ := v.TotalSeconds()
	return Display(total)
}

// ClockString renders v as HH:MM:SS, the form the API accepts on writes.
// Unknown values render as an empty string.
func (v Value) ClockString() string {
	if v.kind == Unknown {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", v.hours, v.minutes, v.seconds)
}

// MarshalJSON writes known values as an HH:MM:SS string and unknown ones as
// null, or as the raw text when present.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == Unknown {
		if v.raw != "" {
			return json.Marshal(v.raw)
		}
		return []byte("null"), nil
	}
	return json.Marshal(v.ClockString())
}

// UnmarshalJSON accepts null, numbers and strings. It never fails on content
// it cannot interpret; such values decode as Unknown.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode duration string: %w", err)
		}
		*v = ParseString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			*v = Value{}
			return nil
		}
		*v = Parse(n)
	}
	return nil
}

// Parse converts any supported representation into a Value.
func Parse(in any) Value {
	switch x := in.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case *Value:
		if x == nil {
			return Value{}
		}
		return *x
	case string:
		return ParseString(x)
	case *string:
		if x == nil {
			return Value{}
		}
		return ParseString(*x)
	case []byte:
		return ParseString(string(x))
	case time.Duration:
		if x < 0 {
			return Value{}
		}
		return FromSeconds(int(x / time.Second))
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return fromInt64(i)
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}
		}
		return fromFloat(f)
	case int:
		return fromInt64(int64(x))
	case int8:
		return fromInt64(int64(x))
	case int16:
		return fromInt64(int64(x))
	case int32:
		return fromInt64(int64(x))
	case int64:
		return fromInt64(x)
	case uint:
		return fromUint64(uint64(x))
	case uint8:
		return fromUint64(uint64(x))
	case uint16:
		return fromUint64(uint64(x))
	case uint32:
		return fromUint64(uint64(x))
	case uint64:
		return fromUint64(x)
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	case fmt.Stringer:
		return ParseString(x.String())
	default:
		return Value{}
	}
}

func fromInt64(i int64) Value {
	if i < 0 || i > math.MaxInt32 {
		return Value{}
	}
	return FromSeconds(int(i))
}

func fromUint64(u uint64) Value {
	if u > math.MaxInt32 {
		return Value{}
	}
	return FromSeconds(int(u))
}

func fromFloat(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return Value{}
	}
	return FromSeconds(int(math.Trunc(f)))
}
