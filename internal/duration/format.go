package duration

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel is displayed for absent or invalid durations
const Sentinel = "-"

var (
	isoRegex  = regexp.MustCompile(`(?i)^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)
	bareRegex = regexp.MustCompile(`^\+?(\d+)(?:\.\d+)?$`)
	digits    = regexp.MustCompile(`^\d+$`)
	// last clock part may carry a fractional suffix, e.g. 00:00:05.250000
	fracPart = regexp.MustCompile(`^(\d+)\.\d+$`)
)

// Format renders any supported duration input for display. It never fails:
// absent and invalid input render as Sentinel, unrecognised text is returned
// unchanged.
func Format(in any) string {
	return Parse(in).String()
}

// Display renders a second count. At least one hour renders as H:MM with the
// seconds dropped, anything shorter renders as M:SS.
func Display(total int) string {
	if total < 0 {
		return Sentinel
	}
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d", total/3600, (total%3600)/60)
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// ParseString parses the textual representations:
//
//	""                       Unknown
//	"[D ][H:]M:S[.ffffff]"   Clock, all parts must be numeric
//	"PT1H30M"                Clock, restricted ISO-8601
//	"5400"                   Seconds
//
// Anything else is kept as raw text.
func ParseString(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Value{}
	}

	if v, ok := parseISO(trimmed); ok {
		return v
	}

	if strings.Contains(trimmed, ":") {
		if v, ok := parseColon(trimmed); ok {
			return v
		}
		if strings.Count(trimmed, ":") <= 2 {
			return Value{}
		}
	}

	if m := bareRegex.FindStringSubmatch(trimmed); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n > math.MaxInt32 {
			return Value{}
		}
		v := FromSeconds(n)
		v.source = SourceBare
		return v
	}
	if strings.HasPrefix(trimmed, "-") && bareRegex.MatchString(trimmed[1:]) {
		return Value{}
	}

	return Value{raw: s}
}

// ParseClock parses only the colon-delimited form. Input that is not a
// valid clock string yields Unknown.
func ParseClock(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Value{}
	}
	if !strings.Contains(trimmed, ":") {
		if !digits.MatchString(trimmed) {
			return Value{}
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil || n > math.MaxInt32 {
			return Value{}
		}
		v := FromSeconds(n)
		v.source = SourceColon
		return v
	}
	v, ok := parseColon(trimmed)
	if !ok {
		return Value{}
	}
	return v
}

func parseISO(s string) (Value, bool) {
	m := isoRegex.FindStringSubmatch(s)
	if m == nil {
		return Value{}, false
	}
	if m[1] == "" && m[2] == "" && m[3] == "" {
		return Value{}, false
	}

	// well-formed but out of range input is Unknown, not raw text
	var parts [3]int64
	for i := 0; i < 3; i++ {
		if m[i+1] == "" {
			continue
		}
		n, ok := boundedInt(m[i+1])
		if !ok {
			return Value{}, true
		}
		parts[i] = n
	}

	total := parts[0]*3600 + parts[1]*60 + parts[2]
	if total > math.MaxInt32 {
		return Value{}, true
	}
	return clockValue(int(total), SourceISO), true
}

// boundedInt parses a digit run no larger than MaxInt32, so sums of a few
// scaled components cannot overflow int64.
func boundedInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 || n > math.MaxInt32 {
		return 0, false
	}
	return n, true
}

// parseColon reads [D ][H:]M:S left to right. Days are the API's own prefix
// for durations of a day or more.
func parseColon(s string) (Value, bool) {
	var days int64
	if fields := strings.Fields(s); len(fields) == 2 {
		if !digits.MatchString(fields[0]) {
			return Value{}, false
		}
		d, ok := boundedInt(fields[0])
		if !ok {
			return Value{}, false
		}
		days = d
		s = fields[1]
	} else if len(fields) > 2 {
		return Value{}, false
	}

	parts := strings.Split(s, ":")
	if len(parts) < 1 || len(parts) > 3 {
		return Value{}, false
	}

	nums := make([]int64, len(parts))
	for i, p := range parts {
		if i == len(parts)-1 {
			if m := fracPart.FindStringSubmatch(p); m != nil {
				p = m[1]
			}
		}
		if !digits.MatchString(p) {
			return Value{}, false
		}
		n, ok := boundedInt(p)
		if !ok {
			return Value{}, false
		}
		nums[i] = n
	}

	var total int64
	switch len(nums) {
	case 3:
		total = nums[0]*3600 + nums[1]*60 + nums[2]
	case 2:
		total = nums[0]*60 + nums[1]
	case 1:
		total = nums[0]
	}
	total += days * 86400
	if total > math.MaxInt32 {
		return Value{}, false
	}
	return clockValue(int(total), SourceColon), true
}
