package models

import (
	"strconv"
	"time"

	"github.com/amaumene/repertoire/internal/duration"
	"github.com/amaumene/repertoire/internal/locale"
	"golang.org/x/text/language"
)

// DateLayout is the calendar date format used by the API
const DateLayout = "2006-01-02"

// Entry represents one catalogued movie, series or other item
type Entry struct {
	ID     int    `json:"id"`
	Name   string `json:"nome"`
	Date   string `json:"data"`   // ISO date, e.g. "2025-11-22"
	Rating int    `json:"estrela"`
	Review string `json:"resenha"`
	Kind   Kind   `json:"tipo"`

	// Movies: total runtime. Series: per-episode or absent.
	Duration duration.Value `json:"duracao"`
	Season   *int           `json:"temporada"` // series only

	Photo Photo `json:"foto"`
}

// NewEntry builds an entry from a partial field set. Zero fields get the
// defaults: today's date and the movie kind. It never fails; bad data
// surfaces later through the display accessors.
func NewEntry(init Entry) *Entry {
	e := init
	if e.Date == "" {
		e.Date = time.Now().Format(DateLayout)
	}
	if e.Kind == "" {
		e.Kind = DefaultKind
	}
	return &e
}

// ParseDate parses the entry date, accepting plain dates and RFC 3339 timestamps
func (e *Entry) ParseDate() (time.Time, bool) {
	if e.Date == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, e.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsCurrentYear reports whether the entry date falls in the same year as now.
func (e *Entry) IsCurrentYear(now time.Time) bool {
	t, ok := e.ParseDate()
	if !ok {
		return false
	}
	return t.Year() == now.Year()
}

// DurationSeconds returns the duration as seconds using the numeric and
// colon-delimited rules only.
func (e *Entry) DurationSeconds() (int, bool) {
	return e.Duration.ClockSeconds()
}

// PhotoURL returns a usable photo location
func (e *Entry) PhotoURL() (string, bool) {
	return e.Photo.URL()
}

// DisplayKind returns the English label of the entry kind
func (e *Entry) DisplayKind() (string, bool) {
	return e.DisplayKindIn(language.English)
}

// DisplayKindIn returns the label of the entry kind in the given language.
// Unknown kinds have no label.
func (e *Entry) DisplayKindIn(tag language.Tag) (string, bool) {
	p := locale.Printer(tag)
	switch e.Kind {
	case KindMovie:
		return p.Sprintf("Movie"), true
	case KindSeries:
		return p.Sprintf("Series"), true
	case KindOther:
		return p.Sprintf("Other"), true
	}
	return "", false
}

// DisplayRating renders the star rating
func (e *Entry) DisplayRating() string {
	return strconv.Itoa(e.Rating)
}

// DisplayDuration renders the duration, or the sentinel when unknown
func (e *Entry) DisplayDuration() string {
	return e.Duration.String()
}

// DisplayDetail applies the display policy: movies show their duration,
// series their season, anything else nothing.
func (e *Entry) DisplayDetail(tag language.Tag) string {
	switch e.Kind {
	case KindMovie:
		return e.DisplayDuration()
	case KindSeries:
		if e.Season == nil {
			return duration.Sentinel
		}
		return locale.Printer(tag).Sprintf("Season %d", *e.Season)
	}
	return ""
}
