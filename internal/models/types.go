package models

import "strings"

// Kind is the catalogue tag of an entry as the API sends it
type Kind string

const (
	KindMovie  Kind = "FILME"
	KindSeries Kind = "SERIE"
	KindOther  Kind = "OUTRO"
)

// DefaultKind is applied to entries created without a kind
const DefaultKind = KindMovie

// Valid reports whether k is one of the known tags
func (k Kind) Valid() bool {
	switch k {
	case KindMovie, KindSeries, KindOther:
		return true
	}
	return false
}

// ParseKind accepts the wire tags and their English names, case-insensitively.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FILME", "MOVIE":
		return KindMovie, true
	case "SERIE", "SERIES", "SHOW":
		return KindSeries, true
	case "OUTRO", "OTHER":
		return KindOther, true
	}
	return Kind(s), false
}
