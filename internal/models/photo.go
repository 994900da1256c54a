package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Photo is the entry image as returned by the API: either a plain URL
// string or an object exposing a url (or pk) field.
type Photo struct {
	Link   string
	Object map[string]any
}

// IsZero reports whether no photo is set
func (p Photo) IsZero() bool {
	return p.Link == "" && len(p.Object) == 0
}

// URL returns the string form directly, otherwise the object's url field,
// then its pk field.
func (p Photo) URL() (string, bool) {
	if p.Link != "" {
		return p.Link, true
	}
	if p.Object == nil {
		return "", false
	}
	for _, key := range []string{"url", "pk"} {
		if s := stringify(p.Object[key]); s != "" {
			return s, true
		}
	}
	return "", false
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return fmt.Sprintf("%.0f", x)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func (p Photo) MarshalJSON() ([]byte, error) {
	switch {
	case p.Link != "":
		return json.Marshal(p.Link)
	case len(p.Object) > 0:
		return json.Marshal(p.Object)
	}
	return []byte("null"), nil
}

func (p *Photo) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*p = Photo{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		return json.Unmarshal(data, &p.Link)
	case '{':
		return json.Unmarshal(data, &p.Object)
	}
	// anything else carries no usable location
	return nil
}
