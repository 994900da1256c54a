package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/amaumene/repertoire/internal/duration"
	"github.com/amaumene/repertoire/internal/models"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// entryView is the machine-readable rendering of an entry
type entryView struct {
	ID              int    `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	Kind            string `json:"kind" yaml:"kind"`
	Date            string `json:"date" yaml:"date"`
	Rating          int    `json:"rating" yaml:"rating"`
	Review          string `json:"review,omitempty" yaml:"review,omitempty"`
	Duration        string `json:"duration,omitempty" yaml:"duration,omitempty"`
	DurationSeconds *int   `json:"duration_seconds,omitempty" yaml:"duration_seconds,omitempty"`
	Season          *int   `json:"season,omitempty" yaml:"season,omitempty"`
	Photo           string `json:"photo,omitempty" yaml:"photo,omitempty"`
}

func newEntryView(e *models.Entry, lang language.Tag) entryView {
	v := entryView{
		ID:     e.ID,
		Name:   e.Name,
		Kind:   kindLabel(e, lang),
		Date:   e.Date,
		Rating: e.Rating,
		Review: e.Review,
		Season: e.Season,
	}
	if d := e.DisplayDuration(); d != duration.Sentinel {
		v.Duration = d
	}
	if secs, ok := e.DurationSeconds(); ok {
		v.DurationSeconds = &secs
	}
	if photo, ok := e.PhotoURL(); ok {
		v.Photo = photo
	}
	return v
}

// writeEntries renders the list in the requested format
func writeEntries(out io.Writer, entries []models.Entry, lang language.Tag, format string) error {
	switch format {
	case outputTable, "":
		return printEntries(out, entries, lang)
	case outputJSON, outputYAML:
		views := make([]entryView, len(entries))
		for i := range entries {
			views[i] = newEntryView(&entries[i], lang)
		}
		return encode(out, views, format)
	}
	return fmt.Errorf("unknown output format %q, use table, json or yaml", format)
}

// writeEntry renders one entry in the requested format
func writeEntry(out io.Writer, e *models.Entry, lang language.Tag, format string) error {
	switch format {
	case outputTable, "":
		printEntry(out, e, lang)
		return nil
	case outputJSON, outputYAML:
		return encode(out, newEntryView(e, lang), format)
	}
	return fmt.Errorf("unknown output format %q, use table, json or yaml", format)
}

func encode(out io.Writer, v any, format string) error {
	if format == outputYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printEntries writes the list as aligned columns
func printEntries(out io.Writer, entries []models.Entry, lang language.Tag) error {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKIND\tDATE\tSTARS\tDETAIL")
	for i := range entries {
		e := &entries[i]
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Name, kindLabel(e, lang), e.Date, e.DisplayRating(), e.DisplayDetail(lang))
	}
	return w.Flush()
}

// printEntry writes every field of one entry
func printEntry(out io.Writer, e *models.Entry, lang language.Tag) {
	photo, ok := e.PhotoURL()
	if !ok {
		photo = duration.Sentinel
	}
	season := duration.Sentinel
	if e.Season != nil {
		season = fmt.Sprint(*e.Season)
	}

	w := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", e.ID)
	fmt.Fprintf(w, "Name:\t%s\n", e.Name)
	fmt.Fprintf(w, "Kind:\t%s\n", kindLabel(e, lang))
	fmt.Fprintf(w, "Date:\t%s\n", e.Date)
	fmt.Fprintf(w, "Stars:\t%s\n", e.DisplayRating())
	fmt.Fprintf(w, "Duration:\t%s\n", e.DisplayDuration())
	fmt.Fprintf(w, "Season:\t%s\n", season)
	fmt.Fprintf(w, "Photo:\t%s\n", photo)
	fmt.Fprintf(w, "Review:\t%s\n", e.Review)
	w.Flush()
}

// kindLabel falls back to the raw tag for kinds without a label
func kindLabel(e *models.Entry, lang language.Tag) string {
	if label, ok := e.DisplayKindIn(lang); ok {
		return label
	}
	return string(e.Kind)
}
