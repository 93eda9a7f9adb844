package knowledge

import (
	"fmt"

	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

// Key identifies a curated entry.
type Key struct {
	Field chat.Field `json:"field"`
	Topic chat.Topic `json:"topic"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Field, k.Topic)
}

// Entry is a curated guidance block rendered by the fallback composer.
type Entry struct {
	Field    chat.Field `json:"field"`
	Topic    chat.Topic `json:"topic"`
	Title    string     `json:"title"`
	Sections []Section  `json:"sections"`
	// Closing is an optional follow-up question appended after the next steps.
	Closing string `json:"closing,omitempty"`
}

// Key returns the lookup key of the entry.
func (e Entry) Key() Key {
	return Key{Field: e.Field, Topic: e.Topic}
}

// Section groups bullet items under a sub-heading. The first section of an
// entry has an empty heading and renders directly under the entry title.
type Section struct {
	Heading string `json:"heading,omitempty"`
	Items   []Item `json:"items"`
}

// Item is one bullet line.
type Item struct {
	Label  string `json:"label,omitempty"`
	Detail string `json:"detail"`
	Range  *Range `json:"range,omitempty"`
}

// Range is a numeric span such as an annual salary band.
type Range struct {
	Min       int    `json:"min"`
	Max       int    `json:"max"`
	Unit      string `json:"unit"`
	OpenEnded bool   `json:"open_ended,omitempty"`
}

// String renders salary style ranges as "$80K-$120K+".
func (r Range) String() string {
	suffix := ""
	if r.OpenEnded {
		suffix = "+"
	}
	if r.Unit == "USD" {
		return fmt.Sprintf("$%dK-$%dK%s", r.Min/1000, r.Max/1000, suffix)
	}
	return fmt.Sprintf("%d-%d %s%s", r.Min, r.Max, r.Unit, suffix)
}

// Clone returns a deep copy so callers cannot mutate the static table.
func (e Entry) Clone() Entry {
	out := e
	out.Sections = make([]Section, len(e.Sections))
	for i, sec := range e.Sections {
		items := make([]Item, len(sec.Items))
		for j, item := range sec.Items {
			if item.Range != nil {
				r := *item.Range
				item.Range = &r
			}
			items[j] = item
		}
		out.Sections[i] = Section{Heading: sec.Heading, Items: items}
	}
	return out
}
