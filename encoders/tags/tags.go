// Package tags holds an ordered collection of tag.T, as attached to an
// event.
package tags

import (
	"github.com/lzcers/ksana-relay/encoders/tag"
)

// T is an ordered list of tags.
type T []tag.T

// New builds a T from the given tags.
func New(ts ...tag.T) T { return T(ts) }

// GetFirstByName returns the first tag whose TagName matches name, or a
// zero-value-false result if none match.
func (t T) GetFirstByName(name string) (found tag.T, ok bool) {
	for _, tg := range t {
		if tg.TagName() == name {
			return tg, true
		}
	}
	return tag.T{}, false
}

// GetAllByName returns every tag whose TagName matches name.
func (t T) GetAllByName(name string) (out []tag.T) {
	for _, tg := range t {
		if tg.TagName() == name {
			out = append(out, tg)
		}
	}
	return
}
