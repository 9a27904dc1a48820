package intakekit

import (
	"github.com/gobwas/glob"

	"github.com/gobeaver/intakekit/filetype"
)

// EntrySelector filters accepted entries in selection queries.
//
// Selectors are composable: combine them with And, Or, Not, or drop to
// FuncSelector for custom logic.
//
// Example:
//
//	large := session.Select(intakekit.And(
//	    intakekit.Name("*.mp4"),
//	    intakekit.SizeBetween(100*intakekit.MB, 0),
//	))
type EntrySelector interface {
	// Match returns true if the entry should be included in results.
	Match(e *Entry) bool
}

// Select returns the session's entries matching the selector, in
// acceptance order. A nil selector matches everything.
func (s *Session) Select(selector EntrySelector) []*Entry {
	if selector == nil {
		selector = All()
	}

	var results []*Entry
	for _, e := range s.Entries() {
		if selector.Match(e) {
			results = append(results, e)
		}
	}
	return results
}

// AllSelector matches every entry.
type AllSelector struct{}

func (AllSelector) Match(*Entry) bool { return true }

// All returns a selector that matches every entry.
func All() EntrySelector {
	return AllSelector{}
}

type nameSelector struct {
	g glob.Glob
}

// Name creates a selector matching entry names against a glob pattern.
// Supports *, ?, [abc], and {alt1,alt2}. An invalid pattern matches
// nothing.
//
// Examples:
//
//	Name("*.pdf")
//	Name("report_????.csv")
//	Name("{invoice,receipt}-*.png")
func Name(pattern string) EntrySelector {
	g, err := glob.Compile(pattern)
	if err != nil {
		return &nameSelector{}
	}
	return &nameSelector{g: g}
}

func (s *nameSelector) Match(e *Entry) bool {
	return s.g != nil && s.g.Match(e.Name())
}

type typeSelector struct {
	filter *filetype.Filter
}

// Type creates a selector matching entries against one accept token: a
// category ("image", "video/*"), an exact MIME type, or an extension
// (".csv"). An invalid token matches nothing.
func Type(token string) EntrySelector {
	f, err := filetype.ParseFilter([]string{token})
	if err != nil {
		return &typeSelector{}
	}
	return &typeSelector{filter: f}
}

func (s *typeSelector) Match(e *Entry) bool {
	return s.filter != nil && s.filter.Admits(e.MIME, filetype.ExtensionOf(e.Name()))
}

type sizeSelector struct {
	min, max int64
}

// SizeBetween creates a selector matching entries whose size lies in
// [minSize, maxSize]. A zero maxSize means unbounded above.
func SizeBetween(minSize, maxSize int64) EntrySelector {
	return &sizeSelector{min: minSize, max: maxSize}
}

func (s *sizeSelector) Match(e *Entry) bool {
	size := e.Size()
	if size < s.min {
		return false
	}
	return s.max == 0 || size <= s.max
}

type andSelector struct {
	selectors []EntrySelector
}

// And matches only if ALL selectors match.
func And(selectors ...EntrySelector) EntrySelector {
	return &andSelector{selectors: selectors}
}

func (s *andSelector) Match(e *Entry) bool {
	for _, sel := range s.selectors {
		if !sel.Match(e) {
			return false
		}
	}
	return true
}

type orSelector struct {
	selectors []EntrySelector
}

// Or matches if ANY selector matches.
func Or(selectors ...EntrySelector) EntrySelector {
	return &orSelector{selectors: selectors}
}

func (s *orSelector) Match(e *Entry) bool {
	for _, sel := range s.selectors {
		if sel.Match(e) {
			return true
		}
	}
	return false
}

type notSelector struct {
	selector EntrySelector
}

// Not inverts a selector's match result.
func Not(selector EntrySelector) EntrySelector {
	return &notSelector{selector: selector}
}

func (s *notSelector) Match(e *Entry) bool {
	return !s.selector.Match(e)
}

type funcSelector struct {
	fn func(*Entry) bool
}

// FuncSelector creates a selector from a custom function, the escape hatch
// for any filtering logic not covered by the built-ins.
func FuncSelector(fn func(*Entry) bool) EntrySelector {
	return &funcSelector{fn: fn}
}

func (s *funcSelector) Match(e *Entry) bool {
	return s.fn(e)
}
