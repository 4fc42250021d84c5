// Package gallery holds the selectable color entries shown in the bottom
// sheet. The last position is a "more" sentinel that has no entry behind it.
package gallery

import (
	"fmt"
	"image/color"
	"strings"
)

// ElevationDP is the shadow depth of a real entry, in density-independent units
const ElevationDP float32 = 5

// DefaultPalette is the palette the application ships with
var DefaultPalette = []string{
	"0000FF", "58C9B9", "DF405A", "F0F8FF", "FFD700", "3F4C77",
	"7BCBED", "004369", "F3004B", "FEC0C1", "FFF75E",
}

// Entry is one selectable color
type Entry struct {
	ID    string
	Color color.NRGBA
}

// Model is an ordered list of entries followed by the sentinel
type Model struct {
	entries  []Entry
	onSelect func(index int)
}

// NewModel parses every identifier; the identifier itself, without a
// leading '#', becomes the entry ID
func NewModel(ids []string) (*Model, error) {
	entries := make([]Entry, 0, len(ids))
	seen := make(map[string]bool, len(ids))

	for i, raw := range ids {
		id := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
		if id == "" {
			return nil, fmt.Errorf("entry %d: empty identifier", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("entry %d: duplicate identifier %s", i, id)
		}
		c, err := ParseColor(id)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		seen[id] = true
		entries = append(entries, Entry{ID: id, Color: c})
	}

	return &Model{entries: entries}, nil
}

// Count is the number of positions including the sentinel
func (m *Model) Count() int { return len(m.entries) + 1 }

// Len is the number of real entries
func (m *Model) Len() int { return len(m.entries) }

// Entry returns the entry at index; false for the sentinel or out of range
func (m *Model) Entry(index int) (Entry, bool) {
	if index < 0 || index >= len(m.entries) {
		return Entry{}, false
	}
	return m.entries[index], true
}

// IsSentinel reports whether index is the trailing "more" position
func (m *Model) IsSentinel(index int) bool { return index == len(m.entries) }

// Elevation is the shadow depth in pixels for index at the given scale
func (m *Model) Elevation(index int, scale float32) float32 {
	if _, ok := m.Entry(index); !ok {
		return 0
	}
	return ElevationDP * scale
}

// ConfigIDs returns the entry identifiers in order
func (m *Model) ConfigIDs() []string {
	ids := make([]string, len(m.entries))
	for i, e := range m.entries {
		ids[i] = e.ID
	}
	return ids
}

// SetOnSelect registers the selection callback
func (m *Model) SetOnSelect(fn func(index int)) { m.onSelect = fn }

// Select forwards index, sentinel included, to the selection callback
func (m *Model) Select(index int) {
	if m.onSelect != nil {
		m.onSelect(index)
	}
}
