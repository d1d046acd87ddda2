package domain

import (
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
)

// maxSuggestionDistance bounds the edit distance for SuggestElementID.
const maxSuggestionDistance = 3

// Network is an in-memory snapshot of the lines and dangling lines of one grid model.
// It is not safe for concurrent mutation.
type Network struct {
	ID            string
	lines         map[string]*Line
	danglingLines map[string]*DanglingLine
}

// NewNetwork creates an empty network.
func NewNetwork(id string) *Network {
	return &Network{
		ID:            id,
		lines:         make(map[string]*Line),
		danglingLines: make(map[string]*DanglingLine),
	}
}

// AddLine registers a line. Ids are unique across both namespaces.
func (n *Network) AddLine(l Line) error {
	if err := n.checkFree(l.ID); err != nil {
		return err
	}
	n.lines[l.ID] = &l
	return nil
}

// AddDanglingLine registers a dangling line. Ids are unique across both namespaces.
func (n *Network) AddDanglingLine(dl DanglingLine) error {
	if err := n.checkFree(dl.ID); err != nil {
		return err
	}
	n.danglingLines[dl.ID] = &dl
	return nil
}

func (n *Network) checkFree(id string) error {
	if id == "" {
		return fmt.Errorf("network %s: element id must not be empty", n.ID)
	}
	if _, ok := n.lines[id]; ok {
		return fmt.Errorf("network %s: duplicate element id %q", n.ID, id)
	}
	if _, ok := n.danglingLines[id]; ok {
		return fmt.Errorf("network %s: duplicate element id %q", n.ID, id)
	}
	return nil
}

// Line returns the line with the given id, or nil.
func (n *Network) Line(id string) *Line { return n.lines[id] }

// DanglingLine returns the dangling line with the given id, or nil.
func (n *Network) DanglingLine(id string) *DanglingLine { return n.danglingLines[id] }

// Lines returns all lines sorted by id.
func (n *Network) Lines() []*Line {
	out := make([]*Line, 0, len(n.lines))
	for _, l := range n.lines {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DanglingLines returns all dangling lines sorted by id.
func (n *Network) DanglingLines() []*DanglingLine {
	out := make([]*DanglingLine, 0, len(n.danglingLines))
	for _, dl := range n.danglingLines {
		out = append(out, dl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AttachPosition sets the position of the referenced element, replacing any previous one.
func (n *Network) AttachPosition(ref ElementRef, coords []Coordinate) error {
	pos := &GeoLineString{Coordinates: append([]Coordinate(nil), coords...)}
	switch ref.Kind {
	case KindLine:
		l, ok := n.lines[ref.ID]
		if !ok {
			return fmt.Errorf("line %s in network %s: %w", ref.ID, n.ID, ErrElementNotFound)
		}
		l.Position = pos
	case KindDanglingLine:
		dl, ok := n.danglingLines[ref.ID]
		if !ok {
			return fmt.Errorf("dangling line %s in network %s: %w", ref.ID, n.ID, ErrElementNotFound)
		}
		dl.Position = pos
	default:
		return fmt.Errorf("unknown element kind %q", ref.Kind)
	}
	return nil
}

// SuggestElementID returns the known element id closest to id, if one lies within a
// small edit distance. Used to enrich skip reports for typos in source data.
func (n *Network) SuggestElementID(id string) string {
	best, bestDist := "", maxSuggestionDistance+1
	consider := func(candidate string) {
		d := levenshtein.ComputeDistance(id, candidate)
		if d < bestDist || (d == bestDist && candidate < best) {
			best, bestDist = candidate, d
		}
	}
	for cid := range n.lines {
		consider(cid)
	}
	for cid := range n.danglingLines {
		consider(cid)
	}
	if bestDist > maxSuggestionDistance || best == id {
		return ""
	}
	return best
}
