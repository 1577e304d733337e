// Package route connects positioned boxes with dependency edges.
//
// For each dependency it picks one anchor on the source box and one on the
// target box (four side-midpoint candidates per box, sixteen combinations)
// and scores every pair: Euclidean distance, a large penalty when the
// segment's bounding box crosses another box, and a bonus for geometrically
// opposite sides. The obstacle check is a coarse axis-aligned bounding-box
// overlap, not exact segment-rectangle intersection; thin diagonal
// crossings can slip through and near misses can be penalized. That
// approximation is intentional and cheap at single-project scale.
package route

import (
	"math"

	"github.com/tfcanvas/tfcanvas/pkg/diff"
	"github.com/tfcanvas/tfcanvas/pkg/layout"
	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

// =============================================================================
// Scoring Constants
// =============================================================================

const (
	// obstaclePenalty is added when the anchor-to-anchor segment's
	// bounding box overlaps a third box's expanded bounding box.
	obstaclePenalty = 10000.0

	// oppositeSideBonus is subtracted when the chosen sides face each
	// other (top-bottom or left-right).
	oppositeSideBonus = 200.0

	// obstacleMargin expands obstacle bounding boxes on every side.
	obstacleMargin = 10.0
)

// =============================================================================
// Anchors and Edges
// =============================================================================

// Side identifies which edge of a box an anchor sits on.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Anchor is one fixed connection point on a box, in absolute coordinates.
type Anchor struct {
	BoxID string  `json:"box_id" bson:"box_id"`
	Side  Side    `json:"side" bson:"side"`
	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
}

// Edge is a routed, renderable dependency edge.
type Edge struct {
	Dependency snapshot.Dependency `json:"dependency" bson:"dependency"`
	Source     Anchor              `json:"source" bson:"source"`
	Target     Anchor              `json:"target" bson:"target"`
	Style      Style               `json:"style" bson:"style"`
	Label      string              `json:"label,omitempty" bson:"label,omitempty"`
}

// =============================================================================
// Route
// =============================================================================

// Route builds a renderable edge for every dependency whose endpoints both
// resolve to a box. Dependencies with a missing endpoint are skipped —
// views may filter blocks, so an unresolvable address is expected, not an
// error. comparison may be nil; when present, added and removed edges get
// override styling and a +/- label prefix.
func Route(deps []snapshot.Dependency, boxes []layout.Box, comparison *diff.BranchComparison) []Edge {
	rects := layout.AbsoluteRects(boxes)

	var edges []Edge
	for _, dep := range deps {
		from, ok := rects[dep.From]
		if !ok {
			continue
		}
		to, ok := rects[dep.To]
		if !ok {
			continue
		}

		src, dst := pickAnchors(dep, from, to, boxes, rects)
		style, label := styleFor(dep, comparison)
		edges = append(edges, Edge{
			Dependency: dep,
			Source:     src,
			Target:     dst,
			Style:      style,
			Label:      label,
		})
	}
	return edges
}

// pickAnchors scores all 16 source-target anchor combinations and returns
// the cheapest pair. Ties keep the first combination found.
func pickAnchors(dep snapshot.Dependency, from, to layout.Rect, boxes []layout.Box, rects map[string]layout.Rect) (Anchor, Anchor) {
	srcAnchors := anchorsOf(dep.From, from)
	dstAnchors := anchorsOf(dep.To, to)

	best := math.Inf(1)
	var bestSrc, bestDst Anchor
	for _, s := range srcAnchors {
		for _, d := range dstAnchors {
			score := math.Hypot(d.X-s.X, d.Y-s.Y)
			if crossesObstacle(s, d, dep, boxes, rects) {
				score += obstaclePenalty
			}
			if opposite(s.Side, d.Side) {
				score -= oppositeSideBonus
			}
			if score < best {
				best = score
				bestSrc, bestDst = s, d
			}
		}
	}
	return bestSrc, bestDst
}

// anchorsOf returns the four side-midpoint anchors of a rect.
func anchorsOf(boxID string, r layout.Rect) [4]Anchor {
	cx := r.X + r.Width/2
	cy := r.Y + r.Height/2
	return [4]Anchor{
		{BoxID: boxID, Side: SideTop, X: cx, Y: r.Y},
		{BoxID: boxID, Side: SideBottom, X: cx, Y: r.Y + r.Height},
		{BoxID: boxID, Side: SideLeft, X: r.X, Y: cy},
		{BoxID: boxID, Side: SideRight, X: r.X + r.Width, Y: cy},
	}
}

func opposite(a, b Side) bool {
	switch {
	case a == SideTop && b == SideBottom, a == SideBottom && b == SideTop:
		return true
	case a == SideLeft && b == SideRight, a == SideRight && b == SideLeft:
		return true
	}
	return false
}

// crossesObstacle reports whether the segment's axis-aligned bounding box
// overlaps any third box's expanded rect. Endpoint boxes are exempt.
func crossesObstacle(s, d Anchor, dep snapshot.Dependency, boxes []layout.Box, rects map[string]layout.Rect) bool {
	minX, maxX := math.Min(s.X, d.X), math.Max(s.X, d.X)
	minY, maxY := math.Min(s.Y, d.Y), math.Max(s.Y, d.Y)

	for _, b := range boxes {
		if b.ID == dep.From || b.ID == dep.To {
			continue
		}
		r := rects[b.ID]
		if minX < r.X+r.Width+obstacleMargin && r.X-obstacleMargin < maxX &&
			minY < r.Y+r.Height+obstacleMargin && r.Y-obstacleMargin < maxY {
			return true
		}
	}
	return false
}
