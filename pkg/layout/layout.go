// Package layout sizes and positions a group hierarchy as nested,
// non-overlapping boxes.
//
// Sizing runs bottom-up (a group grows to fit its block grid and child
// groups), positioning runs top-down (root blocks first, then sibling
// groups left-to-right). The algorithm is deterministic: the same tree
// value produces byte-identical box lists on every call.
//
// All coordinates are in user units (typically pixels). Box positions are
// relative to their parent box; use [AbsoluteRects] to resolve them against
// the parent chain.
package layout

import (
	"github.com/tfcanvas/tfcanvas/pkg/hierarchy"
	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

// =============================================================================
// Geometry Constants
// =============================================================================

const (
	// CellWidth and CellHeight are the fixed size of a block cell.
	CellWidth  = 200.0
	CellHeight = 90.0

	// CellSpacing separates cells inside a block grid.
	CellSpacing = 40.0

	// ColumnsPerRow is the fixed column count of block grids.
	ColumnsPerRow = 3

	// GroupPadding is the inner padding of a group box.
	GroupPadding = 30.0

	// TitleBarHeight reserves room for a group's title bar.
	TitleBarHeight = 40.0

	// GroupSpacing separates sibling groups and a block grid from the
	// child-group row below it.
	GroupSpacing = 60.0

	// MinGroupWidth and MinGroupHeight are the smallest a group box gets.
	MinGroupWidth  = 260.0
	MinGroupHeight = 160.0

	// OriginX and OriginY anchor the root-level placement.
	OriginX = 50.0
	OriginY = 50.0
)

// =============================================================================
// Box Types
// =============================================================================

// Kind discriminates group boxes from block boxes.
type Kind string

const (
	KindGroup Kind = "group"
	KindBlock Kind = "block"
)

// Box is one positioned rectangle in the diagram.
type Box struct {
	ID    string `json:"id" bson:"id"`
	Kind  Kind   `json:"kind" bson:"kind"`
	Label string `json:"label,omitempty" bson:"label,omitempty"`

	// X and Y are relative to the parent box (absolute when ParentID is
	// empty).
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	ParentID string `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
}

// Rect is an absolute rectangle.
type Rect struct {
	X, Y, Width, Height float64
}

// GroupID returns the box ID used for the group at the given full path.
func GroupID(fullPath string) string { return "group:" + fullPath }

// =============================================================================
// Build
// =============================================================================

// Build lays out the hierarchy and returns every box, groups before their
// contents, in deterministic order.
func Build(root *hierarchy.Node) []Box {
	if root == nil {
		return nil
	}

	var boxes []Box

	// Root-level blocks form a grid at the origin; sibling groups follow
	// left-to-right after the grid.
	gridW, _ := gridSize(len(root.Blocks))
	boxes = append(boxes, placeBlocks(root.Blocks, "", OriginX, OriginY)...)

	x := OriginX
	if len(root.Blocks) > 0 {
		x += gridW + GroupSpacing
	}
	for _, child := range root.Children() {
		w, _ := nodeSize(child)
		boxes = placeGroup(boxes, child, "", x, OriginY)
		x += w + GroupSpacing
	}

	return boxes
}

// placeGroup emits the group box at (x, y) relative to its parent, then its
// blocks and child groups relative to the group.
func placeGroup(boxes []Box, node *hierarchy.Node, parentID string, x, y float64) []Box {
	w, h := nodeSize(node)
	id := GroupID(node.FullPath)
	boxes = append(boxes, Box{
		ID:       id,
		Kind:     KindGroup,
		Label:    node.Name,
		X:        x,
		Y:        y,
		Width:    w,
		Height:   h,
		ParentID: parentID,
	})

	contentY := TitleBarHeight + GroupPadding
	boxes = append(boxes, placeBlocks(node.Blocks, id, GroupPadding, contentY)...)

	childY := contentY
	if n := len(node.Blocks); n > 0 {
		_, gridH := gridSize(n)
		childY += gridH + GroupSpacing
	}
	childX := GroupPadding
	for _, child := range node.Children() {
		cw, _ := nodeSize(child)
		boxes = placeGroup(boxes, child, id, childX, childY)
		childX += cw + GroupSpacing
	}

	return boxes
}

// placeBlocks lays blocks out in a fixed-column grid with its top-left
// corner at (originX, originY).
func placeBlocks(blocks []snapshot.Block, parentID string, originX, originY float64) []Box {
	out := make([]Box, 0, len(blocks))
	for i, b := range blocks {
		col := i % ColumnsPerRow
		row := i / ColumnsPerRow
		out = append(out, Box{
			ID:       b.Addr(),
			Kind:     KindBlock,
			Label:    b.Label(),
			X:        originX + float64(col)*(CellWidth+CellSpacing),
			Y:        originY + float64(row)*(CellHeight+CellSpacing),
			Width:    CellWidth,
			Height:   CellHeight,
			ParentID: parentID,
		})
	}
	return out
}

// =============================================================================
// Sizing
// =============================================================================

// gridSize returns the extent of an n-cell block grid.
func gridSize(n int) (w, h float64) {
	if n == 0 {
		return 0, 0
	}
	cols := n
	if cols > ColumnsPerRow {
		cols = ColumnsPerRow
	}
	rows := (n + ColumnsPerRow - 1) / ColumnsPerRow
	w = float64(cols)*CellWidth + float64(cols-1)*CellSpacing
	h = float64(rows)*CellHeight + float64(rows-1)*CellSpacing
	return w, h
}

// nodeSize computes a group's box size bottom-up: the block grid stacks
// above the child-group row, width is the max of both, and the result is
// clamped to the minimum group size.
func nodeSize(node *hierarchy.Node) (w, h float64) {
	gridW, gridH := gridSize(len(node.Blocks))

	var childW, childH float64
	children := node.Children()
	for i, child := range children {
		cw, ch := nodeSize(child)
		childW += cw
		if i > 0 {
			childW += GroupSpacing
		}
		if ch > childH {
			childH = ch
		}
	}

	contentW := gridW
	if childW > contentW {
		contentW = childW
	}
	contentH := gridH
	if childH > 0 {
		if contentH > 0 {
			contentH += GroupSpacing
		}
		contentH += childH
	}

	w = contentW + 2*GroupPadding
	h = contentH + 2*GroupPadding + TitleBarHeight
	if w < MinGroupWidth {
		w = MinGroupWidth
	}
	if h < MinGroupHeight {
		h = MinGroupHeight
	}
	return w, h
}

// =============================================================================
// Absolute Coordinates
// =============================================================================

// AbsoluteRects resolves every box to absolute coordinates by summing
// offsets along its parent chain.
func AbsoluteRects(boxes []Box) map[string]Rect {
	byID := make(map[string]Box, len(boxes))
	for _, b := range boxes {
		byID[b.ID] = b
	}

	out := make(map[string]Rect, len(boxes))
	for _, b := range boxes {
		x, y := b.X, b.Y
		for parent := b.ParentID; parent != ""; {
			p, ok := byID[parent]
			if !ok {
				break
			}
			x += p.X
			y += p.Y
			parent = p.ParentID
		}
		out[b.ID] = Rect{X: x, Y: y, Width: b.Width, Height: b.Height}
	}
	return out
}
