package route

import (
	"testing"

	"github.com/tfcanvas/tfcanvas/pkg/diff"
	"github.com/tfcanvas/tfcanvas/pkg/layout"
	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

func box(id string, x, y float64) layout.Box {
	return layout.Box{ID: id, Kind: layout.KindBlock, X: x, Y: y, Width: 200, Height: 90}
}

func dep(from, to string) snapshot.Dependency {
	return snapshot.Dependency{From: from, To: to, Type: snapshot.DepResourceToResource}
}

func TestRouteHorizontalPrefersOppositeSides(t *testing.T) {
	boxes := []layout.Box{
		box("a", 0, 0),
		box("b", 600, 0),
	}

	edges := Route([]snapshot.Dependency{dep("a", "b")}, boxes, nil)
	if len(edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(edges))
	}

	e := edges[0]
	if e.Source.Side != SideRight || e.Target.Side != SideLeft {
		t.Errorf("sides = %s→%s, want right→left", e.Source.Side, e.Target.Side)
	}
	if e.Source.X != 200 || e.Source.Y != 45 {
		t.Errorf("source anchor = (%v,%v), want (200,45)", e.Source.X, e.Source.Y)
	}
	if e.Target.X != 600 || e.Target.Y != 45 {
		t.Errorf("target anchor = (%v,%v), want (600,45)", e.Target.X, e.Target.Y)
	}
}

func TestRouteVerticalPrefersOppositeSides(t *testing.T) {
	boxes := []layout.Box{
		box("a", 0, 0),
		box("b", 0, 500),
	}

	edges := Route([]snapshot.Dependency{dep("a", "b")}, boxes, nil)
	if len(edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(edges))
	}
	if e := edges[0]; e.Source.Side != SideBottom || e.Target.Side != SideTop {
		t.Errorf("sides = %s→%s, want bottom→top", e.Source.Side, e.Target.Side)
	}
}

func TestRouteObstaclePenaltyFlipsChoice(t *testing.T) {
	a := box("a", 0, 0)
	b := box("b", 240, 300)

	// Without an obstacle the diagonal pair resolves right→left.
	edges := Route([]snapshot.Dependency{dep("a", "b")}, []layout.Box{a, b}, nil)
	if len(edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(edges))
	}
	if e := edges[0]; e.Source.Side != SideRight || e.Target.Side != SideLeft {
		t.Fatalf("unexpected baseline sides %s→%s", e.Source.Side, e.Target.Side)
	}

	// A small blocker in the right→left corridor (but clear of the
	// bottom→top corridor) makes the router switch pairs.
	blocker := layout.Box{ID: "blocker", Kind: layout.KindBlock, X: 215, Y: 310, Width: 10, Height: 20}
	edges = Route([]snapshot.Dependency{dep("a", "b")}, []layout.Box{a, b, blocker}, nil)
	if len(edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(edges))
	}
	if e := edges[0]; e.Source.Side != SideBottom || e.Target.Side != SideTop {
		t.Errorf("sides = %s→%s, want bottom→top around blocker", e.Source.Side, e.Target.Side)
	}
}

func TestRouteSkipsMissingEndpoints(t *testing.T) {
	boxes := []layout.Box{box("a", 0, 0)}

	deps := []snapshot.Dependency{
		dep("a", "gone"),
		dep("gone", "a"),
		dep("gone", "also-gone"),
	}

	edges := Route(deps, boxes, nil)
	if len(edges) != 0 {
		t.Errorf("edges = %d, want 0", len(edges))
	}
}

func TestRouteNestedBoxCoordinates(t *testing.T) {
	// A block inside a group anchors in absolute coordinates.
	boxes := []layout.Box{
		{ID: "group:net", Kind: layout.KindGroup, X: 1000, Y: 0, Width: 300, Height: 260},
		{ID: "inner", Kind: layout.KindBlock, X: 30, Y: 70, Width: 200, Height: 90, ParentID: "group:net"},
		box("outer", 0, 40),
	}

	edges := Route([]snapshot.Dependency{dep("outer", "inner")}, boxes, nil)
	if len(edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(edges))
	}
	if e := edges[0]; e.Target.X < 1000 {
		t.Errorf("target anchor X = %v, want absolute coordinate inside group", e.Target.X)
	}
}

func TestRouteStyleByType(t *testing.T) {
	tests := []struct {
		depType    string
		wantDashed bool
	}{
		{snapshot.DepResourceToResource, false},
		{snapshot.DepModule, true},
		{snapshot.DepVariableReference, true},
		{"unknown_type", false},
	}

	boxes := []layout.Box{box("a", 0, 0), box("b", 600, 0)}
	for _, tt := range tests {
		d := snapshot.Dependency{From: "a", To: "b", Type: tt.depType}
		edges := Route([]snapshot.Dependency{d}, boxes, nil)
		if len(edges) != 1 {
			t.Fatalf("%s: edges = %d, want 1", tt.depType, len(edges))
		}
		if edges[0].Style.Dashed != tt.wantDashed {
			t.Errorf("%s: dashed = %v, want %v", tt.depType, edges[0].Style.Dashed, tt.wantDashed)
		}
	}
}

func TestRouteComparisonOverridesStyle(t *testing.T) {
	boxes := []layout.Box{box("a", 0, 0), box("b", 600, 0)}
	added := snapshot.Dependency{From: "a", To: "b", Type: snapshot.DepResourceToResource, TargetAttribute: "id"}
	removed := dep("b", "a")

	comparison := &diff.BranchComparison{
		GlobalDependencies: diff.DependencyDelta{
			Added:   []snapshot.Dependency{added},
			Removed: []snapshot.Dependency{removed},
		},
	}

	edges := Route([]snapshot.Dependency{added, removed}, boxes, comparison)
	if len(edges) != 2 {
		t.Fatalf("edges = %d, want 2", len(edges))
	}

	if edges[0].Label != "+ id" {
		t.Errorf("added label = %q, want \"+ id\"", edges[0].Label)
	}
	if !edges[0].Style.Animated {
		t.Error("added edge should be animated")
	}
	if edges[1].Label != "-" {
		t.Errorf("removed label = %q, want \"-\"", edges[1].Label)
	}
	if !edges[1].Style.Dashed {
		t.Error("removed edge should be dashed")
	}
}
