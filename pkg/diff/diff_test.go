package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

func resource(rtype, name string, config map[string]any) snapshot.Block {
	return snapshot.Block{
		BlockType:    snapshot.BlockResource,
		ResourceType: rtype,
		Name:         name,
		Config:       config,
	}
}

func snap(label string, blocks []snapshot.Block, deps []snapshot.Dependency) *snapshot.ParsedSnapshot {
	return &snapshot.ParsedSnapshot{
		BranchLabel:  label,
		Blocks:       map[string][]snapshot.Block{snapshot.BlockResource: blocks},
		Dependencies: deps,
	}
}

func TestCompareClassification(t *testing.T) {
	base := snap("main", []snapshot.Block{
		resource("aws_instance", "web", map[string]any{"ami": "x"}),
		resource("aws_instance", "old", nil),
		resource("aws_instance", "same", map[string]any{"ami": "z"}),
	}, nil)
	compare := snap("feature", []snapshot.Block{
		resource("aws_instance", "web", map[string]any{"ami": "y"}),
		resource("aws_instance", "same", map[string]any{"ami": "z"}),
		resource("aws_instance", "new", nil),
	}, nil)

	c := Compare(base, compare)

	tests := []struct {
		addr string
		want Classification
	}{
		{"aws_instance.web", Modified},
		{"aws_instance.old", Deleted},
		{"aws_instance.same", Unchanged},
		{"aws_instance.new", Created},
	}
	for _, tt := range tests {
		d, ok := c.Lookup(tt.addr)
		if !ok {
			t.Fatalf("%s not classified", tt.addr)
		}
		if d.Classification != tt.want {
			t.Errorf("%s = %s, want %s", tt.addr, d.Classification, tt.want)
		}
	}

	want := Summary{Created: 1, Modified: 1, Deleted: 1, Unchanged: 1, Total: 4}
	if c.Summary != want {
		t.Errorf("Summary = %+v, want %+v", c.Summary, want)
	}
	if c.BaseLabel != "main" || c.CompareLabel != "feature" {
		t.Errorf("labels = %q/%q", c.BaseLabel, c.CompareLabel)
	}
}

func TestCompareDeletedRetainsBasePayload(t *testing.T) {
	base := snap("main", []snapshot.Block{
		resource("aws_instance", "old", map[string]any{"ami": "kept"}),
	}, nil)

	c := Compare(base, snap("dev", nil, nil))

	d, _ := c.Lookup("aws_instance.old")
	if d.Block.Config["ami"] != "kept" {
		t.Errorf("deleted block payload = %v, want base config", d.Block.Config)
	}
}

func TestConfigDelta(t *testing.T) {
	base := snap("main", []snapshot.Block{
		resource("aws_instance", "web", map[string]any{"a": float64(1), "b": float64(2)}),
	}, nil)
	compare := snap("dev", []snapshot.Block{
		resource("aws_instance", "web", map[string]any{"b": float64(2), "c": float64(3)}),
	}, nil)

	c := Compare(base, compare)
	d, _ := c.Lookup("aws_instance.web")
	if d.Config == nil {
		t.Fatal("expected config delta")
	}

	wantAdded := map[string]any{"c": float64(3)}
	wantRemoved := map[string]any{"a": float64(1)}
	if diff := cmp.Diff(wantAdded, d.Config.Added); diff != "" {
		t.Errorf("Added mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantRemoved, d.Config.Removed); diff != "" {
		t.Errorf("Removed mismatch (-want +got):\n%s", diff)
	}
	if len(d.Config.Modified) != 0 {
		t.Errorf("Modified = %v, want empty", d.Config.Modified)
	}
}

func TestConfigDeltaCanonicalEquality(t *testing.T) {
	// Structurally identical nested values must not register as changed,
	// regardless of numeric kind or map ordering.
	base := snap("main", []snapshot.Block{
		resource("aws_instance", "web", map[string]any{
			"tags":  map[string]any{"env": "prod", "team": "core"},
			"count": 2,
			"ports": []any{80, 443},
		}),
	}, nil)
	compare := snap("dev", []snapshot.Block{
		resource("aws_instance", "web", map[string]any{
			"tags":  map[string]any{"team": "core", "env": "prod"},
			"count": float64(2),
			"ports": []any{float64(80), float64(443)},
		}),
	}, nil)

	c := Compare(base, compare)
	d, _ := c.Lookup("aws_instance.web")
	if d.Classification != Unchanged {
		t.Errorf("classification = %s, want unchanged (delta: %+v)", d.Classification, d.Config)
	}
}

func TestDependencyDelta(t *testing.T) {
	dep := snapshot.Dependency{From: "r.a", To: "r.b", Type: snapshot.DepResourceToResource}
	base := snap("main", []snapshot.Block{
		resource("r", "a", nil),
		resource("r", "b", nil),
	}, []snapshot.Dependency{dep})
	compare := snap("dev", []snapshot.Block{
		resource("r", "a", nil),
		resource("r", "b", nil),
	}, nil)

	c := Compare(base, compare)

	// Both endpoints see the removed edge.
	for _, addr := range []string{"r.a", "r.b"} {
		d, _ := c.Lookup(addr)
		if d.Dependencies == nil || len(d.Dependencies.Removed) != 1 {
			t.Errorf("%s dependency delta = %+v, want 1 removed", addr, d.Dependencies)
		}
		if d.Classification != Modified {
			t.Errorf("%s classification = %s, want modified", addr, d.Classification)
		}
	}

	if len(c.GlobalDependencies.Removed) != 1 {
		t.Errorf("global removed = %d, want 1", len(c.GlobalDependencies.Removed))
	}
	if got := c.DependencyStatus(dep); got != Deleted {
		t.Errorf("DependencyStatus = %s, want deleted", got)
	}
}

func TestCompareIdempotent(t *testing.T) {
	base := snap("main", []snapshot.Block{
		resource("aws_instance", "web", map[string]any{"ami": "x"}),
	}, []snapshot.Dependency{
		{From: "aws_instance.web", To: "var.region", Type: snapshot.DepVariableReference},
	})
	compare := snap("dev", []snapshot.Block{
		resource("aws_instance", "web", map[string]any{"ami": "y"}),
		resource("aws_instance", "db", nil),
	}, nil)

	first := Compare(base, compare)
	second := Compare(base, compare)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated Compare differs (-first +second):\n%s", diff)
	}
}

func TestCompareNilSnapshots(t *testing.T) {
	c := Compare(nil, nil)
	if c.Summary.Total != 0 {
		t.Errorf("Total = %d, want 0", c.Summary.Total)
	}

	c = Compare(nil, snap("dev", []snapshot.Block{resource("r", "a", nil)}, nil))
	if c.Summary.Created != 1 {
		t.Errorf("Created = %d, want 1", c.Summary.Created)
	}
}

func TestCompareSurfacesCollisions(t *testing.T) {
	base := snap("main", []snapshot.Block{
		resource("r", "a", map[string]any{"v": 1}),
		resource("r", "a", map[string]any{"v": 2}),
	}, nil)

	c := Compare(base, snap("dev", nil, nil))
	if c.BaseCollisions != 1 {
		t.Errorf("BaseCollisions = %d, want 1", c.BaseCollisions)
	}
	if c.CompareCollisions != 0 {
		t.Errorf("CompareCollisions = %d, want 0", c.CompareCollisions)
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"NilNil", nil, nil, true},
		{"NilValue", nil, "x", false},
		{"IntFloat", 2, float64(2), true},
		{"FloatMismatch", float64(2), float64(3), false},
		{"StringNumber", "2", float64(2), false},
		{"NestedMapOrderIndependent", map[string]any{"a": 1, "b": map[string]any{"c": 2}}, map[string]any{"b": map[string]any{"c": float64(2)}, "a": float64(1)}, true},
		{"SliceOrderSensitive", []any{1, 2}, []any{2, 1}, false},
		{"MapSizeMismatch", map[string]any{"a": 1}, map[string]any{"a": 1, "b": 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := valueEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("valueEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
