package render

import (
	"strings"
	"testing"

	"github.com/tfcanvas/tfcanvas/pkg/diff"
	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

func testSnapshots() (base, compare *snapshot.ParsedSnapshot) {
	base = &snapshot.ParsedSnapshot{
		Blocks: map[string][]snapshot.Block{
			snapshot.BlockResource: {
				{BlockType: snapshot.BlockResource, ResourceType: "aws_instance", Name: "web", Address: "aws_instance.web",
					Config: map[string]any{"ami": "x"}},
				{BlockType: snapshot.BlockResource, ResourceType: "aws_instance", Name: "old", Address: "aws_instance.old"},
			},
		},
		Dependencies: []snapshot.Dependency{
			{From: "aws_instance.web", To: "aws_instance.old", Type: snapshot.DepResourceToResource},
		},
		BranchLabel: "main",
	}
	compare = &snapshot.ParsedSnapshot{
		Blocks: map[string][]snapshot.Block{
			snapshot.BlockResource: {
				{BlockType: snapshot.BlockResource, ResourceType: "aws_instance", Name: "web", Address: "aws_instance.web",
					Config: map[string]any{"ami": "y"}},
				{BlockType: snapshot.BlockResource, ResourceType: "aws_instance", Name: "db", Address: "aws_instance.db",
					GroupPath: "storage"},
			},
		},
		BranchLabel: "feature",
	}
	return base, compare
}

func TestToDOTPlain(t *testing.T) {
	_, compare := testSnapshots()
	dot := ToDOT(compare, nil, Options{})

	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Fatalf("not a digraph:\n%s", dot)
	}
	if !strings.Contains(dot, `"aws_instance.web"`) {
		t.Error("missing web node")
	}
	// Grouped block sits inside a cluster named after its path
	if !strings.Contains(dot, `subgraph "cluster_storage"`) {
		t.Error("missing storage cluster")
	}
	// Without a comparison everything renders unchanged
	if strings.Contains(dot, colorModified) || strings.Contains(dot, colorCreated) {
		t.Error("plain export should not carry change colors")
	}
}

func TestToDOTWithComparison(t *testing.T) {
	base, compare := testSnapshots()
	comparison := diff.Compare(base, compare)
	dot := ToDOT(compare, comparison, Options{})

	// Modified and created fills
	if !strings.Contains(dot, `"aws_instance.web" [label="web", fillcolor="`+colorModified+`"]`) {
		t.Errorf("web should be filled as modified:\n%s", dot)
	}
	if !strings.Contains(dot, `"aws_instance.db" [label="db", fillcolor="`+colorCreated+`"]`) {
		t.Errorf("db should be filled as created:\n%s", dot)
	}

	// Deleted block appears dashed even though it is gone from compare
	if !strings.Contains(dot, `"aws_instance.old"`) || !strings.Contains(dot, "dashed") {
		t.Error("deleted block should render dashed")
	}

	// The removed dependency renders as a dashed red edge
	if !strings.Contains(dot, `"aws_instance.web" -> "aws_instance.old" [color="`+edgeColorRemoved+`", style=dashed]`) {
		t.Errorf("removed edge missing:\n%s", dot)
	}
}

func TestToDOTDetailedLabels(t *testing.T) {
	base, compare := testSnapshots()
	comparison := diff.Compare(base, compare)
	dot := ToDOT(compare, comparison, Options{Detailed: true})

	// One config key changed on web
	if !strings.Contains(dot, "1 changed") {
		t.Errorf("detailed label should count changed keys:\n%s", dot)
	}
	if !strings.Contains(dot, "resource") {
		t.Error("detailed label should include the block type")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>` + "\n" +
		`<svg width="94pt" height="116pt" viewBox="0.00 0.00 94.00 116.00" xmlns="http://www.w3.org/2000/svg">` +
		`<g></g></svg>`)

	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 94.00 116.00"`) {
		t.Errorf("view box not normalized: %s", out)
	}
	if !strings.Contains(out, `width="94" height="116"`) {
		t.Errorf("dimensions not rewritten: %s", out)
	}
}

func TestNormalizeViewBoxPassthrough(t *testing.T) {
	in := []byte(`<svg><g></g></svg>`)
	if got := string(normalizeViewBox(in)); got != string(in) {
		t.Errorf("SVG without view box should pass through, got %s", got)
	}
}
