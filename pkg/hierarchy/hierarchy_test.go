package hierarchy

import (
	"testing"

	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

func block(name string) snapshot.Block {
	return snapshot.Block{BlockType: snapshot.BlockResource, ResourceType: "aws_vpc", Name: name}
}

func TestBuild(t *testing.T) {
	root := Build([]Group{
		{Path: "", Blocks: []snapshot.Block{block("root1"), block("root2")}},
		{Path: "net", Blocks: []snapshot.Block{block("vpc")}},
		{Path: "net/subnet", Blocks: []snapshot.Block{block("private")}},
	})

	if len(root.Blocks) != 2 {
		t.Errorf("root blocks = %d, want 2", len(root.Blocks))
	}

	net := root.Child("net")
	if net == nil {
		t.Fatal("net missing")
	}
	if net.FullPath != "net" {
		t.Errorf("net.FullPath = %q", net.FullPath)
	}
	if len(net.Blocks) != 1 || net.Blocks[0].Name != "vpc" {
		t.Errorf("net blocks = %v", net.Blocks)
	}

	// subnet hangs off net, not root.
	if root.Child("subnet") != nil {
		t.Error("subnet should not be a direct child of root")
	}
	sub := net.Child("subnet")
	if sub == nil {
		t.Fatal("net/subnet missing")
	}
	if sub.FullPath != "net/subnet" {
		t.Errorf("subnet.FullPath = %q", sub.FullPath)
	}
	if len(sub.Blocks) != 1 || sub.Blocks[0].Name != "private" {
		t.Errorf("subnet blocks = %v", sub.Blocks)
	}
}

func TestBuildSharedPrefix(t *testing.T) {
	root := Build([]Group{
		{Path: "net/a", Blocks: []snapshot.Block{block("a")}},
		{Path: "net/b", Blocks: []snapshot.Block{block("b")}},
	})

	net := root.Child("net")
	if net == nil {
		t.Fatal("net missing")
	}
	if got := len(net.Children()); got != 2 {
		t.Fatalf("net children = %d, want 2", got)
	}
	// Intermediate node holds no blocks of its own.
	if len(net.Blocks) != 0 {
		t.Errorf("net blocks = %d, want 0", len(net.Blocks))
	}
	// No duplicated siblings.
	if names := []string{net.Children()[0].Name, net.Children()[1].Name}; names[0] != "a" || names[1] != "b" {
		t.Errorf("children = %v, want [a b]", names)
	}
}

func TestBuildDropsEmptySegments(t *testing.T) {
	root := Build([]Group{
		{Path: "net//subnet/", Blocks: []snapshot.Block{block("x")}},
	})

	sub := root.Child("net").Child("subnet")
	if sub == nil || len(sub.Blocks) != 1 {
		t.Fatalf("net/subnet = %v", sub)
	}
}

func TestBuildChildOrderDeterministic(t *testing.T) {
	groups := []Group{
		{Path: "zeta", Blocks: []snapshot.Block{block("z")}},
		{Path: "alpha", Blocks: []snapshot.Block{block("a")}},
		{Path: "mid", Blocks: []snapshot.Block{block("m")}},
	}

	root := Build(groups)
	want := []string{"zeta", "alpha", "mid"}
	for i, c := range root.Children() {
		if c.Name != want[i] {
			t.Errorf("child[%d] = %q, want %q", i, c.Name, want[i])
		}
	}
}

func TestFromSnapshot(t *testing.T) {
	s := &snapshot.ParsedSnapshot{
		Blocks: map[string][]snapshot.Block{
			snapshot.BlockResource: {
				{BlockType: snapshot.BlockResource, ResourceType: "aws_vpc", Name: "main", GroupPath: "net"},
				{BlockType: snapshot.BlockResource, ResourceType: "aws_instance", Name: "web", GroupPath: ""},
			},
		},
	}

	root := FromSnapshot(s)
	if len(root.Blocks) != 1 || root.Blocks[0].Name != "web" {
		t.Errorf("root blocks = %v", root.Blocks)
	}
	if net := root.Child("net"); net == nil || len(net.Blocks) != 1 {
		t.Errorf("net = %v", net)
	}
}
