// Package hierarchy groups a flat block list into a path-keyed tree.
//
// The tree is a trie over slash-delimited group paths: blocks at path ""
// attach to the root, and paths sharing a prefix share ancestor nodes. The
// hierarchy is a strict tree used only for layout; it never owns dependency
// edges.
package hierarchy

import (
	"strings"

	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

// Group pairs a slash-delimited path with the blocks that live there.
type Group struct {
	Path   string
	Blocks []snapshot.Block
}

// Node is one level of the group tree. Children preserve insertion order so
// repeated builds over the same input yield identical trees.
type Node struct {
	Name     string
	FullPath string
	Blocks   []snapshot.Block

	children map[string]*Node
	order    []string
}

// NewRoot returns an empty root node (FullPath "").
func NewRoot() *Node {
	return &Node{children: map[string]*Node{}}
}

// Child returns the named child, or nil.
func (n *Node) Child(name string) *Node {
	return n.children[name]
}

// Children returns the child nodes in insertion order.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.order))
	for _, name := range n.order {
		out = append(out, n.children[name])
	}
	return out
}

// child returns the named child, creating it if absent.
func (n *Node) child(name string) *Node {
	if c, ok := n.children[name]; ok {
		return c
	}
	path := name
	if n.FullPath != "" {
		path = n.FullPath + "/" + name
	}
	c := &Node{Name: name, FullPath: path, children: map[string]*Node{}}
	n.children[name] = c
	n.order = append(n.order, name)
	return c
}

// Build assembles the group tree from (path, blocks) pairs.
//
// Blocks at path "" attach directly to the root and never form a group.
// Non-empty paths are split on "/" with empty segments dropped; blocks
// attach only at the terminal node of their path.
func Build(groups []Group) *Node {
	root := NewRoot()
	for _, g := range groups {
		node := root
		for _, seg := range strings.Split(g.Path, "/") {
			if seg == "" {
				continue
			}
			node = node.child(seg)
		}
		node.Blocks = append(node.Blocks, g.Blocks...)
	}
	return root
}

// FromSnapshot groups a snapshot's blocks by their group path, preserving
// canonical block order, and builds the tree.
func FromSnapshot(s *snapshot.ParsedSnapshot) *Node {
	if s == nil {
		return NewRoot()
	}
	byPath := map[string]int{}
	var groups []Group
	for _, b := range s.All() {
		i, ok := byPath[b.GroupPath]
		if !ok {
			i = len(groups)
			byPath[b.GroupPath] = i
			groups = append(groups, Group{Path: b.GroupPath})
		}
		groups[i].Blocks = append(groups[i].Blocks, b)
	}
	return Build(groups)
}
