// Package render exports graph views as Graphviz DOT and SVG.
//
// The DOT export mirrors the interactive view: group hierarchy becomes
// nested clusters, blocks become boxes, dependencies become styled edges.
// When a branch comparison is supplied, node fill colors and edge styles
// reflect the change classification, and deleted blocks (present only in
// the base snapshot) are drawn dashed.
//
//	dot := render.ToDOT(snap, comparison, render.Options{})
//	svg, err := render.SVG(dot)
package render

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/tfcanvas/tfcanvas/pkg/diff"
	"github.com/tfcanvas/tfcanvas/pkg/hierarchy"
	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

// Options configures DOT export.
type Options struct {
	// Detailed includes the block type and changed-key count in node
	// labels. When false, only the block name is shown.
	Detailed bool
}

// Node fill colors by classification.
const (
	colorCreated   = "#dcfce7"
	colorModified  = "#fef3c7"
	colorDeleted   = "#fee2e2"
	colorUnchanged = "white"
)

// Edge colors by dependency status.
const (
	edgeColorAdded   = "#22c55e"
	edgeColorRemoved = "#ef4444"
	edgeColorDefault = "#64748b"
)

// ToDOT converts a snapshot to Graphviz DOT format. comparison may be nil,
// in which case all nodes render unchanged.
func ToDOT(snap *snapshot.ParsedSnapshot, comparison *diff.BranchComparison, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	root := hierarchy.FromSnapshot(snap)
	writeNode(&buf, root, comparison, opts, 1)

	// Deleted blocks exist only in the base snapshot; append them at the
	// root so removed edges still have endpoints.
	for _, addr := range deletedAddrs(comparison) {
		d, _ := comparison.Lookup(addr)
		fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,filled,dashed\", fillcolor=%q];\n",
			addr, nodeLabel(d.Block, comparison, opts), colorDeleted)
	}

	buf.WriteString("\n")
	writeEdges(&buf, snap, comparison)

	buf.WriteString("}\n")
	return buf.String()
}

// writeNode emits one hierarchy level: the blocks at this level, then each
// child group as a nested cluster.
func writeNode(buf *bytes.Buffer, node *hierarchy.Node, comparison *diff.BranchComparison, opts Options, depth int) {
	indent := strings.Repeat("  ", depth)

	for _, b := range node.Blocks {
		fmt.Fprintf(buf, "%s%q [label=%q, fillcolor=%q];\n",
			indent, b.Addr(), nodeLabel(b, comparison, opts), nodeColor(b.Addr(), comparison))
	}

	for _, child := range node.Children() {
		fmt.Fprintf(buf, "%ssubgraph \"cluster_%s\" {\n", indent, child.FullPath)
		fmt.Fprintf(buf, "%s  label=%q;\n", indent, child.Name)
		fmt.Fprintf(buf, "%s  style=rounded;\n", indent)
		writeNode(buf, child, comparison, opts, depth+1)
		fmt.Fprintf(buf, "%s}\n", indent)
	}
}

// writeEdges emits the snapshot's dependencies plus the comparison's
// removed edges, which no longer exist in the snapshot itself.
func writeEdges(buf *bytes.Buffer, snap *snapshot.ParsedSnapshot, comparison *diff.BranchComparison) {
	for _, dep := range snap.Dependencies {
		attrs := []string{fmt.Sprintf("color=%q", edgeColor(dep, comparison))}
		if comparison != nil && comparison.DependencyStatus(dep) == diff.Created {
			attrs = append(attrs, "penwidth=2")
		}
		fmt.Fprintf(buf, "  %q -> %q [%s];\n", dep.From, dep.To, strings.Join(attrs, ", "))
	}

	if comparison == nil {
		return
	}
	for _, dep := range comparison.GlobalDependencies.Removed {
		fmt.Fprintf(buf, "  %q -> %q [color=%q, style=dashed];\n", dep.From, dep.To, edgeColorRemoved)
	}
}

func nodeLabel(b snapshot.Block, comparison *diff.BranchComparison, opts Options) string {
	if !opts.Detailed {
		return b.Label()
	}

	parts := []string{b.BlockType}
	if comparison != nil {
		if d, ok := comparison.Lookup(b.Addr()); ok && d.Config != nil {
			changed := len(d.Config.Added) + len(d.Config.Removed) + len(d.Config.Modified)
			parts = append(parts, fmt.Sprintf("%d changed", changed))
		}
	}
	return b.Label() + "\n" + strings.Join(parts, "\n")
}

func nodeColor(addr string, comparison *diff.BranchComparison) string {
	if comparison == nil {
		return colorUnchanged
	}
	d, ok := comparison.Lookup(addr)
	if !ok {
		return colorUnchanged
	}
	switch d.Classification {
	case diff.Created:
		return colorCreated
	case diff.Modified:
		return colorModified
	case diff.Deleted:
		return colorDeleted
	default:
		return colorUnchanged
	}
}

func edgeColor(dep snapshot.Dependency, comparison *diff.BranchComparison) string {
	if comparison == nil {
		return edgeColorDefault
	}
	switch comparison.DependencyStatus(dep) {
	case diff.Created:
		return edgeColorAdded
	case diff.Deleted:
		return edgeColorRemoved
	default:
		return edgeColorDefault
	}
}

// deletedAddrs returns the addresses classified as deleted, sorted for
// deterministic output.
func deletedAddrs(comparison *diff.BranchComparison) []string {
	if comparison == nil {
		return nil
	}
	var addrs []string
	for addr, d := range comparison.PerBlock {
		if d.Classification == diff.Deleted {
			addrs = append(addrs, addr)
		}
	}
	sort.Strings(addrs)
	return addrs
}
