package parse

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

// =============================================================================
// Dependency Extraction
// =============================================================================

// builtinRoots are traversal roots that never address another block.
var builtinRoots = map[string]bool{
	"each":  true,
	"count": true,
	"self":  true,
	"path":  true,
}

// blockDependencies extracts every typed reference from a block body.
// Attribute names are sorted before traversal so the edge order is stable
// across runs. Self references and duplicate (from,to,type) keys are
// dropped.
func blockDependencies(from string, body *hclsyntax.Body) []snapshot.Dependency {
	var deps []snapshot.Dependency
	seen := make(map[string]bool)

	for _, tv := range bodyTraversals(body) {
		dep, ok := classifyTraversal(tv)
		if !ok {
			continue
		}
		dep.From = from
		if dep.To == from || seen[dep.Key()] {
			continue
		}
		seen[dep.Key()] = true
		deps = append(deps, dep)
	}

	return deps
}

// bodyTraversals collects the variable traversals of all attributes and
// nested blocks, attributes first in name order, then nested blocks in
// source order.
func bodyTraversals(body *hclsyntax.Body) []hcl.Traversal {
	if body == nil {
		return nil
	}

	names := make([]string, 0, len(body.Attributes))
	for name := range body.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	var tvs []hcl.Traversal
	for _, name := range names {
		tvs = append(tvs, body.Attributes[name].Expr.Variables()...)
	}
	for _, blk := range body.Blocks {
		tvs = append(tvs, bodyTraversals(blk.Body)...)
	}
	return tvs
}

// classifyTraversal maps one traversal to a dependency. The root step
// decides the type; the attribute steps supply the target address and,
// where present, the referenced attribute or output name.
//
//	var.name            → variable_reference   to var.name
//	local.name          → local_reference      to local.name
//	module.name.out     → module_dependency    to module.name (output "out")
//	data.type.name.attr → datasource_dependency to data.type.name (attr)
//	type.name.attr      → resource_to_resource to type.name (attr)
func classifyTraversal(tv hcl.Traversal) (snapshot.Dependency, bool) {
	root := tv.RootName()
	if builtinRoots[root] {
		return snapshot.Dependency{}, false
	}

	attrs := attrSteps(tv)

	switch root {
	case "var":
		if len(attrs) < 1 {
			return snapshot.Dependency{}, false
		}
		return snapshot.Dependency{
			To:   "var." + attrs[0],
			Type: snapshot.DepVariableReference,
		}, true

	case "local":
		if len(attrs) < 1 {
			return snapshot.Dependency{}, false
		}
		return snapshot.Dependency{
			To:   "local." + attrs[0],
			Type: snapshot.DepLocalReference,
		}, true

	case "module":
		if len(attrs) < 1 {
			return snapshot.Dependency{}, false
		}
		dep := snapshot.Dependency{
			To:   "module." + attrs[0],
			Type: snapshot.DepModule,
		}
		if len(attrs) > 1 {
			dep.TargetOutput = attrs[1]
		}
		return dep, true

	case "data":
		if len(attrs) < 2 {
			return snapshot.Dependency{}, false
		}
		dep := snapshot.Dependency{
			To:   "data." + attrs[0] + "." + attrs[1],
			Type: snapshot.DepDatasource,
		}
		if len(attrs) > 2 {
			dep.TargetAttribute = attrs[2]
		}
		return dep, true

	default:
		// A bare name with no attribute step is a scope lookup, not a
		// block reference.
		if len(attrs) < 1 {
			return snapshot.Dependency{}, false
		}
		dep := snapshot.Dependency{
			To:   root + "." + attrs[0],
			Type: snapshot.DepResourceToResource,
		}
		if len(attrs) > 1 {
			dep.TargetAttribute = attrs[1]
		}
		return dep, true
	}
}

// attrSteps returns the names of the attribute steps after the root,
// skipping index steps like [0] or ["key"].
func attrSteps(tv hcl.Traversal) []string {
	var names []string
	for _, step := range tv[1:] {
		if attr, ok := step.(hcl.TraverseAttr); ok {
			names = append(names, attr.Name)
		}
	}
	return names
}
