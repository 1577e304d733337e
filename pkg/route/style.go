package route

import (
	"github.com/tfcanvas/tfcanvas/pkg/diff"
	"github.com/tfcanvas/tfcanvas/pkg/snapshot"
)

// Style carries the render metadata of an edge.
type Style struct {
	Color    string `json:"color" bson:"color"`
	Dashed   bool   `json:"dashed" bson:"dashed"`
	Animated bool   `json:"animated,omitempty" bson:"animated,omitempty"`
}

// styleTable maps dependency types to their base style.
var styleTable = map[string]Style{
	snapshot.DepResourceToResource: {Color: "#6366f1"},
	snapshot.DepModule:             {Color: "#8b5cf6", Dashed: true},
	snapshot.DepDatasource:         {Color: "#0ea5e9", Dashed: true},
	snapshot.DepVariableReference:  {Color: "#64748b", Dashed: true},
	snapshot.DepLocalReference:     {Color: "#94a3b8", Dashed: true},
}

// defaultStyle is used for unknown dependency types.
var defaultStyle = Style{Color: "#9ca3af"}

// Change-status override styles.
var (
	addedStyle   = Style{Color: "#22c55e", Animated: true}
	removedStyle = Style{Color: "#ef4444", Dashed: true}
)

// styleFor resolves an edge's style and label. The base style comes from
// the dependency type; a comparison's added/removed status overrides it and
// prefixes the label.
func styleFor(dep snapshot.Dependency, comparison *diff.BranchComparison) (Style, string) {
	style, ok := styleTable[dep.Type]
	if !ok {
		style = defaultStyle
	}
	label := edgeLabel(dep)

	if comparison != nil {
		switch comparison.DependencyStatus(dep) {
		case diff.Created:
			style = addedStyle
			label = prefixLabel("+", label)
		case diff.Deleted:
			style = removedStyle
			label = prefixLabel("-", label)
		}
	}
	return style, label
}

func prefixLabel(sign, label string) string {
	if label == "" {
		return sign
	}
	return sign + " " + label
}

// edgeLabel names the referenced attribute or output when known.
func edgeLabel(dep snapshot.Dependency) string {
	switch {
	case dep.TargetOutput != "":
		return dep.TargetOutput
	case dep.TargetAttribute != "":
		return dep.TargetAttribute
	}
	return ""
}
