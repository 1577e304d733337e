package parse

import (
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// =============================================================================
// Config Conversion
// =============================================================================

// bodyToConfig converts a block body into a plain config map. Attributes
// that evaluate without a scope become Go values; attributes that reference
// other blocks keep their source text. Nested blocks become nested maps,
// repeated nested blocks a slice of maps.
func bodyToConfig(body *hclsyntax.Body, src []byte) map[string]any {
	if body == nil {
		return nil
	}
	cfg := make(map[string]any, len(body.Attributes)+len(body.Blocks))

	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() || !val.IsWhollyKnown() {
			cfg[name] = exprSource(attr.Expr, src)
			continue
		}
		cfg[name] = ctyToGo(val)
	}

	for _, blk := range body.Blocks {
		nested := bodyToConfig(blk.Body, src)
		switch existing := cfg[blk.Type].(type) {
		case nil:
			cfg[blk.Type] = nested
		case []any:
			cfg[blk.Type] = append(existing, nested)
		default:
			cfg[blk.Type] = []any{existing, nested}
		}
	}

	if len(cfg) == 0 {
		return nil
	}
	return cfg
}

// exprSource returns the raw source text of an expression, used for
// attributes that cannot be evaluated statically.
func exprSource(expr hclsyntax.Expression, src []byte) string {
	return strings.TrimSpace(string(expr.Range().SliceBytes(src)))
}

// ctyToGo converts a known cty value to the plain Go value vocabulary used
// in Block.Config: string, float64, bool, []any, map[string]any, nil.
func ctyToGo(val cty.Value) any {
	if val.IsNull() || !val.IsKnown() {
		return nil
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString()
	case ty == cty.Bool:
		return val.True()
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, ctyToGo(ev))
		}
		return out
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			out[k.AsString()] = ctyToGo(ev)
		}
		return out
	default:
		return nil
	}
}
