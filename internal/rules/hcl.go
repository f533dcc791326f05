package rules

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"

	"github.com/syntax-tree/unist-util-is/api"
)

type hclFile struct {
	Version string    `hcl:"version,optional"`
	Rules   []hclRule `hcl:"rule,block"`
}

type hclRule struct {
	Name     string         `hcl:"name,label"`
	Test     hcl.Expression `hcl:"test,optional"`
	Message  string         `hcl:"message,optional"`
	Selector string         `hcl:"selector,optional"`
}

func decodeHCL(filename string, data []byte) ([]api.Rule, error) {
	var file hclFile
	if err := hclsimple.Decode(filename, data, nil, &file); err != nil {
		return nil, err
	}

	specs := make([]api.Rule, 0, len(file.Rules))
	for _, r := range file.Rules {
		spec := api.Rule{Name: r.Name, Message: r.Message, Selector: r.Selector}
		if r.Test != nil {
			val, diags := r.Test.Value(nil)
			if diags.HasErrors() {
				return nil, diags
			}
			test, err := ctyToGo(val)
			if err != nil {
				return nil, &DecodeError{File: filename, Rule: r.Name, Err: err}
			}
			spec.Test = test
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// ctyToGo converts an HCL value to the plain Go values is.FromValue
// accepts. Whole numbers become int64.
func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	t := v.Type()
	switch {
	case t == cty.String:
		return v.AsString(), nil
	case t == cty.Bool:
		return v.True(), nil
	case t == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i, nil
		}
		f, _ := bf.Float64()
		return f, nil
	case t.IsListType() || t.IsTupleType() || t.IsSetType():
		list := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			item, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			list = append(list, item)
		}
		return list, nil
	case t.IsMapType() || t.IsObjectType():
		m := make(map[string]any)
		for key, ev := range v.AsValueMap() {
			item, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			m[key] = item
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", t.FriendlyName())
	}
}
