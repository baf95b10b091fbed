// Package patch loads declarative patch files: HCL documents describing the
// node tree of a synthesis server as nested group and synth blocks. The
// loader preserves source order, which is semantically significant inside
// sequential groups.
package patch

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Kind distinguishes the two block types of a patch document.
type Kind uint8

const (
	// KindSynth is a leaf synth block.
	KindSynth Kind = iota
	// KindGroup is a container group block.
	KindGroup
)

// Node is one parsed block of a patch document. For synths, Ugen and Args
// carry the generator type and its arguments; for groups, Parallel and
// Children carry the container semantics.
type Node struct {
	Name     string
	Kind     Kind
	Parallel bool
	Ugen     string
	Args     map[string]cty.Value
	Children []*Node
}

// Patch is the root of a parsed patch: the top-level nodes in source order.
type Patch struct {
	Nodes []*Node
}

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "group", LabelNames: []string{"name"}},
		{Type: "synth", LabelNames: []string{"name"}},
	},
}

var groupSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "parallel"},
	},
	Blocks: rootSchema.Blocks,
}

var synthSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "ugen", Required: true},
		{Name: "args"},
	},
}

// decodeBody decodes the blocks of a group or file body in source order.
func decodeBody(body hcl.Body, schema *hcl.BodySchema) ([]*Node, hcl.Body, error) {
	content, remain, diags := body.PartialContent(schema)
	if diags.HasErrors() {
		return nil, nil, diags
	}

	nodes := make([]*Node, 0, len(content.Blocks))
	for _, block := range content.Blocks {
		switch block.Type {
		case "synth":
			n, err := decodeSynth(block)
			if err != nil {
				return nil, nil, err
			}
			nodes = append(nodes, n)
		case "group":
			n, err := decodeGroup(block)
			if err != nil {
				return nil, nil, err
			}
			nodes = append(nodes, n)
		}
	}
	return nodes, remain, nil
}

func decodeGroup(block *hcl.Block) (*Node, error) {
	n := &Node{Name: block.Labels[0], Kind: KindGroup}

	content, body, diags := block.Body.PartialContent(&hcl.BodySchema{
		Attributes: groupSchema.Attributes,
	})
	if diags.HasErrors() {
		return nil, diags
	}
	if attr, ok := content.Attributes["parallel"]; ok {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		if v.Type() != cty.Bool {
			return nil, fmt.Errorf("group %q: parallel must be a bool", n.Name)
		}
		n.Parallel = v.True()
	}

	children, _, err := decodeBody(body, rootSchema)
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", n.Name, err)
	}
	n.Children = children
	return n, nil
}

func decodeSynth(block *hcl.Block) (*Node, error) {
	n := &Node{Name: block.Labels[0], Kind: KindSynth}

	content, diags := block.Body.Content(synthSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	ugenVal, diags := content.Attributes["ugen"].Expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if ugenVal.Type() != cty.String {
		return nil, fmt.Errorf("synth %q: ugen must be a string", n.Name)
	}
	n.Ugen = ugenVal.AsString()

	if attr, ok := content.Attributes["args"]; ok {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		if !v.Type().IsObjectType() && !v.Type().IsMapType() {
			return nil, fmt.Errorf("synth %q: args must be an object", n.Name)
		}
		n.Args = v.AsValueMap()
	}
	return n, nil
}
