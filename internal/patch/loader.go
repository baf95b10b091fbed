package patch

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/synthgrid/internal/ctxlog"
	"github.com/vk/synthgrid/internal/fsutil"
)

// Load finds and parses all .hcl patch files under path (a single file or a
// directory) and consolidates their top-level blocks into one Patch, in file
// discovery order and source order within each file.
func Load(ctx context.Context, path string) (*Patch, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading patch from path.", "path", path)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to find patch files in %s: %w", path, err)
	}
	if len(files) == 0 {
		logger.Warn("No .hcl patch files found in path, returning empty patch.", "path", path)
		return &Patch{}, nil
	}

	parser := hclparse.NewParser()
	p := &Patch{}
	for _, file := range files {
		nodes, err := parseFile(file, parser)
		if err != nil {
			return nil, err
		}
		p.Nodes = append(p.Nodes, nodes...)
	}

	logger.Info("Patch loaded.", "files", len(files), "top_level_nodes", len(p.Nodes))
	return p, nil
}

// Parse decodes a single in-memory patch document. The filename is used for
// diagnostics only.
func Parse(filename string, src []byte) (*Patch, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse patch %s: %w", filename, diags)
	}
	nodes, _, err := decodeBody(hclFile.Body, rootSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to decode patch %s: %w", filename, err)
	}
	return &Patch{Nodes: nodes}, nil
}

func parseFile(filePath string, parser *hclparse.Parser) ([]*Node, error) {
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse patch file %s: %w", filePath, diags)
	}
	nodes, _, err := decodeBody(hclFile.Body, rootSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to decode patch file %s: %w", filePath, err)
	}
	return nodes, nil
}
