// Package engine drives the scheduling core: it builds the node tree from a
// parsed patch, compiles the tree into an execution queue once per block (or
// once per structural change, cached otherwise), and drains the queue across
// the worker pool.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/vk/synthgrid/internal/ctxlog"
	"github.com/vk/synthgrid/internal/graph"
	"github.com/vk/synthgrid/internal/patch"
	"github.com/vk/synthgrid/internal/queue"
	"github.com/vk/synthgrid/internal/ugen"
)

// Config holds the engine parameters. Zero fields are replaced by defaults.
type Config struct {
	SampleRate float64
	BlockSize  int
	Workers    int
	MaxNodes   int
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 48000
	}
	if c.BlockSize <= 0 {
		c.BlockSize = 64
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MaxNodes <= 0 {
		c.MaxNodes = 1024
	}
	return c
}

// Engine owns one node graph and the executor draining its compiled queues.
type Engine struct {
	cfg    Config
	graph  *graph.NodeGraph
	exec   *queue.Executor
	names  map[string]graph.ID
	nextID graph.ID
}

// New creates an engine with its node storage reserved up front.
func New(cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()
	ng, err := graph.NewNodeGraph(cfg.MaxNodes)
	if err != nil {
		return nil, fmt.Errorf("creating node graph: %w", err)
	}
	return &Engine{
		cfg:    cfg,
		graph:  ng,
		exec:   queue.NewExecutor(cfg.Workers),
		names:  make(map[string]graph.ID),
		nextID: graph.RootID + 1,
	}, nil
}

// Graph exposes the underlying node graph for control-layer mutation.
func (e *Engine) Graph() *graph.NodeGraph {
	return e.graph
}

// Config returns the effective engine parameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// LoadPatch instantiates every node of the patch under the root group, in
// patch order, resolving synth blocks through the ugen registry.
func (e *Engine) LoadPatch(ctx context.Context, p *patch.Patch, reg *ugen.Registry) error {
	logger := ctxlog.FromContext(ctx)
	for _, pn := range p.Nodes {
		if err := e.addPatchNode(ctx, e.graph.Root(), pn, reg); err != nil {
			return err
		}
	}
	synths, groups := e.graph.Root().ChildCountDeep()
	logger.Info("Patch instantiated.", "synths", synths, "groups", groups)
	return nil
}

func (e *Engine) addPatchNode(ctx context.Context, parent *graph.Node, pn *patch.Node, reg *ugen.Registry) error {
	logger := ctxlog.FromContext(ctx)
	if _, exists := e.names[pn.Name]; exists {
		logger.Warn("Duplicate node name in patch, it will shadow the earlier node.", "name", pn.Name)
	}

	id := e.nextID
	e.nextID++

	var (
		n   *graph.Node
		err error
	)
	switch pn.Kind {
	case patch.KindSynth:
		var runner queue.Runner
		runner, err = reg.New(pn.Ugen, ugen.Spec{
			SampleRate: e.cfg.SampleRate,
			BlockSize:  e.cfg.BlockSize,
			Args:       pn.Args,
		})
		if err != nil {
			return fmt.Errorf("synth %q: %w", pn.Name, err)
		}
		n, err = e.graph.NewSynth(id, runner)
	case patch.KindGroup:
		n, err = e.graph.NewGroup(id, pn.Parallel)
	default:
		return fmt.Errorf("node %q: unknown patch node kind %d", pn.Name, pn.Kind)
	}
	if err != nil {
		return fmt.Errorf("node %q: %w", pn.Name, err)
	}

	if err := e.graph.Add(parent, n, graph.AtTail()); err != nil {
		return fmt.Errorf("node %q: %w", pn.Name, err)
	}
	e.names[pn.Name] = id

	for _, child := range pn.Children {
		if err := e.addPatchNode(ctx, n, child, reg); err != nil {
			return err
		}
	}
	return nil
}

// Lookup resolves a patch node name to its graph handle, or nil.
func (e *Engine) Lookup(name string) *graph.Node {
	id, ok := e.names[name]
	if !ok {
		return nil
	}
	return e.graph.Find(id)
}

// RunBlock processes one audio block: compile the tree if it changed, then
// drain the queue. A failed compile leaves the previous queue in use.
func (e *Engine) RunBlock(ctx context.Context) error {
	q, err := e.graph.Compile()
	if err != nil {
		return fmt.Errorf("compiling queue: %w", err)
	}
	if err := e.exec.Drain(ctx, q); err != nil {
		return fmt.Errorf("draining queue: %w", err)
	}
	return nil
}

// Run processes the given number of blocks back to back and logs a timing
// summary. Graceful shutdown is implicit: every started block runs to
// completion, and the tree is left intact for the caller to tear down.
func (e *Engine) Run(ctx context.Context, blocks int) error {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	for i := 0; i < blocks; i++ {
		if err := e.RunBlock(ctx); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}
	elapsed := time.Since(start)
	logger.Info("Run finished.",
		"blocks", blocks,
		"elapsed", elapsed,
		"per_block", elapsed/time.Duration(max(blocks, 1)),
	)
	return nil
}
