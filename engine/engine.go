// Package engine provides the glue & post-processing component
// (component 8, §4 step 8 of SPEC_FULL.md): it wires the statement
// extractor, CFG builder, RDA engine, and DFG builder together into a
// single per-translation-unit entry point, and builds the debug
// RDA-projected graph (§6 "Debug mode").
package engine

import (
	"github.com/google/uuid"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/go-cxflow/cxflow/cfgbuild"
	"github.com/go-cxflow/cxflow/config"
	"github.com/go-cxflow/cxflow/dfg"
	"github.com/go-cxflow/cxflow/diagnostic"
	"github.com/go-cxflow/cxflow/graphutil"
	"github.com/go-cxflow/cxflow/lang"
	"github.com/go-cxflow/cxflow/model"
	"github.com/go-cxflow/cxflow/rda"
)

// Result is the pair of multigraphs an Engine run produces for one
// translation unit (§6 "Outputs").
type Result struct {
	Cfg     *graphutil.CfgGraph
	DfgEdge []model.DfgEdge
	Records *model.Records
}

// Engine runs the fixed construction pipeline for a single translation
// unit: CST -> statement extractor -> CFG builder -> RDA -> DFG
// builder. It is single-threaded and carries no state across runs
// (§5 "Concurrency & resource model") — a fresh Engine is created per
// translation unit; nothing here is shared between parallel runs.
type Engine struct {
	Lang    lang.Spec
	Options config.EngineOptions
	Sink    diagnostic.Sink

	runID uuid.UUID
}

// New constructs an Engine for one translation unit, tagging it with a
// correlation id surfaced only through the diagnostic sink (§2.4).
func New(spec lang.Spec, opts config.EngineOptions, sink diagnostic.Sink) *Engine {
	if sink == nil {
		sink = diagnostic.NopSink{}
	}
	return &Engine{Lang: spec, Options: opts, Sink: sink, runID: uuid.New()}
}

// Run executes the full pipeline and returns both graphs.
func (e *Engine) Run(root *sitter.Node, idx model.Index, source []byte, symbols model.SymbolTable, extract ExtractFunc) Result {
	e.Sink.Progress("run %s: extracting statements (%s)", e.runID, e.Lang.Name())

	records := model.NewRecords()
	nodes, cfgNodes := extract(root, idx, source, records, e.Sink)

	builder := cfgbuild.NewBuilder(e.Lang, idx, records, nodes, source, symbols, e.Sink)
	g := cfgbuild.Build(builder, root, cfgNodes)

	e.Sink.Progress("run %s: CFG built, %d nodes %d edges", e.runID, len(g.Nodes), len(g.Edges()))

	paramMod := dfg.NewParamModifier(builder.ByID(), source)
	factBuilder := &dfg.Builder{Index: idx, Symbols: symbols, Source: source, Nodes: nodes, Records: records, ModifiesParam: paramMod.Modifies}
	facts := factBuilder.Build()

	result := rda.Solve(g, facts.DefsFor, rda.Options{Intraprocedural: e.Options.PreSolveDropsCrossFunctionEdges})

	translator := &dfg.Translator{
		Graph:    g,
		Facts:    facts,
		Result:   result,
		LastDef:  e.Options.LastDef,
		Lang:     e.Lang,
		TypeTags: typeTags(g),
	}
	edges := translator.Translate()

	interproc := &dfg.InterproceduralBuilder{Index: idx, Source: source, Records: records, ByID: builder.ByID(), ModifiesParam: paramMod.Modifies}
	edges = append(edges, interproc.Build(g)...)

	e.Sink.Progress("run %s: DFG built, %d edges", e.runID, len(edges))

	return Result{Cfg: g, DfgEdge: edges, Records: records}
}

// ExtractFunc matches lang/c.Extract and lang/cpp.Extract's signature,
// letting Engine stay language-agnostic over which extractor runs.
type ExtractFunc func(root *sitter.Node, idx model.Index, source []byte, records *model.Records, sink diagnostic.Sink) (model.NodeList, []model.CfgNode)

func typeTags(g *graphutil.CfgGraph) map[model.NodeId]string {
	out := make(map[model.NodeId]string, len(g.Nodes))
	for id, n := range g.Nodes {
		out[id] = n.TypeTag
	}
	return out
}
