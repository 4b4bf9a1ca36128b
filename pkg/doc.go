// Package pkg provides the core libraries for Promptstack prompt compilation.
//
// # Overview
//
// Promptstack turns directed graphs of prompt steps into deterministic
// transcripts. The pkg directory is organized by pipeline stage plus shared
// infrastructure:
//
//   - [list] - Numbered list items that make up a step's content
//   - [graph] - Graph types, canonical JSON, and the structural validator
//   - [importer] - Free-text dialects parsed into graphs
//   - [layout] - Canvas position assignment (vertical, horizontal, grid)
//   - [sequence] - Linearization into the transcript and structured prompt
//   - [genai] - Model-backed graph generation with a strict response contract
//   - [pipeline] - Orchestration of import, validate, layout, and compile
//   - [render] - Graphviz DOT and SVG output
//   - [store] - Persistence of the working graph (file, memory, Redis, Mongo)
//   - [cache] - Content-addressed caching of layouts, sequences, and responses
//   - [config] - TOML configuration
//   - [errors] - Coded errors with user-facing messages
//   - [observability] - Optional instrumentation hooks
//
// # Architecture
//
// The typical data flow:
//
//	Free text or graph JSON
//	         ↓
//	importer.Parse / graph.Decode
//	         ↓
//	graph.Validate
//	         ↓
//	layout.Place
//	         ↓
//	sequence.Build
//	         ↓
//	Transcript + canonical JSON
//
// Every stage is a pure transformation of the graph, so results are
// deterministic for a given input and cacheable by content hash.
package pkg
