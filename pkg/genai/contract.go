// Package genai turns free-text requests into candidate prompt graphs by
// calling an OpenAI-compatible chat completions endpoint.
//
// The outbound request embeds a fixed schema and rule list in the system
// instruction so the model returns canonical graph JSON. The response is
// untrusted text: it is scanned for embedded JSON, coerced into a graph,
// and rejected by the validator before it is ever offered for drawing.
package genai

import (
	"fmt"
	"strings"
)

// graphSchema is the JSON shape the model must produce. It matches the
// canonical export format exactly so a response can be imported verbatim.
const graphSchema = `{
  "nodes": [{"id": "string", "role": "system" | "user" | "assistant", "label": "string", "content": "string"}],
  "edges": [{"from": "string", "to": "string"}]
}`

// graphRules is the fixed, ordered rule list sent with every request.
// The order mirrors the validator's checks so a model failure maps onto
// a specific validation message.
var graphRules = []string{
	"Every node id must be unique.",
	"Every edge must reference existing node ids, and no edge may connect a node to itself.",
	"Arrange nodes as a single sequential chain unless the request explicitly asks for branching.",
	"Every node must have non-empty content; do not emit placeholder or empty nodes.",
	"Preserve the order of steps exactly as described in the request.",
	"Every node must be connected by at least one edge; no orphan nodes.",
}

// Message is one chat message in an OpenAI-compatible request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the outbound chat completions payload.
type Request struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

// SystemInstruction renders the schema and rule list as the system
// message accompanying every generation request.
func SystemInstruction() string {
	var b strings.Builder
	b.WriteString("You design prompt graphs. Given a request, respond with exactly one JSON object describing a directed graph of prompt steps. Emit no prose outside the JSON.\n\n")
	b.WriteString("The JSON must conform to this schema:\n")
	b.WriteString(graphSchema)
	b.WriteString("\n\nRules, in order of priority:\n")
	for i, rule := range graphRules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}
	return b.String()
}

// BuildRequest assembles the outbound payload for a free-text request.
func BuildRequest(model string, temperature float64, request string) Request {
	return Request{
		Model:       model,
		Temperature: temperature,
		Messages: []Message{
			{Role: "system", Content: SystemInstruction()},
			{Role: "user", Content: request},
		},
	}
}
