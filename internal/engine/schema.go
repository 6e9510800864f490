package engine

import (
	"encoding/json"

	"github.com/taskarchitect/architect/internal/llm"
)

// Default models for the primary structured call and the cheaper
// repair/fallback calls.
const (
	DefaultPrimaryModel  = "gpt-4o"
	DefaultFallbackModel = "gpt-4o-mini"
)

// System prompts for each call the generator makes.
const (
	architectSystemPrompt = "You are an expert automation architect. " +
		"Generate a valid n8n workflow JSON that includes " +
		"the following top-level keys: name, nodes, connections. " +
		"Ensure the workflow is valid for import into n8n."

	fallbackSystemPrompt = "You are an n8n workflow generator. " +
		"Always output valid JSON with fields: name, nodes, connections. " +
		"Ensure nodes have parameters, name, type, typeVersion, position. " +
		"Return only the JSON, no explanation or markdown."

	repairSystemPrompt = "Fix and return only valid JSON. Do not explain anything."

	connectionsSystemPrompt = "You are an n8n workflow architect. " +
		"Return a JSON object defining logical 'connections' between nodes " +
		"based on their order and task purpose. Use n8n's connection format. " +
		"Example: { 'Cron': { 'main': [[{ 'node': 'Google Sheets', 'type': 'main', 'index': 0 }]] } }"
)

// workflowFunctionName is the forced function for the structured call.
const workflowFunctionName = "generate_n8n_workflow"

// workflowFunctionSchema is the JSON Schema for the structured call's
// arguments. Connections are optional; missing ones are filled in later.
var workflowFunctionSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"nodes": {"type": "array", "items": {"type": "object"}},
		"connections": {"type": "object"}
	},
	"required": ["name", "nodes"]
}`)

// workflowFunction declares the structured-output schema to the model.
var workflowFunction = llm.Function{
	Name: workflowFunctionName,
	Description: "Convert natural language automation instructions into a valid n8n workflow JSON " +
		"that can be directly imported into n8n. " +
		"The output must include top-level keys: 'name', 'nodes', and 'connections'.",
	Parameters: workflowFunctionSchema,
}

// Document is a workflow document as produced by the model: an n8n-style
// object with name, nodes, and connections at the top level. It stays a map
// because the gateway contract treats it as opaque JSON.
type Document map[string]any

// Name returns the workflow name, or "" when missing or not a string.
func (d Document) Name() string {
	s, _ := d["name"].(string)
	return s
}

// Nodes returns the node list, or nil when missing or malformed.
func (d Document) Nodes() []map[string]any {
	raw, ok := d["nodes"].([]any)
	if !ok {
		return nil
	}
	nodes := make([]map[string]any, 0, len(raw))
	for _, n := range raw {
		if m, ok := n.(map[string]any); ok {
			nodes = append(nodes, m)
		}
	}
	return nodes
}
