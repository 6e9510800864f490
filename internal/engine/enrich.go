package engine

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// isTriggerNode reports whether a node starts a workflow rather than
// continuing one. n8n trigger types contain "cron" or "webhook".
func isTriggerNode(node map[string]any) bool {
	t, _ := node["type"].(string)
	return strings.Contains(t, "cron") || strings.Contains(t, "webhook")
}

// reorderTriggers moves trigger nodes to the front, preserving relative
// order within both groups.
func reorderTriggers(nodes []map[string]any) []map[string]any {
	triggers := make([]map[string]any, 0, len(nodes))
	others := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		if isTriggerNode(n) {
			triggers = append(triggers, n)
		} else {
			others = append(others, n)
		}
	}
	return append(triggers, others...)
}

// setDefault sets key to val unless the map already has a value for it.
func setDefault(m map[string]any, key string, val any) {
	if _, ok := m[key]; !ok {
		m[key] = val
	}
}

// applyNodeDefaults fills in the fields n8n requires on every node, plus
// realistic per-type parameter defaults. Index i positions nodes on a
// left-to-right grid.
func applyNodeDefaults(node map[string]any, i int) {
	setDefault(node, "parameters", map[string]any{})
	setDefault(node, "typeVersion", 1)
	setDefault(node, "position", []any{200 + i*220, 300})

	params, ok := node["parameters"].(map[string]any)
	if !ok {
		return
	}

	t, _ := node["type"].(string)
	switch {
	case strings.Contains(t, "cron"):
		setDefault(params, "triggerTimes", []any{
			map[string]any{"mode": "everyDay", "hour": 9, "minute": 0},
		})
	case strings.Contains(t, "googleSheets"):
		setDefault(params, "operation", "read")
		setDefault(params, "sheetName", "Team Updates")
		setDefault(params, "range", "A:B")
	case strings.Contains(t, "openai"):
		setDefault(params, "operation", "chat")
		setDefault(params, "model", "gpt-4o-mini")
		setDefault(params, "text",
			"={{'Summarize the following updates: ' + JSON.stringify($json)}}")
	case strings.Contains(t, "slack"):
		setDefault(params, "operation", "post")
		setDefault(params, "channel", "#daily-summary")
		setDefault(params, "text", "={{$json.text || 'Summary generated successfully.'}}")
	}
}

// applyDocumentDefaults fills in workflow-level metadata. The id is derived
// from a stable hash of the prompt so repeated prompts get the same id.
func applyDocumentDefaults(doc Document, prompt string) {
	setDefault(doc, "id", fmt.Sprintf("AI-Generated-%d", promptHash(prompt)))
	setDefault(doc, "active", false)
	setDefault(doc, "tags", []any{"ai-generated", "auto"})
	setDefault(doc, "settings", map[string]any{
		"timezone":             "UTC",
		"executionOrder":       "sequential",
		"saveManualExecutions": true,
	})
}

// promptHash maps a prompt to a stable eight-digit id component.
func promptHash(prompt string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	return h.Sum32() % 100_000_000
}

// nodeNames returns the name field of each node, skipping unnamed ones.
func nodeNames(nodes []map[string]any) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if name, ok := n["name"].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}

// linearConnections chains nodes in order: each node's main output feeds
// the next node's main input. The last resort when the model returned no
// connections and inference produced none.
func linearConnections(nodes []map[string]any) map[string]any {
	names := nodeNames(nodes)
	connections := make(map[string]any, len(names))
	for i := 0; i+1 < len(names); i++ {
		connections[names[i]] = map[string]any{
			"main": []any{
				[]any{
					map[string]any{"node": names[i+1], "type": "main", "index": 0},
				},
			},
		}
	}
	return connections
}
