// Package engine turns natural-language automation instructions into
// n8n-style workflow documents by calling an OpenAI-compatible completion
// API, repairing malformed output, and enriching the result with the
// defaults n8n needs for import.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskarchitect/architect/internal/llm"
	"github.com/taskarchitect/architect/internal/observability"
)

// Generator produces workflow documents from prompts.
type Generator struct {
	llm           llm.Completer
	primaryModel  string
	fallbackModel string
	maxTokens     int
	logger        *slog.Logger
	metrics       observability.MetricsRecorder
	spans         observability.SpanManager
}

// Option configures a Generator.
type Option func(*Generator)

// WithPrimaryModel sets the model for the structured call.
func WithPrimaryModel(model string) Option {
	return func(g *Generator) { g.primaryModel = model }
}

// WithFallbackModel sets the model for repair, connection inference, and
// the plain-JSON fallback.
func WithFallbackModel(model string) Option {
	return func(g *Generator) { g.fallbackModel = model }
}

// WithMaxTokens caps completion length on every model call. Zero leaves the
// API default in place.
func WithMaxTokens(n int) Option {
	return func(g *Generator) { g.maxTokens = n }
}

// WithLogger sets the logger. A nil logger disables generator logging.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithSpanManager sets the span manager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(g *Generator) { g.spans = s }
}

// New creates a Generator backed by the given completion client.
func New(completer llm.Completer, opts ...Option) *Generator {
	g := &Generator{
		llm:           completer,
		primaryModel:  DefaultPrimaryModel,
		fallbackModel: DefaultFallbackModel,
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces a complete, importable workflow document for prompt.
// Every failure is wrapped in a "Workflow generation failed" message, which
// becomes the detail field of the engine's error response.
func (g *Generator) Generate(ctx context.Context, prompt string) (Document, error) {
	done := observability.TimedOperation()
	ctx, span := g.spans.StartGenerationSpan(ctx, "")
	observability.LogGenerationStart(g.logger, len(prompt))

	doc, err := g.generate(ctx, prompt)

	durationMs := done()
	duration := time.Duration(durationMs) * time.Millisecond
	g.spans.EndSpanWithError(span, err)
	g.metrics.RecordGeneration(ctx, err == nil, duration)

	if err != nil {
		observability.LogGenerationError(g.logger, err, durationMs)
		return nil, fmt.Errorf("Workflow generation failed: %w", err)
	}

	observability.LogGenerationComplete(g.logger, doc.Name(), len(doc.Nodes()), durationMs)
	return doc, nil
}

// generate runs the structured call, the parse/repair step, the structural
// fallback, and final enrichment.
func (g *Generator) generate(ctx context.Context, prompt string) (Document, error) {
	resp, err := g.llm.Complete(ctx, llm.ChatRequest{
		Model: g.primaryModel,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: architectSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		Functions:    []llm.Function{workflowFunction},
		FunctionCall: &llm.FunctionCallRef{Name: workflowFunctionName},
		MaxTokens:    g.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	raw := ""
	if fc := resp.Choices[0].Message.FunctionCall; fc != nil {
		raw = strings.TrimSpace(fc.Arguments)
	}
	if raw == "" {
		// Some models ignore the forced function and answer in content.
		if g.logger != nil {
			g.logger.Warn("no structured arguments returned, falling back to message content")
		}
		raw = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	if raw == "" {
		return nil, fmt.Errorf("empty response from completion API")
	}

	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		if g.logger != nil {
			g.logger.Warn("parsing model output failed, attempting repair",
				slog.String("error", err.Error()))
		}
		doc, err = g.repairJSON(ctx, raw)
		if err != nil {
			return nil, err
		}
	}

	if _, hasName := doc["name"]; !hasName {
		doc = nil
	} else if _, hasNodes := doc["nodes"]; !hasNodes {
		doc = nil
	}
	if doc == nil {
		var err error
		doc, err = g.fallbackGenerate(ctx, prompt)
		if err != nil {
			return nil, err
		}
	}

	return g.ensureValid(ctx, doc, prompt)
}

// repairJSON asks the fallback model to fix broken JSON and parses the result.
func (g *Generator) repairJSON(ctx context.Context, broken string) (Document, error) {
	if g.logger != nil {
		g.logger.Warn("attempting model-assisted JSON repair")
	}
	resp, err := g.llm.Complete(ctx, llm.ChatRequest{
		Model: g.fallbackModel,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: repairSystemPrompt},
			{Role: llm.RoleUser, Content: broken},
		},
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("JSON repair: %w", err)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("JSON repair returned no content")
	}

	var doc Document
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("JSON repair produced invalid JSON: %w", err)
	}
	return doc, nil
}

// fallbackGenerate retries with a plain-JSON completion when the structured
// call produced a document missing name or nodes.
func (g *Generator) fallbackGenerate(ctx context.Context, prompt string) (Document, error) {
	if g.logger != nil {
		g.logger.Warn("incomplete workflow returned, retrying with plain completion")
	}
	resp, err := g.llm.Complete(ctx, llm.ChatRequest{
		Model: g.fallbackModel,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: fallbackSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("fallback completion: %w", err)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("fallback completion was empty")
	}

	var doc Document
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("fallback completion produced invalid JSON: %w", err)
	}
	return doc, nil
}

// inferConnections asks the fallback model for logical connections between
// nodes. Returns nil on any failure; the caller falls back to a linear chain.
func (g *Generator) inferConnections(ctx context.Context, prompt string, nodes []map[string]any) map[string]any {
	if g.logger != nil {
		g.logger.Info("inferring logical connections between nodes")
	}

	input, err := json.Marshal(map[string]any{
		"prompt": prompt,
		"nodes":  nodeNames(nodes),
	})
	if err != nil {
		return nil
	}

	resp, err := g.llm.Complete(ctx, llm.ChatRequest{
		Model: g.fallbackModel,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: connectionsSystemPrompt},
			{Role: llm.RoleUser, Content: string(input)},
		},
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		if g.logger != nil {
			g.logger.Warn("connection inference failed", slog.String("error", err.Error()))
		}
		return nil
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil
	}

	var connections map[string]any
	if err := json.Unmarshal([]byte(content), &connections); err != nil {
		if g.logger != nil {
			g.logger.Warn("connection inference returned invalid JSON",
				slog.String("error", err.Error()))
		}
		return nil
	}
	return connections
}

// ensureValid checks required fields, reorders triggers first, applies node
// and document defaults, and resolves connections: keep the model's, else
// infer, else chain linearly.
func (g *Generator) ensureValid(ctx context.Context, doc Document, prompt string) (Document, error) {
	nodes := doc.Nodes()
	if doc.Name() == "" || len(nodes) == 0 {
		return nil, fmt.Errorf("missing required workflow fields: 'name' or 'nodes'")
	}

	nodes = reorderTriggers(nodes)
	for i, node := range nodes {
		applyNodeDefaults(node, i)
	}

	ordered := make([]any, len(nodes))
	for i, n := range nodes {
		ordered[i] = n
	}
	doc["nodes"] = ordered

	applyDocumentDefaults(doc, prompt)

	connections, _ := doc["connections"].(map[string]any)
	if len(connections) == 0 {
		connections = g.inferConnections(ctx, prompt, nodes)
	}
	if len(connections) == 0 {
		connections = linearConnections(nodes)
		if g.logger != nil {
			g.logger.Info("using sequential fallback connections",
				slog.Int("nodes", len(nodes)))
		}
	}
	doc["connections"] = connections

	return doc, nil
}
