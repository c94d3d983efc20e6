// Package cypherqa answers natural-language questions over a Pennsieve graph
// by generating Cypher, repairing failed queries and summarizing the rows.
package cypherqa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pennsieve/cypherqa/config"
	"github.com/pennsieve/cypherqa/dataguide"
	"github.com/pennsieve/cypherqa/pathstore"
	"github.com/pennsieve/cypherqa/prompt"
	"github.com/pennsieve/cypherqa/qa"
	"github.com/pennsieve/cypherqa/types"
	"github.com/yaoapp/kun/log"
)

// WarmupQuestion the question issued by Warmup
const WarmupQuestion = "What are the names of the datasets in our database?"

// Deps the external collaborators of an engine
type Deps struct {
	Graph     types.GraphStore
	Vector    types.VectorStore
	Embedding types.Embedding
	Chat      types.ChatModel // query generation and summaries
	Describer types.ChatModel // path descriptions, nil disables Populate
}

// Options tunes an engine
type Options struct {
	Collection  string
	MaxRetries  int
	Backoff     time.Duration
	TopK        int
	ExampleMode string
	SummaryRows int
	Timeout     time.Duration // per question, 0 means no limit
	Populate    pathstore.Options
}

// Engine one session: the graph connection, the example store and the prompt
// template with the schema and guide paths derived when it was built
type Engine struct {
	graph      types.GraphStore
	vector     types.VectorStore
	chat       types.ChatModel
	examples   *pathstore.Store
	summarizer *qa.Summarizer
	template   *prompt.Template
	schema     string
	guidePaths []string
	options    Options
}

// Response the answer to one question
type Response struct {
	Question       string               `json:"question"`
	GeneratedQuery string               `json:"generated_query"`
	Rows           []types.Row          `json:"rows"`
	Answer         string               `json:"answer"`
	AttemptHistory []types.QueryAttempt `json:"attempt_history"`
}

// New builds an engine from connected collaborators. The graph schema and
// the guide paths are read once here.
func New(ctx context.Context, deps Deps, options Options) (*Engine, error) {
	if deps.Graph == nil || deps.Chat == nil {
		return nil, fmt.Errorf("a graph store and a chat model are required")
	}

	if options.Collection == "" {
		options.Collection = pathstore.DefaultCollection
	}
	if options.ExampleMode == "" {
		options.ExampleMode = config.ModePaths
	}
	if options.TopK <= 0 {
		options.TopK = 5
	}
	if options.ExampleMode != config.ModeQueries && (deps.Vector == nil || deps.Embedding == nil) {
		return nil, fmt.Errorf("example mode %s requires a vector store and an embedding model", options.ExampleMode)
	}

	schema, err := deps.Graph.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph schema: %w", err)
	}

	paths, err := dataguide.Extract(ctx, deps.Graph)
	if err != nil {
		return nil, err
	}
	guidePaths := dataguide.Format(paths)
	if len(guidePaths) == 0 {
		log.Warn("[Engine] the DataGuide is empty, prompts carry no guide paths")
	}

	engine := &Engine{
		graph:      deps.Graph,
		vector:     deps.Vector,
		chat:       deps.Chat,
		summarizer: &qa.Summarizer{Chat: deps.Chat, MaxRows: options.SummaryRows},
		template:   prompt.NewTemplate(schema, dataguide.Text(paths)),
		schema:     schema,
		guidePaths: guidePaths,
		options:    options,
	}

	if deps.Vector != nil && deps.Embedding != nil {
		var describer *pathstore.Describer
		if deps.Describer != nil {
			describer = pathstore.NewDescriber(deps.Describer)
		}
		engine.examples = pathstore.New(deps.Vector, deps.Graph, deps.Embedding, describer, options.Populate)
	}

	log.With(log.F{"guide_paths": len(guidePaths), "mode": options.ExampleMode}).Info("[Engine] session ready")
	return engine, nil
}

// ProcessQuery answers question. A retrieval failure is returned as is, a
// failed repair session as *qa.TerminalFailure. When only the summary fails
// the response still carries the rows and the error is *qa.SummarizationError.
func (engine *Engine) ProcessQuery(ctx context.Context, question string) (*Response, error) {
	if question == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}

	if engine.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, engine.options.Timeout)
		defer cancel()
	}

	examples, err := engine.Examples(ctx, question)
	if err != nil {
		return nil, err
	}

	loop := &qa.Loop{
		Chat:    engine.chat,
		Graph:   engine.graph,
		Prompt:  func(q string) string { return engine.template.Build(examples, q) },
		Backoff: engine.options.Backoff,
	}

	result, err := loop.Run(ctx, question, engine.options.MaxRetries)
	if err != nil {
		return nil, err
	}

	res := &Response{
		Question:       question,
		GeneratedQuery: result.Query,
		Rows:           result.Rows,
		AttemptHistory: result.History,
	}

	answer, err := engine.summarizer.Summarize(ctx, question, result.Query, result.Rows)
	if err != nil {
		log.With(log.F{"question": question}).Error("[Engine] %s", err.Error())
		return res, err
	}
	res.Answer = answer
	return res, nil
}

// Examples returns the few-shot examples for question according to the example
// mode. In both mode the retrieved paths come first, curated pairs follow.
func (engine *Engine) Examples(ctx context.Context, question string) ([]types.Example, error) {
	if engine.options.ExampleMode == config.ModeQueries {
		return prompt.CuratedExamples(), nil
	}

	records, err := engine.examples.Search(ctx, engine.options.Collection, question, engine.options.TopK)
	if err != nil {
		return nil, err
	}

	examples := make([]types.Example, 0, len(records))
	for _, record := range records {
		examples = append(examples, record.Example())
	}
	if engine.options.ExampleMode == config.ModeBoth {
		examples = append(examples, prompt.CuratedExamples()...)
	}
	return examples, nil
}

// Populate adds count described instance paths to the example collection
func (engine *Engine) Populate(ctx context.Context, count int, rebuild bool) (*pathstore.PopulateReport, error) {
	if engine.examples == nil {
		return nil, fmt.Errorf("no example store configured")
	}
	return engine.examples.Populate(ctx, engine.options.Collection, count, rebuild)
}

// Restore adds the pairs of a backup log to the example collection
func (engine *Engine) Restore(ctx context.Context, file string) (*pathstore.PopulateReport, error) {
	if engine.examples == nil {
		return nil, fmt.Errorf("no example store configured")
	}
	return engine.examples.Restore(ctx, engine.options.Collection, file)
}

// Size returns the number of records in the example collection
func (engine *Engine) Size(ctx context.Context) (int, error) {
	if engine.examples == nil {
		return 0, fmt.Errorf("no example store configured")
	}
	return engine.examples.Size(ctx, engine.options.Collection)
}

// Warmup answers a fixed question so every connection and cache is exercised once
func (engine *Engine) Warmup(ctx context.Context) (*Response, error) {
	return engine.ProcessQuery(ctx, WarmupQuestion)
}

// GuidePaths returns the formatted guide paths of the session
func (engine *Engine) GuidePaths() []string {
	return engine.guidePaths
}

// Schema returns the graph schema of the session
func (engine *Engine) Schema() string {
	return engine.schema
}

// Collection returns the example collection name
func (engine *Engine) Collection() string {
	return engine.options.Collection
}

// Close releases the graph and vector connections
func (engine *Engine) Close() error {
	var errs []error
	if engine.graph != nil {
		errs = append(errs, engine.graph.Close())
	}
	if engine.vector != nil {
		errs = append(errs, engine.vector.Close())
	}
	return errors.Join(errs...)
}
