// Package qa drives query generation with repair and writes the final answer.
package qa

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pennsieve/cypherqa/types"
	"github.com/yaoapp/kun/log"
)

// DefaultBackoff pause between two attempts
const DefaultBackoff = time.Second

// EmptyReason prefix of the history entry of an attempt that returned no rows
const EmptyReason = "Empty context returned. Generated cypher: "

// Loop generates a query, runs it and re-prompts with the accumulated
// failures until rows come back or the retries are used up
type Loop struct {
	Chat    types.ChatModel
	Graph   types.GraphStore
	Prompt  func(question string) string // fills the question slot of the session prompt
	Backoff time.Duration                // fixed, 0 means DefaultBackoff, negative disables
}

// Result a successful session
type Result struct {
	Query   string               `json:"query"`
	Rows    []types.Row          `json:"rows"`
	History []types.QueryAttempt `json:"history"` // failed attempts before the successful one
}

// Run resolves question with at most maxRetries+1 generations. When no
// attempt returns rows the error is a *TerminalFailure with the full history.
func (l *Loop) Run(ctx context.Context, question string, maxRetries int) (*Result, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}

	history := []types.QueryAttempt{}
	enhanced := question

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &TerminalFailure{Question: question, History: history, Cause: err}
		}

		query, err := l.generate(ctx, enhanced)
		if err != nil {
			return nil, &TerminalFailure{Question: question, History: history, Cause: err}
		}

		record := types.QueryAttempt{Ordinal: attempt, Question: enhanced, Query: query, Time: time.Now()}
		rows, err := l.Graph.Run(ctx, query, nil)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, &TerminalFailure{Question: question, History: history, Cause: ctxErr}
			}
			record.Outcome = types.OutcomeError
			record.Error = err.Error()

		case len(rows) == 0:
			record.Outcome = types.OutcomeEmpty
			record.Error = EmptyReason + query

		default:
			log.With(log.F{"attempt": attempt, "rows": len(rows)}).Debug("[RepairLoop] %s", oneLine(query))
			return &Result{Query: query, Rows: rows, History: history}, nil
		}

		history = append(history, record)
		log.With(log.F{"attempt": attempt, "outcome": record.Outcome}).
			Warn("[RepairLoop] %s: %s", oneLine(query), oneLine(record.Error))

		if attempt == maxRetries {
			break
		}

		if err := l.pause(ctx); err != nil {
			return nil, &TerminalFailure{Question: question, History: history, Cause: err}
		}
		enhanced = Reprompt(question, history)
	}

	return nil, &TerminalFailure{Question: question, History: history}
}

func (l *Loop) generate(ctx context.Context, question string) (string, error) {
	content := question
	if l.Prompt != nil {
		content = l.Prompt(question)
	}

	reply, err := l.Chat.Chat(ctx, []types.Message{{Role: "user", Content: content}})
	if err != nil {
		return "", fmt.Errorf("failed to generate query: %w", err)
	}
	return NormalizeQuery(reply), nil
}

func (l *Loop) pause(ctx context.Context) error {
	backoff := l.Backoff
	if backoff == 0 {
		backoff = DefaultBackoff
	}
	if backoff < 0 {
		return nil
	}

	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Reprompt builds the next question from the original one and every failed
// attempt so far. When the last attempt came back empty the prompt repeats
// its query and asks for the schema and guide paths to be re-examined.
func Reprompt(question string, history []types.QueryAttempt) string {
	var b strings.Builder
	b.WriteString(question)
	b.WriteString("\nPreviously I tried these queries with these errors:\n")
	b.WriteString(RenderHistory(history))

	if n := len(history); n > 0 && history[n-1].Outcome == types.OutcomeEmpty {
		b.WriteString("\nThe last query ran without errors but returned no rows:\n")
		b.WriteString(history[n-1].Query)
		b.WriteString("\nRe-examine the Neo4j schema and the DataGuide paths and only use relationship sequences that appear there, do not invent paths.")
	}

	b.WriteString("\nDon't make the same mistakes.")
	return b.String()
}

// RenderHistory lists every attempt as its query and the reason it failed
func RenderHistory(history []types.QueryAttempt) string {
	lines := make([]string, 0, len(history))
	for i, attempt := range history {
		lines = append(lines, fmt.Sprintf("%d. Query: %s\n   Error: %s", i+1, oneLine(attempt.Query), oneLine(attempt.Error)))
	}
	return strings.Join(lines, "\n")
}
