package qa

import (
	"context"
	"errors"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pennsieve/cypherqa/types"
)

// DefaultSummaryRows rows handed to the model when MaxRows is not set
const DefaultSummaryRows = 50

const summaryPrompt = `You are an assistant that turns database results into clear, human readable answers.
The Information section holds the rows returned by a Cypher query written for the question. Use it to construct the answer.
The information is authoritative: never doubt it and never correct it with your own knowledge.
Make the answer read as a direct response to the question and do not mention that it is based on the given information.
If the information is empty, say that you don't know the answer.

Question:
{question}

Cypher query:
{query}

Information:
{rows}

Helpful Answer:`

// Summarizer writes a natural-language answer from the rows of a successful query
type Summarizer struct {
	Chat    types.ChatModel
	MaxRows int
}

// Summarize answers question from rows. Errors are *SummarizationError.
func (s *Summarizer) Summarize(ctx context.Context, question, query string, rows []types.Row) (string, error) {
	if s == nil || s.Chat == nil {
		return "", &SummarizationError{Err: errors.New("no summary model configured")}
	}

	limit := s.MaxRows
	if limit <= 0 {
		limit = DefaultSummaryRows
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	data, err := jsoniter.MarshalToString(rows)
	if err != nil {
		return "", &SummarizationError{Err: err}
	}

	content := strings.NewReplacer("{question}", question, "{query}", query, "{rows}", data).Replace(summaryPrompt)
	answer, err := s.Chat.Chat(ctx, []types.Message{{Role: "user", Content: content}})
	if err != nil {
		return "", &SummarizationError{Err: err}
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", &SummarizationError{Err: errors.New("empty answer returned")}
	}
	return answer, nil
}
