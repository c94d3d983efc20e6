package qa

import (
	"fmt"
	"strings"

	"github.com/pennsieve/cypherqa/types"
)

// TerminalFailure no usable query was produced. History holds every failed
// attempt in order. Cause is set when the session was aborted by something
// other than exhausting the retries (cancellation, a dead language model).
type TerminalFailure struct {
	Question string               `json:"question"`
	History  []types.QueryAttempt `json:"history"`
	Cause    error                `json:"-"`
}

func (e *TerminalFailure) Error() string {
	var b strings.Builder
	if e.Cause != nil {
		fmt.Fprintf(&b, "query session aborted after %d failed attempts: %s", len(e.History), e.Cause.Error())
	} else {
		fmt.Fprintf(&b, "no usable query after %d attempts", len(e.History))
	}
	for _, attempt := range e.History {
		fmt.Fprintf(&b, "\n  #%d [%s] %s: %s", attempt.Ordinal, attempt.Outcome, oneLine(attempt.Query), attempt.Error)
	}
	return b.String()
}

func (e *TerminalFailure) Unwrap() error {
	return e.Cause
}

// SummarizationError the rows were obtained but the answer could not be written
type SummarizationError struct {
	Err error
}

func (e *SummarizationError) Error() string {
	return "failed to summarize result: " + e.Err.Error()
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
