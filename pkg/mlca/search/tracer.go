package search

import (
	"fmt"
	"io"

	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/evaluate"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

// SearchPosition describes one tested candidate condition.
type SearchPosition interface {
	Outcome() mlca.Literal
	Candidate() mlca.Condition
	Score() evaluate.Score
	Accepted() bool
}

type Tracer interface {
	Trace(p SearchPosition)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ SearchPosition) {
}

type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p SearchPosition) {
	fmt.Fprintf(t.Writer, "---\nOutcome: %s\n", p.Outcome())
	fmt.Fprintf(t.Writer, "Candidate: %s\n", p.Candidate())
	fmt.Fprintf(t.Writer, "Score: %s\n", p.Score())
	fmt.Fprintf(t.Writer, "Accepted: %t\n", p.Accepted())
}

type position struct {
	outcome   mlca.Literal
	candidate mlca.Condition
	rows      table.RowSet
	out       table.RowSet
	accepted  bool
}

func (p position) Outcome() mlca.Literal {
	return p.outcome
}

func (p position) Candidate() mlca.Condition {
	return p.candidate
}

func (p position) Score() evaluate.Score {
	return evaluate.Rows(p.rows, p.out)
}

func (p position) Accepted() bool {
	return p.accepted
}
