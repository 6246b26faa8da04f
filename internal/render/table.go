package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/assemble"
	"github.com/mlca-go/mlca/pkg/mlca/batch"
	"github.com/mlca-go/mlca/pkg/mlca/solver"
)

func newWriter(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

// Candidates lists the relations found for every outcome.
func Candidates(w io.Writer, s *solver.Solution) {
	t := newWriter(w, "Candidate relations")
	t.AppendHeader(table.Row{"Outcome", "Relation", "Complexity"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	for _, o := range s.Outcomes() {
		candidates := s.Candidates(o.Factor)
		if len(candidates) == 0 {
			t.AppendRow(table.Row{o.String(), "(unexplained)", ""})
			continue
		}
		for _, r := range candidates {
			t.AppendRow(table.Row{o.String(), r.String(), r.Condition.Complexity()})
		}
	}
	t.Render()
}

// Structures lists the structures with their counters, and returns the
// counters.
func Structures(w io.Writer, s *solver.Solution, each func(int, assemble.Structure) error) (assemble.Stats, error) {
	t := newWriter(w, "Structures")
	t.AppendHeader(table.Row{"#", "Structure"})
	var err error
	n := 0
	stats := s.Each(func(st assemble.Structure) bool {
		n++
		t.AppendRow(table.Row{n, st.String()})
		if each != nil {
			err = each(n, st)
		}
		return err == nil
	})
	if err != nil {
		return stats, err
	}
	t.AppendFooter(table.Row{"", summary(stats)})
	t.Render()
	if c := s.Coextensive(); len(c) > 0 {
		groups := make([]string, len(c))
		for i, ids := range c {
			groups[i] = join(ids)
		}
		fmt.Fprintf(w, "Co-extensive factors: %s\n", strings.Join(groups, "; "))
	}
	return stats, nil
}

// Batch lists the results of a batch run by id.
func Batch(w io.Writer, results map[batch.ID]*batch.Result) {
	ids := make([]batch.ID, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	t := newWriter(w, "Scenarios")
	t.AppendHeader(table.Row{"Scenario", "Structures", "Unexplained", "Rejected", "Error"})
	for _, id := range ids {
		r := results[id]
		if r.Err != nil {
			t.AppendRow(table.Row{id, "", "", "", r.Err.Error()})
			continue
		}
		t.AppendRow(table.Row{id, len(r.Structures), join(r.Solution.Unexplained()), r.Stats.Rejected(), ""})
	}
	t.Render()
}

func summary(s assemble.Stats) string {
	return fmt.Sprintf("examined %d, cyclic %d, violating %d, duplicate %d, fragment %d",
		s.Examined, s.Cyclic, s.Violating, s.Duplicate, s.Fragment)
}

func join(ids []mlca.Identifier) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}
