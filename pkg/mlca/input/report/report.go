// Package report imports the solution formulas printed by the R
// packages cna and QCA, so that they can be assembled into structures
// without searching a table.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

type Format int

const (
	FormatCNA Format = iota
	FormatQCA
)

func (f Format) String() string {
	if f == FormatQCA {
		return "QCA"
	}
	return "CNA"
}

const (
	cnaBanner   = "--- Coincidence Analysis (CNA) ---"
	equivalence = "<->"
)

var (
	ErrUnrecognized = errors.New("report is neither cna nor QCA output")
	ErrNoFactors    = errors.New("report names no factors")
	ErrNoFormulas   = errors.New("report contains no formula")
)

var (
	factorSeparator = regexp.MustCompile(`,\s*`)
	columnGap       = regexp.MustCompile(`\s{2,}`)
	// cna prints model tables whose rows start with a single factor name
	// followed by padding.
	tableRow = regexp.MustCompile(`^[A-Z]\s{2,}`)
	literal  = regexp.MustCompile(`[^\s*+~]+`)
)

// Report is the content of an imported report.
type Report struct {
	Format    Format
	Schema    *table.Schema
	Relations []mlca.Relation
	// Discarded lists the declared factors that no formula mentions.
	Discarded []mlca.Identifier
}

// Parse reads a cna or QCA report. Declared levels become schema
// levels; factors that appear in no formula are dropped.
func Parse(r io.Reader, options ...table.Option) (*Report, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	format, err := detect(lines)
	if err != nil {
		return nil, err
	}

	relations, err := formulas(lines, format)
	if err != nil {
		return nil, err
	}
	if len(relations) == 0 {
		return nil, ErrNoFormulas
	}

	levels, declared := ordering(lines, format)
	if !declared {
		levels = [][]mlca.Identifier{mentioned(relations)}
	}

	used := map[mlca.Identifier]struct{}{}
	for _, r := range relations {
		used[r.Outcome.Factor] = struct{}{}
		for _, id := range r.Condition.Factors() {
			used[id] = struct{}{}
		}
	}

	rep := Report{Format: format, Relations: relations}
	var (
		ids    []mlca.Identifier
		layout table.Layout
	)
	for _, level := range levels {
		var kept []mlca.Identifier
		for _, id := range level {
			if _, ok := used[id]; ok {
				kept = append(kept, id)
			} else {
				rep.Discarded = append(rep.Discarded, id)
			}
		}
		if len(kept) == 0 {
			continue
		}
		ids = append(ids, kept...)
		layout = append(layout, [][]mlca.Identifier{kept})
	}
	if len(ids) == 0 {
		return nil, ErrNoFactors
	}
	for id := range used {
		if !slices.Contains(ids, id) {
			return nil, fmt.Errorf("%w: factor %q is not declared by the report", mlca.ErrInvalidCondition, id)
		}
	}

	if declared {
		options = append([]table.Option{table.WithLayout(layout)}, options...)
	}
	rep.Schema, err = table.NewSchema(ids, options...)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// ParseFile is Parse over the named file.
func ParseFile(path string, options ...table.Option) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rep, err := Parse(f, options...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rep, nil
}

func detect(lines []string) (Format, error) {
	if len(lines) > 0 && strings.Contains(lines[0], cnaBanner) {
		return FormatCNA, nil
	}
	for _, l := range lines {
		if strings.HasPrefix(l, "M") && strings.Count(l, equivalence) == 1 {
			return FormatQCA, nil
		}
	}
	return 0, ErrUnrecognized
}

// ordering returns the declared factors grouped by level. Both "<" and
// "<<" separate levels in a report.
func ordering(lines []string, format Format) ([][]mlca.Identifier, bool) {
	var declared string
	found := false
	for i, l := range lines {
		switch {
		case format == FormatCNA && strings.Contains(l, "Causal ordering:") && i+1 < len(lines):
			declared, found = strings.Replace(lines[i+1], "Factors: ", "", 1), true
		case format == FormatCNA && strings.Contains(l, "Factors:"):
			declared, found = strings.Replace(l, "Factors: ", "", 1), true
		case format == FormatQCA && strings.Contains(l, "ordering") && strings.Contains(l, "="):
			declared, found = strings.TrimSpace(l[strings.Index(l, "=")+1:]), true
			declared = strings.Trim(declared, `"`)
		}
		if found {
			break
		}
	}
	if !found {
		return nil, false
	}
	var levels [][]mlca.Identifier
	for _, part := range strings.Split(declared, "<") {
		var level []mlca.Identifier
		for _, name := range factorSeparator.Split(strings.TrimSpace(part), -1) {
			if name = strings.TrimSpace(name); name != "" {
				level = append(level, mlca.Identifier(name))
			}
		}
		levels = append(levels, level)
	}
	return levels, true
}

func formulas(lines []string, format Format) ([]mlca.Relation, error) {
	var (
		out  []mlca.Relation
		seen = map[string]struct{}{}
	)
	for n, l := range lines {
		if strings.Count(l, equivalence) != 1 {
			continue
		}
		if format == FormatCNA && tableRow.MatchString(l) {
			continue
		}
		if format == FormatQCA {
			if i := strings.Index(l, ":"); i >= 0 {
				l = l[i+1:]
			}
		}
		left, right, _ := strings.Cut(l, equivalence)
		left = strings.TrimSpace(left)
		if loc := columnGap.FindStringIndex(left); loc != nil {
			left = left[loc[1]:]
		}
		fields := strings.Fields(right)
		if left == "" || len(fields) == 0 {
			continue
		}
		right = fields[0]
		if format == FormatCNA {
			left, right = negations(left), negations(right)
		}
		r, err := mlca.ParseRelation(left + " " + equivalence + " " + right)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		if _, ok := seen[r.Key()]; ok {
			continue
		}
		seen[r.Key()] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}

// negations rewrites the lowercase spelling of a negated factor, which
// cna prints for crisp-set data, into the "~" form.
func negations(s string) string {
	return literal.ReplaceAllStringFunc(s, func(tok string) string {
		if r := []rune(tok); unicode.IsLower(r[0]) {
			return "~" + strings.ToUpper(tok)
		}
		return tok
	})
}

func mentioned(relations []mlca.Relation) []mlca.Identifier {
	var out []mlca.Identifier
	add := func(id mlca.Identifier) {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	for _, r := range relations {
		add(r.Outcome.Factor)
		for _, id := range r.Condition.Factors() {
			add(id)
		}
	}
	return out
}
