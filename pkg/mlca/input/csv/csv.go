package csv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

// Separators lists the characters that may separate cells.
const Separators = ",;:|_\t"

const (
	orderMarker = "<"
	levelMarker = "<<"
)

var (
	truthy = map[string]bool{"1": true, "T": true, "t": true, "w": true, "W": true, "true": true, "True": true}
	falsy  = map[string]bool{"0": true, "F": true, "f": true, "false": true, "False": true}
)

func split(line string) []string {
	var cells []string
	start := 0
	for i, r := range line {
		if strings.ContainsRune(Separators, r) {
			cells = append(cells, strings.TrimSpace(line[start:i]))
			start = i + 1
		}
	}
	return append(cells, strings.TrimSpace(line[start:]))
}

// Read parses a coincidence table. The first non-empty line names the
// factors. Every other line is a configuration of boolean cells, or a
// marker line in which "<" starts a new order group and "<<" a new
// level at its column.
func Read(r io.Reader, options ...table.Option) (*table.Table, error) {
	var (
		ids    []mlca.Identifier
		rows   [][]bool
		marker []string
	)
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := split(line)
		if ids == nil {
			for _, c := range cells {
				ids = append(ids, mlca.Identifier(c))
			}
			continue
		}
		if len(cells) != len(ids) {
			return nil, fmt.Errorf("%w: line %d has %d cells, expected %d", table.ErrMalformedTable, n, len(cells), len(ids))
		}
		if isMarker(cells) {
			if marker != nil {
				return nil, fmt.Errorf("%w: line %d is a second marker line", table.ErrMalformedTable, n)
			}
			marker = cells
			continue
		}
		row := make([]bool, len(cells))
		for i, c := range cells {
			switch {
			case truthy[c]:
				row[i] = true
			case falsy[c]:
			default:
				return nil, fmt.Errorf("%w: line %d: cell %q of %s is not boolean", table.ErrMalformedTable, n, c, ids[i])
			}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if marker != nil {
		options = append(options, table.WithLayout(layout(ids, marker)))
	}
	return table.New(ids, rows, options...)
}

// ReadFile is Read over the named file.
func ReadFile(path string, options ...table.Option) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Read(f, options...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func isMarker(cells []string) bool {
	for _, c := range cells {
		if strings.Contains(c, orderMarker) {
			return true
		}
	}
	return false
}

func layout(ids []mlca.Identifier, marker []string) table.Layout {
	l := table.Layout{{{}}}
	for i, id := range ids {
		switch {
		case strings.Contains(marker[i], levelMarker):
			l = append(l, [][]mlca.Identifier{{}})
		case strings.Contains(marker[i], orderMarker):
			last := len(l) - 1
			l[last] = append(l[last], []mlca.Identifier{})
		}
		level := l[len(l)-1]
		level[len(level)-1] = append(level[len(level)-1], id)
	}
	return trim(l)
}

// trim drops the empty groups left by a marker in the first column.
func trim(l table.Layout) table.Layout {
	var out table.Layout
	for _, level := range l {
		var groups [][]mlca.Identifier
		for _, g := range level {
			if len(g) > 0 {
				groups = append(groups, g)
			}
		}
		if len(groups) > 0 {
			out = append(out, groups)
		}
	}
	return out
}
