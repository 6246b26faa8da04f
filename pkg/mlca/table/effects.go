package table

import (
	"strings"

	"github.com/mlca-go/mlca/pkg/mlca"
)

// PotentialOutcomes returns the factors that may be explained by the
// other factors of the table. A factor is a first cause, and therefore
// not a potential outcome, if it is constant or if two configurations
// differ in that factor alone.
func (t *Table) PotentialOutcomes() []mlca.Identifier {
	var out []mlca.Identifier
	for i, f := range t.factors {
		if t.IsConstant(i) || t.varieAlone(i) {
			continue
		}
		out = append(out, f.ID)
	}
	return out
}

func (t *Table) varieAlone(col int) bool {
	seen := make(map[string]bool, len(t.rows))
	var b strings.Builder
	for _, row := range t.rows {
		b.Reset()
		for i, v := range row {
			switch {
			case i == col:
				b.WriteByte('_')
			case v:
				b.WriteByte('1')
			default:
				b.WriteByte('0')
			}
		}
		k := b.String()
		if prev, ok := seen[k]; ok && prev != row[col] {
			return true
		}
		seen[k] = row[col]
	}
	return false
}

// CoextensiveClusters groups factors that take the same value in every
// configuration. Only groups with more than one member are returned, in
// column order of their first member.
func (t *Table) CoextensiveClusters() [][]mlca.Identifier {
	var clusters [][]mlca.Identifier
	var heads []int
	for i, f := range t.factors {
		joined := false
		for c, h := range heads {
			if t.pos[h].Equal(t.pos[i]) {
				clusters[c] = append(clusters[c], f.ID)
				joined = true
				break
			}
		}
		if !joined {
			heads = append(heads, i)
			clusters = append(clusters, []mlca.Identifier{f.ID})
		}
	}
	out := clusters[:0]
	for _, c := range clusters {
		if len(c) > 1 {
			out = append(out, c)
		}
	}
	return out
}
