package hypergraph_test

import (
	"slices"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gstruct"

	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/assemble"
	"github.com/mlca-go/mlca/pkg/mlca/hypergraph"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

func TestHypergraph(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Hypergraph Suite")
}

var _ = Describe("Graph", func() {
	var g *hypergraph.Graph

	BeforeEach(func() {
		schema, err := table.NewSchema([]mlca.Identifier{"A", "B", "C", "D", "E", "F"},
			table.WithLayout(table.Layout{{{"A", "B", "C"}}, {{"E"}}, {{"D", "F"}}}))
		Expect(err).ToNot(HaveOccurred())
		c, err := mlca.ParseRelation("A*~B + ~A*B <-> C")
		Expect(err).ToNot(HaveOccurred())
		d, err := mlca.ParseRelation("~C <-> D")
		Expect(err).ToNot(HaveOccurred())
		a, err := assemble.New(schema, []assemble.Outcome{
			{Factor: "C", Relations: []mlca.Relation{c}},
			{Factor: "D", Relations: []mlca.Relation{d}},
		})
		Expect(err).ToNot(HaveOccurred())
		structures := slices.Collect(a.All())
		Expect(structures).To(HaveLen(1))
		g = hypergraph.New(schema, structures[0])
	})

	It("should group used factors by ascending level", func() {
		levels := g.Levels()
		Expect(levels).To(HaveLen(2))
		Expect(levels[0].Index).To(Equal(0))
		Expect(levels[1].Index).To(Equal(2))
		var ids []mlca.Identifier
		for _, n := range levels[0].Nodes {
			ids = append(ids, n.ID)
		}
		Expect(ids).To(Equal([]mlca.Identifier{"A", "B", "C"}))
		Expect(levels[1].Nodes).To(ConsistOf(MatchFields(IgnoreExtras, Fields{
			"ID":        Equal(mlca.Identifier("D")),
			"Explained": BeTrue(),
		})))
	})

	It("should keep one tail per conjunct with polarity", func() {
		e, ok := g.Incoming("C")
		Expect(ok).To(BeTrue())
		Expect(e.Head).To(Equal(mlca.Affirm("C")))
		Expect(e.Tails).To(Equal([]mlca.Conjunct{
			{mlca.Affirm("A"), mlca.Negate("B")},
			{mlca.Negate("A"), mlca.Affirm("B")},
		}))
		Expect(e.Sources()).To(Equal([]mlca.Identifier{"A", "B"}))
		Expect(g.Edges()).To(HaveLen(2))
	})

	It("should classify each edge by the levels it spans", func() {
		e, ok := g.Incoming("C")
		Expect(ok).To(BeTrue())
		Expect(e.Kind).To(Equal(mlca.Causal))
		e, ok = g.Incoming("D")
		Expect(ok).To(BeTrue())
		Expect(e.Kind).To(Equal(mlca.Mixed))
	})

	It("should report roots", func() {
		var roots []mlca.Identifier
		for _, n := range g.Roots() {
			roots = append(roots, n.ID)
		}
		Expect(roots).To(Equal([]mlca.Identifier{"A", "B"}))
		_, ok := g.Node("E")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Constitution", func() {
	It("should mark a whole explained by its parts", func() {
		schema, err := table.NewSchema([]mlca.Identifier{"A", "B", "C"},
			table.WithLayout(table.Layout{{{"A", "B"}}, {{"C"}}}))
		Expect(err).ToNot(HaveOccurred())
		r, err := mlca.ParseRelation("A*B <-> C")
		Expect(err).ToNot(HaveOccurred())
		a, err := assemble.New(schema, []assemble.Outcome{
			{Factor: "C", Relations: []mlca.Relation{r}},
		}, assemble.WithLevelKinds())
		Expect(err).ToNot(HaveOccurred())
		structures := slices.Collect(a.All())
		Expect(structures).To(HaveLen(1))
		g := hypergraph.New(schema, structures[0])
		Expect(g.Edges()).To(ConsistOf(MatchFields(IgnoreExtras, Fields{
			"Head": Equal(mlca.Affirm("C")),
			"Kind": Equal(mlca.Constitution),
		})))
	})
})
