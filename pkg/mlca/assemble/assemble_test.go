package assemble_test

import (
	"slices"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/assemble"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

func TestAssemble(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Assemble Suite")
}

func schema(names []mlca.Identifier, options ...table.Option) *table.Schema {
	s, err := table.NewSchema(names, options...)
	Expect(err).ToNot(HaveOccurred())
	return s
}

func relations(ss ...string) []mlca.Relation {
	var out []mlca.Relation
	for _, s := range ss {
		r, err := mlca.ParseRelation(s)
		Expect(err).ToNot(HaveOccurred())
		out = append(out, r)
	}
	return out
}

func rendered(a *assemble.Assembler) []string {
	var out []string
	for s := range a.All() {
		out = append(out, s.String())
	}
	return out
}

var _ = Describe("Assembler", func() {
	abcd := []mlca.Identifier{"A", "B", "C", "D"}

	It("should enumerate the product with the last outcome varying fastest", func() {
		a, err := assemble.New(schema(abcd), []assemble.Outcome{
			{Factor: "C", Relations: relations("A <-> C", "B <-> C")},
			{Factor: "D", Relations: relations("C <-> D", "A*B <-> D")},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(rendered(a)).To(Equal([]string{
			"(A <-> C)*(C <-> D)",
			"(A <-> C)*(A*B <-> D)",
			"(B <-> C)*(C <-> D)",
			"(B <-> C)*(A*B <-> D)",
		}))
	})

	It("should be restartable and stop at the cap", func() {
		outcomes := []assemble.Outcome{
			{Factor: "C", Relations: relations("A <-> C", "B <-> C")},
			{Factor: "D", Relations: relations("C <-> D", "A*B <-> D")},
		}
		all, err := assemble.New(schema(abcd), outcomes)
		Expect(err).ToNot(HaveOccurred())
		unbounded := rendered(all)
		Expect(rendered(all)).To(Equal(unbounded))
		for k := 1; k <= len(unbounded)+1; k++ {
			capped, err := assemble.New(schema(abcd), outcomes, assemble.WithCap(k))
			Expect(err).ToNot(HaveOccurred())
			Expect(rendered(capped)).To(Equal(unbounded[:min(k, len(unbounded))]))
		}
	})

	It("should reject an invalid cap", func() {
		_, err := assemble.New(schema(abcd), nil, assemble.WithCap(0))
		Expect(err).To(MatchError(assemble.ErrInvalidCap))
		_, err = assemble.New(schema(abcd), nil, assemble.WithCap(-2))
		Expect(err).To(MatchError(assemble.ErrInvalidCap))
		_, err = assemble.New(schema(abcd), nil, assemble.WithCap(assemble.Unbounded))
		Expect(err).ToNot(HaveOccurred())
	})

	It("should reject cyclic combinations", func() {
		a, err := assemble.New(schema(abcd), []assemble.Outcome{
			{Factor: "A", Relations: relations("B <-> A", "D <-> A")},
			{Factor: "B", Relations: relations("A <-> B")},
		})
		Expect(err).ToNot(HaveOccurred())
		var stats assemble.Stats
		var got []string
		for s := range a.Seq(&stats) {
			got = append(got, s.String())
		}
		Expect(got).To(Equal([]string{"(D <-> A)*(A <-> B)"}))
		Expect(stats).To(Equal(assemble.Stats{Examined: 2, Accepted: 1, Cyclic: 1}))
	})

	It("should reject relations against the levels", func() {
		s := schema(abcd, table.WithLayout(table.Layout{{{"A", "B"}}, {{"C", "D"}}}))
		a, err := assemble.New(s, []assemble.Outcome{
			{Factor: "A", Relations: relations("C <-> A", "B <-> A")},
		})
		Expect(err).ToNot(HaveOccurred())
		var stats assemble.Stats
		Expect(slices.Collect(a.Seq(&stats))).To(HaveLen(1))
		Expect(stats.Violating).To(Equal(1))
	})

	Context("with level kinds", func() {
		var s *table.Schema

		BeforeEach(func() {
			s = schema(abcd, table.WithLayout(table.Layout{{{"A", "B"}}, {{"C", "D"}}}))
		})

		It("should keep causal and constitution relations", func() {
			a, err := assemble.New(s, []assemble.Outcome{
				{Factor: "B", Relations: relations("~A <-> B")},
				{Factor: "D", Relations: relations("A*B <-> D", "C <-> D")},
			}, assemble.WithLevelKinds())
			Expect(err).ToNot(HaveOccurred())
			Expect(rendered(a)).To(Equal([]string{
				"(~A <-> B)*(A*B <-> D)",
				"(~A <-> B)*(C <-> D)",
			}))
		})

		It("should count mixed relations as violations", func() {
			outcomes := []assemble.Outcome{
				{Factor: "D", Relations: relations("A*B <-> D", "B*C <-> D", "A + C <-> D")},
			}
			a, err := assemble.New(s, outcomes, assemble.WithLevelKinds())
			Expect(err).ToNot(HaveOccurred())
			var stats assemble.Stats
			Expect(slices.Collect(a.Seq(&stats))).To(HaveLen(1))
			Expect(stats).To(Equal(assemble.Stats{Examined: 3, Accepted: 1, Violating: 2}))

			a, err = assemble.New(s, outcomes)
			Expect(err).ToNot(HaveOccurred())
			Expect(rendered(a)).To(HaveLen(3))
		})

		It("should not leave an optional outcome unexplained for a mixed relation", func() {
			a, err := assemble.New(s, []assemble.Outcome{
				{Factor: "C", Relations: relations("A*D <-> C"), Optional: true},
				{Factor: "D", Relations: relations("A <-> D")},
			}, assemble.WithLevelKinds())
			Expect(err).ToNot(HaveOccurred())
			Expect(rendered(a)).To(Equal([]string{"(A <-> D)"}))
		})
	})

	It("should drop duplicates", func() {
		a, err := assemble.New(schema(abcd), []assemble.Outcome{
			{Factor: "C", Relations: relations("A*B <-> C", "B*A <-> C")},
		})
		Expect(err).ToNot(HaveOccurred())
		var stats assemble.Stats
		Expect(slices.Collect(a.Seq(&stats))).To(HaveLen(1))
		Expect(stats.Duplicate).To(Equal(1))
	})

	It("should leave an optional outcome unexplained only when nothing fits", func() {
		a, err := assemble.New(schema(abcd), []assemble.Outcome{
			{Factor: "A", Relations: relations("B <-> A"), Optional: true},
			{Factor: "B", Relations: relations("A <-> B"), Optional: true},
			{Factor: "D", Relations: relations("C <-> D"), Optional: true},
		})
		Expect(err).ToNot(HaveOccurred())
		var stats assemble.Stats
		var got []string
		for s := range a.Seq(&stats) {
			got = append(got, s.String())
		}
		Expect(got).To(Equal([]string{
			"(B <-> A)*(C <-> D)",
			"(A <-> B)*(C <-> D)",
		}))
		Expect(stats.Accepted).To(Equal(2))
		Expect(stats.Examined).To(Equal(8))
		Expect(stats.Rejected()).To(Equal(6))
	})

	It("should yield nothing when a required outcome has no relation", func() {
		a, err := assemble.New(schema(abcd), []assemble.Outcome{
			{Factor: "C", Relations: relations("A <-> C")},
			{Factor: "D"},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(rendered(a)).To(BeEmpty())
	})

	It("should reject relations that do not fit the schema", func() {
		_, err := assemble.New(schema(abcd), []assemble.Outcome{
			{Factor: "C", Relations: relations("X <-> C")},
		})
		Expect(err).To(MatchError(mlca.ErrInvalidCondition))
		_, err = assemble.New(schema(abcd), []assemble.Outcome{
			{Factor: "C", Relations: relations("A <-> D")},
		})
		Expect(err).To(MatchError(mlca.ErrInvalidCondition))
		_, err = assemble.New(schema(abcd), []assemble.Outcome{
			{Factor: "C", Relations: relations("A <-> C")},
			{Factor: "C", Relations: relations("B <-> C")},
		})
		Expect(err).To(MatchError(mlca.ErrInvalidCondition))
	})

	It("should expose edges with polarity", func() {
		a, err := assemble.New(schema(abcd), []assemble.Outcome{
			{Factor: "C", Relations: relations("A*~B + A*D <-> ~C")},
		})
		Expect(err).ToNot(HaveOccurred())
		all := slices.Collect(a.All())
		Expect(all).To(HaveLen(1))
		Expect(all[0].Edges()).To(Equal([]assemble.Edge{
			{Cause: mlca.Affirm("A"), Outcome: mlca.Negate("C")},
			{Cause: mlca.Negate("B"), Outcome: mlca.Negate("C")},
			{Cause: mlca.Affirm("D"), Outcome: mlca.Negate("C")},
		}))
		Expect(all[0].Outcomes()).To(Equal([]mlca.Identifier{"C"}))
	})
})
