package csv_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mlca-go/mlca/pkg/mlca"
	"github.com/mlca-go/mlca/pkg/mlca/input/csv"
	"github.com/mlca-go/mlca/pkg/mlca/table"
)

func TestCSV(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CSV Suite")
}

func read(s string, options ...table.Option) (*table.Table, error) {
	return csv.Read(strings.NewReader(s), options...)
}

var _ = Describe("Read", func() {
	It("should read factors and rows with any separator", func() {
		t, err := read("A,B;C\n1|0:T\n\n  f _ 0\ttrue\n")
		Expect(err).ToNot(HaveOccurred())
		Expect(t.Identifiers()).To(Equal([]mlca.Identifier{"A", "B", "C"}))
		Expect(t.Rows()).To(Equal(2))
		Expect(t.Row(0)).To(Equal([]bool{true, false, true}))
		Expect(t.Row(1)).To(Equal([]bool{false, false, true}))
	})

	It("should accept every boolean spelling", func() {
		t, err := read("A\n1\nT\nt\nw\nW\ntrue\nTrue\n0\nF\nf\nfalse\nFalse\n")
		Expect(err).ToNot(HaveOccurred())
		Expect(t.Rows()).To(Equal(12))
		for r := 0; r < 7; r++ {
			Expect(t.Value(r, 0)).To(BeTrue())
		}
		for r := 7; r < 12; r++ {
			Expect(t.Value(r, 0)).To(BeFalse())
		}
	})

	It("should report the line of a bad cell", func() {
		_, err := read("A,B\n1,0\n1,x\n")
		Expect(err).To(MatchError(table.ErrMalformedTable))
		Expect(err.Error()).To(ContainSubstring("line 3"))
	})

	It("should reject rows of the wrong width", func() {
		_, err := read("A,B\n1,0,1\n")
		Expect(err).To(MatchError(table.ErrMalformedTable))
	})

	It("should reject headers without rows", func() {
		_, err := read("A,B\n")
		Expect(err).To(MatchError(table.ErrMalformedTable))
	})

	It("should read levels and order groups from a marker line", func() {
		t, err := read("A,B,C,D,E\n,,<,<<,\n1,1,1,1,1\n0,0,0,0,0\n")
		Expect(err).ToNot(HaveOccurred())
		Expect(t.Rows()).To(Equal(2))
		Expect(t.LevelCount()).To(Equal(2))
		Expect(t.Ordered()).To(BeTrue())
		a, _ := t.Factor("A")
		c, _ := t.Factor("C")
		e, _ := t.Factor("E")
		Expect(a.Level).To(Equal(0))
		Expect(c.Level).To(Equal(0))
		Expect(c.Rank).To(BeNumerically(">", a.Rank))
		Expect(e.Level).To(Equal(1))
		Expect(t.MayCause("A", "C")).To(BeTrue())
		Expect(t.MayCause("C", "A")).To(BeFalse())
		Expect(t.MayCause("E", "A")).To(BeFalse())
	})

	It("should ignore a marker in the first column", func() {
		t, err := read("A,B\n<<,<<\n1,0\n")
		Expect(err).ToNot(HaveOccurred())
		Expect(t.LevelCount()).To(Equal(2))
	})

	It("should read a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "table.csv")
		Expect(os.WriteFile(path, []byte("A,B\n1,1\n0,0\n"), 0o600)).To(Succeed())
		t, err := csv.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(t.Rows()).To(Equal(2))

		_, err = csv.ReadFile(filepath.Join(GinkgoT().TempDir(), "missing.csv"))
		Expect(err).To(HaveOccurred())
	})
})
