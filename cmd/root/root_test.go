package root_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mlca-go/mlca/cmd/root"
)

func TestRoot(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Root Suite")
}

func execute(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := root.NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func write(dir, name, content string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
	return path
}

const conjunction = "A,B,C\n0,0,0\n1,1,1\n1,0,0\n0,1,0\n"

var _ = Describe("mlca", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	Context("solve", func() {
		It("should print candidates and structures", func() {
			out, _, err := execute("solve", write(dir, "t.csv", conjunction))
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(ContainSubstring("Candidate relations"))
			Expect(out).To(ContainSubstring("A*B <-> C"))
			Expect(out).To(ContainSubstring("(A*B <-> C)"))
		})

		It("should write Graphviz files", func() {
			dot := filepath.Join(dir, "dot")
			_, _, err := execute("solve", "--dot", dot, write(dir, "t.csv", conjunction))
			Expect(err).ToNot(HaveOccurred())
			data, err := os.ReadFile(filepath.Join(dot, "structure-1.dot"))
			Expect(err).ToNot(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`digraph "structure-1"`))
		})

		It("should log and trace to stderr", func() {
			_, stderr, err := execute("solve", "-v", "--trace", "--outcome", "C", write(dir, "t.csv", conjunction))
			Expect(err).ToNot(HaveOccurred())
			Expect(stderr).To(ContainSubstring("Candidate: A*B"))
			Expect(stderr).To(ContainSubstring(`"msg"="searched outcome"`))
		})

		It("should report a missing file", func() {
			_, _, err := execute("solve", filepath.Join(dir, "missing.csv"))
			Expect(err).To(MatchError(ContainSubstring("not found")))
		})

		It("should reject invalid bounds", func() {
			_, _, err := execute("solve", "--max-factors", "0", write(dir, "t.csv", conjunction))
			Expect(err).To(HaveOccurred())
		})
	})

	Context("report", func() {
		It("should assemble imported formulas", func() {
			path := write(dir, "cna.txt", "--- Coincidence Analysis (CNA) ---\n\nCausal ordering:\nA, B < C\n\n A*b <-> C   1 1\n")
			out, _, err := execute("report", path)
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(ContainSubstring("(A*~B <-> C)"))
		})
	})

	Context("batch", func() {
		It("should solve every scenario", func() {
			write(dir, "t.csv", conjunction)
			path := write(dir, "batch.yaml", "scenarios:\n  - table: t.csv\n  - id: broken\n    table: nope.csv\n")
			out, _, err := execute("batch", path)
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(ContainSubstring("Scenarios"))
			Expect(out).To(ContainSubstring("broken"))
			Expect(out).To(ContainSubstring("nope.csv"))
		})

		It("should reject an unknown id provider", func() {
			path := write(dir, "batch.yaml", "scenarios:\n  - table: t.csv\n")
			_, _, err := execute("batch", "--ids", "random", path)
			Expect(err).To(HaveOccurred())
		})
	})
})
