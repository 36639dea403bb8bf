package dataset_test

import (
	"testing"

	"github.com/leadscore/leadscore/pkg/dataset"
	"github.com/leadscore/leadscore/pkg/utils/try"
)

func TestClean(t *testing.T) {
	t.Run("unknown tokens become the missing marker in every string column", func(t *testing.T) {
		f := try.To(dataset.New(
			dataset.StringColumn("job", []string{"management", "unknown"}),
			dataset.StringColumn("poutcome", []string{"unknown", "success"}),
			dataset.NumericColumn("age", []float64{58, 33}),
			dataset.StringColumn("y", []string{" no", "yes "}),
		)).OrFatal(t)

		cleaned := dataset.Clean(f, "y")

		job, _ := cleaned.Column("job")
		if !dataset.IsMissingString(job.Strings[1]) {
			t.Errorf("unknown not converted: %q", job.Strings[1])
		}
		poutcome, _ := cleaned.Column("poutcome")
		if !dataset.IsMissingString(poutcome.Strings[0]) {
			t.Errorf("unknown not converted: %q", poutcome.Strings[0])
		}

		y, _ := cleaned.Column("y")
		if y.Strings[0] != "no" || y.Strings[1] != "yes" {
			t.Errorf("label not trimmed: %v", y.Strings)
		}
	})

	t.Run("the input frame is left untouched", func(t *testing.T) {
		f := try.To(dataset.New(
			dataset.StringColumn("job", []string{"unknown"}),
			dataset.StringColumn("y", []string{"no"}),
		)).OrFatal(t)

		_ = dataset.Clean(f, "y")

		job, _ := f.Column("job")
		if job.Strings[0] != "unknown" {
			t.Error("Clean mutated its input")
		}
	})

	t.Run("cleaning is idempotent", func(t *testing.T) {
		f := try.To(dataset.New(
			dataset.StringColumn("job", []string{"management", "unknown"}),
			dataset.StringColumn("y", []string{" no", "yes"}),
		)).OrFatal(t)

		once := dataset.Clean(f, "y")
		twice := dataset.Clean(once, "y")

		for _, name := range once.Names() {
			a, _ := once.Column(name)
			b, _ := twice.Column(name)
			for i := range a.Strings {
				if a.Strings[i] != b.Strings[i] {
					t.Errorf("column %s row %d changed on second cleaning", name, i)
				}
			}
		}
	})
}
