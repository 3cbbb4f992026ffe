// Package columnartest holds test-only helpers shared across this module's
// test files.
package columnartest

import (
	"fmt"
	"testing"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// DiffRows fails t with a unified diff between want and got when they
// differ, rather than dumping two multi-line strings side by side. Grounded
// on the teacher's writer_test.go, which diffs a golden parquet-tools dump
// against the generated file's dump the same way.
func DiffRows(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	edits := myers.ComputeEdits(span.URIFromPath("want.txt"), want, got)
	diff := fmt.Sprint(gotextdiff.ToUnified("want.txt", "got.txt", want, edits))
	t.Errorf("row dump mismatch:\n%s", diff)
}
