package controller

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	m "langtest.dev/pkg/langtest/internal/model"
)

// unifiedDiff renders the expected pattern against the actual text.
func unifiedDiff(mm *m.Mismatch) string {
	actual := strings.Split(strings.TrimRight(mm.Actual, "\n"), "\n")
	if strings.TrimSpace(mm.Actual) == "" {
		actual = nil
	}

	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        withNewlines(mm.Expected),
		B:        withNewlines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return ""
	}

	return out
}

func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + "\n"
	}

	return out
}

// divergence describes where matching stopped.
func divergence(mm *m.Mismatch) string {
	switch {
	case mm.PatternLine < 0 && mm.ActualLine < 0:
		return ""
	case mm.PatternLine < 0:
		return fmt.Sprintf("unexpected output from line %d", mm.ActualLine+1)
	case mm.ActualLine < 0 && mm.PatternLine < len(mm.Expected):
		return fmt.Sprintf("output ended before pattern line %d: %s", mm.PatternLine+1, mm.Expected[mm.PatternLine])
	case mm.ActualLine < 0:
		return fmt.Sprintf("output ended before pattern line %d", mm.PatternLine+1)
	default:
		return fmt.Sprintf("pattern line %d does not match output line %d", mm.PatternLine+1, mm.ActualLine+1)
	}
}
