package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldStatus(t *testing.T) {
	tests := []struct {
		name       string
		successful int
		failed     int
		skipped    int
		expected   RunStatus
	}{
		{"all successful", 3, 0, 0, RunStatusCompleted},
		{"some failed", 2, 1, 0, RunStatusPartial},
		{"some skipped", 2, 0, 1, RunStatusPartial},
		{"all failed", 0, 3, 0, RunStatusFailed},
		{"all skipped", 0, 0, 3, RunStatusFailed},
		{"nothing processed", 0, 0, 0, RunStatusFailed},
		{"failed and skipped only", 0, 1, 2, RunStatusFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FoldStatus(tc.successful, tc.failed, tc.skipped))
		})
	}
}

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		name     string
		run      Run
		expected float64
	}{
		{"no targets", Run{}, 0},
		{"all successful", Run{SuccessfulCount: 4}, 100},
		{"two thirds", Run{SuccessfulCount: 2, FailedCount: 1}, 66.7},
		{"one third", Run{SuccessfulCount: 1, FailedCount: 1, SkippedCount: 1}, 33.3},
		{"one eighth", Run{SuccessfulCount: 1, FailedCount: 7}, 12.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.run.SuccessRate())
		})
	}
}

func TestSummary(t *testing.T) {
	run := Run{SuccessfulCount: 3, FailedCount: 1, SkippedCount: 2}
	s := run.Summary()
	assert.Equal(t, 3, s.Successful)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 2, s.Skipped)
	assert.Equal(t, 50.0, s.SuccessRate)
}
