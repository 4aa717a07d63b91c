package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testRecorder struct {
	NoopRecorder
	stageDurations map[string]int
	stageResults   map[string]map[ResultLabel]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{stageDurations: map[string]int{}, stageResults: map[string]map[ResultLabel]int{}}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.stageDurations[stage]++
}
func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}

func TestTimed(t *testing.T) {
	r := newTestRecorder()
	require.NoError(t, Timed(r, "compile", func() error { return nil }))
	boom := errors.New("boom")
	require.ErrorIs(t, Timed(r, "compile", func() error { return boom }), boom)

	require.Equal(t, 2, r.stageDurations["compile"])
	require.Equal(t, 1, r.stageResults["compile"][ResultSuccess])
	require.Equal(t, 1, r.stageResults["compile"][ResultFatal])
}

func TestTimedCanceled(t *testing.T) {
	r := newTestRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Timed(r, "compile", func() error { return ctx.Err() })
	require.ErrorIs(t, err, context.Canceled)
	wrapped := Timed(r, "write:esm", func() error { return fmt.Errorf("write: %w", context.DeadlineExceeded) })
	require.ErrorIs(t, wrapped, context.DeadlineExceeded)

	require.Equal(t, 1, r.stageResults["compile"][ResultCanceled])
	require.Equal(t, 1, r.stageResults["write:esm"][ResultCanceled])
	require.Zero(t, r.stageResults["compile"][ResultFatal])
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("x", time.Second)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("x", ResultSuccess)
	r.IncBuildOutcome(BuildOutcomeSuccess)
	r.ObserveOutputBytes("esm", 10)
	r.SetWarnings(1)
}
