package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_ExposesRecordedMetrics(t *testing.T) {
	rec := NewPrometheusRecorder()
	rec.ObserveStageDuration("render", 120*time.Millisecond)
	rec.ObserveBuildDuration(time.Second)
	rec.IncBuildOutcome(OutcomeSuccess)
	rec.IncRebuild(RebuildFileChange)
	rec.IncRebuild(RebuildScheduled)

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := string(raw)
	require.Contains(t, out, `inkwell_stage_duration_seconds_count{stage="render"} 1`)
	require.Contains(t, out, `inkwell_build_outcomes_total{outcome="success"} 1`)
	require.Contains(t, out, `inkwell_rebuilds_total{reason="file_change"} 1`)
	require.Contains(t, out, `inkwell_rebuilds_total{reason="scheduled"} 1`)
}

func TestNopRecorder_IsSafe(t *testing.T) {
	var r Recorder = Nop{}
	r.ObserveStageDuration("x", time.Second)
	r.ObserveBuildDuration(time.Second)
	r.IncBuildOutcome(OutcomeFailure)
	r.IncRebuild(RebuildScheduled)
}
