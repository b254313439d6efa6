package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kuryer-manager/internal/jobs"
)

type stubJanitor struct {
	fn func(cutoff time.Time) (int64, error)
}

func (s stubJanitor) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	if s.fn == nil {
		return 0, nil
	}
	return s.fn(cutoff)
}

func TestStart_RejectsBadSpec(t *testing.T) {
	t.Parallel()

	j := jobs.NewTokenSweepJob(stubJanitor{}, "not a cron spec", nil)
	require.Error(t, j.Start())
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	j := jobs.NewTokenSweepJob(stubJanitor{}, "@hourly", nil)
	require.NoError(t, j.Start())
	j.Stop()
}
