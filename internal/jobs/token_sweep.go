// Package jobs holds scheduled background work.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"kuryer-manager/internal/logx"
)

// tokenJanitor deletes registration tokens that expired before the cutoff.
type tokenJanitor interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenSweepJob periodically removes expired registration tokens so the
// table does not accumulate dead rows between admin reviews.
type TokenSweepJob struct {
	tokens tokenJanitor
	spec   string
	cron   *cron.Cron
	logger logx.Logger
}

// NewTokenSweepJob creates the sweep job with a cron spec like "@hourly".
func NewTokenSweepJob(tokens tokenJanitor, spec string, logger logx.Logger) *TokenSweepJob {
	if logger == nil {
		logger = logx.Nop()
	}
	return &TokenSweepJob{
		tokens: tokens,
		spec:   spec,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the schedule and launches the cron runner.
func (j *TokenSweepJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, j.sweep)
	if err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("token sweep scheduled", logx.String("spec", j.spec))
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (j *TokenSweepJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *TokenSweepJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := j.tokens.DeleteExpired(ctx, time.Now())
	if err != nil {
		j.logger.Error("token sweep failed", logx.Any("err", err))
		return
	}
	if n > 0 {
		j.logger.Info("expired tokens removed", logx.Int64("count", n))
	}
}
