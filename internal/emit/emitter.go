// Package emit serializes a run's metric batch into the Prometheus
// exposition format and pushes it to the Pushgateway, once per run.
package emit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/jinbangyi/apikey-usage-inspector/internal/provider"
)

// ErrSinkUnreachable reports that the push itself failed. It is fatal to
// emission but not to the run's data collection; the next scheduled run
// simply tries again.
var ErrSinkUnreachable = errors.New("metrics sink unreachable")

type Emitter struct {
	url     string
	job     string
	enabled bool
	log     *slog.Logger
}

// Result is the outcome of one emission attempt.
type Result struct {
	Pushed bool
	Err    error
}

func New(url, job string, enabled bool, log *slog.Logger) *Emitter {
	if log == nil {
		log = slog.Default()
	}
	return &Emitter{url: url, job: job, enabled: enabled, log: log}
}

// Emit pushes every metric gathered across the batch. Provider-level
// failures inside the batch do not block emission of sibling providers'
// metrics; the push carries whatever was successfully gathered.
func (e *Emitter) Emit(ctx context.Context, batch *provider.RunBatch) Result {
	if !e.enabled {
		e.log.Info("push disabled, skipping emission", "run_id", batch.RunID)
		return Result{}
	}

	collector := newBatchCollector(batch)
	err := push.New(e.url, e.job).
		Collector(collector).
		PushContext(ctx)
	if err != nil {
		e.log.Error("failed to push metrics", "run_id", batch.RunID, "err", err)
		return Result{Err: fmt.Errorf("%w: %v", ErrSinkUnreachable, err)}
	}

	e.log.Info("metrics pushed", "run_id", batch.RunID, "metrics", len(batch.Metrics()))
	return Result{Pushed: true}
}
