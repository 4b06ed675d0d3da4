// Package inspect runs one best-effort inspection pass over all configured
// providers and assembles the run's metric batch.
package inspect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jinbangyi/apikey-usage-inspector/internal/config"
	"github.com/jinbangyi/apikey-usage-inspector/internal/provider"
	"github.com/jinbangyi/apikey-usage-inspector/internal/session"
)

type Orchestrator struct {
	store       *config.Store
	sessions    *session.Manager
	registry    *provider.Registry
	concurrency int
	log         *slog.Logger
}

func New(store *config.Store, sessions *session.Manager, registry *provider.Registry, concurrency int, log *slog.Logger) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 4
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		store:       store,
		sessions:    sessions,
		registry:    registry,
		concurrency: concurrency,
		log:         log,
	}
}

// Run inspects every configured provider and returns the batch. It always
// returns a fully populated batch in the configuration's declared order: a
// provider failure is recorded in its own result and never aborts siblings.
func (o *Orchestrator) Run(ctx context.Context) *provider.RunBatch {
	names := o.store.Providers()
	batch := &provider.RunBatch{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Results:   make([]provider.Result, len(names)),
	}

	sem := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup

	for i, name := range names {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			batch.Results[idx] = *o.inspectOne(ctx, name)
		}(i, name)
	}

	wg.Wait()
	return batch
}

func (o *Orchestrator) inspectOne(ctx context.Context, name string) (result *provider.Result) {
	// A panicking adapter must not take the batch down with it.
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("adapter panicked", "provider", name, "panic", r)
			result = provider.Failed(name, provider.StatusParseFailed, fmt.Errorf("adapter panic: %v", r))
		}
	}()

	cfg, err := o.store.Resolve(name)
	if err != nil {
		// ErrConfigInvalid surfaces as an auth failure: the credentials
		// cannot be used in the shape supplied.
		o.log.Warn("provider configuration rejected", "provider", name, "err", err)
		return provider.Failed(name, provider.StatusAuthFailed, err)
	}

	if !cfg.Enabled {
		return &provider.Result{Provider: name, Status: provider.StatusDisabled}
	}

	if err := ctx.Err(); err != nil {
		return provider.Failed(name, provider.StatusNetworkFailed, fmt.Errorf("run deadline exceeded: %w", err))
	}

	adapter, ok := o.registry.Get(name)
	if !ok {
		o.log.Warn("no adapter registered", "provider", name)
		return provider.Failed(name, provider.StatusNetworkFailed, fmt.Errorf("no adapter registered for %q", name))
	}

	sess, err := o.sessions.Acquire(ctx, cfg)
	if err != nil {
		o.log.Warn("session acquisition failed", "provider", name, "err", err)
		return provider.Failed(name, provider.StatusAuthFailed, err)
	}

	started := time.Now()
	result = adapter.Inspect(ctx, sess)
	o.log.Info("provider inspected",
		"provider", name,
		"status", result.Status,
		"metrics", len(result.Metrics),
		"elapsed", time.Since(started))
	return result
}
