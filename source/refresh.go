package source

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/singleflight"

	"go-currency-converter/domain"
	"go-currency-converter/ratestore"
)

// Configurer is the part of exchange.Service a Refresher drives
type Configurer interface {
	UpdateConfiguration(ctx context.Context, quotes []domain.Quote) (*ratestore.Table, error)
}

// Refresher loads quotes from a Source and configures a converter with them,
// on demand and on a schedule.
type Refresher struct {
	// source of quotes
	source Source

	// target converter to configure
	target Configurer

	// updateFrequency how often Run refreshes
	updateFrequency time.Duration

	// group collapses concurrent refreshes into one load
	group singleflight.Group

	logger log.Logger
}

// NewRefresher constructs a valid Refresher
func NewRefresher(source Source, target Configurer, updateFrequency time.Duration, logger log.Logger) *Refresher {
	return &Refresher{
		source:          source,
		target:          target,
		updateFrequency: updateFrequency,
		logger:          logger,
	}
}

// Refresh loads quotes and configures the target immediately. Callers that arrive while a
// refresh is running wait for it and share its result. The shared load does not inherit the
// cancellation of whichever caller started it: a caller whose ctx is done stops waiting and
// gets ctx.Err(), while the load carries on for the others.
func (r *Refresher) Refresh(ctx context.Context) error {
	ch := r.group.DoChan("refresh", func() (interface{}, error) {
		return r.refresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Refresher) refresh(ctx context.Context) (*ratestore.Table, error) {
	quotes, err := r.source.Quotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading quotes: %w", err)
	}
	table, err := r.target.UpdateConfiguration(ctx, quotes)
	if err != nil {
		return nil, fmt.Errorf("configuring rates: %w", err)
	}
	return table, nil
}

// Run refreshes every updateFrequency until ctx is done. Failures are logged and the
// previous rates stay active.
func (r *Refresher) Run(ctx context.Context) {
	for {
		select {
		case <-time.After(r.updateFrequency):
			if err := r.Refresh(ctx); err != nil {
				// Don't return, just log and hope this is a transient error
				level.Error(r.logger).Log("msg", "periodic refresh failed", "err", err)
			}
		case <-ctx.Done():
			level.Info(r.logger).Log("msg", "shutting down periodic refresh")
			return
		}
	}
}
