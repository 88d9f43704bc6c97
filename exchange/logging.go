package exchange

import (
	"context"
	"time"

	"github.com/go-kit/log"

	"go-currency-converter/domain"
	"go-currency-converter/ratestore"
)

// loggingService decorates an exchange.Service with logging
type loggingService struct {
	logger log.Logger
	next   Service
}

// NewLoggingService returns a new instance of a logging Service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) ClearConfiguration(ctx context.Context) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "clear_configuration",
			"took", time.Since(begin),
		)
	}(time.Now())
	s.next.ClearConfiguration(ctx)
}

func (s *loggingService) UpdateConfiguration(ctx context.Context, quotes []domain.Quote) (table *ratestore.Table, err error) {
	defer func(begin time.Time) {
		keyvals := []interface{}{
			"method", "update_configuration",
			"quotes", len(quotes),
		}
		if table != nil {
			keyvals = append(keyvals,
				"version", table.Version,
				"direct", table.Direct,
				"derived", table.Derived(),
			)
		}
		keyvals = append(keyvals, "took", time.Since(begin), "err", err)
		s.logger.Log(keyvals...)
	}(time.Now())
	return s.next.UpdateConfiguration(ctx, quotes)
}

func (s *loggingService) Convert(ctx context.Context, amount domain.Amount, from domain.Currency, to domain.Currency) (ex domain.Exchanged, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "convert",
			"amount", amount,
			"from", from,
			"to", to,
			"rate", ex.Rate,
			"converted_amount", ex.Amount,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Convert(ctx, amount, from, to)
}

func (s *loggingService) Rates(ctx context.Context) (table *ratestore.Table, err error) {
	defer func(begin time.Time) {
		pairs := 0
		if table != nil {
			pairs = table.Len()
		}
		s.logger.Log(
			"method", "rates",
			"pairs", pairs,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Rates(ctx)
}
